package regiondb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ps2id/internal/logging"
	"ps2id/internal/serial"
)

// ErrNoTables is returned by Load when none of the configured region files exist.
var ErrNoTables = errors.New("no region database files found")

// Entry is a single serial→title row.
type Entry struct {
	Serial string `json:"serial" yaml:"serial"`
	Title  string `json:"title" yaml:"title"`
}

// Stat reports the size of one region table.
type Stat struct {
	Region Region `json:"region" yaml:"region"`
	Count  int    `json:"count" yaml:"count"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Set holds every region table. It is immutable after construction.
type Set struct {
	tables map[Region]map[string]string
	paths  map[Region]string
}

// LoadOptions locates the region files on disk.
type LoadOptions struct {
	// Dir holds one JSON file per region.
	Dir string
	// Files overrides the file name (or absolute path) for individual regions.
	Files map[Region]string
	// LegacyPath optionally points at the single-file official catalog.
	LegacyPath string
}

// New builds a Set from in-memory tables. Keys are normalized; the input maps
// are not retained.
func New(tables map[Region]map[string]string) *Set {
	s := &Set{
		tables: make(map[Region]map[string]string, len(tables)),
		paths:  map[Region]string{},
	}
	for region, table := range tables {
		s.tables[region] = normalizeTable(table)
	}
	return s
}

// Load reads every region table named by opts. A missing file loads as an
// empty table and is logged; malformed JSON is an error. When no file exists
// at all, ErrNoTables is returned.
func Load(opts LoadOptions, logger *slog.Logger) (*Set, error) {
	logger = logging.NewComponentLogger(logger, "regiondb")

	s := &Set{
		tables: make(map[Region]map[string]string, len(Order)),
		paths:  make(map[Region]string, len(Order)),
	}

	found := 0
	for _, region := range Order {
		path := resolveRegionPath(opts, region)
		if path == "" {
			continue
		}
		table, err := readTable(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if region != RegionOfficial {
					logging.WarnWithContext(logger, "region database missing", "regiondb_file_missing",
						logging.String(logging.FieldRegion, region.String()),
						logging.String("path", path),
						logging.String(logging.FieldErrorHint, "place the region JSON file in the database directory"),
						logging.String(logging.FieldImpact, "serials from this region will not resolve"),
					)
				}
				continue
			}
			return nil, fmt.Errorf("load %s database: %w", region, err)
		}
		s.tables[region] = table
		s.paths[region] = path
		found++
		logger.Debug("loaded region database",
			logging.String(logging.FieldRegion, region.String()),
			logging.String("path", path),
			logging.Int("entry_count", len(table)),
		)
	}

	if found == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTables, opts.Dir)
	}
	return s, nil
}

// Lookup resolves a normalized serial, consulting regions in Order. The first
// region whose table holds the serial wins.
func (s *Set) Lookup(serialNumber string) (Region, string, bool) {
	if s == nil || serialNumber == "" {
		return "", "", false
	}
	for _, region := range Order {
		table, ok := s.tables[region]
		if !ok {
			continue
		}
		if title, ok := table[serialNumber]; ok {
			return region, title, true
		}
	}
	return "", "", false
}

// Stats returns one row per loaded region, in lookup order.
func (s *Set) Stats() []Stat {
	if s == nil {
		return nil
	}
	stats := make([]Stat, 0, len(s.tables))
	for _, region := range Order {
		table, ok := s.tables[region]
		if !ok {
			continue
		}
		stats = append(stats, Stat{Region: region, Count: len(table), Path: s.paths[region]})
	}
	return stats
}

// Len returns the total number of serials across all regions.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, table := range s.tables {
		total += len(table)
	}
	return total
}

// Entries returns the rows of one region sorted by serial.
func (s *Set) Entries(region Region) []Entry {
	if s == nil {
		return nil
	}
	table := s.tables[region]
	entries := make([]Entry, 0, len(table))
	for key, title := range table {
		entries = append(entries, Entry{Serial: key, Title: title})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Serial < entries[j].Serial
	})
	return entries
}

func resolveRegionPath(opts LoadOptions, region Region) string {
	if region == RegionOfficial {
		if override := strings.TrimSpace(opts.Files[region]); override != "" {
			return joinDir(opts.Dir, override)
		}
		return strings.TrimSpace(opts.LegacyPath)
	}
	name := strings.TrimSpace(opts.Files[region])
	if name == "" {
		name = region.DefaultFileName()
	}
	return joinDir(opts.Dir, name)
}

func joinDir(dir, name string) string {
	if filepath.IsAbs(name) || strings.TrimSpace(dir) == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func readTable(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = trimUTF8BOM(data)
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]string{}, nil
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return normalizeTable(raw), nil
}

// normalizeTable canonicalizes keys. When two raw keys collapse onto the same
// serial, a key already in canonical form wins, then the lexically smallest.
func normalizeTable(raw map[string]string) map[string]string {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(raw))
	for _, key := range keys {
		if normalized := serial.Normalize(key); normalized == key && normalized != "" {
			out[normalized] = strings.TrimSpace(raw[key])
		}
	}
	for _, key := range keys {
		normalized := serial.Normalize(key)
		if normalized == "" {
			continue
		}
		if _, exists := out[normalized]; exists {
			continue
		}
		out[normalized] = strings.TrimSpace(raw[key])
	}
	return out
}

func trimUTF8BOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
