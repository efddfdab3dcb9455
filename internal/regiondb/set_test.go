package regiondb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTable(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLookupEarlierRegionWins(t *testing.T) {
	set := New(map[Region]map[string]string{
		RegionUSA:    {"SLUS-20062": "USA Title"},
		RegionEurope: {"SLUS-20062": "Europe Title"},
	})

	region, title, ok := set.Lookup("SLUS-20062")
	if !ok {
		t.Fatal("expected serial to resolve")
	}
	if region != RegionEurope || title != "Europe Title" {
		t.Fatalf("got %s %q, want Europe title", region, title)
	}
}

func TestLookupMissingSerial(t *testing.T) {
	set := New(map[Region]map[string]string{RegionJapan: {"SLPM-62345": "Title"}})
	if _, _, ok := set.Lookup("SLPM-00000"); ok {
		t.Fatal("expected miss")
	}
	if _, _, ok := set.Lookup(""); ok {
		t.Fatal("expected miss for empty serial")
	}
	var nilSet *Set
	if _, _, ok := nilSet.Lookup("SLPM-62345"); ok {
		t.Fatal("expected nil set to miss")
	}
}

func TestOrderIsFixed(t *testing.T) {
	want := []Region{RegionAsia, RegionAustralia, RegionEurope, RegionJapan, RegionKorea, RegionUSA, RegionOfficial}
	if len(Order) != len(want) {
		t.Fatalf("Order has %d regions, want %d", len(Order), len(want))
	}
	for i := range want {
		if Order[i] != want[i] {
			t.Fatalf("Order[%d] = %s, want %s", i, Order[i], want[i])
		}
	}
}

func TestNewNormalizesKeys(t *testing.T) {
	set := New(map[Region]map[string]string{
		RegionUSA: {
			"slus_203.12": "Raw Key",
			"SLUS-20312":  "Canonical Key",
			"SCUS_971.13": " Padded ",
		},
	})
	if _, title, _ := set.Lookup("SLUS-20312"); title != "Canonical Key" {
		t.Fatalf("expected canonical key to win, got %q", title)
	}
	if _, title, _ := set.Lookup("SCUS-97113"); title != "Padded" {
		t.Fatalf("expected normalized key and trimmed title, got %q", title)
	}
}

func TestLoadReadsRegionFiles(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "usa.json", "\xEF\xBB\xBF{\"SLUS-12345\": \"Example Title\"}")
	writeTable(t, dir, "japan.json", `{"SLPM-62345": "Japan Title", "SLPM-65001": "Other"}`)

	set, err := Load(LoadOptions{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	region, title, ok := set.Lookup("SLUS-12345")
	if !ok || region != RegionUSA || title != "Example Title" {
		t.Fatalf("unexpected lookup result: %s %q %v", region, title, ok)
	}

	stats := set.Stats()
	if len(stats) != 2 {
		t.Fatalf("expected 2 loaded regions, got %+v", stats)
	}
	if stats[0].Region != RegionJapan || stats[0].Count != 2 {
		t.Fatalf("unexpected first stat: %+v", stats[0])
	}
	if set.Len() != 3 {
		t.Fatalf("Len = %d, want 3", set.Len())
	}
}

func TestLoadHonoursFileOverridesAndLegacy(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "pal.json", `{"SCES-50001": "PAL Title"}`)
	legacy := writeTable(t, dir, "official_ps2_db.json", `{"SCES-50001": "Legacy", "SLUS-20002": "Only Legacy"}`)

	set, err := Load(LoadOptions{
		Dir:        dir,
		Files:      map[Region]string{RegionEurope: "pal.json"},
		LegacyPath: legacy,
	}, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if region, title, _ := set.Lookup("SCES-50001"); region != RegionEurope || title != "PAL Title" {
		t.Fatalf("expected regional table before legacy, got %s %q", region, title)
	}
	if region, _, ok := set.Lookup("SLUS-20002"); !ok || region != RegionOfficial {
		t.Fatalf("expected legacy fallback, got %s %v", region, ok)
	}
}

func TestLoadFailsWithoutAnyFile(t *testing.T) {
	_, err := Load(LoadOptions{Dir: t.TempDir()}, nil)
	if !errors.Is(err, ErrNoTables) {
		t.Fatalf("expected ErrNoTables, got %v", err)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "korea.json", `{"SLKA-25001": 42}`)
	if _, err := Load(LoadOptions{Dir: dir}, nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEntriesSorted(t *testing.T) {
	set := New(map[Region]map[string]string{
		RegionKorea: {"SLKA-25002": "B", "SLKA-25001": "A"},
	})
	entries := set.Entries(RegionKorea)
	if len(entries) != 2 || entries[0].Serial != "SLKA-25001" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestParseRegion(t *testing.T) {
	if r, ok := ParseRegion(" usa "); !ok || r != RegionUSA {
		t.Fatalf("ParseRegion(usa) = %s %v", r, ok)
	}
	if _, ok := ParseRegion("mars"); ok {
		t.Fatal("expected unknown region")
	}
}
