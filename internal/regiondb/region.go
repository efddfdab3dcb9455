package regiondb

import "strings"

// Region names a market whose reference table can resolve a serial.
type Region string

const (
	RegionAsia      Region = "Asia"
	RegionAustralia Region = "Australia"
	RegionEurope    Region = "Europe"
	RegionJapan     Region = "Japan"
	RegionKorea     Region = "Korea"
	RegionUSA       Region = "USA"
	// RegionOfficial is the single-file catalog used before per-region tables existed.
	RegionOfficial Region = "Official"
)

// Order is the deterministic lookup precedence.
var Order = []Region{
	RegionAsia,
	RegionAustralia,
	RegionEurope,
	RegionJapan,
	RegionKorea,
	RegionUSA,
	RegionOfficial,
}

// DefaultFileName returns the file name a region table is read from when the
// configuration does not override it.
func (r Region) DefaultFileName() string {
	if r == RegionOfficial {
		return "official_ps2_db.json"
	}
	return strings.ToLower(string(r)) + ".json"
}

func (r Region) String() string { return string(r) }

// ParseRegion matches a region name case-insensitively.
func ParseRegion(value string) (Region, bool) {
	trimmed := strings.TrimSpace(value)
	for _, r := range Order {
		if strings.EqualFold(trimmed, string(r)) {
			return r, true
		}
	}
	return "", false
}
