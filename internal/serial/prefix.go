package serial

import "strings"

// MaxPrefixLen bounds the prefix segment length used by the binary scanner's
// chunk rewind.
const MaxPrefixLen = 6

// Prefixes lists every known serial prefix, sorted by the number of catalog
// titles that use it. Order matters only to the binary scanner, which breaks
// ties between prefixes by table position.
var Prefixes = []string{
	"SLPM", // 2616 games
	"SLES", // 2420 games
	"SCES", // 2387 games
	"SLUS", // 1857 games
	"SLPS", // 1171 games
	"SCUS", // 386 games
	"SCPS", // 284 games
	"SCAJ", // 217 games
	"SLKA", // 122 games
	"SLAJ", // 65 games
	"SCKA", // 46 games
	"TCPS", // 31 games
	"SCED", // 13 games
	"SLED", // 6 games
	"PBPX", // 3 games
	"TCES", // 2 games
	"PAPX", // 1 game
	"PBPS", // 1 game
	"PCPX", // 1 game
}

var prefixSet = func() map[string]int {
	set := make(map[string]int, len(Prefixes))
	for i, p := range Prefixes {
		set[p] = i
	}
	return set
}()

// Prefix returns the segment before the first hyphen.
func Prefix(s string) string {
	head, _, _ := strings.Cut(s, "-")
	return head
}

// HasValidPrefix reports whether the prefix segment of a normalized serial is
// in the prefix table. It is an early reject, not a guarantee of a database hit.
func HasValidPrefix(s string) bool {
	_, ok := prefixSet[Prefix(s)]
	return ok
}

// PrefixRank returns the table position of prefix, or -1 when unknown.
func PrefixRank(prefix string) int {
	if idx, ok := prefixSet[prefix]; ok {
		return idx
	}
	return -1
}
