package serial

import "testing"

func TestHasValidPrefixAcceptsEveryTableEntry(t *testing.T) {
	for _, p := range Prefixes {
		if !HasValidPrefix(p + "-00000") {
			t.Fatalf("expected %s-00000 to have a valid prefix", p)
		}
	}
}

func TestHasValidPrefixRejectsUnknown(t *testing.T) {
	for _, s := range []string{"SYSTEMCNF", "ABCD-12345", "SLU-12345", "SLUSX-1", "", "-SLUS"} {
		if HasValidPrefix(s) {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestPrefixRankFollowsTableOrder(t *testing.T) {
	if got := PrefixRank("SLPM"); got != 0 {
		t.Fatalf("PrefixRank(SLPM) = %d, want 0", got)
	}
	if got := PrefixRank("PCPX"); got != len(Prefixes)-1 {
		t.Fatalf("PrefixRank(PCPX) = %d, want %d", got, len(Prefixes)-1)
	}
	if got := PrefixRank("NOPE"); got != -1 {
		t.Fatalf("PrefixRank(NOPE) = %d, want -1", got)
	}
}

func TestPrefixesFitRewindWindow(t *testing.T) {
	for _, p := range Prefixes {
		if len(p) > MaxPrefixLen {
			t.Fatalf("prefix %q longer than MaxPrefixLen", p)
		}
	}
}
