package lines

import "testing"

func TestSplit_TrimsAndKeepsBlanks(t *testing.T) {
	got := Split("  # Title \r\n\n\tbody\n")
	want := []string{"# Title", "", "body", ""}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%q)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHasAnyPrefix(t *testing.T) {
	if !HasAnyPrefix("**Status:** Live", "#", "**") {
		t.Error("expected ** prefix to match")
	}
	if HasAnyPrefix("plain", "#", "**") {
		t.Error("plain line should not match")
	}
}
