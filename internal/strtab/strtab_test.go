package strtab_test

import (
	"strings"
	"testing"

	"github.com/reoring/dbgen/internal/strtab"
)

func TestNew_EmptyStringIsSlotZero(t *testing.T) {
	tab := strtab.New()
	if tab.Len() != 1 {
		t.Fatalf("len = %d, want 1", tab.Len())
	}
	e := tab.Entry(0)
	if e.Value != "" || e.Ident != "fstr_empty" {
		t.Fatalf("slot 0 = %+v", e)
	}
	if tab.Slot("") != 0 {
		t.Fatalf("empty string must stay in slot 0")
	}
}

func TestIntern_Idempotent(t *testing.T) {
	tab := strtab.New()
	a := tab.Intern("color")
	b := tab.Intern("color")
	if a != b || a != "fstr_color" {
		t.Fatalf("got %q and %q", a, b)
	}
	if tab.Len() != 2 {
		t.Fatalf("len = %d, want 2", tab.Len())
	}
}

func TestIntern_Sanitize(t *testing.T) {
	tab := strtab.New()
	tests := []struct {
		in, want string
	}{
		{"pin-number", "fstr_pin_number"},
		{"a.b c", "fstr_a_b_c"},
		{"pin_number", "fstr_pin_number_1"},
		{"pin?number", "fstr_pin_number_2"},
	}
	for _, tt := range tests {
		if got := tab.Intern(tt.in); got != tt.want {
			t.Errorf("Intern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIntern_LongValuesTruncated(t *testing.T) {
	tab := strtab.New()
	long := strings.Repeat("x", 100)
	id := tab.Intern(long)
	if len(id) != len(strtab.Prefix)+strtab.MaxIdentLength {
		t.Fatalf("ident %q has length %d", id, len(id))
	}
	if e, ok := tab.Lookup(long); !ok || e.Value != long {
		t.Fatalf("lookup must return the full value")
	}
}

func TestEntries_SlotOrder(t *testing.T) {
	tab := strtab.New()
	for _, s := range []string{"b", "a", "c"} {
		tab.Intern(s)
	}
	entries := tab.Entries()
	for i, e := range entries {
		if e.Slot != i {
			t.Fatalf("entry %d has slot %d", i, e.Slot)
		}
	}
	if entries[1].Value != "b" || entries[3].Value != "c" {
		t.Fatalf("entries = %+v", entries)
	}
	if _, ok := tab.Lookup("missing"); ok {
		t.Fatalf("lookup must not intern")
	}
}
