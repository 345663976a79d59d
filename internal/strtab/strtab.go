// Package strtab interns string literals to stable C identifiers.
package strtab

import (
	"strconv"
	"strings"
)

const (
	// Prefix is prepended to every generated identifier.
	Prefix = "fstr_"

	// MaxIdentLength caps the sanitized part of an identifier.
	MaxIdentLength = 32

	emptyIdent = Prefix + "empty"
)

// Entry is one interned literal.
type Entry struct {
	Slot  int
	Value string
	Ident string
}

// Table maps literal values to identifiers and back. The empty string is
// always slot 0. A Table is owned by a single compiler run.
type Table struct {
	entries []Entry
	byValue map[string]int
	byIdent map[string]int
}

// New returns a table holding only the empty string.
func New() *Table {
	t := &Table{
		byValue: make(map[string]int),
		byIdent: make(map[string]int),
	}
	t.add("", emptyIdent)
	return t
}

// Intern returns the identifier for value, adding it on first use.
func (t *Table) Intern(value string) string {
	return t.entries[t.Slot(value)].Ident
}

// Slot returns the slot of value, adding it on first use.
func (t *Table) Slot(value string) int {
	if slot, ok := t.byValue[value]; ok {
		return slot
	}
	base := Prefix + sanitize(value)
	ident := base
	for n := 1; ; n++ {
		if _, taken := t.byIdent[ident]; !taken {
			break
		}
		ident = base + "_" + strconv.Itoa(n)
	}
	return t.add(value, ident)
}

func (t *Table) add(value, ident string) int {
	slot := len(t.entries)
	t.entries = append(t.entries, Entry{Slot: slot, Value: value, Ident: ident})
	t.byValue[value] = slot
	t.byIdent[ident] = slot
	return slot
}

// Lookup returns the entry for an already-interned value.
func (t *Table) Lookup(value string) (Entry, bool) {
	slot, ok := t.byValue[value]
	if !ok {
		return Entry{}, false
	}
	return t.entries[slot], true
}

// Entry returns the entry at slot.
func (t *Table) Entry(slot int) Entry { return t.entries[slot] }

// Len returns the number of interned values, including the empty string.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns all entries in slot order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// sanitize maps value onto [A-Za-z0-9_], capped in length.
func sanitize(value string) string {
	b := &strings.Builder{}
	for _, r := range value {
		if b.Len() >= MaxIdentLength {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
