package document

import (
	"strconv"
	"strings"
)

// Pointer renders path segments as a JSON pointer, escaping '~' and '/'
// per RFC 6901.
func Pointer(parts []string) string {
	if len(parts) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(p, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// SplitPointer parses a JSON pointer ("/a/b", "a/b" or "") into unescaped segments.
func SplitPointer(ptr string) []string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return nil
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(strings.ReplaceAll(p, "~1", "/"), "~0", "~")
	}
	return parts
}

// Lookup walks a pointer from v. Numeric segments index arrays.
func Lookup(v any, parts []string) (any, bool) {
	cur := v
	for _, p := range parts {
		switch t := cur.(type) {
		case *Object:
			next, ok := t.Get(p)
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(p)
			if err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			cur = t[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Path is an immutable JSON pointer builder.
type Path struct {
	parts []string
}

// Field returns the path extended by a member name.
func (p Path) Field(name string) Path {
	return Path{parts: append(append([]string{}, p.parts...), name)}
}

// Index returns the path extended by an array index.
func (p Path) Index(i int) Path {
	return p.Field(strconv.Itoa(i))
}

// String renders the JSON pointer.
func (p Path) String() string { return Pointer(p.parts) }

// PathOf parses a JSON pointer into a Path.
func PathOf(ptr string) Path {
	return Path{parts: SplitPointer(ptr)}
}
