// Package naming forms C++ identifiers from schema names.
package naming

import (
	"strconv"
	"strings"
	"unicode"
)

var keywords = map[string]bool{
	"auto": true, "bool": true, "break": true, "case": true, "char": true, "class": true,
	"const": true, "continue": true, "default": true, "delete": true, "do": true,
	"double": true, "else": true, "enum": true, "false": true, "float": true, "for": true,
	"if": true, "int": true, "long": true, "namespace": true, "new": true, "operator": true,
	"private": true, "protected": true, "public": true, "return": true, "short": true,
	"signed": true, "sizeof": true, "static": true, "struct": true, "switch": true,
	"template": true, "this": true, "true": true, "typedef": true, "union": true,
	"unsigned": true, "using": true, "virtual": true, "void": true, "while": true,
}

// Identifier forms a camelCase variable name. '-', '_' and any other
// character not valid in an identifier start a new word.
func Identifier(s string) string {
	return ident(s, false)
}

// TypeName forms a CamelCase type name.
func TypeName(s string) string {
	return ident(s, true)
}

func ident(s string, up bool) string {
	b := &strings.Builder{}
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			up = true
			continue
		}
		if up {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		up = false
	}
	id := b.String()
	if id == "" {
		return "_"
	}
	if unicode.IsDigit(rune(id[0])) || keywords[id] {
		return "_" + id
	}
	return id
}

// Unique returns base, or base with a numeric suffix, such that taken(name)
// is false.
func Unique(base string, taken func(string) bool) string {
	name := base
	for n := 2; taken(name); n++ {
		name = base + strconv.Itoa(n)
	}
	return name
}
