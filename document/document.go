// Package document loads schema documents into an order-preserving value tree.
//
// Values are one of: string, Number, bool, nil, []any or *Object. Mapping key
// order is the order of the source text; the compiler relies on it for stable
// property indices.
package document

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/dbgen/diag"
)

// Object is an ordered mapping.
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an empty ordered mapping.
func NewObject() *Object { return orderedmap.New[string, any]() }

// Number is a numeric literal kept in its source text form.
type Number string

// Int returns the value as an integer if it has no fractional part.
func (n Number) Int() (*big.Int, bool) {
	if v, ok := new(big.Int).SetString(string(n), 10); ok {
		return v, true
	}
	// 1e3, 300.0 and friends are still integers
	f, _, err := big.ParseFloat(string(n), 10, 256, big.ToNearestEven)
	if err != nil || !f.IsInt() {
		return nil, false
	}
	v, _ := f.Int(nil)
	return v, true
}

func (n Number) String() string { return string(n) }

// Document is one loaded schema file.
type Document struct {
	ID   string // file base name without extension
	File string
	Root *Object
}

// ID derives the document identifier from a file path.
func ID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads and parses a schema file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.IO(path, err)
	}
	return Parse(ID(path), path, data)
}

// Parse decodes a schema document; the format is chosen by the file extension
// (".yaml"/".yml" select YAML, anything else JSON).
func Parse(id, file string, data []byte) (*Document, error) {
	var (
		root *Object
		err  error
	)
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		root, err = ParseYAML(data)
	default:
		root, err = ParseJSON(data)
	}
	if err != nil {
		if e, ok := diag.AsError(err); ok {
			e.File = file
			return nil, e
		}
		return nil, &diag.Error{Kind: diag.KindInvalidSchema, File: file, Message: "malformed document", Cause: err}
	}
	return &Document{ID: id, File: file, Root: root}, nil
}

// Get returns the value stored under key if v is an *Object.
func Get(v any, key string) (any, bool) {
	o, ok := v.(*Object)
	if !ok || o == nil {
		return nil, false
	}
	return o.Get(key)
}

// GetString returns a string member.
func GetString(o *Object, key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetObject returns a mapping member.
func GetObject(o *Object, key string) (*Object, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(*Object)
	return m, ok
}

// GetArray returns a sequence member.
func GetArray(o *Object, key string) ([]any, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	a, ok := v.([]any)
	return a, ok
}

// Has reports whether the mapping defines key.
func Has(o *Object, key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Copy returns a shallow copy of o, preserving key order.
func Copy(o *Object) *Object {
	out := NewObject()
	for p := o.Oldest(); p != nil; p = p.Next() {
		out.Set(p.Key, p.Value)
	}
	return out
}

// Plain converts a value tree to map[string]any/[]any/float64 form, as
// expected by generic JSON consumers such as schema validators.
func Plain(v any) any {
	switch t := v.(type) {
	case *Object:
		out := make(map[string]any, t.Len())
		for p := t.Oldest(); p != nil; p = p.Next() {
			out[p.Key] = Plain(p.Value)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Plain(t[i])
		}
		return out
	case Number:
		f, _, err := big.ParseFloat(string(t), 10, 64, big.ToNearestEven)
		if err != nil {
			return string(t)
		}
		v, _ := f.Float64()
		return v
	default:
		return v
	}
}

// Describe names the JSON type of a value for diagnostics.
func Describe(v any) string {
	switch v.(type) {
	case *Object:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
