package build

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/reoring/dbgen/diag"
	"github.com/reoring/dbgen/document"
	"github.com/reoring/dbgen/internal/ir"
	"github.com/reoring/dbgen/internal/layout"
	"github.com/reoring/dbgen/internal/number"
)

var propTypes = map[string]ir.PropType{
	"string":  ir.TypeString,
	"integer": ir.TypeInteger,
	"boolean": ir.TypeBoolean,
	"number":  ir.TypeNumber,
}

// property builds a scalar leaf. A nil property with nil error means the
// fragment was skipped with a warning.
func (c *Context) property(key string, frag *document.Object, doc *document.Document, path document.Path) (*ir.Property, error) {
	typ, _ := document.GetString(frag, "type")
	if typ == "" && document.Has(frag, "enum") {
		typ = "string"
	}
	pt, ok := propTypes[typ]
	if !ok {
		c.warn(diag.TypeNotImplemented(doc.File, path.String(), typeOf(frag)))
		return nil, nil
	}

	p := &ir.Property{Name: key, Path: path.String(), Type: pt}
	alias, err := aliasesOf(doc, frag, path)
	if err != nil {
		return nil, err
	}
	p.Alias = alias
	if v, ok := frag.Get("ctype"); ok {
		s, ok := v.(string)
		if !ok || s == "" {
			return nil, diag.InvalidSchema(doc.File, path.Field("ctype").String(), "\"ctype\" must be a non-empty string")
		}
		p.CType = s
	}

	hasRange := document.Has(frag, "minimum") || document.Has(frag, "maximum")
	if document.Has(frag, "enum") {
		if hasRange {
			return nil, diag.InvalidSchema(doc.File, path.String(), "enum cannot be combined with minimum/maximum")
		}
		if pt == ir.TypeBoolean {
			return nil, diag.InvalidSchema(doc.File, path.Field("enum").String(), "boolean enum not supported")
		}
		list, ok := document.GetArray(frag, "enum")
		if !ok || len(list) == 0 {
			return nil, diag.InvalidSchema(doc.File, path.Field("enum").String(), "enum must be a non-empty list")
		}
		for i, v := range list {
			val, err := c.literal(pt, v, doc.File, path.Field("enum").Index(i))
			if err != nil {
				return nil, err
			}
			if _, dup := ordinal(p.Enum, val); dup {
				return nil, diag.InvalidSchema(doc.File, path.Field("enum").Index(i).String(),
					fmt.Sprintf("duplicate enum value %s", describe(val)))
			}
			p.Enum = append(p.Enum, val)
		}
	}

	if hasRange {
		if err := c.bounds(p, frag, doc.File, path); err != nil {
			return nil, err
		}
	}

	if v, ok := frag.Get("default"); ok {
		dpath := path.Field("default")
		val, err := c.literal(pt, v, doc.File, dpath)
		if err != nil {
			return nil, err
		}
		if p.IsEnum() {
			ord, ok := ordinal(p.Enum, val)
			if !ok {
				return nil, diag.RangeViolation(doc.File, dpath.String(), fmt.Sprintf("default %s not in enum", describe(val)))
			}
			val = ord
		}
		p.Default, p.HasDefault = val, true
	}

	if err := layout.ResolveProperty(doc.File, p); err != nil {
		return nil, err
	}

	c.Strings.Intern(key)
	for _, a := range p.Alias {
		c.Strings.Intern(a)
	}
	return p, nil
}

func (c *Context) bounds(p *ir.Property, frag *document.Object, file string, path document.Path) error {
	for _, key := range []string{"minimum", "maximum"} {
		v, ok := frag.Get(key)
		if !ok {
			continue
		}
		kpath := path.Field(key)
		num, ok := v.(document.Number)
		if !ok {
			return diag.InvalidSchema(file, kpath.String(), fmt.Sprintf("%s must be a number, got %s", key, document.Describe(v)))
		}
		switch p.Type {
		case ir.TypeInteger:
			iv, ok := num.Int()
			if !ok {
				return diag.InvalidSchema(file, kpath.String(), fmt.Sprintf("%s must be an integer", key))
			}
			if key == "minimum" {
				p.Minimum = iv
			} else {
				p.Maximum = iv
			}
		case ir.TypeNumber:
			nv, err := parseNumber(num, file, kpath)
			if err != nil {
				return err
			}
			if key == "minimum" {
				p.NumMinimum = &nv
			} else {
				p.NumMaximum = &nv
			}
		default:
			return diag.InvalidSchema(file, kpath.String(), fmt.Sprintf("%s not valid for %s", key, p.Type))
		}
	}
	return nil
}

// literal converts a schema value to a typed ir value. Strings are interned.
func (c *Context) literal(t ir.PropType, v any, file string, path document.Path) (ir.Value, error) {
	mismatch := func() error {
		return diag.InvalidSchema(file, path.String(), fmt.Sprintf("expected %s, got %s", t, document.Describe(v)))
	}
	switch t {
	case ir.TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch()
		}
		c.Strings.Intern(s)
		return s, nil
	case ir.TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch()
		}
		return b, nil
	case ir.TypeInteger:
		num, ok := v.(document.Number)
		if !ok {
			return nil, mismatch()
		}
		iv, ok := num.Int()
		if !ok {
			return nil, mismatch()
		}
		return iv, nil
	case ir.TypeNumber:
		num, ok := v.(document.Number)
		if !ok {
			return nil, mismatch()
		}
		return parseNumber(num, file, path)
	}
	return nil, mismatch()
}

func parseNumber(num document.Number, file string, path document.Path) (number.Number, error) {
	nv, err := number.Parse(string(num))
	switch {
	case errors.Is(err, number.ErrOverflow):
		return nv, diag.RangeViolation(file, path.String(), fmt.Sprintf("%s cannot be represented", num))
	case err != nil:
		return nv, diag.InvalidSchema(file, path.String(), err.Error())
	}
	return nv, nil
}

// ordinal finds val in an enum list.
func ordinal(enum []ir.Value, val ir.Value) (*big.Int, bool) {
	for i, e := range enum {
		if equal(e, val) {
			return big.NewInt(int64(i)), true
		}
	}
	return nil, false
}

func equal(a, b ir.Value) bool {
	switch x := a.(type) {
	case *big.Int:
		y, ok := b.(*big.Int)
		return ok && x.Cmp(y) == 0
	case number.Number:
		y, ok := b.(number.Number)
		return ok && number.Compare(x, y) == 0
	}
	return a == b
}

func describe(v ir.Value) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}
