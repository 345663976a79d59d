package emit

import (
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/reoring/dbgen/internal/ir"
	"github.com/reoring/dbgen/internal/number"
)

var objectType = map[ir.Kind]string{
	ir.KindStore:       "Store",
	ir.KindObject:      "Object",
	ir.KindArray:       "Array",
	ir.KindObjectArray: "ObjectArray",
	ir.KindUnion:       "Union",
}

// source renders the definition stream. Interned strings are collected while
// the body is written and emitted ahead of it.
func (e *emitter) source() string {
	body := &writer{}
	for _, id := range e.order {
		e.arena.Walk(id, func(n *ir.Node) bool {
			e.metadata(body, n)
			return true
		})
	}
	for _, s := range e.db.Stores {
		e.arena.Walk(e.arena.Get(s).Children[0].Node, func(n *ir.Node) bool {
			e.metadata(body, n)
			return true
		})
	}
	e.databaseInfo(body)

	w := &writer{}
	w.b.WriteString(banner)
	w.blank()
	w.p("#include %q", e.db.Doc+".h")
	w.blank()
	slots := e.used.Slice()
	slices.Sort(slots)
	w.p("#pragma GCC diagnostic push")
	w.p("#pragma GCC diagnostic ignored \"-Wunused-variable\"")
	w.blank()
	for _, slot := range slots {
		entry := e.strings.Entry(slot)
		w.p("DEFINE_FSTR_LOCAL(%s, %s)", entry.Ident, cstring(entry.Value))
	}
	w.blank()
	w.p("#pragma GCC diagnostic pop")
	w.b.WriteString(body.String())
	return w.String()
}

// cstring quotes s as a C string literal.
func cstring(s string) string {
	b := &strings.Builder{}
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			// octal escapes cannot swallow following hex digits
			fmt.Fprintf(b, "\\%03o", c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (e *emitter) metadata(w *writer, n *ir.Node) {
	if !n.Kind.IsContainer() {
		return
	}
	full := e.fullName(n.ID)
	kind := objectType[n.Kind]
	if e.isStoreRoot(n) {
		kind = objectType[ir.KindStore]
	}

	out := w
	w = &writer{}

	defaultData := "nullptr"
	switch n.Kind {
	case ir.KindObject, ir.KindUnion:
		if data := DefaultData(e.arena, n.ID); !isZero(data) {
			defaultData = cname(full, "defaultData")
			blob(w, defaultData, data)
		}
	case ir.KindArray:
		if len(n.ArrayDefault) > 0 {
			defaultData = cname(full, "defaultData")
			if n.ItemProperty.Storage == ir.StorageString {
				var refs []string
				for _, v := range n.ArrayDefault {
					refs = append(refs, "&"+e.str(v.(string)))
				}
				w.p("DEFINE_FSTR_VECTOR_LOCAL(%s, FSTR::String, %s)", defaultData, strings.Join(refs, ", "))
				defaultData = "&" + defaultData
			} else {
				blob(w, defaultData, ArrayData(n))
			}
		}
	}

	props := n.Properties
	if n.Kind == ir.KindArray {
		props = []ir.Property{*n.ItemProperty}
	}
	for i := range props {
		if props[i].IsEnum() {
			e.enumTable(w, cname(full, props[i].Ident+"_enum"), &props[i])
		}
	}

	objinfo := "nullptr"
	children := n.Children
	if n.Kind == ir.KindObjectArray {
		children = []ir.Child{{Name: "item", Node: n.Item}}
	}
	if len(children) > 0 {
		objinfo = cname(full, "objinfo")
		w.p("const ConfigDB::ChildInfo %s[] PROGMEM {", objinfo)
		w.depth++
		for _, c := range children {
			w.p("{%s, &%s::typeinfo, %d},", e.str(c.Name), e.fullName(c.Node), c.Offset)
		}
		w.close("};")
	}

	aliasinfo, aliases := "nullptr", 0
	if entries := e.aliases(n, props); len(entries) > 0 {
		aliasinfo, aliases = cname(full, "aliasinfo"), len(entries)
		w.p("const ConfigDB::AliasInfo %s[] PROGMEM {", aliasinfo)
		w.depth++
		for _, a := range entries {
			w.p("%s", a)
		}
		w.close("};")
	}
	if local := w.String(); local != "" {
		out.blank()
		out.p("namespace")
		out.p("{")
		out.b.WriteString(local)
		out.p("} // namespace")
	}
	w = out

	parent := "nullptr"
	if n.Parent != ir.NoNode {
		if p := e.arena.Get(n.Parent); p.Kind.IsContainer() {
			parent = "&" + e.fullName(p.ID) + "::typeinfo"
		}
	}
	structSize := "sizeof(" + full + "::Struct)"
	if n.Kind == ir.KindArray || n.Kind == ir.KindObjectArray {
		structSize = strconv.Itoa(ir.ArrayIDSize)
	}

	w.blank()
	w.p("const ConfigDB::ObjectInfo %s::typeinfo PROGMEM {", full)
	w.depth++
	w.p(".type = ConfigDB::ObjectType::%s,", kind)
	w.p(".name = %s,", e.str(n.Name))
	w.p(".parent = %s,", parent)
	w.p(".objinfo = %s,", objinfo)
	w.p(".aliasinfo = %s,", aliasinfo)
	w.p(".defaultData = %s,", defaultData)
	w.p(".structSize = %s,", structSize)
	w.p(".objectCount = %d,", len(children))
	w.p(".aliasCount = %d,", aliases)
	w.p(".propertyCount = %d,", len(props))
	w.p(".propinfo = {")
	w.depth++
	for i := range props {
		e.propinfo(w, full, &props[i])
	}
	w.close("},")
	w.close("};")
}

func blob(w *writer, name string, data []byte) {
	w.p("const uint8_t %s[] PROGMEM {", name)
	w.depth++
	for i := 0; i < len(data); i += 16 {
		line := data[i:min(i+16, len(data))]
		parts := make([]string, len(line))
		for j, c := range line {
			parts[j] = fmt.Sprintf("0x%02x", c)
		}
		w.p("%s,", strings.Join(parts, ", "))
	}
	w.close("};")
}

func (e *emitter) aliases(n *ir.Node, props []ir.Property) []string {
	var out []string
	for i, c := range n.Children {
		for _, a := range c.Alias {
			out = append(out, fmt.Sprintf("{%s, true, %d},", e.str(a), i))
		}
	}
	for i := range props {
		for _, a := range props[i].Alias {
			out = append(out, fmt.Sprintf("{%s, false, %d},", e.str(a), i))
		}
	}
	return out
}

func (e *emitter) enumTable(w *writer, name string, p *ir.Property) {
	values := make([]string, len(p.Enum))
	for i, v := range p.Enum {
		switch v := v.(type) {
		case string:
			values[i] = "&" + e.str(v)
		case *big.Int:
			values[i] = intLiteral(v)
		case number.Number:
			values[i] = numberLiteral(v)
		}
	}
	if p.Type == ir.TypeString {
		w.p("DEFINE_FSTR_VECTOR_LOCAL(%s, FSTR::String, %s)", name, strings.Join(values, ", "))
		return
	}
	w.p("DEFINE_FSTR_ARRAY_LOCAL(%s, %s, %s)", name, enumValueType(p), strings.Join(values, ", "))
}

func (e *emitter) propinfo(w *writer, full string, p *ir.Property) {
	w.open("{")
	w.p(".type = ConfigDB::PropertyType::%s,", p.Storage)
	w.p(".name = %s,", e.str(p.Name))
	w.p(".offset = %d,", p.Offset)
	switch {
	case p.IsEnum():
		w.p(".enuminfo = &%s,", cname(full, p.Ident+"_enum"))
	case p.Type == ir.TypeString:
		def := ""
		if p.HasDefault {
			def = p.Default.(string)
		}
		w.p(".defaultValue = &%s,", e.str(def))
	case p.Type == ir.TypeInteger:
		w.p(".minimum = %s,", intLiteral(p.Minimum))
		w.p(".maximum = %s,", intLiteral(p.Maximum))
	case p.Type == ir.TypeNumber:
		w.p(".minimum = %s,", numberLiteral(*p.NumMinimum))
		w.p(".maximum = %s,", numberLiteral(*p.NumMaximum))
	}
	w.close("},")
}

func intLiteral(v *big.Int) string {
	switch {
	case v.IsInt64() && v.Int64() == math.MinInt64:
		return "INT64_MIN"
	case !v.IsInt64():
		return v.String() + "ULL"
	case v.Int64() > math.MaxInt32 || v.Int64() < math.MinInt32:
		return v.String() + "LL"
	}
	return v.String()
}

func numberLiteral(v number.Number) string {
	return fmt.Sprintf("ConfigDB::Number(%s)", v)
}

func (e *emitter) databaseInfo(w *writer) {
	w.blank()
	w.p("const ConfigDB::DatabaseInfo %s::typeinfo PROGMEM {", e.db.TypeName)
	w.depth++
	w.p(".name = %s,", e.str(e.db.Name))
	w.p(".storeCount = %d,", len(e.db.Stores))
	w.p(".stores = {")
	w.depth++
	for _, s := range e.db.Stores {
		store := e.arena.Get(s)
		w.p("{%s, &%s::typeinfo},", e.str(store.Name), e.fullName(store.Children[0].Node))
	}
	w.close("},")
	w.close("};")
}
