package emit

import (
	"fmt"
	"strings"

	"github.com/reoring/dbgen/internal/ir"
	"github.com/reoring/dbgen/internal/layout"
	"github.com/reoring/dbgen/internal/naming"
)

// class writes the class for a container, nested inline classes included.
func (e *emitter) class(w *writer, id ir.NodeID) {
	n := e.arena.Get(id)
	w.blank()
	switch n.Kind {
	case ir.KindObject:
		e.objectClass(w, n)
	case ir.KindUnion:
		e.unionClass(w, n)
	case ir.KindArray:
		e.arrayClass(w, n)
	case ir.KindObjectArray:
		e.objectArrayClass(w, n)
	}
}

func (e *emitter) isStoreRoot(n *ir.Node) bool {
	return n.Parent != ir.NoNode && e.arena.Get(n.Parent).Kind == ir.KindStore
}

func (e *emitter) begin(w *writer, n *ir.Node, base string) {
	w.p("class %s: public %s", n.TypeName, base)
	w.open("{")
	w.close("public:")
	w.depth++
}

func (e *emitter) end(w *writer) {
	w.close("};")
}

// nested writes the classes of inline children.
func (e *emitter) nested(n *ir.Node) []ir.NodeID {
	var out []ir.NodeID
	for _, c := range n.Children {
		if e.arena.Get(c.Node).Parent == n.ID {
			out = append(out, c.Node)
		}
	}
	if n.Item != ir.NoNode && e.arena.Get(n.Item).Parent == n.ID {
		out = append(out, n.Item)
	}
	return out
}

func (e *emitter) structMember(c ir.Child) (ctype, name string) {
	child := e.arena.Get(c.Node)
	name = c.Ident
	switch child.Kind {
	case ir.KindArray, ir.KindObjectArray:
		return "ConfigDB::ArrayId", name
	}
	return e.typeRef(c.Node) + "::Struct", name
}

func (e *emitter) structDecl(w *writer, n *ir.Node) {
	w.p("struct __attribute__((packed)) Struct {")
	w.depth++
	if n.Kind == ir.KindUnion && len(n.Children) > 0 {
		w.p("union __attribute__((packed)) {")
		w.depth++
	}
	for _, c := range n.Children {
		ctype, name := e.structMember(c)
		w.p("%s %s;", ctype, name)
	}
	if n.Kind == ir.KindUnion && len(n.Children) > 0 {
		w.close("};")
	}
	for i := range n.Properties {
		p := &n.Properties[i]
		w.p("%s %s;", p.Storage.CType(), p.Ident)
	}
	w.close("};")
	w.blank()
	if n.Layout.Size > 0 {
		w.p("static_assert(sizeof(Struct) == %d, \"Bad Struct size\");", n.Layout.Size)
		w.blank()
	}
	w.p("static const ConfigDB::ObjectInfo typeinfo;")
}

func (e *emitter) objectClass(w *writer, n *ir.Node) {
	root := e.isStoreRoot(n)
	if root {
		store := e.arena.Get(n.Parent)
		e.begin(w, n, "ConfigDB::"+naming.TypeName(store.Namespace)+"::StoreTemplate<"+n.TypeName+">")
	} else {
		e.begin(w, n, "ConfigDB::ObjectTemplate<"+n.TypeName+">")
	}
	// inline classes first: Struct names their Struct types
	nested := e.nested(n)
	for _, id := range nested {
		e.class(w, id)
	}
	if len(nested) > 0 {
		w.blank()
	}
	e.structDecl(w, n)

	w.blank()
	var init []string
	if root {
		store := e.arena.Get(n.Parent)
		w.p("%s(%s& db):", n.TypeName, e.db.TypeName)
		init = append(init, fmt.Sprintf("StoreTemplate(db, typeinfo, %d)", store.StoreIndex))
	} else {
		w.p("%s(ConfigDB::Object& parent, uint16_t offset):", n.TypeName)
		init = append(init, "ObjectTemplate(typeinfo, parent, offset)")
	}
	for _, c := range n.Children {
		init = append(init, fmt.Sprintf("%s(*this, %d)", c.Ident, c.Offset))
	}
	w.depth++
	for i, s := range init {
		if i < len(init)-1 {
			s += ","
		}
		w.p("%s", s)
	}
	w.depth--
	w.block("", func() {})

	for i := range n.Properties {
		e.accessors(w, i, &n.Properties[i])
	}

	if len(n.Children) > 0 {
		w.blank()
		for _, c := range n.Children {
			w.p("%s %s;", e.typeRef(c.Node), c.Ident)
		}
	}
	e.end(w)
}

// valueType returns the accessor type and storage type of a property.
func valueType(p *ir.Property) (value, storage string) {
	storage = p.Storage.CType()
	switch p.Storage {
	case ir.StorageString:
		value = "String"
	default:
		value = storage
	}
	if p.CType != "" {
		value = p.CType
	}
	return value, storage
}

// enumValueType returns the C type of the values listed by an enum.
func enumValueType(p *ir.Property) string {
	switch p.Type {
	case ir.TypeString:
		return "String"
	case ir.TypeNumber:
		return "ConfigDB::Number"
	}
	st, err := layout.IntegerStorage(p.Minimum, p.Maximum)
	if err != nil {
		return "int64_t"
	}
	return st.CType()
}

func (e *emitter) accessors(w *writer, index int, p *ir.Property) {
	if p.Synthetic {
		return
	}
	name := p.Stem
	value, storage := valueType(p)

	if p.IsEnum() {
		w.blank()
		w.p("%s get%sIndex() const", storage, name)
		w.block("", func() { w.p("return getValue<%s>(%d);", storage, p.Offset) })
		w.blank()
		w.p("void set%sIndex(%s index)", name, storage)
		w.block("", func() { w.p("setValue<%s>(%d, index);", storage, p.Offset) })
		w.blank()
		if p.CType != "" {
			w.p("%s get%s() const", p.CType, name)
			w.block("", func() { w.p("return %s(get%sIndex());", p.CType, name) })
			w.blank()
			w.p("void set%s(%s value)", name, p.CType)
			w.block("", func() { w.p("set%sIndex(%s(value));", name, storage) })
			return
		}
		item := enumValueType(p)
		w.p("%s get%s() const", item, name)
		w.block("", func() { w.p("return getEnumValue<%s>(%d, get%sIndex());", item, index, name) })
		w.blank()
		w.p("void set%s(const %s& value)", name, item)
		w.block("", func() {
			w.p("int index = findEnumIndex<%s>(%d, value);", item, index)
			w.p("if(index >= 0)")
			w.block("", func() { w.p("set%sIndex(%s(index));", name, storage) })
		})
		return
	}

	switch p.Storage {
	case ir.StorageString:
		w.blank()
		w.p("%s get%s() const", value, name)
		w.block("", func() { w.p("return getString(%d);", p.Offset) })
		w.blank()
		w.p("void set%s(const String& value)", name)
		w.block("", func() { w.p("setString(%d, value);", p.Offset) })
		return
	case ir.StorageNumber:
		w.blank()
		w.p("%s get%s() const", value, name)
		w.block("", func() { w.p("return getValue<%s>(%d);", storage, p.Offset) })
		w.blank()
		w.p("void set%s(const %s& value)", name, value)
		w.block("", func() { w.p("setValue<%s>(%d, value);", storage, p.Offset) })
		return
	}

	w.blank()
	w.p("%s get%s() const", value, name)
	w.block("", func() {
		if value != storage {
			w.p("return %s(getValue<%s>(%d));", value, storage, p.Offset)
		} else {
			w.p("return getValue<%s>(%d);", storage, p.Offset)
		}
	})
	w.blank()
	w.p("void set%s(%s value)", name, value)
	w.block("", func() {
		if value != storage {
			w.p("setValue<%s>(%d, %s(value));", storage, p.Offset, storage)
		} else {
			w.p("setValue<%s>(%d, value);", storage, p.Offset)
		}
	})
}

func (e *emitter) unionClass(w *writer, n *ir.Node) {
	e.begin(w, n, "ConfigDB::UnionTemplate<"+n.TypeName+">")
	tag := &n.Properties[len(n.Properties)-1]
	tagType := tag.Storage.CType()

	w.p("enum class Tag: %s {", tagType)
	w.depth++
	for _, c := range n.Children {
		w.p("%s,", c.Stem)
	}
	w.p("MAX")
	w.close("};")
	for _, id := range e.nested(n) {
		e.class(w, id)
	}
	w.blank()
	e.structDecl(w, n)

	w.blank()
	w.p("%s(ConfigDB::Object& parent, uint16_t offset):", n.TypeName)
	w.depth++
	w.p("UnionTemplate(typeinfo, parent, offset)")
	w.depth--
	w.block("", func() {})

	w.blank()
	w.p("Tag getTag() const")
	w.block("", func() { w.p("return Tag(getValue<%s>(%d));", tagType, tag.Offset) })
	w.blank()
	w.p("void setTag(Tag tag)")
	w.block("", func() { w.p("setValue<%s>(%d, %s(tag));", tagType, tag.Offset, tagType) })

	for _, c := range n.Children {
		variant := c.Stem
		ref := e.typeRef(c.Node)
		w.blank()
		w.p("const %s as%s() const", ref, variant)
		w.block("", func() {
			w.p("assert(getTag() == Tag::%s);", variant)
			w.p("return %s(*const_cast<%s*>(this), %d);", ref, n.TypeName, c.Offset)
		})
		w.blank()
		w.p("%s to%s()", ref, variant)
		w.block("", func() {
			w.p("setTag(Tag::%s);", variant)
			w.p("return %s(*this, %d);", ref, c.Offset)
		})
	}
	e.end(w)
}

func (e *emitter) arrayClass(w *writer, n *ir.Node) {
	p := n.ItemProperty
	var base string
	switch {
	case p.IsEnum():
		base = fmt.Sprintf("ConfigDB::EnumArrayTemplate<%s, %s>", n.TypeName, p.Storage.CType())
	case p.Storage == ir.StorageString:
		base = fmt.Sprintf("ConfigDB::StringArrayTemplate<%s>", n.TypeName)
	default:
		value, _ := valueType(p)
		base = fmt.Sprintf("ConfigDB::ArrayTemplate<%s, %s>", n.TypeName, value)
	}
	e.begin(w, n, base)
	w.p("static const ConfigDB::ObjectInfo typeinfo;")
	w.blank()
	w.p("%s(ConfigDB::Object& parent, uint16_t offset):", n.TypeName)
	w.depth++
	w.p("%s(typeinfo, parent, offset)", templateName(base))
	w.depth--
	w.block("", func() {})
	e.end(w)
}

func (e *emitter) objectArrayClass(w *writer, n *ir.Node) {
	e.begin(w, n, "ConfigDB::ObjectArrayTemplate<"+n.TypeName+">")
	w.p("static const ConfigDB::ObjectInfo typeinfo;")
	for _, id := range e.nested(n) {
		e.class(w, id)
	}
	w.blank()
	w.p("%s(ConfigDB::Object& parent, uint16_t offset):", n.TypeName)
	w.depth++
	w.p("ObjectArrayTemplate(typeinfo, parent, offset)")
	w.depth--
	w.block("", func() {})

	item := e.arena.Get(n.Item)
	ref := e.typeRef(n.Item)
	getItem := func(out *writer) {
		out.p("return %s(*const_cast<%s*>(this), getItemOffset(index));", ref, n.TypeName)
	}
	addItem := func(out *writer) {
		out.p("return %s(*this, addItemOffset());", ref)
	}

	if e.needsDeferral(n.Item) {
		w.blank()
		w.p("%s getItem(unsigned index) const;", ref)
		w.p("%s addItem();", ref)
		qualified := e.fullName(n.ID)
		itemFull := e.fullName(n.Item)
		d := &e.deferred
		if d.b.Len() > 0 {
			d.blank()
		}
		d.p("inline %s %s::getItem(unsigned index) const", itemFull, qualified)
		d.block("", func() { getItem(d) })
		d.blank()
		d.p("inline %s %s::addItem()", itemFull, qualified)
		d.block("", func() { addItem(d) })
	} else {
		w.blank()
		w.p("%s getItem(unsigned index) const", ref)
		w.block("", func() { getItem(w) })
		w.blank()
		w.p("%s addItem()", ref)
		w.block("", func() { addItem(w) })
	}

	if item.Kind == ir.KindUnion {
		for _, c := range item.Children {
			variant := c.Stem
			vref := e.typeRef(c.Node)
			if e.arena.Get(c.Node).Parent == item.ID {
				vref = ref + "::" + e.arena.Get(c.Node).TypeName
			}
			w.blank()
			w.p("%s addItem%s()", vref, variant)
			w.block("", func() { w.p("return addItem().to%s();", variant) })
		}
	}
	e.end(w)
}

// templateName strips the namespace and arguments from a base class.
func templateName(base string) string {
	if i := strings.IndexByte(base, '<'); i >= 0 {
		base = base[:i]
	}
	return base[strings.LastIndex(base, "::")+2:]
}
