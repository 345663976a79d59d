// Package emit renders a built and laid out database as a C++ declaration
// stream (.h) and definition stream (.cpp) for the ConfigDB runtime.
package emit

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-set/v2"

	"github.com/reoring/dbgen/internal/ir"
	"github.com/reoring/dbgen/internal/naming"
	"github.com/reoring/dbgen/internal/strtab"
)

// Output holds the generated text for one document.
type Output struct {
	Header string
	Source string
}

type emitter struct {
	arena   *ir.Arena
	strings *strtab.Table
	db      *ir.Node

	order   []ir.NodeID // shared definitions in emission order
	forward *set.Set[ir.NodeID]
	emitted *set.Set[ir.NodeID]
	current ir.NodeID // shared definition whose class is being written
	used    *set.Set[int]

	deferred writer
}

// Emit renders the database db. The arena must have been analyzed.
func Emit(a *ir.Arena, st *strtab.Table, db ir.NodeID) (*Output, error) {
	n := a.Get(db)
	if n.Kind != ir.KindDatabase {
		return nil, fmt.Errorf("emit: node %d is a %s, not a database", db, n.Kind)
	}
	for _, node := range a.Nodes() {
		if node.Database == db && node.Kind.IsContainer() && !node.Layout.Done {
			return nil, fmt.Errorf("emit: %s %q has no layout", node.Kind, node.Name)
		}
	}
	e := &emitter{
		arena:   a,
		strings: st,
		db:      n,
		forward: set.New[ir.NodeID](0),
		emitted: set.New[ir.NodeID](len(n.Defs)),
		current: ir.NoNode,
		used:    set.New[int](st.Len()),
	}
	e.orderDefs()
	return &Output{
		Header: e.header(),
		Source: e.source(),
	}, nil
}

// str returns the identifier of an interned literal and records its use.
func (e *emitter) str(value string) string {
	slot := e.strings.Slot(value)
	e.used.Insert(slot)
	return e.strings.Entry(slot).Ident
}

func (e *emitter) local(id ir.NodeID) bool {
	return e.arena.Get(id).Database == e.db.ID
}

// fullName returns the fully qualified C++ class name of a container.
func (e *emitter) fullName(id ir.NodeID) string {
	return QualifiedName(e.arena, id)
}

// QualifiedName returns the C++ class path of a container, starting at its
// database class. Stores do not add a scope of their own.
func QualifiedName(a *ir.Arena, id ir.NodeID) string {
	var parts []string
	for cur := id; cur != ir.NoNode; {
		n := a.Get(cur)
		if n.Kind != ir.KindStore {
			parts = append(parts, n.TypeName)
		}
		cur = n.Parent
	}
	slices.Reverse(parts)
	return strings.Join(parts, "::")
}

// typeRef names a container from inside the database class.
func (e *emitter) typeRef(id ir.NodeID) string {
	if !e.local(id) {
		return e.fullName(id)
	}
	return e.arena.Get(id).TypeName
}

// cname forms a file-scope identifier from a qualified class name.
func cname(qualified, suffix string) string {
	return strings.ReplaceAll(qualified, "::", "_") + "_" + suffix
}

func (e *emitter) includes() (system, local []string) {
	namespaces := set.NewTreeSet[string](cmp.Compare[string])
	docs := set.NewTreeSet[string](cmp.Compare[string])
	for _, s := range e.db.Stores {
		namespaces.Insert(naming.TypeName(e.arena.Get(s).Namespace))
	}
	for _, n := range e.arena.Nodes() {
		if n.Database != e.db.ID {
			continue
		}
		refs := make([]ir.NodeID, 0, len(n.Children)+1)
		for _, c := range n.Children {
			refs = append(refs, c.Node)
		}
		if n.Item != ir.NoNode {
			refs = append(refs, n.Item)
		}
		for _, r := range refs {
			if !e.local(r) {
				docs.Insert(e.arena.Get(e.arena.Get(r).Database).Doc)
			}
		}
	}
	for _, ns := range namespaces.Slice() {
		system = append(system, fmt.Sprintf("ConfigDB/%s/Store.h", ns))
	}
	for _, d := range docs.Slice() {
		local = append(local, d+".h")
	}
	return system, local
}

func (e *emitter) header() string {
	w := &writer{}
	w.b.WriteString(banner)
	w.blank()
	w.p("#pragma once")
	w.blank()
	w.p("#include <ConfigDB/Database.h>")
	system, local := e.includes()
	for _, inc := range system {
		w.p("#include <%s>", inc)
	}
	for _, inc := range local {
		w.p("#include %q", inc)
	}
	for _, inc := range e.db.Includes {
		w.p("#include %q", inc)
	}
	w.blank()

	name := e.db.TypeName
	w.p("class %s: public ConfigDB::DatabaseTemplate<%s>", name, name)
	w.open("{")
	w.close("public:")
	w.depth++
	w.p("static const ConfigDB::DatabaseInfo typeinfo;")
	w.blank()
	w.p("%s(const String& path): DatabaseTemplate(typeinfo, path)", name)
	w.block("", func() {})

	if e.forward.Size() > 0 {
		w.blank()
		for _, id := range e.order {
			if e.forward.Contains(id) {
				w.p("class %s;", e.arena.Get(id).TypeName)
			}
		}
	}
	for _, id := range e.order {
		e.current = id
		e.class(w, id)
		e.emitted.Insert(id)
	}
	e.current = ir.NoNode
	for _, s := range e.db.Stores {
		e.class(w, e.arena.Get(s).Children[0].Node)
	}
	w.close("};")

	if deferred := e.deferred.String(); deferred != "" {
		w.blank()
		w.b.WriteString(deferred)
	}
	return w.String()
}
