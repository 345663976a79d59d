// Package manifest describes the computed layout of a database in a machine
// readable form, for tools that inspect generated stores without parsing C++.
package manifest

import (
	"fmt"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/reoring/dbgen/internal/emit"
	"github.com/reoring/dbgen/internal/ir"
	"github.com/reoring/dbgen/internal/strtab"
)

// Format selects the manifest encoding.
type Format string

const (
	FormatNone Format = ""
	FormatJSON Format = "json"
	FormatBSON Format = "bson"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatNone, FormatJSON, FormatBSON:
		return f, nil
	}
	return FormatNone, fmt.Errorf("unknown manifest format %q (want json or bson)", s)
}

// Ext returns the file suffix written after the document id.
func (f Format) Ext() string {
	return ".layout." + string(f)
}

type Manifest struct {
	Database string   `json:"database" bson:"database"`
	TypeName string   `json:"typeName" bson:"typeName"`
	Stores   []Store  `json:"stores" bson:"stores"`
	Types    []Type   `json:"types" bson:"types"`
	Strings  []String `json:"strings" bson:"strings"`
}

type Store struct {
	Name      string `json:"name" bson:"name"`
	Namespace string `json:"namespace" bson:"namespace"`
	Root      string `json:"root" bson:"root"`
	Size      int    `json:"size" bson:"size"`
}

// Type is one container class.
type Type struct {
	Kind       string   `json:"kind" bson:"kind"`
	Name       string   `json:"name" bson:"name"`
	TypeName   string   `json:"typeName" bson:"typeName"`
	Ref        string   `json:"ref,omitempty" bson:"ref,omitempty"`
	Size       int      `json:"size" bson:"size"`
	Item       string   `json:"item,omitempty" bson:"item,omitempty"`
	Children   []Member `json:"children,omitempty" bson:"children,omitempty"`
	Properties []Member `json:"properties,omitempty" bson:"properties,omitempty"`
}

// Member is a child container or property slot within a struct.
type Member struct {
	Name    string   `json:"name" bson:"name"`
	Type    string   `json:"type" bson:"type"`
	Offset  int      `json:"offset" bson:"offset"`
	Size    int      `json:"size" bson:"size"`
	Alias   []string `json:"alias,omitempty" bson:"alias,omitempty"`
	Enum    []string `json:"enum,omitempty" bson:"enum,omitempty"`
	Default string   `json:"default,omitempty" bson:"default,omitempty"`
}

type String struct {
	Slot  int    `json:"slot" bson:"slot"`
	Ident string `json:"ident" bson:"ident"`
	Value string `json:"value" bson:"value"`
}

// Build collects the manifest of database db from an analyzed arena.
func Build(a *ir.Arena, st *strtab.Table, db ir.NodeID) *Manifest {
	d := a.Get(db)
	m := &Manifest{Database: d.Name, TypeName: d.TypeName}
	for _, s := range d.Stores {
		store := a.Get(s)
		m.Stores = append(m.Stores, Store{
			Name:      store.Name,
			Namespace: store.Namespace,
			Root:      emit.QualifiedName(a, store.Children[0].Node),
			Size:      store.Layout.Size,
		})
	}
	for _, n := range a.Nodes() {
		if n.Database != db || !n.Kind.IsContainer() {
			continue
		}
		m.Types = append(m.Types, describe(a, n))
	}
	for _, e := range st.Entries() {
		m.Strings = append(m.Strings, String{Slot: e.Slot, Ident: e.Ident, Value: e.Value})
	}
	return m
}

func describe(a *ir.Arena, n *ir.Node) Type {
	t := Type{
		Kind:     n.Kind.String(),
		Name:     n.Name,
		TypeName: emit.QualifiedName(a, n.ID),
		Ref:      n.Ref,
		Size:     n.Layout.Size,
	}
	if n.Item != ir.NoNode {
		t.Item = emit.QualifiedName(a, n.Item)
	}
	for _, c := range n.Children {
		child := a.Get(c.Node)
		size := child.Layout.Size
		if child.Kind == ir.KindArray || child.Kind == ir.KindObjectArray {
			size = ir.ArrayIDSize
		}
		t.Children = append(t.Children, Member{
			Name:   c.Name,
			Type:   emit.QualifiedName(a, c.Node),
			Offset: c.Offset,
			Size:   size,
			Alias:  c.Alias,
		})
	}
	props := n.Properties
	if n.ItemProperty != nil {
		props = []ir.Property{*n.ItemProperty}
	}
	for i := range props {
		p := &props[i]
		mem := Member{
			Name:   p.Name,
			Type:   p.Storage.String(),
			Offset: p.Offset,
			Size:   p.Size(),
			Alias:  p.Alias,
		}
		for _, v := range p.Enum {
			mem.Enum = append(mem.Enum, fmt.Sprint(v))
		}
		if p.HasDefault {
			mem.Default = fmt.Sprint(p.Default)
		}
		t.Properties = append(t.Properties, mem)
	}
	return t
}

// Marshal encodes m in format f.
func Marshal(m *Manifest, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode manifest: %w", err)
		}
		return append(data, '\n'), nil
	case FormatBSON:
		data, err := bson.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("encode manifest: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown manifest format %q", f)
}
