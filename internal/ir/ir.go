// Package ir defines the compiled schema graph. All container nodes live in
// one Arena and refer to each other by NodeID; properties are stored inline
// in their owning node.
package ir

import (
	"fmt"
	"math/big"

	"github.com/reoring/dbgen/internal/number"
)

// NodeID indexes a node in its Arena.
type NodeID int32

// NoNode marks an absent link.
const NoNode NodeID = -1

// Kind identifies a node type.
type Kind uint8

const (
	KindDatabase Kind = iota
	KindStore
	KindObject
	KindArray
	KindObjectArray
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindDatabase:
		return "Database"
	case KindStore:
		return "Store"
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	case KindObjectArray:
		return "ObjectArray"
	case KindUnion:
		return "Union"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsContainer reports whether nodes of this kind occupy struct storage.
func (k Kind) IsContainer() bool {
	return k >= KindObject
}

// Node is a Database, Store or container.
type Node struct {
	ID       NodeID
	Kind     Kind
	Name     string   // schema key, definition name or document id
	TypeName string   // generated class name
	Ref      string   // de-duplication key when reached through $ref
	Alias    []string // alternate lookup names
	Parent   NodeID
	Store    NodeID
	Database NodeID
	Doc      string // document the node was defined in
	File     string
	Path     string // JSON pointer of the defining fragment

	Children   []Child
	Properties []Property

	// Item is the element node of an ObjectArray.
	Item NodeID
	// ItemProperty is the element type of an Array.
	ItemProperty *Property
	// ArrayDefault holds the declared default elements of an Array.
	ArrayDefault []Value

	// Store only
	Namespace  string
	StoreIndex int

	// Database only
	Stores   []NodeID
	Defs     []NodeID // shared definitions owned by this document, creation order
	Includes []string

	Layout Layout
}

// Child is a container embedded in (or referenced from) a parent node.
type Child struct {
	Name   string
	Alias  []string
	Node   NodeID
	Offset int

	// Ident is the member name and Stem the accessor stem, both unique
	// within the parent.
	Ident string
	Stem  string
}

// Layout holds the derived storage data of a container.
type Layout struct {
	Done bool
	Size int
}

// PropType is the logical type of a scalar property.
type PropType uint8

const (
	TypeString PropType = iota + 1
	TypeInteger
	TypeBoolean
	TypeNumber
)

func (t PropType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	}
	return "unknown"
}

// Storage is the physical representation of a property in a struct.
type Storage uint8

const (
	StorageBoolean Storage = iota + 1
	StorageInt8
	StorageInt16
	StorageInt32
	StorageInt64
	StorageUInt8
	StorageUInt16
	StorageUInt32
	StorageUInt64
	StorageNumber
	StorageString
)

// StringIDSize and ArrayIDSize are the fixed handle widths.
const (
	StringIDSize = 2
	ArrayIDSize  = 2
	TagSize      = 1
)

var storageInfo = map[Storage]struct {
	name  string
	size  int
	ctype string
}{
	StorageBoolean: {"Boolean", 1, "bool"},
	StorageInt8:    {"Int8", 1, "int8_t"},
	StorageInt16:   {"Int16", 2, "int16_t"},
	StorageInt32:   {"Int32", 4, "int32_t"},
	StorageInt64:   {"Int64", 8, "int64_t"},
	StorageUInt8:   {"UInt8", 1, "uint8_t"},
	StorageUInt16:  {"UInt16", 2, "uint16_t"},
	StorageUInt32:  {"UInt32", 4, "uint32_t"},
	StorageUInt64:  {"UInt64", 8, "uint64_t"},
	StorageNumber:  {"Number", number.Size, "ConfigDB::Number"},
	StorageString:  {"String", StringIDSize, "ConfigDB::StringId"},
}

// Size returns the byte width of the storage kind.
func (s Storage) Size() int { return storageInfo[s].size }

// CType returns the C type used for the struct member.
func (s Storage) CType() string { return storageInfo[s].ctype }

func (s Storage) String() string {
	if i, ok := storageInfo[s]; ok {
		return i.name
	}
	return fmt.Sprintf("Storage(%d)", uint8(s))
}

// IsSigned reports whether the storage is a signed integer.
func (s Storage) IsSigned() bool {
	return s >= StorageInt8 && s <= StorageInt64
}

// Bits returns the integer width, or 0 for non-integers.
func (s Storage) Bits() int {
	switch s {
	case StorageInt8, StorageUInt8:
		return 8
	case StorageInt16, StorageUInt16:
		return 16
	case StorageInt32, StorageUInt32:
		return 32
	case StorageInt64, StorageUInt64:
		return 64
	}
	return 0
}

// Value is a scalar literal: string, bool, *big.Int or number.Number.
type Value any

// Property is a scalar leaf.
type Property struct {
	Name  string
	Alias []string
	Path  string
	Type  PropType
	CType string // generated type override

	Ident string // struct member, unique within the owner
	Stem  string // get/set stem, unique within the owner

	// Enum lists the permitted values; the property then stores an ordinal.
	Enum []Value

	Default    Value // nil when absent; enum defaults hold the ordinal as *big.Int
	HasDefault bool

	// integer bounds; nil means the default range
	Minimum *big.Int
	Maximum *big.Int
	// number bounds; nil means the representable extreme
	NumMinimum *number.Number
	NumMaximum *number.Number

	Storage Storage
	Offset  int
	// Synthetic marks the implicit union tag.
	Synthetic bool
}

// IsEnum reports whether the property stores an enum ordinal.
func (p *Property) IsEnum() bool { return len(p.Enum) > 0 }

// Size returns the storage width.
func (p *Property) Size() int { return p.Storage.Size() }

// Arena owns every node of one compiler run.
type Arena struct {
	nodes []*Node
}

// NewArena returns an empty arena.
func NewArena() *Arena { return &Arena{} }

// New allocates a node.
func (a *Arena) New(kind Kind, name string, parent NodeID) *Node {
	n := &Node{
		ID:       NodeID(len(a.nodes)),
		Kind:     kind,
		Name:     name,
		Parent:   parent,
		Store:    NoNode,
		Database: NoNode,
		Item:     NoNode,
	}
	if parent != NoNode {
		p := a.Get(parent)
		n.Database = p.Database
		if p.Kind == KindDatabase {
			n.Database = p.ID
		}
	}
	if kind == KindDatabase {
		n.Database = n.ID
	}
	a.nodes = append(a.nodes, n)
	return n
}

// Get returns the node for id.
func (a *Arena) Get(id NodeID) *Node { return a.nodes[id] }

// Len returns the number of nodes.
func (a *Arena) Len() int { return len(a.nodes) }

// Nodes returns every node in allocation order.
func (a *Arena) Nodes() []*Node { return a.nodes }

// StoreOf walks parents until a Store is found. Nodes whose chain ends at
// the Database (shared definitions) have no store of their own.
func (a *Arena) StoreOf(id NodeID) NodeID {
	for id != NoNode {
		n := a.Get(id)
		switch n.Kind {
		case KindStore:
			return n.ID
		case KindDatabase:
			return NoNode
		}
		id = n.Parent
	}
	return NoNode
}

// AssignStore sets node.Store once; later calls are ignored.
func (a *Arena) AssignStore(id, store NodeID) {
	n := a.Get(id)
	if n.Store == NoNode {
		n.Store = store
	}
}

// IsShared reports whether the node is a $ref definition owned by a database.
func (a *Arena) IsShared(id NodeID) bool {
	n := a.Get(id)
	return n.Parent != NoNode && a.Get(n.Parent).Kind == KindDatabase && n.Kind != KindStore
}

// Walk visits id and its owned subtree (children whose Parent is id, and
// owned ObjectArray items) depth-first, parents before children.
func (a *Arena) Walk(id NodeID, fn func(n *Node) bool) {
	n := a.Get(id)
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		if a.Get(c.Node).Parent == id {
			a.Walk(c.Node, fn)
		}
	}
	if n.Item != NoNode && a.Get(n.Item).Parent == id {
		a.Walk(n.Item, fn)
	}
}
