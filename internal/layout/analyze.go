package layout

import (
	"github.com/reoring/dbgen/diag"
	"github.com/reoring/dbgen/internal/ir"
)

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

// Analyze computes the size of every container and the offset of every
// child and property. Objects lay out children then properties left to
// right; union variants share offset 0 and the tag follows the widest one.
// Arrays occupy a fixed array-id regardless of content.
func Analyze(a *ir.Arena) error {
	states := make(map[ir.NodeID]visitState, a.Len())
	for _, n := range a.Nodes() {
		if n.Kind == ir.KindDatabase {
			continue
		}
		if _, err := finalize(a, n.ID, states); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the storage a child occupies inside its parent's struct.
func Size(a *ir.Arena, id ir.NodeID) int {
	n := a.Get(id)
	switch n.Kind {
	case ir.KindArray, ir.KindObjectArray:
		return ir.ArrayIDSize
	}
	return n.Layout.Size
}

func finalize(a *ir.Arena, id ir.NodeID, states map[ir.NodeID]visitState) (int, error) {
	n := a.Get(id)
	switch states[id] {
	case stateDone:
		return n.Layout.Size, nil
	case stateVisiting:
		return 0, diag.RecursiveLayout(n.File, n.Path, n.Name)
	}
	states[id] = stateVisiting

	childSize := func(c ir.Child) (int, error) {
		switch a.Get(c.Node).Kind {
		case ir.KindArray, ir.KindObjectArray:
			// content lives outside the struct
			return ir.ArrayIDSize, nil
		}
		return finalize(a, c.Node, states)
	}

	size := 0
	switch n.Kind {
	case ir.KindStore:
		for _, c := range n.Children {
			s, err := finalize(a, c.Node, states)
			if err != nil {
				return 0, err
			}
			size = s
		}
	case ir.KindObject:
		for i := range n.Children {
			s, err := childSize(n.Children[i])
			if err != nil {
				return 0, err
			}
			n.Children[i].Offset = size
			size += s
		}
		for i := range n.Properties {
			n.Properties[i].Offset = size
			size += n.Properties[i].Size()
		}
	case ir.KindUnion:
		for i := range n.Children {
			s, err := childSize(n.Children[i])
			if err != nil {
				return 0, err
			}
			n.Children[i].Offset = 0
			size = max(size, s)
		}
		for i := range n.Properties {
			n.Properties[i].Offset = size
			size += n.Properties[i].Size()
		}
	case ir.KindArray:
		if n.ItemProperty != nil {
			n.ItemProperty.Offset = 0
		}
		size = ir.ArrayIDSize
	case ir.KindObjectArray:
		size = ir.ArrayIDSize
	}

	n.Layout = ir.Layout{Done: true, Size: size}
	states[id] = stateDone
	return size, nil
}

// ItemSize returns the size of one element of an Array or ObjectArray.
func ItemSize(a *ir.Arena, id ir.NodeID) int {
	n := a.Get(id)
	switch n.Kind {
	case ir.KindArray:
		if n.ItemProperty != nil {
			return n.ItemProperty.Size()
		}
	case ir.KindObjectArray:
		if n.Item != ir.NoNode {
			return a.Get(n.Item).Layout.Size
		}
	}
	return 0
}
