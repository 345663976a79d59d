package emit

import (
	"github.com/reoring/dbgen/internal/ir"
)

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

// deps lists the local shared definitions a definition's class needs.
// Hard dependencies are members held by value and must be complete first.
// Soft dependencies are object array items, which only need a declaration.
func (e *emitter) deps(id ir.NodeID) (hard, soft []ir.NodeID) {
	shared := func(ref ir.NodeID) bool {
		return e.local(ref) && e.arena.IsShared(ref)
	}
	e.arena.Walk(id, func(n *ir.Node) bool {
		for _, c := range n.Children {
			if c.Node != id && e.arena.Get(c.Node).Parent != n.ID && shared(c.Node) {
				hard = append(hard, c.Node)
			}
		}
		if n.Item != ir.NoNode && e.arena.Get(n.Item).Parent != n.ID && shared(n.Item) {
			soft = append(soft, n.Item)
		}
		return true
	})
	return hard, soft
}

// orderDefs sorts shared definitions so every by-value dependency precedes
// its user. Object array items that are only defined later get a forward
// declaration and out-of-line accessors.
func (e *emitter) orderDefs() {
	states := make(map[ir.NodeID]visitState, len(e.db.Defs))
	var visit func(id ir.NodeID)
	visit = func(id ir.NodeID) {
		if states[id] != 0 {
			// a hard cycle cannot reach here; layout rejects it
			return
		}
		states[id] = stateVisiting
		hard, _ := e.deps(id)
		for _, d := range hard {
			visit(d)
		}
		states[id] = stateDone
		e.order = append(e.order, id)
	}
	for _, id := range e.db.Defs {
		visit(id)
	}

	pos := make(map[ir.NodeID]int, len(e.order))
	for i, id := range e.order {
		pos[id] = i
	}
	for i, id := range e.order {
		_, soft := e.deps(id)
		for _, d := range soft {
			if pos[d] > i {
				e.forward.Insert(d)
			}
		}
	}
}

// needsDeferral reports whether accessors returning item must be defined
// after the database class.
func (e *emitter) needsDeferral(item ir.NodeID) bool {
	return e.local(item) && e.arena.IsShared(item) && item != e.current && !e.emitted.Contains(item)
}
