package emit

import (
	"encoding/binary"
	"math/big"

	"github.com/reoring/dbgen/internal/ir"
	"github.com/reoring/dbgen/internal/number"
)

// DefaultData returns the little-endian default image of a container's
// struct. String defaults live in property metadata, so their slot is zero.
// Unions default to their first variant.
func DefaultData(a *ir.Arena, id ir.NodeID) []byte {
	n := a.Get(id)
	if n.Kind == ir.KindStore {
		n = a.Get(n.Children[0].Node)
	}
	buf := make([]byte, n.Layout.Size)
	fill(a, buf, n)
	return buf
}

func fill(a *ir.Arena, buf []byte, n *ir.Node) {
	switch n.Kind {
	case ir.KindObject:
		for _, c := range n.Children {
			child := a.Get(c.Node)
			if child.Kind == ir.KindObject || child.Kind == ir.KindUnion {
				fill(a, buf[c.Offset:], child)
			}
		}
	case ir.KindUnion:
		if len(n.Children) > 0 {
			fill(a, buf, a.Get(n.Children[0].Node))
		}
	default:
		return
	}
	for i := range n.Properties {
		p := &n.Properties[i]
		if p.HasDefault {
			putValue(buf[p.Offset:p.Offset+p.Size()], p.Default)
		}
	}
}

// putValue encodes one scalar into buf, which is exactly the storage width.
func putValue(buf []byte, v ir.Value) {
	switch v := v.(type) {
	case bool:
		if v {
			buf[0] = 1
		}
	case *big.Int:
		var u uint64
		if v.Sign() < 0 {
			u = uint64(v.Int64())
		} else {
			u = v.Uint64()
		}
		for i := range buf {
			buf[i] = byte(u >> (8 * i))
		}
	case number.Number:
		binary.LittleEndian.PutUint32(buf, v.Bits())
	}
}

// ArrayData encodes the default elements of a fixed-width Array.
func ArrayData(n *ir.Node) []byte {
	size := n.ItemProperty.Size()
	buf := make([]byte, size*len(n.ArrayDefault))
	for i, v := range n.ArrayDefault {
		putValue(buf[i*size:(i+1)*size], v)
	}
	return buf
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
