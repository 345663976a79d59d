package layout_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/reoring/dbgen/diag"
	"github.com/reoring/dbgen/internal/ir"
	"github.com/reoring/dbgen/internal/layout"
	"github.com/reoring/dbgen/internal/number"
)

func bi(v int64) *big.Int { return big.NewInt(v) }

func TestIntegerStorage_Minimal(t *testing.T) {
	u64max, _ := new(big.Int).SetString("18446744073709551615", 10)
	tests := []struct {
		lo, hi *big.Int
		want   ir.Storage
	}{
		{bi(0), bi(255), ir.StorageUInt8},
		{bi(0), bi(256), ir.StorageUInt16},
		{bi(0), bi(300), ir.StorageUInt16},
		{bi(-1), bi(127), ir.StorageInt8},
		{bi(-129), bi(0), ir.StorageInt16},
		{bi(-1 << 31), bi(1<<31 - 1), ir.StorageInt32},
		{bi(0), bi(1 << 32), ir.StorageUInt64},
		{bi(-1), bi(1 << 40), ir.StorageInt64},
		{bi(0), u64max, ir.StorageUInt64},
	}
	for _, tt := range tests {
		got, err := layout.IntegerStorage(tt.lo, tt.hi)
		if err != nil {
			t.Fatalf("[%s, %s]: %v", tt.lo, tt.hi, err)
		}
		if got != tt.want {
			t.Errorf("[%s, %s] = %s, want %s", tt.lo, tt.hi, got, tt.want)
		}
	}
}

// Every narrower width of the same signedness must fail to cover the range.
func TestIntegerWidth_NoNarrowerFits(t *testing.T) {
	ranges := [][2]int64{{0, 300}, {-5, 5}, {-40000, 3}, {0, 70000}}
	for _, r := range ranges {
		signed, bits, err := layout.IntegerWidth(bi(r[0]), bi(r[1]))
		if err != nil {
			t.Fatal(err)
		}
		for w := 8; w < bits; w *= 2 {
			lo, hi := layout.TypeRange(signed, w)
			if lo.Cmp(bi(r[0])) <= 0 && hi.Cmp(bi(r[1])) >= 0 {
				t.Errorf("%v: %d bits chosen but %d bits fit", r, bits, w)
			}
		}
	}
}

func TestIntegerWidth_Errors(t *testing.T) {
	if _, _, err := layout.IntegerWidth(bi(5), bi(1)); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	huge := new(big.Int).Lsh(bi(1), 64)
	if _, _, err := layout.IntegerWidth(bi(0), huge); err == nil {
		t.Fatalf("expected error beyond 64 bits")
	}
	if _, _, err := layout.IntegerWidth(bi(-1), new(big.Int).Lsh(bi(1), 63)); err == nil {
		t.Fatalf("expected error for signed range beyond int64")
	}
}

func TestResolveProperty_IntegerRange(t *testing.T) {
	p := &ir.Property{Name: "x", Type: ir.TypeInteger, Minimum: bi(0), Maximum: bi(300)}
	if err := layout.ResolveProperty("t.json", p); err != nil {
		t.Fatal(err)
	}
	if p.Storage != ir.StorageUInt16 || p.Size() != 2 {
		t.Fatalf("storage = %s size %d", p.Storage, p.Size())
	}
}

func TestResolveProperty_DefaultBounds(t *testing.T) {
	p := &ir.Property{Name: "x", Type: ir.TypeInteger}
	if err := layout.ResolveProperty("t.json", p); err != nil {
		t.Fatal(err)
	}
	if p.Storage != ir.StorageInt32 {
		t.Fatalf("storage = %s, want Int32", p.Storage)
	}
	if p.Minimum.Cmp(layout.DefaultIntMin) != 0 || p.Maximum.Cmp(layout.DefaultIntMax) != 0 {
		t.Fatalf("bounds = [%s, %s]", p.Minimum, p.Maximum)
	}
}

func TestResolveProperty_DefaultOutOfRange(t *testing.T) {
	p := &ir.Property{
		Name: "x", Path: "/properties/x", Type: ir.TypeInteger,
		Minimum: bi(0), Maximum: bi(10), Default: bi(11), HasDefault: true,
	}
	err := layout.ResolveProperty("t.json", p)
	if !errors.Is(err, diag.ErrRangeViolation) {
		t.Fatalf("expected range violation, got %v", err)
	}
}

func TestResolveProperty_EnumStoresOrdinal(t *testing.T) {
	p := &ir.Property{
		Name: "color", Type: ir.TypeString,
		Enum:    []ir.Value{"red", "green", "blue"},
		Default: bi(1), HasDefault: true,
	}
	if err := layout.ResolveProperty("t.json", p); err != nil {
		t.Fatal(err)
	}
	if p.Storage != ir.StorageUInt8 {
		t.Fatalf("storage = %s, want UInt8", p.Storage)
	}
}

func TestResolveProperty_Number(t *testing.T) {
	lo := number.Number{Mantissa: 0}
	hi := number.Number{Mantissa: 1, Exponent: 2}
	p := &ir.Property{
		Name: "n", Type: ir.TypeNumber, NumMinimum: &lo, NumMaximum: &hi,
		Default: number.Number{Mantissa: 2, Exponent: 2}, HasDefault: true,
	}
	if err := layout.ResolveProperty("t.json", p); !errors.Is(err, diag.ErrRangeViolation) {
		t.Fatalf("expected range violation, got %v", err)
	}
	p.Default = number.Number{Mantissa: 5, Exponent: 1}
	if err := layout.ResolveProperty("t.json", p); err != nil {
		t.Fatal(err)
	}
	if p.Storage != ir.StorageNumber || p.Size() != 4 {
		t.Fatalf("storage = %s", p.Storage)
	}
}

func prop(t *testing.T, name string, lo, hi int64) ir.Property {
	t.Helper()
	p := ir.Property{Name: name, Type: ir.TypeInteger, Minimum: bi(lo), Maximum: bi(hi)}
	if err := layout.ResolveProperty("t.json", &p); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestAnalyze_ObjectAdditive(t *testing.T) {
	a := ir.NewArena()
	db := a.New(ir.KindDatabase, "db", ir.NoNode)
	store := a.New(ir.KindStore, "", db.ID)
	root := a.New(ir.KindObject, "", store.ID)
	store.Children = []ir.Child{{Node: root.ID}}

	inner := a.New(ir.KindObject, "inner", root.ID)
	inner.Properties = []ir.Property{prop(t, "a", 0, 10), prop(t, "b", 0, 70000)}
	list := a.New(ir.KindArray, "list", root.ID)
	list.ItemProperty = &ir.Property{Name: "item", Type: ir.TypeBoolean, Storage: ir.StorageBoolean}
	root.Children = []ir.Child{{Name: "inner", Node: inner.ID}, {Name: "list", Node: list.ID}}
	root.Properties = []ir.Property{
		prop(t, "x", 0, 300),
		{Name: "s", Type: ir.TypeString, Storage: ir.StorageString},
	}

	if err := layout.Analyze(a); err != nil {
		t.Fatal(err)
	}
	if inner.Layout.Size != 5 {
		t.Fatalf("inner size = %d, want 5", inner.Layout.Size)
	}
	if inner.Properties[1].Offset != 1 {
		t.Fatalf("b offset = %d", inner.Properties[1].Offset)
	}
	// inner(5) + list id(2) + x(2) + s(2)
	if root.Layout.Size != 11 {
		t.Fatalf("root size = %d, want 11", root.Layout.Size)
	}
	wantOffsets := []int{0, 5}
	for i, c := range root.Children {
		if c.Offset != wantOffsets[i] {
			t.Errorf("child %s offset = %d, want %d", c.Name, c.Offset, wantOffsets[i])
		}
	}
	if root.Properties[0].Offset != 7 || root.Properties[1].Offset != 9 {
		t.Fatalf("property offsets = %d, %d", root.Properties[0].Offset, root.Properties[1].Offset)
	}
	if store.Layout.Size != root.Layout.Size {
		t.Fatalf("store size = %d", store.Layout.Size)
	}
	if layout.Size(a, list.ID) != ir.ArrayIDSize || layout.ItemSize(a, list.ID) != 1 {
		t.Fatalf("array sizes wrong")
	}
}

func TestAnalyze_UnionWidestVariantPlusTag(t *testing.T) {
	a := ir.NewArena()
	db := a.New(ir.KindDatabase, "db", ir.NoNode)
	u := a.New(ir.KindUnion, "color", db.ID)
	rgb := a.New(ir.KindObject, "RGB", u.ID)
	rgb.Properties = []ir.Property{prop(t, "r", 0, 255), prop(t, "g", 0, 255)}
	gray := a.New(ir.KindObject, "Gray", u.ID)
	gray.Properties = []ir.Property{prop(t, "level", 0, 255)}
	u.Children = []ir.Child{{Name: "RGB", Node: rgb.ID}, {Name: "Gray", Node: gray.ID}}
	u.Properties = []ir.Property{prop(t, "tag", 0, 1)}

	if err := layout.Analyze(a); err != nil {
		t.Fatal(err)
	}
	if u.Layout.Size != 3 {
		t.Fatalf("union size = %d, want 3", u.Layout.Size)
	}
	for _, c := range u.Children {
		if c.Offset != 0 {
			t.Fatalf("variant %s offset = %d", c.Name, c.Offset)
		}
	}
	if u.Properties[0].Offset != 2 {
		t.Fatalf("tag offset = %d, want 2", u.Properties[0].Offset)
	}
}

func TestAnalyze_RecursiveLayout(t *testing.T) {
	a := ir.NewArena()
	db := a.New(ir.KindDatabase, "db", ir.NoNode)
	node := a.New(ir.KindObject, "node", db.ID)
	node.Children = []ir.Child{{Name: "next", Node: node.ID}}
	if err := layout.Analyze(a); !errors.Is(err, diag.ErrRecursiveLayout) {
		t.Fatalf("expected recursive layout error, got %v", err)
	}
}

func TestAnalyze_RecursionThroughArrayIsLegal(t *testing.T) {
	a := ir.NewArena()
	db := a.New(ir.KindDatabase, "db", ir.NoNode)
	node := a.New(ir.KindObject, "node", db.ID)
	list := a.New(ir.KindObjectArray, "children", node.ID)
	list.Item = node.ID
	node.Children = []ir.Child{{Name: "children", Node: list.ID}}
	if err := layout.Analyze(a); err != nil {
		t.Fatal(err)
	}
	if node.Layout.Size != ir.ArrayIDSize {
		t.Fatalf("size = %d", node.Layout.Size)
	}
	if layout.ItemSize(a, list.ID) != ir.ArrayIDSize {
		t.Fatalf("item size = %d", layout.ItemSize(a, list.ID))
	}
}
