package emit

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/reoring/dbgen/internal/ir"
	"github.com/reoring/dbgen/internal/layout"
	"github.com/reoring/dbgen/internal/number"
)

func TestDefaultData_LittleEndian(t *testing.T) {
	a := ir.NewArena()
	db := a.New(ir.KindDatabase, "db", ir.NoNode)
	obj := a.New(ir.KindObject, "o", db.ID)
	obj.Properties = []ir.Property{
		{Name: "b", Type: ir.TypeBoolean, Storage: ir.StorageBoolean, Default: true, HasDefault: true},
		{Name: "i", Type: ir.TypeInteger, Storage: ir.StorageInt16, Default: big.NewInt(-2), HasDefault: true},
		{Name: "u", Type: ir.TypeInteger, Storage: ir.StorageUInt32, Default: big.NewInt(0x01020304), HasDefault: true},
		{Name: "n", Type: ir.TypeNumber, Storage: ir.StorageNumber, Default: number.Number{Mantissa: 15, Exponent: -1}, HasDefault: true},
		{Name: "s", Type: ir.TypeString, Storage: ir.StorageString, Default: "x", HasDefault: true},
	}
	if err := layout.Analyze(a); err != nil {
		t.Fatal(err)
	}
	got := DefaultData(a, obj.ID)
	want := []byte{
		0x01,
		0xfe, 0xff,
		0x04, 0x03, 0x02, 0x01,
		0x0f, 0x00, 0x00, 0xff,
		0x00, 0x00,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x\nwant % x", got, want)
	}
}

func TestDefaultData_UnionUsesFirstVariant(t *testing.T) {
	a := ir.NewArena()
	db := a.New(ir.KindDatabase, "db", ir.NoNode)
	u := a.New(ir.KindUnion, "u", db.ID)
	first := a.New(ir.KindObject, "A", u.ID)
	first.Properties = []ir.Property{{Name: "v", Type: ir.TypeInteger, Storage: ir.StorageUInt8, Default: big.NewInt(9), HasDefault: true}}
	second := a.New(ir.KindObject, "B", u.ID)
	second.Properties = []ir.Property{{Name: "w", Type: ir.TypeInteger, Storage: ir.StorageUInt16, Default: big.NewInt(0x7777), HasDefault: true}}
	u.Children = []ir.Child{{Name: "A", Node: first.ID}, {Name: "B", Node: second.ID}}
	u.Properties = []ir.Property{{Name: "tag", Type: ir.TypeInteger, Storage: ir.StorageUInt8, Default: new(big.Int), HasDefault: true, Synthetic: true}}
	if err := layout.Analyze(a); err != nil {
		t.Fatal(err)
	}
	got := DefaultData(a, u.ID)
	if !bytes.Equal(got, []byte{0x09, 0x00, 0x00}) {
		t.Fatalf("got % x", got)
	}
}

func TestArrayData(t *testing.T) {
	n := &ir.Node{
		Kind:         ir.KindArray,
		ItemProperty: &ir.Property{Type: ir.TypeInteger, Storage: ir.StorageInt16},
		ArrayDefault: []ir.Value{big.NewInt(1), big.NewInt(-1)},
	}
	if got := ArrayData(n); !bytes.Equal(got, []byte{0x01, 0x00, 0xff, 0xff}) {
		t.Fatalf("got % x", got)
	}
}

func TestCString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`a"b\c`, `"a\"b\\c"`},
		{"tab\there\n", `"tab\there\n"`},
		{"\x01f", `"\001f"`},
		{"é", `"\303\251"`},
	}
	for _, tt := range tests {
		if got := cstring(tt.in); got != tt.want {
			t.Errorf("cstring(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestIntLiteral(t *testing.T) {
	u64max, _ := new(big.Int).SetString("18446744073709551615", 10)
	i64min, _ := new(big.Int).SetString("-9223372036854775808", 10)
	tests := []struct {
		in   *big.Int
		want string
	}{
		{big.NewInt(0), "0"},
		{big.NewInt(-2147483648), "-2147483648"},
		{big.NewInt(2147483648), "2147483648LL"},
		{big.NewInt(-2147483649), "-2147483649LL"},
		{i64min, "INT64_MIN"},
		{u64max, "18446744073709551615ULL"},
	}
	for _, tt := range tests {
		if got := intLiteral(tt.in); got != tt.want {
			t.Errorf("intLiteral(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTemplateName(t *testing.T) {
	if got := templateName("ConfigDB::ArrayTemplate<Pins, uint16_t>"); got != "ArrayTemplate" {
		t.Fatalf("got %q", got)
	}
	if got := templateName("ConfigDB::StringArrayTemplate<Names>"); got != "StringArrayTemplate" {
		t.Fatalf("got %q", got)
	}
}
