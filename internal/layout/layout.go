// Package layout derives storage types, sizes and offsets for the schema graph.
package layout

import (
	"fmt"
	"math/big"

	"github.com/reoring/dbgen/diag"
	"github.com/reoring/dbgen/internal/ir"
	"github.com/reoring/dbgen/internal/number"
)

// Default integer bounds when a schema omits minimum/maximum.
var (
	DefaultIntMin = big.NewInt(-1 << 31)
	DefaultIntMax = big.NewInt(1<<31 - 1)
)

// TypeRange returns the representable range of an integer width.
func TypeRange(signed bool, bits int) (lo, hi *big.Int) {
	one := big.NewInt(1)
	if signed {
		hi = new(big.Int).Sub(new(big.Int).Lsh(one, uint(bits-1)), one)
		lo = new(big.Int).Neg(new(big.Int).Lsh(one, uint(bits-1)))
		return lo, hi
	}
	return new(big.Int), new(big.Int).Sub(new(big.Int).Lsh(one, uint(bits)), one)
}

// IntegerWidth returns the smallest power-of-two width (8..64) whose range
// covers [minimum, maximum]. Signedness follows minimum < 0.
func IntegerWidth(minimum, maximum *big.Int) (signed bool, bits int, err error) {
	if minimum.Cmp(maximum) > 0 {
		return false, 0, fmt.Errorf("minimum %s exceeds maximum %s", minimum, maximum)
	}
	signed = minimum.Sign() < 0
	for bits = 8; bits <= 64; bits *= 2 {
		lo, hi := TypeRange(signed, bits)
		if lo.Cmp(minimum) <= 0 && hi.Cmp(maximum) >= 0 {
			return signed, bits, nil
		}
	}
	return signed, 0, fmt.Errorf("range [%s, %s] exceeds 64 bits", minimum, maximum)
}

// IntegerStorage maps an integer range onto a storage kind.
func IntegerStorage(minimum, maximum *big.Int) (ir.Storage, error) {
	signed, bits, err := IntegerWidth(minimum, maximum)
	if err != nil {
		return 0, err
	}
	base := ir.StorageUInt8
	if signed {
		base = ir.StorageInt8
	}
	switch bits {
	case 16:
		base++
	case 32:
		base += 2
	case 64:
		base += 3
	}
	return base, nil
}

// ResolveProperty derives the storage of a property and checks its default
// and enum values against the declared or derived range.
func ResolveProperty(file string, p *ir.Property) error {
	rangeErr := func(format string, args ...any) error {
		return diag.RangeViolation(file, p.Path, fmt.Sprintf(format, args...))
	}

	switch p.Type {
	case ir.TypeBoolean:
		p.Storage = ir.StorageBoolean
	case ir.TypeString:
		p.Storage = ir.StorageString
	case ir.TypeInteger:
		if p.IsEnum() {
			for _, v := range p.Enum {
				iv := v.(*big.Int)
				if p.Minimum == nil || iv.Cmp(p.Minimum) < 0 {
					p.Minimum = iv
				}
				if p.Maximum == nil || iv.Cmp(p.Maximum) > 0 {
					p.Maximum = iv
				}
			}
		}
		if p.Minimum == nil {
			p.Minimum = DefaultIntMin
		}
		if p.Maximum == nil {
			p.Maximum = DefaultIntMax
		}
		st, err := IntegerStorage(p.Minimum, p.Maximum)
		if err != nil {
			return rangeErr("%v", err)
		}
		p.Storage = st
		if p.HasDefault && !p.IsEnum() {
			if err := CheckValue(p, p.Default); err != nil {
				return rangeErr("default %v", err)
			}
		}
	case ir.TypeNumber:
		if p.NumMinimum == nil {
			p.NumMinimum = &number.Min
		}
		if p.NumMaximum == nil {
			p.NumMaximum = &number.Max
		}
		if number.Compare(*p.NumMinimum, *p.NumMaximum) > 0 {
			return rangeErr("minimum %s exceeds maximum %s", *p.NumMinimum, *p.NumMaximum)
		}
		p.Storage = ir.StorageNumber
		for i, v := range p.Enum {
			if err := CheckValue(p, v); err != nil {
				return rangeErr("enum[%d] %v", i, err)
			}
		}
		if p.HasDefault && !p.IsEnum() {
			if err := CheckValue(p, p.Default); err != nil {
				return rangeErr("default %v", err)
			}
		}
	default:
		return fmt.Errorf("property %q: unknown type %v", p.Name, p.Type)
	}

	if p.IsEnum() {
		st, err := IntegerStorage(new(big.Int), big.NewInt(int64(len(p.Enum)-1)))
		if err != nil {
			return rangeErr("%v", err)
		}
		p.Storage = st
		if p.HasDefault {
			ord := p.Default.(*big.Int)
			if ord.Sign() < 0 || ord.Cmp(big.NewInt(int64(len(p.Enum)))) >= 0 {
				return rangeErr("default ordinal %s outside enum", ord)
			}
		}
	}
	return nil
}

// CheckValue reports whether a literal lies within the property's range.
func CheckValue(p *ir.Property, v ir.Value) error {
	switch p.Type {
	case ir.TypeInteger:
		iv, ok := v.(*big.Int)
		if !ok {
			return fmt.Errorf("%v is not an integer", v)
		}
		if p.Minimum != nil && iv.Cmp(p.Minimum) < 0 || p.Maximum != nil && iv.Cmp(p.Maximum) > 0 {
			return fmt.Errorf("%s outside range [%s, %s]", iv, p.Minimum, p.Maximum)
		}
	case ir.TypeNumber:
		nv, ok := v.(number.Number)
		if !ok {
			return fmt.Errorf("%v is not a number", v)
		}
		lo, hi := number.Min, number.Max
		if p.NumMinimum != nil {
			lo = *p.NumMinimum
		}
		if p.NumMaximum != nil {
			hi = *p.NumMaximum
		}
		if number.Compare(nv, lo) < 0 || number.Compare(nv, hi) > 0 {
			return fmt.Errorf("%s outside range [%s, %s]", nv, lo, hi)
		}
	}
	return nil
}
