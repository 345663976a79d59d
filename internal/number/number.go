// Package number implements the packed base-10 floating point format used
// for "number" properties: value = mantissa * 10^exponent, stored in 32 bits
// as a 24-bit signed mantissa (low bits) and an 8-bit signed exponent.
package number

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MaxMantissa = 0x7fffff
	MaxExponent = 0x7e

	// Size is the storage size in bytes.
	Size = 4
)

var (
	ErrInvalid  = errors.New("invalid number")
	ErrOverflow = errors.New("number overflow")
)

// Number is a normalised base-10 value.
type Number struct {
	Mantissa int32
	Exponent int32
}

// Min and Max are the extremes of the representable range.
var (
	Min = Number{Mantissa: -MaxMantissa, Exponent: MaxExponent}
	Max = Number{Mantissa: MaxMantissa, Exponent: MaxExponent}
)

// Parse reads a decimal literal such as "-12.5", "3e-4" or "1.5E+3".
// Digits beyond the mantissa capacity are rounded away.
func Parse(s string) (Number, error) {
	const (
		stateSign = iota
		stateMant
		stateFrac
		stateRounded
		stateExp
	)
	if s == "" {
		return Number{}, ErrInvalid
	}
	state := stateSign
	var (
		isNeg     bool
		mantissa  uint32
		shift     int
		exponent  int
		expIsNeg  bool
		sawDigit  bool
		expDigits bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		isDigit := c >= '0' && c <= '9'
		switch state {
		case stateSign:
			switch {
			case c == '+':
			case c == '-':
				isNeg = true
			case c == '.':
				state = stateFrac
			case isDigit:
				mantissa = uint32(c - '0')
				sawDigit = true
				state = stateMant
			default:
				return Number{}, ErrInvalid
			}
		case stateMant:
			switch {
			case c == '.':
				state = stateFrac
			case c == 'e' || c == 'E':
				state = stateExp
			case isDigit:
				m := mantissa*10 + uint32(c-'0')
				if m > MaxMantissa {
					// keep magnitude, drop precision
					if c >= '5' {
						mantissa++
					}
					shift++
					state = stateRounded
					break
				}
				mantissa = m
			default:
				return Number{}, ErrInvalid
			}
		case stateFrac:
			switch {
			case c == 'e' || c == 'E':
				state = stateExp
			case isDigit:
				sawDigit = true
				m := mantissa*10 + uint32(c-'0')
				if m > MaxMantissa {
					if c >= '5' {
						mantissa++
					}
					state = stateRounded
					break
				}
				mantissa = m
				shift--
			default:
				return Number{}, ErrInvalid
			}
		case stateRounded:
			switch {
			case c == 'e' || c == 'E':
				state = stateExp
			case c == '.':
			case isDigit:
				if !strings.Contains(s[:i], ".") {
					shift++
				}
			default:
				return Number{}, ErrInvalid
			}
		case stateExp:
			switch {
			case c == '+' && !expDigits:
			case c == '-' && !expDigits:
				expIsNeg = true
			case isDigit:
				expDigits = true
				exponent = exponent*10 + int(c-'0')
				if exponent > 1000 {
					return Number{}, ErrOverflow
				}
			default:
				return Number{}, ErrInvalid
			}
		}
	}
	if !sawDigit || (state == stateExp && !expDigits) {
		return Number{}, ErrInvalid
	}
	if expIsNeg {
		shift -= exponent
	} else {
		shift += exponent
	}
	return Normalise(mantissa, shift, isNeg)
}

// Normalise strips trailing zeros from the mantissa and checks the exponent.
func Normalise(mantissa uint32, exponent int, isNeg bool) (Number, error) {
	if mantissa == 0 {
		return Number{}, nil
	}
	for mantissa >= 10 && mantissa%10 == 0 {
		mantissa /= 10
		exponent++
	}
	for mantissa > MaxMantissa {
		mantissa = (mantissa + 5) / 10
		exponent++
	}
	if exponent > MaxExponent || exponent < -MaxExponent {
		return Number{}, ErrOverflow
	}
	m := int32(mantissa)
	if isNeg {
		m = -m
	}
	return Number{Mantissa: m, Exponent: int32(exponent)}, nil
}

// Compare returns -1, 0 or +1.
func Compare(a, b Number) int {
	if a.Mantissa == 0 || b.Mantissa == 0 || (a.Mantissa < 0) != (b.Mantissa < 0) {
		return cmpInt(int64(a.Mantissa), int64(b.Mantissa))
	}
	// same sign: compare magnitudes via adjusted exponents
	r := compareMagnitude(abs(a.Mantissa), a.Exponent, abs(b.Mantissa), b.Exponent)
	if a.Mantissa < 0 {
		return -r
	}
	return r
}

func compareMagnitude(m1 int64, e1 int32, m2 int64, e2 int32) int {
	a1 := adjusted(m1, e1)
	a2 := adjusted(m2, e2)
	if a1 != a2 {
		return cmpInt(int64(a1), int64(a2))
	}
	// same leading digit position: align mantissas
	for e1 > e2 {
		m1 *= 10
		e1--
	}
	for e2 > e1 {
		m2 *= 10
		e2--
	}
	return cmpInt(m1, m2)
}

// adjusted is the exponent of the most significant digit.
func adjusted(m int64, e int32) int32 {
	for m >= 10 {
		m /= 10
		e++
	}
	return e
}

func abs(v int32) int64 {
	if v < 0 {
		return -int64(v)
	}
	return int64(v)
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Bits returns the packed 32-bit storage value.
func (n Number) Bits() uint32 {
	return uint32(n.Mantissa)&0xffffff | uint32(uint8(int8(n.Exponent)))<<24
}

func (n Number) String() string {
	if n.Exponent == 0 {
		return fmt.Sprintf("%d", n.Mantissa)
	}
	return fmt.Sprintf("%de%d", n.Mantissa, n.Exponent)
}
