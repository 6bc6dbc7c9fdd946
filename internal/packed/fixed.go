package packed

import (
	"math/big"
	"strings"
)

// FixedDecimals is the number of decimal places carried by protocol values.
const FixedDecimals = 18

var fixedOne = new(big.Int).Exp(big.NewInt(10), big.NewInt(FixedDecimals), nil)

// Fixed is a signed fixed-point value with 18 decimal places.
// Raw is the value scaled by 10^18.
type Fixed struct {
	Raw *big.Int
}

// NewFixed builds a Fixed from a raw scaled integer.
func NewFixed(raw *big.Int) Fixed {
	if raw == nil {
		raw = new(big.Int)
	}
	return Fixed{Raw: new(big.Int).Set(raw)}
}

// FixedFromSignMag builds a Fixed from a sign flag and magnitude.
func FixedFromSignMag(negative bool, magnitude *big.Int) Fixed {
	if magnitude == nil {
		magnitude = new(big.Int)
	}
	raw := new(big.Int).Set(magnitude)
	if negative {
		raw.Neg(raw)
	}
	return Fixed{Raw: raw}
}

// IsNegative reports whether the value is below zero.
func (f Fixed) IsNegative() bool {
	return f.Raw != nil && f.Raw.Sign() < 0
}

// Magnitude returns the absolute raw value.
func (f Fixed) Magnitude() *big.Int {
	if f.Raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Abs(f.Raw)
}

// Equal reports raw equality.
func (f Fixed) Equal(other Fixed) bool {
	if f.Raw == nil || other.Raw == nil {
		return (f.Raw == nil || f.Raw.Sign() == 0) && (other.Raw == nil || other.Raw.Sign() == 0)
	}
	return f.Raw.Cmp(other.Raw) == 0
}

// String renders the value as a decimal with trailing zeros trimmed.
func (f Fixed) String() string {
	raw := f.Raw
	if raw == nil {
		raw = new(big.Int)
	}
	abs := new(big.Int).Abs(raw)
	whole, frac := new(big.Int).QuoRem(abs, fixedOne, new(big.Int))

	out := whole.String()
	if frac.Sign() != 0 {
		digits := frac.String()
		digits = strings.Repeat("0", FixedDecimals-len(digits)) + digits
		digits = strings.TrimRight(digits, "0")
		out += "." + digits
	}
	if raw.Sign() < 0 {
		out = "-" + out
	}
	return out
}

// MarshalJSON encodes the value as a decimal string.
func (f Fixed) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}
