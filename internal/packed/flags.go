package packed

import "math/big"

// OrderFlags is the 3-bit order flag field carried in a log word.
type OrderFlags struct {
	IsBuy              bool
	IsDecreaseOnly     bool
	IsNegativeLimitFee bool
}

// DecodeOrderFlags interprets the low three bits of value.
func DecodeOrderFlags(value *big.Int) OrderFlags {
	if value == nil {
		return OrderFlags{}
	}
	bits := new(big.Int).Mod(value, big.NewInt(8)).Uint64()
	return OrderFlags{
		IsBuy:              bits&1 != 0,
		IsDecreaseOnly:     bits&2 != 0,
		IsNegativeLimitFee: bits&4 != 0,
	}
}

// DecodeOrderFlagsWord interprets a full log word as order flags.
func DecodeOrderFlagsWord(w Word) OrderFlags {
	return DecodeOrderFlags(new(big.Int).SetBytes(w[:]))
}

// Bits returns the 3-bit wire encoding.
func (f OrderFlags) Bits() uint8 {
	var bits uint8
	if f.IsBuy {
		bits |= 1
	}
	if f.IsDecreaseOnly {
		bits |= 2
	}
	if f.IsNegativeLimitFee {
		bits |= 4
	}
	return bits
}
