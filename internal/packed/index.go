package packed

import (
	"fmt"
	"math/big"
)

// Index is the packed funding index/rate embedded in one log word.
//
// Word layout, big-endian:
//
//	bytes 0..14  timestamp (120 bits, unsigned)
//	byte 15      sign flag (nonzero = positive)
//	bytes 16..31 fixed-point magnitude (128 bits, 18 decimals)
type Index struct {
	Timestamp *big.Int
	Value     Fixed
}

// DecodeIndex reconstructs an Index from a log word.
func DecodeIndex(w Word) Index {
	positive := w[15] != 0
	magnitude := new(big.Int).SetBytes(w[16:32])
	return Index{
		Timestamp: new(big.Int).SetBytes(w[0:15]),
		Value:     FixedFromSignMag(!positive, magnitude),
	}
}

// Word encodes the index back into its log word.
func (i Index) Word() (Word, error) {
	var w Word
	if err := putMagnitude(w[0:15], i.Timestamp, "timestamp"); err != nil {
		return Word{}, fmt.Errorf("encode index: %w", err)
	}
	if !i.Value.IsNegative() {
		w[15] = 1
	}
	if err := putMagnitude(w[16:32], i.Value.Magnitude(), "value"); err != nil {
		return Word{}, fmt.Errorf("encode index: %w", err)
	}
	return w, nil
}

// Equal compares two indices by value.
func (i Index) Equal(other Index) bool {
	ts, ots := i.Timestamp, other.Timestamp
	if ts == nil {
		ts = new(big.Int)
	}
	if ots == nil {
		ots = new(big.Int)
	}
	return ts.Cmp(ots) == 0 && i.Value.Equal(other.Value)
}
