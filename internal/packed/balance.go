package packed

import (
	"fmt"
	"math/big"
)

// Balance is the packed margin/position balance embedded in one log word.
//
// Word layout, big-endian:
//
//	byte 0       margin sign flag (nonzero = positive)
//	bytes 1..15  margin magnitude (120 bits)
//	byte 16      position sign flag (nonzero = positive)
//	bytes 17..31 position magnitude (120 bits)
type Balance struct {
	MarginIsPositive   bool
	PositionIsPositive bool
	Margin             *big.Int
	Position           *big.Int
}

// DecodeBalance reconstructs a Balance from a log word.
func DecodeBalance(w Word) Balance {
	return Balance{
		MarginIsPositive:   w[0] != 0,
		Margin:             new(big.Int).SetBytes(w[1:16]),
		PositionIsPositive: w[16] != 0,
		Position:           new(big.Int).SetBytes(w[17:32]),
	}
}

// Word encodes the balance back into its log word.
// Magnitudes larger than 120 bits do not fit and return an error.
func (b Balance) Word() (Word, error) {
	var w Word
	if b.MarginIsPositive {
		w[0] = 1
	}
	if err := putMagnitude(w[1:16], b.Margin, "margin"); err != nil {
		return Word{}, fmt.Errorf("encode balance: %w", err)
	}
	if b.PositionIsPositive {
		w[16] = 1
	}
	if err := putMagnitude(w[17:32], b.Position, "position"); err != nil {
		return Word{}, fmt.Errorf("encode balance: %w", err)
	}
	return w, nil
}

// SignedMargin returns the margin with its sign applied.
func (b Balance) SignedMargin() *big.Int {
	return applySign(b.MarginIsPositive, b.Margin)
}

// SignedPosition returns the position with its sign applied.
func (b Balance) SignedPosition() *big.Int {
	return applySign(b.PositionIsPositive, b.Position)
}

// Equal compares two balances by value.
func (b Balance) Equal(other Balance) bool {
	return b.SignedMargin().Cmp(other.SignedMargin()) == 0 &&
		b.SignedPosition().Cmp(other.SignedPosition()) == 0
}

func applySign(positive bool, magnitude *big.Int) *big.Int {
	if magnitude == nil {
		return new(big.Int)
	}
	out := new(big.Int).Set(magnitude)
	if !positive {
		out.Neg(out)
	}
	return out
}
