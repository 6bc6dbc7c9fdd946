package packed

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Word is a single 32-byte log word in big-endian order.
type Word [32]byte

// ParseWord decodes a 0x-prefixed hex string into a Word.
func ParseWord(input string) (Word, error) {
	data, err := hexutil.Decode(input)
	if err != nil {
		return Word{}, fmt.Errorf("invalid word: %w", err)
	}
	if len(data) != 32 {
		return Word{}, fmt.Errorf("word length %d, want 32", len(data))
	}
	var w Word
	copy(w[:], data)
	return w, nil
}

// Hex returns the 0x-prefixed hex encoding, always 64 nibbles.
func (w Word) Hex() string {
	return hexutil.Encode(w[:])
}

// putMagnitude writes value into dst big-endian, failing if it does not fit.
func putMagnitude(dst []byte, value *big.Int, what string) error {
	if value == nil {
		return fmt.Errorf("%s is nil", what)
	}
	if value.Sign() < 0 {
		return fmt.Errorf("%s magnitude is negative", what)
	}
	if value.BitLen() > len(dst)*8 {
		return fmt.Errorf("%s overflows %d bits", what, len(dst)*8)
	}
	value.FillBytes(dst)
	return nil
}
