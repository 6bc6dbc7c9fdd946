package txmgr

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrInvalidConfirmationMode fails a submission synchronously, before any
// network call, when the requested mode is not one of the enumerated ones.
var ErrInvalidConfirmationMode = errors.New("invalid confirmation mode")

// GasEstimationError augments a failed estimate with the call context
// needed to diagnose it externally. The estimator never substitutes a
// default on failure.
type GasEstimationError struct {
	To    common.Address
	Value *big.Int
	Data  []byte
	Err   error
}

func (e *GasEstimationError) Error() string {
	value := e.Value
	if value == nil {
		value = new(big.Int)
	}
	return fmt.Sprintf("gas estimation failed for call to %s (value %s, data %s): %v",
		e.To.Hex(), value, hexutil.Encode(e.Data), e.Err)
}

func (e *GasEstimationError) Unwrap() error {
	return e.Err
}

// SubmissionError wraps a transport error observed before the peer
// assigned a transaction hash.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("transaction submission rejected: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ConfirmationError wraps a transport error that terminated the
// confirmation wait after submission.
type ConfirmationError struct {
	Err error
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("transaction confirmation failed: %v", e.Err)
}

func (e *ConfirmationError) Unwrap() error {
	return e.Err
}
