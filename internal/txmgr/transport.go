package txmgr

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SignalKind discriminates transport lifecycle signals.
type SignalKind int

const (
	// SignalError reports a transport failure. It may arrive at any
	// point, including after a hash or receipt signal.
	SignalError SignalKind = iota
	// SignalHash reports acceptance by the peer; emitted at most once.
	SignalHash
	// SignalConfirmation reports the current confirmation count along
	// with the receipt it was computed from. Emitted repeatedly when a
	// minimum confirmation count was requested.
	SignalConfirmation
	// SignalReceipt is the terminal receipt, emitted when no minimum
	// confirmation count was requested.
	SignalReceipt
)

// Signal is one event in a submitted transaction's lifecycle.
type Signal struct {
	Kind          SignalKind
	Err           error
	Hash          common.Hash
	Confirmations uint64
	Receipt       *types.Receipt
}

// CallRequest is the finalized call handed to the transport.
type CallRequest struct {
	To       common.Address
	From     common.Address
	Data     []byte
	Value    *big.Int
	GasPrice *big.Int
	GasLimit uint64

	// MinConfirmations selects the transport's terminal behavior: zero
	// means a single terminal receipt signal, nonzero means a stream of
	// confirmation-count signals.
	MinConfirmations uint64
}

// Transport is the remote peer boundary. Submit broadcasts one
// transaction and returns its lifecycle signal stream; the transport
// closes the channel after a terminal signal. The core attaches no
// timeouts of its own: liveness is governed by ctx and the transport.
type Transport interface {
	EstimateGas(ctx context.Context, call CallRequest) (uint64, error)
	Submit(ctx context.Context, call CallRequest) (<-chan Signal, error)
}
