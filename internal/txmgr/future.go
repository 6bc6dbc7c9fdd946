package txmgr

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// race states. A race leaves racePending exactly once.
const (
	racePending int32 = iota
	raceResolved
	raceRejected
)

// race is a one-shot resolution slot observed against the transport's
// signal stream. The once guard makes the at-most-once transition
// structural: duplicate or late signals after settlement are ignored, so
// an error arriving after a receipt cannot re-reject an already resolved
// race.
type race struct {
	state atomic.Int32
	once  sync.Once
	done  chan struct{}

	hash    common.Hash
	receipt *types.Receipt
	err     error
}

func newRace() *race {
	return &race{done: make(chan struct{})}
}

func (r *race) settle(state int32, fn func()) bool {
	settled := false
	r.once.Do(func() {
		fn()
		r.state.Store(state)
		close(r.done)
		settled = true
	})
	return settled
}

// resolveHash settles the race with an inclusion hash. Reports whether
// this call performed the transition.
func (r *race) resolveHash(hash common.Hash) bool {
	return r.settle(raceResolved, func() { r.hash = hash })
}

// resolveReceipt settles the race with a receipt.
func (r *race) resolveReceipt(receipt *types.Receipt) bool {
	return r.settle(raceResolved, func() { r.receipt = receipt })
}

// reject settles the race with an error.
func (r *race) reject(err error) bool {
	return r.settle(raceRejected, func() { r.err = err })
}

// resolved reports whether the race settled successfully.
func (r *race) resolved() bool {
	return r.state.Load() == raceResolved
}

// wait blocks until the race settles or ctx is done.
func (r *race) wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PendingReceipt is a deferred handle to the confirmation race, returned
// by Both-mode submissions so the caller can await the receipt after
// already holding the transaction hash.
type PendingReceipt struct {
	race *race
}

// Wait blocks until the transaction confirms or the confirmation race is
// rejected. Abandoning the handle leaves the transport's listeners
// attached until a terminal signal arrives; cleanup is the transport's
// responsibility.
func (p *PendingReceipt) Wait(ctx context.Context) (*types.Receipt, error) {
	if err := p.race.wait(ctx); err != nil {
		return nil, err
	}
	return p.race.receipt, nil
}
