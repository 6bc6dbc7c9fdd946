package txmgr

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// ConfirmationMode selects when a submission is considered complete.
type ConfirmationMode int

const (
	// modeUnset lets a request fall back to the configured default.
	modeUnset ConfirmationMode = iota
	// HashOnly resolves on peer acceptance of the transaction.
	HashOnly
	// Confirmed resolves once the requested confirmation count is
	// observed, or on the terminal receipt when no count was requested.
	Confirmed
	// Both resolves the hash inline and hands back a deferred handle
	// for the receipt.
	Both
	// SimulateOnly performs gas estimation and never broadcasts.
	SimulateOnly
)

// ParseMode maps a configuration string to a confirmation mode.
func ParseMode(input string) (ConfirmationMode, error) {
	switch input {
	case "hash":
		return HashOnly, nil
	case "confirmed":
		return Confirmed, nil
	case "both":
		return Both, nil
	case "simulate":
		return SimulateOnly, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidConfirmationMode, input)
	}
}

func (m ConfirmationMode) String() string {
	switch m {
	case HashOnly:
		return "hash"
	case Confirmed:
		return "confirmed"
	case Both:
		return "both"
	case SimulateOnly:
		return "simulate"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Request describes one transaction to drive through its lifecycle.
// Immutable once submission begins.
type Request struct {
	// CallName labels the call in logs and gas records.
	CallName string

	To    common.Address
	From  common.Address
	Data  []byte
	Value *big.Int

	// GasLimit, when nonzero, skips estimation.
	GasLimit uint64
	GasPrice *big.Int

	// GasMultiplier scales the estimate into the gas limit; zero falls
	// back to the coordinator default.
	GasMultiplier float64

	Mode ConfirmationMode

	// MinConfirmations overrides the coordinator default when non-nil.
	// Confirmations(0) explicitly requests resolution on the terminal
	// receipt; a nil field adopts Options.MinConfirmations.
	MinConfirmations *uint64
}

// Confirmations wraps a confirmation count for Request.MinConfirmations,
// keeping an explicit zero distinct from the unset field.
func Confirmations(n uint64) *uint64 {
	return &n
}

// Outcome is the mode-dependent result of a submission. Exactly the
// fields belonging to the mode's variant are set, never more.
type Outcome struct {
	Mode ConfirmationMode

	// HashOnly and Both.
	TxHash common.Hash

	// Confirmed.
	Receipt *types.Receipt

	// Both.
	Pending *PendingReceipt

	// SimulateOnly.
	EstimatedGas uint64
	GasLimit     uint64
}

// Options carries coordinator-level defaults, each overridable per call.
type Options struct {
	GasPrice         *big.Int
	GasMultiplier    float64
	Mode             ConfirmationMode
	MinConfirmations uint64
	From             common.Address

	// ExemptFromAccrual reports destinations whose gas is not accrued
	// (test contracts).
	ExemptFromAccrual func(common.Address) bool
}

// DefaultGasMultiplier scales estimates when neither the request nor the
// options provide one.
const DefaultGasMultiplier = 1.4

// Coordinator drives a transaction through submission, gas-price
// finalization, and the selected confirmation strategy.
type Coordinator struct {
	transport Transport
	estimator *Estimator
	tracker   *GasTracker
	opts      Options
	logger    *zap.Logger
}

// NewCoordinator builds a coordinator. A nil tracker falls back to the
// process-wide one.
func NewCoordinator(transport Transport, tracker *GasTracker, opts Options, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracker == nil {
		tracker = DefaultTracker()
	}
	return &Coordinator{
		transport: transport,
		estimator: NewEstimator(transport, logger),
		tracker:   tracker,
		opts:      opts,
		logger:    logger,
	}
}

// Tracker returns the gas tracker accruals go to.
func (c *Coordinator) Tracker() *GasTracker {
	return c.tracker
}

// Submit drives one transaction to the completion its mode selects.
func (c *Coordinator) Submit(ctx context.Context, req Request) (*Outcome, error) {
	req = c.withDefaults(req)

	switch req.Mode {
	case HashOnly, Confirmed, Both, SimulateOnly:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidConfirmationMode, int(req.Mode))
	}

	call := CallRequest{
		To:               req.To,
		From:             req.From,
		Data:             req.Data,
		Value:            req.Value,
		GasPrice:         req.GasPrice,
		GasLimit:         req.GasLimit,
		MinConfirmations: *req.MinConfirmations,
	}

	if req.Mode == SimulateOnly || req.GasLimit == 0 {
		estimate, err := c.estimator.Estimate(ctx, call)
		if err != nil {
			return nil, err
		}
		call.GasLimit = uint64(math.Floor(float64(estimate) * req.GasMultiplier))

		if req.Mode == SimulateOnly {
			return &Outcome{
				Mode:         SimulateOnly,
				EstimatedGas: estimate,
				GasLimit:     call.GasLimit,
			}, nil
		}
	}

	signals, err := c.transport.Submit(ctx, call)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}

	c.logger.Debug("transaction submitted",
		zap.String("call", req.CallName),
		zap.String("to", req.To.Hex()),
		zap.String("mode", req.Mode.String()),
		zap.Uint64("gas_limit", call.GasLimit),
		zap.Uint64("min_confirmations", *req.MinConfirmations),
	)

	hashRace := newRace()
	confirmRace := newRace()
	go c.dispatch(signals, req, hashRace, confirmRace)

	switch req.Mode {
	case HashOnly:
		if err := hashRace.wait(ctx); err != nil {
			return nil, err
		}
		return &Outcome{Mode: HashOnly, TxHash: hashRace.hash}, nil

	case Confirmed:
		if err := confirmRace.wait(ctx); err != nil {
			return nil, err
		}
		return &Outcome{Mode: Confirmed, Receipt: confirmRace.receipt}, nil

	case Both:
		if err := hashRace.wait(ctx); err != nil {
			return nil, err
		}
		return &Outcome{
			Mode:    Both,
			TxHash:  hashRace.hash,
			Pending: &PendingReceipt{race: confirmRace},
		}, nil

	default:
		// Unreachable; the mode was validated above.
		return nil, fmt.Errorf("%w: %d", ErrInvalidConfirmationMode, int(req.Mode))
	}
}

// dispatch feeds lifecycle signals into the two races. Each race settles
// at most once; anything arriving after that is dropped by the race
// itself. An error rejects the confirmation race only when errors are
// terminal for it: always in Confirmed mode, and in Both mode once the
// hash race has resolved (hash assigned but confirmation later failed).
func (c *Coordinator) dispatch(signals <-chan Signal, req Request, hashRace, confirmRace *race) {
	minConf := *req.MinConfirmations
	for signal := range signals {
		switch signal.Kind {
		case SignalHash:
			hashRace.resolveHash(signal.Hash)

		case SignalConfirmation:
			if minConf > 0 && signal.Confirmations >= minConf {
				if confirmRace.resolveReceipt(signal.Receipt) {
					c.accrue(req, signal.Receipt)
				}
			}

		case SignalReceipt:
			if minConf == 0 {
				if confirmRace.resolveReceipt(signal.Receipt) {
					c.accrue(req, signal.Receipt)
				}
			}

		case SignalError:
			hashRace.reject(&SubmissionError{Err: signal.Err})
			if req.Mode == Confirmed || (req.Mode == Both && hashRace.resolved()) {
				confirmRace.reject(&ConfirmationError{Err: signal.Err})
			}
		}
	}
}

func (c *Coordinator) accrue(req Request, receipt *types.Receipt) {
	if receipt == nil {
		return
	}
	if c.opts.ExemptFromAccrual != nil && c.opts.ExemptFromAccrual(req.To) {
		return
	}
	c.tracker.Add(req.CallName, receipt.GasUsed)
	c.logger.Debug("gas accrued",
		zap.String("call", req.CallName),
		zap.Uint64("gas_used", receipt.GasUsed),
		zap.Uint64("total", c.tracker.Total()),
	)
}

func (c *Coordinator) withDefaults(req Request) Request {
	if req.Mode == modeUnset {
		req.Mode = c.opts.Mode
	}
	if req.Mode == modeUnset {
		req.Mode = HashOnly
	}
	if req.GasPrice == nil {
		req.GasPrice = c.opts.GasPrice
	}
	if req.GasMultiplier == 0 {
		req.GasMultiplier = c.opts.GasMultiplier
	}
	if req.GasMultiplier == 0 {
		req.GasMultiplier = DefaultGasMultiplier
	}
	if req.MinConfirmations == nil {
		req.MinConfirmations = Confirmations(c.opts.MinConfirmations)
	}
	if (req.From == common.Address{}) {
		req.From = c.opts.From
	}
	return req
}
