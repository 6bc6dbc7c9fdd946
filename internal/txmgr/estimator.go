package txmgr

import (
	"context"

	"go.uber.org/zap"
)

// Estimator requests gas estimates from the remote peer.
type Estimator struct {
	transport Transport
	logger    *zap.Logger
}

// NewEstimator builds an estimator over the transport.
func NewEstimator(transport Transport, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{transport: transport, logger: logger}
}

// Estimate returns the peer's gas estimate for the call. Failures carry
// the destination, value, and encoded payload for diagnosis.
func (e *Estimator) Estimate(ctx context.Context, call CallRequest) (uint64, error) {
	estimate, err := e.transport.EstimateGas(ctx, call)
	if err != nil {
		return 0, &GasEstimationError{
			To:    call.To,
			Value: call.Value,
			Data:  call.Data,
			Err:   err,
		}
	}
	e.logger.Debug("gas estimated",
		zap.String("to", call.To.Hex()),
		zap.Uint64("estimate", estimate),
	)
	return estimate, nil
}
