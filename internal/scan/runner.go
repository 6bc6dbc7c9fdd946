package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"perpflow/internal/chain"
	"perpflow/internal/events"
	"perpflow/internal/model"
	"perpflow/internal/registry"
	"perpflow/internal/storage"
)

// RunConfig holds runtime settings for the scanner.
type RunConfig struct {
	FromBlock         uint64
	ToBlock           uint64
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner streams protocol logs from the chain, decodes them, and writes
// the decoded events to storage.
type Runner struct {
	cfg        RunConfig
	chain      *chain.Client
	registry   *registry.Registry
	decoder    *events.Decoder
	storage    storage.Storage
	logger     *zap.Logger
	seen       map[string]struct{}
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(
	cfg RunConfig,
	chainClient *chain.Client,
	reg *registry.Registry,
	decoder *events.Decoder,
	storageSink storage.Storage,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainClient,
		registry:   reg,
		decoder:    decoder,
		storage:    storageSink,
		logger:     logger,
		seen:       make(map[string]struct{}),
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, networkOf(reg), cfg.CheckpointEnabled),
	}
}

// Run executes the scan loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.registry == nil {
		return fmt.Errorf("registry is nil")
	}
	if r.decoder == nil {
		return fmt.Errorf("decoder is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	addresses := r.registry.Addresses()
	if len(addresses) == 0 {
		return fmt.Errorf("no deployed contracts for network %d", r.registry.Network())
	}

	chainID, err := r.chain.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != r.registry.Network() {
		return fmt.Errorf("rpc chain id %s does not match network %d", chainID, r.registry.Network())
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load()
		if err != nil {
			return err
		}
		if ok && cp.LastProcessedBlock >= from {
			from = cp.LastProcessedBlock + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessedBlock), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to scan", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		logs, err := r.filterLogsWithRetry(ctx, blockRange.From, blockRange.To, addresses)
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		decoded, failures := r.decodeBatch(logs)

		for i := range decoded {
			ts, err := r.blockTimestampWithRetry(ctx, decoded[i].BlockNumber)
			if err != nil {
				return fmt.Errorf("block timestamp %d: %w", decoded[i].BlockNumber, err)
			}
			decoded[i].BlockTime = ts
		}

		if err := r.storage.PutEventBatch(decoded); err != nil {
			return fmt.Errorf("store events: %w", err)
		}
		if err := r.storage.PutDecodeErrors(failures); err != nil {
			return fmt.Errorf("store decode errors: %w", err)
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(blockRange.To); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete",
			zap.Int("logs", len(logs)),
			zap.Int("decoded", len(decoded)),
			zap.Int("failures", len(failures)),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
		)
	}

	return nil
}

func (r *Runner) decodeBatch(logs []types.Log) ([]model.DecodedEvent, []model.DecodeError) {
	decoded := make([]model.DecodedEvent, 0, len(logs))
	failures := make([]model.DecodeError, 0)

	for _, log := range logs {
		if log.Removed || r.isDuplicate(log) {
			continue
		}

		event, err := r.decoder.Decode(log)
		if err != nil {
			failures = append(failures, buildDecodeError(log, err))
			continue
		}
		if event == nil {
			// No registered contract knows this signature.
			r.logger.Debug("unrecognized log",
				zap.String("address", log.Address.Hex()),
				zap.Uint64("block_number", log.BlockNumber),
			)
			continue
		}

		decoded = append(decoded, *event)
	}

	return decoded, failures
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address) ([]types.Log, error) {
	var logs []types.Log
	logger := r.logger.With(zap.String("op", "filter_logs"), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, logger, func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogs(ctx, fromBlock, toBlock, addresses, nil)
		return err
	})
	return logs, err
}

func (r *Runner) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	logger := r.logger.With(zap.String("op", "block_timestamp"), zap.Uint64("block_number", blockNumber))
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, logger, func(ctx context.Context) error {
		var err error
		ts, err = r.chain.BlockTimestamp(ctx, blockNumber)
		return err
	})
	return ts, err
}

// networkOf tolerates a nil registry so Runner construction never
// panics before Run's own validation rejects it.
func networkOf(reg *registry.Registry) uint64 {
	if reg == nil {
		return 0
	}
	return reg.Network()
}

func (r *Runner) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
