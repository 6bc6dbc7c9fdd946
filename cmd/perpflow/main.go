package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"perpflow/internal/chain"
	"perpflow/internal/config"
	"perpflow/internal/events"
	"perpflow/internal/registry"
	"perpflow/internal/scan"
	"perpflow/internal/storage"
	"perpflow/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "perpflow",
		Short:        "Perpetual protocol event scanner and transaction tool",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a block range and decode protocol events",
		RunE:  runScan,
	}

	scanCmd.Flags().String("rpc", "", "RPC URL")
	scanCmd.Flags().Uint64("network", 1, "network id")
	scanCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	scanCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	scanCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	scanCmd.Flags().String("out", "./data/events.jsonl", "decoded events JSONL path")
	scanCmd.Flags().String("errors-out", "./data/decode_errors.jsonl", "decode errors JSONL path")
	scanCmd.Flags().String("pg-dsn", "", "Postgres DSN (writes to Postgres instead of JSONL)")
	scanCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	scanCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	scanCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	scanCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	scanCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(scanCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode the protocol events of one mined transaction",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("rpc", "", "RPC URL")
	decodeCmd.Flags().Uint64("network", 1, "network id")
	decodeCmd.Flags().String("tx", "", "transaction hash")
	decodeCmd.Flags().String("out", "", "output JSONL path (stdout when empty)")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Estimate gas for a contract call without broadcasting",
		RunE:  runSimulate,
	}

	simulateCmd.Flags().String("rpc", "", "RPC URL")
	simulateCmd.Flags().Uint64("network", 1, "network id")
	simulateCmd.Flags().String("from", "", "sender address")
	simulateCmd.Flags().String("contract", "", "target contract name (e.g. PerpetualProxy)")
	simulateCmd.Flags().String("data", "", "call data (hex)")
	simulateCmd.Flags().String("value", "", "wei value (decimal)")
	simulateCmd.Flags().String("gas-price", "", "gas price in wei (decimal)")
	simulateCmd.Flags().Float64("gas-multiplier", 1.4, "safety multiplier applied to the gas estimate")
	simulateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(simulateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	reg, err := registry.New(cfg.NetworkID)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, chain.Config{RPCURL: cfg.RPCURL, Logger: logger})
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var sink storage.Storage
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sink = &postgresSink{ctx: ctx, store: store}
	} else {
		sink = storage.NewJsonlStorage(cfg.Out, cfg.ErrorsOut)
	}

	runner := scan.NewRunner(scan.RunConfig{
		FromBlock:         cfg.FromBlock,
		ToBlock:           cfg.ToBlock,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, chainClient, reg, events.NewDecoder(reg, logger), sink, logger)

	logger.Info("scan start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("network", cfg.NetworkID),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
