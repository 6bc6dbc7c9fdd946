package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"perpflow/internal/chain"
	"perpflow/internal/config"
	"perpflow/internal/events"
	"perpflow/internal/registry"
)

func runDecode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
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
	if cfg.TxHash == "" {
		return fmt.Errorf("tx hash is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := registry.New(cfg.NetworkID)
	if err != nil {
		return err
	}

	chainClient, err := chain.NewClient(ctx, chain.Config{RPCURL: cfg.RPCURL, Logger: logger})
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	receipt, err := chainClient.TransactionReceipt(ctx, common.HexToHash(cfg.TxHash))
	if err != nil {
		return fmt.Errorf("fetch receipt: %w", err)
	}

	decoder := events.NewDecoder(reg, logger)
	decoded, err := decoder.DecodeReceipt(receipt)
	if err != nil {
		return fmt.Errorf("decode receipt: %w", err)
	}

	out := os.Stdout
	if cfg.Out != "" {
		dir := filepath.Dir(cfg.Out)
		if dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		file, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		defer file.Close()
		out = file
	}

	writer := bufio.NewWriter(out)
	for _, event := range decoded {
		line, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	logger.Info("decode complete",
		zap.String("tx", cfg.TxHash),
		zap.Int("logs", len(receipt.Logs)),
		zap.Int("decoded", len(decoded)),
	)

	return nil
}
