package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"perpflow/internal/chain"
	"perpflow/internal/config"
	"perpflow/internal/registry"
	"perpflow/internal/txmgr"
)

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSubmit(cfgFile, cmd.Flags())
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
	if cfg.Contract == "" {
		return fmt.Errorf("contract name is required")
	}
	if !common.IsHexAddress(cfg.From) {
		return fmt.Errorf("invalid sender address: %q", cfg.From)
	}

	reg, err := registry.New(cfg.NetworkID)
	if err != nil {
		return err
	}
	target, err := reg.Address(cfg.Contract)
	if err != nil {
		return err
	}

	var data []byte
	if cfg.Data != "" {
		data, err = hexutil.Decode(cfg.Data)
		if err != nil {
			return fmt.Errorf("invalid call data: %w", err)
		}
	}

	value, err := parseWei(cfg.Value)
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	gasPrice, err := parseWei(cfg.GasPrice)
	if err != nil {
		return fmt.Errorf("invalid gas price: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, chain.Config{RPCURL: cfg.RPCURL, Logger: logger})
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	coordinator := txmgr.NewCoordinator(chainClient, nil, txmgr.Options{
		GasPrice:          gasPrice,
		GasMultiplier:     cfg.GasMultiplier,
		MinConfirmations:  cfg.MinConfirmations,
		ExemptFromAccrual: reg.IsTest,
	}, logger)

	outcome, err := coordinator.Submit(ctx, txmgr.Request{
		CallName: cfg.Contract,
		To:       target,
		From:     common.HexToAddress(cfg.From),
		Data:     data,
		Value:    value,
		Mode:     txmgr.SimulateOnly,
	})
	if err != nil {
		return err
	}

	logger.Info("simulation complete",
		zap.String("contract", cfg.Contract),
		zap.String("to", target.Hex()),
		zap.Uint64("estimated_gas", outcome.EstimatedGas),
		zap.Uint64("gas_limit", outcome.GasLimit),
	)

	fmt.Printf("{\"contract\":%q,\"to\":%q,\"estimated_gas\":%d,\"gas_limit\":%d}\n",
		cfg.Contract, target.Hex(), outcome.EstimatedGas, outcome.GasLimit)

	return nil
}

func parseWei(input string) (*big.Int, error) {
	if input == "" {
		return nil, nil
	}
	value, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return nil, fmt.Errorf("not a decimal integer: %q", input)
	}
	return value, nil
}
