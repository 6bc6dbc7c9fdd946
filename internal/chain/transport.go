package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"perpflow/internal/txmgr"
)

// EstimateGas asks the peer for a gas estimate.
func (c *Client) EstimateGas(ctx context.Context, call txmgr.CallRequest) (uint64, error) {
	to := call.To
	return c.ethClient.EstimateGas(ctx, ethereum.CallMsg{
		From:     call.From,
		To:       &to,
		Value:    call.Value,
		GasPrice: call.GasPrice,
		Data:     call.Data,
	})
}

// Submit signs and broadcasts one transaction and returns its lifecycle
// signal stream. The channel closes after a terminal signal or when ctx
// is done; until then the watcher keeps polling the peer.
func (c *Client) Submit(ctx context.Context, call txmgr.CallRequest) (<-chan txmgr.Signal, error) {
	if c.signer == nil {
		return nil, errors.New("no signer configured")
	}

	nonce, err := c.ethClient.PendingNonceAt(ctx, call.From)
	if err != nil {
		return nil, fmt.Errorf("pending nonce: %w", err)
	}

	gasPrice := call.GasPrice
	if gasPrice == nil {
		gasPrice, err = c.ethClient.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("suggest gas price: %w", err)
		}
	}

	value := call.Value
	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTransaction(nonce, call.To, value, call.GasLimit, gasPrice, call.Data)
	signed, err := c.signer(ctx, call.From, tx)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	ch := make(chan txmgr.Signal, 8)
	go c.watch(ctx, signed, call.MinConfirmations, ch)
	return ch, nil
}

func (c *Client) watch(ctx context.Context, tx *types.Transaction, minConfirmations uint64, ch chan<- txmgr.Signal) {
	defer close(ch)

	if err := c.ethClient.SendTransaction(ctx, tx); err != nil {
		ch <- txmgr.Signal{Kind: txmgr.SignalError, Err: err}
		return
	}

	hash := tx.Hash()
	ch <- txmgr.Signal{Kind: txmgr.SignalHash, Hash: hash}
	c.logger.Debug("transaction broadcast", zap.String("hash", hash.Hex()))

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	var lastReported uint64
	for {
		select {
		case <-ctx.Done():
			ch <- txmgr.Signal{Kind: txmgr.SignalError, Err: ctx.Err()}
			return
		case <-ticker.C:
		}

		receipt, err := c.ethClient.TransactionReceipt(ctx, hash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				continue
			}
			ch <- txmgr.Signal{Kind: txmgr.SignalError, Err: err}
			return
		}

		if minConfirmations == 0 {
			ch <- txmgr.Signal{Kind: txmgr.SignalReceipt, Receipt: receipt}
			return
		}

		head, err := c.ethClient.BlockNumber(ctx)
		if err != nil {
			ch <- txmgr.Signal{Kind: txmgr.SignalError, Err: err}
			return
		}
		inclusion := receipt.BlockNumber.Uint64()
		if head < inclusion {
			// Stale head during a reorg; wait for the next tick.
			continue
		}

		count := head - inclusion + 1
		if count != lastReported {
			ch <- txmgr.Signal{Kind: txmgr.SignalConfirmation, Confirmations: count, Receipt: receipt}
			lastReported = count
		}
		if count >= minConfirmations {
			return
		}
	}
}
