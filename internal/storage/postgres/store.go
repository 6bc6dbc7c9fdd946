package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perpflow/internal/model"
)

// Store provides Postgres persistence for decoded events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutEventBatch inserts or updates decoded events, keyed by tx hash and
// log index.
func (s *Store) PutEventBatch(ctx context.Context, events []model.DecodedEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		args, err := json.Marshal(event.Args)
		if err != nil {
			return fmt.Errorf("marshal args for %s: %w", event.Name, err)
		}
		batch.Queue(`
			INSERT INTO decoded_events (
				tx_hash, log_index, contract, event_name, address, block_number, block_hash, block_time, args, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
			ON CONFLICT (tx_hash, log_index)
			DO UPDATE SET
				contract = EXCLUDED.contract,
				event_name = EXCLUDED.event_name,
				address = EXCLUDED.address,
				block_number = EXCLUDED.block_number,
				block_hash = EXCLUDED.block_hash,
				block_time = EXCLUDED.block_time,
				args = EXCLUDED.args,
				updated_at = now()
		`,
			event.TxHash,
			int64(event.LogIndex),
			event.Contract,
			event.Name,
			event.Address,
			int64(event.BlockNumber),
			event.BlockHash,
			int64(event.BlockTime),
			args,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutDecodeErrors inserts or updates decode failures.
func (s *Store) PutDecodeErrors(ctx context.Context, failures []model.DecodeError) error {
	if len(failures) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, failure := range failures {
		batch.Queue(`
			INSERT INTO decode_errors (
				tx_hash, log_index, block_number, address, topic0, contract, event_name, error, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
			ON CONFLICT (tx_hash, log_index)
			DO UPDATE SET
				block_number = EXCLUDED.block_number,
				address = EXCLUDED.address,
				topic0 = EXCLUDED.topic0,
				contract = EXCLUDED.contract,
				event_name = EXCLUDED.event_name,
				error = EXCLUDED.error,
				updated_at = now()
		`,
			failure.TxHash,
			int64(failure.LogIndex),
			int64(failure.BlockNumber),
			failure.Address,
			failure.Topic0,
			failure.Contract,
			failure.Event,
			failure.Error,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range failures {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadCheckpoint returns the last processed block for a name.
func (s *Store) LoadCheckpoint(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("checkpoint name required")
	}
	var block uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM scan_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return block, true, nil
}

// SaveCheckpoint upserts the last processed block for a name.
func (s *Store) SaveCheckpoint(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("checkpoint name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scan_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, block)
	return err
}
