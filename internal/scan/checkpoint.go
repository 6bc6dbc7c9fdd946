package scan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Checkpoint records scan progress for one network. The network id is
// part of the record so a checkpoint written against one deployment
// table can never silently resume a scan of another.
type Checkpoint struct {
	Network            uint64 `json:"network"`
	LastProcessedBlock uint64 `json:"last_processed_block"`
	UpdatedAt          string `json:"updated_at"`
}

// CheckpointStore persists scan checkpoints for one network to disk.
type CheckpointStore struct {
	path    string
	network uint64
	enabled bool
}

func NewCheckpointStore(path string, network uint64, enabled bool) *CheckpointStore {
	return &CheckpointStore{path: path, network: network, enabled: enabled}
}

// Load reads the checkpoint, reporting absent when none was written yet.
// A checkpoint recorded for a different network is an error, not a
// resume point.
func (c *CheckpointStore) Load() (Checkpoint, bool, error) {
	if !c.enabled {
		return Checkpoint{}, false, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("parse checkpoint: %w", err)
	}
	if cp.Network != c.network {
		return Checkpoint{}, false, fmt.Errorf("checkpoint at %s belongs to network %d, scanning network %d",
			c.path, cp.Network, c.network)
	}

	return cp, true, nil
}

// Save atomically replaces the checkpoint with the given block.
func (c *CheckpointStore) Save(lastProcessed uint64) error {
	if !c.enabled {
		return nil
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	data, err := json.Marshal(Checkpoint{
		Network:            c.network,
		LastProcessedBlock: lastProcessed,
		UpdatedAt:          time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}

	return nil
}
