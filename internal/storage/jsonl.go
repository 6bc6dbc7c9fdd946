package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"perpflow/internal/model"
)

// JsonlStorage appends decoded events and decode errors as JSON lines.
type JsonlStorage struct {
	eventsPath string
	errorsPath string
	mu         sync.Mutex
}

func NewJsonlStorage(eventsPath, errorsPath string) *JsonlStorage {
	return &JsonlStorage{eventsPath: eventsPath, errorsPath: errorsPath}
}

// PutEventBatch appends a batch of decoded events.
func (s *JsonlStorage) PutEventBatch(events []model.DecodedEvent) error {
	if len(events) == 0 {
		return nil
	}
	lines := make([]interface{}, 0, len(events))
	for _, event := range events {
		lines = append(lines, event)
	}
	return s.appendLines(s.eventsPath, lines)
}

// PutDecodeErrors appends decode failures.
func (s *JsonlStorage) PutDecodeErrors(errs []model.DecodeError) error {
	if len(errs) == 0 {
		return nil
	}
	if s.errorsPath == "" {
		return nil
	}
	lines := make([]interface{}, 0, len(errs))
	for _, decodeErr := range errs {
		lines = append(lines, decodeErr)
	}
	return s.appendLines(s.errorsPath, lines)
}

func (s *JsonlStorage) appendLines(path string, records []interface{}) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
