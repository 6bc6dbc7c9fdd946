package storage

import "perpflow/internal/model"

// Storage is a sink for decoded events and the hard failures met while
// decoding.
type Storage interface {
	PutEventBatch(events []model.DecodedEvent) error
	PutDecodeErrors(errs []model.DecodeError) error
}
