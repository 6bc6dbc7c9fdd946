package main

import (
	"context"

	"perpflow/internal/model"
	"perpflow/internal/storage/postgres"
)

// postgresSink binds a context to the Postgres store so it can serve as
// a scan storage sink.
type postgresSink struct {
	ctx   context.Context
	store *postgres.Store
}

func (s *postgresSink) PutEventBatch(events []model.DecodedEvent) error {
	return s.store.PutEventBatch(s.ctx, events)
}

func (s *postgresSink) PutDecodeErrors(errs []model.DecodeError) error {
	return s.store.PutDecodeErrors(s.ctx, errs)
}
