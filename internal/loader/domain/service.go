package domain

import (
	"context"

	normdomain "github.com/smallbiznis/posbridge/internal/normalizer/domain"
)

// TableError reports which destination table a failed load died on so
// callers can attribute the rollback without parsing error text.
type TableError struct {
	Table string
	Err   error
}

func (e *TableError) Error() string {
	return "load table " + e.Table + ": " + e.Err.Error()
}

func (e *TableError) Unwrap() error { return e.Err }

// Service appends one normalized batch to the warehouse. The write is
// all-or-nothing: every non-empty table lands in one transaction, in
// dependency order, or none of them do. Failed batches are surfaced and
// never retried automatically.
type Service interface {
	Load(ctx context.Context, batch *normdomain.Batch) error
}
