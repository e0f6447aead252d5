package domain

import "errors"

// ErrEmptyBatch signals a document with no guest checks. It distinguishes
// "nothing to load" from a structurally valid but empty table set; callers
// log it and move on.
var ErrEmptyBatch = errors.New("empty_batch")

// Service flattens one ingested document into relational collections. It is
// pure: no I/O, no retained state, safe to call from parallel workers.
type Service interface {
	Normalize(doc Document) (*Batch, error)
}
