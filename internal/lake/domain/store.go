package domain

import "context"

// Store persists and retrieves raw documents in the partitioned lake.
// Write failures are per document: the caller logs and continues with
// sibling documents, nothing cascades.
type Store interface {
	// Write serializes payload into the partition under a uniquely named
	// leaf object and returns the object's full path.
	Write(ctx context.Context, partition Partition, payload any) (string, error)

	// Scan lists every object landed for an API, across all partitions.
	Scan(api string) ([]string, error)

	// Read decodes the object at path into v.
	Read(path string, v any) error
}
