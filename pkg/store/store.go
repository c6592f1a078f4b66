package store

import (
	"context"
	"time"
)

// Entity is one persisted log record. PartitionKey groups every record
// written by a single sink instance; SortKey is the inverted-time key that
// makes ascending store order read newest-first.
type Entity struct {
	PartitionKey string
	SortKey      string
	Hostname     string
	PID          int
	Level        string
	Message      string
	CreatedAt    time.Time
	Meta         map[string]any
}

// Store is the durable table service the sink writes to. Implementations
// must serialize concurrent BatchWrite calls to the same partition, or make
// them otherwise safe.
type Store interface {
	// EnsureContainer creates the named container if absent. Idempotent.
	EnsureContainer(ctx context.Context, name string) error

	// BatchWrite persists the batch atomically: all entities or none.
	BatchWrite(ctx context.Context, container string, batch []Entity) error

	// RangeQuery returns entities of one partition whose sort key falls in
	// [lower, upper] inclusive, in ascending sort-key order, at most limit
	// of them. limit <= 0 means no cap.
	RangeQuery(ctx context.Context, container, partitionKey, lower, upper string, limit int) ([]Entity, error)

	Close() error
}
