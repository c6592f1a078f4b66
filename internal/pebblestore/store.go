package pebblestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/rzbill/tablesink/pkg/store"
)

// FsyncMode defines durability behavior for committed batches.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways requests a WAL fsync on each committed batch.
	FsyncModeAlways
	// FsyncModeInterval enables group-commit by letting Pebble coalesce WAL
	// syncs for commits within the configured interval.
	FsyncModeInterval
	// FsyncModeNever avoids forcing WAL syncs from the application. Trades
	// durability latency for throughput.
	FsyncModeNever
)

// MetricsHook observes store commits and scans. Optional.
type MetricsHook interface {
	ObserveCommit(elapsed time.Duration, entities int)
	ObserveScan(elapsed time.Duration, entities int)
}

// NoopMetrics is used when no metrics hook is provided.
type NoopMetrics struct{}

func (NoopMetrics) ObserveCommit(time.Duration, int) {}
func (NoopMetrics) ObserveScan(time.Duration, int)   {}

// Options configures the local Pebble-backed store.
type Options struct {
	// DataDir is the path to the Pebble database directory.
	DataDir string
	// Fsync determines when to sync the WAL.
	Fsync FsyncMode
	// FsyncInterval controls group-commit when Fsync=FsyncModeInterval.
	FsyncInterval time.Duration
	// PebbleOptions allows advanced tuning. If nil, sensible defaults apply.
	PebbleOptions *pebble.Options
	// Metrics observes commit/scan latencies and sizes. Optional.
	Metrics MetricsHook
}

// Store is the local/dev implementation of the sink's table contract,
// persisting entities in Pebble under container/partition/sortKey keys.
type Store struct {
	db        *pebble.DB
	writeSync bool
	metrics   MetricsHook
}

var _ store.Store = (*Store)(nil)

// Open creates or opens the Pebble database backing the store.
func Open(opts Options) (*Store, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebblestore: Options.DataDir is required")
	}

	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}

	switch opts.Fsync {
	case FsyncModeAlways:
		// WriteOptions carry Sync on each commit; no group-commit interval.
	case FsyncModeInterval:
		if opts.FsyncInterval <= 0 {
			opts.FsyncInterval = 5 * time.Millisecond
		}
		po.WALMinSyncInterval = func() time.Duration { return opts.FsyncInterval }
	case FsyncModeNever:
	default:
		po.WALMinSyncInterval = func() time.Duration { return 5 * time.Millisecond }
	}

	db, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, fmt.Errorf("pebblestore: open %s: %w", opts.DataDir, err)
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	return &Store{
		db:        db,
		writeSync: opts.Fsync == FsyncModeAlways,
		metrics:   metrics,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureContainer writes the container marker if absent. Idempotent.
func (s *Store) EnsureContainer(_ context.Context, name string) error {
	key := keyContainerMeta(name)
	_, closer, err := s.db.Get(key)
	if err == nil {
		closer.Close()
		return nil
	}
	if !errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("pebblestore: ensure container %q: %w", name, err)
	}
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(key, []byte{1}, nil); err != nil {
		return err
	}
	return s.commit(b)
}

// BatchWrite persists the batch in one Pebble batch commit: all or nothing.
func (s *Store) BatchWrite(_ context.Context, container string, batch []store.Entity) error {
	if len(batch) == 0 {
		return nil
	}
	start := time.Now()

	b := s.db.NewBatch()
	defer b.Close()
	for i := range batch {
		e := &batch[i]
		val, err := encodeEntity(e)
		if err != nil {
			return fmt.Errorf("pebblestore: encode entity %q: %w", e.SortKey, err)
		}
		if err := b.Set(keyEntity(container, e.PartitionKey, e.SortKey), val, nil); err != nil {
			return err
		}
	}
	if err := s.commit(b); err != nil {
		return err
	}
	s.metrics.ObserveCommit(time.Since(start), len(batch))
	return nil
}

// RangeQuery scans one partition's entities with sort keys in [lower, upper]
// inclusive, ascending, capped at limit when limit > 0. A corrupt value
// fails the whole query; no partial results are returned.
func (s *Store) RangeQuery(_ context.Context, container, partitionKey, lower, upper string, limit int) ([]store.Entity, error) {
	start := time.Now()
	prefix := keyEntity(container, partitionKey, "")
	low := keyEntity(container, partitionKey, lower)
	// Pebble upper bounds are exclusive; a trailing 0x00 admits the exact
	// upper key while excluding everything after it.
	hi := append(keyEntity(container, partitionKey, upper), 0x00)

	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: hi})
	if err != nil {
		return nil, fmt.Errorf("pebblestore: iterator: %w", err)
	}
	defer iter.Close()

	var out []store.Entity
	for iter.First(); iter.Valid(); iter.Next() {
		if limit > 0 && len(out) >= limit {
			break
		}
		e, err := decodeEntity(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("pebblestore: key %q: %w", iter.Key(), err)
		}
		e.PartitionKey = partitionKey
		e.SortKey = string(iter.Key()[len(prefix):])
		out = append(out, e)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("pebblestore: scan: %w", err)
	}
	s.metrics.ObserveScan(time.Since(start), len(out))
	return out, nil
}

func (s *Store) commit(b *pebble.Batch) error {
	syncMode := pebble.NoSync
	if s.writeSync {
		syncMode = pebble.Sync
	}
	return b.Commit(syncMode)
}
