// Package sink persists structured log records into a partitioned,
// time-range-queryable table store.
//
// Records appended to a Sink accumulate in a bounded batch that is flushed
// either the instant it fills or after an idle window with no new records.
// Each record's sort key inverts its timestamp against a far-future anchor,
// so the store's ascending key order reads newest-first; Query translates
// chronological windows into that encoding and restores the caller's
// requested direction.
//
// Durability is deliberately at-most-once past the buffer: a failed flush is
// reported to operator channels (callback, metrics, log) and dropped, never
// retried and never surfaced to the Append caller. Observability must not
// take down the instrumented application.
//
// Usage:
//
//	s, err := sink.New(sink.Options{
//	    UseLocalStore: true,
//	    DataDir:       "./logdata",
//	    PartitionKey:  "production",
//	})
//	if err != nil { /* handle */ }
//	defer s.Close()
//
//	s.Append("info", "user logged in", map[string]any{"user": "alice"})
//
//	entries, err := s.Query(ctx, sink.QueryOptions{
//	    From:  time.Now().Add(-time.Hour),
//	    Order: sink.OrderDesc,
//	})
package sink
