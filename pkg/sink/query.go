package sink

import (
	"context"
	"time"

	"github.com/rzbill/tablesink/internal/keycodec"
	"github.com/rzbill/tablesink/pkg/store"
)

// ErrInvalidRange reports a query whose From instant is after its Until
// instant. It is returned before any store call.
var ErrInvalidRange = keycodec.ErrInvalidRange

// Result orderings.
const (
	OrderDesc = "desc"
	OrderAsc  = "asc"
)

// Entry is one query result: a plain mapping of field name to value.
type Entry map[string]any

// QueryOptions shape a range query over the sink's partition.
type QueryOptions struct {
	// From is the chronological window start. Zero means unbounded past.
	From time.Time
	// Until is the chronological window end. Zero means now.
	Until time.Time
	// Rows caps the single result page. <= 0 means no cap. Records beyond
	// the cap are silently truncated; there is no pagination.
	Rows int
	// Fields projects each entry to the named fields only. Empty keeps all.
	Fields []string
	// Order is "desc" (newest first, the default) or "asc".
	Order string
}

// Query runs one range query against the store and returns at most one page
// of entries. Query errors always surface to the caller.
func (s *Sink) Query(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	until := opts.Until
	if until.IsZero() {
		until = s.now()
	}
	from := opts.From
	if from.IsZero() {
		from = time.UnixMilli(0)
	}

	lower, upper, err := keycodec.RangeBounds(from, until)
	if err != nil {
		s.metrics.QueriesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	ents, err := s.store.RangeQuery(ctx, s.opts.ContainerName, s.opts.PartitionKey, lower, upper, opts.Rows)
	if err != nil {
		s.metrics.QueriesTotal.WithLabelValues("error").Inc()
		return nil, &store.QueryError{Container: s.opts.ContainerName, Err: err}
	}

	entries := make([]Entry, 0, len(ents))
	for i := range ents {
		entries = append(entries, s.entryFor(&ents[i], opts.Fields))
	}

	// The store hands back ascending sort keys, i.e. newest first. Only a
	// non-descending order flips the page; the bound swap above is applied
	// unconditionally.
	order := opts.Order
	if order == "" {
		order = OrderDesc
	}
	if order != OrderDesc {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}

	s.metrics.QueriesTotal.WithLabelValues("ok").Inc()
	return entries, nil
}

// entryFor maps an entity to a result entry, flattening or nesting metadata
// per configuration and applying the field projection. Unrequested fields
// are dropped, not nulled.
func (s *Sink) entryFor(e *store.Entity, fields []string) Entry {
	// The sort key is the authoritative creation instant; injected drivers
	// need not round-trip CreatedAt.
	createdAt := e.CreatedAt
	if ts, err := keycodec.Timestamp(e.SortKey); err == nil {
		createdAt = ts
	}
	m := Entry{
		"partitionKey": e.PartitionKey,
		"sortKey":      e.SortKey,
		"hostname":     e.Hostname,
		"pid":          e.PID,
		"level":        e.Level,
		"message":      e.Message,
		"createdAt":    createdAt,
	}
	if s.opts.NestedMetadata {
		if e.Meta != nil {
			m["meta"] = e.Meta
		}
	} else {
		for k, v := range e.Meta {
			if _, taken := m[k]; !taken {
				m[k] = v
			}
		}
	}

	if len(fields) == 0 {
		return m
	}
	proj := make(Entry, len(fields))
	for _, f := range fields {
		if v, ok := m[f]; ok {
			proj[f] = v
		}
	}
	return proj
}
