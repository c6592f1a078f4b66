package sink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rzbill/tablesink/pkg/store"
)

type fixture struct {
	s       *Sink
	flushes chan struct{}
	errs    chan error
	ready   chan struct{}
}

func newLocalSink(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		flushes: make(chan struct{}, 100),
		errs:    make(chan error, 100),
		ready:   make(chan struct{}, 1),
	}
	opts := Options{
		UseLocalStore: true,
		DataDir:       t.TempDir(),
		PartitionKey:  "test",
		BatchSize:     100,
		IdleTimeout:   40 * time.Millisecond,
		Registerer:    prometheus.NewRegistry(),
		OnFlush:       func() { f.flushes <- struct{}{} },
		OnError:       func(err error) { f.errs <- err },
		OnReady:       func() { f.ready <- struct{}{} },
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	f.s = s
	return f
}

func waitFlushes(t *testing.T, f *fixture, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.flushes:
		case err := <-f.errs:
			t.Fatalf("unexpected sink error: %v", err)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for flush %d of %d", i+1, n)
		}
	}
}

func countStored(t *testing.T, f *fixture) int {
	t.Helper()
	entries, err := f.s.Query(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	return len(entries)
}

func TestMissingCredentials(t *testing.T) {
	_, err := New(Options{})
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestLocalStoreRequiresDataDir(t *testing.T) {
	_, err := New(Options{UseLocalStore: true})
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestOnReadyFires(t *testing.T) {
	f := newLocalSink(t, nil)
	select {
	case <-f.ready:
	case <-time.After(2 * time.Second):
		t.Fatalf("OnReady never fired")
	}
}

func TestSizeThresholdFlush(t *testing.T) {
	f := newLocalSink(t, func(o *Options) {
		o.BatchSize = 3
		o.IdleTimeout = time.Hour // size path only
	})
	for i := 0; i < 3; i++ {
		if !f.s.Append("info", "m", nil) {
			t.Fatalf("append %d refused", i)
		}
	}
	waitFlushes(t, f, 1)
	if got := countStored(t, f); got != 3 {
		t.Fatalf("want 3 stored, got %d", got)
	}
}

func TestIdleFlush(t *testing.T) {
	f := newLocalSink(t, nil)
	f.s.Append("info", "a", nil)
	f.s.Append("info", "b", nil)
	waitFlushes(t, f, 1)

	// No further flush should follow: one idle timeout, one batch.
	select {
	case <-f.flushes:
		t.Fatalf("second flush for a single idle window")
	case <-time.After(150 * time.Millisecond):
	}
	if got := countStored(t, f); got != 2 {
		t.Fatalf("want 2 stored, got %d", got)
	}
}

func TestBatchBoundariesThenIdleRemainder(t *testing.T) {
	f := newLocalSink(t, func(o *Options) { o.BatchSize = 3 })
	for i := 0; i < 7; i++ {
		f.s.Append("info", "m", nil)
	}
	// Two full batches of 3, then the remaining 1 via idle timeout.
	waitFlushes(t, f, 3)
	if got := countStored(t, f); got != 7 {
		t.Fatalf("want 7 stored across batches, got %d", got)
	}
}

func TestSilentMode(t *testing.T) {
	f := newLocalSink(t, func(o *Options) { o.Silent = true })
	if f.s.Append("info", "dropped", nil) {
		t.Fatalf("silent append should return false")
	}
	f.s.Flush()
	if got := countStored(t, f); got != 0 {
		t.Fatalf("silent sink persisted %d records", got)
	}
}

func TestCloseFlushesPending(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Options{
		UseLocalStore: true,
		DataDir:       dir,
		PartitionKey:  "test",
		IdleTimeout:   time.Hour,
		Registerer:    prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.Append("info", "pending", nil)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen the same data dir and confirm the record survived.
	s2, err := New(Options{
		UseLocalStore: true,
		DataDir:       dir,
		PartitionKey:  "test",
		Registerer:    prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	entries, err := s2.Query(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 1 || entries[0]["message"] != "pending" {
		t.Fatalf("pending record lost across close: %+v", entries)
	}
}

func TestAppendAfterCloseRefused(t *testing.T) {
	f := newLocalSink(t, nil)
	_ = f.s.Close()
	if f.s.Append("info", "late", nil) {
		t.Fatalf("append after close should return false")
	}
}

// memStore is an injected driver that records every batched write. Injected
// stores stay open across Close.
type memStore struct {
	mu      sync.Mutex
	records []store.Entity
}

func (m *memStore) EnsureContainer(context.Context, string) error { return nil }
func (m *memStore) BatchWrite(_ context.Context, _ string, b []store.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, b...)
	return nil
}
func (m *memStore) RangeQuery(context.Context, string, string, string, string, int) ([]store.Entity, error) {
	return nil, nil
}
func (m *memStore) Close() error { return nil }

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func TestAppendRacingCloseStillDelivers(t *testing.T) {
	ms := &memStore{}
	f := newLocalSink(t, func(o *Options) {
		o.UseLocalStore = false
		o.Store = ms
		o.IdleTimeout = time.Hour
	})

	// Run Close to completion between Append's entry check and its buffer
	// insert. The clock hook sits exactly in that window, so this sequences
	// the interleaving deterministically: Close's final drain sees an empty
	// buffer, then the append lands in it.
	f.s.now = func() time.Time {
		f.s.now = time.Now
		if err := f.s.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
		return time.Now()
	}

	if !f.s.Append("info", "straggler", nil) {
		t.Fatalf("append that passed the entry check should report success")
	}
	waitFlushes(t, f, 1)
	if got := ms.count(); got != 1 {
		t.Fatalf("straggler stranded: %d records written", got)
	}
}

// failingStore provisions fine but fails every batched write.
type failingStore struct {
	writeErr error
}

func (f *failingStore) EnsureContainer(context.Context, string) error { return nil }
func (f *failingStore) BatchWrite(context.Context, string, []store.Entity) error {
	return f.writeErr
}
func (f *failingStore) RangeQuery(context.Context, string, string, string, string, int) ([]store.Entity, error) {
	return nil, nil
}
func (f *failingStore) Close() error { return nil }

func TestFlushErrorReportedNotRaised(t *testing.T) {
	f := newLocalSink(t, func(o *Options) {
		o.UseLocalStore = false
		o.Store = &failingStore{writeErr: errors.New("backend down")}
		o.BatchSize = 2
		o.IdleTimeout = time.Hour
	})

	f.s.Append("info", "a", nil)
	f.s.Append("info", "b", nil) // fills the batch, triggers the failing flush

	select {
	case err := <-f.errs:
		var ferr *store.FlushError
		if !errors.As(err, &ferr) {
			t.Fatalf("want FlushError, got %v", err)
		}
		if ferr.Records != 2 {
			t.Fatalf("want 2 records in error, got %d", ferr.Records)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("flush error never reported")
	}

	// The failure never reaches or blocks the append caller.
	if !f.s.Append("info", "c", nil) {
		t.Fatalf("append after flush failure should still be accepted")
	}
}

type failingProvisioner struct {
	failingStore
}

func (f *failingProvisioner) EnsureContainer(context.Context, string) error {
	return errors.New("create denied")
}

func TestProvisionErrorReported(t *testing.T) {
	errs := make(chan error, 1)
	s, err := New(Options{
		Store:      &failingProvisioner{},
		Registerer: prometheus.NewRegistry(),
		OnError:    func(err error) { errs <- err },
	})
	if err != nil {
		t.Fatalf("construction should not fail synchronously: %v", err)
	}
	defer s.Close()

	select {
	case err := <-errs:
		var perr *store.ProvisionError
		if !errors.As(err, &perr) {
			t.Fatalf("want ProvisionError, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("provision error never reported")
	}
}
