package sink

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/rzbill/tablesink/internal/batch"
	"github.com/rzbill/tablesink/internal/keycodec"
	"github.com/rzbill/tablesink/internal/metrics"
	"github.com/rzbill/tablesink/internal/pebblestore"
	"github.com/rzbill/tablesink/pkg/id"
	"github.com/rzbill/tablesink/pkg/store"
)

// flushWorkers bounds concurrent in-flight flushes per sink.
const flushWorkers = 4

// storeTimeout caps one store round trip on the flush and provision paths.
const storeTimeout = 30 * time.Second

// Sink accepts structured log records and persists them into a partitioned
// table store in bounded batches. Append never blocks on store I/O; flushes
// run on a worker pool and report failures to operator channels only.
type Sink struct {
	opts    Options
	store   store.Store
	owns    bool
	buffer  *batch.Buffer
	sched   *batch.Scheduler
	pool    *ants.Pool
	tokens  *id.Generator
	metrics *metrics.Metrics
	logger  *slog.Logger

	hostname string
	pid      int
	now      func() time.Time

	closed atomic.Bool
	wg     sync.WaitGroup
}

// New builds a Sink. Missing credentials (without a local or injected store)
// fail synchronously with a ConfigError; container provisioning runs
// asynchronously and reports through OnReady/OnError.
func New(opts Options) (*Sink, error) {
	opts = opts.withDefaults()

	m := metrics.New(opts.Registerer)

	st := opts.Store
	owns := false
	if st == nil {
		switch {
		case opts.UseLocalStore:
			if opts.DataDir == "" {
				return nil, &ConfigError{Reason: "UseLocalStore requires DataDir"}
			}
			local, err := pebblestore.Open(pebblestore.Options{
				DataDir: opts.DataDir,
				Fsync:   fsyncMode(opts.Fsync),
				Metrics: m,
			})
			if err != nil {
				return nil, err
			}
			st = local
			owns = true
		case opts.Credentials.Empty():
			return nil, &ConfigError{Reason: "credentials are required unless UseLocalStore is set"}
		default:
			return nil, &ConfigError{Reason: "no driver for remote table stores is bundled; inject one via Options.Store"}
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	pool, err := ants.NewPool(flushWorkers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(v any) {
			opts.Logger.Error("flush worker panic", "panic", v)
		}),
	)
	if err != nil {
		if owns {
			_ = st.Close()
		}
		return nil, err
	}

	s := &Sink{
		opts:     opts,
		store:    st,
		owns:     owns,
		buffer:   batch.NewBuffer(opts.BatchSize),
		pool:     pool,
		tokens:   id.NewGenerator(),
		metrics:  m,
		logger:   opts.Logger.With("sink", uuid.NewString(), "container", opts.ContainerName),
		hostname: hostname,
		pid:      os.Getpid(),
		now:      time.Now,
	}
	s.sched = batch.NewScheduler(opts.IdleTimeout, s.flushPending)

	s.wg.Add(1)
	go s.provision()
	return s, nil
}

// Append accepts one log record. It returns false in silent mode or after
// Close, true otherwise. It never blocks on store I/O and never surfaces
// flush failures: once accepted, delivery is best-effort.
func (s *Sink) Append(level, message string, meta map[string]any) bool {
	if s.opts.Silent || s.closed.Load() {
		s.metrics.RefusedTotal.Inc()
		return false
	}

	now := s.now()
	e := store.Entity{
		PartitionKey: s.opts.PartitionKey,
		SortKey:      keycodec.Encode(now, s.tokens.Next().String()),
		Hostname:     s.hostname,
		PID:          s.pid,
		Level:        level,
		Message:      message,
		CreatedAt:    now,
		Meta:         meta,
	}

	_, full := s.buffer.Append(e)
	s.metrics.AppendsTotal.Inc()
	if s.closed.Load() {
		// Close may have drained its final batch between the entry check and
		// the buffer insert; sweep the straggler out rather than strand it.
		if full != nil {
			s.dispatch(full)
		}
		s.dispatch(s.buffer.Drain())
		return true
	}
	s.sched.Touch()
	if full != nil {
		s.dispatch(full)
	}
	return true
}

// Flush synchronously writes whatever is pending. Useful before shutdown.
func (s *Sink) Flush() {
	if b := s.buffer.Drain(); len(b) > 0 {
		s.flush(b)
	}
}

// Close stops the idle timer, flushes the final partial batch, waits for
// in-flight flushes, and releases resources. An injected store stays open.
func (s *Sink) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.sched.Stop()
	s.Flush()
	s.wg.Wait()
	s.pool.Release()
	if s.owns {
		return s.store.Close()
	}
	return nil
}

// MinLevel returns the configured minimum severity as an slog level.
func (s *Sink) MinLevel() slog.Level {
	switch s.opts.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// flushPending drains and dispatches the current batch. Called by the idle
// timer; an empty drain is a no-op, so racing the size-threshold path is
// harmless.
func (s *Sink) flushPending() {
	s.dispatch(s.buffer.Drain())
}

// dispatch hands a detached batch to the worker pool. If the pool is
// saturated it falls back to a plain goroutine; the append path never waits.
func (s *Sink) dispatch(b []store.Entity) {
	if len(b) == 0 {
		return
	}
	s.wg.Add(1)
	task := func() {
		defer s.wg.Done()
		s.flush(b)
	}
	if err := s.pool.Submit(task); err != nil {
		go task()
	}
}

// flush issues one atomic batched write. Failures are reported to operator
// channels and the batch is dropped; there is no retry or re-queue.
func (s *Sink) flush(b []store.Entity) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	start := time.Now()
	err := s.store.BatchWrite(ctx, s.opts.ContainerName, b)
	s.metrics.FlushDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.FlushesTotal.WithLabelValues("error").Inc()
		s.report(&store.FlushError{Container: s.opts.ContainerName, Records: len(b), Err: err})
		return
	}

	s.metrics.FlushesTotal.WithLabelValues("ok").Inc()
	s.metrics.FlushedRecords.Add(float64(len(b)))
	s.logger.Debug("flushed batch", "records", len(b))
	if s.opts.OnFlush != nil {
		s.opts.OnFlush()
	}
}

func (s *Sink) provision() {
	defer s.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := s.store.EnsureContainer(ctx, s.opts.ContainerName); err != nil {
		s.report(&store.ProvisionError{Container: s.opts.ContainerName, Err: err})
		return
	}
	s.logger.Debug("container ready")
	if s.opts.OnReady != nil {
		s.opts.OnReady()
	}
}

func (s *Sink) report(err error) {
	s.logger.Error("sink error", "error", err)
	if s.opts.OnError != nil {
		s.opts.OnError(err)
	}
}

func fsyncMode(mode string) pebblestore.FsyncMode {
	switch mode {
	case "always":
		return pebblestore.FsyncModeAlways
	case "never":
		return pebblestore.FsyncModeNever
	case "interval":
		return pebblestore.FsyncModeInterval
	default:
		return pebblestore.FsyncModeUnspecified
	}
}
