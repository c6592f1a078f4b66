package sink

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rzbill/tablesink/internal/config"
	"github.com/rzbill/tablesink/pkg/store"
)

// Options configures a Sink. The zero value plus either UseLocalStore or a
// Store is usable; unset fields take the config package defaults.
type Options struct {
	// Credentials for a remote table store. Required unless UseLocalStore is
	// set or a Store is injected.
	Credentials config.Credentials

	// UseLocalStore persists to an embedded Pebble database at DataDir
	// instead of a remote table service. Intended for development and tests.
	UseLocalStore bool

	// DataDir is the local store directory. Required with UseLocalStore.
	DataDir string

	// Fsync is the local store WAL policy: "always", "interval" or "never".
	Fsync string

	// Level is the minimum severity the slog handler forwards. The sink
	// itself persists whatever it is handed.
	Level string

	// PartitionKey groups all records of this sink instance. Defaults to the
	// deployment environment name.
	PartitionKey string

	// ContainerName is the store container records are written to.
	ContainerName string

	// Silent makes Append refuse every record without touching the buffer.
	Silent bool

	// NestedMetadata keeps record metadata as one nested document field in
	// query results instead of flattening it into top-level fields.
	NestedMetadata bool

	// BatchSize bounds how many records one flush writes.
	BatchSize int

	// IdleTimeout is how long the sink waits for new records before flushing
	// a partially filled batch.
	IdleTimeout time.Duration

	// Store overrides the storage backend. When set, Credentials and
	// UseLocalStore are ignored and the caller keeps ownership: Close does
	// not close an injected store.
	Store store.Store

	// Logger receives operator diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Registerer receives the sink's Prometheus metrics. Defaults to the
	// package-shared registry.
	Registerer prometheus.Registerer

	// OnReady fires once container provisioning succeeds.
	OnReady func()

	// OnFlush fires after each successful batch flush.
	OnFlush func()

	// OnError receives ingestion-path failures (provisioning, flush). These
	// never propagate to Append callers.
	OnError func(error)
}

// FromConfig builds Options from a loaded configuration.
func FromConfig(cfg config.Config) Options {
	return Options{
		Credentials:    cfg.Credentials,
		UseLocalStore:  cfg.UseLocalStore,
		DataDir:        cfg.DataDir,
		Fsync:          cfg.Fsync,
		Level:          cfg.Level,
		PartitionKey:   cfg.PartitionKey,
		ContainerName:  cfg.ContainerName,
		Silent:         cfg.Silent,
		NestedMetadata: cfg.NestedMetadata,
		BatchSize:      cfg.BatchSize,
		IdleTimeout:    cfg.IdleTimeout(),
	}
}

func (o Options) withDefaults() Options {
	def := config.Default()
	if o.ContainerName == "" {
		o.ContainerName = def.ContainerName
	}
	if o.PartitionKey == "" {
		o.PartitionKey = def.PartitionKey
	}
	if o.Level == "" {
		o.Level = def.Level
	}
	if o.BatchSize <= 0 {
		o.BatchSize = def.BatchSize
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = def.IdleTimeout()
	}
	if o.Fsync == "" {
		o.Fsync = def.Fsync
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// ConfigError reports unusable construction options. It is returned
// synchronously from New, before any I/O happens.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "sink config: " + e.Reason }
