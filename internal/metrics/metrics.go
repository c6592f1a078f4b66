package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DefaultRegistry is the registry used when the sink is not handed one.
	DefaultRegistry = prometheus.NewRegistry()

	defaultOnce sync.Once
	defaultInst *Metrics
)

// Metrics holds the sink's Prometheus instruments. They are the
// operator-visible channel for ingestion-path outcomes, which never reach
// the append caller.
type Metrics struct {
	AppendsTotal   prometheus.Counter
	RefusedTotal   prometheus.Counter
	FlushesTotal   *prometheus.CounterVec
	FlushedRecords prometheus.Counter
	FlushDuration  prometheus.Histogram
	QueriesTotal   *prometheus.CounterVec

	StoreCommitDuration prometheus.Histogram
	StoreScanDuration   prometheus.Histogram
}

// Default returns the shared metrics instance bound to DefaultRegistry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultInst = New(DefaultRegistry)
	})
	return defaultInst
}

// New creates a metrics collection registered against registerer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		return Default()
	}

	return &Metrics{
		AppendsTotal: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Name: "tablesink_appends_total",
			Help: "Total number of records accepted by the sink",
		}),
		RefusedTotal: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Name: "tablesink_refused_total",
			Help: "Total number of records refused (silent mode or closed sink)",
		}),
		FlushesTotal: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Name: "tablesink_flushes_total",
			Help: "Total number of batch flushes by result",
		}, []string{"result"}),
		FlushedRecords: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Name: "tablesink_flushed_records_total",
			Help: "Total number of records persisted by successful flushes",
		}),
		FlushDuration: promauto.With(registerer).NewHistogram(prometheus.HistogramOpts{
			Name:    "tablesink_flush_duration_seconds",
			Help:    "Batch flush duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		QueriesTotal: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Name: "tablesink_queries_total",
			Help: "Total number of range queries by result",
		}, []string{"result"}),
		StoreCommitDuration: promauto.With(registerer).NewHistogram(prometheus.HistogramOpts{
			Name:    "tablesink_store_commit_duration_seconds",
			Help:    "Local store batch commit duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		StoreScanDuration: promauto.With(registerer).NewHistogram(prometheus.HistogramOpts{
			Name:    "tablesink_store_scan_duration_seconds",
			Help:    "Local store range scan duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveCommit implements the local store's metrics hook.
func (m *Metrics) ObserveCommit(elapsed time.Duration, entities int) {
	m.StoreCommitDuration.Observe(elapsed.Seconds())
}

// ObserveScan implements the local store's metrics hook.
func (m *Metrics) ObserveScan(elapsed time.Duration, entities int) {
	m.StoreScanDuration.Observe(elapsed.Seconds())
}
