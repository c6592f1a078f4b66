package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AppendsTotal.Inc()
	m.AppendsTotal.Inc()
	m.FlushesTotal.WithLabelValues("ok").Inc()
	m.FlushesTotal.WithLabelValues("error").Inc()

	if got := testutil.ToFloat64(m.AppendsTotal); got != 2 {
		t.Fatalf("appends: %v", got)
	}
	if got := testutil.ToFloat64(m.FlushesTotal.WithLabelValues("error")); got != 1 {
		t.Fatalf("flush errors: %v", got)
	}
}

func TestStoreHookObserves(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveCommit(10*time.Millisecond, 5)
	m.ObserveScan(2*time.Millisecond, 3)
	// Histograms have no simple value accessor; sample counts suffice.
	if got := testutil.CollectAndCount(m.StoreCommitDuration); got != 1 {
		t.Fatalf("commit histogram series: %d", got)
	}
}

func TestDefaultSingleton(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Fatalf("Default should return one shared instance")
	}
	if got := New(nil); got != a {
		t.Fatalf("New(nil) should fall back to Default")
	}
}
