package txmgr

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTrackerMetrics(t *testing.T) {
	tracker := NewGasTracker(false)
	reg := prometheus.NewRegistry()
	if err := tracker.RegisterMetrics(reg); err != nil {
		t.Fatalf("register: %v", err)
	}

	tracker.Add("deposit", 21000)
	tracker.Add("deposit", 1000)
	tracker.Add("trade", 45000)

	if got := testutil.ToFloat64(tracker.gasUsedMetric.WithLabelValues("deposit")); got != 22000 {
		t.Fatalf("deposit counter: %f", got)
	}
	if got := testutil.ToFloat64(tracker.gasUsedMetric.WithLabelValues("trade")); got != 45000 {
		t.Fatalf("trade counter: %f", got)
	}

	// Reset clears bookkeeping but counters stay monotonic.
	tracker.Reset()
	if tracker.Total() != 0 {
		t.Fatalf("total after reset: %d", tracker.Total())
	}
	if got := testutil.ToFloat64(tracker.gasUsedMetric.WithLabelValues("trade")); got != 45000 {
		t.Fatalf("counter must not reset: %f", got)
	}
}

func TestTrackerRecordsDisabled(t *testing.T) {
	tracker := NewGasTracker(false)
	tracker.Add("deposit", 100)
	if len(tracker.Records()) != 0 {
		t.Fatalf("records kept while disabled")
	}
	if tracker.Total() != 100 {
		t.Fatalf("total: %d", tracker.Total())
	}
}
