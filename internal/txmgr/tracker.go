package txmgr

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// GasRecord is one per-call gas usage entry, kept when diagnostic
// recording is enabled.
type GasRecord struct {
	Call    string `json:"call"`
	GasUsed uint64 `json:"gas_used"`
}

// GasTracker accrues gas used by confirmed transactions into a running
// total. The total is process-wide bookkeeping, not part of any
// transaction's outcome, and is explicitly resettable.
type GasTracker struct {
	mu            sync.Mutex
	total         uint64
	recordByCall  bool
	records       []GasRecord
	gasUsedMetric *prometheus.CounterVec
}

// NewGasTracker builds a tracker. With recordByCall set it also keeps a
// per-call-name record of every accrual.
func NewGasTracker(recordByCall bool) *GasTracker {
	return &GasTracker{recordByCall: recordByCall}
}

// defaultTracker backs the process-wide total.
var defaultTracker = NewGasTracker(false)

// DefaultTracker returns the process-wide tracker.
func DefaultTracker() *GasTracker {
	return defaultTracker
}

// RegisterMetrics exposes the accrued gas as a counter vector labeled by
// call name. Registration is caller-driven; the tracker owns no metrics
// endpoint.
func (t *GasTracker) RegisterMetrics(reg prometheus.Registerer) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	metric := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "perpflow_gas_used_total",
		Help: "Gas used by confirmed transactions, by call name.",
	}, []string{"call"})
	if err := reg.Register(metric); err != nil {
		return err
	}
	t.gasUsedMetric = metric
	return nil
}

// Add accrues one confirmed transaction's gas usage.
func (t *GasTracker) Add(call string, gasUsed uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total += gasUsed
	if t.recordByCall {
		t.records = append(t.records, GasRecord{Call: call, GasUsed: gasUsed})
	}
	if t.gasUsedMetric != nil {
		t.gasUsedMetric.WithLabelValues(call).Add(float64(gasUsed))
	}
}

// Total returns the accrued running total.
func (t *GasTracker) Total() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Records returns a copy of the per-call records.
func (t *GasTracker) Records() []GasRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]GasRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Reset clears the running total and any per-call records. The metric
// counter is monotonic and is left untouched.
func (t *GasTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = 0
	t.records = nil
}
