package stealpool

import (
	"sync"
	"time"
)

// PoolMetrics is a point-in-time snapshot of task execution latency,
// returned by Pool.Metrics.
type PoolMetrics struct {
	// Count is the number of tasks that have completed execution.
	Count int
	// Mean is the arithmetic mean task latency.
	Mean time.Duration
	// Max is the largest observed task latency.
	Max time.Duration
	// P50, P90, P99 are streaming-estimated latency percentiles.
	P50, P90, P99 time.Duration
}

// metricsRecorder guards a pSquareMultiQuantile (itself not
// concurrency-safe) behind a mutex, since every worker goroutine calls
// record after finishing a task.
type metricsRecorder struct {
	mu  sync.Mutex
	est *pSquareMultiQuantile
}

func newMetricsRecorder() *metricsRecorder {
	return &metricsRecorder{
		est: newPSquareMultiQuantile(0.50, 0.90, 0.99),
	}
}

func (m *metricsRecorder) record(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.est.Update(float64(d))
}

func (m *metricsRecorder) snapshot() PoolMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return PoolMetrics{
		Count: m.est.Count(),
		Mean:  time.Duration(m.est.Mean()),
		Max:   time.Duration(m.est.Max()),
		P50:   time.Duration(m.est.Quantile(0)),
		P90:   time.Duration(m.est.Quantile(1)),
		P99:   time.Duration(m.est.Quantile(2)),
	}
}
