// Package stats tracks per-session timing and the process-wide request and
// token counters shared by every concurrent translation session.
package stats

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/papercomputeco/bridge/pkg/session"
)

const namespace = "bridge"

// Metrics is the process-wide metrics handle. It is created once and shared by
// every session; all mutation goes through atomic adds.
type Metrics struct {
	totalRequests atomic.Uint64
	totalTokens   atomic.Uint64

	requests prometheus.Counter
	tokens   prometheus.Counter
	ttft     prometheus.Histogram
	sessions *prometheus.CounterVec
	duration prometheus.Histogram

	logger *zap.Logger
}

// Snapshot is a point-in-time read of the process counters.
type Snapshot struct {
	TotalTokensProcessed uint64 `json:"total_tokens_processed"`
	TotalRequestsHandled uint64 `json:"total_requests_handled"`
}

// New creates a Metrics handle whose Prometheus collectors are registered on
// reg. A nil reg leaves the collectors unregistered.
func New(reg prometheus.Registerer, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}

	factory := promauto.With(reg)

	m := &Metrics{
		requests: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of streaming translation requests started",
			},
		),
		tokens: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "output_tokens_total",
				Help:      "Total number of output deltas committed by finished sessions",
			},
		),
		ttft: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "time_to_first_token_seconds",
				Help:      "Time from session start to the first non-empty delta",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		sessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_total",
				Help:      "Total number of finished sessions grouped by outcome",
			},
			[]string{"outcome"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "session_duration_seconds",
				Help:      "Wall time of translation sessions",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		logger: logger,
	}

	for _, outcome := range session.Outcomes() {
		m.sessions.WithLabelValues(string(outcome))
	}

	return m
}

// Snapshot returns the current process counters.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		TotalTokensProcessed: m.totalTokens.Load(),
		TotalRequestsHandled: m.totalRequests.Load(),
	}
}

// StartSession counts a new request and returns the tracker for its session.
func (m *Metrics) StartSession(id string) *Tracker {
	m.totalRequests.Add(1)
	m.requests.Inc()

	return &Tracker{
		metrics: m,
		id:      id,
		start:   time.Now(),
		now:     time.Now,
	}
}

func (m *Metrics) commit(outcome session.Outcome, tokens int, elapsed time.Duration) {
	if outcome != session.OutcomeCancelled && tokens > 0 {
		m.totalTokens.Add(uint64(tokens))
		m.tokens.Add(float64(tokens))
	}

	m.sessions.WithLabelValues(string(outcome)).Inc()
	m.duration.Observe(elapsed.Seconds())
}
