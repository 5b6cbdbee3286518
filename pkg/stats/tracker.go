package stats

import (
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/bridge/pkg/session"
)

// throughputEvery is how many deltas pass between throughput log lines.
const throughputEvery = 10

// Tracker observes a single session. It is owned by the session task and is
// not safe for concurrent use.
type Tracker struct {
	metrics *Metrics
	id      string
	start   time.Time
	now     func() time.Time

	deltas    int
	firstSeen bool
	ttft      time.Duration
	finished  bool
	elapsed   time.Duration
}

// ObserveDelta records one text delta. The first non-empty delta fixes the
// session's time to first token.
func (t *Tracker) ObserveDelta(text string) {
	if t.finished {
		return
	}

	t.deltas++
	elapsed := t.now().Sub(t.start)

	if !t.firstSeen && text != "" {
		t.firstSeen = true
		t.ttft = elapsed
		t.metrics.ttft.Observe(elapsed.Seconds())
		t.metrics.logger.Info("time to first token",
			zap.String("message_id", t.id),
			zap.Duration("ttft", elapsed),
		)
	}

	if t.deltas%throughputEvery == 0 && elapsed > 0 {
		t.metrics.logger.Debug("stream throughput",
			zap.String("message_id", t.id),
			zap.Int("deltas", t.deltas),
			zap.Float64("tokens_per_second", float64(t.deltas)/elapsed.Seconds()),
		)
	}
}

// Finish ends the session and commits its token count to the process
// counters. Cancelled sessions commit no tokens. Only the first call has an
// effect.
func (t *Tracker) Finish(outcome session.Outcome, tokens int) {
	if t.finished {
		return
	}
	t.finished = true
	t.elapsed = t.now().Sub(t.start)

	t.metrics.commit(outcome, tokens, t.elapsed)
}

// TTFT returns the time to first token, or zero if no non-empty delta arrived.
func (t *Tracker) TTFT() time.Duration {
	return t.ttft
}

// StartedAt returns when the session started.
func (t *Tracker) StartedAt() time.Time {
	return t.start
}

// Elapsed returns the time since the session started, frozen once the
// session has finished.
func (t *Tracker) Elapsed() time.Duration {
	if t.finished {
		return t.elapsed
	}
	return t.now().Sub(t.start)
}
