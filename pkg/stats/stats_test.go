package stats

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/papercomputeco/bridge/pkg/session"
)

// gathered returns the counter value (or histogram sample count) of the
// metric with the given name and labels.
func gathered(reg *prometheus.Registry, name string, labels map[string]string) float64 {
	mfs, err := reg.Gather()
	Expect(err).NotTo(HaveOccurred())

	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			if h := m.GetHistogram(); h != nil {
				return float64(h.GetSampleCount())
			}
			return m.GetCounter().GetValue()
		}
	}
	return -1
}

// fakeClock is advanced by hand so tracker timings are deterministic.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var _ = Describe("Metrics", func() {
	var (
		reg     *prometheus.Registry
		metrics *Metrics
	)

	BeforeEach(func() {
		reg = prometheus.NewRegistry()
		metrics = New(reg, zap.NewNop())
	})

	Describe("Snapshot", func() {
		It("starts at zero", func() {
			Expect(metrics.Snapshot()).To(Equal(Snapshot{}))
		})
	})

	Describe("StartSession", func() {
		It("counts the request immediately", func() {
			metrics.StartSession("msg_1")
			metrics.StartSession("msg_2")

			Expect(metrics.Snapshot().TotalRequestsHandled).To(Equal(uint64(2)))
			Expect(gathered(reg, "bridge_requests_total", nil)).To(Equal(2.0))
		})
	})

	Describe("Tracker", func() {
		var (
			clock   *fakeClock
			tracker *Tracker
		)

		BeforeEach(func() {
			clock = &fakeClock{t: time.Unix(1000, 0)}
			tracker = metrics.StartSession("msg_1")
			tracker.start = clock.now()
			tracker.now = clock.now
		})

		It("records time to first token on the first non-empty delta", func() {
			clock.advance(50 * time.Millisecond)
			tracker.ObserveDelta("")
			Expect(tracker.TTFT()).To(BeZero())

			clock.advance(50 * time.Millisecond)
			tracker.ObserveDelta("Hi")
			Expect(tracker.TTFT()).To(Equal(100 * time.Millisecond))

			clock.advance(time.Second)
			tracker.ObserveDelta(" there")
			Expect(tracker.TTFT()).To(Equal(100 * time.Millisecond))

			Expect(gathered(reg, "bridge_time_to_first_token_seconds", nil)).To(Equal(1.0))
		})

		It("commits tokens on a completed finish", func() {
			tracker.ObserveDelta("a")
			tracker.ObserveDelta("b")
			tracker.Finish(session.OutcomeCompleted, 2)

			Expect(metrics.Snapshot().TotalTokensProcessed).To(Equal(uint64(2)))
			Expect(gathered(reg, "bridge_output_tokens_total", nil)).To(Equal(2.0))
			Expect(gathered(reg, "bridge_sessions_total", map[string]string{"outcome": "completed"})).To(Equal(1.0))
			Expect(gathered(reg, "bridge_session_duration_seconds", nil)).To(Equal(1.0))
		})

		It("commits tokens on a failed finish", func() {
			tracker.Finish(session.OutcomeFailed, 3)

			Expect(metrics.Snapshot().TotalTokensProcessed).To(Equal(uint64(3)))
			Expect(gathered(reg, "bridge_sessions_total", map[string]string{"outcome": "failed"})).To(Equal(1.0))
		})

		It("commits no tokens when cancelled", func() {
			tracker.Finish(session.OutcomeCancelled, 5)

			Expect(metrics.Snapshot().TotalTokensProcessed).To(BeZero())
			Expect(gathered(reg, "bridge_sessions_total", map[string]string{"outcome": "cancelled"})).To(Equal(1.0))
		})

		It("only honors the first finish", func() {
			tracker.Finish(session.OutcomeCompleted, 4)
			tracker.Finish(session.OutcomeCompleted, 4)
			tracker.Finish(session.OutcomeFailed, 9)

			Expect(metrics.Snapshot().TotalTokensProcessed).To(Equal(uint64(4)))
			Expect(gathered(reg, "bridge_sessions_total", map[string]string{"outcome": "completed"})).To(Equal(1.0))
			Expect(gathered(reg, "bridge_sessions_total", map[string]string{"outcome": "failed"})).To(BeZero())
		})

		It("freezes elapsed time at finish", func() {
			clock.advance(2 * time.Second)
			tracker.Finish(session.OutcomeCompleted, 0)

			clock.advance(time.Minute)
			Expect(tracker.Elapsed()).To(Equal(2 * time.Second))
		})

		It("ignores deltas after finish", func() {
			tracker.Finish(session.OutcomeCompleted, 0)
			tracker.ObserveDelta("late")

			Expect(tracker.TTFT()).To(BeZero())
		})
	})

	Context("with concurrent sessions", func() {
		It("never loses an update", func() {
			const sessions = 64

			var wg sync.WaitGroup
			for i := range sessions {
				wg.Add(1)
				go func(tokens int) {
					defer wg.Done()
					defer GinkgoRecover()

					t := metrics.StartSession("msg")
					for range tokens {
						t.ObserveDelta("x")
					}
					t.Finish(session.OutcomeCompleted, tokens)
				}(i)
			}
			wg.Wait()

			// 0 + 1 + ... + 63
			Expect(metrics.Snapshot()).To(Equal(Snapshot{
				TotalTokensProcessed: sessions * (sessions - 1) / 2,
				TotalRequestsHandled: sessions,
			}))
		})
	})

	It("accepts a nil registerer", func() {
		m := New(nil, nil)
		m.StartSession("msg").Finish(session.OutcomeCompleted, 1)
		Expect(m.Snapshot().TotalTokensProcessed).To(Equal(uint64(1)))
	})
})
