package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/bridge/pkg/eventstream"
	"github.com/papercomputeco/bridge/pkg/session"
	"github.com/papercomputeco/bridge/pkg/storage/inmemory"
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.SessionCompletedEvent
	err    error
}

func (r *recordingPublisher) PublishSession(_ context.Context, event *eventstream.SessionCompletedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) published() []*eventstream.SessionCompletedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*eventstream.SessionCompletedEvent(nil), r.events...)
}

// blockingDriver wraps the in-memory driver and holds every Put until released.
type blockingDriver struct {
	*inmemory.Driver
	release chan struct{}
}

func (b *blockingDriver) Put(ctx context.Context, rec *session.Record) (bool, error) {
	<-b.release
	return b.Driver.Put(ctx, rec)
}

func testRecord(id string) *session.Record {
	now := time.Now().UTC()
	return &session.Record{
		ID:            id,
		Model:         "claude-3-5-sonnet",
		UpstreamModel: "local-model",
		StopReason:    "end_turn",
		Outcome:       session.OutcomeCompleted,
		OutputTokens:  2,
		StartedAt:     now.Add(-time.Second),
		CompletedAt:   now,
	}
}

// newTestPool creates a worker pool backed by an in-memory driver.
// Callers should "wp.Close()" to drain enqueued jobs before asserting storage state.
func newTestPool(publisher eventstream.Publisher) (*Pool, *inmemory.Driver) {
	driver := inmemory.NewDriver()

	wp, err := NewPool(&Config{
		Driver:    driver,
		Publisher: publisher,
		Logger:    zap.NewNop(),
	})
	Expect(err).NotTo(HaveOccurred())

	return wp, driver
}

var _ = Describe("Worker Pool", func() {
	var (
		wp        *Pool
		driver    *inmemory.Driver
		publisher *recordingPublisher
		ctx       context.Context
	)

	BeforeEach(func() {
		publisher = &recordingPublisher{}
		wp, driver = newTestPool(publisher)
		ctx = context.Background()
	})

	Describe("NewPool", func() {
		It("applies defaults", func() {
			Expect(wp.config.NumWorkers).To(Equal(defaultNumWorkers))
			Expect(wp.config.QueueSize).To(Equal(defaultJobQueueSize))
			Expect(wp.config.JobTimeout).To(Equal(defaultJobTimeout))
			wp.Close()
		})

		It("requires a driver", func() {
			_, err := NewPool(&Config{})
			Expect(err).To(HaveOccurred())
			wp.Close()
		})
	})

	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			Expect(wp.Enqueue(Job{Record: testRecord("msg_1")})).To(BeTrue())
			wp.Close()
		})

		It("rejects jobs without a record", func() {
			Expect(wp.Enqueue(Job{})).To(BeFalse())
			wp.Close()
		})

		It("drops jobs when the queue is full", func() {
			wp.Close()

			blocking := &blockingDriver{Driver: inmemory.NewDriver(), release: make(chan struct{})}
			small, err := NewPool(&Config{
				Driver:     blocking,
				NumWorkers: 1,
				QueueSize:  1,
				Logger:     zap.NewNop(),
			})
			Expect(err).NotTo(HaveOccurred())

			// The worker holds the first job, the queue holds the second.
			Expect(small.Enqueue(Job{Record: testRecord("msg_a")})).To(BeTrue())
			Eventually(func() int { return len(small.queue) }).Should(BeZero())
			Expect(small.Enqueue(Job{Record: testRecord("msg_b")})).To(BeTrue())
			Expect(small.Enqueue(Job{Record: testRecord("msg_c")})).To(BeFalse())

			close(blocking.release)
			small.Close()

			n, err := blocking.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
		})
	})

	Describe("processing", func() {
		It("stores the record and publishes one event", func() {
			wp.Enqueue(Job{Record: testRecord("msg_1")})
			wp.Close()

			rec, err := driver.Get(ctx, "msg_1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.OutputTokens).To(Equal(2))

			events := publisher.published()
			Expect(events).To(HaveLen(1))
			Expect(events[0].EventType).To(Equal(eventstream.EventTypeSessionCompleted))
			Expect(events[0].Session.ID).To(Equal("msg_1"))
		})

		It("does not republish a record that was already stored", func() {
			wp.Enqueue(Job{Record: testRecord("msg_dup")})
			wp.Enqueue(Job{Record: testRecord("msg_dup")})
			wp.Close()

			Expect(publisher.published()).To(HaveLen(1))
		})

		It("keeps the record when publishing fails", func() {
			publisher.err = errors.New("broker down")

			wp.Enqueue(Job{Record: testRecord("msg_1")})
			wp.Close()

			_, err := driver.Get(ctx, "msg_1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("stores records from many goroutines", func() {
			var wg sync.WaitGroup
			for i := range 50 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					wp.Enqueue(Job{Record: testRecord(fmt.Sprintf("msg_%d", i))})
				}()
			}
			wg.Wait()
			wp.Close()

			n, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(50))
			Expect(publisher.published()).To(HaveLen(50))
		})
	})
})
