// Package storagetest holds the behavior every storage.Driver must share,
// as a ginkgo container each driver package runs against its own backend.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/session"
	"github.com/papercomputeco/bridge/pkg/storage"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// NewRecord returns a completed record whose start time is offset seconds
// after a fixed epoch.
func NewRecord(id string, offset int) *session.Record {
	started := epoch.Add(time.Duration(offset) * time.Second)
	return &session.Record{
		ID:            id,
		Model:         "claude-3-5-sonnet",
		UpstreamModel: "local-model",
		StopReason:    "end_turn",
		Outcome:       session.OutcomeCompleted,
		OutputTokens:  7,
		TTFT:          120 * time.Millisecond,
		Duration:      900 * time.Millisecond,
		StartedAt:     started,
		CompletedAt:   started.Add(900 * time.Millisecond),
	}
}

// DescribeDriver registers the shared driver behavior. newDriver is called
// before each spec and must return an empty store.
func DescribeDriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = nil
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	Describe("Put and Get", func() {
		It("stores and retrieves a record", func() {
			rec := NewRecord("msg_1", 0)

			inserted, err := driver.Put(ctx, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())

			got, err := driver.Get(ctx, "msg_1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(rec.ID))
			Expect(got.Model).To(Equal(rec.Model))
			Expect(got.UpstreamModel).To(Equal(rec.UpstreamModel))
			Expect(got.StopReason).To(Equal(rec.StopReason))
			Expect(got.Outcome).To(Equal(rec.Outcome))
			Expect(got.OutputTokens).To(Equal(rec.OutputTokens))
			Expect(got.TTFT).To(Equal(rec.TTFT))
			Expect(got.Duration).To(Equal(rec.Duration))
			Expect(got.StartedAt.Equal(rec.StartedAt)).To(BeTrue())
			Expect(got.CompletedAt.Equal(rec.CompletedAt)).To(BeTrue())
			Expect(got.Error).To(BeEmpty())
		})

		It("keeps failure details", func() {
			rec := NewRecord("msg_failed", 0)
			rec.Outcome = session.OutcomeFailed
			rec.StopReason = ""
			rec.Error = "connection reset by peer"

			_, err := driver.Put(ctx, rec)
			Expect(err).NotTo(HaveOccurred())

			got, err := driver.Get(ctx, "msg_failed")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Outcome).To(Equal(session.OutcomeFailed))
			Expect(got.Error).To(Equal("connection reset by peer"))
		})

		It("is a no-op for a duplicate ID", func() {
			_, err := driver.Put(ctx, NewRecord("msg_dup", 0))
			Expect(err).NotTo(HaveOccurred())

			again := NewRecord("msg_dup", 5)
			again.OutputTokens = 99
			inserted, err := driver.Put(ctx, again)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())

			got, err := driver.Get(ctx, "msg_dup")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.OutputTokens).To(Equal(7))
		})

		It("rejects a nil record", func() {
			_, err := driver.Put(ctx, nil)
			Expect(err).To(HaveOccurred())
		})

		It("returns NotFoundError for an unknown ID", func() {
			_, err := driver.Get(ctx, "msg_missing")

			var notFound storage.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.ID).To(Equal("msg_missing"))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for i := range 5 {
				_, err := driver.Put(ctx, NewRecord(fmt.Sprintf("msg_%d", i), i))
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("returns the newest records first", func() {
			records, err := driver.List(ctx, 10)
			Expect(err).NotTo(HaveOccurred())

			ids := make([]string, 0, len(records))
			for _, r := range records {
				ids = append(ids, r.ID)
			}
			Expect(ids).To(Equal([]string{"msg_4", "msg_3", "msg_2", "msg_1", "msg_0"}))
		})

		It("honors the limit", func() {
			records, err := driver.List(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].ID).To(Equal("msg_4"))
		})

		It("uses the default limit for non-positive values", func() {
			records, err := driver.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(5))
		})
	})

	Describe("Count", func() {
		It("counts stored records", func() {
			n, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())

			_, _ = driver.Put(ctx, NewRecord("msg_a", 0))
			_, _ = driver.Put(ctx, NewRecord("msg_b", 1))
			_, _ = driver.Put(ctx, NewRecord("msg_a", 2))

			n, err = driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
		})
	})
}
