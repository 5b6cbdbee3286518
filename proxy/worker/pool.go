// Package worker provides an asynchronous worker pool for persisting finished
// translation sessions using the provided storage.Driver and announcing them
// through the provided eventstream.Publisher.
//
// The pool decouples storage and publishing from the proxy's streaming hot
// path so that a slow database or broker never stalls a client stream.
package worker

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/bridge/pkg/eventstream"
	"github.com/papercomputeco/bridge/pkg/session"
	"github.com/papercomputeco/bridge/pkg/storage"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 30 * time.Second
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Record *session.Record
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting session records.
	Driver storage.Driver

	// Publisher is the optional event stream publisher. Events are only
	// published for records that were newly stored.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds the storage and publish work of a single job (defaults to 30s).
	JobTimeout time.Duration

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool processes storage jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	if job.Record == nil {
		p.logger.Error("job not queued, nil session record")
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			zap.String("message_id", job.Record.ID),
			zap.String("outcome", string(job.Record.Outcome)),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.String("message_id", job.Record.ID),
			zap.String("outcome", string(job.Record.Outcome)),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the proxy HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("storage worker stopped", zap.Uint("worker_id", id))
}

// processJob stores the session record and, if it was new, publishes the
// completion event.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	rec := job.Record

	isNew, err := p.config.Driver.Put(ctx, rec)
	if err != nil {
		p.logger.Error("async session storage failed",
			zap.String("message_id", rec.ID),
			zap.Error(err),
		)
		return
	}

	if !isNew {
		p.logger.Debug("session already stored",
			zap.String("message_id", rec.ID),
		)
		return
	}

	p.logger.Info("session stored",
		zap.String("message_id", rec.ID),
		zap.String("outcome", string(rec.Outcome)),
		zap.Int("output_tokens", rec.OutputTokens),
	)

	if p.config.Publisher == nil {
		return
	}

	if err := p.config.Publisher.PublishSession(ctx, eventstream.NewSessionCompletedEvent(*rec)); err != nil {
		p.logger.Warn("failed to publish session event",
			zap.String("message_id", rec.ID),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("session event published",
		zap.String("message_id", rec.ID),
	)
}
