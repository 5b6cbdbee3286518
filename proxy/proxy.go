// Package proxy provides the streaming bridge that serves the Anthropic
// Messages API on top of an OpenAI-compatible chat completions server.
package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/bridge/pkg/llm"
	"github.com/papercomputeco/bridge/pkg/llm/provider"
	"github.com/papercomputeco/bridge/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/bridge/pkg/session"
	"github.com/papercomputeco/bridge/pkg/sse"
	"github.com/papercomputeco/bridge/pkg/stats"
	"github.com/papercomputeco/bridge/pkg/storage"
	"github.com/papercomputeco/bridge/pkg/translate"
	"github.com/papercomputeco/bridge/pkg/utils"
	"github.com/papercomputeco/bridge/proxy/header"
	"github.com/papercomputeco/bridge/proxy/worker"
)

const (
	messagesPath = "/v1/messages"

	// maxUpstreamErrorLen caps how much of an upstream error body is relayed.
	maxUpstreamErrorLen = 512
)

// Proxy accepts Anthropic Messages requests, forwards them to the upstream
// chat completions server and translates the upstream delta stream back into
// the Messages event lifecycle. Finished sessions are handed to the worker
// pool for async storage and publishing.
type Proxy struct {
	config        Config
	driver        storage.Driver
	workerPool    *worker.Pool
	metrics       *stats.Metrics
	logger        *zap.Logger
	httpClient    *http.Client
	server        *fiber.App
	frontend      provider.Frontend
	backend       provider.Backend
	headerHandler *header.Handler
	upstreamURL   string

	// ctx is the parent of every session context; stop cancels in-flight
	// streams on Close.
	ctx     context.Context
	stop    context.CancelFunc
	streams sync.WaitGroup
}

// New creates a new Proxy.
// The driver is injected to handle async persistence of finished sessions.
// Returns an error if the configured backend type is not recognized.
func New(config Config, driver storage.Driver, logger *zap.Logger) (*Proxy, error) {
	config.applyDefaults()

	backend, err := provider.NewBackend(config.BackendType)
	if err != nil {
		return nil, fmt.Errorf("could not create backend: %w", err)
	}

	frontend, err := anthropic.New()
	if err != nil {
		return nil, fmt.Errorf("could not create frontend: %w", err)
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		StreamRequestBody:     true,
	})

	// Event streams must reach the client chunk by chunk.
	app.Use(compress.New(compress.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == messagesPath
		},
	}))

	wp, err := worker.NewPool(&worker.Config{
		Driver:    driver,
		Publisher: config.Publisher,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}

	ctx, stop := context.WithCancel(context.Background())

	p := &Proxy{
		config:        config,
		driver:        driver,
		workerPool:    wp,
		metrics:       stats.New(config.Registry, logger),
		logger:        logger,
		server:        app,
		frontend:      frontend,
		backend:       backend,
		headerHandler: header.NewHandler(),
		upstreamURL:   strings.TrimRight(config.UpstreamURL, "/") + config.UpstreamPath,
		// No client timeout: a stalled upstream holds its session open.
		httpClient: &http.Client{},
		ctx:        ctx,
		stop:       stop,
	}

	app.Post(messagesPath, p.handleMessages)
	app.Get("/stats", p.handleStats)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(config.Registry, promhttp.HandlerOpts{})))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	return p, nil
}

// Metrics returns the process-wide session metrics.
func (p *Proxy) Metrics() *stats.Metrics {
	return p.metrics
}

// Run starts the proxy server on the given listening address
func (p *Proxy) Run() error {
	p.logger.Info("starting proxy server",
		zap.String("listen", p.config.ListenAddr),
		zap.String("upstream", p.upstreamURL),
		zap.String("upstream_model", p.config.UpstreamModel),
	)

	return p.server.Listen(p.config.ListenAddr)
}

// RunWithListener starts the proxy server using the provided listener.
func (p *Proxy) RunWithListener(listener net.Listener) error {
	p.logger.Info("starting proxy server",
		zap.String("listen", listener.Addr().String()),
		zap.String("upstream", p.upstreamURL),
		zap.String("upstream_model", p.config.UpstreamModel),
	)

	return p.server.Listener(listener)
}

// Close cancels in-flight streams, stops the server and waits for the worker
// pool to drain.
func (p *Proxy) Close() error {
	p.stop()
	err := p.server.Shutdown()
	p.streams.Wait()
	p.workerPool.Close()
	return err
}

func (p *Proxy) handleStats(c *fiber.Ctx) error {
	return c.JSON(p.metrics.Snapshot())
}

// handleMessages translates one streaming Messages request.
func (p *Proxy) handleMessages(c *fiber.Ctx) error {
	req, err := p.frontend.ParseRequest(c.Body())
	if err != nil {
		p.logger.Warn("rejected request",
			zap.String("frontend", p.frontend.Name()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadRequest).
			JSON(anthropic.NewErrorResponse(anthropic.ErrorTypeInvalidRequest, err.Error()))
	}

	if !req.Streaming() {
		return c.Status(fiber.StatusBadRequest).
			JSON(anthropic.NewErrorResponse(anthropic.ErrorTypeInvalidRequest, "only streaming requests are supported"))
	}

	body, err := p.backend.BuildRequest(p.config.UpstreamModel, req.Messages)
	if err != nil {
		p.logger.Error("failed to build upstream request", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).
			JSON(anthropic.NewErrorResponse(anthropic.ErrorTypeAPI, "internal error"))
	}

	id := translate.NewMessageID()
	tracker := p.metrics.StartSession(id)

	// The session outlives the handler: fasthttp recycles its RequestCtx once
	// the handler returns but the stream is written from a separate goroutine.
	ctx, cancel := context.WithCancel(p.ctx)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.upstreamURL, bytes.NewReader(body))
	if err != nil {
		cancel()
		p.logger.Error("failed to create upstream request", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).
			JSON(anthropic.NewErrorResponse(anthropic.ErrorTypeAPI, "internal error"))
	}

	p.headerHandler.SetUpstreamRequestHeaders(c, httpReq)

	p.logger.Debug("forwarding streaming request to upstream",
		zap.String("message_id", id),
		zap.String("url", p.upstreamURL),
		zap.String("model", req.Model),
	)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		p.logger.Error("upstream request failed",
			zap.String("message_id", id),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).
			JSON(anthropic.NewErrorResponse(anthropic.ErrorTypeAPI, "upstream request failed"))
	}

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		cancel()
		p.logger.Error("upstream returned error",
			zap.String("message_id", id),
			zap.Int("status", httpResp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return c.Status(httpResp.StatusCode).
			JSON(anthropic.NewErrorResponse(anthropic.ErrorTypeAPI, upstreamErrorMessage(httpResp.StatusCode, respBody)))
	}

	model := req.Model
	if model == "" {
		model = p.config.UpstreamModel
	}
	ts := translate.NewSession(id, model, tracker)

	p.headerHandler.SetStreamResponseHeaders(c, id)

	// Use io.Pipe + SetBodyStream instead of SetBodyStreamWriter.
	// SetBodyStreamWriter buffers through an internal channel and two
	// bufio.Writers, so Flush() in the callback does not reach the socket.
	// With io.Pipe, pw.Write blocks until fasthttp's chunked body writer has
	// consumed and flushed the frame, which gives per-event streaming and
	// backpressure from the client all the way to the upstream reader.
	pr, pw := io.Pipe()

	p.streams.Add(1)
	go func() {
		defer p.streams.Done()
		defer cancel()
		defer httpResp.Body.Close()
		defer pw.Close()

		p.stream(ctx, cancel, httpResp.Body, pw, ts)
		p.enqueue(req, ts, tracker)
	}()

	// Unknown size (-1) triggers chunked transfer encoding in fasthttp.
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// stream runs the translation session over the upstream body, writing every
// produced event into the client pipe. A failed pipe write means the client
// went away; cancelling ctx tears down the upstream request.
func (p *Proxy) stream(ctx context.Context, cancel context.CancelFunc, body io.Reader, pw io.Writer, ts *translate.Session) {
	emit := func(ev sse.Event) error {
		if err := sse.Write(pw, ev); err != nil {
			cancel()
			return err
		}
		return nil
	}

	err := translate.Run(ctx, body, p.backend, ts, emit)
	switch {
	case err == nil:
		p.logger.Debug("stream complete",
			zap.String("message_id", ts.ID()),
			zap.Int("output_tokens", ts.OutputTokens()),
			zap.String("stop_reason", ts.StopReason()),
		)
	case errors.Is(err, translate.ErrClientGone), errors.Is(err, context.Canceled):
		p.logger.Info("client disconnected, stream cancelled",
			zap.String("message_id", ts.ID()),
			zap.Int("output_tokens", ts.OutputTokens()),
		)
	default:
		p.logger.Error("upstream stream failed",
			zap.String("message_id", ts.ID()),
			zap.Int("output_tokens", ts.OutputTokens()),
			zap.Error(err),
		)
	}
}

// enqueue hands the finished session to the worker pool.
func (p *Proxy) enqueue(req *llm.ChatRequest, ts *translate.Session, tracker *stats.Tracker) {
	elapsed := tracker.Elapsed()

	rec := &session.Record{
		ID:            ts.ID(),
		Model:         req.Model,
		UpstreamModel: p.config.UpstreamModel,
		StopReason:    ts.StopReason(),
		Outcome:       ts.Outcome(),
		OutputTokens:  ts.OutputTokens(),
		TTFT:          tracker.TTFT(),
		Duration:      elapsed,
		StartedAt:     tracker.StartedAt(),
		CompletedAt:   tracker.StartedAt().Add(elapsed),
	}
	if err := ts.Err(); err != nil {
		rec.Error = err.Error()
	}

	p.logger.Info("session finished",
		zap.String("message_id", rec.ID),
		zap.String("outcome", string(rec.Outcome)),
		zap.Int("output_tokens", rec.OutputTokens),
		zap.Duration("duration", rec.Duration),
	)

	p.workerPool.Enqueue(worker.Job{Record: rec})
}

func upstreamErrorMessage(status int, body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Sprintf("upstream returned status %d", status)
	}
	return utils.Truncate(msg, maxUpstreamErrorLen)
}
