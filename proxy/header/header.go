// Package header provides header filtering for the bridge proxy.
//
// The bridge sits between an Anthropic-dialect client and an OpenAI-compatible
// upstream:
//
//	Client <--> Bridge <--> Upstream chat completions server
//
// Each leg negotiates compression, hops and encoding independently, and the
// downstream response is always a bridge-authored event stream rather than a
// copy of the upstream one.
package header

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequestIDHeader carries the bridge message id back to the client.
const RequestIDHeader = "Request-Id"

// Handler manages headers between proxy connections.
type Handler struct{}

// NewHandler creates a new header Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// skipRequest is the set of request headers (client --> bridge --> upstream)
// that are not forwarded to the upstream server.
var skipRequest = map[string]struct{}{
	// Hop-by-hop headers: only meaningful for a single transport-level connection.
	"Connection": {},

	// Rewritten by Go's http.Transport to match the upstream URL.
	"Host": {},

	// Stripped so that Go's http.Transport adds its own "Accept-Encoding: gzip"
	// and transparently decompresses the upstream stream before line splitting.
	"Accept-Encoding": {},

	// The upstream body is rebuilt in the OpenAI dialect.
	"Content-Length": {},
	"Content-Type":   {},

	// Anthropic client credentials and protocol negotiation.
	"X-Api-Key":         {},
	"Anthropic-Version": {},
	"Anthropic-Beta":    {},
}

// SetUpstreamRequestHeaders copies request headers from the Fiber context to
// the outgoing http.Request, filtering headers that only make sense on the
// client leg, and sets the upstream content negotiation headers.
func (h *Handler) SetUpstreamRequestHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := string(key)
		if _, skip := skipRequest[k]; !skip {
			req.Header.Set(k, string(value))
		}
	})

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
}

// SetStreamResponseHeaders prepares the client response for an SSE stream
// identified by messageID.
func (h *Handler) SetStreamResponseHeaders(c *fiber.Ctx, messageID string) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")
	if messageID != "" {
		c.Set(RequestIDHeader, messageID)
	}
}
