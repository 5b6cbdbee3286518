package llm

// StreamEventKind classifies one parsed line of a backend stream.
type StreamEventKind int

const (
	// Ignored lines carry no payload (blank lines, comments, other SSE fields).
	Ignored StreamEventKind = iota

	// TextDelta carries an incremental text fragment, possibly empty.
	TextDelta

	// StreamTerminated reports that the backend finished with a reason.
	StreamTerminated

	// SentinelDone is the literal [DONE] payload.
	SentinelDone

	// Malformed payloads failed to decode or lacked the expected fields.
	Malformed
)

// String returns the kind's name for logging.
func (k StreamEventKind) String() string {
	switch k {
	case Ignored:
		return "ignored"
	case TextDelta:
		return "text_delta"
	case StreamTerminated:
		return "stream_terminated"
	case SentinelDone:
		return "sentinel_done"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// StreamEvent is a single logical unit parsed from a backend stream line.
// This is the internal representation the translator consumes after parsing
// provider-specific streaming formats.
type StreamEvent struct {
	Kind StreamEventKind

	// Text is set for TextDelta events.
	Text string

	// Reason is set for StreamTerminated events.
	Reason string
}

// Terminal reports whether the event ends the stream.
func (e StreamEvent) Terminal() bool {
	return e.Kind == StreamTerminated || e.Kind == SentinelDone
}
