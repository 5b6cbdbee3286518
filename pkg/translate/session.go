// Package translate turns a flat backend delta stream into the structured
// message lifecycle the client protocol expects.
//
//	NotStarted ──Start──▶ Streaming ──Finish / [DONE] / finish_reason──▶ Finished
//	                          │                                              ▲
//	                          └────────────── Fail (error event) ────────────┘
//
// Every session emits exactly one start pair, any number of content deltas,
// and then either the three-event close sequence or a single error event.
package translate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/papercomputeco/bridge/pkg/llm"
	"github.com/papercomputeco/bridge/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/bridge/pkg/session"
	"github.com/papercomputeco/bridge/pkg/sse"
)

// contentIndex is the only content block a translated message carries.
const contentIndex = 0

// State is the lifecycle state of a Session.
type State int

const (
	NotStarted State = iota
	Streaming
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Streaming:
		return "streaming"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Observer receives the per-session signals needed for metrics.
// *stats.Tracker implements it.
type Observer interface {
	ObserveDelta(text string)
	Finish(outcome session.Outcome, tokens int)
}

// Session is the state of one translated message. It is owned by a single
// task and mutated only through sequential calls; it is not safe for
// concurrent use.
type Session struct {
	id       string
	model    string
	observer Observer

	state      State
	tokens     int
	stopReason string
	text       strings.Builder
	outcome    session.Outcome
	err        error
}

// NewMessageID returns a fresh message id of the form "msg_<32 hex chars>".
func NewMessageID() string {
	return "msg_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewSession creates a session announcing model under message id. observer
// may be nil.
func NewSession(id, model string, observer Observer) *Session {
	return &Session{
		id:       id,
		model:    model,
		observer: observer,
	}
}

// ID returns the message id.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// OutputTokens returns the number of text deltas observed so far.
func (s *Session) OutputTokens() int { return s.tokens }

// StopReason returns the stop reason reported in the close sequence. It is
// empty until the session completes.
func (s *Session) StopReason() string { return s.stopReason }

// Text returns all text observed so far.
func (s *Session) Text() string { return s.text.String() }

// Outcome returns how the session ended, or "" while it is still running.
func (s *Session) Outcome() session.Outcome { return s.outcome }

// Err returns the transport error that failed the session, if any.
func (s *Session) Err() error { return s.err }

// Start moves a new session to Streaming and returns the start pair. It
// returns nil once the session has started.
func (s *Session) Start() []sse.Event {
	if s.state != NotStarted {
		return nil
	}
	s.state = Streaming

	return []sse.Event{
		anthropic.MessageStart(s.id, s.model),
		anthropic.ContentBlockStart(contentIndex),
	}
}

// Observe applies one backend event and returns the events it produces. A
// session that has not started yet is started first. Once Finished, every
// event is ignored.
func (s *Session) Observe(ev llm.StreamEvent) []sse.Event {
	if s.state == Finished {
		return nil
	}

	out := s.Start()

	switch ev.Kind {
	case llm.TextDelta:
		s.tokens++
		s.text.WriteString(ev.Text)
		if s.observer != nil {
			s.observer.ObserveDelta(ev.Text)
		}
		out = append(out, anthropic.ContentBlockDelta(contentIndex, ev.Text))

	case llm.StreamTerminated:
		out = append(out, s.close(ev.Reason)...)

	case llm.SentinelDone:
		out = append(out, s.close("")...)
	}

	return out
}

// Finish ends the stream normally, as at end of input, and returns the close
// sequence. It returns nil when the session has already finished.
func (s *Session) Finish() []sse.Event {
	if s.state == Finished {
		return nil
	}

	return append(s.Start(), s.close("")...)
}

// Fail ends the stream because of a transport error and returns the single
// error event that replaces the close sequence. It returns nil when the
// session has already finished.
func (s *Session) Fail(err error) []sse.Event {
	if s.state == Finished {
		return nil
	}

	out := s.Start()
	s.finish(session.OutcomeFailed)
	s.err = err

	return append(out, anthropic.Error(fmt.Sprintf("upstream stream failed: %v", err)))
}

// Cancel ends the session without emitting anything, as when the client has
// gone away. It is a no-op once the session has finished.
func (s *Session) Cancel() {
	if s.state == Finished {
		return
	}
	s.finish(session.OutcomeCancelled)
}

func (s *Session) close(reason string) []sse.Event {
	if reason == "" {
		reason = anthropic.StopReasonEndTurn
	}
	s.stopReason = reason
	s.finish(session.OutcomeCompleted)

	return []sse.Event{
		anthropic.ContentBlockStop(contentIndex),
		anthropic.MessageDelta(reason, s.tokens),
		anthropic.MessageStop(),
	}
}

func (s *Session) finish(outcome session.Outcome) {
	s.state = Finished
	s.outcome = outcome
	if s.observer != nil {
		s.observer.Finish(outcome, s.tokens)
	}
}
