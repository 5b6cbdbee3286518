// Package session describes the summary kept for every translated stream once
// it has ended.
package session

import "time"

// Outcome is how a translation session ended.
type Outcome string

const (
	// OutcomeCompleted sessions emitted the full close sequence.
	OutcomeCompleted Outcome = "completed"

	// OutcomeFailed sessions hit a transport error mid-stream and emitted an
	// error event instead of the close sequence.
	OutcomeFailed Outcome = "failed"

	// OutcomeCancelled sessions lost their client before finishing.
	OutcomeCancelled Outcome = "cancelled"
)

// Outcomes returns every known outcome.
func Outcomes() []Outcome {
	return []Outcome{OutcomeCompleted, OutcomeFailed, OutcomeCancelled}
}

// Record is the persisted summary of one translation session.
type Record struct {
	// ID is the message id announced to the client ("msg_...").
	ID string `json:"id"`

	// Model is the model the client asked for.
	Model string `json:"model"`

	// UpstreamModel is the model the backend was asked for.
	UpstreamModel string `json:"upstream_model"`

	// StopReason reported in the final message_delta, empty unless completed.
	StopReason string `json:"stop_reason,omitempty"`

	Outcome Outcome `json:"outcome"`

	// OutputTokens is the number of text deltas observed.
	OutputTokens int `json:"output_tokens"`

	// TTFT is the time to the first non-empty delta; zero if none arrived.
	TTFT time.Duration `json:"ttft_ns"`

	// Duration is the wall time from session start to its end.
	Duration time.Duration `json:"duration_ns"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	// Error holds the transport error message for failed sessions.
	Error string `json:"error,omitempty"`
}
