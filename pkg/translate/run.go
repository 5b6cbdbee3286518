package translate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/papercomputeco/bridge/pkg/llm"
	"github.com/papercomputeco/bridge/pkg/sse"
)

// LineParser classifies complete backend stream lines.
type LineParser interface {
	ParseLine(line string) []llm.StreamEvent
}

// Emitter delivers one outbound event to the client. It may block for
// backpressure. A non-nil error means the client is gone.
type Emitter func(ev sse.Event) error

// ErrClientGone wraps the emitter error returned by Run when the client stopped
// accepting events.
var ErrClientGone = errors.New("client disconnected")

// Run drives s over the backend stream body until the session finishes.
//
// The start pair is emitted before the first line is read. Lines are parsed
// with parser and fed to the session in arrival order. End of input closes the
// session normally; a read failure emits a single error event. Run returns nil
// when the session completed, the read error when it failed, and an error
// wrapping ErrClientGone or ctx.Err() when it was cancelled.
func Run(ctx context.Context, body io.Reader, parser LineParser, s *Session, emit Emitter) error {
	send := func(events []sse.Event) error {
		for _, ev := range events {
			if err := emit(ev); err != nil {
				s.Cancel()
				return fmt.Errorf("%w: %w", ErrClientGone, err)
			}
		}
		return nil
	}

	if err := send(s.Start()); err != nil {
		return err
	}

	lines := sse.NewLineReader(body)
	for s.State() != Finished {
		if err := ctx.Err(); err != nil {
			s.Cancel()
			return err
		}

		line, err := lines.Next()
		if errors.Is(err, io.EOF) {
			return send(s.Finish())
		}
		if err != nil {
			// A body torn down by cancellation is not a backend failure.
			if ctxErr := ctx.Err(); ctxErr != nil {
				s.Cancel()
				return ctxErr
			}
			if sendErr := send(s.Fail(err)); sendErr != nil {
				return sendErr
			}
			return fmt.Errorf("reading upstream stream: %w", err)
		}

		for _, ev := range parser.ParseLine(line) {
			if err := send(s.Observe(ev)); err != nil {
				return err
			}
		}
	}

	return nil
}
