package sse

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

const (
	initialBufferSize = 64 * 1024
	maxLineSize       = 1024 * 1024
)

// ErrLineTooLong is returned by LineReader.Next when a single line exceeds
// the maximum buffered line size without a terminator.
var ErrLineTooLong = errors.New("sse: line exceeds maximum size")

// LineReader turns an arbitrarily chunked upstream byte stream into a lazy
// sequence of complete lines.
//
// ┌──────────────────┐
// │ source io.Reader │  (raw chunks, no alignment with lines)
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │ LineReader.Next()│  (buffers the trailing partial line)
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │   trimmed line   │
// └──────────────────┘
//
// A line is only yielded once its terminator ("\n", optionally preceded by
// "\r") has been observed. When the source ends, any remaining unterminated
// bytes are discarded. A LineReader is not restartable.
type LineReader struct {
	scanner *bufio.Scanner
	done    bool
}

// NewLineReader returns a LineReader reading from src.
func NewLineReader(src io.Reader) *LineReader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initialBufferSize), maxLineSize)
	scanner.Split(scanTerminatedLines)

	return &LineReader{scanner: scanner}
}

// Next returns the next complete line with surrounding whitespace trimmed.
// It blocks until a terminated line is available.
//
// Next returns io.EOF once the source is exhausted. A transport failure from
// the source is returned as-is so the caller can tell it apart from a clean
// end of stream.
func (r *LineReader) Next() (string, error) {
	if r.done {
		return "", io.EOF
	}

	if r.scanner.Scan() {
		return strings.TrimSpace(r.scanner.Text()), nil
	}

	r.done = true
	if err := r.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return "", ErrLineTooLong
		}
		return "", err
	}

	return "", io.EOF
}

// scanTerminatedLines is a bufio.SplitFunc like bufio.ScanLines, except that
// a final line without a terminator is dropped instead of returned.
func scanTerminatedLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, bytes.TrimSuffix(data[:i], []byte{'\r'}), nil
	}

	if atEOF && len(data) > 0 {
		// Unterminated remainder: consume and discard it.
		return len(data), nil, nil
	}

	return 0, nil, nil
}
