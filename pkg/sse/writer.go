package sse

import "io"

// Write encodes ev as one complete SSE frame onto w.
//
// A frame is written with a single Write call so that a blocking writer (e.g.
// an io.PipeWriter feeding fasthttp) never observes half a frame.
func Write(w io.Writer, ev Event) error {
	_, err := w.Write(ev.Bytes())
	return err
}
