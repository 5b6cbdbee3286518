// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// line reader and frame writer for use in the bridge proxy.
//
// The reader side consumes an upstream byte stream that may be chunked
// arbitrarily by the network and yields complete, terminated lines. The
// writer side encodes the typed events the downstream client expects.
//
// Wire format reference:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single SSE frame written to the downstream client.
type Event struct {
	// Type is the SSE event name written to the "event:" field.
	Type string

	// Data is the JSON payload written to the "data:" field.
	Data string
}

// Bytes returns the wire encoding of the event:
//
//	event: <type>\ndata: <data>\n\n
func (e Event) Bytes() []byte {
	buf := make([]byte, 0, len(e.Type)+len(e.Data)+16)
	buf = append(buf, "event: "...)
	buf = append(buf, e.Type...)
	buf = append(buf, "\ndata: "...)
	buf = append(buf, e.Data...)
	buf = append(buf, "\n\n"...)
	return buf
}
