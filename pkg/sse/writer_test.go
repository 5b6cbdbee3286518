package sse

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Write", func() {
	It("encodes an event name and data payload as one frame", func() {
		var buf bytes.Buffer

		err := Write(&buf, Event{Type: "message_stop", Data: `{"type":"message_stop"}`})
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(Equal("event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n"))
	})

	It("writes consecutive frames separated by blank lines", func() {
		var buf bytes.Buffer

		Expect(Write(&buf, Event{Type: "a", Data: "{}"})).To(Succeed())
		Expect(Write(&buf, Event{Type: "b", Data: "{}"})).To(Succeed())
		Expect(buf.String()).To(Equal("event: a\ndata: {}\n\nevent: b\ndata: {}\n\n"))
	})

	It("round-trips through the LineReader", func() {
		var buf bytes.Buffer
		Expect(Write(&buf, Event{Type: "ping", Data: `{"type":"ping"}`})).To(Succeed())

		lines, _ := readAll(NewLineReader(&buf))
		Expect(lines).To(Equal([]string{"event: ping", `data: {"type":"ping"}`, ""}))
	})
})
