package ollama_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/llm"
	"github.com/papercomputeco/bridge/pkg/llm/provider"
	"github.com/papercomputeco/bridge/pkg/llm/provider/ollama"
)

var _ = Describe("Ollama Backend", func() {
	var p provider.Backend

	BeforeEach(func() {
		p = ollama.New()
	})

	Describe("Name", func() {
		It("returns 'ollama'", func() {
			Expect(p.Name()).To(Equal("ollama"))
		})
	})

	Describe("BuildRequest", func() {
		It("sends the model, the messages verbatim and stream true", func() {
			body, err := p.BuildRequest("llama3.2", json.RawMessage(`[{"role":"user","content":"Hi"}]`))
			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(MatchJSON(`{"model":"llama3.2","messages":[{"role":"user","content":"Hi"}],"stream":true}`))
		})

		It("substitutes an empty list for missing messages", func() {
			body, err := p.BuildRequest("llama3.2", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(MatchJSON(`{"model":"llama3.2","messages":[],"stream":true}`))
		})
	})

	Describe("ParseLine", func() {
		It("yields a text delta for an intermediate chunk", func() {
			events := p.ParseLine(`{"model":"llama3.2","message":{"role":"assistant","content":"Hel"},"done":false}`)
			Expect(events).To(Equal([]llm.StreamEvent{{Kind: llm.TextDelta, Text: "Hel"}}))
		})

		It("keeps empty intermediate deltas", func() {
			events := p.ParseLine(`{"message":{"role":"assistant","content":""},"done":false}`)
			Expect(events).To(Equal([]llm.StreamEvent{{Kind: llm.TextDelta, Text: ""}}))
		})

		It("terminates on the done chunk with its reason", func() {
			events := p.ParseLine(`{"message":{"role":"assistant","content":""},"done":true,"done_reason":"length","eval_count":12}`)
			Expect(events).To(Equal([]llm.StreamEvent{{Kind: llm.StreamTerminated, Reason: "length"}}))
		})

		It("emits trailing text before terminating", func() {
			events := p.ParseLine(`{"message":{"role":"assistant","content":"!"},"done":true}`)
			Expect(events).To(Equal([]llm.StreamEvent{
				{Kind: llm.TextDelta, Text: "!"},
				{Kind: llm.StreamTerminated, Reason: "stop"},
			}))
		})

		It("ignores blank lines", func() {
			Expect(p.ParseLine("")).To(Equal([]llm.StreamEvent{{Kind: llm.Ignored}}))
		})

		DescribeTable("malformed lines",
			func(line string) {
				Expect(p.ParseLine(line)).To(Equal([]llm.StreamEvent{{Kind: llm.Malformed}}))
			},
			Entry("not JSON", `data: {"choices":[]}`),
			Entry("error object", `{"error":"model 'x' not found"}`),
			Entry("missing message", `{"done":false}`),
			Entry("non-string content", `{"message":{"content":42},"done":false}`),
		)
	})
})
