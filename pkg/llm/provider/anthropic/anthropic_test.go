package anthropic_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/llm/provider"
	"github.com/papercomputeco/bridge/pkg/llm/provider/anthropic"
)

var _ = Describe("Anthropic Provider", func() {
	var p provider.Frontend

	BeforeEach(func() {
		var err error
		p, err = anthropic.New()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Name", func() {
		It("returns 'anthropic'", func() {
			Expect(p.Name()).To(Equal("anthropic"))
		})
	})

	Describe("ParseRequest", func() {
		It("parses a streaming request", func() {
			payload := []byte(`{
				"model": "claude-3-5-sonnet-20241022",
				"max_tokens": 1024,
				"stream": true,
				"messages": [{"role": "user", "content": "Hello"}]
			}`)

			req, err := p.ParseRequest(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Model).To(Equal("claude-3-5-sonnet-20241022"))
			Expect(req.Streaming()).To(BeTrue())
			Expect(*req.MaxTokens).To(Equal(1024))
			Expect(string(req.Messages)).To(MatchJSON(`[{"role": "user", "content": "Hello"}]`))
			Expect(req.RawRequest).To(Equal(payload))
		})

		It("treats an absent stream flag as streaming", func() {
			req, err := p.ParseRequest([]byte(`{"messages": []}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Stream).To(BeNil())
			Expect(req.Streaming()).To(BeTrue())
		})

		It("reports an explicit non-streaming request", func() {
			req, err := p.ParseRequest([]byte(`{"messages": [], "stream": false}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Streaming()).To(BeFalse())
		})

		It("keeps content blocks untouched", func() {
			payload := []byte(`{"messages": [{"role": "user", "content": [{"type": "text", "text": "hi"}]}], "system": "be brief"}`)

			req, err := p.ParseRequest(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(req.Messages)).To(MatchJSON(`[{"role": "user", "content": [{"type": "text", "text": "hi"}]}]`))
		})

		Context("with invalid requests", func() {
			DescribeTable("returns a validation error",
				func(payload string, fragment string) {
					_, err := p.ParseRequest([]byte(payload))
					Expect(err).To(HaveOccurred())

					var verr *anthropic.ValidationError
					Expect(errors.As(err, &verr)).To(BeTrue())
					Expect(verr.Errors).NotTo(BeEmpty())
					Expect(err.Error()).To(ContainSubstring(fragment))
				},
				Entry("missing messages", `{"model": "m"}`, "messages"),
				Entry("messages not an array", `{"messages": "hi"}`, "messages"),
				Entry("stream not a boolean", `{"messages": [], "stream": "yes"}`, "stream"),
				Entry("model not a string", `{"messages": [], "model": 7}`, "model"),
				Entry("non-positive max_tokens", `{"messages": [], "max_tokens": 0}`, "max_tokens"),
				Entry("not an object", `[1, 2]`, "object"),
			)

			It("returns an error for invalid JSON", func() {
				_, err := p.ParseRequest([]byte(`{not json`))
				Expect(err).To(HaveOccurred())
			})
		})
	})
})
