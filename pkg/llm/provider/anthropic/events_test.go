package anthropic_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/llm/provider/anthropic"
)

var _ = Describe("Events", func() {
	It("encodes message_start with zeroed usage", func() {
		ev := anthropic.MessageStart("msg_abc", "local-model")
		Expect(ev.Type).To(Equal("message_start"))
		Expect(ev.Data).To(MatchJSON(`{
			"type": "message_start",
			"message": {
				"id": "msg_abc",
				"type": "message",
				"role": "assistant",
				"model": "local-model",
				"content": [],
				"stop_reason": null,
				"stop_sequence": null,
				"usage": {"input_tokens": 0, "output_tokens": 0}
			}
		}`))
	})

	It("encodes content_block_start with an empty text block", func() {
		ev := anthropic.ContentBlockStart(0)
		Expect(ev.Type).To(Equal("content_block_start"))
		Expect(ev.Data).To(MatchJSON(`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`))
	})

	It("encodes content_block_delta with the exact text", func() {
		ev := anthropic.ContentBlockDelta(0, "He said \"hi\"\n")
		Expect(ev.Type).To(Equal("content_block_delta"))
		Expect(ev.Data).To(MatchJSON(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"He said \"hi\"\n"}}`))
	})

	It("encodes an empty content_block_delta", func() {
		ev := anthropic.ContentBlockDelta(0, "")
		Expect(ev.Data).To(MatchJSON(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":""}}`))
	})

	It("encodes content_block_stop", func() {
		ev := anthropic.ContentBlockStop(0)
		Expect(ev.Type).To(Equal("content_block_stop"))
		Expect(ev.Data).To(MatchJSON(`{"type":"content_block_stop","index":0}`))
	})

	It("encodes message_delta with the stop reason and usage", func() {
		ev := anthropic.MessageDelta("stop", 2)
		Expect(ev.Type).To(Equal("message_delta"))
		Expect(ev.Data).To(MatchJSON(`{"type":"message_delta","delta":{"stop_reason":"stop","stop_sequence":null},"usage":{"output_tokens":2}}`))
	})

	It("defaults the message_delta stop reason to end_turn", func() {
		ev := anthropic.MessageDelta("", 0)
		Expect(ev.Data).To(MatchJSON(`{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":0}}`))
	})

	It("encodes message_stop", func() {
		ev := anthropic.MessageStop()
		Expect(ev.Type).To(Equal("message_stop"))
		Expect(ev.Data).To(MatchJSON(`{"type":"message_stop"}`))
	})

	It("encodes error as an api_error", func() {
		ev := anthropic.Error("upstream stream failed")
		Expect(ev.Type).To(Equal("error"))
		Expect(ev.Data).To(MatchJSON(`{"type":"error","error":{"type":"api_error","message":"upstream stream failed"}}`))
	})

	It("builds invalid_request_error bodies", func() {
		resp := anthropic.NewErrorResponse(anthropic.ErrorTypeInvalidRequest, "bad")
		Expect(resp.Type).To(Equal("error"))
		Expect(resp.Error.Type).To(Equal("invalid_request_error"))
		Expect(resp.Error.Message).To(Equal("bad"))
	})
})
