package llm

import (
	"github.com/sashabaranov/go-openai"
)

// ToOpenAIMessages converts rendered messages into go-openai chat messages.
func ToOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	openaiMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		openaiMessages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return openaiMessages
}

// NewChatCompletionRequest builds a go-openai request for the given model and
// messages. Callers own sending it; format may be nil.
func NewChatCompletionRequest(model string, messages []Message, format *openai.ChatCompletionResponseFormat) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: ToOpenAIMessages(messages),
	}
	if format != nil {
		req.ResponseFormat = format
	}
	return req
}
