package llm_test

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/soundprediction/go-domainprompts/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToOpenAIMessages(t *testing.T) {
	messages := []llm.Message{
		llm.NewSystemMessage("You extract entities.\nDo not escape unicode characters.\n"),
		llm.NewUserMessage("ec2 instance i-0a1b2c3d in vpc-12345678"),
	}

	converted := llm.ToOpenAIMessages(messages)
	require.Len(t, converted, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, converted[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, converted[1].Role)
	assert.Equal(t, messages[1].Content, converted[1].Content)
}

func TestNewChatCompletionRequest(t *testing.T) {
	messages := []llm.Message{llm.NewSystemMessage("sys"), llm.NewUserMessage("user")}

	req := llm.NewChatCompletionRequest("gpt-4o-mini", messages, nil)
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Len(t, req.Messages, 2)
	assert.Nil(t, req.ResponseFormat)

	format := &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	req = llm.NewChatCompletionRequest("gpt-4o-mini", messages, format)
	assert.Same(t, format, req.ResponseFormat)
}
