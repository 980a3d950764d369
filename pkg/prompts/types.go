package prompts

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/soundprediction/go-domainprompts/pkg/llm"
)

// DoNotEscapeUnicode is appended to every system message produced through a
// PromptVersion.
const DoNotEscapeUnicode = "\nDo not escape unicode characters.\n"

// PromptFunction is a function that generates prompt messages from context.
type PromptFunction func(context map[string]interface{}) ([]llm.Message, error)

// PromptVersion represents a versioned prompt function.
type PromptVersion interface {
	Call(context map[string]interface{}) ([]llm.Message, error)
}

// promptVersionImpl implements PromptVersion.
type promptVersionImpl struct {
	fn PromptFunction
}

// Call executes the prompt function with the given context.
func (p *promptVersionImpl) Call(context map[string]interface{}) ([]llm.Message, error) {
	messages, err := p.fn(context)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, ErrEmptyRender
	}
	return withUnicodeSuffix(messages), nil
}

// NewPromptVersion creates a new PromptVersion from a function.
func NewPromptVersion(fn PromptFunction) PromptVersion {
	return &promptVersionImpl{fn: fn}
}

// withUnicodeSuffix returns a copy of messages with DoNotEscapeUnicode added
// to system messages. Other roles are copied unchanged.
func withUnicodeSuffix(messages []llm.Message) []llm.Message {
	out := make([]llm.Message, len(messages))
	for i, msg := range messages {
		out[i] = msg
		if msg.Role == llm.RoleSystem {
			out[i].Content += DoNotEscapeUnicode
		}
	}
	return out
}

// ToPromptJSON serializes data to JSON for use in prompts. Non-ASCII and HTML
// characters are kept as-is; indent > 0 pretty-prints with that many spaces.
func ToPromptJSON(data interface{}, indent int) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
