package prompts

// ExtractEdgeDatesPrompt defines the interface for extract edge dates prompts.
type ExtractEdgeDatesPrompt interface {
	ExtractDates() PromptVersion
	Version(op Operation) PromptVersion
}

// ExtractEdgeDatesVersions holds the edge date prompts, wrapped once.
type ExtractEdgeDatesVersions struct {
	*staticPromptType
}

func (e *ExtractEdgeDatesVersions) ExtractDates() PromptVersion { return e.version(OpExtractDates) }

func (e *ExtractEdgeDatesVersions) Version(op Operation) PromptVersion { return e.version(op) }
