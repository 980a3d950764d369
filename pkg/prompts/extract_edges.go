package prompts

// ExtractEdgesPrompt defines the interface for extract edges prompts.
type ExtractEdgesPrompt interface {
	Edge() PromptVersion
	Reflexion() PromptVersion
	ExtractAttributes() PromptVersion
	Version(op Operation) PromptVersion
}

// ExtractEdgesVersions resolves each edge extraction prompt per call.
type ExtractEdgesVersions struct {
	*dynamicPromptType
}

func (e *ExtractEdgesVersions) Edge() PromptVersion              { return e.version(OpEdge) }
func (e *ExtractEdgesVersions) Reflexion() PromptVersion         { return e.version(OpReflexion) }
func (e *ExtractEdgesVersions) ExtractAttributes() PromptVersion { return e.version(OpExtractAttributes) }

// Version returns the prompt for op. Unknown operations fail when called.
func (e *ExtractEdgesVersions) Version(op Operation) PromptVersion { return e.version(op) }
