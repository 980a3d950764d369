package prompts

// ExtractNodesPrompt defines the interface for extract nodes prompts.
type ExtractNodesPrompt interface {
	ExtractMessage() PromptVersion
	ExtractJSON() PromptVersion
	ExtractText() PromptVersion
	Reflexion() PromptVersion
	ClassifyNodes() PromptVersion
	ExtractAttributes() PromptVersion
	Version(op Operation) PromptVersion
}

// ExtractNodesVersions resolves each node extraction prompt per call.
type ExtractNodesVersions struct {
	*dynamicPromptType
}

func (e *ExtractNodesVersions) ExtractMessage() PromptVersion    { return e.version(OpExtractMessage) }
func (e *ExtractNodesVersions) ExtractJSON() PromptVersion       { return e.version(OpExtractJSON) }
func (e *ExtractNodesVersions) ExtractText() PromptVersion       { return e.version(OpExtractText) }
func (e *ExtractNodesVersions) Reflexion() PromptVersion         { return e.version(OpReflexion) }
func (e *ExtractNodesVersions) ClassifyNodes() PromptVersion     { return e.version(OpClassifyNodes) }
func (e *ExtractNodesVersions) ExtractAttributes() PromptVersion { return e.version(OpExtractAttributes) }

// Version returns the prompt for op. Unknown operations fail when called.
func (e *ExtractNodesVersions) Version(op Operation) PromptVersion { return e.version(op) }
