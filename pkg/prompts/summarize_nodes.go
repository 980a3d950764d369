package prompts

// SummarizeNodesPrompt defines the interface for summarize nodes prompts.
type SummarizeNodesPrompt interface {
	Summarize() PromptVersion
	Version(op Operation) PromptVersion
}

// SummarizeNodesVersions holds the node summary prompts, wrapped once.
type SummarizeNodesVersions struct {
	*staticPromptType
}

func (s *SummarizeNodesVersions) Summarize() PromptVersion { return s.version(OpSummarize) }

func (s *SummarizeNodesVersions) Version(op Operation) PromptVersion { return s.version(op) }
