/*
Package prompts builds the LLM messages used to extract entities ("nodes") and
relationships ("edges") from infrastructure, CI/CD, GitHub and observability
sources.

Prompt text lives in YAML bundles under templates/, one per domain and entity
class. A Registry maps the source_description of an extraction context to the
template set for that domain and falls back to the generic set for keys it does
not know. An alias table routes umbrella keys such as "cloud_resources" to a
concrete domain.

Usage:

	registry, err := prompts.NewDefaultRegistry(logger)
	if err != nil {
		// handle error
	}
	library, err := prompts.NewLibrary(registry, logger)
	if err != nil {
		// handle error
	}

	params := prompts.NodeExtractionParams{
		SourceDescription: "aws_resources",
		EpisodeContent:    "ec2 instance i-0a1b2c3d in vpc-12345678",
		EntityTypes:       entityTypes,
	}
	messages, err := library.ExtractNodes().ExtractMessage().Call(params.Context())

Every system message returned through a PromptVersion ends with
DoNotEscapeUnicode. A template that reads a key the context does not carry
fails with a *MissingKeyError; custom_prompt is the only optional key.
*/
package prompts
