package domainprompts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/soundprediction/go-domainprompts/pkg/llm"
	"github.com/soundprediction/go-domainprompts/pkg/prompts"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the messages of one prompt operation",
	Long: `Render the messages of one prompt operation for an extraction context.

The context is read from a JSON or YAML file (or stdin with "-"). The template set
is chosen from the context's source_description, which --source overrides.

Examples:
  domainprompts render --family nodes --op extract_message --context ctx.yaml
  domainprompts render --family edges --op edge --source github_repo --context ctx.json --json`,
	RunE: runRender,
}

var (
	renderFamily      string
	renderOperation   string
	renderSource      string
	renderContextFile string
	renderJSON        bool
	renderFocus       bool
	renderOpenAIModel string
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderFamily, "family", "nodes", "prompt family (nodes, edges, extract_edge_dates, summarize_nodes)")
	renderCmd.Flags().StringVar(&renderOperation, "op", "", "operation to render, e.g. extract_message")
	renderCmd.Flags().StringVar(&renderSource, "source", "", "override source_description")
	renderCmd.Flags().StringVar(&renderContextFile, "context", "", "context file (.json, .yaml, .yml or - for JSON on stdin)")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "print messages as JSON")
	renderCmd.Flags().BoolVar(&renderFocus, "focus", false, "append the domain focus instruction to custom_prompt")
	renderCmd.Flags().StringVar(&renderOpenAIModel, "openai-model", "", "print a go-openai chat completion request for this model")
	_ = renderCmd.MarkFlagRequired("op")
	_ = renderCmd.MarkFlagRequired("context")
}

func runRender(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	family, err := prompts.ParseFamily(renderFamily)
	if err != nil {
		return err
	}
	context, err := readContext(cmd.InOrStdin(), renderContextFile)
	if err != nil {
		return err
	}
	if renderSource != "" {
		context[prompts.SourceDescriptionKey] = renderSource
	}
	if renderFocus {
		if focus := prompts.FocusInstruction(prompts.SourceDescription(context)); focus != "" {
			custom, _ := context["custom_prompt"].(string)
			context["custom_prompt"] = custom + focus
		}
	}

	op := prompts.Operation(renderOperation)
	rendered, err := a.library.Render(family, op, context)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case renderOpenAIModel != "":
		return printOpenAIRequest(out, renderOpenAIModel, family, op, rendered.Messages)
	case renderJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(rendered.Messages)
	}

	fmt.Fprintf(out, "# template set: %s (%s)\n", rendered.TemplateSet.Name(), rendered.TemplateSet.Source())
	for _, m := range rendered.Messages {
		fmt.Fprintf(out, "=== %s ===\n%s\n", m.Role, m.Content)
	}
	return nil
}

func printOpenAIRequest(out io.Writer, model string, family prompts.Family, op prompts.Operation, messages []llm.Message) error {
	req := llm.NewChatCompletionRequest(model, messages, nil)
	if response := prompts.ResponseModel(family, op); response != nil {
		rf, err := prompts.ResponseFormat(fmt.Sprintf("%s_%s", family, op), response)
		if err != nil {
			return err
		}
		req.ResponseFormat = rf
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(req)
}

// readContext decodes an extraction context from a JSON or YAML file.
func readContext(stdin io.Reader, path string) (map[string]interface{}, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read context: %w", err)
	}

	context := map[string]interface{}{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &context)
	default:
		err = json.Unmarshal(data, &context)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode context %s: %w", path, err)
	}
	if context == nil {
		return nil, fmt.Errorf("context %s must be a mapping, got null", path)
	}
	return context, nil
}
