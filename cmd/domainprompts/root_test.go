package domainprompts

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/go-domainprompts/pkg/config"
	"github.com/soundprediction/go-domainprompts/pkg/prompts"
)

const k8sBundle = `name: k8s
family: extract_nodes
description: Kubernetes node extraction
operations:
  extract_text:
    system: You extract Kubernetes workloads.
    user: |
      <TEXT>
      {{text .episode_content}}
      </TEXT>
      {{text .custom_prompt}}
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildRegistryLoadsTemplatesDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "k8s/nodes.yaml", k8sBundle)

	registry, err := buildRegistry(config.PromptsConfig{
		DefaultAliases: true,
		TemplatesDir:   dir,
		Bindings:       map[string]string{"k8s_resources": "k8s", "tenant_cloud": "cloud"},
	}, discardLogger())
	require.NoError(t, err)

	set, ok := registry.Lookup(prompts.FamilyExtractNodes, "k8s")
	require.True(t, ok)
	assert.Equal(t, "k8s/nodes.yaml", set.Source())

	set, ok = registry.Lookup(prompts.FamilyExtractNodes, "k8s_resources")
	require.True(t, ok)
	assert.Equal(t, "k8s", set.Name())

	// Edges have no k8s bundle, so the key falls back to the default.
	_, ok = registry.Lookup(prompts.FamilyExtractEdges, "k8s_resources")
	assert.False(t, ok)

	set, ok = registry.Lookup(prompts.FamilyExtractEdges, "tenant_cloud")
	require.True(t, ok)
	assert.Equal(t, "cloud", set.Name())

	assert.Equal(t, "aws_resources", registry.Aliases()["cloud_resources"])
}

func TestBuildRegistryRejectsBadTemplatesDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\nfamily: extract_nodes\noperations:\n  extract_text:\n    system: hi\n")

	_, err := buildRegistry(config.PromptsConfig{TemplatesDir: dir}, discardLogger())
	assert.ErrorIs(t, err, prompts.ErrInvalidTemplateSet)
}

func TestBuildRegistryUnknownBinding(t *testing.T) {
	_, err := buildRegistry(config.PromptsConfig{
		Bindings: map[string]string{"k8s_resources": "k8s"},
	}, discardLogger())
	assert.Error(t, err)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRenderCommandJSON(t *testing.T) {
	ctxFile := writeFile(t, t.TempDir(), "ctx.yaml", `
source_description: github_repo
episode_content: "repo acme/api has workflow deploy.yml"
previous_episodes: []
entity_types:
  - entity_type_id: 0
    entity_type_name: Entity
`)

	out, err := execute(t, "render", "--family", "nodes", "--op", "extract_message", "--context", ctxFile, "--json", "--log-level", "error")
	require.NoError(t, err)

	var messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[1].Content, "repo acme/api has workflow deploy.yml")
}

func TestRenderCommandMissingKey(t *testing.T) {
	ctxFile := writeFile(t, t.TempDir(), "ctx.json", `{"source_description": "aws_resources", "episode_content": "x"}`)

	_, err := execute(t, "render", "--family", "nodes", "--op", "extract_message", "--context", ctxFile, "--json=false", "--log-level", "error")
	assert.ErrorIs(t, err, prompts.ErrMissingContextKey)
}

func TestRenderCommandRejectsNullContext(t *testing.T) {
	dir := t.TempDir()
	for _, file := range []string{
		writeFile(t, dir, "ctx.json", "null"),
		writeFile(t, dir, "ctx.yaml", "~\n"),
	} {
		t.Run(filepath.Base(file), func(t *testing.T) {
			_, err := execute(t, "render", "--family", "nodes", "--op", "extract_message", "--source", "aws_resources", "--context", file, "--json=false", "--log-level", "error")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "must be a mapping")
		})
	}
	renderSource = ""
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "renders across")
}

func TestSampleContextCoversRequiredKeys(t *testing.T) {
	registry, err := prompts.NewDefaultRegistry(discardLogger())
	require.NoError(t, err)

	checks := collectChecks(registry)
	require.NotEmpty(t, checks)
	for _, check := range checks {
		ctx := sampleContext(check.set, check.op, check.key)
		for _, key := range check.set.RequiredKeys(check.op) {
			assert.Contains(t, ctx, key, "%s/%s %s", check.family, check.key, check.op)
		}
	}
}
