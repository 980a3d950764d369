package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/go-domainprompts/pkg/cache"
	"github.com/soundprediction/go-domainprompts/pkg/config"
	"github.com/soundprediction/go-domainprompts/pkg/prompts"
	"github.com/soundprediction/go-domainprompts/pkg/server/dto"
)

func newTestServer(t *testing.T, withCache bool) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry, err := prompts.NewDefaultRegistry(logger)
	require.NoError(t, err)
	library, err := prompts.NewLibrary(registry, logger)
	require.NoError(t, err)

	var rc *cache.RenderCache
	if withCache {
		store, err := cache.NewBadgerCache("")
		require.NoError(t, err)
		rc = cache.NewRenderCache(store, time.Minute, logger)
		t.Cleanup(func() { _ = rc.Close() })
	}

	srv := New(config.ServerConfig{Host: "localhost", Port: 0, Mode: "test"}, library, rc, logger)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func awsContext() map[string]interface{} {
	return map[string]interface{}{
		"source_description": "aws_resources",
		"episode_content":    "ec2 instance i-0a1b2c3d in vpc-12345678",
		"previous_episodes":  []string{},
		"entity_types":       []map[string]interface{}{{"entity_type_id": 0, "entity_type_name": "Entity"}},
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(t, false)

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)

	w = do(t, h, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ready"`)

	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestRenderEndpoint(t *testing.T) {
	h := newTestServer(t, false)

	w := do(t, h, http.MethodPost, "/v1/prompts/render", dto.RenderRequest{
		Family:    "nodes",
		Operation: "extract_message",
		Context:   awsContext(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.RenderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "aws", resp.TemplateSet)
	assert.Equal(t, "templates/aws/nodes.yaml", resp.Source)
	assert.Equal(t, "aws_resources", resp.Domain)
	assert.False(t, resp.Fallback)
	assert.Equal(t, w.Header().Get(RequestIDHeader), resp.RequestID)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "system", resp.Messages[0].Role)
	assert.Contains(t, resp.Messages[0].Content, "AWS infrastructure entities")
	assert.True(t, strings.HasSuffix(resp.Messages[0].Content, prompts.DoNotEscapeUnicode))
}

func TestRenderEndpointErrors(t *testing.T) {
	h := newTestServer(t, false)

	missing := awsContext()
	delete(missing, "previous_episodes")

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"malformed body", "not an object", http.StatusBadRequest, "invalid_request"},
		{"unknown family", dto.RenderRequest{Family: "dedupe", Operation: "edge", Context: awsContext()}, http.StatusBadRequest, "unknown_family"},
		{"unknown operation", dto.RenderRequest{Family: "edges", Operation: "dedupe", Context: awsContext()}, http.StatusBadRequest, "unknown_operation"},
		{"missing context key", dto.RenderRequest{Family: "nodes", Operation: "extract_message", Context: missing}, http.StatusUnprocessableEntity, "missing_context_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/v1/prompts/render", tt.body)
			assert.Equal(t, tt.status, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestRenderFocusAppendsInstruction(t *testing.T) {
	h := newTestServer(t, false)

	w := do(t, h, http.MethodPost, "/v1/prompts/render", dto.RenderRequest{
		Family:    "nodes",
		Operation: "extract_message",
		Context:   awsContext(),
		Focus:     true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Focus specifically on AWS services")
}

func TestRenderCacheHit(t *testing.T) {
	h := newTestServer(t, true)
	req := dto.RenderRequest{Family: "nodes", Operation: "extract_text", Context: awsContext()}

	var first, second dto.RenderResponse
	w := do(t, h, http.MethodPost, "/v1/prompts/render", req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.False(t, first.Cached)

	w = do(t, h, http.MethodPost, "/v1/prompts/render", req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.True(t, second.Cached)
	assert.Equal(t, first.Messages, second.Messages)
	assert.NotEqual(t, first.RequestID, second.RequestID)

	// Rebinding bumps the registry generation, so the next render misses.
	w = do(t, h, http.MethodPost, "/v1/domains/nodes/aws_resources", dto.BindRequest{TemplateSet: "cloud"})
	require.Equal(t, http.StatusOK, w.Code)

	var third dto.RenderResponse
	w = do(t, h, http.MethodPost, "/v1/prompts/render", req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &third))
	assert.False(t, third.Cached)
	assert.Equal(t, "cloud", third.TemplateSet)
}

func TestDomainsEndpoints(t *testing.T) {
	h := newTestServer(t, false)

	w := do(t, h, http.MethodGet, "/v1/domains", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var domains dto.DomainsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &domains))
	assert.Equal(t, "generic", domains.Defaults["extract_edges"])
	assert.Equal(t, "aws_resources", domains.Aliases["cloud_resources"])
	assert.Contains(t, domains.Builtins["extract_nodes"], "logs")

	w = do(t, h, http.MethodPost, "/v1/domains/edges/k8s_resources", dto.BindRequest{TemplateSet: "cloud"})
	require.Equal(t, http.StatusOK, w.Code)
	var bound dto.DomainBinding
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bound))
	assert.Equal(t, "cloud", bound.TemplateSet)
	assert.Equal(t, "templates/cloud/edges.yaml", bound.Source)

	w = do(t, h, http.MethodPost, "/v1/domains/edges/k8s_resources", dto.BindRequest{TemplateSet: "logs"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/v1/domains/summarize_nodes/k8s_resources", dto.BindRequest{TemplateSet: "cloud"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
