package handlers

import (
	"errors"
	"log/slog"
	"maps"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/go-domainprompts/pkg/cache"
	"github.com/soundprediction/go-domainprompts/pkg/llm"
	"github.com/soundprediction/go-domainprompts/pkg/prompts"
	"github.com/soundprediction/go-domainprompts/pkg/server/dto"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// PromptHandler renders prompts and manages domain bindings.
type PromptHandler struct {
	library prompts.Library
	cache   *cache.RenderCache
	logger  *slog.Logger
}

// NewPromptHandler creates a prompt handler. renderCache may be nil.
func NewPromptHandler(library prompts.Library, renderCache *cache.RenderCache, logger *slog.Logger) *PromptHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PromptHandler{library: library, cache: renderCache, logger: logger}
}

func abort(c *gin.Context, status int, code string, err error) {
	c.JSON(status, dto.ErrorResponse{
		Error:     code,
		Message:   err.Error(),
		Code:      status,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Render handles POST /v1/prompts/render
func (h *PromptHandler) Render(c *gin.Context) {
	var req dto.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	family, err := prompts.ParseFamily(req.Family)
	if err != nil {
		abort(c, http.StatusBadRequest, "unknown_family", err)
		return
	}
	op := prompts.Operation(req.Operation)

	context := req.Context
	if req.Focus {
		context = withFocus(context)
	}

	requestID := c.GetString(RequestIDKey)
	registry := h.library.Registry()
	var key string
	if h.cache != nil {
		key, err = cache.RenderKey(registry.Generation(), string(family), string(op), context)
		if err != nil {
			h.logger.Warn("Skipping render cache", "request_id", requestID, "error", err)
		} else if entry, ok := h.cache.Get(key); ok {
			c.JSON(http.StatusOK, renderResponse(requestID, family, op, entry, true))
			return
		}
	}

	rendered, err := h.library.Render(family, op, context)
	if err != nil {
		switch {
		case errors.Is(err, prompts.ErrMissingContextKey):
			abort(c, http.StatusUnprocessableEntity, "missing_context_key", err)
		case errors.Is(err, prompts.ErrUnknownOperation):
			abort(c, http.StatusBadRequest, "unknown_operation", err)
		default:
			h.logger.Error("Prompt render failed", "request_id", requestID, "error", err)
			abort(c, http.StatusInternalServerError, "render_failed", err)
		}
		return
	}

	entry := &cache.RenderEntry{
		TemplateSet: rendered.TemplateSet.Name(),
		Source:      rendered.TemplateSet.Source(),
		Domain:      rendered.Resolution.Domain,
		Fallback:    rendered.Resolution.Fallback,
		Messages:    rendered.Messages,
	}
	if h.cache != nil && key != "" {
		if err := h.cache.Put(key, entry); err != nil {
			h.logger.Warn("Render cache write failed", "request_id", requestID, "error", err)
		}
	}
	c.JSON(http.StatusOK, renderResponse(requestID, family, op, entry, false))
}

// withFocus returns a copy of context whose custom_prompt ends with the
// focus instruction for its source_description.
func withFocus(context map[string]interface{}) map[string]interface{} {
	focus := prompts.FocusInstruction(prompts.SourceDescription(context))
	if focus == "" {
		return context
	}
	out := maps.Clone(context)
	custom, _ := out["custom_prompt"].(string)
	out["custom_prompt"] = custom + focus
	return out
}

func renderResponse(requestID string, family prompts.Family, op prompts.Operation, entry *cache.RenderEntry, cached bool) dto.RenderResponse {
	return dto.RenderResponse{
		RequestID:   requestID,
		Family:      string(family),
		Operation:   string(op),
		TemplateSet: entry.TemplateSet,
		Source:      entry.Source,
		Domain:      entry.Domain,
		Fallback:    entry.Fallback,
		Cached:      cached,
		Messages:    toDTOMessages(entry.Messages),
	}
}

func toDTOMessages(messages []llm.Message) []dto.Message {
	out := make([]dto.Message, len(messages))
	for i, m := range messages {
		out[i] = dto.Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// ListDomains handles GET /v1/domains
func (h *PromptHandler) ListDomains(c *gin.Context) {
	registry := h.library.Registry()
	resp := dto.DomainsResponse{
		Generation: registry.Generation(),
		Defaults:   map[string]string{},
		Bindings:   map[string][]dto.DomainBinding{},
		Aliases:    registry.Aliases(),
		Builtins:   map[string][]string{},
	}
	for _, family := range []prompts.Family{prompts.FamilyExtractNodes, prompts.FamilyExtractEdges} {
		resp.Defaults[string(family)] = registry.Default(family).Name()
		resp.Builtins[string(family)] = prompts.BuiltinNames(family)
		bindings := []dto.DomainBinding{}
		for _, key := range registry.Domains(family) {
			set, ok := registry.Lookup(family, key)
			if !ok {
				continue
			}
			bindings = append(bindings, dto.DomainBinding{
				Key:         key,
				TemplateSet: set.Name(),
				Source:      set.Source(),
				Label:       prompts.DomainLabel(key),
			})
		}
		resp.Bindings[string(family)] = bindings
	}
	c.JSON(http.StatusOK, resp)
}

// BindDomain handles POST /v1/domains/:family/:key
func (h *PromptHandler) BindDomain(c *gin.Context) {
	family, err := prompts.ParseFamily(c.Param("family"))
	if err != nil || !family.Dynamic() {
		abort(c, http.StatusBadRequest, "unknown_family", errors.New("family must be nodes or edges"))
		return
	}
	var req dto.BindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	key := c.Param("key")
	registry := h.library.Registry()
	if err := registry.BindBuiltinFamily(family, key, req.TemplateSet); err != nil {
		abort(c, http.StatusNotFound, "unknown_template_set", err)
		return
	}
	set, _ := registry.Lookup(family, key)
	c.JSON(http.StatusOK, dto.DomainBinding{
		Key:         key,
		TemplateSet: set.Name(),
		Source:      set.Source(),
		Label:       prompts.DomainLabel(key),
	})
}
