package dto

// RenderRequest asks for the messages of one prompt operation.
type RenderRequest struct {
	// Family is "nodes", "edges" or a full family name such as extract_edge_dates.
	Family    string                 `json:"family" binding:"required"`
	Operation string                 `json:"operation" binding:"required"`
	Context   map[string]interface{} `json:"context" binding:"required"`
	// Focus appends the domain focus instruction to custom_prompt.
	Focus bool `json:"focus,omitempty"`
}

// RenderResponse carries rendered messages and the routing decision.
type RenderResponse struct {
	RequestID   string    `json:"request_id"`
	Family      string    `json:"family"`
	Operation   string    `json:"operation"`
	TemplateSet string    `json:"template_set"`
	Source      string    `json:"source"`
	Domain      string    `json:"domain,omitempty"`
	Fallback    bool      `json:"fallback"`
	Cached      bool      `json:"cached"`
	Messages    []Message `json:"messages"`
}

// DomainBinding is one registry entry.
type DomainBinding struct {
	Key         string `json:"key"`
	TemplateSet string `json:"template_set"`
	Source      string `json:"source"`
	Label       string `json:"label,omitempty"`
}

// DomainsResponse lists the registry state.
type DomainsResponse struct {
	Generation uint64                     `json:"generation"`
	Defaults   map[string]string          `json:"defaults"`
	Bindings   map[string][]DomainBinding `json:"bindings"`
	Aliases    map[string]string          `json:"aliases"`
	Builtins   map[string][]string        `json:"builtins"`
}

// BindRequest binds a domain key to a built-in template set.
type BindRequest struct {
	TemplateSet string `json:"template_set" binding:"required"`
}
