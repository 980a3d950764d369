package prompts

import (
	"encoding/json"
	"time"
)

// EntityType is one entry of the closed entity type list.
type EntityType struct {
	ID          int    `json:"entity_type_id"`
	Name        string `json:"entity_type_name"`
	Description string `json:"entity_type_description"`
}

// EdgeType is one entry of the relation type vocabulary.
type EdgeType struct {
	Name        string
	Description string
	SourceType  string
	TargetType  string
}

func (e EdgeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name        string    `json:"fact_type_name"`
		Signature   [2]string `json:"fact_type_signature"`
		Description string    `json:"fact_type_description"`
	}{e.Name, [2]string{e.SourceType, e.TargetType}, e.Description})
}

// EntityRef is an already extracted entity offered to edge extraction.
type EntityRef struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	EntityTypes []string `json:"entity_types"`
}

// NodeSnapshot is the entity under attribute refinement or summary.
type NodeSnapshot struct {
	Name        string                 `json:"name"`
	Summary     string                 `json:"summary"`
	EntityTypes []string               `json:"entity_types"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
}

// FormatReferenceTime renders t the way templates expect reference_time.
func FormatReferenceTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func episodes(prev []string) []string {
	if prev == nil {
		return []string{}
	}
	return prev
}

// NodeExtractionParams serves extract_message, extract_json and extract_text.
type NodeExtractionParams struct {
	SourceDescription string
	EpisodeContent    string
	PreviousEpisodes  []string
	EntityTypes       []EntityType
	CustomPrompt      string
}

func (p NodeExtractionParams) Context() map[string]interface{} {
	return map[string]interface{}{
		SourceDescriptionKey: p.SourceDescription,
		"episode_content":    p.EpisodeContent,
		"previous_episodes":  episodes(p.PreviousEpisodes),
		"entity_types":       p.EntityTypes,
		"custom_prompt":      p.CustomPrompt,
	}
}

// NodeReflexionParams serves the node reflexion pass.
type NodeReflexionParams struct {
	SourceDescription string
	EpisodeContent    string
	PreviousEpisodes  []string
	ExtractedEntities []string
}

func (p NodeReflexionParams) Context() map[string]interface{} {
	return map[string]interface{}{
		SourceDescriptionKey: p.SourceDescription,
		"episode_content":    p.EpisodeContent,
		"previous_episodes":  episodes(p.PreviousEpisodes),
		"extracted_entities": p.ExtractedEntities,
	}
}

// ClassifyNodesParams serves classify_nodes.
type ClassifyNodesParams struct {
	SourceDescription string
	EpisodeContent    string
	PreviousEpisodes  []string
	ExtractedEntities []ExtractedEntity
	EntityTypes       []EntityType
}

func (p ClassifyNodesParams) Context() map[string]interface{} {
	return map[string]interface{}{
		SourceDescriptionKey: p.SourceDescription,
		"episode_content":    p.EpisodeContent,
		"previous_episodes":  episodes(p.PreviousEpisodes),
		"extracted_entities": p.ExtractedEntities,
		"entity_types":       p.EntityTypes,
	}
}

// NodeAttributesParams serves node extract_attributes.
type NodeAttributesParams struct {
	SourceDescription string
	EpisodeContent    string
	PreviousEpisodes  []string
	Node              NodeSnapshot
}

func (p NodeAttributesParams) Context() map[string]interface{} {
	return map[string]interface{}{
		SourceDescriptionKey: p.SourceDescription,
		"episode_content":    p.EpisodeContent,
		"previous_episodes":  episodes(p.PreviousEpisodes),
		"node":               p.Node,
	}
}

// EdgeExtractionParams serves the edge operation.
type EdgeExtractionParams struct {
	SourceDescription string
	EpisodeContent    string
	PreviousEpisodes  []string
	Nodes             []EntityRef
	EdgeTypes         []EdgeType
	ReferenceTime     time.Time
	CustomPrompt      string
}

func (p EdgeExtractionParams) Context() map[string]interface{} {
	return map[string]interface{}{
		SourceDescriptionKey: p.SourceDescription,
		"episode_content":    p.EpisodeContent,
		"previous_episodes":  episodes(p.PreviousEpisodes),
		"nodes":              p.Nodes,
		"edge_types":         p.EdgeTypes,
		"reference_time":     FormatReferenceTime(p.ReferenceTime),
		"custom_prompt":      p.CustomPrompt,
	}
}

// EdgeReflexionParams serves the edge reflexion pass.
type EdgeReflexionParams struct {
	SourceDescription string
	EpisodeContent    string
	PreviousEpisodes  []string
	Nodes             []string
	ExtractedFacts    []string
}

func (p EdgeReflexionParams) Context() map[string]interface{} {
	return map[string]interface{}{
		SourceDescriptionKey: p.SourceDescription,
		"episode_content":    p.EpisodeContent,
		"previous_episodes":  episodes(p.PreviousEpisodes),
		"nodes":              p.Nodes,
		"extracted_facts":    p.ExtractedFacts,
	}
}

// EdgeAttributesParams serves edge extract_attributes. Fact is rendered as
// given.
type EdgeAttributesParams struct {
	SourceDescription string
	EpisodeContent    string
	Fact              interface{}
	ReferenceTime     time.Time
}

func (p EdgeAttributesParams) Context() map[string]interface{} {
	return map[string]interface{}{
		SourceDescriptionKey: p.SourceDescription,
		"episode_content":    p.EpisodeContent,
		"fact":               p.Fact,
		"reference_time":     FormatReferenceTime(p.ReferenceTime),
	}
}

// EdgeDatesParams serves extract_edge_dates.
type EdgeDatesParams struct {
	EpisodeContent   string
	PreviousEpisodes []string
	Edges            interface{}
	ReferenceTime    time.Time
}

func (p EdgeDatesParams) Context() map[string]interface{} {
	return map[string]interface{}{
		"episode_content":   p.EpisodeContent,
		"previous_episodes": episodes(p.PreviousEpisodes),
		"edges":             p.Edges,
		"reference_time":    FormatReferenceTime(p.ReferenceTime),
	}
}

// SummarizeNodeParams serves summarize_nodes.
type SummarizeNodeParams struct {
	EpisodeContent   string
	PreviousEpisodes []string
	Node             NodeSnapshot
}

func (p SummarizeNodeParams) Context() map[string]interface{} {
	return map[string]interface{}{
		"episode_content":   p.EpisodeContent,
		"previous_episodes": episodes(p.PreviousEpisodes),
		"node":              p.Node,
	}
}
