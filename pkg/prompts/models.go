package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// ExtractedEntity represents an entity extracted from content.
type ExtractedEntity struct {
	Name string `json:"name" description:"Name of the extracted entity"`
	// EntityTypeID references a provided entity type; nil when unclassified.
	EntityTypeID *int `json:"entity_type_id" description:"ID of the classified entity type. Must be one of the provided entity_type_id integers."`
}

// ExtractedEntities represents a list of extracted entities
type ExtractedEntities struct {
	ExtractedEntities []ExtractedEntity `json:"extracted_entities" description:"List of extracted entities"`
}

// MissedEntities represents entities that weren't extracted
type MissedEntities struct {
	MissedEntities []string `json:"missed_entities" description:"Names of entities that weren't extracted"`
}

// EntityClassificationTriple represents an entity with classification
type EntityClassificationTriple struct {
	UUID       string  `json:"uuid" description:"UUID of the entity"`
	Name       string  `json:"name" description:"Name of the entity"`
	EntityType *string `json:"entity_type" description:"Type of the entity. Must be one of the provided types or None"`
}

// EntityClassification represents entity classifications
type EntityClassification struct {
	EntityClassifications []EntityClassificationTriple `json:"entity_classifications" description:"List of entities classification triples."`
}

// EntitySummary represents an entity summary
type EntitySummary struct {
	Summary string `json:"summary"`
}

// ExtractedEdge is one relationship between two listed entities.
type ExtractedEdge struct {
	RelationType   string  `json:"relation_type" description:"FACT_PREDICATE_IN_SCREAMING_SNAKE_CASE"`
	SourceEntityID int     `json:"source_entity_id" description:"The id of the source entity of the fact."`
	TargetEntityID int     `json:"target_entity_id" description:"The id of the target entity of the fact."`
	Fact           string  `json:"fact"`
	ValidAt        *string `json:"valid_at" description:"When the relationship became true, ISO 8601"`
	InvalidAt      *string `json:"invalid_at" description:"When the relationship stopped being true, ISO 8601"`
}

// ExtractedEdges represents a list of extracted edges
type ExtractedEdges struct {
	Edges []ExtractedEdge `json:"edges"`
}

// MissingFacts represents facts that weren't extracted
type MissingFacts struct {
	MissingFacts []string `json:"missing_facts" description:"facts that weren't extracted"`
}

// EdgeDates represents temporal information for edges
type EdgeDates struct {
	ValidAt   *string `json:"valid_at"`
	InvalidAt *string `json:"invalid_at"`
}

// ResponseModel returns a zero value of the structure the LLM is asked to
// produce for op, or nil when the operation has no structured output.
func ResponseModel(family Family, op Operation) interface{} {
	switch family {
	case FamilyExtractNodes:
		switch op {
		case OpExtractMessage, OpExtractJSON, OpExtractText:
			return &ExtractedEntities{}
		case OpReflexion:
			return &MissedEntities{}
		case OpClassifyNodes:
			return &EntityClassification{}
		case OpExtractAttributes:
			return &EntitySummary{}
		}
	case FamilyExtractEdges:
		switch op {
		case OpEdge:
			return &ExtractedEdges{}
		case OpReflexion:
			return &MissingFacts{}
		case OpExtractAttributes:
			return &ExtractedEdge{}
		}
	case FamilyExtractEdgeDates:
		if op == OpExtractDates {
			return &EdgeDates{}
		}
	case FamilySummarizeNodes:
		if op == OpSummarize {
			return &EntitySummary{}
		}
	}
	return nil
}

// ResponseFormat builds a JSON schema response format for model.
func ResponseFormat(name string, model interface{}) (*openai.ChatCompletionResponseFormat, error) {
	schema, err := jsonschema.GenerateSchemaForType(model)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema for %s: %w", name, err)
	}
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   name,
			Schema: schema,
		},
	}, nil
}

// ErrEmptyResponse is returned by DecodeResponse for blank input.
var ErrEmptyResponse = errors.New("empty LLM response")

// DecodeResponse extracts the JSON payload of an LLM response, repairs it
// if needed and decodes it into T.
func DecodeResponse[T any](raw string) (T, error) {
	var out T
	payload := ExtractJSON(raw)
	if payload == "" {
		return out, ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(payload), &out); err == nil {
		return out, nil
	}
	repaired, err := jsonrepair.JSONRepair(payload)
	if err != nil {
		return out, fmt.Errorf("failed to repair LLM response: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return out, fmt.Errorf("failed to decode LLM response: %w", err)
	}
	return out, nil
}

// ExtractJSON strips markdown code fences and surrounding prose from an
// LLM response.
func ExtractJSON(response string) string {
	response = strings.TrimSpace(response)

	if start := strings.Index(response, "```json"); start != -1 {
		body := response[start+len("```json"):]
		if end := strings.Index(body, "```"); end != -1 {
			return strings.TrimSpace(body[:end])
		}
	}

	if strings.HasPrefix(response, "```") {
		lines := strings.Split(response, "\n")
		if len(lines) > 2 {
			return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}

	if start, end := strings.Index(response, "{"), strings.LastIndex(response, "}"); start != -1 && end > start {
		return response[start : end+1]
	}
	if start, end := strings.Index(response, "["), strings.LastIndex(response, "]"); start != -1 && end > start {
		return response[start : end+1]
	}
	return response
}
