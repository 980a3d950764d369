package prompts

import (
	"fmt"
	"slices"
)

// Family names a group of prompt operations. The two extraction families are
// dispatched per call by source_description; the others are static.
type Family string

const (
	FamilyExtractNodes     Family = "extract_nodes"
	FamilyExtractEdges     Family = "extract_edges"
	FamilyExtractEdgeDates Family = "extract_edge_dates"
	FamilySummarizeNodes   Family = "summarize_nodes"
)

// Operation names a single prompt within a family.
type Operation string

const (
	OpExtractMessage    Operation = "extract_message"
	OpExtractJSON       Operation = "extract_json"
	OpExtractText       Operation = "extract_text"
	OpReflexion         Operation = "reflexion"
	OpClassifyNodes     Operation = "classify_nodes"
	OpExtractAttributes Operation = "extract_attributes"
	OpEdge              Operation = "edge"
	OpExtractDates      Operation = "extract_dates"
	OpSummarize         Operation = "summarize"
)

var vocabularies = map[Family][]Operation{
	FamilyExtractNodes: {
		OpExtractMessage,
		OpExtractJSON,
		OpExtractText,
		OpReflexion,
		OpClassifyNodes,
		OpExtractAttributes,
	},
	FamilyExtractEdges: {
		OpEdge,
		OpReflexion,
		OpExtractAttributes,
	},
	FamilyExtractEdgeDates: {OpExtractDates},
	FamilySummarizeNodes:   {OpSummarize},
}

// Vocabulary returns the operations every template set of the family must
// implement, in canonical order.
func Vocabulary(f Family) []Operation {
	return slices.Clone(vocabularies[f])
}

// Dynamic reports whether the family is resolved per call from the
// source_description in the context.
func (f Family) Dynamic() bool {
	return f == FamilyExtractNodes || f == FamilyExtractEdges
}

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	_, ok := vocabularies[f]
	return ok
}

// Families returns every known family.
func Families() []Family {
	return []Family{FamilyExtractNodes, FamilyExtractEdges, FamilyExtractEdgeDates, FamilySummarizeNodes}
}

// ParseFamily accepts a family name or the short entity class names "nodes"
// and "edges".
func ParseFamily(s string) (Family, error) {
	switch s {
	case "nodes", "node":
		return FamilyExtractNodes, nil
	case "edges", "edge":
		return FamilyExtractEdges, nil
	}
	if f := Family(s); f.Valid() {
		return f, nil
	}
	return "", fmt.Errorf("unknown prompt family %q", s)
}
