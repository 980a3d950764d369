package prompts

import (
	"fmt"
	"slices"

	"github.com/soundprediction/go-domainprompts/pkg/llm"
)

// TemplateSet is a named, immutable bundle of prompt functions for one family.
type TemplateSet struct {
	name        string
	family      Family
	description string
	source      string
	ops         map[Operation]PromptFunction
	required    map[Operation][]string
}

// NewTemplateSet builds a template set from Go prompt functions. The set may
// be partial; Missing reports what the family vocabulary still lacks.
func NewTemplateSet(name string, family Family, ops map[Operation]PromptFunction) (*TemplateSet, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidTemplateSet)
	}
	if !family.Valid() {
		return nil, fmt.Errorf("%w: %s: unknown family %q", ErrInvalidTemplateSet, name, family)
	}
	copied := make(map[Operation]PromptFunction, len(ops))
	for op, fn := range ops {
		if fn == nil {
			return nil, fmt.Errorf("%w: %s: nil function for %q", ErrInvalidTemplateSet, name, op)
		}
		copied[op] = fn
	}
	return &TemplateSet{
		name:     name,
		family:   family,
		source:   name,
		ops:      copied,
		required: map[Operation][]string{},
	}, nil
}

func (t *TemplateSet) Name() string        { return t.name }
func (t *TemplateSet) Family() Family      { return t.family }
func (t *TemplateSet) Description() string { return t.description }

// Source names where the set was defined, e.g. "templates/aws/nodes.yaml".
func (t *TemplateSet) Source() string { return t.source }

// Lookup returns the prompt function for op.
func (t *TemplateSet) Lookup(op Operation) (PromptFunction, bool) {
	fn, ok := t.ops[op]
	return fn, ok
}

// Operations returns the implemented operations, vocabulary order first.
func (t *TemplateSet) Operations() []Operation {
	ops := make([]Operation, 0, len(t.ops))
	for _, op := range vocabularies[t.family] {
		if _, ok := t.ops[op]; ok {
			ops = append(ops, op)
		}
	}
	var extra []Operation
	for op := range t.ops {
		if !slices.Contains(ops, op) {
			extra = append(extra, op)
		}
	}
	slices.Sort(extra)
	return append(ops, extra...)
}

// Missing returns the family vocabulary operations the set does not implement.
func (t *TemplateSet) Missing() []Operation {
	var missing []Operation
	for _, op := range vocabularies[t.family] {
		if _, ok := t.ops[op]; !ok {
			missing = append(missing, op)
		}
	}
	return missing
}

// Complete returns an ErrIncompleteTemplateSet error when Missing is non-empty.
func (t *TemplateSet) Complete() error {
	if missing := t.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s set %q lacks %v", ErrIncompleteTemplateSet, t.family, t.name, missing)
	}
	return nil
}

// RequiredKeys returns the context keys op reads, in order of first use.
// Sets built from Go functions report nil.
func (t *TemplateSet) RequiredKeys(op Operation) []string {
	return slices.Clone(t.required[op])
}

// Render runs op from set and applies the system message suffix.
func Render(set *TemplateSet, op Operation, context map[string]interface{}) ([]llm.Message, error) {
	fn, ok := set.Lookup(op)
	if !ok {
		return nil, &UnknownOperationError{Family: set.family, Operation: op, TemplateSet: set.name}
	}
	return NewPromptVersion(fn).Call(context)
}
