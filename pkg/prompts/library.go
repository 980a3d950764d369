package prompts

import (
	"fmt"
	"log/slog"

	"github.com/soundprediction/go-domainprompts/pkg/llm"
)

// Library defines the interface for the complete prompt library.
type Library interface {
	ExtractNodes() ExtractNodesPrompt
	ExtractEdges() ExtractEdgesPrompt
	ExtractEdgeDates() ExtractEdgeDatesPrompt
	SummarizeNodes() SummarizeNodesPrompt
	// Render runs op of family and reports which template set served it.
	Render(family Family, op Operation, context map[string]interface{}) (*Rendered, error)
	Registry() *Registry
}

// Rendered is the result of a library render.
type Rendered struct {
	Family     Family
	Operation  Operation
	Resolution Resolution
	// TemplateSet produced Messages. It differs from Resolution.Set when the
	// resolved set lacks the operation and the default set served it.
	TemplateSet *TemplateSet
	Messages    []llm.Message
}

// LibraryImpl implements the Library interface.
type LibraryImpl struct {
	registry         *Registry
	extractNodes     *ExtractNodesVersions
	extractEdges     *ExtractEdgesVersions
	extractEdgeDates *ExtractEdgeDatesVersions
	summarizeNodes   *SummarizeNodesVersions
}

func (l *LibraryImpl) ExtractNodes() ExtractNodesPrompt         { return l.extractNodes }
func (l *LibraryImpl) ExtractEdges() ExtractEdgesPrompt         { return l.extractEdges }
func (l *LibraryImpl) ExtractEdgeDates() ExtractEdgeDatesPrompt { return l.extractEdgeDates }
func (l *LibraryImpl) SummarizeNodes() SummarizeNodesPrompt     { return l.summarizeNodes }
func (l *LibraryImpl) Registry() *Registry                      { return l.registry }

func (l *LibraryImpl) Render(family Family, op Operation, context map[string]interface{}) (*Rendered, error) {
	switch family {
	case FamilyExtractNodes:
		return l.extractNodes.render(op, context)
	case FamilyExtractEdges:
		return l.extractEdges.render(op, context)
	case FamilyExtractEdgeDates:
		return l.extractEdgeDates.render(op, context)
	case FamilySummarizeNodes:
		return l.summarizeNodes.render(op, context)
	}
	return nil, fmt.Errorf("unknown prompt family %q", family)
}

// NewLibrary creates a prompt library over registry. The extraction
// families resolve their template set on every call; the others are
// wrapped once here.
func NewLibrary(registry *Registry, logger *slog.Logger) (*LibraryImpl, error) {
	if registry == nil {
		return nil, fmt.Errorf("prompt library needs a registry")
	}
	if logger == nil {
		logger = slog.Default()
	}
	dates, err := newStaticPromptType(FamilyExtractEdgeDates)
	if err != nil {
		return nil, err
	}
	summaries, err := newStaticPromptType(FamilySummarizeNodes)
	if err != nil {
		return nil, err
	}
	return &LibraryImpl{
		registry:         registry,
		extractNodes:     &ExtractNodesVersions{newDynamicPromptType(FamilyExtractNodes, registry, logger)},
		extractEdges:     &ExtractEdgesVersions{newDynamicPromptType(FamilyExtractEdges, registry, logger)},
		extractEdgeDates: &ExtractEdgeDatesVersions{dates},
		summarizeNodes:   &SummarizeNodesVersions{summaries},
	}, nil
}

// dynamicPromptType selects the template set per call from source_description.
type dynamicPromptType struct {
	family   Family
	registry *Registry
	logger   *slog.Logger
}

func newDynamicPromptType(family Family, registry *Registry, logger *slog.Logger) *dynamicPromptType {
	return &dynamicPromptType{family: family, registry: registry, logger: logger}
}

func (d *dynamicPromptType) version(op Operation) PromptVersion {
	return &dynamicVersion{parent: d, op: op}
}

func (d *dynamicPromptType) render(op Operation, context map[string]interface{}) (*Rendered, error) {
	source := SourceDescription(context)
	res := d.registry.Resolve(d.family, source)

	set := res.Set
	fn, ok := set.Lookup(op)
	if !ok {
		def := d.registry.Default(d.family)
		fn, ok = def.Lookup(op)
		if !ok {
			return nil, &UnknownOperationError{Family: d.family, Operation: op, TemplateSet: set.Name()}
		}
		d.logger.Info("Template set lacks operation, using default",
			"family", d.family,
			"operation", op,
			"template_set", set.Name(),
			"default_set", def.Name())
		set = def
	}

	if res.Fallback {
		d.logger.Info("Using default prompt",
			"family", d.family,
			"operation", op,
			"source_description", source,
			"template_set", set.Name(),
			"source", set.Source())
	} else {
		d.logger.Info("Using domain-specific prompt",
			"family", d.family,
			"operation", op,
			"source_description", source,
			"domain", DomainLabel(source),
			"template_set", set.Name(),
			"source", set.Source())
	}

	messages, err := NewPromptVersion(fn).Call(context)
	if err != nil {
		return nil, err
	}
	return &Rendered{
		Family:      d.family,
		Operation:   op,
		Resolution:  res,
		TemplateSet: set,
		Messages:    messages,
	}, nil
}

type dynamicVersion struct {
	parent *dynamicPromptType
	op     Operation
}

func (v *dynamicVersion) Call(context map[string]interface{}) ([]llm.Message, error) {
	r, err := v.parent.render(v.op, context)
	if err != nil {
		return nil, err
	}
	return r.Messages, nil
}

// staticPromptType wraps a fixed template set once.
type staticPromptType struct {
	set      *TemplateSet
	versions map[Operation]PromptVersion
}

func newStaticPromptType(family Family) (*staticPromptType, error) {
	set, err := Builtin(family, string(family))
	if err != nil {
		return nil, err
	}
	if err := set.Complete(); err != nil {
		return nil, err
	}
	versions := make(map[Operation]PromptVersion, len(set.ops))
	for op, fn := range set.ops {
		versions[op] = NewPromptVersion(fn)
	}
	return &staticPromptType{set: set, versions: versions}, nil
}

func (s *staticPromptType) version(op Operation) PromptVersion {
	if v, ok := s.versions[op]; ok {
		return v
	}
	return unknownVersion{&UnknownOperationError{Family: s.set.Family(), Operation: op, TemplateSet: s.set.Name()}}
}

func (s *staticPromptType) render(op Operation, context map[string]interface{}) (*Rendered, error) {
	messages, err := s.version(op).Call(context)
	if err != nil {
		return nil, err
	}
	return &Rendered{
		Family:      s.set.Family(),
		Operation:   op,
		Resolution:  Resolution{Set: s.set, Requested: SourceDescription(context)},
		TemplateSet: s.set,
		Messages:    messages,
	}, nil
}

type unknownVersion struct{ err error }

func (u unknownVersion) Call(map[string]interface{}) ([]llm.Message, error) { return nil, u.err }
