package prompts

import (
	"embed"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

//go:embed templates
var templatesFS embed.FS

// GenericSetName is the built-in fallback set of both extraction families.
const GenericSetName = "generic"

type builtinIndex map[Family]map[string]*TemplateSet

var loadBuiltins = sync.OnceValues(func() (builtinIndex, error) {
	sets, err := LoadTemplateSets(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	index := builtinIndex{}
	for _, set := range sets {
		if index[set.Family()] == nil {
			index[set.Family()] = map[string]*TemplateSet{}
		}
		if prev, ok := index[set.Family()][set.Name()]; ok {
			return nil, fmt.Errorf("%w: %s set %q defined in %s and %s",
				ErrInvalidTemplateSet, set.Family(), set.Name(), prev.Source(), set.Source())
		}
		index[set.Family()][set.Name()] = set
	}
	return index, nil
})

// Builtin returns the embedded template set named name for family.
func Builtin(family Family, name string) (*TemplateSet, error) {
	index, err := loadBuiltins()
	if err != nil {
		return nil, err
	}
	set, ok := index[family][name]
	if !ok {
		return nil, fmt.Errorf("%w: no built-in %s set %q", ErrInvalidTemplateSet, family, name)
	}
	return set, nil
}

// BuiltinNames lists the embedded set names for family.
func BuiltinNames(family Family) []string {
	index, err := loadBuiltins()
	if err != nil {
		return nil
	}
	return slices.Sorted(maps.Keys(index[family]))
}

// defaultBindings maps the known source descriptions to built-in set names.
// A key is bound in each family where the named set exists.
var defaultBindings = map[string]string{
	"aws_resources":         "aws",
	"azure_resources":       "azure",
	"gcp_resources":         "gcp",
	"github_repo":           "github",
	"cicd_resources":        "cicd",
	"logs_resources":        "logs",
	"metrics_resources":     "metrics",
	"traces_resources":      "traces",
	"monitoring_resources":  "monitoring",
	"application_resources": "application",
}

// DefaultAliases returns the alias table installed by NewDefaultRegistry.
// Generic cloud sources are routed to the AWS sets unless overridden.
func DefaultAliases() map[string]string {
	return map[string]string{
		"cloud_resources":         "aws_resources",
		"github_resources":        "github_repo",
		"pipeline_resources":      "cicd_resources",
		"observability_resources": "monitoring_resources",
	}
}

// DefaultBindings returns the source description to built-in set bindings
// installed by NewDefaultRegistry.
func DefaultBindings() map[string]string {
	return maps.Clone(defaultBindings)
}

type registryOptions struct {
	aliases  map[string]string
	bindings map[string]string
}

// RegistryOption customizes NewDefaultRegistry.
type RegistryOption func(*registryOptions)

// WithAliases replaces the default alias table.
func WithAliases(aliases map[string]string) RegistryOption {
	return func(o *registryOptions) {
		o.aliases = maps.Clone(aliases)
	}
}

// WithBinding binds key to the built-in set name, in addition to the
// defaults. A binding shadows any alias for the same key.
func WithBinding(key, name string) RegistryOption {
	return func(o *registryOptions) {
		o.bindings[key] = name
	}
}

// NewDefaultRegistry builds a registry over the embedded template sets with
// the generic sets as fallback.
func NewDefaultRegistry(logger *slog.Logger, opts ...RegistryOption) (*Registry, error) {
	o := &registryOptions{
		aliases:  DefaultAliases(),
		bindings: DefaultBindings(),
	}
	for _, opt := range opts {
		opt(o)
	}

	nodes, err := Builtin(FamilyExtractNodes, GenericSetName)
	if err != nil {
		return nil, err
	}
	edges, err := Builtin(FamilyExtractEdges, GenericSetName)
	if err != nil {
		return nil, err
	}
	r, err := NewRegistry(nodes, edges, logger)
	if err != nil {
		return nil, err
	}

	for _, key := range slices.Sorted(maps.Keys(o.bindings)) {
		if err := r.BindBuiltin(key, o.bindings[key]); err != nil {
			return nil, err
		}
	}
	if err := r.SetAliases(o.aliases); err != nil {
		return nil, err
	}
	return r, nil
}

// BindBuiltin registers the built-in set name under key in every extraction
// family that has one. It fails when no family does.
func (r *Registry) BindBuiltin(key, name string) error {
	bound := false
	for _, family := range []Family{FamilyExtractNodes, FamilyExtractEdges} {
		set, err := Builtin(family, name)
		if err != nil {
			continue
		}
		if err := r.Register(key, set); err != nil {
			return err
		}
		bound = true
	}
	if !bound {
		return fmt.Errorf("%w: no built-in set %q", ErrInvalidTemplateSet, name)
	}
	return nil
}

// BindBuiltinFamily registers the built-in set name for a single family.
func (r *Registry) BindBuiltinFamily(family Family, key, name string) error {
	set, err := Builtin(family, name)
	if err != nil {
		return err
	}
	return r.Register(key, set)
}
