package prompts

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// SourceDescriptionKey is the context key that selects a domain.
const SourceDescriptionKey = "source_description"

// Resolution records how a domain key was mapped to a template set.
type Resolution struct {
	Set *TemplateSet
	// Requested is the source_description as given, possibly empty.
	Requested string
	// Domain is the registry key that served the request; empty on fallback.
	Domain   string
	Aliased  bool
	Fallback bool
}

// registryState is an immutable view of the registry. Writers publish a new
// one; readers load it without locking.
type registryState struct {
	domains    map[Family]map[string]*TemplateSet
	defaults   map[Family]*TemplateSet
	aliases    map[string]string
	generation uint64
}

func (s *registryState) clone() *registryState {
	next := &registryState{
		domains:    make(map[Family]map[string]*TemplateSet, len(s.domains)),
		defaults:   maps.Clone(s.defaults),
		aliases:    maps.Clone(s.aliases),
		generation: s.generation + 1,
	}
	for f, m := range s.domains {
		next.domains[f] = maps.Clone(m)
	}
	return next
}

// Registry maps domain keys to node and edge template sets.
type Registry struct {
	mu     sync.Mutex
	state  atomic.Pointer[registryState]
	logger *slog.Logger
}

// NewRegistry creates a registry whose fallback sets are nodes and edges.
func NewRegistry(nodes, edges *TemplateSet, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := checkFamily(nodes, FamilyExtractNodes); err != nil {
		return nil, fmt.Errorf("default node set: %w", err)
	}
	if err := checkFamily(edges, FamilyExtractEdges); err != nil {
		return nil, fmt.Errorf("default edge set: %w", err)
	}
	r := &Registry{logger: logger}
	r.state.Store(&registryState{
		domains: map[Family]map[string]*TemplateSet{
			FamilyExtractNodes: {},
			FamilyExtractEdges: {},
		},
		defaults: map[Family]*TemplateSet{
			FamilyExtractNodes: nodes,
			FamilyExtractEdges: edges,
		},
		aliases: map[string]string{},
	})
	return r, nil
}

func checkFamily(set *TemplateSet, family Family) error {
	if set == nil {
		return fmt.Errorf("%w: nil template set", ErrInvalidTemplateSet)
	}
	if set.Family() != family {
		return fmt.Errorf("%w: set %q is %s, want %s", ErrInvalidTemplateSet, set.Name(), set.Family(), family)
	}
	return nil
}

// SourceDescription reads the domain key from an extraction context.
func SourceDescription(context map[string]interface{}) string {
	switch v := context[SourceDescriptionKey].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// NodeTemplateSet returns the node template set for the context's source_description.
func (r *Registry) NodeTemplateSet(context map[string]interface{}) *TemplateSet {
	return r.Resolve(FamilyExtractNodes, SourceDescription(context)).Set
}

// EdgeTemplateSet returns the edge template set for the context's source_description.
func (r *Registry) EdgeTemplateSet(context map[string]interface{}) *TemplateSet {
	return r.Resolve(FamilyExtractEdges, SourceDescription(context)).Set
}

// Resolve maps key to a template set of family. An exact entry wins over an
// alias; anything else, including a non-dynamic family, resolves to the
// default set. Resolve never fails.
func (r *Registry) Resolve(family Family, key string) Resolution {
	s := r.state.Load()
	res := Resolution{Requested: key, Set: s.defaults[family]}

	if key == "" {
		r.logger.Debug("No source description, using default template set",
			"family", family,
			"template_set", setName(res.Set))
		res.Fallback = true
		return res
	}
	if set, ok := s.domains[family][key]; ok {
		res.Set = set
		res.Domain = key
		return res
	}
	if target, ok := s.aliases[key]; ok {
		if set, ok := s.domains[family][target]; ok {
			r.logger.Info("Routing aliased domain to template set",
				"family", family,
				"source_description", key,
				"alias_of", target,
				"template_set", set.Name())
			res.Set = set
			res.Domain = target
			res.Aliased = true
			return res
		}
	}

	r.logger.Warn("Unknown source description, falling back to default template set",
		"family", family,
		"source_description", key,
		"template_set", setName(res.Set))
	res.Fallback = true
	return res
}

func setName(set *TemplateSet) string {
	if set == nil {
		return ""
	}
	return set.Name()
}

// Register inserts or replaces the template set for key in the set's family.
// The last write wins.
func (r *Registry) Register(key string, set *TemplateSet) error {
	if key == "" {
		return fmt.Errorf("%w: empty domain key", ErrInvalidTemplateSet)
	}
	if set == nil {
		return fmt.Errorf("%w: nil template set for %q", ErrInvalidTemplateSet, key)
	}
	if !set.Family().Dynamic() {
		return fmt.Errorf("%w: %s sets are not dispatched by domain", ErrInvalidTemplateSet, set.Family())
	}

	r.mu.Lock()
	next := r.state.Load().clone()
	previous := next.domains[set.Family()][key]
	next.domains[set.Family()][key] = set
	r.state.Store(next)
	r.mu.Unlock()

	r.logger.Info("Registered domain template set",
		"family", set.Family(),
		"domain", key,
		"template_set", set.Name(),
		"source", set.Source(),
		"replaced", previous != nil)
	return nil
}

// RegisterNodeTemplateSet registers set as the node template set for key.
func (r *Registry) RegisterNodeTemplateSet(key string, set *TemplateSet) error {
	if err := checkFamily(set, FamilyExtractNodes); err != nil {
		return err
	}
	return r.Register(key, set)
}

// RegisterEdgeTemplateSet registers set as the edge template set for key.
func (r *Registry) RegisterEdgeTemplateSet(key string, set *TemplateSet) error {
	if err := checkFamily(set, FamilyExtractEdges); err != nil {
		return err
	}
	return r.Register(key, set)
}

// SetAliases replaces the alias table. Each alias points at a registry key
// and is followed at most once.
func (r *Registry) SetAliases(aliases map[string]string) error {
	for from, to := range aliases {
		if from == "" || to == "" {
			return fmt.Errorf("invalid alias %q -> %q", from, to)
		}
		if from == to {
			return fmt.Errorf("alias %q points at itself", from)
		}
	}

	r.mu.Lock()
	next := r.state.Load().clone()
	next.aliases = maps.Clone(aliases)
	if next.aliases == nil {
		next.aliases = map[string]string{}
	}
	r.state.Store(next)
	r.mu.Unlock()

	r.logger.Info("Updated domain aliases", "count", len(aliases))
	return nil
}

// Aliases returns a copy of the alias table.
func (r *Registry) Aliases() map[string]string {
	return maps.Clone(r.state.Load().aliases)
}

// Domains returns the registered keys for family, sorted.
func (r *Registry) Domains(family Family) []string {
	return slices.Sorted(maps.Keys(r.state.Load().domains[family]))
}

// Lookup returns the set registered under key without alias or fallback handling.
func (r *Registry) Lookup(family Family, key string) (*TemplateSet, bool) {
	set, ok := r.state.Load().domains[family][key]
	return set, ok
}

// Default returns the fallback set for family.
func (r *Registry) Default(family Family) *TemplateSet {
	return r.state.Load().defaults[family]
}

// Generation increases on every registration or alias change.
func (r *Registry) Generation() uint64 {
	return r.state.Load().generation
}

// Validate reports every registered or default set that does not implement
// its family's full vocabulary.
func (r *Registry) Validate() error {
	s := r.state.Load()
	var errs []error
	for _, family := range []Family{FamilyExtractNodes, FamilyExtractEdges} {
		if err := s.defaults[family].Complete(); err != nil {
			errs = append(errs, fmt.Errorf("default: %w", err))
		}
		for _, key := range slices.Sorted(maps.Keys(s.domains[family])) {
			if err := s.domains[family][key].Complete(); err != nil {
				errs = append(errs, fmt.Errorf("domain %q: %w", key, err))
			}
		}
	}
	return errors.Join(errs...)
}
