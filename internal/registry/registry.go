package registry

import (
	"fmt"
	"strings"

	"seedcat/internal/source"
)

// Spec describes one category: its name, the ordered collections it draws
// from, and the keyword phrases used for inclusion filtering.
type Spec struct {
	Name          string
	MetaSources   []source.Descriptor
	ReviewSources []source.Descriptor
	Keywords      []string
}

// Slug returns the category name in identifier form (lowercase, underscores).
func (s Spec) Slug() string {
	return strings.ReplaceAll(strings.ToLower(s.Name), " ", "_")
}

// Registry is an immutable, ordered set of category specs indexed by name.
type Registry struct {
	order []string
	specs map[string]Spec
}

// New builds a registry from the given specs, preserving their order.
func New(specs ...Spec) (*Registry, error) {
	reg := &Registry{specs: make(map[string]Spec, len(specs))}
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, fmt.Errorf("registry: spec with empty name")
		}
		if _, exists := reg.specs[name]; exists {
			return nil, fmt.Errorf("registry: duplicate category %q", name)
		}
		if len(spec.MetaSources) == 0 {
			return nil, fmt.Errorf("registry: category %q has no metadata sources", name)
		}
		if len(spec.ReviewSources) == 0 {
			return nil, fmt.Errorf("registry: category %q has no review sources", name)
		}
		if len(spec.Keywords) == 0 {
			return nil, fmt.Errorf("registry: category %q has no keywords", name)
		}
		spec.Name = name
		reg.specs[name] = spec
		reg.order = append(reg.order, name)
	}
	return reg, nil
}

// Names returns the category names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the spec for a category name.
func (r *Registry) Get(name string) (Spec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Len returns the number of categories.
func (r *Registry) Len() int {
	return len(r.order)
}

// Select resolves the requested category names, preserving request order. An
// empty request selects every category in registry order. Unknown names are a
// configuration error, reported before any stream opens.
func (r *Registry) Select(names []string) ([]Spec, error) {
	if len(names) == 0 {
		names = r.order
	}

	specs := make([]Spec, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		spec, ok := r.specs[name]
		if !ok {
			return nil, fmt.Errorf("unknown category %q (known: %s)", name, strings.Join(r.order, ", "))
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		specs = append(specs, spec)
	}
	return specs, nil
}
