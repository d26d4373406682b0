package htmlengine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-tardigrade/pkg/descriptor"
	"github.com/goliatone/go-tardigrade/pkg/engine"
)

type compiled struct {
	desc   descriptor.Descriptor
	points map[string]descriptor.PointRef
}

// Registry stores descriptors by template name. Descriptors are copied on
// registration so later caller mutations never reach rendered output.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*compiled
	strict    bool
}

// NewRegistry creates an empty registry. A strict registry refuses to replace
// an existing template.
func NewRegistry(strict bool) *Registry {
	return &Registry{
		templates: make(map[string]*compiled),
		strict:    strict,
	}
}

// Register validates and stores d under name.
func (r *Registry) Register(name string, d descriptor.Descriptor) error {
	if name == "" {
		return fmt.Errorf("htmlengine: template name is required")
	}
	d = d.Clone()
	if d.Name == "" {
		d.Name = name
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("htmlengine: register %q: %w", name, err)
	}

	entry := &compiled{
		desc:   d,
		points: make(map[string]descriptor.PointRef),
	}
	for _, ref := range d.Points() {
		entry.points[ref.Name] = ref
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[name]; exists && r.strict {
		return fmt.Errorf("htmlengine: register %q: %w", name, engine.ErrTemplateExists)
	}
	r.templates[name] = entry
	return nil
}

func (r *Registry) lookup(name string) (*compiled, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("htmlengine: template %q: %w", name, engine.ErrTemplateNotFound)
	}
	return entry, nil
}

// Get returns a copy of the descriptor registered under name.
func (r *Registry) Get(name string) (descriptor.Descriptor, error) {
	entry, err := r.lookup(name)
	if err != nil {
		return descriptor.Descriptor{}, err
	}
	return entry.desc.Clone(), nil
}

// List returns the registered template names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a template is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.templates[name]
	return ok
}
