package binding

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/goliatone/go-tardigrade/pkg/descriptor"
	"github.com/goliatone/go-tardigrade/pkg/engine"
)

// registration guards one AddTemplate call for a template name on an engine.
type registration struct {
	eng    engine.Engine
	desc   descriptor.Descriptor
	markup string
	once   sync.Once
	err    error
}

func (r *registration) ensure() error {
	r.once.Do(func() {
		r.err = r.eng.AddTemplate(r.desc.Name, r.desc)
	})
	return r.err
}

var registrations = struct {
	mu       sync.Mutex
	byEngine map[engine.Engine]map[string]*registration
}{byEngine: make(map[engine.Engine]map[string]*registration)}

// registrationFor returns the guard shared by every template bound to eng
// under d.Name. Engines whose dynamic type is not comparable cannot be map
// keys and get a guard of their own.
func registrationFor(eng engine.Engine, d descriptor.Descriptor, markup string) *registration {
	fresh := &registration{eng: eng, desc: d, markup: markup}
	if !reflect.TypeOf(eng).Comparable() {
		return fresh
	}

	registrations.mu.Lock()
	defer registrations.mu.Unlock()

	byName, ok := registrations.byEngine[eng]
	if !ok {
		byName = make(map[string]*registration)
		registrations.byEngine[eng] = byName
	}
	if reg, ok := byName[d.Name]; ok {
		return reg
	}
	byName[d.Name] = fresh
	return fresh
}

// ReleaseEngine forgets the registration guards held for eng. Templates bound
// to eng afterwards register again.
func ReleaseEngine(eng engine.Engine) {
	registrations.mu.Lock()
	defer registrations.mu.Unlock()

	delete(registrations.byEngine, eng)
}

// conflict reports a template whose descriptor differs from the one already
// registered under the same name on the same engine.
func (r *registration) conflict(name, markup string) error {
	if markup == r.markup {
		return nil
	}
	return fmt.Errorf("binding: template %q is bound to a different descriptor on this engine: %w", name, engine.ErrTemplateExists)
}
