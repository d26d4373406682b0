package binding

import (
	"golang.org/x/net/html"

	"github.com/goliatone/go-tardigrade/pkg/descriptor"
	"github.com/goliatone/go-tardigrade/pkg/engine"
)

// Dto is implemented by the typed data transfer objects of generated
// accessors.
type Dto interface {
	Data() engine.Data
}

// Template binds one descriptor to an engine. D is the accessor's DTO type and
// U the caller's user data type.
type Template[D Dto, U any] struct {
	desc   descriptor.Descriptor
	markup string
	reg    *registration
}

// NewTemplate binds d to eng. Nothing reaches the engine until the first
// render or EnsureRegistered call. Templates bound to the same engine under
// the same name share one registration.
func NewTemplate[D Dto, U any](eng engine.Engine, d descriptor.Descriptor) *Template[D, U] {
	if eng == nil {
		panic("binding: engine is required")
	}
	markup, _ := d.Markup()
	return &Template[D, U]{desc: d, markup: markup, reg: registrationFor(eng, d, markup)}
}

// Name returns the template name.
func (t *Template[D, U]) Name() string {
	return t.desc.Name
}

// Engine returns the engine the template is bound to.
func (t *Template[D, U]) Engine() engine.Engine {
	return t.reg.eng
}

// Store returns the user data store. It is shared by every template, so an
// element holds one value whichever accessor set it.
func (t *Template[D, U]) Store() *Store {
	return elementData
}

// EnsureRegistered registers the descriptor with the engine exactly once per
// engine and name. The outcome of that single call is returned on every
// invocation, to every template sharing the registration.
func (t *Template[D, U]) EnsureRegistered() error {
	if err := t.reg.ensure(); err != nil {
		return err
	}
	return t.reg.conflict(t.desc.Name, t.markup)
}

// HTML renders dto to markup.
func (t *Template[D, U]) HTML(dto D) (string, error) {
	if err := t.EnsureRegistered(); err != nil {
		return "", err
	}
	return t.reg.eng.BuildHTML(t.Name(), dataOf(dto))
}

// Element renders dto and parses the markup into a detached element.
func (t *Template[D, U]) Element(dto D) (*html.Node, error) {
	markup, err := t.HTML(dto)
	if err != nil {
		return nil, err
	}
	return t.reg.eng.CreateElement(markup)
}

// Create renders dto and wraps the resulting element.
func (t *Template[D, U]) Create(dto D) (*Instance[U], error) {
	el, err := t.Element(dto)
	if err != nil {
		return nil, err
	}
	return t.Of(el), nil
}

// Of wraps an element obtained elsewhere, e.g. while walking a document.
func (t *Template[D, U]) Of(el *html.Node) *Instance[U] {
	return &Instance[U]{root: el, name: t.desc.Name, ensure: t.EnsureRegistered, eng: t.reg.eng}
}

func dataOf(dto Dto) engine.Data {
	if dto == nil {
		return nil
	}
	return dto.Data()
}

// Instance wraps the root element of one rendered template.
type Instance[U any] struct {
	root   *html.Node
	name   string
	eng    engine.Engine
	ensure func() error
}

// Root returns the wrapped element.
func (i *Instance[U]) Root() *html.Node {
	return i.root
}

// SetUserData associates v with the root element and returns the previous
// value, if any. A previous value of another type is reported as present with
// a zero U.
func (i *Instance[U]) SetUserData(v U) (prev U, had bool) {
	old, had := elementData.Set(i.root, v)
	if !had {
		return prev, false
	}
	prev, _ = typed[U](old, true)
	return prev, true
}

// UserData returns the value associated with the root element. A value set
// through an accessor with a different user data type reads as absent.
func (i *Instance[U]) UserData() (U, bool) {
	return typed[U](elementData.Get(i.root))
}

// ClearUserData drops the association for the root element.
func (i *Instance[U]) ClearUserData() {
	elementData.Delete(i.root)
}

// Point resolves occurrence index of the named point within the root.
func (i *Instance[U]) Point(name string, index int) (*html.Node, error) {
	if err := i.ensure(); err != nil {
		return nil, err
	}
	return i.eng.GetPoint(i.root, i.name, engine.PointSpec{name: index})
}

// Location hit-tests el against the root.
func (i *Instance[U]) Location(el *html.Node) (engine.Location, error) {
	if err := i.ensure(); err != nil {
		return nil, err
	}
	return i.eng.GetLocation(i.root, i.name, el)
}

// Hit reports whether el lies within an occurrence of the named point.
func (i *Instance[U]) Hit(point string, el *html.Node) (bool, error) {
	loc, err := i.Location(el)
	if err != nil {
		return false, err
	}
	return loc.Has(point), nil
}
