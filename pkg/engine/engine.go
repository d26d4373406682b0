// Package engine defines the contract between generated template accessors
// and the templating engine that builds, parses and inspects their markup.
// The concrete implementation lives in engine/htmlengine; tests substitute
// their own doubles.
package engine

import (
	"errors"

	"golang.org/x/net/html"

	"github.com/goliatone/go-tardigrade/pkg/descriptor"
)

// Reserved Data keys.
const (
	// RootKey holds map[string]string attribute overrides for the root element.
	RootKey = "_root"
	// AttrPrefix prefixes a point name to hold attribute overrides for it.
	AttrPrefix = "@"
)

var (
	ErrTemplateNotFound = errors.New("engine: template not registered")
	ErrTemplateExists   = errors.New("engine: template already registered")
	ErrPointNotFound    = errors.New("engine: point not found")
	ErrUnsupportedValue = errors.New("engine: unsupported content value")
)

// Data is the untyped data transfer object handed to BuildHTML. Point names
// map to content substitutions, "@point" to attribute overrides and "_root" to
// root attribute overrides.
type Data map[string]any

// Markup marks a content value as raw HTML rather than text.
type Markup string

// PointSpec selects a point occurrence, e.g. {"content": 0}.
type PointSpec map[string]int

// Location maps each point containing a hit element to its occurrence index.
// A nil Location means the element is not inside the root.
type Location map[string]int

// Has reports whether the location includes point.
func (l Location) Has(point string) bool {
	if l == nil {
		return false
	}
	_, ok := l[point]
	return ok
}

// Engine is everything an accessor needs from a templating engine.
type Engine interface {
	AddTemplate(name string, d descriptor.Descriptor) error
	BuildHTML(name string, data Data) (string, error)
	GetPoint(root *html.Node, name string, spec PointSpec) (*html.Node, error)
	GetLocation(root *html.Node, name string, hit *html.Node) (Location, error)
	CreateElement(markup string) (*html.Node, error)
}
