package htmlengine

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-tardigrade/pkg/descriptor"
	"github.com/goliatone/go-tardigrade/pkg/dom"
	"github.com/goliatone/go-tardigrade/pkg/engine"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes engine logs to logger. Registration logs at V(1), builds
// at V(2).
func WithLogger(logger logr.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSanitizer filters engine.Markup content through policy before it is
// parsed into the rendered tree.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(e *Engine) {
		e.sanitizer = policy
	}
}

// WithDefaultSanitizer installs DefaultPolicy.
func WithDefaultSanitizer() Option {
	return func(e *Engine) {
		e.sanitizer = DefaultPolicy()
	}
}

// WithStrictRegistration makes AddTemplate fail for names already
// registered instead of replacing them.
func WithStrictRegistration() Option {
	return func(e *Engine) {
		e.strict = true
	}
}

// Engine renders registered descriptors into HTML and inspects the elements
// built from that HTML.
type Engine struct {
	logger    logr.Logger
	sanitizer *bluemonday.Policy
	strict    bool
	registry  *Registry
}

var _ engine.Engine = (*Engine)(nil)

// New constructs an Engine applying the provided options.
func New(options ...Option) *Engine {
	e := &Engine{
		logger: logr.Discard(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	e.registry = NewRegistry(e.strict)
	return e
}

// Registry exposes the template registry for inspection.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// AddTemplate registers d under name.
func (e *Engine) AddTemplate(name string, d descriptor.Descriptor) error {
	if err := e.registry.Register(name, d); err != nil {
		return err
	}
	e.logger.V(1).Info("registered template", "template", name, "points", d.PointNames())
	return nil
}

// BuildHTML renders the template named name with data substituted into its
// points.
func (e *Engine) BuildHTML(name string, data engine.Data) (string, error) {
	entry, err := e.registry.lookup(name)
	if err != nil {
		return "", err
	}

	b := builder{data: data, sanitizer: e.sanitizer}
	root := entry.desc.Root
	if root.Point != "" {
		if _, repeated := asItems(data[root.Point]); repeated {
			return "", fmt.Errorf("htmlengine: template %q: root point %q cannot repeat", name, root.Point)
		}
	}
	nodes, err := b.element(root)
	if err != nil {
		return "", fmt.Errorf("htmlengine: build %q: %w", name, err)
	}
	rootEl := nodes[0]
	if err := applyAttrs(rootEl, data[engine.RootKey]); err != nil {
		return "", fmt.Errorf("htmlengine: build %q: %s: %w", name, engine.RootKey, err)
	}

	markup, err := dom.Render(rootEl)
	if err != nil {
		return "", fmt.Errorf("htmlengine: build %q: %w", name, err)
	}
	e.logger.V(2).Info("built template", "template", name, "bytes", len(markup))
	return markup, nil
}

// CreateElement parses markup and returns its first element.
func (e *Engine) CreateElement(markup string) (*html.Node, error) {
	return dom.CreateElement(markup)
}

type builder struct {
	data      engine.Data
	sanitizer *bluemonday.Policy
}

// element builds the nodes for n. Points given a slice value expand to one
// element per item, so the result may hold zero or more nodes.
func (b builder) element(n descriptor.Node) ([]*html.Node, error) {
	if !n.IsElement() {
		return []*html.Node{{Type: html.TextNode, Data: n.Text}}, nil
	}
	if n.Point == "" {
		el := newElement(n)
		if err := b.children(el, n.Children); err != nil {
			return nil, err
		}
		return []*html.Node{el}, nil
	}

	value, present := b.data[n.Point]
	attrs := b.data[engine.AttrPrefix+n.Point]

	items, repeated := asItems(value)
	if !repeated {
		items = []any{value}
	}

	out := make([]*html.Node, 0, len(items))
	for _, item := range items {
		el := newElement(n)
		if err := applyAttrs(el, attrs); err != nil {
			return nil, fmt.Errorf("point %q: %w", n.Point, err)
		}
		if !present || item == nil {
			if err := b.children(el, n.Children); err != nil {
				return nil, err
			}
		} else if err := b.fill(el, item); err != nil {
			return nil, fmt.Errorf("point %q: %w", n.Point, err)
		}
		out = append(out, el)
	}
	return out, nil
}

func (b builder) children(el *html.Node, children []descriptor.Node) error {
	for _, child := range children {
		nodes, err := b.element(child)
		if err != nil {
			return err
		}
		for _, node := range nodes {
			el.AppendChild(node)
		}
	}
	return nil
}

func (b builder) fill(el *html.Node, value any) error {
	switch v := value.(type) {
	case engine.Markup:
		raw := string(v)
		if b.sanitizer != nil {
			raw = b.sanitizer.Sanitize(raw)
		}
		nodes, err := html.ParseFragment(strings.NewReader(raw), el)
		if err != nil {
			return fmt.Errorf("parse markup: %w", err)
		}
		for _, node := range nodes {
			el.AppendChild(node)
		}
	case *html.Node:
		if v != nil {
			el.AppendChild(dom.Clone(v))
		}
	case string:
		el.AppendChild(&html.Node{Type: html.TextNode, Data: v})
	case fmt.Stringer:
		el.AppendChild(&html.Node{Type: html.TextNode, Data: v.String()})
	default:
		if !isScalar(v) {
			return fmt.Errorf("%T: %w", value, engine.ErrUnsupportedValue)
		}
		el.AppendChild(&html.Node{Type: html.TextNode, Data: fmt.Sprint(v)})
	}
	return nil
}

func newElement(n descriptor.Node) *html.Node {
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}
	for _, key := range sortedKeys(n.Attrs) {
		el.Attr = append(el.Attr, html.Attribute{Key: key, Val: n.Attrs[key]})
	}
	return el
}

func applyAttrs(el *html.Node, raw any) error {
	switch attrs := raw.(type) {
	case nil:
		return nil
	case map[string]string:
		for _, key := range sortedKeys(attrs) {
			dom.SetAttr(el, key, attrs[key])
		}
		return nil
	case map[string]any:
		keys := make([]string, 0, len(attrs))
		for key := range attrs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			dom.SetAttr(el, key, fmt.Sprint(attrs[key]))
		}
		return nil
	default:
		return errors.New("attribute overrides must be a string map")
	}
}

// asItems unpacks slice values used to repeat a point. Byte slices are not
// treated as repetitions.
func asItems(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []engine.Markup:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, true
	case []*html.Node:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	}
	return nil, false
}

func isScalar(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
