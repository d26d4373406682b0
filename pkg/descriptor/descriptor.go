package descriptor

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-tardigrade/pkg/dom"
)

// PointAttr marks an element as a named insertion point in template markup.
const PointAttr = "x-id"

var pointNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Descriptor is the structural definition of one named template.
type Descriptor struct {
	Name string `yaml:"name" json:"name"`
	Root Node   `yaml:"root" json:"root"`
}

// Node is either an element (Tag set) or a text node (Tag empty). Elements
// with a Point name are insertion points. Text belongs to text nodes only;
// element content goes in Children.
type Node struct {
	Point    string            `yaml:"point,omitempty" json:"point,omitempty"`
	Tag      string            `yaml:"tag,omitempty" json:"tag,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty" json:"attrs,omitempty"`
	Text     string            `yaml:"text,omitempty" json:"text,omitempty"`
	Children []Node            `yaml:"children,omitempty" json:"children,omitempty"`
}

// IsElement reports whether n describes an element rather than text.
func (n Node) IsElement() bool {
	return n.Tag != ""
}

// PointRef locates a point inside the rendered root by element child indexes.
type PointRef struct {
	Name string
	Path []int
	Node Node
}

// Parse builds a descriptor from template markup. The first element is the
// root; elements carrying x-id become points.
func Parse(name, markup string) (Descriptor, error) {
	if strings.TrimSpace(markup) == "" {
		return Descriptor{}, errors.New("descriptor: markup is required")
	}
	nodes, err := dom.ParseFragment(markup)
	if err != nil {
		return Descriptor{}, fmt.Errorf("descriptor: %w", err)
	}

	var root *html.Node
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			root = n
			break
		}
	}
	if root == nil {
		return Descriptor{}, fmt.Errorf("descriptor: template %q has no root element", name)
	}

	d := Descriptor{Name: strings.TrimSpace(name), Root: fromHTML(root)}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// MustParse panics when Parse fails. Useful for package-level literals.
func MustParse(name, markup string) Descriptor {
	d, err := Parse(name, markup)
	if err != nil {
		panic(err)
	}
	return d
}

func fromHTML(n *html.Node) Node {
	out := Node{Tag: n.Data}
	for _, attr := range n.Attr {
		if attr.Key == PointAttr {
			out.Point = strings.TrimSpace(attr.Val)
			continue
		}
		if out.Attrs == nil {
			out.Attrs = make(map[string]string, len(n.Attr))
		}
		out.Attrs[attr.Key] = attr.Val
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			out.Children = append(out.Children, fromHTML(c))
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			out.Children = append(out.Children, Node{Text: c.Data})
		}
	}
	return out
}

// Validate checks the descriptor can be registered.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("descriptor: name is required")
	}
	if !d.Root.IsElement() {
		return fmt.Errorf("descriptor: template %q root must be an element", d.Name)
	}

	seen := make(map[string]struct{})
	var walk func(n Node) error
	walk = func(n Node) error {
		if n.IsElement() && n.Text != "" {
			return fmt.Errorf("descriptor: template %q element %q carries text outside a text child", d.Name, n.Tag)
		}
		if n.Point != "" {
			if !n.IsElement() {
				return fmt.Errorf("descriptor: template %q point %q must be an element", d.Name, n.Point)
			}
			if !pointNamePattern.MatchString(n.Point) {
				return fmt.Errorf("descriptor: template %q has invalid point name %q", d.Name, n.Point)
			}
			if _, dup := seen[n.Point]; dup {
				return fmt.Errorf("descriptor: template %q declares point %q twice", d.Name, n.Point)
			}
			seen[n.Point] = struct{}{}
		}
		for _, child := range n.Children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(d.Root)
}

// Points lists every point in document order with its element path.
func (d Descriptor) Points() []PointRef {
	var out []PointRef
	var walk func(n Node, path []int)
	walk = func(n Node, path []int) {
		if n.Point != "" {
			out = append(out, PointRef{
				Name: n.Point,
				Path: append([]int(nil), path...),
				Node: n,
			})
		}
		idx := 0
		for _, child := range n.Children {
			if !child.IsElement() {
				continue
			}
			walk(child, append(path, idx))
			idx++
		}
	}
	walk(d.Root, nil)
	return out
}

// Point returns the named point, if declared.
func (d Descriptor) Point(name string) (PointRef, bool) {
	for _, ref := range d.Points() {
		if ref.Name == name {
			return ref, true
		}
	}
	return PointRef{}, false
}

// PointNames returns the declared point names, sorted.
func (d Descriptor) PointNames() []string {
	refs := d.Points()
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy so registries never share maps with callers.
func (d Descriptor) Clone() Descriptor {
	return Descriptor{Name: d.Name, Root: d.Root.clone()}
}

func (n Node) clone() Node {
	out := Node{Point: n.Point, Tag: n.Tag, Text: n.Text}
	if n.Attrs != nil {
		out.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			out.Attrs[k] = v
		}
	}
	if len(n.Children) > 0 {
		out.Children = make([]Node, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.clone()
		}
	}
	return out
}
