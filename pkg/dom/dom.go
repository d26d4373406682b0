// Package dom holds the element helpers shared by the engine and the
// generated accessors. Elements are golang.org/x/net/html nodes; only element
// nodes are addressed by paths.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoElement is returned when markup does not contain an element node.
var ErrNoElement = errors.New("dom: markup has no element")

// CreateElement parses markup as a body fragment and returns its first
// element. The returned node is detached from any parent.
func CreateElement(markup string) (*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), bodyContext())
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	for _, node := range nodes {
		if node.Type == html.ElementNode {
			return node, nil
		}
	}
	return nil, ErrNoElement
}

// ParseFragment parses markup as body content and returns every top level
// node, elements and text alike.
func ParseFragment(markup string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), bodyContext())
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	return nodes, nil
}

// Render serialises el (outer HTML).
func Render(el *html.Node) (string, error) {
	if el == nil {
		return "", errors.New("dom: render nil element")
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, el); err != nil {
		return "", fmt.Errorf("dom: render: %w", err)
	}
	return buf.String(), nil
}

// ElementChildren lists the element children of n in document order.
func ElementChildren(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// PathOf returns the element child indexes leading from root to el. The path
// is empty when el is root and ok is false when el is not inside root.
func PathOf(root, el *html.Node) (path []int, ok bool) {
	if root == nil || el == nil {
		return nil, false
	}
	var reversed []int
	for n := el; n != nil; n = n.Parent {
		if n == root {
			path = make([]int, len(reversed))
			for i, idx := range reversed {
				path[len(reversed)-1-i] = idx
			}
			return path, true
		}
		if n.Type != html.ElementNode {
			return nil, false
		}
		reversed = append(reversed, elementIndex(n))
	}
	return nil, false
}

// Resolve walks path from root and returns the element found there, or nil.
func Resolve(root *html.Node, path []int) *html.Node {
	n := root
	for _, idx := range path {
		n = ElementChild(n, idx)
		if n == nil {
			return nil
		}
	}
	return n
}

// ElementChild returns the idx-th element child of n, or nil.
func ElementChild(n *html.Node, idx int) *html.Node {
	if n == nil || idx < 0 {
		return nil
	}
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if i == idx {
			return c
		}
		i++
	}
	return nil
}

// Clone deep copies n. The copy has no parent or siblings.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	out := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		out.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(Clone(c))
	}
	return out
}

// Attr returns the value of key on el.
func Attr(el *html.Node, key string) (string, bool) {
	if el == nil {
		return "", false
	}
	for _, attr := range el.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// SetAttr sets key on el, replacing an existing value.
func SetAttr(el *html.Node, key, val string) {
	for i, attr := range el.Attr {
		if attr.Namespace == "" && attr.Key == key {
			el.Attr[i].Val = val
			return
		}
	}
	el.Attr = append(el.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether class appears in el's class list.
func HasClass(el *html.Node, class string) bool {
	val, ok := Attr(el, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(val) {
		if c == class {
			return true
		}
	}
	return false
}

// Find returns the first element matching selector among root and its
// descendants.
func Find(root *html.Node, selector string) (*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: compile selector %q: %w", selector, err)
	}
	return sel.MatchFirst(root), nil
}

// FindAll returns every element matching selector among root and its
// descendants.
func FindAll(root *html.Node, selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: compile selector %q: %w", selector, err)
	}
	return sel.MatchAll(root), nil
}

func elementIndex(n *html.Node) int {
	idx := 0
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			idx++
		}
	}
	return idx
}

func bodyContext() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
}
