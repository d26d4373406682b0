package descriptor

import (
	"bytes"
	"sort"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Markup renders the descriptor back to annotated HTML. Parse(d.Name,
// d.Markup()) yields a descriptor equal to d, which is how generated
// accessors embed their definition.
func (d Descriptor) Markup() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, toHTML(d.Root)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toHTML(n Node) *html.Node {
	if !n.IsElement() {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}
	if n.Point != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: PointAttr, Val: n.Point})
	}
	keys := make([]string, 0, len(n.Attrs))
	for key := range n.Attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		el.Attr = append(el.Attr, html.Attribute{Key: key, Val: n.Attrs[key]})
	}
	for _, child := range n.Children {
		el.AppendChild(toHTML(child))
	}
	return el
}
