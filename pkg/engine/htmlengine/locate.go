package htmlengine

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-tardigrade/pkg/descriptor"
	"github.com/goliatone/go-tardigrade/pkg/dom"
	"github.com/goliatone/go-tardigrade/pkg/engine"
)

// GetPoint returns the element for the single point occurrence named in spec.
func (e *Engine) GetPoint(root *html.Node, name string, spec engine.PointSpec) (*html.Node, error) {
	entry, err := e.registry.lookup(name)
	if err != nil {
		return nil, err
	}
	if len(spec) != 1 {
		return nil, fmt.Errorf("htmlengine: point spec must name exactly one point, got %d", len(spec))
	}

	var (
		point string
		index int
	)
	for p, i := range spec {
		point, index = p, i
	}
	if _, declared := entry.points[point]; !declared {
		return nil, fmt.Errorf("htmlengine: template %q does not declare %q: %w", name, point, engine.ErrPointNotFound)
	}

	for _, occ := range occurrences(entry.desc, root) {
		if occ.point == point && occ.index == index {
			return occ.el, nil
		}
	}
	return nil, fmt.Errorf("htmlengine: template %q point %s[%d]: %w", name, point, index, engine.ErrPointNotFound)
}

// GetLocation reports every point occurrence that contains hit (or is hit).
// The location is nil when hit is not inside root.
func (e *Engine) GetLocation(root *html.Node, name string, hit *html.Node) (engine.Location, error) {
	entry, err := e.registry.lookup(name)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errors.New("htmlengine: root element is required")
	}
	if _, inside := dom.PathOf(root, hit); !inside {
		return nil, nil
	}

	ancestors := make(map[*html.Node]struct{})
	for n := hit; n != nil; n = n.Parent {
		ancestors[n] = struct{}{}
		if n == root {
			break
		}
	}

	location := engine.Location{}
	for _, occ := range occurrences(entry.desc, root) {
		if _, ok := ancestors[occ.el]; ok {
			location[occ.point] = occ.index
		}
	}
	return location, nil
}

type occurrence struct {
	point string
	index int
	el    *html.Node
}

// occurrences matches root against the descriptor tree and lists every point
// occurrence found. Subtrees whose children no longer follow the descriptor
// (substituted content, caller edits) contribute nothing.
func occurrences(d descriptor.Descriptor, root *html.Node) []occurrence {
	if root == nil || root.Type != html.ElementNode || !sameTag(d.Root.Tag, root.Data) {
		return nil
	}
	var out []occurrence
	if d.Root.Point != "" {
		out = append(out, occurrence{point: d.Root.Point, el: root})
	}
	collect(d.Root, root, &out)
	return out
}

func collect(n descriptor.Node, el *html.Node, out *[]occurrence) {
	var expected []descriptor.Node
	for _, child := range n.Children {
		if child.IsElement() {
			expected = append(expected, child)
		}
	}
	if len(expected) == 0 {
		return
	}

	kids := dom.ElementChildren(el)
	spans, ok := matchSiblings(expected, kids)
	if !ok {
		return
	}
	for i, child := range expected {
		for occ, kid := range kids[spans[i].start:spans[i].end] {
			if child.Point != "" {
				*out = append(*out, occurrence{point: child.Point, index: occ, el: kid})
			}
			collect(child, kid, out)
		}
	}
}

type span struct {
	start, end int
}

// matchSiblings assigns element children to descriptor children. Plain
// elements take exactly one child; points take zero or more consecutive
// children of their tag. Among the valid assignments the one whose children
// agree with the most descriptor attributes wins, then the one giving earlier
// points longer runs. The search is a table over (descriptor child, element
// child) pairs, so it is polynomial even when nothing matches.
func matchSiblings(expected []descriptor.Node, kids []*html.Node) ([]span, bool) {
	const unmatched = -1

	// best[p][k] is the highest agreement for expected[p:] against kids[k:].
	best := make([][]int, len(expected)+1)
	take := make([][]int, len(expected)+1)
	for p := range best {
		best[p] = make([]int, len(kids)+1)
		take[p] = make([]int, len(kids)+1)
		for k := range best[p] {
			best[p][k] = unmatched
		}
	}
	best[len(expected)][len(kids)] = 0

	for p := len(expected) - 1; p >= 0; p-- {
		want := expected[p]
		for k := len(kids); k >= 0; k-- {
			if want.Point == "" {
				if k < len(kids) && sameTag(want.Tag, kids[k].Data) && best[p+1][k+1] != unmatched {
					best[p][k] = agreement(want, kids[k]) + best[p+1][k+1]
					take[p][k] = 1
				}
				continue
			}

			run := 0
			for k+run < len(kids) && sameTag(want.Tag, kids[k+run].Data) {
				run++
			}
			score := 0
			for count := 0; count <= run; count++ {
				if count > 0 {
					score += agreement(want, kids[k+count-1])
				}
				rest := best[p+1][k+count]
				if rest == unmatched {
					continue
				}
				if total := score + rest; total >= best[p][k] {
					best[p][k] = total
					take[p][k] = count
				}
			}
		}
	}

	if best[0][0] == unmatched {
		return nil, false
	}
	spans := make([]span, len(expected))
	k := 0
	for p := range expected {
		spans[p] = span{start: k, end: k + take[p][k]}
		k += take[p][k]
	}
	return spans, true
}

// agreement counts the descriptor attributes el still carries with their
// template values. Overridden attributes only lower the score.
func agreement(n descriptor.Node, el *html.Node) int {
	score := 0
	for key, want := range n.Attrs {
		if got, ok := dom.Attr(el, key); ok && got == want {
			score++
		}
	}
	return score
}

func sameTag(want, got string) bool {
	return strings.EqualFold(want, got)
}
