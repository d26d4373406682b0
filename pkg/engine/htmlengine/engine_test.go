package htmlengine_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-logr/logr/funcr"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-tardigrade/pkg/descriptor"
	"github.com/goliatone/go-tardigrade/pkg/dom"
	"github.com/goliatone/go-tardigrade/pkg/engine"
	"github.com/goliatone/go-tardigrade/pkg/engine/htmlengine"
)

const cardMarkup = `
<section class="Card">
	<h2 x-id="title">Untitled</h2>
	<ul>
		<li x-id="item"></li>
	</ul>
	<footer x-id="footer" class="muted"></footer>
</section>`

func newCardEngine(t *testing.T, options ...htmlengine.Option) *htmlengine.Engine {
	t.Helper()

	eng := htmlengine.New(options...)
	if err := eng.AddTemplate("Card", descriptor.MustParse("Card", cardMarkup)); err != nil {
		t.Fatalf("add template: %v", err)
	}
	return eng
}

func build(t *testing.T, eng *htmlengine.Engine, data engine.Data) *html.Node {
	t.Helper()

	markup, err := eng.BuildHTML("Card", data)
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	root, err := eng.CreateElement(markup)
	if err != nil {
		t.Fatalf("create element: %v", err)
	}
	return root
}

func TestBuildHTML_Defaults(t *testing.T) {
	eng := newCardEngine(t)

	got, err := eng.BuildHTML("Card", nil)
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	want := `<section class="Card"><h2>Untitled</h2><ul><li></li></ul><footer class="muted"></footer></section>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("markup mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildHTML_Substitutions(t *testing.T) {
	eng := newCardEngine(t)

	got, err := eng.BuildHTML("Card", engine.Data{
		"_root":   map[string]string{"data-id": "7"},
		"title":   "Hello <b>",
		"item":    []string{"a", "b"},
		"@footer": map[string]string{"class": "loud", "id": "f"},
	})
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	want := `<section class="Card" data-id="7"><h2>Hello &lt;b&gt;</h2><ul><li>a</li><li>b</li></ul><footer class="loud" id="f"></footer></section>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("markup mismatch (-want +got):\n%s", diff)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(got))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if n := doc.Find("section.Card ul > li").Length(); n != 2 {
		t.Fatalf("expected 2 repeated items, got %d", n)
	}
}

func TestBuildHTML_MarkupIsSanitized(t *testing.T) {
	eng := newCardEngine(t, htmlengine.WithDefaultSanitizer())

	got, err := eng.BuildHTML("Card", engine.Data{
		"title": engine.Markup(`<em>hi</em><script>alert(1)</script>`),
	})
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(got))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if doc.Find("script").Length() != 0 {
		t.Fatalf("expected script to be stripped, got %s", got)
	}
	if text := doc.Find("h2 em").Text(); text != "hi" {
		t.Fatalf("expected em content to survive, got %q", text)
	}
}

func TestBuildHTML_SanitizerStripsPointMarkers(t *testing.T) {
	eng := newCardEngine(t, htmlengine.WithDefaultSanitizer())

	markup, err := eng.BuildHTML("Card", engine.Data{
		"title": engine.Markup(`<span x-id="footer" class="forged">x</span>`),
	})
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	root, err := eng.CreateElement(markup)
	if err != nil {
		t.Fatalf("create element: %v", err)
	}
	span, err := dom.Find(root, "span.forged")
	if err != nil || span == nil {
		t.Fatalf("expected substituted span to survive, got %v", err)
	}
	if _, ok := dom.Attr(span, descriptor.PointAttr); ok {
		t.Fatalf("point marker must be stripped from substituted markup")
	}

	footer, err := eng.GetPoint(root, "Card", engine.PointSpec{"footer": 0})
	if err != nil {
		t.Fatalf("get point: %v", err)
	}
	if footer.Data != "footer" {
		t.Fatalf("expected the template footer, got <%s>", footer.Data)
	}
}

func TestBuildHTML_NodeAndScalarContent(t *testing.T) {
	eng := newCardEngine(t)
	badge, err := dom.CreateElement(`<span class="badge">new</span>`)
	if err != nil {
		t.Fatalf("create badge: %v", err)
	}

	got, err := eng.BuildHTML("Card", engine.Data{
		"title": badge,
		"item":  []any{1, true, nil},
	})
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	want := `<section class="Card"><h2><span class="badge">new</span></h2><ul><li>1</li><li>true</li><li></li></ul><footer class="muted"></footer></section>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("markup mismatch (-want +got):\n%s", diff)
	}
	if badge.Parent != nil {
		t.Fatalf("source node must not be adopted by the rendered tree")
	}
}

func TestBuildHTML_Errors(t *testing.T) {
	eng := newCardEngine(t)

	if _, err := eng.BuildHTML("Missing", nil); !errors.Is(err, engine.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := eng.BuildHTML("Card", engine.Data{"title": struct{}{}}); !errors.Is(err, engine.ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue, got %v", err)
	}
	if _, err := eng.BuildHTML("Card", engine.Data{"_root": "class=x"}); err == nil {
		t.Fatalf("expected error for non-map root overrides")
	}
}

func TestAddTemplate_Strict(t *testing.T) {
	eng := newCardEngine(t, htmlengine.WithStrictRegistration())

	err := eng.AddTemplate("Card", descriptor.MustParse("Card", cardMarkup))
	if !errors.Is(err, engine.ErrTemplateExists) {
		t.Fatalf("expected ErrTemplateExists, got %v", err)
	}

	lenient := newCardEngine(t)
	if err := lenient.AddTemplate("Card", descriptor.MustParse("Card", cardMarkup)); err != nil {
		t.Fatalf("expected replacement to succeed, got %v", err)
	}
	if diff := cmp.Diff([]string{"Card"}, lenient.Registry().List()); diff != "" {
		t.Fatalf("registry mismatch (-want +got):\n%s", diff)
	}
}

func TestAddTemplate_ElementText(t *testing.T) {
	eng := htmlengine.New()
	d := descriptor.Descriptor{
		Name: "Label",
		Root: descriptor.Node{Tag: "label", Text: "Name"},
	}
	if err := eng.AddTemplate("Label", d); err == nil {
		t.Fatalf("expected element text to be rejected")
	}

	yamlDesc, err := descriptor.LoadYAML([]byte("name: Label\nroot:\n  tag: label\n  text: Name\n"))
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if err := eng.AddTemplate("Label", yamlDesc); err != nil {
		t.Fatalf("add template: %v", err)
	}
	got, err := eng.BuildHTML("Label", nil)
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	if want := `<label>Name</label>`; got != want {
		t.Fatalf("markup mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestAddTemplate_CopiesDescriptor(t *testing.T) {
	d := descriptor.MustParse("Card", cardMarkup)
	eng := htmlengine.New()
	if err := eng.AddTemplate("Card", d); err != nil {
		t.Fatalf("add template: %v", err)
	}
	d.Root.Attrs["class"] = "Mutated"

	got, err := eng.BuildHTML("Card", nil)
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	if !strings.HasPrefix(got, `<section class="Card">`) {
		t.Fatalf("registered descriptor changed after caller mutation: %s", got)
	}
}

func TestAddTemplate_Logs(t *testing.T) {
	var lines []string
	logger := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	newCardEngine(t, htmlengine.WithLogger(logger))

	if len(lines) != 1 || !strings.Contains(lines[0], `"registered template"`) {
		t.Fatalf("expected one registration log line, got %v", lines)
	}
}

func TestGetPoint(t *testing.T) {
	eng := newCardEngine(t)
	root := build(t, eng, engine.Data{"item": []string{"a", "b", "c"}})

	second, err := eng.GetPoint(root, "Card", engine.PointSpec{"item": 1})
	if err != nil {
		t.Fatalf("get point: %v", err)
	}
	if second.Data != "li" || second.FirstChild == nil || second.FirstChild.Data != "b" {
		t.Fatalf("unexpected item[1]: %+v", second)
	}

	footer, err := eng.GetPoint(root, "Card", engine.PointSpec{"footer": 0})
	if err != nil {
		t.Fatalf("get footer: %v", err)
	}
	if !dom.HasClass(footer, "muted") {
		t.Fatalf("expected footer point, got %s", footer.Data)
	}

	if _, err := eng.GetPoint(root, "Card", engine.PointSpec{"item": 3}); !errors.Is(err, engine.ErrPointNotFound) {
		t.Fatalf("expected ErrPointNotFound for item[3], got %v", err)
	}
	if _, err := eng.GetPoint(root, "Card", engine.PointSpec{"nope": 0}); !errors.Is(err, engine.ErrPointNotFound) {
		t.Fatalf("expected ErrPointNotFound for undeclared point, got %v", err)
	}
	if _, err := eng.GetPoint(root, "Card", engine.PointSpec{}); err == nil {
		t.Fatalf("expected error for empty point spec")
	}
}

func TestGetPoint_EmptyRepetitionRemovesPoint(t *testing.T) {
	eng := newCardEngine(t)
	root := build(t, eng, engine.Data{"item": []string{}})

	if _, err := eng.GetPoint(root, "Card", engine.PointSpec{"item": 0}); !errors.Is(err, engine.ErrPointNotFound) {
		t.Fatalf("expected ErrPointNotFound, got %v", err)
	}
	if _, err := eng.GetPoint(root, "Card", engine.PointSpec{"footer": 0}); err != nil {
		t.Fatalf("footer should still resolve: %v", err)
	}
}

func TestGetPoint_RepeatedPointBeforeSameTagSibling(t *testing.T) {
	eng := htmlengine.New()
	if err := eng.AddTemplate("List", descriptor.MustParse("List", `<div><p x-id="entry"></p><p class="end"></p></div>`)); err != nil {
		t.Fatalf("add template: %v", err)
	}
	markup, err := eng.BuildHTML("List", engine.Data{"entry": []string{"1", "2"}})
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	root, err := eng.CreateElement(markup)
	if err != nil {
		t.Fatalf("create element: %v", err)
	}

	last, err := eng.GetPoint(root, "List", engine.PointSpec{"entry": 1})
	if err != nil {
		t.Fatalf("get point: %v", err)
	}
	if dom.HasClass(last, "end") || last.FirstChild == nil || last.FirstChild.Data != "2" {
		t.Fatalf("resolved the wrong paragraph")
	}
	if _, err := eng.GetPoint(root, "List", engine.PointSpec{"entry": 2}); !errors.Is(err, engine.ErrPointNotFound) {
		t.Fatalf("trailing sibling must not count as an entry, got %v", err)
	}
}

func TestGetLocation(t *testing.T) {
	eng := newCardEngine(t)
	root := build(t, eng, engine.Data{
		"item":  []engine.Markup{"<b>x</b>", "<b>y</b>"},
		"title": engine.Markup(`<a href="#">t</a>`),
	})
	other := build(t, eng, nil)

	bold, err := dom.FindAll(root, "li > b")
	if err != nil || len(bold) != 2 {
		t.Fatalf("find bold: %v (%d)", err, len(bold))
	}
	link, err := dom.Find(root, "h2 > a")
	if err != nil || link == nil {
		t.Fatalf("find link: %v", err)
	}
	list, err := dom.Find(root, "ul")
	if err != nil || list == nil {
		t.Fatalf("find list: %v", err)
	}

	cases := []struct {
		name string
		hit  *html.Node
		want engine.Location
	}{
		{name: "inside second item", hit: bold[1], want: engine.Location{"item": 1}},
		{name: "item element", hit: bold[0].Parent, want: engine.Location{"item": 0}},
		{name: "inside title", hit: link, want: engine.Location{"title": 0}},
		{name: "structural element", hit: list, want: engine.Location{}},
		{name: "root", hit: root, want: engine.Location{}},
		{name: "other instance", hit: other, want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := eng.GetLocation(root, "Card", tc.hit)
			if err != nil {
				t.Fatalf("get location: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("location mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetPoint_AdjacentSameTagPoints(t *testing.T) {
	eng := htmlengine.New()
	d := descriptor.MustParse("Panel", `<section><div x-id="title" class="t"></div><div x-id="body" class="b"></div></section>`)
	if err := eng.AddTemplate("Panel", d); err != nil {
		t.Fatalf("add template: %v", err)
	}

	cases := []struct {
		name  string
		data  engine.Data
		title int
		body  int
	}{
		{name: "defaults", data: nil, title: 1, body: 1},
		{name: "repeated title", data: engine.Data{"title": []string{"a", "b"}}, title: 2, body: 1},
		{name: "repeated body", data: engine.Data{"body": []string{"a", "b", "c"}}, title: 1, body: 3},
		{name: "title removed", data: engine.Data{"title": []string{}}, title: 0, body: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			markup, err := eng.BuildHTML("Panel", tc.data)
			if err != nil {
				t.Fatalf("build html: %v", err)
			}
			root, err := eng.CreateElement(markup)
			if err != nil {
				t.Fatalf("create element: %v", err)
			}

			for point, count := range map[string]int{"title": tc.title, "body": tc.body} {
				class := map[string]string{"title": "t", "body": "b"}[point]
				for i := 0; i < count; i++ {
					el, err := eng.GetPoint(root, "Panel", engine.PointSpec{point: i})
					if err != nil {
						t.Fatalf("get %s[%d]: %v", point, i, err)
					}
					if !dom.HasClass(el, class) {
						t.Fatalf("%s[%d] resolved to the wrong element", point, i)
					}
					loc, err := eng.GetLocation(root, "Panel", el)
					if err != nil {
						t.Fatalf("get location: %v", err)
					}
					if diff := cmp.Diff(engine.Location{point: i}, loc); diff != "" {
						t.Fatalf("location mismatch (-want +got):\n%s", diff)
					}
				}
				if _, err := eng.GetPoint(root, "Panel", engine.PointSpec{point: count}); !errors.Is(err, engine.ErrPointNotFound) {
					t.Fatalf("expected ErrPointNotFound for %s[%d], got %v", point, count, err)
				}
			}
		})
	}
}

func TestGetPoint_ForeignElement(t *testing.T) {
	eng := htmlengine.New()
	var src strings.Builder
	src.WriteString("<div>")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&src, `<p x-id="p%d"></p>`, i)
	}
	src.WriteString("<span></span></div>")
	if err := eng.AddTemplate("Many", descriptor.MustParse("Many", src.String())); err != nil {
		t.Fatalf("add template: %v", err)
	}

	foreign, err := dom.CreateElement("<div>" + strings.Repeat("<p></p>", 60) + "<em></em></div>")
	if err != nil {
		t.Fatalf("create element: %v", err)
	}

	if _, err := eng.GetPoint(foreign, "Many", engine.PointSpec{"p0": 0}); !errors.Is(err, engine.ErrPointNotFound) {
		t.Fatalf("expected ErrPointNotFound, got %v", err)
	}
	loc, err := eng.GetLocation(foreign, "Many", dom.ElementChild(foreign, 3))
	if err != nil {
		t.Fatalf("get location: %v", err)
	}
	if len(loc) != 0 {
		t.Fatalf("expected no points on a foreign element, got %v", loc)
	}
}
