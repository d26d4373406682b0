package testsupport

import (
	"sync"

	"golang.org/x/net/html"

	"github.com/goliatone/go-tardigrade/pkg/descriptor"
	"github.com/goliatone/go-tardigrade/pkg/engine"
	"github.com/goliatone/go-tardigrade/pkg/engine/htmlengine"
)

// RecordingEngine wraps an engine and counts the calls reaching it. Set
// AddTemplateErr to make registration fail.
type RecordingEngine struct {
	Inner          engine.Engine
	AddTemplateErr error

	mu    sync.Mutex
	calls map[string]int
	names []string
}

var _ engine.Engine = (*RecordingEngine)(nil)

// NewRecordingEngine wraps a fresh htmlengine.Engine.
func NewRecordingEngine(options ...htmlengine.Option) *RecordingEngine {
	return &RecordingEngine{Inner: htmlengine.New(options...)}
}

// Calls returns how many times op (e.g. "AddTemplate") was invoked.
func (r *RecordingEngine) Calls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

// Registered lists the template names passed to AddTemplate, in call order.
func (r *RecordingEngine) Registered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func (r *RecordingEngine) record(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[op]++
}

func (r *RecordingEngine) AddTemplate(name string, d descriptor.Descriptor) error {
	r.record("AddTemplate")
	r.mu.Lock()
	r.names = append(r.names, name)
	r.mu.Unlock()
	if r.AddTemplateErr != nil {
		return r.AddTemplateErr
	}
	return r.Inner.AddTemplate(name, d)
}

func (r *RecordingEngine) BuildHTML(name string, data engine.Data) (string, error) {
	r.record("BuildHTML")
	return r.Inner.BuildHTML(name, data)
}

func (r *RecordingEngine) GetPoint(root *html.Node, name string, spec engine.PointSpec) (*html.Node, error) {
	r.record("GetPoint")
	return r.Inner.GetPoint(root, name, spec)
}

func (r *RecordingEngine) GetLocation(root *html.Node, name string, hit *html.Node) (engine.Location, error) {
	r.record("GetLocation")
	return r.Inner.GetLocation(root, name, hit)
}

func (r *RecordingEngine) CreateElement(markup string) (*html.Node, error) {
	r.record("CreateElement")
	return r.Inner.CreateElement(markup)
}
