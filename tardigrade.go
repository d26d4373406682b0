package tardigrade

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-tardigrade/pkg/codegen"
	"github.com/goliatone/go-tardigrade/pkg/engine"
	"github.com/goliatone/go-tardigrade/pkg/engine/htmlengine"
	"github.com/goliatone/go-tardigrade/pkg/manifest"
	"github.com/goliatone/go-tardigrade/pkg/orchestrator"
)

// Data aliases engine.Data for callers building DTO payloads by hand.
type Data = engine.Data

// Markup aliases engine.Markup; values of this type are inserted as HTML.
type Markup = engine.Markup

// NewEngine exposes the HTML engine constructor from the top-level module.
func NewEngine(options ...htmlengine.Option) *htmlengine.Engine {
	return htmlengine.New(options...)
}

// NewOrchestrator exposes the generator pipeline constructor.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GeneratorTemplates exposes the embedded accessor templates so callers can
// copy and customise them for codegen.WithRenderer.
func GeneratorTemplates() fs.FS {
	return codegen.TemplatesFS()
}

// GenerateManifest loads the manifest at path and writes every accessor it
// lists. It is the programmatic equivalent of running tardigrade-gen.
func GenerateManifest(ctx context.Context, path string, options ...orchestrator.Option) ([]orchestrator.Result, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(options...).Run(ctx, m)
}
