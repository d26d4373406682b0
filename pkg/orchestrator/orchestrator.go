package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"

	"github.com/goliatone/go-tardigrade/pkg/codegen"
	"github.com/goliatone/go-tardigrade/pkg/descriptor"
	"github.com/goliatone/go-tardigrade/pkg/engine"
	"github.com/goliatone/go-tardigrade/pkg/manifest"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithGenerator injects a preconfigured accessor generator.
func WithGenerator(gen *codegen.Generator) Option {
	return func(o *Orchestrator) {
		o.generator = gen
	}
}

// WithLogger sets the logger used for progress output. The logger is also
// handed to the default generator.
func WithLogger(logger logr.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithEngine registers every loaded descriptor with eng before generating, so
// templates the engine rejects fail the run.
func WithEngine(eng engine.Engine) Option {
	return func(o *Orchestrator) {
		o.engine = eng
	}
}

// WithDryRun renders accessors without writing them.
func WithDryRun(dry bool) Option {
	return func(o *Orchestrator) {
		o.dryRun = dry
	}
}

// Orchestrator drives the manifest → descriptor → accessor pipeline.
type Orchestrator struct {
	generator     *codegen.Generator
	engine        engine.Engine
	logger        logr.Logger
	dryRun        bool
	initialiseErr error
}

// New constructs an Orchestrator. Without WithGenerator the embedded accessor
// templates are used.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{logger: logr.Discard()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.generator == nil {
		gen, err := codegen.New(codegen.WithLogger(o.logger))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default generator: %w", err)
		}
		o.generator = gen
	}
	return o
}

// Result reports one generated accessor.
type Result struct {
	Entry  manifest.Entry
	Output string
	Source []byte
}

// Run generates every accessor listed in m, stopping at the first failure.
// Results for entries processed before the failure are returned with it.
func (o *Orchestrator) Run(ctx context.Context, m *manifest.Manifest) ([]Result, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("orchestrator: manifest is required")
	}

	results := make([]Result, 0, len(m.Templates))
	for _, entry := range m.Templates {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := o.generate(ctx, m, entry)
		if err != nil {
			return results, fmt.Errorf("orchestrator: %s: %w", entry.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (o *Orchestrator) generate(ctx context.Context, m *manifest.Manifest, entry manifest.Entry) (Result, error) {
	d, err := LoadDescriptor(entry, m.Resolve(entry.Source))
	if err != nil {
		return Result{}, err
	}
	if o.engine != nil {
		if err := o.engine.AddTemplate(d.Name, d); err != nil {
			return Result{}, fmt.Errorf("register with engine: %w", err)
		}
	}

	req := codegen.Request{Descriptor: d, Package: entry.Package, Source: entry.Source}
	output := m.Resolve(entry.Output)

	src, err := o.generator.Generate(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if !o.dryRun {
		if err := codegen.WriteFile(output, src); err != nil {
			return Result{}, err
		}
	}
	o.logger.V(1).Info("accessor ready", "template", d.Name, "output", output, "dryRun", o.dryRun)
	return Result{Entry: entry, Output: output, Source: src}, nil
}

// LoadDescriptor reads the descriptor for entry from path. YAML sources are
// decoded as descriptors; anything else is parsed as annotated HTML. The entry
// name always names the result.
func LoadDescriptor(entry manifest.Entry, path string) (descriptor.Descriptor, error) {
	if entry.IsYAML() {
		return descriptor.LoadYAMLFileAs(entry.Name, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return descriptor.Descriptor{}, fmt.Errorf("read source: %w", err)
	}
	return descriptor.Parse(entry.Name, string(data))
}
