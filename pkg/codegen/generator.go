package codegen

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/iancoleman/strcase"

	"github.com/goliatone/go-tardigrade/pkg/descriptor"
	"github.com/goliatone/go-tardigrade/pkg/render/template"
	"github.com/goliatone/go-tardigrade/pkg/render/template/gotemplate"
)

const (
	accessorTemplate = "accessor.go"
	templateExt      = ".tpl"

	// GeneratorName is stamped into the header of generated files.
	GeneratorName = "tardigrade-gen"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded accessor templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// Option customises the generator.
type Option func(*Generator)

// WithRenderer replaces the pongo2 renderer. The renderer must resolve the
// "accessor.go" template.
func WithRenderer(renderer template.TemplateRenderer) Option {
	return func(g *Generator) {
		g.renderer = renderer
	}
}

// WithTemplateDir searches dir for accessor templates before the embedded
// ones, so a project can override "accessor.go.tpl". Ignored when
// WithRenderer is set.
func WithTemplateDir(dir string) Option {
	return func(g *Generator) {
		g.templateDir = strings.TrimSpace(dir)
	}
}

// WithLogger sets the generator logger.
func WithLogger(logger logr.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// Generator turns descriptors into accessor source files.
type Generator struct {
	renderer    template.TemplateRenderer
	templateDir string
	logger      logr.Logger
}

// New constructs a Generator. Without WithRenderer the embedded templates are
// rendered through pongo2. The renderer receives the identifier filters and
// the "generator" global that accessor templates rely on.
func New(options ...Option) (*Generator, error) {
	g := &Generator{logger: logr.Discard()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}

	globals := map[string]any{"generator": GeneratorName}
	if g.renderer == nil {
		renderer, err := gotemplate.New(
			gotemplate.WithBaseDir(g.templateDir),
			gotemplate.WithFS(TemplatesFS()),
			gotemplate.WithExtension(templateExt),
			gotemplate.WithGlobalData(globals),
		)
		if err != nil {
			return nil, fmt.Errorf("codegen: default renderer: %w", err)
		}
		g.renderer = renderer
	} else if err := g.renderer.GlobalContext(globals); err != nil {
		return nil, fmt.Errorf("codegen: renderer globals: %w", err)
	}

	if err := installFilters(g.renderer); err != nil {
		return nil, err
	}
	return g, nil
}

// sourceFilters turn template and point names into Go identifiers and
// literals.
var sourceFilters = map[string]func(string) string{
	"camel":      strcase.ToCamel,
	"lowercamel": strcase.ToLowerCamel,
	"goquote":    strconv.Quote,
}

func installFilters(renderer template.TemplateRenderer) error {
	for name, fn := range sourceFilters {
		err := renderer.RegisterFilter(name, func(input any, _ any) (any, error) {
			return fn(fmt.Sprint(input)), nil
		})
		if err != nil && !errors.Is(err, template.ErrFilterExists) {
			return fmt.Errorf("codegen: filter %s: %w", name, err)
		}
	}
	return nil
}

// Request describes one accessor to generate.
type Request struct {
	Descriptor descriptor.Descriptor
	// Package is the Go package name of the generated file.
	Package string
	// Source is recorded in the file header when set.
	Source string
}

// Generate renders and gofmts the accessor source for req.
func (g *Generator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view, err := buildView(req)
	if err != nil {
		return nil, err
	}

	out, err := g.renderer.Render(accessorTemplate, view)
	if err != nil {
		return nil, fmt.Errorf("codegen: render %s: %w", req.Descriptor.Name, err)
	}
	src, err := format.Source([]byte(out))
	if err != nil {
		return nil, fmt.Errorf("codegen: format %s: %w", req.Descriptor.Name, err)
	}
	g.logger.V(1).Info("generated accessor", "template", req.Descriptor.Name, "package", req.Package, "bytes", len(src))
	return src, nil
}

// GenerateFile generates req and writes it to path, creating parent
// directories.
func (g *Generator) GenerateFile(ctx context.Context, req Request, path string) error {
	src, err := g.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := WriteFile(path, src); err != nil {
		return err
	}
	g.logger.Info("wrote accessor", "template", req.Descriptor.Name, "path", path)
	return nil
}

// WriteFile writes generated source to path, creating parent directories.
func WriteFile(path string, src []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("codegen: mkdir: %w", err)
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("codegen: write %s: %w", path, err)
	}
	return nil
}

// reservedMembers are accessor members that point-derived names may not
// shadow.
var reservedMembers = map[string]struct{}{
	"Root":          {},
	"Data":          {},
	"RootElement":   {},
	"SetUserData":   {},
	"UserData":      {},
	"ClearUserData": {},
}

func buildView(req Request) (map[string]any, error) {
	d := req.Descriptor
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("codegen: %w", err)
	}
	pkg := strings.TrimSpace(req.Package)
	if !token.IsIdentifier(pkg) || token.IsKeyword(pkg) {
		return nil, fmt.Errorf("codegen: invalid package name %q", req.Package)
	}
	typeName := strcase.ToCamel(d.Name)
	if !token.IsIdentifier(typeName) || !token.IsExported(typeName) {
		return nil, fmt.Errorf("codegen: template name %q does not form an exported identifier", d.Name)
	}

	markup, err := d.Markup()
	if err != nil {
		return nil, fmt.Errorf("codegen: render descriptor %s: %w", d.Name, err)
	}

	used := make(map[string]string)
	var points []map[string]any
	for _, ref := range d.Points() {
		field := strcase.ToCamel(ref.Name)
		for _, member := range []string{field, field + "Attrs", field + "At", field + "Hit"} {
			if _, reserved := reservedMembers[member]; reserved {
				return nil, fmt.Errorf("codegen: point %q collides with accessor member %s", ref.Name, member)
			}
			if owner, taken := used[member]; taken {
				return nil, fmt.Errorf("codegen: points %q and %q both map to %s", owner, ref.Name, member)
			}
			used[member] = ref.Name
		}
		points = append(points, map[string]any{
			"name":  ref.Name,
			"field": field,
		})
	}
	return map[string]any{
		"name":   d.Name,
		"type":   typeName,
		"lower":  strcase.ToLowerCamel(d.Name),
		"pkg":    pkg,
		"source": filepath.ToSlash(req.Source),
		"markup": markup,
		"points": points,
	}, nil
}
