package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-tardigrade/pkg/render/template"
)

// ErrNoSource is returned by New when no directory or fs.FS was given.
var ErrNoSource = errors.New("gotemplate: no template source configured")

const defaultExtension = ".tpl"

// Option configures a Renderer.
type Option func(*settings)

type settings struct {
	sources []source
	ext     string
	globals pongo2.Context
}

// source is one place templates are looked up. Sources are searched in the
// order they were added, so a directory added before an fs.FS overrides it.
type source struct {
	dir   string
	files fs.FS
}

func (s source) loader() (pongo2.TemplateLoader, error) {
	if s.files != nil {
		return pongo2.NewFSLoader(s.files), nil
	}
	loader, err := pongo2.NewLocalFileSystemLoader(s.dir)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: template dir %s: %w", s.dir, err)
	}
	return loader, nil
}

// WithBaseDir adds a directory on disk to the template search path.
func WithBaseDir(dir string) Option {
	return func(s *settings) {
		if dir = strings.TrimSpace(dir); dir != "" {
			s.sources = append(s.sources, source{dir: dir})
		}
	}
}

// WithFS adds files to the template search path.
func WithFS(files fs.FS) Option {
	return func(s *settings) {
		if files != nil {
			s.sources = append(s.sources, source{files: files})
		}
	}
}

// WithExtension sets the suffix appended to template names that lack it.
func WithExtension(ext string) Option {
	return func(s *settings) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if ext[0] != '.' {
			ext = "." + ext
		}
		s.ext = ext
	}
}

// WithGlobalData adds values visible to every template.
func WithGlobalData(data map[string]any) Option {
	return func(s *settings) {
		for key, value := range data {
			s.globals[key] = value
		}
	}
}

// Renderer renders pongo2 templates found in its sources.
type Renderer struct {
	set *pongo2.TemplateSet
	ext string

	// mu guards set.Globals and the parsed template cache.
	mu     sync.RWMutex
	parsed map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Renderer)(nil)

// New builds a Renderer over the configured sources.
func New(options ...Option) (*Renderer, error) {
	s := &settings{ext: defaultExtension, globals: pongo2.Context{}}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if len(s.sources) == 0 {
		return nil, ErrNoSource
	}

	loaders := make([]pongo2.TemplateLoader, 0, len(s.sources))
	for _, src := range s.sources {
		loader, err := src.loader()
		if err != nil {
			return nil, err
		}
		loaders = append(loaders, loader)
	}

	set := pongo2.NewSet("tardigrade", loaders...)
	set.Globals.Update(s.globals)
	return &Renderer{set: set, ext: s.ext, parsed: make(map[string]*pongo2.Template)}, nil
}

// Render renders inline content when name holds template tags and the named
// template otherwise.
func (r *Renderer) Render(name string, data any, out ...io.Writer) (string, error) {
	if isInline(name) {
		return r.RenderString(name, data, out...)
	}
	return r.RenderTemplate(name, data, out...)
}

// RenderTemplate renders the template called name. The configured extension
// is appended when name does not already end with it.
func (r *Renderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if !strings.HasSuffix(name, r.ext) {
		name += r.ext
	}
	tmpl, err := r.lookup(name)
	if err != nil {
		return "", err
	}
	return r.run(tmpl, name, data, out)
}

// RenderString parses content as a template and renders it.
func (r *Renderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tmpl, err := r.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse inline template: %w", err)
	}
	return r.run(tmpl, "inline template", data, out)
}

// RegisterFilter installs fn as a pongo2 filter. pongo2 filters are process
// wide; a taken name yields template.ErrFilterExists.
func (r *Renderer) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter needs a name and a function")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: %q: %w", name, template.ErrFilterExists)
	}
	return pongo2.RegisterFilter(name, adaptFilter(name, fn))
}

// GlobalContext adds the entries of data, a map, to the values every
// template sees.
func (r *Renderer) GlobalContext(data any) error {
	ctx, err := contextOf(data)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.set.Globals.Update(ctx)
	return nil
}

func (r *Renderer) lookup(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.parsed[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %s: %w", name, err)
	}
	r.mu.Lock()
	if cached, ok := r.parsed[name]; ok {
		tmpl = cached
	} else {
		r.parsed[name] = tmpl
	}
	r.mu.Unlock()
	return tmpl, nil
}

func (r *Renderer) run(tmpl *pongo2.Template, label string, data any, out []io.Writer) (string, error) {
	ctx, err := contextOf(data)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	r.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	r.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("gotemplate: render %s: %w", label, err)
	}

	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", fmt.Errorf("gotemplate: write %s: %w", label, err)
		}
	}
	return buf.String(), nil
}

func adaptFilter(name string, fn func(input any, param any) (any, error)) pongo2.FilterFunction {
	return func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		v, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(v), nil
	}
}

func isInline(name string) bool {
	return strings.Contains(name, "{{") || strings.Contains(name, "{%")
}

func contextOf(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	}
	return nil, fmt.Errorf("gotemplate: data must be a map, got %T", data)
}
