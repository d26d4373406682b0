package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoTemplates is returned when a manifest lists no templates.
var ErrNoTemplates = errors.New("manifest: no templates declared")

// Entry describes one accessor to generate.
type Entry struct {
	// Name is the template name. It defaults to the source file stem.
	Name string `yaml:"name,omitempty"`
	// Source is an annotated HTML file, or a YAML descriptor when it ends in
	// .yaml or .yml.
	Source string `yaml:"source"`
	// Package is the Go package of the generated file.
	Package string `yaml:"package"`
	// Output is the generated file path.
	Output string `yaml:"output"`
}

// IsYAML reports whether the entry source is a YAML descriptor.
func (e Entry) IsYAML() bool {
	switch strings.ToLower(filepath.Ext(e.Source)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Manifest lists the accessors generated for a project.
type Manifest struct {
	Templates []Entry `yaml:"templates"`

	// dir is the directory relative paths resolve against.
	dir string
}

// Parse decodes manifest YAML. Relative paths resolve against dir.
func Parse(data []byte, dir string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	m.dir = dir
	for i := range m.Templates {
		m.Templates[i].normalize()
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	return Parse(data, filepath.Dir(path))
}

// LoadOrEmpty is Load, except that a missing file yields an empty manifest
// rooted next to path.
func LoadOrEmpty(path string) (*Manifest, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &Manifest{dir: filepath.Dir(path)}, nil
	}
	m, err := Load(path)
	if errors.Is(err, ErrNoTemplates) {
		return &Manifest{dir: filepath.Dir(path)}, nil
	}
	return m, err
}

// Dir returns the directory relative paths resolve against.
func (m *Manifest) Dir() string {
	return m.dir
}

// Resolve makes p absolute relative to the manifest directory.
func (m *Manifest) Resolve(p string) string {
	if filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

// Validate checks required fields and rejects duplicate names and outputs.
func (m *Manifest) Validate() error {
	if len(m.Templates) == 0 {
		return ErrNoTemplates
	}
	names := make(map[string]int, len(m.Templates))
	outputs := make(map[string]int, len(m.Templates))
	for i, entry := range m.Templates {
		if err := entry.validate(); err != nil {
			return fmt.Errorf("manifest: templates[%d]: %w", i, err)
		}
		if prev, dup := names[entry.Name]; dup {
			return fmt.Errorf("manifest: templates[%d]: name %q already declared by templates[%d]", i, entry.Name, prev)
		}
		names[entry.Name] = i
		out := filepath.Clean(entry.Output)
		if prev, dup := outputs[out]; dup {
			return fmt.Errorf("manifest: templates[%d]: output %q already written by templates[%d]", i, entry.Output, prev)
		}
		outputs[out] = i
	}
	return nil
}

// Add appends entry after validating the result.
func (m *Manifest) Add(entry Entry) error {
	entry.normalize()
	next := &Manifest{Templates: append(append([]Entry(nil), m.Templates...), entry), dir: m.dir}
	if err := next.Validate(); err != nil {
		return err
	}
	m.Templates = next.Templates
	return nil
}

// Save writes the manifest as YAML to path.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", path, err)
	}
	return nil
}

func (e *Entry) normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.Source = strings.TrimSpace(e.Source)
	e.Package = strings.TrimSpace(e.Package)
	e.Output = strings.TrimSpace(e.Output)
	if e.Name == "" && e.Source != "" {
		base := filepath.Base(e.Source)
		e.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
}

func (e Entry) validate() error {
	switch {
	case e.Source == "":
		return errors.New("source is required")
	case e.Package == "":
		return errors.New("package is required")
	case e.Output == "":
		return errors.New("output is required")
	}
	return nil
}
