package descriptor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML decodes and validates a descriptor declared in YAML.
func LoadYAML(data []byte) (Descriptor, error) {
	return LoadYAMLAs("", data)
}

// LoadYAMLAs decodes a YAML descriptor and names it name before validating.
// An empty name keeps the one declared in the document. Element nodes written
// with a text field get that text as their first child.
func LoadYAMLAs(name string, data []byte) (Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("descriptor: decode yaml: %w", err)
	}
	if name != "" {
		d.Name = name
	}
	d.Root = hoistText(d.Root)
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// LoadYAMLFile reads path and decodes it with LoadYAML.
func LoadYAMLFile(path string) (Descriptor, error) {
	return LoadYAMLFileAs("", path)
}

// LoadYAMLFileAs reads path and decodes it with LoadYAMLAs.
func LoadYAMLFileAs(name, path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("descriptor: read %s: %w", path, err)
	}
	return LoadYAMLAs(name, data)
}

func hoistText(n Node) Node {
	for i, child := range n.Children {
		n.Children[i] = hoistText(child)
	}
	if !n.IsElement() || n.Text == "" {
		return n
	}
	n.Children = append([]Node{{Text: n.Text}}, n.Children...)
	n.Text = ""
	return n
}
