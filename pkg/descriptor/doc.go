// Package descriptor defines the structural template definitions that engines
// register: a root element tree with named insertion points. Descriptors are
// parsed from annotated HTML (elements carrying x-id) or loaded from YAML.
package descriptor
