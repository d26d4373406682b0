// Package htmlengine implements engine.Engine on top of golang.org/x/net/html.
//
// Templates are registered as descriptors. BuildHTML renders a descriptor with
// point substitutions, CreateElement parses the result into a detached element
// tree, and GetPoint/GetLocation match a rendered tree back against the
// descriptor to find insertion points or hit-test elements. Points given a
// slice value repeat once per item; the occurrence index selects among them.
package htmlengine
