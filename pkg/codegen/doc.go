// Package codegen generates typed accessor source for template descriptors.
//
// Each accessor embeds its descriptor as annotated markup, a DTO with one
// content and one attribute field per point, a template type bound to an
// engine.Engine and an instance type with point lookup and hit-test methods.
// Sources are rendered from embedded pongo2 templates and gofmt'ed.
package codegen
