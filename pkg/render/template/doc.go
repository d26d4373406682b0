// Package template defines the text template seam used to produce accessor
// source files. The pongo2 implementation lives in template/gotemplate.
package template
