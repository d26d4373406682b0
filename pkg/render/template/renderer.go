package template

import (
	"errors"
	"io"
)

// ErrFilterExists is returned by RegisterFilter for a name that is already
// taken. Filters may be process wide, so callers installing shared filters
// treat it as success.
var ErrFilterExists = errors.New("template: filter already registered")

// TemplateRenderer is the seam the source generator renders through. Render
// accepts either a template name or inline template content.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
