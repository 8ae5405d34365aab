package template

import "io"

// Renderer renders template ids, or inline content, with a data map.
// Includes inside a template resolve by id.
type Renderer interface {
	RenderTemplate(id string, data map[string]any, out ...io.Writer) (string, error)
	RenderString(content string, data map[string]any, out ...io.Writer) (string, error)
	Forget(ids ...string)
}
