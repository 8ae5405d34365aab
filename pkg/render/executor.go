package render

// Executor renders a compiled template id for a language. The pongo2 pool
// in render/template/gotemplate implements it.
type Executor interface {
	Execute(lang, id string, data map[string]any) (string, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(lang, id string, data map[string]any) (string, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(lang, id string, data map[string]any) (string, error) {
	return f(lang, id, data)
}
