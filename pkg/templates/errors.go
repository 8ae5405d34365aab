package templates

import (
	"errors"
	"fmt"
)

// ErrTemplate is returned for malformed sources, unknown extend or include
// targets, id collisions, unknown patch actions and unresolvable patches.
var ErrTemplate = errors.New("template error")

func templateErrorf(format string, args ...any) error {
	return fmt.Errorf("templates: %w: %s", ErrTemplate, fmt.Sprintf(format, args...))
}
