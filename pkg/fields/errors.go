package fields

import (
	"errors"
	"fmt"
)

// ErrField reports a field that cannot be built or rendered.
var ErrField = errors.New("field error")

func fieldErrorf(format string, args ...any) error {
	return fmt.Errorf("fields: %w: %s", ErrField, fmt.Sprintf(format, args...))
}
