package utils

import (
	"fmt"
)

// Wraps a sentinel error with a formatted detail message. The result matches the
// sentinel with errors.Is, and any %w verb in detailsBody is wrapped too.
func MakeError(err error, detailsBody string, args ...any) error {
	return fmt.Errorf("%w: "+detailsBody, append([]any{err}, args...)...)
}
