package launch

import "fmt"

// BuildError is the domain failure delivered for every backend-reported
// build failure: via the caller's OnFailure in non-blocking mode, as the
// return error of Run in blocking mode. The message names the backend; the
// original cause is preserved for unwrapping.
type BuildError struct {
	// Backend is the display name of the backend the build ran against.
	Backend string

	cause error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("Could not execute build using %s.", e.Backend)
}

// Unwrap exposes the original backend failure.
func (e *BuildError) Unwrap() error { return e.cause }
