package target

import "fmt"

// ConfigurationError reports an invalid target selection. It is returned
// synchronously from configuration setters, before anything is dispatched,
// so the caller can correct the selection and try again.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string { return e.msg }

// newUnsupportedSelector builds the rejection error for a selector kind the
// dispatch layer does not know how to expand.
func newUnsupportedSelector(s Selector) *ConfigurationError {
	return &ConfigurationError{
		msg: fmt.Sprintf("unsupported selector %q (type %T): only tasks and task groups can be launched", s.SelectorName(), s),
	}
}
