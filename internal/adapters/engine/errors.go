package engine

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrUnsupportedBackend = errors.New("unsupported container backend")
	ErrInvocationFailed   = errors.New("engine invocation failed")
)
