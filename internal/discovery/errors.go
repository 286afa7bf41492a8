package discovery

import "errors"

// ErrEmptyExtension is returned when no file extension is given to match
// notebooks against.
var ErrEmptyExtension = errors.New("notebook extension must not be empty")
