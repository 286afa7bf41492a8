package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for argument validation. These fail fast, before any
// container is started or any output is written.
var (
	ErrNoEngine           = errors.New("no container engine configured")
	ErrNotFile            = errors.New("not a regular file")
	ErrNotDirectory       = errors.New("not a directory")
	ErrNotFileOrDirectory = errors.New("not a regular file or directory")
)

func pathError(kind error, path string) error {
	return fmt.Errorf("%w: %s", kind, path)
}
