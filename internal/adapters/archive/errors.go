package archive

import "errors"

// Sentinel kinds for archive errors.
var (
	// ErrMissingResultsFile marks an archive without the expected result
	// record member. Such archives are skipped, not fatal.
	ErrMissingResultsFile = errors.New("result record missing from archive")
	ErrBadPattern         = errors.New("invalid archive pattern")
)
