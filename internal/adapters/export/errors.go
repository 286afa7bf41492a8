package export

import "errors"

// Sentinel kinds for export errors.
var (
	// ErrNoScores marks a histogram request with no data points; the plot
	// is skipped rather than rendered empty.
	ErrNoScores = errors.New("no scores to plot")
)
