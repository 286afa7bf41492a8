package report

import "errors"

// Sentinel kinds for summary batch errors.
var (
	// ErrInconsistentMaxScore marks a batch mixing records graded against
	// different maximum scores. Such batches cannot be summarized together.
	ErrInconsistentMaxScore = errors.New("inconsistent max scores across result archives")
)
