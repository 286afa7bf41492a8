// Package model contains domain models passed between layers.
package model

// TeamMember identifies one student on a submission.
type TeamMember struct {
	StudentID string `json:"student_id"`
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
}

// Summary carries the aggregate scores of one graded notebook.
type Summary struct {
	Score    float64 `json:"score"`
	ScoreMax float64 `json:"score_max"`
}

// Record is the result record embedded in a result archive, produced by
// the containerized grading run. Consumed read-only. Unknown keys in the
// JSON (unit test details, artifacts, checksums) are ignored.
type Record struct {
	Summary     Summary      `json:"summary"`
	TeamMembers []TeamMember `json:"team_members"`
}

// ScoredArchive pairs a parsed record with the archive it came from.
type ScoredArchive struct {
	Record      Record
	ArchivePath string
}
