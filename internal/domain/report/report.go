// Package report flattens grading result records into summary rows and
// enforces batch-level consistency.
package report

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/okian/autograde/internal/domain/dedupe"
	"github.com/okian/autograde/internal/domain/model"
)

// Row is one summary line: one team member of one result record.
// Field order is the CSV column order.
type Row struct {
	StudentID           string  `csv:"student_id"`
	LastName            string  `csv:"last_name"`
	FirstName           string  `csv:"first_name"`
	Score               float64 `csv:"score"`
	MaxScore            float64 `csv:"max_score"`
	ResultFile          string  `csv:"result_file"`
	MultipleSubmissions bool    `csv:"multiple_submissions"`
}

// Batch is a consistent, sorted set of summary rows.
type Batch struct {
	rows     []Row
	maxScore float64

	// memberless lists archives whose record carried no team members and
	// therefore contributed no rows.
	memberless []string
}

// Flatten yields one row per (record, team member) pair, in input order.
// The sequence is restartable; the underlying records are static.
func Flatten(archives []model.ScoredArchive) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, a := range archives {
			for _, member := range a.Record.TeamMembers {
				row := Row{
					StudentID:  member.StudentID,
					LastName:   member.LastName,
					FirstName:  member.FirstName,
					Score:      a.Record.Summary.Score,
					MaxScore:   a.Record.Summary.ScoreMax,
					ResultFile: a.ArchivePath,
				}
				if !yield(row) {
					return
				}
			}
		}
	}
}

// Build validates max-score consistency across archives, flattens them
// into rows sorted by ascending score, and flags repeated student IDs.
// Mixing records with differing max scores is a fatal inconsistency; no
// batch is produced.
func Build(ctx context.Context, archives []model.ScoredArchive, tracker dedupe.Tracker) (*Batch, error) {
	distinct := make(map[float64]struct{}, 1)
	for _, a := range archives {
		distinct[a.Record.Summary.ScoreMax] = struct{}{}
	}
	if len(distinct) > 1 {
		values := make([]float64, 0, len(distinct))
		for v := range distinct {
			values = append(values, v)
		}
		sort.Float64s(values)
		return nil, fmt.Errorf("%w: %v", ErrInconsistentMaxScore, values)
	}

	b := &Batch{}
	for v := range distinct {
		b.maxScore = v
	}

	for _, a := range archives {
		if len(a.Record.TeamMembers) == 0 {
			b.memberless = append(b.memberless, a.ArchivePath)
		}
	}

	for row := range Flatten(archives) {
		b.rows = append(b.rows, row)
	}

	sort.SliceStable(b.rows, func(i, j int) bool {
		return b.rows[i].Score < b.rows[j].Score
	})

	for i := range b.rows {
		tracker.SeenAndRecord(ctx, b.rows[i].StudentID)
	}
	for i := range b.rows {
		b.rows[i].MultipleSubmissions = tracker.Count(ctx, b.rows[i].StudentID) > 1
	}

	return b, nil
}

// Rows returns the sorted summary rows.
func (b *Batch) Rows() []Row { return b.rows }

// MaxScore returns the batch-wide maximum score. Zero for an empty batch.
func (b *Batch) MaxScore() float64 { return b.maxScore }

// MemberlessArchives lists archives that contributed no rows because the
// record held no team member information.
func (b *Batch) MemberlessArchives() []string { return b.memberless }

// FirstOccurrenceScores returns the score of the first row per student in
// sorted order. Repeated submissions are dropped so they do not skew the
// score distribution; the CSV keeps every row.
func (b *Batch) FirstOccurrenceScores() []float64 {
	seen := make(map[string]struct{}, len(b.rows))
	scores := make([]float64, 0, len(b.rows))
	for _, row := range b.rows {
		if _, ok := seen[row.StudentID]; ok {
			continue
		}
		seen[row.StudentID] = struct{}{}
		scores = append(scores, row.Score)
	}
	return scores
}
