// Package export writes summary artifacts: the CSV report and the score
// distribution plot.
package export

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/okian/autograde/internal/domain/report"
)

// WriteCSV writes the batch rows to path. Columns follow the csv tags on
// report.Row; no index column is emitted. An empty batch still produces
// the header line.
func WriteCSV(path string, rows []report.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("write summary file: %w", err)
	}
	return nil
}
