package export

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	histWidth  = 6 * vg.Inch
	histHeight = 4 * vg.Inch
)

// WriteHistogram renders the score distribution to path (format chosen by
// extension, .png here). maxScore sets the axis range and the bin count:
// one bin per score point.
func WriteHistogram(path string, scores []float64, maxScore float64) error {
	if len(scores) == 0 {
		return ErrNoScores
	}

	values := make(plotter.Values, len(scores))
	copy(values, scores)

	bins := int(math.Ceil(maxScore))
	if bins < 1 {
		bins = 1
	}

	hist, err := plotter.NewHist(values, bins)
	if err != nil {
		return fmt.Errorf("build histogram: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Score distribution"
	p.X.Label.Text = "score"
	p.Y.Label.Text = "students"
	p.X.Min = 0
	if maxScore > 0 {
		p.X.Max = maxScore
	}
	p.Add(hist)

	if err := p.Save(histWidth, histHeight, path); err != nil {
		return fmt.Errorf("save histogram: %w", err)
	}
	return nil
}
