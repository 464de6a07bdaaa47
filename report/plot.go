package report

import (
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/descent/core/training"
	"github.com/YuminosukeSato/descent/pkg/errors"
)

// Plot size.
const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

var curveColors = map[string]color.Color{
	training.KeyTrainCost:  color.RGBA{R: 31, G: 119, B: 180, A: 255},
	training.KeyValCost:    color.RGBA{R: 255, G: 127, B: 14, A: 255},
	training.KeyTrainScore: color.RGBA{R: 44, G: 160, B: 44, A: 255},
	training.KeyValScore:   color.RGBA{R: 214, G: 39, B: 40, A: 255},
}

// LearningCurvePlot returns a plot of the epoch cost curves, or of the
// score curves when scores is true.
func LearningCurvePlot(run Run, scores bool) (*plot.Plot, error) {
	keys := []string{training.KeyTrainCost, training.KeyValCost}
	ylabel := "Cost"
	if scores {
		keys = []string{training.KeyTrainScore, training.KeyValScore}
		ylabel = "Score"
		if run.Scorer != "" {
			ylabel = "Score (" + run.Scorer + ")"
		}
	}

	p := plot.New()
	p.Title.Text = run.Task + " learning curve"
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	added := 0
	for _, key := range keys {
		values, ok := run.History.Epoch(key)
		if !ok || len(values) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(values))
		for i, v := range values {
			pts[i].X = float64(i + 1)
			pts[i].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "plotting %s", key)
		}
		line.Color = curveColors[key]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(key, line)
		added++
	}
	if added == 0 {
		return nil, errors.NewValueError("LearningCurvePlot", "history has no "+strings.ToLower(ylabel)+" values")
	}
	p.Legend.Top = true
	return p, nil
}

// LearningCurve saves the cost curves to path. The image format follows
// the file extension (png, svg, pdf, ...).
func LearningCurve(run Run, path string) error {
	p, err := LearningCurvePlot(run, false)
	if err != nil {
		return err
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return errors.Wrapf(err, "saving learning curve to %s", filepath.Base(path))
	}
	return nil
}

// WriteLearningCurve encodes the cost curves to w in format.
func WriteLearningCurve(w io.Writer, run Run, format string) error {
	p, err := LearningCurvePlot(run, false)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, format)
	if err != nil {
		return errors.Wrap(err, "encoding learning curve")
	}
	_, err = wt.WriteTo(w)
	return errors.WithStack(err)
}
