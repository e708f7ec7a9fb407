// Package report renders diagnostic charts for fitted regression trees.
package report

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/scitree/pkg/errors"
)

const (
	chartWidth  = 6 * vg.Inch
	chartHeight = 6 * vg.Inch
)

// PredictionPlot builds a scatter of predicted against true targets with the
// identity line y = x for reference.
func PredictionPlot(yTrue, yPred []float64) (*plot.Plot, error) {
	if len(yTrue) != len(yPred) {
		return nil, errors.NewDimensionError("report.PredictionPlot", len(yTrue), len(yPred), 0)
	}
	if len(yTrue) == 0 {
		return nil, errors.NewModelError("report.PredictionPlot", "empty data", errors.ErrEmptyData)
	}

	pts := make(plotter.XYs, len(yTrue))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range yTrue {
		pts[i].X, pts[i].Y = yTrue[i], yPred[i]
		lo = math.Min(lo, math.Min(yTrue[i], yPred[i]))
		hi = math.Max(hi, math.Max(yTrue[i], yPred[i]))
	}

	p := plot.New()
	p.Title.Text = "Predicted vs. true"
	p.X.Label.Text = "true"
	p.Y.Label.Text = "predicted"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "report: scatter")
	}
	scatter.GlyphStyle.Radius = vg.Points(2)

	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return nil, errors.Wrap(err, "report: identity line")
	}
	identity.LineStyle.Color = color.RGBA{R: 200, A: 255}
	identity.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(plotter.NewGrid(), scatter, identity)
	p.Legend.Add("samples", scatter)
	p.Legend.Add("y = x", identity)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// ImportancePlot builds a bar chart of feature importances. names may be nil,
// in which case features are labelled f_0, f_1, ...
func ImportancePlot(importances []float64, names []string) (*plot.Plot, error) {
	if len(importances) == 0 {
		return nil, errors.NewModelError("report.ImportancePlot", "empty data", errors.ErrEmptyData)
	}
	if names == nil {
		names = make([]string, len(importances))
		for i := range names {
			names[i] = fmt.Sprintf("f_%d", i)
		}
	}
	if len(names) != len(importances) {
		return nil, errors.NewDimensionError("report.ImportancePlot", len(importances), len(names), 0)
	}

	p := plot.New()
	p.Title.Text = "Feature importances"
	p.Y.Label.Text = "share of squared error reduction"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(plotter.Values(importances), vg.Points(20))
	if err != nil {
		return nil, errors.Wrap(err, "report: bar chart")
	}
	bars.Color = color.RGBA{B: 180, G: 100, A: 255}
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

// Save writes p to path. The image format follows the file extension
// (png, svg, pdf, ...).
func Save(p *plot.Plot, path string) error {
	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return errors.Wrapf(err, "report: save %s", path)
	}
	return nil
}

// Write renders p to w in the given format, e.g. "png" or "svg".
func Write(p *plot.Plot, w io.Writer, format string) error {
	wt, err := p.WriterTo(chartWidth, chartHeight, format)
	if err != nil {
		return errors.Wrapf(err, "report: %s writer", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "report: render")
	}
	return nil
}
