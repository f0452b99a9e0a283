// Package plotting renders regression diagnostics with gonum/plot.
package plotting

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// Size is the width and height of saved figures.
const Size = 4 * vg.Inch

func columnPair(op string, yTrue, yPred mat.Matrix, column int) ([]float64, []float64, error) {
	rt, ct := yTrue.Dims()
	rp, cp := yPred.Dims()
	if rt != rp {
		return nil, nil, errors.NewDimensionError(op, rt, rp, 0)
	}
	if ct != cp {
		return nil, nil, errors.NewDimensionError(op, ct, cp, 1)
	}
	if column < 0 || column >= ct {
		return nil, nil, errors.NewValueError(op, fmt.Sprintf("column %d out of range [0, %d)", column, ct))
	}
	return mat.Col(nil, column, yTrue), mat.Col(nil, column, yPred), nil
}

// NewPredictionScatter plots predicted against actual values of one target
// column, with the identity line y = x for reference.
func NewPredictionScatter(yTrue, yPred mat.Matrix, column int, title string) (*plot.Plot, error) {
	actual, predicted, err := columnPair("plotting.PredictionScatter", yTrue, yPred, column)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Actual"
	p.Y.Label.Text = "Predicted"

	pts := make(plotter.XYs, len(actual))
	for i := range actual {
		pts[i].X = actual[i]
		pts[i].Y = predicted[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "plotting: scatter")
	}
	s.GlyphStyle.Color = color.RGBA{R: 50, G: 50, B: 255, A: 255}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(s)

	lo := math.Min(floats.Min(actual), floats.Min(predicted))
	hi := math.Max(floats.Max(actual), floats.Max(predicted))
	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return nil, errors.Wrap(err, "plotting: identity line")
	}
	identity.Color = color.RGBA{R: 255, A: 255}
	identity.LineStyle.Width = vg.Points(1)
	identity.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(identity)
	p.Add(plotter.NewGrid())
	return p, nil
}

// PredictionScatter saves NewPredictionScatter to path. The image format
// follows the file extension (.png, .svg, .pdf, ...).
func PredictionScatter(yTrue, yPred mat.Matrix, column int, title, path string) error {
	p, err := NewPredictionScatter(yTrue, yPred, column, title)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Save(Size, Size, path), "plotting: save %s", path)
}

// NewResidualHistogram plots the distribution of yTrue - yPred for one
// target column.
func NewResidualHistogram(yTrue, yPred mat.Matrix, column, bins int, title string) (*plot.Plot, error) {
	actual, predicted, err := columnPair("plotting.ResidualHistogram", yTrue, yPred, column)
	if err != nil {
		return nil, err
	}
	if bins < 1 {
		return nil, errors.NewValidationError("bins", "must be positive", bins)
	}

	residuals := make(plotter.Values, len(actual))
	floats.SubTo(residuals, actual, predicted)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Residual"
	p.Y.Label.Text = "Count"
	h, err := plotter.NewHist(residuals, bins)
	if err != nil {
		return nil, errors.Wrap(err, "plotting: histogram")
	}
	p.Add(h)
	return p, nil
}

// ResidualHistogram saves NewResidualHistogram to path.
func ResidualHistogram(yTrue, yPred mat.Matrix, column, bins int, title, path string) error {
	p, err := NewResidualHistogram(yTrue, yPred, column, bins, title)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Save(Size, Size, path), "plotting: save %s", path)
}
