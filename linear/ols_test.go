package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/frame"
	"github.com/YuminosukeSato/minisk/pkg/errors"
)

func mustFrame(t *testing.T, rows [][]float64, columns []string) *frame.Frame {
	t.Helper()
	f, err := frame.FromRows(rows, columns)
	require.NoError(t, err)
	return f
}

func TestFitOLS_ExactlyDetermined(t *testing.T) {
	// y = 2*a - 3*b
	X := mustFrame(t, [][]float64{{1, 0}, {0, 1}}, []string{"a", "b"})
	y := mustFrame(t, [][]float64{{2}, {-3}}, []string{"y"})

	coef, err := FitOLS(X, y)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, coef.Features)
	assert.Equal(t, []string{"y"}, coef.Targets)

	a, err := coef.At("a", "y")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, a, 1e-12)
	b, err := coef.At("b", "y")
	require.NoError(t, err)
	assert.InDelta(t, -3.0, b, 1e-12)

	_, err = coef.At("c", "y")
	assert.Error(t, err)
	_, err = coef.At("a", "z")
	assert.Error(t, err)

	pred, err := PredictOLS(X, coef)
	require.NoError(t, err)
	assert.True(t, pred.EqualApprox(y, 1e-12))
}

func TestFitOLS_Overdetermined(t *testing.T) {
	// y0 = 1*x0 + 2*x1, y1 = -x0 exactly
	rows := [][]float64{{1, 2}, {3, 1}, {0, 4}, {2, 2}, {5, -1}}
	yRows := make([][]float64, len(rows))
	for i, r := range rows {
		yRows[i] = []float64{r[0] + 2*r[1], -r[0]}
	}
	X := mustFrame(t, rows, []string{"x0", "x1"})
	y := mustFrame(t, yRows, []string{"y0", "y1"})

	coef, err := FitOLS(X, y)
	require.NoError(t, err)
	want := mat.NewDense(2, 2, []float64{
		1, -1,
		2, 0,
	})
	assert.True(t, mat.EqualApprox(want, coef.Beta, 1e-10), "beta = %v", mat.Formatted(coef.Beta))
}

func TestFitOLS_RankDeficientMinimumNorm(t *testing.T) {
	// duplicated column: the minimum norm solution splits the weight evenly
	X := mustFrame(t, [][]float64{{1, 1}, {2, 2}, {3, 3}}, []string{"a", "b"})
	y := mustFrame(t, [][]float64{{2}, {4}, {6}}, []string{"y"})

	coef, err := FitOLS(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, coef.Beta.At(0, 0), 1e-10)
	assert.InDelta(t, 1.0, coef.Beta.At(1, 0), 1e-10)
}

func TestFitRidge_Shrinks(t *testing.T) {
	X := mustFrame(t, [][]float64{{1, 0}, {0, 1}, {1, 1}}, []string{"a", "b"})
	y := mustFrame(t, [][]float64{{1}, {2}, {3}}, []string{"y"})

	ols, err := FitRidge(X, y, 0)
	require.NoError(t, err)
	ridge, err := FitRidge(X, y, 10)
	require.NoError(t, err)

	assert.Less(t, mat.Norm(ridge.Beta, 2), mat.Norm(ols.Beta, 2))

	_, err = FitRidge(X, y, -1)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))
	_, err = FitRidge(X, y, math.NaN())
	assert.Error(t, err)
}

func TestFitOLS_Errors(t *testing.T) {
	X := mustFrame(t, [][]float64{{1}, {2}}, nil)

	_, err := FitOLS(X, mat.NewDense(3, 1, nil))
	var dim *errors.DimensionError
	require.True(t, errors.As(err, &dim))
	assert.Equal(t, 0, dim.Axis)

	_, err = FitOLS(mat.NewDense(2, 1, []float64{1, math.NaN()}), mat.NewDense(2, 1, nil))
	var ni *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &ni))

	_, err = FitOLS(&mat.Dense{}, mat.NewDense(2, 1, nil))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestPredictOLS_ColumnMismatch(t *testing.T) {
	X := mustFrame(t, [][]float64{{1, 0}, {0, 1}}, []string{"a", "b"})
	y := mustFrame(t, [][]float64{{1}, {1}}, []string{"y"})
	coef, err := FitOLS(X, y)
	require.NoError(t, err)

	renamed := mustFrame(t, [][]float64{{1, 0}}, []string{"a", "c"})
	_, err = PredictOLS(renamed, coef)
	var cm *errors.ColumnMismatchError
	assert.True(t, errors.As(err, &cm))

	_, err = PredictOLS(X, nil)
	assert.Error(t, err)
}

func TestCoef_Frame(t *testing.T) {
	coef := &Coef{
		Features: []string{"a", "b"},
		Targets:  []string{"y"},
		Beta:     mat.NewDense(2, 1, []float64{1, 2}),
	}
	f, err := coef.Frame()
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, f.Columns())
	assert.Equal(t, 2.0, f.At(1, 0))
}
