package plotting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/pkg/errors"
)

func TestPredictionScatter(t *testing.T) {
	yTrue := mat.NewDense(4, 2, []float64{1, 10, 2, 20, 3, 30, 4, 40})
	yPred := mat.NewDense(4, 2, []float64{1.1, 9, 1.8, 21, 3.2, 29, 3.9, 41})

	p, err := NewPredictionScatter(yTrue, yPred, 1, "fit")
	require.NoError(t, err)
	assert.Equal(t, "fit", p.Title.Text)
	assert.Equal(t, "Actual", p.X.Label.Text)

	path := filepath.Join(t.TempDir(), "scatter.png")
	require.NoError(t, PredictionScatter(yTrue, yPred, 0, "fit", path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPredictionScatter_Errors(t *testing.T) {
	yTrue := mat.NewDense(2, 1, []float64{1, 2})

	_, err := NewPredictionScatter(yTrue, mat.NewDense(3, 1, nil), 0, "")
	var de *errors.DimensionError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 0, de.Axis)

	_, err = NewPredictionScatter(yTrue, mat.NewDense(2, 2, nil), 0, "")
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, de.Axis)

	_, err = NewPredictionScatter(yTrue, yTrue, 1, "")
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))
}

func TestResidualHistogram(t *testing.T) {
	yTrue := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	yPred := mat.NewDense(5, 1, []float64{1.5, 1.5, 3, 4.2, 4.9})

	path := filepath.Join(t.TempDir(), "residuals.svg")
	require.NoError(t, ResidualHistogram(yTrue, yPred, 0, 3, "residuals", path))
	_, err := os.Stat(path)
	assert.NoError(t, err)

	_, err = NewResidualHistogram(yTrue, yPred, 0, 0, "")
	var vle *errors.ValidationError
	assert.True(t, errors.As(err, &vle))
}
