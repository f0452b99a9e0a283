package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/frame"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/pkg/log"
)

// meanRegressor predicts the column means of y seen in fit.
type meanRegressor struct {
	*BaseRegressor
	means   []float64
	failFit bool
}

func newMeanRegressor() *meanRegressor {
	r := &meanRegressor{}
	r.BaseRegressor = NewBaseRegressor("MeanRegressor", r)
	return r
}

func (r *meanRegressor) FitFrame(X, y *frame.Frame) error {
	if r.failFit {
		return errors.New("fit failed on purpose")
	}
	_, c := y.Dims()
	r.means = make([]float64, c)
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, y)
		for _, v := range col {
			r.means[j] += v
		}
		r.means[j] /= float64(len(col))
	}
	return nil
}

func (r *meanRegressor) PredictFrame(X *frame.Frame) (*mat.Dense, error) {
	out := mat.NewDense(X.Len(), len(r.means), nil)
	for i := 0; i < X.Len(); i++ {
		out.SetRow(i, r.means)
	}
	return out, nil
}

// identityTransformer returns its input.
type identityTransformer struct {
	*BaseTransformer
}

func newIdentityTransformer() *identityTransformer {
	t := &identityTransformer{}
	t.BaseTransformer = NewBaseTransformer("Identity", t)
	return t
}

func (t *identityTransformer) FitFrame(X *frame.Frame) error { return nil }

func (t *identityTransformer) TransformFrame(X *frame.Frame) (*frame.Frame, error) {
	return X, nil
}

func trainingData(t *testing.T) (*frame.Frame, *frame.Frame) {
	t.Helper()
	X, err := frame.New(mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6}), []string{"a", "b"}, []int{10, 11, 12})
	require.NoError(t, err)
	y, err := frame.New(mat.NewDense(3, 1, []float64{1, 2, 3}), []string{"target"}, []int{10, 11, 12})
	require.NoError(t, err)
	return X, y
}

func TestBaseRegressor_FitPredict(t *testing.T) {
	X, y := trainingData(t)
	r := newMeanRegressor()
	assert.False(t, r.IsFitted())

	require.NoError(t, r.Fit(X, y))
	assert.True(t, r.IsFitted())
	assert.Equal(t, []string{"a", "b"}, r.FeatureNames())
	assert.Equal(t, []string{"target"}, r.TargetNames())

	Xtest, err := frame.New(mat.NewDense(2, 2, nil), []string{"a", "b"}, []int{42, 43})
	require.NoError(t, err)

	pred, err := r.Predict(Xtest)
	require.NoError(t, err)
	pf, ok := pred.(*frame.Frame)
	require.True(t, ok)
	assert.Equal(t, []int{42, 43}, pf.Index())
	assert.Equal(t, []string{"target"}, pf.Columns())
	assert.Equal(t, 2.0, pf.At(1, 0))
}

func TestBaseRegressor_Errors(t *testing.T) {
	X, y := trainingData(t)

	t.Run("not fitted", func(t *testing.T) {
		r := newMeanRegressor()
		_, err := r.Predict(X)
		var nf *errors.NotFittedError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "MeanRegressor", nf.ModelName)
		assert.Equal(t, "Predict", nf.Method)
	})

	t.Run("row mismatch", func(t *testing.T) {
		r := newMeanRegressor()
		short, err := y.Rows([]int{0, 1})
		require.NoError(t, err)
		err = r.Fit(X, short)
		var dim *errors.DimensionError
		require.True(t, errors.As(err, &dim))
		assert.Equal(t, 0, dim.Axis)
		assert.Equal(t, 3, dim.Expected)
		assert.Equal(t, 2, dim.Got)
		assert.False(t, r.IsFitted())
	})

	t.Run("column mismatch", func(t *testing.T) {
		r := newMeanRegressor()
		require.NoError(t, r.Fit(X, y))
		swapped, err := X.Select([]string{"b", "a"})
		require.NoError(t, err)

		_, err = r.Predict(swapped)
		var cm *errors.ColumnMismatchError
		require.True(t, errors.As(err, &cm))
		assert.Equal(t, []string{"a", "b"}, cm.Expected)
		assert.Equal(t, []string{"b", "a"}, cm.Got)
	})

	t.Run("failed fit leaves estimator unfitted", func(t *testing.T) {
		r := newMeanRegressor()
		require.NoError(t, r.Fit(X, y))
		r.failFit = true
		assert.Error(t, r.Fit(X, y))
		assert.False(t, r.IsFitted())
	})
}

func TestBaseRegressor_PlainMatrices(t *testing.T) {
	r := newMeanRegressor()
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	y := mat.NewDense(2, 1, []float64{4, 6})
	require.NoError(t, r.Fit(X, y))
	assert.Equal(t, []string{"0", "1"}, r.FeatureNames())

	pred, err := r.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 5.0, pred.At(0, 0))
}

func TestBaseRegressor_ReturnType(t *testing.T) {
	X, y := trainingData(t)
	r := newMeanRegressor()
	require.NoError(t, r.Fit(X, y))

	require.NoError(t, r.SetConfig(Config{ReturnType: ReturnMatrix}))
	pred, err := r.Predict(X)
	require.NoError(t, err)
	_, isDense := pred.(*mat.Dense)
	assert.True(t, isDense)

	err = r.SetConfig(Config{ReturnType: "pandas"})
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, ReturnMatrix, r.GetConfig().ReturnType)

	clone := newMeanRegressor()
	r.CopyConfigTo(clone.BaseRegressor)
	assert.Equal(t, ReturnMatrix, clone.GetConfig().ReturnType)
}

func TestRender_UnknownReturnType(t *testing.T) {
	X, _ := trainingData(t)
	_, err := Render(X, Config{ReturnType: "numpy"})
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))
}

func TestBaseRegressor_Logging(t *testing.T) {
	previous := log.GetProvider()
	defer log.SetProvider(previous)
	provider, _ := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(provider)

	X, y := trainingData(t)
	r := newMeanRegressor()
	require.NoError(t, r.Fit(X, y))

	logger := provider.Logger()
	assert.True(t, logger.ContainsMessage("fit finished"))
	assert.True(t, logger.ContainsField(log.ModelNameKey, "MeanRegressor"))
	assert.True(t, logger.ContainsField(log.EstimatorIDKey, r.ID()))
	assert.True(t, logger.ContainsField(log.SamplesKey, 3.0))
}

func TestBaseTransformer(t *testing.T) {
	X, _ := trainingData(t)
	tr := newIdentityTransformer()

	_, err := tr.Transform(X)
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Transform", nf.Method)

	out, err := tr.FitTransform(X)
	require.NoError(t, err)
	assert.True(t, X.Equal(out.(*frame.Frame)))
	assert.Empty(t, tr.TargetNames())

	other, err := frame.New(mat.NewDense(3, 2, nil), []string{"a", "c"}, nil)
	require.NoError(t, err)
	_, err = tr.Transform(other)
	var cm *errors.ColumnMismatchError
	assert.True(t, errors.As(err, &cm))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, EstimatorTypeRegressor, KindOf(&testRegressorEstimator{newMeanRegressor()}))
	assert.Equal(t, EstimatorTypeTransformer, KindOf(&testTransformerEstimator{newIdentityTransformer()}))
}

// testRegressorEstimator completes meanRegressor to a full Regressor.
type testRegressorEstimator struct{ *meanRegressor }

func (e *testRegressorEstimator) GetParams(bool) map[string]interface{} {
	return map[string]interface{}{}
}
func (e *testRegressorEstimator) SetParams(map[string]interface{}) error { return nil }
func (e *testRegressorEstimator) Clone() Estimator {
	return &testRegressorEstimator{newMeanRegressor()}
}
func (e *testRegressorEstimator) Tags() Tags { return RegressorTags() }

type testTransformerEstimator struct{ *identityTransformer }

func (e *testTransformerEstimator) GetParams(bool) map[string]interface{} {
	return map[string]interface{}{}
}
func (e *testTransformerEstimator) SetParams(map[string]interface{}) error { return nil }
func (e *testTransformerEstimator) Clone() Estimator {
	return &testTransformerEstimator{newIdentityTransformer()}
}
func (e *testTransformerEstimator) Tags() Tags { return TransformerTags() }
