package model

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/pkg/errors"
)

func TestStateManager(t *testing.T) {
	s := NewStateManager()
	assert.NotEmpty(t, s.ID())
	assert.NotEqual(t, s.ID(), NewStateManager().ID())
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("LinReg", "Predict")
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))

	features := []string{"a", "b"}
	s.SetFitted(features, []string{"y"}, 10)
	features[0] = "changed"

	assert.True(t, s.IsFitted())
	assert.NoError(t, s.RequireFitted("LinReg", "Predict"))
	assert.Equal(t, []string{"a", "b"}, s.FeatureNames())
	nFeatures, nSamples := s.GetDimensions()
	assert.Equal(t, 2, nFeatures)
	assert.Equal(t, 10, nSamples)

	state := s.GetState()
	s.Reset()
	assert.False(t, s.IsFitted())
	assert.Empty(t, s.FeatureNames())

	s.SetState(state)
	assert.True(t, s.IsFitted())
	assert.Equal(t, []string{"y"}, s.TargetNames())
}

func TestStateManager_Concurrent(t *testing.T) {
	s := NewStateManager()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetFitted([]string{"a"}, nil, 1)
		}()
		go func() {
			defer wg.Done()
			_ = s.IsFitted()
			_ = s.FeatureNames()
		}()
	}
	wg.Wait()
	assert.True(t, s.IsFitted())
}

func TestTags(t *testing.T) {
	base := RegressorTags()
	assert.Equal(t, EstimatorTypeRegressor, base[TagEstimatorType])

	merged := base.Merge(Tags{TagRegressorType: "linear"})
	assert.Equal(t, "linear", merged[TagRegressorType])
	_, ok := base.Get(TagRegressorType)
	assert.False(t, ok, "Merge must not modify the receiver")

	assert.Equal(t, []string{TagEstimatorType, TagRegressorType}, merged.Keys())
	assert.Equal(t, EstimatorTypeTransformer, TransformerTags()[TagEstimatorType])
	assert.Equal(t, EstimatorTypeEstimator, EstimatorTags()[TagEstimatorType])
}

func TestDefaultConfig(t *testing.T) {
	previous := DefaultConfig()
	defer func() { require.NoError(t, SetDefaultConfig(previous)) }()

	assert.Equal(t, ReturnFrame, previous.ReturnType)
	require.NoError(t, SetDefaultConfig(Config{ReturnType: ReturnMatrix}))
	assert.Equal(t, ReturnMatrix, DefaultConfig().ReturnType)

	assert.Error(t, SetDefaultConfig(Config{ReturnType: "numpy"}))
	assert.Equal(t, ReturnMatrix, DefaultConfig().ReturnType)
}

func TestParamHelpers(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    float64
		wantErr bool
	}{
		{"float64", 0.5, 0.5, false},
		{"int", 2, 2, false},
		{"int64", int64(3), 3, false},
		{"string", "1.5", 1.5, false},
		{"bad string", "abc", 0, true},
		{"bool", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParamFloat("shrink", tt.value)
			if tt.wantErr {
				var ve *errors.ValidationError
				assert.True(t, errors.As(err, &ve))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	s, err := ParamString("strategy", "std")
	require.NoError(t, err)
	assert.Equal(t, "std", s)
	_, err = ParamString("strategy", 1)
	assert.Error(t, err)

	err = UnknownParam("LinReg", "alpha", []string{"shrink"})
	assert.Contains(t, err.Error(), `invalid parameter "alpha"`)
}

func TestFormatRepr(t *testing.T) {
	assert.Equal(t, "LinReg(shrink=0)", FormatRepr("LinReg", map[string]interface{}{"shrink": 0.0}))
	assert.Equal(t, `Scaler(strategy="minmax")`, FormatRepr("Scaler", map[string]interface{}{"strategy": "minmax"}))
	assert.Equal(t, "P(a=0.25)", FormatRepr("P", map[string]interface{}{"a": 0.25, "step__a": 1.0}))
}

func fittedWeights() *ModelWeights {
	w := NewModelWeights("LinReg", map[string]interface{}{"shrink": 0.0})
	w.FeatureNames = []string{"a", "b"}
	w.TargetNames = []string{"y"}
	w.SetAttribute("beta", mat.NewDense(2, 1, []float64{1.5, -2}))
	w.IsFitted = true
	return w
}

func TestModelWeights_Validate(t *testing.T) {
	assert.NoError(t, fittedWeights().Validate())

	tests := []struct {
		name   string
		mutate func(w *ModelWeights)
	}{
		{"missing type", func(w *ModelWeights) { w.ModelType = "" }},
		{"bad version", func(w *ModelWeights) { w.Version = "0" }},
		{"unfitted with attributes", func(w *ModelWeights) { w.IsFitted = false }},
		{"fitted without attributes", func(w *ModelWeights) { w.Attributes = nil }},
		{"bad shape", func(w *ModelWeights) { w.Attributes["beta"].Rows = 3 }},
		{"bad component", func(w *ModelWeights) {
			w.Components = []ComponentWeights{{Name: "step", Weights: &ModelWeights{}}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := fittedWeights()
			tt.mutate(w)
			assert.Error(t, w.Validate())
		})
	}
}

func TestModelWeights_CloneIsDeep(t *testing.T) {
	w := fittedWeights()
	w.Components = []ComponentWeights{{Name: "inner", Weights: fittedWeights()}}
	clone := w.Clone()

	w.Attributes["beta"].Data[0] = 100
	w.Hyperparameters["shrink"] = 1.0
	w.Components[0].Weights.FeatureNames[0] = "changed"

	beta, err := clone.Attribute("beta")
	require.NoError(t, err)
	assert.Equal(t, 1.5, beta.At(0, 0))
	assert.Equal(t, 0.0, clone.Hyperparameters["shrink"])
	assert.Equal(t, "a", clone.Components[0].Weights.FeatureNames[0])

	_, err = clone.Attribute("missing")
	assert.Error(t, err)
}

func TestPersistence(t *testing.T) {
	w := fittedWeights()

	var buf bytes.Buffer
	require.NoError(t, WriteWeights(&buf, w))
	got, err := ReadWeights(&buf)
	require.NoError(t, err)
	assert.Equal(t, w.FeatureNames, got.FeatureNames)
	beta, err := got.Attribute("beta")
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewDense(2, 1, []float64{1.5, -2}), beta))

	path := filepath.Join(t.TempDir(), "weights.json")
	require.NoError(t, SaveWeights(path, w))
	loaded, err := LoadWeights(path)
	require.NoError(t, err)
	assert.Equal(t, "LinReg", loaded.ModelType)

	_, err = LoadWeights(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	assert.Error(t, WriteWeights(&buf, &ModelWeights{}))
	_, err = ReadWeights(bytes.NewBufferString("{not json"))
	assert.Error(t, err)
}
