package registry_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/linear"
	_ "github.com/YuminosukeSato/minisk/pipeline"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	_ "github.com/YuminosukeSato/minisk/preprocessing"
	"github.com/YuminosukeSato/minisk/registry"
)

func names(entries []registry.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestAllEstimators(t *testing.T) {
	tests := []struct {
		name string
		opts []registry.Option
		want []string
	}{
		{"all", nil, []string{"LinReg", "RegressorPipeline", "Scaler"}},
		{"regressors", []registry.Option{registry.WithTypes("regressor")}, []string{"LinReg", "RegressorPipeline"}},
		{"transformers", []registry.Option{registry.WithTypes("transformer")}, []string{"Scaler"}},
		{"both types", []registry.Option{registry.WithTypes("regressor", "transformer")}, []string{"LinReg", "RegressorPipeline", "Scaler"}},
		{
			"filter tags",
			[]registry.Option{registry.WithFilterTags(map[string][]string{"regressor_type": {"linear"}})},
			[]string{"LinReg"},
		},
		{
			"filter tags any value",
			[]registry.Option{registry.WithFilterTags(map[string][]string{"regressor_type": {"linear", "compositor"}})},
			[]string{"LinReg", "RegressorPipeline"},
		},
		{
			"filter tags conjunction",
			[]registry.Option{registry.WithFilterTags(map[string][]string{
				"estimator_type": {"regressor"},
				"regressor_type": {"compositor"},
			})},
			[]string{"RegressorPipeline"},
		},
		{"exclude", []registry.Option{registry.WithExclude("RegressorPipeline", "Scaler")}, []string{"LinReg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := registry.AllEstimators(tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(entries))
		})
	}
}

func TestAllEstimators_UnknownType(t *testing.T) {
	_, err := registry.AllEstimators(registry.WithTypes("classifier"))
	var ve *errors.ValueError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Message, `"classifier"`)
}

func TestAllEstimators_Entries(t *testing.T) {
	entries, err := registry.AllEstimators(registry.WithReturnTags("regressor_type"))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "regressor", entries[0].Type)
	assert.Equal(t, "linear", entries[0].Tags["regressor_type"])
	assert.Equal(t, "compositor", entries[1].Tags["regressor_type"])
	assert.Equal(t, "transformer", entries[2].Type)
	assert.Equal(t, "", entries[2].Tags["regressor_type"])

	est := entries[0].New()
	assert.Equal(t, "LinReg", est.Name())
	assert.False(t, est.IsFitted())

	plain, err := registry.AllEstimators()
	require.NoError(t, err)
	assert.Nil(t, plain[0].Tags)
}

func TestNew(t *testing.T) {
	est, err := registry.New("Scaler")
	require.NoError(t, err)
	assert.Equal(t, "Scaler", est.Name())
	assert.Equal(t, model.EstimatorTypeTransformer, model.KindOf(est))

	_, err = registry.New("Nope")
	assert.True(t, errors.Is(err, errors.ErrUnknownEstimator))
	assert.Contains(t, err.Error(), "LinReg")
}

func TestRegister_Panics(t *testing.T) {
	assert.Panics(t, func() {
		registry.Register("LinReg", func() model.Estimator {
			r, _ := linear.NewLinReg()
			return r
		})
	})
	assert.Panics(t, func() { registry.Register("NilFactory", nil) })
	assert.NotContains(t, registry.Names(), "NilFactory")
}

func TestAllTags(t *testing.T) {
	all, err := registry.AllTags()
	require.NoError(t, err)
	assert.Len(t, all, 5)

	transformer, err := registry.AllTags("transformer")
	require.NoError(t, err)
	var tagNames []string
	for _, info := range transformer {
		tagNames = append(tagNames, info.Name)
	}
	assert.Contains(t, tagNames, "transformer_type")
	assert.NotContains(t, tagNames, "regressor_type")

	_, err = registry.AllTags("clusterer")
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))

	assert.True(t, registry.IsValidTag("estimator_type"))
	assert.False(t, registry.IsValidTag("capability:multioutput"))
}

func TestTable(t *testing.T) {
	entries, err := registry.AllEstimators(registry.WithReturnTags("regressor_type"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, registry.Table(&buf, entries))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"NAME", "TYPE", "REGRESSOR_TYPE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"LinReg", "regressor", "linear"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Scaler", "transformer"}, strings.Fields(lines[3]))

	tags, err := registry.AllTags()
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, registry.TagTable(&buf, tags))
	assert.Contains(t, buf.String(), "estimator_type")
	assert.True(t, strings.HasPrefix(buf.String(), "TAG"))
}
