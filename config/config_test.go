package config

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/pkg/log"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"MINISK_LOG_LEVEL", "MINISK_LOG_BACKEND", "MINISK_RETURN_TYPE", "MINISK_STORE_PATH"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, BackendZerolog, c.LogBackend)
	assert.Equal(t, "frame", c.ReturnType)
	assert.Equal(t, "minisk.db", c.StorePath)
	assert.Equal(t, log.LevelWarn, c.Level())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MINISK_LOG_LEVEL", "debug")
	t.Setenv("MINISK_RETURN_TYPE", "matrix")
	t.Setenv("MINISK_STORE_PATH", "/tmp/models.db")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, log.LevelDebug, c.Level())
	assert.Equal(t, model.ReturnMatrix, c.Estimator().ReturnType)
	assert.Equal(t, "/tmp/models.db", c.StorePath)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"log level", "MINISK_LOG_LEVEL", "verbose"},
		{"log backend", "MINISK_LOG_BACKEND", "zap"},
		{"return type", "MINISK_RETURN_TYPE", "dataframe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.key, ve.ParamName)
		})
	}
}

func TestApply(t *testing.T) {
	previous := log.GetProvider()
	t.Cleanup(func() {
		log.SetProvider(previous)
		errors.SetZerologWarnFunc(nil)
		require.NoError(t, model.SetDefaultConfig(model.Config{ReturnType: model.ReturnFrame}))
	})

	var buf bytes.Buffer
	c := &Config{LogLevel: "info", ReturnType: "matrix", StorePath: "x.db"}
	require.NoError(t, c.Apply(&buf))
	assert.Equal(t, model.ReturnMatrix, model.DefaultConfig().ReturnType)

	log.GetLoggerWithName("config_test").Info("hello")
	log.GetLogger().Debug("hidden")
	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.NotContains(t, buf.String(), "hidden")

	errors.Warn(errors.NewConstantFeatureWarning("Scaler", "x0", "std"))
	assert.Contains(t, buf.String(), "ConstantFeatureWarning")

	bad := &Config{LogLevel: "info", ReturnType: "bogus", StorePath: "x.db"}
	assert.Error(t, bad.Apply(&buf))
}

func TestApply_SlogBackend(t *testing.T) {
	previous := log.GetProvider()
	t.Cleanup(func() {
		log.SetProvider(previous)
		errors.SetZerologWarnFunc(nil)
		require.NoError(t, model.SetDefaultConfig(model.Config{ReturnType: model.ReturnFrame}))
	})

	var buf bytes.Buffer
	c := &Config{LogLevel: "info", LogBackend: BackendSlog, ReturnType: "frame", StorePath: "x.db"}
	require.NoError(t, c.Apply(&buf))
	assert.IsType(t, &log.SlogProvider{}, log.GetProvider())

	log.GetLoggerWithName("config_test").Info("hello")
	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.Contains(t, buf.String(), `"ml.component":"config_test"`)

	errors.Warn(errors.NewConstantFeatureWarning("Scaler", "x0", "std"))
	assert.Contains(t, buf.String(), "ConstantFeatureWarning")
}
