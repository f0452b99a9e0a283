package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mserrors "github.com/YuminosukeSato/minisk/pkg/errors"
)

func TestTestLogger_CapturesFields(t *testing.T) {
	logger, _ := NewTestLogger(LevelInfo)

	logger.Debug("skipped")
	logger.With(ModelNameKey, "Scaler").Info("transform", SamplesKey, 3)

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.True(t, logger.ContainsMessage("transform"))
	assert.True(t, logger.ContainsField(ModelNameKey, "Scaler"))
	assert.True(t, logger.ContainsField(SamplesKey, 3.0))
	assert.False(t, logger.ContainsMessage("skipped"))
}

func TestTestLogger_ErrorLeadingArgument(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)
	logger.Error("fit failed", mserrors.NewValueError("Fit", "bad input"), OperationKey, OperationFit)

	assert.True(t, logger.ContainsField("error", "minisk: Fit: bad input"))
	assert.True(t, logger.ContainsField(OperationKey, OperationFit))
}

func TestTestLoggerProvider_SetLevelShared(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelError)
	named := provider.GetLoggerWithName("registry")

	named.Info("before")
	assert.Empty(t, buffer.String())

	provider.SetLevel(LevelInfo)
	named.Info("after")
	assert.True(t, provider.Logger().ContainsField(ComponentKey, "registry"))
	assert.True(t, named.Enabled(context.Background(), LevelInfo))

	provider.Logger().Clear()
	assert.Empty(t, buffer.String())
}
