package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aecstation/costmap/pkg/logging"
)

func TestNewWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf).Level(zerolog.InfoLevel)

	logger.Info().Str("budget", "estimate.bc3").Msg("parsing budget file")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "estimate.bc3", entry["budget"])
	assert.Equal(t, "parsing budget file", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestPackageLevelHelpers(t *testing.T) {
	var buf bytes.Buffer
	prev := *logging.Default()
	prevLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logging.SetDefault(logging.New(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() {
		logging.SetDefault(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})

	logging.Debug().Msg("parsing budget")
	logging.Info().Msg("catalogs reconciled")
	logging.Warn().Msg("malformed record skipped")
	logging.Err(assert.AnError).Msg("run failed")

	out := buf.String()
	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.Contains(t, out, `"level":"`+level+`"`)
	}
	assert.Contains(t, out, assert.AnError.Error())
}

func TestNopDiscardsEverything(t *testing.T) {
	assert.Equal(t, zerolog.Disabled, logging.Nop.GetLevel())
}

func TestContextRoundTrip(t *testing.T) {
	t.Run("WithLoggerStoresAndFromContextReturns", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf)

		ctx := logging.WithLogger(context.Background(), &logger)
		got := logging.FromContext(ctx)
		require.NotNil(t, got)
		assert.Equal(t, &logger, got)
	})

	t.Run("FromContextFallsBackToDefault", func(t *testing.T) {
		assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
		assert.Equal(t, logging.Default(), logging.FromContext(nil)) //nolint:staticcheck
	})

	t.Run("CtxIsAnAlias", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, logging.FromContext(ctx), logging.Ctx(ctx))
	})

	t.Run("WithFieldAttachesField", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf).Level(zerolog.InfoLevel)

		ctx := logging.WithLogger(context.Background(), &logger)
		ctx = logging.WithField(ctx, "phase", "quick")

		logging.FromContext(ctx).Info().Msg("comparing")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "quick", entry["phase"])
	})
}
