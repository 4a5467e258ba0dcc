package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineLogLevelReadsMergedConfig(t *testing.T) {
	reset := func() {
		viper.Set("verbose", false)
		viper.Set("quiet", false)
		viper.Set("log-level", "")
	}
	reset()
	t.Cleanup(reset)

	t.Run("DefaultsToInfo", func(t *testing.T) {
		assert.Equal(t, "info", determineLogLevel())
	})

	t.Run("VerboseFromConfigEnablesDebug", func(t *testing.T) {
		// A `verbose: true` from the config file or env arrives through
		// viper exactly like the flag does.
		viper.Set("verbose", true)
		assert.Equal(t, "debug", determineLogLevel())
	})

	t.Run("QuietWinsOverVerbose", func(t *testing.T) {
		viper.Set("quiet", true)
		assert.Equal(t, "warn", determineLogLevel())
	})

	t.Run("ExplicitLevelWinsOverShortcuts", func(t *testing.T) {
		viper.Set("log-level", "trace")
		assert.Equal(t, "trace", determineLogLevel())
	})

	t.Run("InvalidLevelFallsBackToInfo", func(t *testing.T) {
		viper.Set("log-level", "noisy")
		assert.Equal(t, "info", determineLogLevel())
	})
}

func TestCompareFlagsAreViperBacked(t *testing.T) {
	// Flag defaults flow through the bindings when nothing overrides them.
	assert.Equal(t, "quick", viper.GetString("phase"))
	assert.Equal(t, 0.5, viper.GetFloat64("similarity-threshold"))
}

func TestRunCompareHonorsConfiguredPhase(t *testing.T) {
	dir := t.TempDir()

	budgetPath := filepath.Join(dir, "estimate.bc3")
	budgetText := "~C|W-01|u|Ventana corredera|100|\n~X|W-01|Anchura\\0,90\\\n"
	require.NoError(t, os.WriteFile(budgetPath, []byte(budgetText), 0o644))

	modelPath := filepath.Join(dir, "types.yaml")
	modelText := `types:
  - id: g1
    tag: W-01
    name: Ventana corredera
    properties:
      width: 1.2
`
	require.NoError(t, os.WriteFile(modelPath, []byte(modelText), 0o644))

	reportPath := filepath.Join(dir, "report.json")
	budgetFile, modelFile, jsonOutput = budgetPath, modelPath, reportPath
	viper.Set("phase", "full")
	t.Cleanup(func() {
		budgetFile, modelFile, jsonOutput = "", "", ""
		viper.Set("phase", "quick")
	})

	require.NoError(t, runCompare(nil, nil))

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var doc report
	require.NoError(t, json.Unmarshal(data, &doc))

	// The phase configured through viper drove the run: only the full
	// preset compares properties.
	assert.Equal(t, "full", doc.Phase.Name)
	require.Len(t, doc.Matched, 1)
	assert.Equal(t, 1, doc.Conflicts.Summary.PropertyMismatches)
}

func TestRunCompareUnknownPhaseFails(t *testing.T) {
	viper.Set("phase", "deep")
	t.Cleanup(func() { viper.Set("phase", "quick") })

	err := runCompare(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deep")
}
