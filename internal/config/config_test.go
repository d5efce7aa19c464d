package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.85, cfg.Screen.MinCorrelation)
	assert.Equal(t, 0.25, cfg.Screen.MaxSpreadVol)
	assert.Equal(t, 200, cfg.Screen.MinObservations)
	assert.Equal(t, 10_000_000.0, cfg.Screen.LiquidityFloor)
	assert.Equal(t, 0.05, cfg.Cointegration.MaxPValue)
	assert.Equal(t, 5.0, cfg.HalfLife.MinDays)
	assert.Equal(t, 60.0, cfg.HalfLife.MaxDays)
	assert.Equal(t, 100.0, cfg.Scoring.PValue)
	assert.Equal(t, 50.0, cfg.Scoring.HalfLife)
	assert.Equal(t, 1000, cfg.Batch.ChunkSize)
	assert.Equal(t, 100, cfg.Batch.TopK)
	assert.Equal(t, 1.0, cfg.Sample.Ratio)

	require.NoError(t, cfg.Validate())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
screen:
  min_correlation: 0.9
half_life:
  max_days: 40
batch:
  chunk_size: 250
  workers: 8
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Screen.MinCorrelation)
	assert.Equal(t, 40.0, cfg.HalfLife.MaxDays)
	assert.Equal(t, 250, cfg.Batch.ChunkSize)
	assert.Equal(t, 8, cfg.Batch.Workers)

	// Untouched keys keep their defaults.
	assert.Equal(t, 0.25, cfg.Screen.MaxSpreadVol)
	assert.Equal(t, 0.05, cfg.Cointegration.MaxPValue)

	// The scoring normalizer follows the half-life upper bound.
	assert.Equal(t, 40.0, cfg.Scoring.MaxHalfLife)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"p-value out of range":  "cointegration:\n  max_p_value: 1.5\n",
		"inverted bounds":       "half_life:\n  min_days: 60\n  max_days: 5\n",
		"zero chunk":            "batch:\n  chunk_size: 0\n",
		"bad sample ratio":      "sample:\n  ratio: 0\n",
		"negative spread vol":   "screen:\n  max_spread_volatility: -1\n",
		"tiny observation min":  "screen:\n  min_observations: 3\n",
		"zero kalman variances": "half_life:\n  process_variance: 0\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}
