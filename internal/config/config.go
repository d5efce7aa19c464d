// Package config loads pairscan configuration from YAML with defaults
// matching the documented recognized options.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/statarb/pairscan/internal/coint"
	"github.com/statarb/pairscan/internal/halflife"
	"github.com/statarb/pairscan/internal/score"
	"github.com/statarb/pairscan/internal/screen"
)

// BatchConfig controls chunking and output size.
type BatchConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	TopK      int `yaml:"top_k"`
	Workers   int `yaml:"workers"`
}

// SampleConfig deterministically subsamples the generated pair list for
// smoke runs. Ratio 1.0 disables sampling.
type SampleConfig struct {
	Ratio float64 `yaml:"ratio"`
	Seed  int64   `yaml:"seed"`
}

// Config is the full pairscan configuration.
type Config struct {
	Screen        screen.Config   `yaml:"screen"`
	Cointegration CointConfig     `yaml:"cointegration"`
	HalfLife      halflife.Config `yaml:"half_life"`
	Scoring       score.Weights   `yaml:"scoring"`
	Batch         BatchConfig     `yaml:"batch"`
	Sample        SampleConfig    `yaml:"sample"`
}

// CointConfig wraps the tester parameters with the acceptance threshold.
type CointConfig struct {
	coint.Config `yaml:",inline"`
	MaxPValue    float64 `yaml:"max_p_value"`
}

// Default returns the configuration with documented default thresholds.
func Default() Config {
	return Config{
		Screen: screen.Config{
			MinCorrelation:  0.85,
			MaxSpreadVol:    0.25,
			MinObservations: 200,
			LiquidityFloor:  10_000_000,
		},
		Cointegration: CointConfig{
			Config:    coint.Config{MinObservations: 200},
			MaxPValue: 0.05,
		},
		HalfLife: halflife.Config{
			ProcessVar: 0.01,
			ObsVar:     1.0,
			MinDays:    5,
			MaxDays:    60,
		},
		Scoring: score.Weights{
			PValue:      100,
			HalfLife:    50,
			MaxHalfLife: 60,
		},
		Batch: BatchConfig{
			ChunkSize: 1000,
			TopK:      100,
			Workers:   1,
		},
		Sample: SampleConfig{
			Ratio: 1.0,
			Seed:  42,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// The scoring normalizer is defined as the half-life upper bound.
	cfg.Scoring.MaxHalfLife = cfg.HalfLife.MaxDays
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a meaningful scan.
func (c Config) Validate() error {
	if c.Screen.MinCorrelation < -1 || c.Screen.MinCorrelation > 1 {
		return fmt.Errorf("config: min_correlation %v outside [-1, 1]", c.Screen.MinCorrelation)
	}
	if c.Screen.MaxSpreadVol <= 0 {
		return fmt.Errorf("config: max_spread_volatility must be positive")
	}
	if c.Screen.MinObservations < 20 {
		return fmt.Errorf("config: min_observations %d below usable floor of 20", c.Screen.MinObservations)
	}
	if c.Cointegration.MaxPValue <= 0 || c.Cointegration.MaxPValue >= 1 {
		return fmt.Errorf("config: max_p_value %v outside (0, 1)", c.Cointegration.MaxPValue)
	}
	if c.HalfLife.MinDays < 0 || c.HalfLife.MaxDays <= c.HalfLife.MinDays {
		return fmt.Errorf("config: half-life bounds [%v, %v] invalid", c.HalfLife.MinDays, c.HalfLife.MaxDays)
	}
	if c.HalfLife.ProcessVar <= 0 || c.HalfLife.ObsVar <= 0 {
		return fmt.Errorf("config: Kalman variances must be positive")
	}
	if c.Batch.ChunkSize < 1 {
		return fmt.Errorf("config: chunk_size must be at least 1")
	}
	if c.Batch.TopK < 1 {
		return fmt.Errorf("config: top_k must be at least 1")
	}
	if c.Sample.Ratio <= 0 || c.Sample.Ratio > 1 {
		return fmt.Errorf("config: sample ratio %v outside (0, 1]", c.Sample.Ratio)
	}
	return nil
}
