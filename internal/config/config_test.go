// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-pipeline/pkg/types"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPipelineConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper-pipeline.yaml")
	writeFile(t, path, `
input_dir: /data/corpora
workers: 2
scoring:
  reference_year: 2030
  match_strategy: regex
  keywords: [experiment, model]
sampling:
  base_size: 50
  small_size: 75
`)

	v := viper.New()
	used, err := Init(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/data/corpora", cfg.InputDir)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 2030, cfg.Scoring.ReferenceYear)
	assert.Equal(t, types.MatchRegex, cfg.Scoring.MatchStrategy)
	assert.Equal(t, []string{"experiment", "model"}, cfg.Scoring.Keywords)
	assert.Equal(t, 50, cfg.Sampling.BaseSize)
	assert.Equal(t, 75, cfg.Sampling.SmallSize)

	// Untouched keys keep their defaults.
	defaults := types.DefaultPipelineConfig()
	assert.Equal(t, defaults.Sampling.SmallThreshold, cfg.Sampling.SmallThreshold)
	assert.Equal(t, defaults.Scoring.Weights, cfg.Scoring.Weights)
	assert.Equal(t, defaults.Scoring.LengthBands, cfg.Scoring.LengthBands)
	assert.Equal(t, defaults.Output, cfg.Output)
}

func TestInitWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	used, err := Init(v, "")
	require.NoError(t, err)
	assert.Empty(t, used)
}

func TestInitMissingExplicitFile(t *testing.T) {
	_, err := Init(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PAPER_PIPELINE_SCORING_REFERENCE_YEAR", "2040")
	t.Setenv("PAPER_PIPELINE_WORKERS", "8")

	v := viper.New()
	_, err := Init(v, "")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 2040, cfg.Scoring.ReferenceYear)
	assert.Equal(t, 8, cfg.Workers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*types.PipelineConfig)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*types.PipelineConfig) {}},
		{
			name:    "small size must exceed base size",
			mutate:  func(c *types.PipelineConfig) { c.Sampling.SmallSize = c.Sampling.BaseSize },
			wantErr: "SmallSize",
		},
		{
			name:    "unknown match strategy",
			mutate:  func(c *types.PipelineConfig) { c.Scoring.MatchStrategy = "fuzzy" },
			wantErr: "MatchStrategy",
		},
		{
			name:    "zero workers",
			mutate:  func(c *types.PipelineConfig) { c.Workers = 0 },
			wantErr: "Workers",
		},
		{
			name:    "weight above one",
			mutate:  func(c *types.PipelineConfig) { c.Scoring.Weights.Keyword = 1.5 },
			wantErr: "Keyword",
		},
		{
			name:    "empty keyword list",
			mutate:  func(c *types.PipelineConfig) { c.Scoring.Keywords = nil },
			wantErr: "Keywords",
		},
		{
			name:    "missing output path",
			mutate:  func(c *types.PipelineConfig) { c.Output.StatsPath = "" },
			wantErr: "StatsPath",
		},
		{
			name:    "unknown discipline",
			mutate:  func(c *types.PipelineConfig) { c.Only = []string{"Astrology"} },
			wantErr: "Astrology",
		},
		{
			name:   "known disciplines by either name",
			mutate: func(c *types.PipelineConfig) { c.Only = []string{"ComputerScience", "Political Science"} },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultPipelineConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
