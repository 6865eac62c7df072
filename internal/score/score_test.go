// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-pipeline/pkg/types"
)

func newScorer(t *testing.T, mutate func(*types.ScoringConfig)) *Scorer {
	t.Helper()
	cfg := types.DefaultScoringConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func noJitter(cfg *types.ScoringConfig) { cfg.JitterAmplitude = 0 }

func TestRecencyFactor(t *testing.T) {
	s := newScorer(t, nil)
	tests := []struct {
		year int
		want float64
	}{
		{2025, 1},
		{2020, 0.8},
		{2000, 0},
		{1990, 0},
		{2030, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.year), func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Factors("", tt.year, false).Recency, 1e-9)
		})
	}
}

func TestRecencyUsesReferenceYear(t *testing.T) {
	s := newScorer(t, func(c *types.ScoringConfig) { c.ReferenceYear = 2035 })
	assert.InDelta(t, 0.6, s.Factors("", 2025, false).Recency, 1e-9)
}

func TestLengthFactor(t *testing.T) {
	s := newScorer(t, nil)
	tests := []struct {
		name  string
		runes int
		want  float64
	}{
		{"empty", 0, 0.4},
		{"just below 5000", 4999, 0.4},
		{"at 5000", 5000, 0.8},
		{"just below 20000", 19999, 0.8},
		{"at 20000", 20000, 1.0},
		{"at 50000", 50000, 0.7},
		{"very long", 200000, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("a", tt.runes)
			assert.Equal(t, tt.want, s.Factors(text, 2020, false).Length)
		})
	}
}

func TestLengthCountsRunes(t *testing.T) {
	s := newScorer(t, nil)
	// 4000 two-byte runes: 8000 bytes but below the first band.
	text := strings.Repeat("é", 4000)
	assert.Equal(t, 0.4, s.Factors(text, 2020, false).Length)
}

func TestKeywordFactorSubstring(t *testing.T) {
	s := newScorer(t, nil)

	f := s.Factors("Our EXPERIMENT shows Results", 2020, false)
	assert.Equal(t, 2, f.Matches)
	assert.InDelta(t, 2.0/12, f.Keyword, 1e-9)

	// Substring matching counts "model" inside "remodel".
	assert.Equal(t, 1, s.Factors("we remodel things", 2020, false).Matches)

	all := strings.Join(types.DefaultScoringConfig().Keywords, " ")
	f = s.Factors(all, 2020, false)
	assert.Equal(t, 19, f.Matches)
	assert.Equal(t, 1.0, f.Keyword)
}

func TestKeywordFactorRegex(t *testing.T) {
	s := newScorer(t, func(c *types.ScoringConfig) { c.MatchStrategy = types.MatchRegex })

	assert.Equal(t, 0, s.Factors("we remodel things", 2020, false).Matches)
	assert.Equal(t, 1, s.Factors("the model works", 2020, false).Matches)
	// Prefix match at a word boundary, as in "experiments".
	assert.Equal(t, 1, s.Factors("several experiments", 2020, false).Matches)
	// Extra patterns count as keywords.
	assert.Equal(t, 2, s.Factors("p < 0.05 with n = 30", 2020, false).Matches)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := types.DefaultScoringConfig()
	cfg.MatchStrategy = "fuzzy"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = types.DefaultScoringConfig()
	cfg.MatchStrategy = types.MatchRegex
	cfg.ExtraPatterns = []string{"("}
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = types.DefaultScoringConfig()
	cfg.KeywordCap = 0
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestScoreWorkedExample(t *testing.T) {
	s := newScorer(t, noJitter)
	// recency 1, length 0.4, keywords 2/12, no code:
	// (0.30 + 0.10 + 0.35*2/12) * 100 = 45.8333...
	assert.Equal(t, 45.83, s.Score("id", "experiment results", 2025, false))
	// Code adds 0.2 * 0.10 * 100 = 2.
	assert.Equal(t, 47.83, s.Score("id", "experiment results", 2025, true))
}

func TestScoreClamped(t *testing.T) {
	s := newScorer(t, noJitter)
	// Old, short, keyword-free text scores (0.4*0.25)*100 = 10 before clamping.
	assert.Equal(t, 15.0, s.Score("id", "short", 2000, false))

	s = newScorer(t, func(c *types.ScoringConfig) {
		c.JitterAmplitude = 0
		c.Weights = types.Weights{Recency: 1, Length: 1, Keyword: 1, Code: 1}
	})
	assert.Equal(t, 95.0, s.Score("id", "experiment", 2025, true))
}

func TestScoreBounds(t *testing.T) {
	s := newScorer(t, nil)
	texts := []string{
		"",
		"github.com experiment methodology results",
		strings.Repeat("novel approach framework ", 2000),
		strings.Join(types.DefaultScoringConfig().Keywords, " ") + " source code",
	}
	for i, text := range texts {
		for year := 2000; year <= 2025; year += 5 {
			for j := 0; j < 20; j++ {
				id := fmt.Sprintf("paper-%d-%d-%d", i, year, j)
				got := s.Score(id, text, year, s.HasCode(text))
				assert.GreaterOrEqual(t, got, 15.0)
				assert.LessOrEqual(t, got, 95.0)
				assert.Equal(t, got, math.Round(got*100)/100)
			}
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := newScorer(t, nil)
	text := "A novel algorithm with significant results"
	first := s.Score("W123", text, 2019, false)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Score("W123", text, 2019, false))
	}
	other := newScorer(t, nil)
	assert.Equal(t, first, other.Score("W123", text, 2019, false))
}

func TestJitter(t *testing.T) {
	assert.Equal(t, 0.0, Jitter("anything", 0))
	assert.Equal(t, Jitter("abc", 3), Jitter("abc", 3))

	distinct := map[float64]bool{}
	for i := 0; i < 200; i++ {
		j := Jitter(fmt.Sprintf("id-%d", i), 3)
		assert.GreaterOrEqual(t, j, -3.0)
		assert.Less(t, j, 3.0)
		distinct[j] = true
	}
	assert.Greater(t, len(distinct), 150, "similar ids should not share a jitter")
}

func TestHasCode(t *testing.T) {
	s := newScorer(t, nil)
	tests := []struct {
		text string
		want bool
	}{
		{"See https://GitHub.com/org/repo", true},
		{"The code is available on request", true},
		{"We release the Source Code", true},
		{"An open source toolkit", false},
		{"implementation details", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, s.HasCode(tt.text))
		})
	}
}

func TestEvaluate(t *testing.T) {
	s := newScorer(t, nil)
	rec := types.RawPaperRecord{
		ID:         "p1",
		Title:      "T",
		Year:       2021,
		Text:       "Methodology and results. Code: github.com/x/y",
		Discipline: "Physics",
	}
	got := s.Evaluate(rec)
	assert.True(t, got.CodeAvailable)
	assert.Equal(t, s.Score(rec.ID, rec.Text, rec.Year, true), got.ImpactScore)
	assert.Equal(t, rec, got.RawPaperRecord)
}
