// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/paper-pipeline/pkg/types"
)

func scored(impact float64, code bool) types.ScoredPaper {
	return types.ScoredPaper{ImpactScore: impact, CodeAvailable: code}
}

func TestAggregator(t *testing.T) {
	var a Aggregator
	assert.Equal(t, types.DisciplineStats{}, a.Stats())

	a.Add(scored(20, false))
	a.Add(scored(40, true))
	a.Add(scored(60, true))

	got := a.Stats()
	assert.Equal(t, 3, got.PaperCount)
	assert.InDelta(t, 40.0, got.AvgImpact, 1e-9)
	assert.Equal(t, 2, got.CodeAvailableCount)
	assert.Equal(t, 3, a.Count())
}

func TestSummarize(t *testing.T) {
	totals := Summarize(map[string]types.DisciplineStats{
		"Biology": {PaperCount: 300, AvgImpact: 50, CodeAvailableCount: 30},
		"Physics": {PaperCount: 100, AvgImpact: 60, CodeAvailableCount: 10},
		"Empty":   {},
	})
	assert.Equal(t, Totals{Disciplines: 3, Papers: 400, WithCode: 40}, totals)
	assert.InDelta(t, 10.0, totals.CodeRate(), 1e-9)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.InDelta(t, 25.0, Percent(1, 4), 1e-9)
}
