// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats accumulates full-corpus statistics for a discipline.
package stats

import (
	"github.com/pdiddy/paper-pipeline/pkg/types"
)

// Aggregator accumulates the count, impact sum, and code-availability
// count of every scored paper it is given. The zero value is ready to use.
type Aggregator struct {
	count     int
	impactSum float64
	withCode  int
}

// Add records one scored paper.
func (a *Aggregator) Add(p types.ScoredPaper) {
	a.count++
	a.impactSum += p.ImpactScore
	if p.CodeAvailable {
		a.withCode++
	}
}

// Count returns the number of papers added so far.
func (a *Aggregator) Count() int {
	return a.count
}

// Stats returns the statistics accumulated so far. An empty aggregator
// yields all-zero stats.
func (a *Aggregator) Stats() types.DisciplineStats {
	if a.count == 0 {
		return types.DisciplineStats{}
	}
	return types.DisciplineStats{
		PaperCount:         a.count,
		AvgImpact:          a.impactSum / float64(a.count),
		CodeAvailableCount: a.withCode,
	}
}

// Totals summarizes statistics across disciplines.
type Totals struct {
	Disciplines int
	Papers      int
	WithCode    int
}

// CodeRate returns the share of papers with code, in percent.
func (t Totals) CodeRate() float64 {
	return Percent(t.WithCode, t.Papers)
}

// Summarize adds up per-discipline statistics.
func Summarize(byDiscipline map[string]types.DisciplineStats) Totals {
	var t Totals
	for _, s := range byDiscipline {
		t.Disciplines++
		t.Papers += s.PaperCount
		t.WithCode += s.CodeAvailableCount
	}
	return t
}

// Percent returns part/whole*100, or 0 when whole is 0.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
