// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders extraction results for people: the full-corpus
// and sampled-subset summary tables printed after a run, and the quick
// reference block handed to the chat service as model context.
package report

import (
	"io"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pdiddy/paper-pipeline/internal/pipeline"
	"github.com/pdiddy/paper-pipeline/internal/stats"
	"github.com/pdiddy/paper-pipeline/pkg/types"
)

// SampleStats summarizes the sampled papers of one discipline.
type SampleStats struct {
	Count        int
	WithCode     int
	AvgImpact    float64
	AvgCitations float64
}

// Sampled groups papers by domain and summarizes each group.
func Sampled(papers []types.SamplePaper) map[string]SampleStats {
	type acc struct {
		count, withCode int
		impact          float64
		citations       int
	}
	byDomain := make(map[string]*acc)
	for _, p := range papers {
		a := byDomain[p.Domain]
		if a == nil {
			a = &acc{}
			byDomain[p.Domain] = a
		}
		a.count++
		a.impact += p.ImpactScore
		a.citations += p.Citations
		if p.CodeAvailable {
			a.withCode++
		}
	}

	out := make(map[string]SampleStats, len(byDomain))
	for name, a := range byDomain {
		out[name] = SampleStats{
			Count:        a.count,
			WithCode:     a.withCode,
			AvgImpact:    a.impact / float64(a.count),
			AvgCitations: float64(a.citations) / float64(a.count),
		}
	}
	return out
}

func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// WriteSummary prints the full-dataset statistics table followed by the
// sampled-subset table. Disciplines are listed by display name.
func WriteSummary(w io.Writer, res *pipeline.Result) {
	p := newPrinter()
	totals := stats.Summarize(res.Stats)

	p.Fprintf(w, "FULL DATASET STATISTICS\n")
	p.Fprintf(w, "%s\n", strings.Repeat("=", 72))
	p.Fprintf(w, "Total papers:     %d\n", totals.Papers)
	p.Fprintf(w, "Papers with code: %d (%.1f%%)\n", totals.WithCode, totals.CodeRate())
	p.Fprintf(w, "Disciplines:      %d\n\n", totals.Disciplines)

	p.Fprintf(w, "%-32s  %12s  %10s  %7s  %10s\n", "Discipline", "Papers", "With code", "Code %", "Avg impact")
	p.Fprintf(w, "%s\n", strings.Repeat("-", 79))
	for _, name := range sortedKeys(res.Stats) {
		s := res.Stats[name]
		p.Fprintf(w, "%-32s  %12d  %10d  %6.1f%%  %10.2f\n",
			name, s.PaperCount, s.CodeAvailableCount,
			stats.Percent(s.CodeAvailableCount, s.PaperCount), s.AvgImpact)
	}

	sampled := Sampled(res.Papers)
	withCode := 0
	for _, s := range sampled {
		withCode += s.WithCode
	}

	p.Fprintf(w, "\nSAMPLED DATA STATISTICS\n")
	p.Fprintf(w, "%s\n", strings.Repeat("=", 72))
	p.Fprintf(w, "Sampled papers:   %d\n", len(res.Papers))
	p.Fprintf(w, "Papers with code: %d (%.1f%%)\n\n", withCode, stats.Percent(withCode, len(res.Papers)))

	p.Fprintf(w, "%-32s  %8s  %10s  %10s  %13s\n", "Discipline", "Sampled", "With code", "Avg impact", "Avg citations")
	p.Fprintf(w, "%s\n", strings.Repeat("-", 79))
	for _, name := range sortedKeys(sampled) {
		s := sampled[name]
		p.Fprintf(w, "%-32s  %8d  %10d  %10.2f  %13.1f\n",
			name, s.Count, s.WithCode, s.AvgImpact, s.AvgCitations)
	}
}

// FormatContext renders one line per discipline, sorted by display name,
// in the form "• Biology: 1,234 papers, 56 with code (4.5%), avg impact 48.2".
func FormatContext(byDiscipline map[string]types.DisciplineStats) string {
	p := newPrinter()
	var b strings.Builder
	for _, name := range sortedKeys(byDiscipline) {
		s := byDiscipline[name]
		b.WriteString(p.Sprintf("• %s: %d papers, %d with code (%.1f%%), avg impact %.1f\n",
			name, s.PaperCount, s.CodeAvailableCount,
			stats.Percent(s.CodeAvailableCount, s.PaperCount), s.AvgImpact))
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
