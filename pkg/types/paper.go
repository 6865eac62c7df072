// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// UntitledPlaceholder is the title given to records whose text has no
// leading paragraph.
const UntitledPlaceholder = "Untitled"

// RawPaperRecord is one validated record decoded from a corpus line.
type RawPaperRecord struct {
	// ID is the corpus identifier of the paper. Never empty.
	ID string `json:"id" yaml:"id"`

	// Title is the first paragraph of Text, trimmed and truncated.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year from metadata.year.
	Year int `json:"year" yaml:"year"`

	// Text is the full paper text as stored in the corpus.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Citations is passed through from metadata.citations, or 0 when absent.
	Citations int `json:"citations" yaml:"citations"`

	// Discipline is the display name of the discipline the record was read from.
	Discipline string `json:"discipline" yaml:"discipline"`
}

// ScoredPaper is a RawPaperRecord annotated with its heuristic impact score
// and code-availability flag.
type ScoredPaper struct {
	RawPaperRecord

	// ImpactScore is a heuristic proxy in [15, 95]. It is not a validated
	// citation metric.
	ImpactScore float64 `json:"impactScore" yaml:"impact_score"`

	// CodeAvailable reports whether the text mentions an available implementation.
	CodeAvailable bool `json:"codeAvailable" yaml:"code_available"`
}

// Compact returns a copy of p without its text body. Samplers hold
// compacted papers so a full discipline fits in memory.
func (p ScoredPaper) Compact() ScoredPaper {
	p.Text = ""
	return p
}

// Sample converts p into the row written to the sample artifact.
func (p ScoredPaper) Sample() SamplePaper {
	return SamplePaper{
		ID:            p.ID,
		Title:         p.Title,
		ImpactScore:   p.ImpactScore,
		CodeAvailable: p.CodeAvailable,
		Year:          p.Year,
		Citations:     p.Citations,
		Domain:        p.Discipline,
	}
}

// SamplePaper is one entry of the visualization sample artifact.
// Field order matches the JSON consumed by the web front end.
type SamplePaper struct {
	ID            string  `json:"id" yaml:"id"`
	Title         string  `json:"title" yaml:"title"`
	ImpactScore   float64 `json:"impactScore" yaml:"impact_score"`
	CodeAvailable bool    `json:"codeAvailable" yaml:"code_available"`
	Year          int     `json:"year" yaml:"year"`
	Citations     int     `json:"citations" yaml:"citations"`
	Domain        string  `json:"domain" yaml:"domain"`
}

// DisciplineStats aggregates every valid record of a discipline, never
// just the sampled subset.
type DisciplineStats struct {
	PaperCount         int     `json:"paperCount" yaml:"paper_count"`
	AvgImpact          float64 `json:"avgImpact" yaml:"avg_impact"`
	CodeAvailableCount int     `json:"codeAvailableCount" yaml:"code_available_count"`
}
