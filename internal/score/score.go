// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score computes the heuristic impact score and the
// code-availability flag of a paper. The score is a bounded proxy built
// from recency, length, methodology keywords, and code availability; it is
// not validated against citation data.
package score

import (
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/paper-pipeline/pkg/types"
)

// Factors holds the normalized inputs of a score, each in [0, 1].
type Factors struct {
	Recency float64
	Length  float64
	Keyword float64
	Code    float64

	// Matches is the number of keywords (and patterns) found.
	Matches int
}

// Scorer evaluates papers against a fixed ScoringConfig. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	cfg        types.ScoringConfig
	keywords   []string
	patterns   []*regexp.Regexp
	indicators []string
}

// New validates the matching strategy and compiles keyword patterns.
func New(cfg types.ScoringConfig) (*Scorer, error) {
	if cfg.KeywordCap <= 0 || cfg.RecencyHorizon <= 0 {
		return nil, fmt.Errorf("keyword cap and recency horizon must be positive")
	}
	s := &Scorer{cfg: cfg}

	for _, ind := range cfg.CodeIndicators {
		s.indicators = append(s.indicators, strings.ToLower(ind))
	}

	switch cfg.MatchStrategy {
	case types.MatchSubstring, "":
		for _, kw := range cfg.Keywords {
			s.keywords = append(s.keywords, strings.ToLower(kw))
		}
	case types.MatchRegex:
		for _, kw := range cfg.Keywords {
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)))
			if err != nil {
				return nil, fmt.Errorf("compiling keyword %q: %w", kw, err)
			}
			s.patterns = append(s.patterns, re)
		}
		for _, p := range cfg.ExtraPatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern %q: %w", p, err)
			}
			s.patterns = append(s.patterns, re)
		}
	default:
		return nil, fmt.Errorf("unknown match strategy %q", cfg.MatchStrategy)
	}

	return s, nil
}

// Evaluate scores a record and flags code availability, lower-casing the
// text once for both.
func (s *Scorer) Evaluate(rec types.RawPaperRecord) types.ScoredPaper {
	lower := strings.ToLower(rec.Text)
	hasCode := s.hasCode(lower)
	f := s.factors(lower, utf8.RuneCountInString(rec.Text), rec.Year, hasCode)
	return types.ScoredPaper{
		RawPaperRecord: rec,
		ImpactScore:    s.combine(f, rec.ID),
		CodeAvailable:  hasCode,
	}
}

// Score returns the impact score of a paper with the given id, text, and
// year. The id only seeds the jitter.
func (s *Scorer) Score(id, text string, year int, codeAvailable bool) float64 {
	return s.combine(s.Factors(text, year, codeAvailable), id)
}

// Factors returns the normalized score inputs for text.
func (s *Scorer) Factors(text string, year int, codeAvailable bool) Factors {
	return s.factors(strings.ToLower(text), utf8.RuneCountInString(text), year, codeAvailable)
}

// HasCode reports whether text mentions one of the code indicators.
func (s *Scorer) HasCode(text string) bool {
	return s.hasCode(strings.ToLower(text))
}

func (s *Scorer) hasCode(lower string) bool {
	for _, ind := range s.indicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func (s *Scorer) factors(lower string, runes, year int, codeAvailable bool) Factors {
	matches := s.countMatches(lower)
	f := Factors{
		Recency: s.recency(year),
		Length:  s.length(runes),
		Keyword: math.Min(1, float64(matches)/float64(s.cfg.KeywordCap)),
		Matches: matches,
	}
	if codeAvailable {
		f.Code = s.cfg.CodeBonus
	}
	return f
}

func (s *Scorer) recency(year int) float64 {
	age := float64(s.cfg.ReferenceYear - year)
	v := 1 - age/float64(s.cfg.RecencyHorizon)
	return math.Max(0, math.Min(1, v))
}

func (s *Scorer) length(runes int) float64 {
	for _, b := range s.cfg.LengthBands {
		if runes < b.Below {
			return b.Factor
		}
	}
	return s.cfg.LengthOverflowFactor
}

func (s *Scorer) countMatches(lower string) int {
	n := 0
	for _, kw := range s.keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	for _, re := range s.patterns {
		if re.MatchString(lower) {
			n++
		}
	}
	return n
}

func (s *Scorer) combine(f Factors, id string) float64 {
	w := s.cfg.Weights
	raw := (f.Recency*w.Recency + f.Length*w.Length + f.Keyword*w.Keyword + f.Code*w.Code) * 100
	raw += Jitter(id, s.cfg.JitterAmplitude)
	clamped := math.Min(s.cfg.MaxScore, math.Max(s.cfg.MinScore, raw))
	return math.Round(clamped*100) / 100
}

// Jitter returns a deterministic offset in [-amplitude, amplitude) derived
// from an FNV-1a hash of id.
func Jitter(id string, amplitude float64) float64 {
	if amplitude == 0 {
		return 0
	}
	h := fnv.New64a()
	h.Write([]byte(id))
	u := float64(h.Sum64()>>11) / (1 << 53)
	return (2*u - 1) * amplitude
}
