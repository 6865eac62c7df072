package types

// MatchStrategy selects how methodology keywords are matched against text.
type MatchStrategy string

const (
	// MatchSubstring counts a keyword when it occurs anywhere in the
	// lower-cased text.
	MatchSubstring MatchStrategy = "substring"

	// MatchRegex counts a keyword only when it starts at a word boundary,
	// and additionally evaluates ExtraPatterns.
	MatchRegex MatchStrategy = "regex"
)

// Weights holds the contribution of each normalized factor to the score.
type Weights struct {
	Recency float64 `json:"recency" yaml:"recency" validate:"gte=0,lte=1"`
	Length  float64 `json:"length" yaml:"length" validate:"gte=0,lte=1"`
	Keyword float64 `json:"keyword" yaml:"keyword" validate:"gte=0,lte=1"`
	Code    float64 `json:"code" yaml:"code" validate:"gte=0,lte=1"`
}

// LengthBand maps text shorter than Below runes to Factor.
type LengthBand struct {
	Below  int     `json:"below" yaml:"below" validate:"gt=0"`
	Factor float64 `json:"factor" yaml:"factor" validate:"gte=0,lte=1"`
}

// ScoringConfig holds every constant used by the impact scorer and the
// code-availability detector.
type ScoringConfig struct {
	// ReferenceYear is the "current" year recency is measured against (default 2025).
	ReferenceYear int `json:"reference_year" yaml:"reference_year" validate:"gte=1900"`

	// RecencyHorizon is the age in years at which recency reaches 0 (default 25).
	RecencyHorizon int `json:"recency_horizon" yaml:"recency_horizon" validate:"gt=0"`

	// LengthBands are checked in ascending order of Below.
	LengthBands []LengthBand `json:"length_bands" yaml:"length_bands" validate:"min=1,dive"`

	// LengthOverflowFactor applies when text is at least as long as the last band.
	LengthOverflowFactor float64 `json:"length_overflow_factor" yaml:"length_overflow_factor" validate:"gte=0,lte=1"`

	// Keywords are methodology and rigor terms.
	Keywords []string `json:"keywords" yaml:"keywords" validate:"min=1,dive,required"`

	// ExtraPatterns are raw regular expressions counted as keywords under MatchRegex.
	ExtraPatterns []string `json:"extra_patterns,omitempty" yaml:"extra_patterns,omitempty"`

	// KeywordCap is the match count at which the keyword factor saturates (default 12).
	KeywordCap int `json:"keyword_cap" yaml:"keyword_cap" validate:"gt=0"`

	// MatchStrategy is substring or regex.
	MatchStrategy MatchStrategy `json:"match_strategy" yaml:"match_strategy" validate:"oneof=substring regex"`

	// CodeIndicators are literal substrings signalling available code.
	CodeIndicators []string `json:"code_indicators" yaml:"code_indicators" validate:"min=1,dive,required"`

	// CodeBonus is the code factor value when code is available (default 0.2).
	CodeBonus float64 `json:"code_bonus" yaml:"code_bonus" validate:"gte=0,lte=1"`

	Weights Weights `json:"weights" yaml:"weights"`

	// JitterAmplitude bounds the deterministic per-paper jitter (default 3).
	JitterAmplitude float64 `json:"jitter_amplitude" yaml:"jitter_amplitude" validate:"gte=0"`

	MinScore float64 `json:"min_score" yaml:"min_score" validate:"gte=0"`
	MaxScore float64 `json:"max_score" yaml:"max_score" validate:"gtfield=MinScore"`
}

// SamplingConfig holds the adaptive two-pass sampling policy.
type SamplingConfig struct {
	// BaseSize is the first-pass target sample size (default 100).
	BaseSize int `json:"base_size" yaml:"base_size" validate:"gt=0"`

	// SmallSize is the target for disciplines below SmallThreshold (default 150).
	SmallSize int `json:"small_size" yaml:"small_size" validate:"gtfield=BaseSize"`

	// SmallThreshold triggers the second pass when paperCount < SmallThreshold (default 1000).
	SmallThreshold int `json:"small_threshold" yaml:"small_threshold" validate:"gt=0"`
}

// ReaderConfig holds corpus filtering settings.
type ReaderConfig struct {
	// MinYear is the earliest publication year kept (default 2000).
	MinYear int `json:"min_year" yaml:"min_year" validate:"gte=0"`

	// TitleMaxRunes truncates derived titles (default 200).
	TitleMaxRunes int `json:"title_max_runes" yaml:"title_max_runes" validate:"gt=0"`
}

// OutputConfig locates the two artifacts.
type OutputConfig struct {
	// PapersPath is the sample artifact (JSON array).
	PapersPath string `json:"papers_path" yaml:"papers_path" validate:"required"`

	// StatsPath is the statistics artifact (JSON object keyed by display name).
	StatsPath string `json:"stats_path" yaml:"stats_path" validate:"required"`
}

// StoreConfig holds settings for the SQLite run store.
type StoreConfig struct {
	// Dir is the directory containing pipeline.db.
	Dir string `json:"dir" yaml:"dir" validate:"required"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" validate:"gte=0"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `json:"format" yaml:"format" validate:"oneof=console json"`
}

// PipelineConfig groups all settings for an extraction run.
type PipelineConfig struct {
	// InputDir contains one <Name>.jsonl.gz file per discipline.
	InputDir string `json:"input_dir" yaml:"input_dir" validate:"required"`

	// Workers bounds the number of disciplines processed concurrently (default 4).
	Workers int `json:"workers" yaml:"workers" validate:"gt=0"`

	// Only restricts the run to these disciplines (file stem or display name).
	Only []string `json:"only,omitempty" yaml:"only,omitempty"`

	Reader   ReaderConfig   `json:"reader" yaml:"reader"`
	Scoring  ScoringConfig  `json:"scoring" yaml:"scoring"`
	Sampling SamplingConfig `json:"sampling" yaml:"sampling"`
	Output   OutputConfig   `json:"output" yaml:"output"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// DefaultScoringConfig returns the default scoring constants.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		ReferenceYear:  2025,
		RecencyHorizon: 25,
		LengthBands: []LengthBand{
			{Below: 5000, Factor: 0.4},
			{Below: 20000, Factor: 0.8},
			{Below: 50000, Factor: 1.0},
		},
		LengthOverflowFactor: 0.7,
		Keywords: []string{
			"experiment", "methodology", "results", "conclusion", "abstract",
			"hypothesis", "algorithm", "model", "evaluation", "performance",
			"references", "citation", "discussion", "analysis", "significant",
			"framework", "approach", "novel", "proposed",
		},
		ExtraPatterns: []string{
			`\bp\s*<\s*0\.0`,
			`\bn\s*=\s*\d+`,
		},
		KeywordCap:     12,
		MatchStrategy:  MatchSubstring,
		CodeIndicators: []string{"github.com", "code is available", "source code"},
		CodeBonus:      0.2,
		Weights: Weights{
			Recency: 0.30,
			Length:  0.25,
			Keyword: 0.35,
			Code:    0.10,
		},
		JitterAmplitude: 3,
		MinScore:        15,
		MaxScore:        95,
	}
}

// DefaultPipelineConfig returns the default configuration, which reads
// data/combined_compressed and writes the web front end data files.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		InputDir: "data/combined_compressed",
		Workers:  4,
		Reader: ReaderConfig{
			MinYear:       2000,
			TitleMaxRunes: 200,
		},
		Scoring: DefaultScoringConfig(),
		Sampling: SamplingConfig{
			BaseSize:       100,
			SmallSize:      150,
			SmallThreshold: 1000,
		},
		Output: OutputConfig{
			PapersPath: "web/src/data/real_papers.json",
			StatsPath:  "web/src/data/discipline_stats.json",
		},
		Store: StoreConfig{
			Dir:        "data/index",
			MaxResults: 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
