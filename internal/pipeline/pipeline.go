// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives extraction for every discipline: it streams each
// corpus, scores and aggregates all valid records, stride-samples a
// year-ordered subset, and merges the per-discipline results into the
// sample and statistics artifacts.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-pipeline/internal/corpus"
	"github.com/pdiddy/paper-pipeline/internal/sample"
	"github.com/pdiddy/paper-pipeline/internal/score"
	"github.com/pdiddy/paper-pipeline/internal/stats"
	"github.com/pdiddy/paper-pipeline/pkg/types"
)

// Phase is the processing state of one discipline.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseFirstPass
	PhaseSecondPass
	PhaseDone
	PhaseSkipped
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseFirstPass:
		return "first-pass"
	case PhaseSecondPass:
		return "second-pass"
	case PhaseDone:
		return "done"
	case PhaseSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// DisciplineResult is the outcome of processing one discipline.
type DisciplineResult struct {
	Discipline types.Discipline

	// Phase is PhaseDone or PhaseSkipped once processing returns.
	Phase Phase

	// Stats covers every valid record of the corpus.
	Stats types.DisciplineStats

	// Sample is the year-ordered stride sample, without text bodies.
	Sample []types.ScoredPaper

	// TargetSize is the sample size used for the emitted sample.
	TargetSize int

	// Passes is the number of times the corpus was read.
	Passes int

	// Lines and Skipped count corpus lines read and filtered in the first pass.
	Lines   int
	Skipped int

	// Err holds the reason for a skip or a truncated read. It is never fatal.
	Err error
}

// Result holds the merged output of a run.
type Result struct {
	// Disciplines lists every attempted discipline in enumeration order,
	// skipped ones included.
	Disciplines []DisciplineResult

	// Papers concatenates the samples of processed disciplines in
	// enumeration order.
	Papers []types.SamplePaper

	// Stats maps discipline display name to full-corpus statistics.
	Stats map[string]types.DisciplineStats
}

// Driver runs the extraction pipeline for a configuration.
type Driver struct {
	cfg         types.PipelineConfig
	scorer      *score.Scorer
	readerOpts  corpus.Options
	disciplines []types.Discipline
	log         zerolog.Logger
}

// New builds a driver. cfg is expected to have passed config.Validate.
func New(cfg types.PipelineConfig, log zerolog.Logger) (*Driver, error) {
	scorer, err := score.New(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("building scorer: %w", err)
	}

	disciplines, err := selectDisciplines(cfg.Only)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	cfg.Workers = workers

	return &Driver{
		cfg:         cfg,
		scorer:      scorer,
		readerOpts:  corpus.OptionsFrom(cfg.Reader),
		disciplines: disciplines,
		log:         log,
	}, nil
}

// selectDisciplines returns the enumeration restricted to only, keeping
// enumeration order.
func selectDisciplines(only []string) ([]types.Discipline, error) {
	if len(only) == 0 {
		return slices.Clone(types.Disciplines), nil
	}
	want := make(map[string]bool, len(only))
	for _, name := range only {
		d, ok := types.LookupDiscipline(name)
		if !ok {
			return nil, fmt.Errorf("unknown discipline %q", name)
		}
		want[d.Name] = true
	}
	var out []types.Discipline
	for _, d := range types.Disciplines {
		if want[d.Name] {
			out = append(out, d)
		}
	}
	return out, nil
}

// Run processes every selected discipline, at most cfg.Workers at a time,
// and merges the results once all of them are done or skipped. Missing or
// unreadable corpora are skipped; only context cancellation is returned
// as an error.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	results := make([]DisciplineResult, len(d.disciplines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)
	for i, disc := range d.disciplines {
		g.Go(func() error {
			r, err := d.runDiscipline(gctx, disc)
			if err != nil {
				return fmt.Errorf("%s: %w", disc.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := Merge(results)
	d.log.Info().
		Int("disciplines", len(res.Stats)).
		Int("sampled", len(res.Papers)).
		Dur("elapsed", time.Since(start)).
		Msg("extraction complete")
	return res, nil
}

// runDiscipline advances one discipline through
// NotStarted -> FirstPass -> {Done | SecondPass -> Done}, or to Skipped
// when its corpus cannot be opened.
func (d *Driver) runDiscipline(ctx context.Context, disc types.Discipline) (DisciplineResult, error) {
	res := DisciplineResult{Discipline: disc, Phase: PhaseNotStarted}
	path := filepath.Join(d.cfg.InputDir, disc.FileName())
	log := d.log.With().Str("discipline", disc.DisplayName).Logger()
	sampling := d.cfg.Sampling

	for {
		switch res.Phase {
		case PhaseNotStarted:
			log.Info().Str("file", path).Msg("processing")
			res.Phase = PhaseFirstPass

		case PhaseFirstPass:
			p, err := d.pass(ctx, disc, path, sampling.BaseSize)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return res, ctxErr
				}
				log.Warn().Err(err).Msg("skipping discipline")
				res.Phase = PhaseSkipped
				res.Err = err
				continue
			}
			res.Stats = p.stats
			res.Sample = p.sample
			res.TargetSize = sampling.BaseSize
			res.Passes = 1
			res.Lines = p.lines
			res.Skipped = p.skipped
			if p.readErr != nil {
				log.Warn().Err(p.readErr).Int("papers", p.stats.PaperCount).Msg("corpus truncated, keeping records read")
				res.Err = p.readErr
			}
			log.Info().
				Int("papers", res.Stats.PaperCount).
				Float64("avg_impact", res.Stats.AvgImpact).
				Int("with_code", res.Stats.CodeAvailableCount).
				Msg("first pass complete")

			if res.Stats.PaperCount < sampling.SmallThreshold {
				res.Phase = PhaseSecondPass
			} else {
				res.Phase = PhaseDone
			}

		case PhaseSecondPass:
			p, err := d.pass(ctx, disc, path, sampling.SmallSize)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return res, ctxErr
				}
				log.Warn().Err(err).Msg("second pass failed, keeping first-pass sample")
				res.Phase = PhaseDone
				continue
			}
			// Full-corpus statistics stay as computed by the first pass.
			res.Sample = p.sample
			res.TargetSize = sampling.SmallSize
			res.Passes = 2
			log.Info().Int("sample_size", sampling.SmallSize).Msg("increased sample size for small discipline")
			res.Phase = PhaseDone

		case PhaseDone:
			log.Info().Int("sampled", len(res.Sample)).Msg("discipline done")
			return res, nil

		case PhaseSkipped:
			return res, nil
		}
	}
}

type passResult struct {
	stats   types.DisciplineStats
	sample  []types.ScoredPaper
	lines   int
	skipped int
	readErr error
}

// pass reads the corpus once, aggregating every valid record and
// stride-sampling k of them after a stable sort by year. An error means
// the corpus could not be opened or ctx was cancelled.
func (d *Driver) pass(ctx context.Context, disc types.Discipline, path string, k int) (passResult, error) {
	r, err := corpus.Open(path, disc.DisplayName, d.readerOpts)
	if err != nil {
		return passResult{}, err
	}
	defer r.Close()

	var agg stats.Aggregator
	var papers []types.ScoredPaper
	for r.Next() {
		if err := ctx.Err(); err != nil {
			return passResult{}, err
		}
		sp := d.scorer.Evaluate(r.Record())
		agg.Add(sp)
		papers = append(papers, sp.Compact())
	}

	sample.SortByYear(papers)
	return passResult{
		stats:   agg.Stats(),
		sample:  slices.Clone(sample.Stride(papers, k)),
		lines:   r.Lines(),
		skipped: r.Skipped(),
		readErr: r.Err(),
	}, nil
}

// Merge concatenates processed disciplines' samples in the given order and
// collects their statistics by display name. Skipped disciplines are
// omitted from both.
func Merge(results []DisciplineResult) *Result {
	res := &Result{
		Disciplines: results,
		Papers:      []types.SamplePaper{},
		Stats:       make(map[string]types.DisciplineStats),
	}
	for _, r := range results {
		if r.Phase != PhaseDone {
			continue
		}
		for _, p := range r.Sample {
			res.Papers = append(res.Papers, p.Sample())
		}
		res.Stats[r.Discipline.DisplayName] = r.Stats
	}
	return res
}
