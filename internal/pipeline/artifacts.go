// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/paper-pipeline/pkg/types"
)

// WriteArtifacts writes the sample array to out.PapersPath and the
// statistics object to out.StatsPath, creating parent directories. Any
// failure here is fatal to the run.
func WriteArtifacts(res *Result, out types.OutputConfig) error {
	papers := res.Papers
	if papers == nil {
		papers = []types.SamplePaper{}
	}
	if err := writeJSON(out.PapersPath, papers); err != nil {
		return fmt.Errorf("writing papers: %w", err)
	}

	stats := res.Stats
	if stats == nil {
		stats = map[string]types.DisciplineStats{}
	}
	if err := writeJSON(out.StatsPath, stats); err != nil {
		return fmt.Errorf("writing discipline stats: %w", err)
	}
	return nil
}

// writeJSON writes v as indented JSON to path through a temporary file in
// the same directory, renamed into place on success.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadArtifacts loads a previous run's artifacts. The returned Disciplines
// list the disciplines present in the statistics, in enumeration order,
// with their samples regrouped by domain.
func ReadArtifacts(out types.OutputConfig) (*Result, error) {
	var papers []types.SamplePaper
	if err := readJSON(out.PapersPath, &papers); err != nil {
		return nil, fmt.Errorf("reading papers: %w", err)
	}
	var stats map[string]types.DisciplineStats
	if err := readJSON(out.StatsPath, &stats); err != nil {
		return nil, fmt.Errorf("reading discipline stats: %w", err)
	}
	if papers == nil {
		papers = []types.SamplePaper{}
	}
	if stats == nil {
		stats = map[string]types.DisciplineStats{}
	}

	byDomain := make(map[string][]types.ScoredPaper)
	for _, p := range papers {
		byDomain[p.Domain] = append(byDomain[p.Domain], types.ScoredPaper{
			RawPaperRecord: types.RawPaperRecord{
				ID:         p.ID,
				Title:      p.Title,
				Year:       p.Year,
				Citations:  p.Citations,
				Discipline: p.Domain,
			},
			ImpactScore:   p.ImpactScore,
			CodeAvailable: p.CodeAvailable,
		})
	}

	res := &Result{Papers: papers, Stats: stats}
	for _, d := range types.Disciplines {
		s, ok := stats[d.DisplayName]
		if !ok {
			continue
		}
		res.Disciplines = append(res.Disciplines, DisciplineResult{
			Discipline: d,
			Phase:      PhaseDone,
			Stats:      s,
			Sample:     byDomain[d.DisplayName],
		})
	}
	return res, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
