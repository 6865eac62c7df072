// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-pipeline/internal/pipeline"
	"github.com/pdiddy/paper-pipeline/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Dir: filepath.Join(t.TempDir(), "index"), MaxResults: 20})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock returns increasing timestamps one second apart.
func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(time.Second)
		return t
	}
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Papers: []types.SamplePaper{
			{ID: "b1", Title: "Cell Growth", ImpactScore: 41.5, Year: 2003, Citations: 2, Domain: "Biology"},
			{ID: "b2", Title: "Protein Folding Models", ImpactScore: 63.25, CodeAvailable: true, Year: 2018, Citations: 10, Domain: "Biology"},
			{ID: "c1", Title: "Catalysis", ImpactScore: 55, Year: 2011, Domain: "Computer Science"},
			{ID: "c2", Title: "Deep folding networks", ImpactScore: 77.1, CodeAvailable: true, Year: 2022, Citations: 4, Domain: "Computer Science"},
		},
		Stats: map[string]types.DisciplineStats{
			"Biology":          {PaperCount: 1200, AvgImpact: 48.123456789, CodeAvailableCount: 90},
			"Computer Science": {PaperCount: 999, AvgImpact: 61.5, CodeAvailableCount: 400},
		},
	}
}

var testSource = types.OutputConfig{PapersPath: "out/papers.json", StatsPath: "out/stats.json"}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "index")
	s, err := Open(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, filepath.Join(dir, dbFile))
	assert.Equal(t, defaultMaxResults, s.maxResults)
}

func TestOpenTwice(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	_, err = s1.SaveRun(context.Background(), sampleResult(), testSource)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	defer s2.Close()
	runs, err := s2.Runs(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSaveRunRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = fixedClock(created)

	res := sampleResult()
	runID, err := s.SaveRun(ctx, res, testSource)
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	run, err := s.Run(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, runID, run.ID)
	assert.True(t, created.Equal(run.CreatedAt))
	assert.Equal(t, testSource.PapersPath, run.PapersPath)
	assert.Equal(t, testSource.StatsPath, run.StatsPath)
	assert.Equal(t, 4, run.PaperCount)

	stats, err := s.Stats(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, res.Stats, stats)

	papers, err := s.Query(ctx, runID, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, res.Papers, papers)
}

func TestLatestRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrNoRuns)
	_, err = s.Stats(ctx, "")
	assert.ErrorIs(t, err, ErrNoRuns)

	s.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	first, err := s.SaveRun(ctx, sampleResult(), testSource)
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, &pipeline.Result{Stats: map[string]types.DisciplineStats{}}, testSource)
	require.NoError(t, err)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, latest.ID)
	assert.Equal(t, 0, latest.PaperCount)

	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, []string{second, first}, []string{runs[0].ID, runs[1].ID})

	papers, err := s.Query(ctx, "", QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestRunNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.Run(context.Background(), "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestQueryFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	runID, err := s.SaveRun(ctx, sampleResult(), testSource)
	require.NoError(t, err)

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{"all", QueryOptions{}, []string{"b1", "b2", "c1", "c2"}},
		{"display name", QueryOptions{Discipline: "Computer Science"}, []string{"c1", "c2"}},
		{"file stem", QueryOptions{Discipline: "ComputerScience"}, []string{"c1", "c2"}},
		{"from year", QueryOptions{FromYear: 2011}, []string{"b2", "c1", "c2"}},
		{"to year", QueryOptions{ToYear: 2011}, []string{"b1", "c1"}},
		{"year range", QueryOptions{FromYear: 2010, ToYear: 2020}, []string{"b2", "c1"}},
		{"code only", QueryOptions{CodeOnly: true}, []string{"b2", "c2"}},
		{"title", QueryOptions{Title: "FOLDING"}, []string{"b2", "c2"}},
		{"combined", QueryOptions{Discipline: "Biology", Title: "folding", CodeOnly: true}, []string{"b2"}},
		{"limit", QueryOptions{MaxResults: 2}, []string{"b1", "b2"}},
		{"no match", QueryOptions{Discipline: "Physics"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			papers, err := s.Query(ctx, runID, tt.opts)
			require.NoError(t, err)
			var ids []string
			for _, p := range papers {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestQueryDefaultLimit(t *testing.T) {
	s, err := Open(types.StoreConfig{Dir: t.TempDir(), MaxResults: 3})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.SaveRun(context.Background(), sampleResult(), testSource)
	require.NoError(t, err)
	papers, err := s.Query(context.Background(), "", QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, papers, 3)
}

func TestSaveRunCancelled(t *testing.T) {
	s := testStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SaveRun(ctx, sampleResult(), testSource)
	assert.Error(t, err)

	runs, err := s.Runs(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestExportJSON(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	res := sampleResult()
	runID, err := s.SaveRun(ctx, res, testSource)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "exports", "run.json")
	require.NoError(t, s.ExportJSON(ctx, runID, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got RunExport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, runID, got.Run.ID)
	assert.Equal(t, res.Stats, got.Stats)
	assert.Equal(t, res.Papers, got.Papers)
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	res := sampleResult()
	_, err := s.SaveRun(ctx, res, testSource)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, s.ExportYAML(ctx, "", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "impact_score: 63.25")

	var got RunExport
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, res.Stats, got.Stats)
	assert.Equal(t, res.Papers, got.Papers)
}

func TestExportEmptyStore(t *testing.T) {
	s := testStore(t)
	err := s.ExportJSON(context.Background(), "", filepath.Join(t.TempDir(), "x.json"))
	assert.ErrorIs(t, err, ErrNoRuns)
}
