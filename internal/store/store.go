// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extraction runs, their discipline statistics, and
// their samples in a SQLite database so downstream consumers can query
// past runs without re-reading the artifacts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-pipeline/internal/pipeline"
	"github.com/pdiddy/paper-pipeline/pkg/types"
)

const (
	dbFile            = "pipeline.db"
	defaultMaxResults = 20

	// timeLayout has a fixed width so created_at sorts as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrNoRuns reports that the store holds no run to answer a query.
var ErrNoRuns = errors.New("no runs stored")

// Store manages the run database.
type Store struct {
	db         *sql.DB
	maxResults int
	now        func() time.Time
}

// Run describes one stored extraction run.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	PapersPath string    `json:"papers_path" yaml:"papers_path"`
	StatsPath  string    `json:"stats_path" yaml:"stats_path"`
	PaperCount int       `json:"paper_count" yaml:"paper_count"`
}

// Open opens or creates the database at cfg.Dir/pipeline.db and creates
// the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		maxResults: maxResults,
		now:        time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			papers_path TEXT,
			stats_path TEXT,
			paper_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS discipline_stats (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			discipline TEXT NOT NULL,
			paper_count INTEGER NOT NULL,
			avg_impact REAL NOT NULL,
			code_available_count INTEGER NOT NULL,
			PRIMARY KEY (run_id, discipline)
		)`,
		`CREATE TABLE IF NOT EXISTS samples (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			paper_id TEXT NOT NULL,
			discipline TEXT NOT NULL,
			title TEXT,
			year INTEGER NOT NULL,
			impact_score REAL NOT NULL,
			code_available INTEGER NOT NULL,
			citations INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_discipline ON samples(run_id, discipline)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_year ON samples(run_id, year)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun stores the statistics and sample of res in one transaction and
// returns the new run id. source records where the artifacts were written.
func (s *Store) SaveRun(ctx context.Context, res *pipeline.Result, source types.OutputConfig) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, papers_path, stats_path, paper_count)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, s.now().UTC().Format(timeLayout),
		source.PapersPath, source.StatsPath, len(res.Papers),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	statsStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO discipline_stats (run_id, discipline, paper_count, avg_impact, code_available_count)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing stats insert: %w", err)
	}
	defer statsStmt.Close()

	for name, st := range res.Stats {
		if _, err := statsStmt.ExecContext(ctx, runID, name, st.PaperCount, st.AvgImpact, st.CodeAvailableCount); err != nil {
			return "", fmt.Errorf("inserting stats for %s: %w", name, err)
		}
	}

	sampleStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (run_id, position, paper_id, discipline, title, year, impact_score, code_available, citations)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing sample insert: %w", err)
	}
	defer sampleStmt.Close()

	for i, p := range res.Papers {
		_, err := sampleStmt.ExecContext(ctx,
			runID, i, p.ID, p.Domain, p.Title, p.Year,
			p.ImpactScore, p.CodeAvailable, p.Citations,
		)
		if err != nil {
			return "", fmt.Errorf("inserting sample %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// LatestRun returns the most recently saved run, or ErrNoRuns.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	runs, err := s.Runs(ctx, 1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrNoRuns
	}
	return runs[0], nil
}

// Runs lists stored runs, newest first. A non-positive limit lists all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, papers_path, stats_path, paper_count
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns the run with the given id. An empty id selects the latest
// run.
func (s *Store) Run(ctx context.Context, runID string) (Run, error) {
	if runID == "" {
		return s.LatestRun(ctx)
	}
	r, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, created_at, papers_path, stats_path, paper_count FROM runs WHERE id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s not found", runID)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                     Run
		createdAt             string
		papersPath, statsPath sql.NullString
	)
	if err := sc.Scan(&r.ID, &createdAt, &papersPath, &statsPath, &r.PaperCount); err != nil {
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parsing created_at of run %s: %w", r.ID, err)
	}
	r.CreatedAt = t
	r.PapersPath = papersPath.String
	r.StatsPath = statsPath.String
	return r, nil
}

// Stats returns the discipline statistics of a run keyed by display name.
// An empty runID selects the latest run.
func (s *Store) Stats(ctx context.Context, runID string) (map[string]types.DisciplineStats, error) {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT discipline, paper_count, avg_impact, code_available_count
		 FROM discipline_stats WHERE run_id = ?`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	out := make(map[string]types.DisciplineStats)
	for rows.Next() {
		var (
			name string
			st   types.DisciplineStats
		)
		if err := rows.Scan(&name, &st.PaperCount, &st.AvgImpact, &st.CodeAvailableCount); err != nil {
			return nil, fmt.Errorf("scanning stats: %w", err)
		}
		out[name] = st
	}
	return out, rows.Err()
}
