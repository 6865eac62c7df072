// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-pipeline/pkg/types"
)

// QueryOptions filters the sampled papers of a run.
type QueryOptions struct {
	// Discipline matches a display name or file stem.
	Discipline string

	// FromYear and ToYear bound the publication year, inclusive. Zero
	// leaves a bound open.
	FromYear int
	ToYear   int

	// CodeOnly keeps papers flagged as having code available.
	CodeOnly bool

	// Title matches a case-insensitive substring of the title.
	Title string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Query returns sampled papers of a run in artifact order. An empty runID
// selects the latest run.
func (s *Store) Query(ctx context.Context, runID string, opts QueryOptions) ([]types.SamplePaper, error) {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return nil, err
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args = []any{run.ID}
	)
	qb.WriteString(
		`SELECT paper_id, title, impact_score, code_available, year, citations, discipline
		FROM samples
		WHERE run_id = ?`)

	if opts.Discipline != "" {
		name := opts.Discipline
		if d, ok := types.LookupDiscipline(name); ok {
			name = d.DisplayName
		}
		qb.WriteString(` AND discipline = ?`)
		args = append(args, name)
	}
	if opts.FromYear > 0 {
		qb.WriteString(` AND year >= ?`)
		args = append(args, opts.FromYear)
	}
	if opts.ToYear > 0 {
		qb.WriteString(` AND year <= ?`)
		args = append(args, opts.ToYear)
	}
	if opts.CodeOnly {
		qb.WriteString(` AND code_available = 1`)
	}
	if opts.Title != "" {
		qb.WriteString(` AND lower(title) LIKE '%' || lower(?) || '%'`)
		args = append(args, opts.Title)
	}

	qb.WriteString(` ORDER BY position LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	var results []types.SamplePaper
	for rows.Next() {
		var p types.SamplePaper
		if err := rows.Scan(&p.ID, &p.Title, &p.ImpactScore, &p.CodeAvailable, &p.Year, &p.Citations, &p.Domain); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
