// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-pipeline/pkg/types"
)

// RunExport is the full content of one stored run.
type RunExport struct {
	Run    Run                              `json:"run" yaml:"run"`
	Stats  map[string]types.DisciplineStats `json:"stats" yaml:"stats"`
	Papers []types.SamplePaper              `json:"papers" yaml:"papers"`
}

const exportLimit = 1000000

// ExportYAML writes a run to path as YAML. An empty runID exports the
// latest run.
func (s *Store) ExportYAML(ctx context.Context, runID, path string) error {
	export, err := s.export(ctx, runID)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(export)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeFile(path, data)
}

// ExportJSON writes a run to path as indented JSON. An empty runID
// exports the latest run.
func (s *Store) ExportJSON(ctx context.Context, runID, path string) error {
	export, err := s.export(ctx, runID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

func (s *Store) export(ctx context.Context, runID string) (*RunExport, error) {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	papers, err := s.Query(ctx, run.ID, QueryOptions{MaxResults: exportLimit})
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if papers == nil {
		papers = []types.SamplePaper{}
	}
	return &RunExport{Run: run, Stats: stats, Papers: papers}, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
