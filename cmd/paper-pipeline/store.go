// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-pipeline/internal/pipeline"
	"github.com/pdiddy/paper-pipeline/internal/report"
	"github.com/pdiddy/paper-pipeline/internal/store"
	"github.com/pdiddy/paper-pipeline/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the run store (ingest, runs, query, export, context)",
	Long: `Store keeps extraction runs in a local SQLite database so their
statistics and samples can be queried and exported without re-reading the
artifacts. Commands that take --run default to the latest run.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Record the current artifacts as a new run",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := pipeline.ReadArtifacts(cfg.Output)
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			runID, err := s.SaveRun(cmd.Context(), res, cfg.Output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored run %s (%d papers, %d disciplines)\n",
				runID, len(res.Papers), len(res.Stats))
			return nil
		})
	},
}

// --- runs subcommand ---

var storeRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *store.Store) error {
			runs, err := s.Runs(cmd.Context(), 0)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs stored.")
				return nil
			}
			fmt.Fprintf(out, "%-36s  %-20s  %s\n", "Run", "Created", "Papers")
			for _, r := range runs {
				fmt.Fprintf(out, "%-36s  %-20s  %d\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.PaperCount)
			}
			return nil
		})
	},
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [title words]",
	Short: "Query the sampled papers of a run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	runID, _ := cmd.Flags().GetString("run")
	opts := queryOptsFromFlags(cmd, args)

	return withStore(func(s *store.Store) error {
		papers, err := s.Query(cmd.Context(), runID, opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			if papers == nil {
				papers = []types.SamplePaper{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(papers)
		}

		if len(papers) == 0 {
			fmt.Fprintln(out, "No results found.")
			return nil
		}

		fmt.Fprintf(out, "%-20s  %-50s  %-24s  %4s  %6s  %4s\n",
			"ID", "Title", "Domain", "Year", "Impact", "Code")
		for _, p := range papers {
			code := ""
			if p.CodeAvailable {
				code = "yes"
			}
			fmt.Fprintf(out, "%-20s  %-50s  %-24s  %4d  %6.2f  %4s\n",
				truncate(p.ID, 20), truncate(p.Title, 50), truncate(p.Domain, 24),
				p.Year, p.ImpactScore, code)
		}
		fmt.Fprintf(out, "\n%d results\n", len(papers))
		return nil
	})
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	title, _ := cmd.Flags().GetString("title")
	if title == "" && len(args) > 0 {
		title = args[0]
	}
	discipline, _ := cmd.Flags().GetString("discipline")
	fromYear, _ := cmd.Flags().GetInt("from-year")
	toYear, _ := cmd.Flags().GetInt("to-year")
	codeOnly, _ := cmd.Flags().GetBool("code-only")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Discipline: discipline,
		FromYear:   fromYear,
		ToYear:     toYear,
		CodeOnly:   codeOnly,
		Title:      title,
		MaxResults: limit,
	}
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a run to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")
		format, _ := cmd.Flags().GetString("format")
		path, _ := cmd.Flags().GetString("output")

		return withStore(func(s *store.Store) error {
			var err error
			switch format {
			case "yaml", "":
				if path == "" {
					path = filepath.Join(cfg.Store.Dir, "export.yaml")
				}
				err = s.ExportYAML(cmd.Context(), runID, path)
			case "json":
				if path == "" {
					path = filepath.Join(cfg.Store.Dir, "export.json")
				}
				err = s.ExportJSON(cmd.Context(), runID, path)
			default:
				return fmt.Errorf("unsupported format %q: use yaml or json", format)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
			return nil
		})
	},
}

// --- context subcommand ---

var storeContextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the chat context block for a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")
		return withStore(func(s *store.Store) error {
			stats, err := s.Stats(cmd.Context(), runID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.FormatContext(stats))
			return nil
		})
	},
}

// withStore opens the configured store for the duration of fn.
func withStore(fn func(*store.Store) error) error {
	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().String("store-dir", "", "directory containing pipeline.db")
	storeCmd.PersistentFlags().Int("max-results", 0, "default maximum number of query results")
	viper.BindPFlag("store.dir", storeCmd.PersistentFlags().Lookup("store-dir"))
	viper.BindPFlag("store.max_results", storeCmd.PersistentFlags().Lookup("max-results"))

	for _, c := range []*cobra.Command{storeQueryCmd, storeExportCmd, storeContextCmd} {
		c.Flags().String("run", "", "run id (default: latest run)")
	}

	// Query flags.
	storeQueryCmd.Flags().String("discipline", "", "filter by discipline (file stem or display name)")
	storeQueryCmd.Flags().Int("from-year", 0, "earliest publication year")
	storeQueryCmd.Flags().Int("to-year", 0, "latest publication year")
	storeQueryCmd.Flags().Bool("code-only", false, "only papers with code available")
	storeQueryCmd.Flags().String("title", "", "case-insensitive title substring")
	storeQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	storeExportCmd.Flags().String("output", "", "export path (default: <store dir>/export.<format>)")

	// Wire subcommands.
	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeRunsCmd)
	storeCmd.AddCommand(storeQueryCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeContextCmd)

	rootCmd.AddCommand(storeCmd)
}
