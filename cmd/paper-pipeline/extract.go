// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-pipeline/internal/pipeline"
	"github.com/pdiddy/paper-pipeline/internal/report"
	"github.com/pdiddy/paper-pipeline/internal/store"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Score and sample every discipline corpus and write the artifacts",
	Long: `Extract streams each <Discipline>.jsonl.gz file in the input directory,
scores every valid paper, and writes two artifacts: a year-ordered stride
sample per discipline (larger for disciplines under the small threshold)
and statistics computed over every valid paper.

Missing or unreadable corpora are skipped with a warning. Only a failure
to write the artifacts, or an interrupt, fails the run.`,
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.String("input-dir", "", "directory containing <Discipline>.jsonl.gz files")
	f.String("papers-out", "", "path of the sample artifact")
	f.String("stats-out", "", "path of the statistics artifact")
	f.Int("workers", 0, "number of disciplines processed concurrently")
	f.StringSlice("only", nil, "restrict the run to these disciplines (file stem or display name)")
	f.Bool("store", false, "also record the run in the SQLite store")
	f.Bool("quiet", false, "do not print the summary tables")

	viper.BindPFlag("input_dir", f.Lookup("input-dir"))
	viper.BindPFlag("output.papers_path", f.Lookup("papers-out"))
	viper.BindPFlag("output.stats_path", f.Lookup("stats-out"))
	viper.BindPFlag("workers", f.Lookup("workers"))
	viper.BindPFlag("only", f.Lookup("only"))

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	d, err := pipeline.New(cfg, logger.With().Str("stage", "extract").Logger())
	if err != nil {
		return err
	}

	res, err := d.Run(ctx)
	if err != nil {
		return fmt.Errorf("extraction aborted: %w", err)
	}

	if err := pipeline.WriteArtifacts(res, cfg.Output); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d sampled papers to %s\n", len(res.Papers), cfg.Output.PapersPath)
	fmt.Fprintf(out, "Wrote statistics for %d disciplines to %s\n", len(res.Stats), cfg.Output.StatsPath)

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		fmt.Fprintln(out)
		report.WriteSummary(out, res)
	}

	if save, _ := cmd.Flags().GetBool("store"); save {
		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()

		runID, err := s.SaveRun(ctx, res, cfg.Output)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nStored run %s\n", runID)
	}
	return nil
}
