// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-pipeline/internal/pipeline"
	"github.com/pdiddy/paper-pipeline/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print summary tables for the artifacts of the last extraction",
	Long: `Report reads the sample and statistics artifacts written by extract and
prints the full-dataset and sampled-subset tables. With --context it prints
the quick reference block used as chat model context instead.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().Bool("context", false, "print the chat context block instead of tables")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	res, err := pipeline.ReadArtifacts(cfg.Output)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asContext, _ := cmd.Flags().GetBool("context"); asContext {
		fmt.Fprint(out, report.FormatContext(res.Stats))
		return nil
	}
	report.WriteSummary(out, res)
	return nil
}
