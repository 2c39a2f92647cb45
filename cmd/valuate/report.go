package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joelkehle/startup-valuation/internal/report"
	"github.com/joelkehle/startup-valuation/internal/valuation"
)

var (
	reportOutput string
	reportPDF    bool
	reportWebDir string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a valuation report as markdown or PDF",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addInputFlags(reportCmd)
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Path to write the report (defaults to stdout)")
	reportCmd.Flags().BoolVar(&reportPDF, "pdf", false, "Render PDF instead of markdown (requires --output)")
	reportCmd.Flags().StringVar(&reportWebDir, "web-dir", "", "Directory holding style.css for the Chromium renderer")
}

func runReport(cmd *cobra.Command, _ []string) error {
	in, err := resolveInput(cmd, cmd.InOrStdin())
	if err != nil {
		return err
	}
	snap := valuation.Compute(in)
	markdown := report.BuildMarkdown(report.NewDocument("", in, snap, valuation.DefaultProfiles))

	if !reportPDF {
		if reportOutput == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), markdown)
			return err
		}
		return os.WriteFile(reportOutput, []byte(markdown), 0o644)
	}

	if reportOutput == "" {
		return fmt.Errorf("--pdf requires --output")
	}
	pdf, err := report.NewPDFRenderer(reportWebDir).Render(cmd.Context(), markdown)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return os.WriteFile(reportOutput, pdf, 0o644)
}
