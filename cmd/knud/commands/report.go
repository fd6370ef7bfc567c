package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/teknia/knud/internal/distributor"
	"github.com/teknia/knud/internal/knu"
	"github.com/teknia/knud/internal/printer"
	"github.com/teknia/knud/internal/report"
)

var (
	reportKnot   string
	reportInput  string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a structured distribution report",
	Long: `Generate a JSON report for a KNOT: pool size, weighting parameters,
per-KNU weight/effort/impact/allocation, and totals. The report is a pure
projection of the calculation; nothing is executed or written to the
ledger.

Without --output the report is written to stdout.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportKnot, "knot", "", "KNOT ID (e.g. K06)")
	reportCmd.Flags().StringVar(&reportInput, "input", "", "Input JSON file with KNU entries")
	reportCmd.Flags().StringVar(&reportOutput, "output", "", "Output JSON file (default: stdout)")
	reportCmd.MarkFlagRequired("knot")
	reportCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	entries, err := knu.LoadEntries(reportInput)
	if err != nil {
		return printer.Error("Failed to load KNU batch", err.Error())
	}

	d := distributor.New(cfg, nil, log)
	result, err := d.Distribute(context.Background(), reportKnot, entries, true)
	if err != nil {
		return printer.Error("Report generation failed", err.Error())
	}

	rep := report.Build(result)
	if reportOutput == "" {
		return rep.WriteJSON(os.Stdout)
	}

	if err := rep.Save(reportOutput); err != nil {
		return printer.Error("Failed to save report", err.Error())
	}
	printer.Success("Report saved to %s\n", reportOutput)
	return nil
}
