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
	calculateKnot  string
	calculateInput string
)

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate weights and allocations without executing rewards",
	Long: `Calculate distribution weights and deg allocations for a KNOT and print
them as a table. No rewards are executed and nothing is written to the
ledger; this is the inspection form of 'distribute --dry-run'.`,
	RunE: runCalculate,
}

func init() {
	calculateCmd.Flags().StringVar(&calculateKnot, "knot", "", "KNOT ID (e.g. K06)")
	calculateCmd.Flags().StringVar(&calculateInput, "input", "", "Input JSON file with KNU entries")
	calculateCmd.MarkFlagRequired("knot")
	calculateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(calculateCmd)
}

func runCalculate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	entries, err := knu.LoadEntries(calculateInput)
	if err != nil {
		return printer.Error("Failed to load KNU batch", err.Error())
	}

	// Executor is never invoked on a dry run.
	d := distributor.New(cfg, nil, log)
	result, err := d.Distribute(context.Background(), calculateKnot, entries, true)
	if err != nil {
		return printer.Error("Calculation failed", err.Error())
	}

	printer.Printf("Weight Calculation: %s\n", result.Pool.KnotID)
	printer.Printf("Pool: %.2f TT  α=%.2f  λ=%.2f\n\n",
		result.Pool.PoolTT, result.Params.Alpha, result.Params.LambdaSpillover)

	for _, skip := range result.Skipped {
		printer.Warning("Skipping %s: %s\n", skip.KnuID, skip.Reason)
	}

	report.Build(result).WriteTable(os.Stdout)
	return nil
}
