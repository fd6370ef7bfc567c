package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/teknia/knud/internal/distributor"
	"github.com/teknia/knud/internal/knu"
	"github.com/teknia/knud/internal/ledger"
	"github.com/teknia/knud/internal/printer"
	"github.com/teknia/knud/internal/reward"
)

var (
	distributeKnot      string
	distributeInput     string
	distributeDryRun    bool
	distributeCanonical bool
)

var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Distribute a KNOT's prize pool to its KNU owners",
	Long: `Distribute rewards for a KNOT: filter the input batch by eligibility,
compute distribution weights, convert to integer deg amounts, and execute
one tek-tokens reward per allocation.

Each executed payout is appended to the distribution ledger. A single
failed payout does not abort the batch; it is reported and the remaining
allocations still execute.

Use --dry-run to calculate allocations without touching tek-tokens or the
ledger. Use --canonical to allocate in knu_id order instead of input
order, which makes the rounding remainder placement reproducible.`,
	RunE: runDistribute,
}

func init() {
	distributeCmd.Flags().StringVar(&distributeKnot, "knot", "", "KNOT ID (e.g. K06)")
	distributeCmd.Flags().StringVar(&distributeInput, "input", "", "Input JSON file with KNU entries")
	distributeCmd.Flags().BoolVar(&distributeDryRun, "dry-run", false, "Calculate without executing rewards")
	distributeCmd.Flags().BoolVar(&distributeCanonical, "canonical", false, "Allocate in knu_id order")
	distributeCmd.MarkFlagRequired("knot")
	distributeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(distributeCmd)
}

func runDistribute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	entries, err := knu.LoadEntries(distributeInput)
	if err != nil {
		return printer.Error("Failed to load KNU batch", err.Error())
	}

	exec := reward.NewCLI(cfg.TekTokensBin, ledger.NewCSV(cfg.LedgerPath), log)

	var opts []distributor.Option
	if distributeCanonical {
		opts = append(opts, distributor.WithCanonicalOrder())
	}
	d := distributor.New(cfg, exec, log, opts...)

	result, err := d.Distribute(context.Background(), distributeKnot, entries, distributeDryRun)
	if err != nil {
		return printer.Error("Distribution failed", err.Error())
	}

	printResult(result)
	return nil
}

func printResult(result *distributor.Result) {
	printer.Printf("KNU Distribution: %s (%.2f TT pool)\n", result.Pool.KnotID, result.Pool.PoolTT)
	printer.Printf("Run: %s\n\n", result.RunID)

	for _, skip := range result.Skipped {
		printer.Warning("Skipping %s: %s\n", skip.KnuID, skip.Reason)
	}

	failed := make(map[string]error, len(result.ExecFailures))
	for _, f := range result.ExecFailures {
		failed[f.KnuID] = f.Err
	}

	for _, alloc := range result.Allocations {
		switch {
		case result.DryRun:
			printer.Printf("[DRY-RUN] %s → %s: %.2f TT (%d deg)\n",
				alloc.KnuID, alloc.Owner, alloc.TokensTT, alloc.TokensDeg)
		case alloc.Executed():
			printer.Success("%s → %s: %.2f TT (%d deg) [%s]\n",
				alloc.KnuID, alloc.Owner, alloc.TokensTT, alloc.TokensDeg, alloc.TxID)
		default:
			printer.Failure("Failed to reward %s: %v\n", alloc.KnuID, failed[alloc.KnuID])
		}
	}

	for _, f := range result.LedgerFailures {
		printer.Warning("Reward %s executed but not recorded in ledger: %v\n", f.KnuID, f.Err)
	}

	var totalTT float64
	var totalDeg int64
	executed := result.Executed()
	for _, a := range executed {
		totalTT += a.TokensTT
		totalDeg += a.TokensDeg
	}

	printer.Printf("\n")
	if result.DryRun {
		printer.Printf("Dry run complete: %d allocations, nothing executed\n", len(result.Allocations))
		return
	}
	printer.Printf("Distribution complete: %d/%d KNUs rewarded, %.2f TT (%d deg)\n",
		len(executed), len(result.Allocations), totalTT, totalDeg)
	if len(result.ExecFailures) > 0 {
		printer.Warning("%d payout(s) failed; re-run manually after fixing the cause\n", len(result.ExecFailures))
	}
}
