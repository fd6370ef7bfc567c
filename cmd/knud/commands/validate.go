package commands

import (
	"github.com/spf13/cobra"

	"github.com/teknia/knud/internal/eligibility"
	"github.com/teknia/knud/internal/knu"
	"github.com/teknia/knud/internal/printer"
)

var validateInput string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate KNU eligibility for a whole batch",
	Long: `Check every entry in the input batch against the eligibility policy and
print a per-entry verdict with the violated rule for ineligible entries.

Exits non-zero if any entry is ineligible.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateInput, "input", "", "Input JSON file with KNU entries")
	validateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	entries, err := knu.LoadEntries(validateInput)
	if err != nil {
		return printer.Error("Failed to load KNU batch", err.Error())
	}

	policy := cfg.Policy()
	invalid := 0
	for _, entry := range entries {
		if ok, reason := eligibility.Check(entry, policy); ok {
			printer.Success("%-24s %-15s VALID\n", entry.ID, entry.Owner)
		} else {
			printer.Failure("%-24s %-15s INVALID: %s\n", entry.ID, entry.Owner, reason)
			invalid++
		}
	}

	printer.Printf("\nValid: %d, Invalid: %d\n", len(entries)-invalid, invalid)
	if invalid > 0 {
		return printer.Error("Batch contains ineligible KNUs", "")
	}
	return nil
}
