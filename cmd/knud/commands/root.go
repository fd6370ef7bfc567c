package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/teknia/knud/internal/config"
	"github.com/teknia/knud/pkg/logger"
)

var (
	version string
	commit  string
	date    string
)

var (
	configPath string
	prettyLogs bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "knud",
	Short: "knud - KNU reward distribution for Teknia Tokens",
	Long: `knud distributes a KNOT's prize pool across its Knowledge Unit
submissions, weighting each KNU by predicted effort and measured impact:

    w_i = α·Ê_i + (1−α)·Î_i

Pools, the adjacency graph, weighting parameters, and the eligibility
policy come from a YAML configuration file. Executed payouts go through
the external tek-tokens CLI and are recorded in an append-only ledger.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "knud.yml", "Path to knud configuration file")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty", false, "Human-friendly log output")
}

// loadConfig loads and validates the configuration shared by all commands.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// newLogger builds the engine logger from the loaded configuration.
func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Pretty: prettyLogs})
}
