package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/punchaudit/punchaudit-backend/pkg/config"
	"github.com/punchaudit/punchaudit-backend/pkg/logger"
)

const cliName = "punchaudit"

var (
	verbose    bool
	configName string

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   cliName,
	Short: "Audit employee punch exports for working-time violations",
	Long: `punchaudit reads a punch export (CSV, XLSX or XLS), pairs in and out
punches into shifts and flags excess daily hours, short rest periods,
excess weekly hours and too many working days per week.

Configuration is read from ./config/<name>.yaml, /etc/punchaudit/<name>.yaml
and PUNCHAUDIT_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configName)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Policy.Validate(); err != nil {
			return fmt.Errorf("policy configuration error: %w", err)
		}
		cfg = loaded

		level := "warn"
		if verbose {
			level = "debug"
		}
		log = logger.NewWithWriter(cliName, zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configName, "config-name", cliName, "Config file name (without .yaml)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
