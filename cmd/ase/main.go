package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/ASE/cmd/ase/commands"
	"github.com/teranos/ASE/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ase",
	Short: "ASE - Analytical statement engine",
	Long: `ASE - Analytical statement engine for read-only dataset exploration.

ASE splits, validates, and executes batches of analytical SQL statements
against local datasets, generates analysis templates from column metadata,
and keeps a history of what was run.

Available commands:
  query     - Validate and execute a batch of statements
  repl      - Interactive statement session
  templates - Generate analysis templates for a dataset
  history   - Show statement execution history
  saved     - Manage saved statements
  ingest    - Load a CSV file as a queryable dataset
  am        - Manage ASE core configuration ("I am")
  db        - Manage ASE database operations

Examples:
  ase ingest sales.csv                      # Load sales.csv as dataset 'sales'
  ase query "SELECT * FROM sales LIMIT 5" --dataset sales
  ase templates sales                       # Show analysis templates
  ase history ls                            # Show recent submissions
  ase db stats                              # Show database statistics`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize global logger before any command runs
		// Skip for commands that don't need logging output (like 'am show')
		if cmd.Name() != "show" {
			jsonOutput, _ := cmd.Root().PersistentFlags().GetBool("json")
			if err := logger.Initialize(jsonOutput); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}
		return nil
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output results in JSON format")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")

	// Add commands
	rootCmd.AddCommand(commands.QueryCmd)
	rootCmd.AddCommand(commands.ReplCmd)
	rootCmd.AddCommand(commands.TemplatesCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.SavedCmd)
	rootCmd.AddCommand(commands.IngestCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DbCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
