package commands

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ASE/display"
	"github.com/teranos/ASE/ingest"
	"github.com/teranos/ASE/logger"
	"github.com/teranos/ASE/sym"
)

var ingestDataset string

// IngestCmd represents the ingest command
var IngestCmd = &cobra.Command{
	Use:   "ingest FILE",
	Short: sym.INGEST + " Load a CSV file as a queryable dataset",
	Long: sym.INGEST + ` ingest — Load a CSV file as a queryable dataset

Loads a CSV file into the ASE database as a table. Column types are
inferred from a sample of the data; headers are sanitized into SQL
identifiers. An existing dataset with the same name is replaced.

Examples:
  ase ingest sales.csv                   # Dataset named 'sales'
  ase ingest export.csv --dataset q3     # Explicit dataset name`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	IngestCmd.Flags().StringVar(&ingestDataset, "dataset", "", "Dataset name (default: derived from filename)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	useJSON := display.ShouldOutputJSON(cmd)
	path := args[0]

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	var spinner *pterm.SpinnerPrinter
	if !useJSON {
		spinner, _ = pterm.DefaultSpinner.Start("Loading " + path + "...")
	}

	processor := ingest.NewCSVProcessor(database, logger.Logger)
	summary, err := processor.IngestFile(context.Background(), path, ingestDataset)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		if !useJSON {
			pterm.Error.Printf("Ingestion failed: %v\n", err)
		}
		return err
	}

	if useJSON {
		return display.OutputJSON(summary)
	}

	pterm.Success.Printf("Loaded %q as dataset %q\n", summary.SourcePath, summary.Dataset)
	pterm.Printf("  Rows:    %d\n", summary.RowCount)
	pterm.Printf("  Columns: %d\n", len(summary.Columns))
	pterm.Printf("  Elapsed: %s\n", summary.Elapsed.Round(time.Millisecond))
	return nil
}
