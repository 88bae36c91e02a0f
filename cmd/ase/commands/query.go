package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ASE/display"
	"github.com/teranos/ASE/engine"
	"github.com/teranos/ASE/errors"
	"github.com/teranos/ASE/sym"
	"github.com/teranos/ASE/transport"
)

var (
	queryDataset string
)

// QueryCmd represents the query command
var QueryCmd = &cobra.Command{
	Use:   "query [STATEMENTS]",
	Short: sym.RUN + " Validate and execute analytical statements",
	Long: sym.RUN + ` query — Validate and execute analytical statements

Splits the input on semicolons (quote-aware), validates each statement as
read-only, and executes the accepted ones in order against the dataset.
A failing statement never aborts the rest of the batch; the result of the
last successful statement is displayed.

Only read-only statements are accepted: SELECT, WITH, SHOW, DESCRIBE,
EXPLAIN. Statements containing mutating keywords are rejected before they
reach the backend.

Examples:
  ase query "SELECT * FROM sales LIMIT 5" --dataset sales
  ase query "SELECT COUNT(*) FROM sales; SELECT AVG(amount) FROM sales" -d sales
  ase query "SELECT region, SUM(amount) FROM sales GROUP BY region" -d sales --json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	QueryCmd.Flags().StringVarP(&queryDataset, "dataset", "d", "", "Dataset to execute against (required)")
	QueryCmd.MarkFlagRequired("dataset")
}

func runQuery(cmd *cobra.Command, args []string) error {
	useJSON := display.ShouldOutputJSON(cmd)

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	eng, err := buildEngine(database)
	if err != nil {
		return err
	}

	batch, err := eng.Submit(context.Background(), args[0], queryDataset)
	if err != nil {
		return errors.Wrap(err, "submission failed")
	}

	if useJSON {
		return display.OutputJSON(batch)
	}

	renderBatch(batch)
	return nil
}

// renderBatch prints per-statement outcomes followed by the displayed result.
func renderBatch(batch *engine.BatchResult) {
	for _, outcome := range batch.Outcomes {
		if outcome.Success {
			pterm.Success.Printf("[%d] %s (%d rows)\n", outcome.Index, truncateStatement(outcome.StatementText), outcome.RowCount)
		} else {
			pterm.Error.Printf("[%d] %s: %s\n", outcome.Index, truncateStatement(outcome.StatementText), outcome.ErrorMessage)
		}
	}

	pterm.Println()
	pterm.Info.Printf("%d succeeded, %d failed in %s\n",
		batch.SuccessCount, batch.FailureCount, batch.TotalElapsed.Round(time.Millisecond))

	if batch.DisplayedResult != nil {
		pterm.Println()
		renderResult(batch.DisplayedResult)
	}
}

// renderResult prints a result payload in its natural shape.
func renderResult(result *transport.Result) {
	switch result.Kind {
	case transport.ResultScalar:
		fmt.Printf("%v\n", result.Scalar)

	case transport.ResultTabular:
		table := pterm.TableData{result.Columns}
		for _, row := range result.Rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				if cell == nil {
					cells[i] = ""
					continue
				}
				cells[i] = fmt.Sprintf("%v", cell)
			}
			table = append(table, cells)
		}
		pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		pterm.Printf("(%d rows)\n", result.RowCount)

	case transport.ResultError:
		pterm.Error.Println(result.Message)
	}
}

// truncateStatement shortens long statements for one-line status output.
// Counts runes, not bytes, so a multi-byte character at the boundary is
// never split into invalid UTF-8.
func truncateStatement(statement string) string {
	const max = 60
	runes := []rune(statement)
	if len(runes) <= max {
		return statement
	}
	return string(runes[:max-3]) + "..."
}
