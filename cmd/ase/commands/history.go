package commands

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ASE/display"
	"github.com/teranos/ASE/logger"
	"github.com/teranos/ASE/storage"
	"github.com/teranos/ASE/sym"
)

// HistoryCmd represents the history command
var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: sym.HX + " Show statement execution history",
	Long: sym.HX + ` history — Show statement execution history

Every query submission is recorded, whether or not it succeeded. The
in-session history is capped; the durable copy shown here keeps what the
database retains.

Examples:
  ase history ls              # Show recent submissions
  ase history ls --limit 10   # Show the last 10 submissions`,
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recent submissions",
	RunE:  runHistoryLs,
}

var historyLimitFlag int

func init() {
	historyLsCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Number of entries to show")
	HistoryCmd.AddCommand(historyLsCmd)
}

func runHistoryLs(cmd *cobra.Command, args []string) error {
	useJSON := display.ShouldOutputJSON(cmd)

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := storage.NewSQLStore(database, logger.Logger)
	entries, err := store.RecentHistory(context.Background(), historyLimitFlag)
	if err != nil {
		return err
	}

	if useJSON {
		return display.OutputJSON(entries)
	}

	if len(entries) == 0 {
		pterm.Info.Println("No history recorded yet")
		return nil
	}

	pterm.Info.Printf("%s %d recent submissions\n\n", sym.HX, len(entries))
	for _, entry := range entries {
		marker := " "
		if entry.Favorite {
			marker = "★"
		}
		pterm.Printf("%s %s  %s  (%s)\n",
			marker,
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			truncateStatement(entry.StatementText),
			entry.Elapsed.Round(time.Millisecond),
		)
	}
	return nil
}
