package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ASE/display"
	"github.com/teranos/ASE/engine"
	"github.com/teranos/ASE/logger"
	"github.com/teranos/ASE/storage"
)

// SavedCmd represents the saved command
var SavedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved statements",
	Long: `saved — Manage saved statements

Saved statements are user-curated and never auto-evicted, unlike history.

Examples:
  ase saved add "daily totals" "SELECT date, SUM(amount) FROM sales GROUP BY date"
  ase saved ls
  ase saved rm 4f6b…`,
}

var savedAddCmd = &cobra.Command{
	Use:   "add NAME STATEMENT",
	Short: "Save a statement under a name",
	Args:  cobra.ExactArgs(2),
	RunE:  runSavedAdd,
}

var savedLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved statements",
	RunE:  runSavedLs,
}

var savedRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a saved statement",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedRm,
}

func init() {
	SavedCmd.AddCommand(savedAddCmd)
	SavedCmd.AddCommand(savedLsCmd)
	SavedCmd.AddCommand(savedRmCmd)
}

func runSavedAdd(cmd *cobra.Command, args []string) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	saved := engine.SavedStatement{
		ID:            uuid.NewString(),
		Name:          args[0],
		StatementText: args[1],
		Kind:          engine.KindSQL,
		SavedAt:       time.Now(),
	}

	store := storage.NewSQLStore(database, logger.Logger)
	if err := store.SaveStatement(context.Background(), saved); err != nil {
		return err
	}

	pterm.Success.Printf("Saved %q as %s\n", saved.Name, saved.ID)
	return nil
}

func runSavedLs(cmd *cobra.Command, args []string) error {
	useJSON := display.ShouldOutputJSON(cmd)

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := storage.NewSQLStore(database, logger.Logger)
	saved, err := store.ListSaved(context.Background())
	if err != nil {
		return err
	}

	if useJSON {
		return display.OutputJSON(saved)
	}

	if len(saved) == 0 {
		pterm.Info.Println("No saved statements")
		return nil
	}

	for _, s := range saved {
		pterm.Printf("%s  %s\n    %s\n", s.ID, s.Name, truncateStatement(s.StatementText))
	}
	return nil
}

func runSavedRm(cmd *cobra.Command, args []string) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := storage.NewSQLStore(database, logger.Logger)
	if err := store.DeleteSaved(context.Background(), args[0]); err != nil {
		return err
	}

	pterm.Success.Printf("Deleted %s\n", args[0])
	return nil
}
