package commands

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/ASE/am"
	"github.com/teranos/ASE/errors"
	"github.com/teranos/ASE/sym"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Manage ASE database",
	Long: sym.DB + ` db — Manage ASE database operations

Manage database operations including migrations and statistics.

Examples:
  ase db stats      # Show dataset, history, and saved statement counts
  ase db migrate    # Apply pending schema migrations`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long:  "Display dataset tables, history entries, and saved statement counts",
	RunE:  runDbStats,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDbMigrate,
}

func init() {
	DbCmd.AddCommand(dbStatsCmd)
	DbCmd.AddCommand(dbMigrateCmd)
}

// systemTables are ASE's own tables, excluded from the dataset listing.
var systemTables = map[string]bool{
	"schema_migrations": true,
	"saved_statements":  true,
	"query_history":     true,
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := openDatabase("")
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	var historyCount, savedCount int
	if err := database.QueryRow(`SELECT COUNT(*) FROM query_history`).Scan(&historyCount); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to count history entries: %w", err)
	}
	if err := database.QueryRow(`SELECT COUNT(*) FROM saved_statements`).Scan(&savedCount); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to count saved statements: %w", err)
	}

	rows, err := database.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var datasets []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan table name: %w", err)
		}
		if !systemTables[name] {
			datasets = append(datasets, name)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	fmt.Printf("%s Database Statistics\n", sym.DB)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Database Path:    %s\n", cfg.Database.Path)
	fmt.Printf("History Entries:  %d\n", historyCount)
	fmt.Printf("Saved Statements: %d\n", savedCount)
	fmt.Printf("Datasets:         %d\n", len(datasets))
	for _, name := range datasets {
		var rowCount int
		if err := database.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, name)).Scan(&rowCount); err != nil {
			continue
		}
		fmt.Printf("  %s (%d rows)\n", name, rowCount)
	}

	return nil
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	// openDatabase migrates as part of opening
	database, err := openDatabase("")
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	fmt.Println("✓ Database schema is up to date")
	return nil
}
