package commands

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ASE/display"
	"github.com/teranos/ASE/sym"
)

var templatesShowSQL bool

// TemplatesCmd represents the templates command
var TemplatesCmd = &cobra.Command{
	Use:   "templates DATASET",
	Short: sym.TPL + " Generate analysis templates for a dataset",
	Long: sym.TPL + ` templates — Generate analysis templates for a dataset

Generates a deterministic battery of read-only analysis statements from the
dataset's live column metadata. Templates that need a numeric or categorical
column are only emitted when the dataset has one.

Examples:
  ase templates sales            # List template names for 'sales'
  ase templates sales --sql      # Include the generated SQL
  ase templates sales --json     # Machine-readable output`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplates,
}

func init() {
	TemplatesCmd.Flags().BoolVar(&templatesShowSQL, "sql", false, "Show the generated SQL for each template")
}

func runTemplates(cmd *cobra.Command, args []string) error {
	useJSON := display.ShouldOutputJSON(cmd)
	dataset := args[0]

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	eng, err := buildEngine(database)
	if err != nil {
		return err
	}

	templates, err := eng.Templates(context.Background(), dataset)
	if err != nil {
		return err
	}

	if useJSON {
		return display.OutputJSON(templates)
	}

	pterm.Info.Printf("%s %d templates for dataset %q\n\n", sym.TPL, len(templates), dataset)
	for i, tpl := range templates {
		pterm.Printf("%2d. %s\n", i+1, tpl.Name)
		if templatesShowSQL {
			pterm.Printf("    %s\n\n", tpl.SQL)
		}
	}
	return nil
}
