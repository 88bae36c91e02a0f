package commands

import (
	"bufio"
	"context"
	"database/sql"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ASE/am"
	"github.com/teranos/ASE/engine"
	"github.com/teranos/ASE/errors"
	"github.com/teranos/ASE/logger"
	"github.com/teranos/ASE/sym"
)

var replDataset string

// ReplCmd represents the repl command
var ReplCmd = &cobra.Command{
	Use:   "repl",
	Short: sym.RUN + " Interactive statement session",
	Long: sym.RUN + ` repl — Interactive statement session

Reads statements from stdin and executes them against the current dataset,
keeping the in-session history and favorites alive between submissions.
Edits to ~/.ase/am.toml are picked up while the session runs; the transport
is rebuilt with the new settings and the session history is kept.

Session commands:
  \use DATASET   switch the current dataset
  \history       show recent submissions from this session
  \templates     show analysis templates for the current dataset
  exit, quit     leave the session

Examples:
  ase repl --dataset sales
  ase repl`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	ReplCmd.Flags().StringVarP(&replDataset, "dataset", "d", "", "Dataset to execute against")
}

// replSession holds the swappable engine behind a lock so a config reload
// can rebuild the transport mid-session.
type replSession struct {
	mu  sync.Mutex
	eng *engine.Engine
}

func (s *replSession) engine() *engine.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng
}

func (s *replSession) swap(eng *engine.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng = eng
}

func runRepl(cmd *cobra.Command, args []string) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	// The ledger outlives transport rebuilds: favorites and history belong
	// to the session, not to any one engine instance.
	ledger := engine.NewLedger(cfg.Engine.HistoryCapacity)
	session := &replSession{eng: buildEngineWith(database, cfg, ledger)}

	if watcher := startConfigWatcher(database, ledger, session); watcher != nil {
		defer watcher.Stop()
	}

	pterm.Info.Printf("%s ASE session — type a statement, \\history, or exit\n", sym.RUN)
	if replDataset != "" {
		pterm.Info.Printf("dataset: %s\n", replDataset)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		pterm.Printf("%s> ", promptLabel())
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "exit" || line == "quit":
			return nil

		case strings.HasPrefix(line, `\use `):
			replDataset = strings.TrimSpace(strings.TrimPrefix(line, `\use `))
			pterm.Info.Printf("dataset: %s\n", replDataset)

		case line == `\history`:
			renderSessionHistory(session.engine())

		case line == `\templates`:
			if replDataset == "" {
				pterm.Warning.Println("no dataset selected; use \\use DATASET first")
				continue
			}
			templates, err := session.engine().Templates(context.Background(), replDataset)
			if err != nil {
				pterm.Error.Println(err.Error())
				continue
			}
			for _, tpl := range templates {
				pterm.Printf("%s %s\n    %s\n", sym.TPL, tpl.Name, tpl.SQL)
			}

		default:
			if replDataset == "" {
				pterm.Warning.Println("no dataset selected; use \\use DATASET first")
				continue
			}
			batch, err := session.engine().Submit(context.Background(), line, replDataset)
			if err != nil {
				pterm.Error.Println(err.Error())
				continue
			}
			renderBatch(batch)
		}
	}

	return scanner.Err()
}

func promptLabel() string {
	if replDataset == "" {
		return "ase"
	}
	return replDataset
}

// startConfigWatcher wires a reload hook on the user config file, if one
// exists. The hook rebuilds the engine transport from the new settings and
// swaps it into the session; failure to watch degrades to a static config.
func startConfigWatcher(database *sql.DB, ledger *engine.Ledger, session *replSession) *am.ConfigWatcher {
	configPath := am.UserConfigPath()
	if configPath == "" {
		return nil
	}
	if _, err := os.Stat(configPath); err != nil {
		return nil
	}

	watcher, err := am.NewConfigWatcher(configPath)
	if err != nil {
		logger.Warnw("Config watcher unavailable, session config is static",
			"file", configPath,
			"error", err)
		return nil
	}

	watcher.OnReload(func(next *am.Config) error {
		session.swap(buildEngineWith(database, next, ledger))
		pterm.Info.Printf("%s configuration reloaded\n", sym.OK)
		return nil
	})
	watcher.Start()
	return watcher
}

// renderSessionHistory prints the in-memory ledger, most recent first.
func renderSessionHistory(eng *engine.Engine) {
	entries := eng.Recent(20)
	if len(entries) == 0 {
		pterm.Info.Println("No submissions this session")
		return
	}
	pterm.Info.Printf("%s %d submissions this session\n", sym.HX, len(entries))
	for _, entry := range entries {
		marker := " "
		if entry.Favorite {
			marker = "★"
		}
		pterm.Printf("%s %s  %s  (%s)\n",
			marker,
			entry.Timestamp.Local().Format("15:04:05"),
			truncateStatement(entry.StatementText),
			entry.Elapsed.Round(time.Millisecond),
		)
	}
}
