package commands

import (
	"database/sql"
	"time"

	"github.com/teranos/ASE/am"
	"github.com/teranos/ASE/db"
	"github.com/teranos/ASE/engine"
	"github.com/teranos/ASE/errors"
	"github.com/teranos/ASE/logger"
	"github.com/teranos/ASE/storage"
	"github.com/teranos/ASE/transport/sqlitex"
)

// openDatabase opens and migrates a database using the specified path.
// If dbPath is empty, it loads from am config. Uses logger.Logger for db operations.
func openDatabase(dbPath string) (*sql.DB, error) {
	// Determine database path
	if dbPath == "" {
		path, err := am.GetDatabasePath()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get database path")
		}
		if path == "" {
			dbPath = "ase.db"
		} else {
			dbPath = path
		}
	}

	// Open database with logger
	database, err := db.Open(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	// Run migrations with logger
	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", dbPath)
	}

	return database, nil
}

// buildEngine wires a SQLite-backed statement engine with durable history.
// The caller owns the returned database handle.
func buildEngine(database *sql.DB) (*engine.Engine, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	return buildEngineWith(database, cfg, engine.NewLedger(cfg.Engine.HistoryCapacity)), nil
}

// buildEngineWith assembles an engine from an explicit config and ledger.
// Long-running sessions rebuild the transport through this on config
// reload while the session ledger survives the swap.
func buildEngineWith(database *sql.DB, cfg *am.Config, ledger *engine.Ledger) *engine.Engine {
	tr := sqlitex.New(database, logger.Logger, &sqlitex.Config{
		QueryTimeout:      time.Duration(cfg.Transport.QueryTimeoutSeconds) * time.Second,
		MaxRetries:        cfg.Transport.MaxRetries,
		RequestsPerMinute: cfg.Transport.RequestsPerMinute,
	})

	store := storage.NewSQLStore(database, logger.Logger)

	return engine.New(tr, tr, ledger, logger.Logger).WithHistorySink(store)
}
