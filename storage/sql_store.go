// Package storage provides SQLite-backed persistence for the engine's
// saved statements and a durable mirror of the history ledger. The engine
// itself never persists anything; this package is the swap-in store the
// ledger's narrow interface was designed for.
package storage

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/ASE/engine"
	"github.com/teranos/ASE/errors"
)

// Query constants
const (
	historyInsertQuery = `
		INSERT INTO query_history (id, statement, kind, executed_at, elapsed_ms, favorite)
		VALUES (?, ?, ?, ?, ?, ?)`

	historyRecentQuery = `
		SELECT id, statement, kind, executed_at, elapsed_ms, favorite
		FROM query_history
		ORDER BY executed_at DESC
		LIMIT ?`

	savedInsertQuery = `
		INSERT INTO saved_statements (id, name, statement, kind, saved_at)
		VALUES (?, ?, ?, ?, ?)`

	savedListQuery = `
		SELECT id, name, statement, kind, saved_at
		FROM saved_statements
		ORDER BY saved_at ASC`

	savedDeleteQuery = `
		DELETE FROM saved_statements WHERE id = ?`
)

// SQLStore persists history entries and saved statements.
// Implements engine.HistorySink.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLStore creates a new SQL-backed store.
func NewSQLStore(db *sql.DB, logger *zap.SugaredLogger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SQLStore{db: db, logger: logger}
}

// RecordHistory inserts one history entry (implements engine.HistorySink).
func (s *SQLStore) RecordHistory(ctx context.Context, entry engine.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, historyInsertQuery,
		entry.ID,
		entry.StatementText,
		string(entry.Kind),
		entry.Timestamp.UTC(),
		entry.Elapsed.Milliseconds(),
		entry.Favorite,
	)
	if err != nil {
		return errors.Wrap(err, "insert history entry")
	}
	return nil
}

// RecentHistory returns up to n persisted entries, most recent first.
// Result payloads are not persisted, so entries come back without them.
func (s *SQLStore) RecentHistory(ctx context.Context, n int) ([]engine.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, historyRecentQuery, n)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	var entries []engine.HistoryEntry
	for rows.Next() {
		var (
			entry     engine.HistoryEntry
			kind      string
			elapsedMS int64
			executed  time.Time
		)
		if err := rows.Scan(&entry.ID, &entry.StatementText, &kind, &executed, &elapsedMS, &entry.Favorite); err != nil {
			return nil, errors.Wrap(err, "scan history entry")
		}
		entry.Kind = engine.StatementKind(kind)
		entry.Timestamp = executed
		entry.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate history")
	}
	return entries, nil
}

// SaveStatement persists a saved statement.
func (s *SQLStore) SaveStatement(ctx context.Context, saved engine.SavedStatement) error {
	_, err := s.db.ExecContext(ctx, savedInsertQuery,
		saved.ID,
		saved.Name,
		saved.StatementText,
		string(saved.Kind),
		saved.SavedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "insert saved statement")
	}
	return nil
}

// ListSaved returns all saved statements in save order.
func (s *SQLStore) ListSaved(ctx context.Context) ([]engine.SavedStatement, error) {
	rows, err := s.db.QueryContext(ctx, savedListQuery)
	if err != nil {
		return nil, errors.Wrap(err, "query saved statements")
	}
	defer rows.Close()

	var saved []engine.SavedStatement
	for rows.Next() {
		var (
			item engine.SavedStatement
			kind string
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.StatementText, &kind, &item.SavedAt); err != nil {
			return nil, errors.Wrap(err, "scan saved statement")
		}
		item.Kind = engine.StatementKind(kind)
		saved = append(saved, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate saved statements")
	}
	return saved, nil
}

// DeleteSaved removes a saved statement by id.
func (s *SQLStore) DeleteSaved(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, savedDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "delete saved statement")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrap(errors.ErrNotFound, id)
	}
	return nil
}
