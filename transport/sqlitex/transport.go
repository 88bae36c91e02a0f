// Package sqlitex implements the execution transport and column metadata
// provider over an embedded SQLite database. Each dataset is a table; the
// statement is executed as-is, so whatever the engine's validator accepted
// is what the backend sees.
package sqlitex

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/ASE/errors"
	"github.com/teranos/ASE/sym"
	"github.com/teranos/ASE/transport"
)

const (
	defaultQueryTimeout      = 30 * time.Second
	defaultMaxRetries        = 2
	defaultRequestsPerMinute = 120

	initialBackoff = 250 * time.Millisecond
	maxBackoff     = 2 * time.Second
)

const datasetExistsQuery = `
	SELECT EXISTS(SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)`

// Config tunes per-call behavior. Zero values fall back to defaults.
type Config struct {
	QueryTimeout      time.Duration
	MaxRetries        int
	RequestsPerMinute int
}

// Transport executes statements against tables in a SQLite database with a
// bounded per-call timeout, a small retry budget, and a rate limiter so a
// burst of batches cannot starve concurrent readers.
type Transport struct {
	db      *sql.DB
	logger  *zap.SugaredLogger
	timeout time.Duration
	retries int
	limiter *rate.Limiter
}

// New creates a SQLite-backed transport. Pass nil config to use defaults.
func New(db *sql.DB, logger *zap.SugaredLogger, config *Config) *Transport {
	if config == nil {
		config = &Config{}
	}
	timeout := config.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	retries := config.MaxRetries
	if retries < 0 {
		retries = defaultMaxRetries
	}
	rpm := config.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Transport{
		db:      db,
		logger:  logger,
		timeout: timeout,
		retries: retries,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

// Execute runs one statement against the named dataset. Any failure —
// unknown dataset, SQL error, timeout — comes back as a transport-classed
// error so the engine can tell infrastructure trouble from a bad query.
func (t *Transport) Execute(ctx context.Context, datasetID, statement string) (*transport.Result, error) {
	var exists bool
	if err := t.db.QueryRowContext(ctx, datasetExistsQuery, datasetID).Scan(&exists); err != nil {
		return nil, errors.WrapTransport(err, "check dataset")
	}
	if !exists {
		return nil, errors.NewTransportError("unknown dataset: %s", datasetID)
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, errors.WrapTransport(err, "rate limit wait")
	}

	var lastErr error
	for attempt := 0; attempt <= t.retries; attempt++ {
		if attempt > 0 {
			// Backoff: 250ms, 500ms, 1s, ... capped at maxBackoff
			backoff := initialBackoff * time.Duration(1<<(attempt-1))
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			select {
			case <-ctx.Done():
				return nil, errors.WrapTransport(ctx.Err(), "canceled while retrying")
			case <-time.After(backoff):
			}
			t.logger.Debugw("Retrying statement",
				"symbol", sym.RUN,
				"dataset", datasetID,
				"attempt", attempt,
			)
		}

		result, err := t.query(ctx, statement)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Context expiry is not transient; retrying cannot help
		if ctx.Err() != nil {
			break
		}
	}

	return nil, errors.WrapTransport(lastErr, "execute statement")
}

// query runs one attempt under the configured timeout and shapes the rows
// into a Result: scalar when exactly one cell came back, tabular otherwise.
func (t *Transport) query(ctx context.Context, statement string) (*transport.Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	rows, err := t.db.QueryContext(queryCtx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		for i, v := range values {
			// SQLite hands back []byte for TEXT; strings are friendlier downstream
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(data) == 1 && len(columns) == 1 {
		return &transport.Result{
			Kind:     transport.ResultScalar,
			Scalar:   data[0][0],
			RowCount: 1,
		}, nil
	}

	return &transport.Result{
		Kind:     transport.ResultTabular,
		Columns:  columns,
		Rows:     data,
		RowCount: len(data),
	}, nil
}
