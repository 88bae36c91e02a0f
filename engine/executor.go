package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/ASE/errors"
	"github.com/teranos/ASE/sym"
	"github.com/teranos/ASE/transport"
)

// HistorySink receives a durable copy of every history entry the engine
// records. Persistence failures are logged and swallowed; the in-memory
// ledger remains the source of truth for the session.
type HistorySink interface {
	RecordHistory(ctx context.Context, entry HistoryEntry) error
}

// Engine wires the splitter, validator and ledger to an execution
// transport and a column metadata provider. Aside from the ledger, all of
// its behavior is stateless.
type Engine struct {
	transport transport.ExecutionTransport
	columns   transport.ColumnProvider
	ledger    *Ledger
	sink      HistorySink
	logger    *zap.SugaredLogger
}

// New creates an engine. The column provider may be nil if template
// generation is not needed.
func New(t transport.ExecutionTransport, columns transport.ColumnProvider, ledger *Ledger, logger *zap.SugaredLogger) *Engine {
	if ledger == nil {
		ledger = NewLedger(DefaultHistoryCapacity)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{
		transport: t,
		columns:   columns,
		ledger:    ledger,
		logger:    logger,
	}
}

// WithHistorySink attaches a durable history sink and returns the engine.
func (e *Engine) WithHistorySink(sink HistorySink) *Engine {
	e.sink = sink
	return e
}

// Submit splits rawText into statements, validates each, and dispatches
// the accepted ones sequentially to the transport. Statements never run
// concurrently: submission order determines the "last successful wins"
// display rule, and the backend may be rate limited.
//
// Per-statement failures (validation or transport) are recorded as failed
// outcomes and never abort the rest of the batch. Only a malformed
// submission itself — an empty dataset id — returns an error.
func (e *Engine) Submit(ctx context.Context, rawText, datasetID string) (*BatchResult, error) {
	if strings.TrimSpace(datasetID) == "" {
		return nil, errors.NewConfigurationError("dataset id is empty")
	}

	statements := Split(rawText)
	e.logger.Debugw("Submission split",
		"symbol", sym.SPLIT,
		"dataset", datasetID,
		"statements", len(statements),
	)

	started := time.Now()
	batch := &BatchResult{Outcomes: make([]ExecutionOutcome, 0, len(statements))}

	for i, stmt := range statements {
		outcome := ExecutionOutcome{Index: i + 1, StatementText: stmt}

		if vr := Validate(stmt); !vr.Accepted {
			// Rejected statements never reach the transport.
			outcome.ErrorMessage = vr.Reason
			e.logger.Warnw("Statement rejected",
				"symbol", sym.CHECK,
				"index", outcome.Index,
				"reason", vr.Reason,
			)
			batch.Outcomes = append(batch.Outcomes, outcome)
			continue
		}

		result, err := e.transport.Execute(ctx, datasetID, stmt)
		if err != nil {
			outcome.ErrorMessage = err.Error()
			e.logger.Warnw("Statement execution failed",
				"symbol", sym.FAIL,
				"index", outcome.Index,
				"dataset", datasetID,
				"error", err,
			)
		} else {
			outcome.Success = true
			outcome.Result = result
			outcome.RowCount = result.RowCount
			e.logger.Debugw("Statement executed",
				"symbol", sym.OK,
				"index", outcome.Index,
				"rows", result.RowCount,
			)
		}
		batch.Outcomes = append(batch.Outcomes, outcome)
	}

	batch.TotalElapsed = time.Since(started)
	for _, o := range batch.Outcomes {
		if o.Success {
			batch.SuccessCount++
			batch.DisplayedResult = o.Result
		} else {
			batch.FailureCount++
		}
	}

	e.recordSubmission(ctx, rawText, batch)

	e.logger.Infow("Batch complete",
		"symbol", sym.RUN,
		"dataset", datasetID,
		"succeeded", batch.SuccessCount,
		"failed", batch.FailureCount,
		"elapsed", batch.TotalElapsed,
	)
	return batch, nil
}

// recordSubmission writes one history entry per submission, whether or not
// anything succeeded: history records attempts, not just successes.
func (e *Engine) recordSubmission(ctx context.Context, rawText string, batch *BatchResult) {
	entry := HistoryEntry{
		ID:            uuid.NewString(),
		StatementText: strings.TrimSpace(rawText),
		Kind:          KindSQL,
		Timestamp:     time.Now(),
		Elapsed:       batch.TotalElapsed,
		Result:        batch.DisplayedResult,
	}
	e.ledger.Record(entry)

	if e.sink != nil {
		if err := e.sink.RecordHistory(ctx, entry); err != nil {
			e.logger.Warnw("Failed to persist history entry",
				"symbol", sym.HX,
				"entry_id", entry.ID,
				"error", err,
			)
		}
	}
}

// Templates generates the analytic template battery for a dataset from its
// live column metadata. Provider failures degrade to the column-free
// battery, never to an error: fewer templates, no crash.
func (e *Engine) Templates(ctx context.Context, datasetID string) ([]Template, error) {
	if strings.TrimSpace(datasetID) == "" {
		return nil, errors.NewConfigurationError("dataset id is empty")
	}

	var columns []transport.ColumnDescriptor
	if e.columns != nil {
		cols, err := e.columns.Columns(ctx, datasetID)
		if err != nil {
			e.logger.Warnw("Column metadata unavailable, generating reduced template set",
				"symbol", sym.TPL,
				"dataset", datasetID,
				"error", err,
			)
		} else {
			columns = cols
		}
	}

	return GenerateTemplates(datasetID, columns), nil
}

// Recent returns up to n history entries, most recent first.
func (e *Engine) Recent(n int) []HistoryEntry { return e.ledger.Recent(n) }

// Favorites returns favorited history entries, most recent first.
func (e *Engine) Favorites() []HistoryEntry { return e.ledger.Favorites() }

// ToggleFavorite flips the favorite flag on a history entry by id.
func (e *Engine) ToggleFavorite(id string) { e.ledger.ToggleFavorite(id) }

// Save adds a statement to the saved list, assigning an id if absent.
func (e *Engine) Save(name, statementText string) SavedStatement {
	s := SavedStatement{
		ID:            uuid.NewString(),
		Name:          name,
		StatementText: statementText,
		Kind:          KindSQL,
		SavedAt:       time.Now(),
	}
	e.ledger.Save(s)
	return s
}

// Saved returns the saved list in insertion order.
func (e *Engine) Saved() []SavedStatement { return e.ledger.Saved() }
