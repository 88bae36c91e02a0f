package engine

import (
	"time"

	"github.com/teranos/ASE/transport"
)

// StatementKind distinguishes raw SQL from natural-language requests that
// were translated upstream. The engine validates and executes both the
// same way; the kind is carried for history display.
type StatementKind string

const (
	KindSQL             StatementKind = "sql"
	KindNaturalLanguage StatementKind = "natural"
)

// Statement is a single unit of analytical intent.
// Text is never empty after trimming; empty fragments are dropped by the
// splitter before validation.
type Statement struct {
	Text string        `json:"text"`
	Kind StatementKind `json:"kind"`
}

// ExecutionOutcome records what happened to one statement of a batch.
type ExecutionOutcome struct {
	// Index is the 1-based position in the original batch.
	Index         int               `json:"index"`
	StatementText string            `json:"statement_text"`
	Success       bool              `json:"success"`
	Result        *transport.Result `json:"result,omitempty"`
	ErrorMessage  string            `json:"error_message,omitempty"`
	// RowCount is the backend-reported row count, 0 if the statement failed.
	RowCount int `json:"row_count"`
}

// BatchResult aggregates the outcomes of one submission, which may have
// split into several statements. Immutable once returned.
type BatchResult struct {
	Outcomes     []ExecutionOutcome `json:"outcomes"`
	TotalElapsed time.Duration      `json:"total_elapsed"`

	// DisplayedResult is the payload of the last successful outcome in
	// submission order ("most recent wins"), nil if none succeeded.
	DisplayedResult *transport.Result `json:"displayed_result,omitempty"`

	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
}

// Template is one named, ready-to-run analytic statement.
type Template struct {
	Name string `json:"name"`
	SQL  string `json:"sql"`
}
