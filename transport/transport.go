// Package transport defines the execution boundary between the statement
// engine and whatever backend actually runs statements against a dataset.
// The engine treats implementations as opaque, possibly slow, possibly
// failing black boxes; everything backend-specific lives behind these
// interfaces.
package transport

import "context"

// ResultKind tags the shape of a result payload so callers can
// pattern-match exhaustively instead of probing a dynamic blob.
type ResultKind string

const (
	// ResultTabular is a rows-and-columns payload.
	ResultTabular ResultKind = "tabular"
	// ResultScalar is a single value (one row, one column).
	ResultScalar ResultKind = "scalar"
	// ResultError carries a backend-reported error message.
	ResultError ResultKind = "error"
)

// Result is the payload returned by a backend for one executed statement.
// Exactly one shape is populated, selected by Kind.
type Result struct {
	Kind ResultKind `json:"kind"`

	// Tabular shape
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`

	// Scalar shape
	Scalar any `json:"scalar,omitempty"`

	// Error shape
	Message string `json:"message,omitempty"`

	// RowCount is the number of rows the backend produced (0 on error).
	RowCount int `json:"row_count"`
}

// ColumnType is the engine's coarse view of a dataset column's type.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnDatetime    ColumnType = "datetime"
	ColumnBoolean     ColumnType = "boolean"
	ColumnText        ColumnType = "text"
)

// ColumnDescriptor describes one column of a dataset. The engine needs
// nothing beyond name and inferred type.
type ColumnDescriptor struct {
	Name         string     `json:"name"`
	InferredType ColumnType `json:"inferred_type"`
}

// ExecutionTransport runs one statement against a named dataset.
// Implementations fail with a transport-classed error (errors.ErrTransport)
// on any network, timeout, or remote-rejection condition.
type ExecutionTransport interface {
	Execute(ctx context.Context, datasetID, statement string) (*Result, error)
}

// ColumnProvider supplies live column metadata for a dataset.
// Used only by template generation; failures should be treated by callers
// as "no columns", never as fatal.
type ColumnProvider interface {
	Columns(ctx context.Context, datasetID string) ([]ColumnDescriptor, error)
}
