// Package engine implements the analytical statement engine: a quote-aware
// statement splitter, a restricted read-only validator, a deterministic
// template generator driven by column metadata, a sequential batch executor
// with partial-failure aggregation, and a size-bounded history/favorites
// ledger.
//
// Splitting and validation are pure functions. The executor talks to the
// outside world only through the transport package interfaces, so the
// backend can be anything from an embedded SQLite database to a remote
// query service.
package engine
