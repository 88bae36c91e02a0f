// Package sym defines canonical symbols for ASE operations and system markers.
// These symbols are stable across CLI output and log fields.
package sym

// Glyph string constants — the visual expression of each subsystem.
const (
	DB     = "⛁" // database operations
	RUN    = "▶" // statement execution
	SPLIT  = "⑂" // statement splitting
	CHECK  = "⊨" // statement validation
	TPL    = "▤" // template generation
	HX     = "↺" // history / ledger
	INGEST = "⨳" // dataset ingestion
	OK     = "✓" // per-statement success
	FAIL   = "✗" // per-statement failure
)

// Name returns the human-readable name for a glyph, or "" if unknown.
func Name(glyph string) string {
	switch glyph {
	case DB:
		return "database"
	case RUN:
		return "execute"
	case SPLIT:
		return "split"
	case CHECK:
		return "validate"
	case TPL:
		return "templates"
	case HX:
		return "history"
	case INGEST:
		return "ingest"
	case OK:
		return "success"
	case FAIL:
		return "failure"
	}
	return ""
}
