package sqlitex

import (
	"context"
	"fmt"
	"strings"

	"github.com/teranos/ASE/errors"
	"github.com/teranos/ASE/transport"
)

// categoricalDistinctLimit is the distinct-value cutoff under which a text
// column is treated as categorical rather than free text.
const categoricalDistinctLimit = 20

const tableInfoQuery = `SELECT name, type FROM pragma_table_info(?)`

// Columns implements transport.ColumnProvider: it reads the dataset's
// declared schema and maps each column to the engine's coarse type
// vocabulary. Text columns are probed for cardinality to split categorical
// from free text.
func (t *Transport) Columns(ctx context.Context, datasetID string) ([]transport.ColumnDescriptor, error) {
	rows, err := t.db.QueryContext(ctx, tableInfoQuery, datasetID)
	if err != nil {
		return nil, errors.WrapTransport(err, "read table info")
	}
	defer rows.Close()

	type rawColumn struct {
		name, declared string
	}
	var raw []rawColumn
	for rows.Next() {
		var c rawColumn
		if err := rows.Scan(&c.name, &c.declared); err != nil {
			return nil, errors.WrapTransport(err, "scan table info")
		}
		raw = append(raw, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapTransport(err, "iterate table info")
	}
	if len(raw) == 0 {
		return nil, errors.NewTransportError("unknown dataset: %s", datasetID)
	}

	descriptors := make([]transport.ColumnDescriptor, 0, len(raw))
	for _, c := range raw {
		colType := declaredType(c.declared)
		if colType == transport.ColumnText && t.isCategorical(ctx, datasetID, c.name) {
			colType = transport.ColumnCategorical
		}
		descriptors = append(descriptors, transport.ColumnDescriptor{
			Name:         c.name,
			InferredType: colType,
		})
	}
	return descriptors, nil
}

// declaredType maps a SQLite declared type to the engine's vocabulary,
// following SQLite's own affinity rules where they apply.
func declaredType(declared string) transport.ColumnType {
	d := strings.ToUpper(declared)
	switch {
	case strings.Contains(d, "BOOL"):
		return transport.ColumnBoolean
	case strings.Contains(d, "DATE"), strings.Contains(d, "TIME"):
		return transport.ColumnDatetime
	case strings.Contains(d, "INT"),
		strings.Contains(d, "REAL"),
		strings.Contains(d, "FLOA"),
		strings.Contains(d, "DOUB"),
		strings.Contains(d, "NUM"),
		strings.Contains(d, "DEC"):
		return transport.ColumnNumeric
	default:
		return transport.ColumnText
	}
}

// isCategorical probes a text column's cardinality. Probe failures fall
// back to free text rather than failing metadata retrieval.
func (t *Transport) isCategorical(ctx context.Context, table, column string) bool {
	query := fmt.Sprintf(`SELECT COUNT(DISTINCT %s) FROM %s`,
		quoteIdent(column), quoteIdent(table))

	var distinct int
	if err := t.db.QueryRowContext(ctx, query).Scan(&distinct); err != nil {
		return false
	}
	return distinct > 0 && distinct <= categoricalDistinctLimit
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
