package ingest

// CSV dataset ingestion for the ASE analytical engine.

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/ASE/errors"
	"github.com/teranos/ASE/sym"
)

const (
	// TypeInferenceSampleSize bounds how many rows are examined when
	// inferring column affinities.
	TypeInferenceSampleSize = 100

	// insertBatchSize bounds rows per transaction flush during loading.
	insertBatchSize = 500
)

// CSVProcessor loads CSV files into SQLite tables that the execution
// transport can then query as datasets.
type CSVProcessor struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// Summary represents the result of a CSV ingestion run.
type Summary struct {
	SourcePath string        `json:"source_path"`
	Dataset    string        `json:"dataset"`
	Columns    []string      `json:"columns"`
	RowCount   int           `json:"row_count"`
	Elapsed    time.Duration `json:"elapsed"`
}

// NewCSVProcessor creates a new CSV ingestion processor.
func NewCSVProcessor(db *sql.DB, logger *zap.SugaredLogger) *CSVProcessor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CSVProcessor{db: db, logger: logger}
}

// IngestFile loads a CSV file into a table named after the file (or
// the explicit dataset name when non-empty). An existing table with
// the same name is replaced.
func (p *CSVProcessor) IngestFile(ctx context.Context, path string, dataset string) (*Summary, error) {
	start := time.Now()

	if dataset == "" {
		dataset = sanitizeIdentifier(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	} else {
		dataset = sanitizeIdentifier(dataset)
	}
	if dataset == "" {
		return nil, errors.NewValidationError("could not derive a dataset name from %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CSV file %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewValidationError("CSV file %s is empty", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read CSV header from %s", path)
	}

	columns := sanitizeHeader(header)

	// Sample rows up front for type inference, then replay them before
	// streaming the remainder.
	var sample [][]string
	for len(sample) < TypeInferenceSampleSize {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read CSV record from %s", path)
		}
		sample = append(sample, record)
	}

	affinities := inferAffinities(columns, sample)

	if err := p.createTable(ctx, dataset, columns, affinities); err != nil {
		return nil, err
	}

	rowCount, err := p.loadRows(ctx, dataset, columns, sample, reader)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		SourcePath: path,
		Dataset:    dataset,
		Columns:    columns,
		RowCount:   rowCount,
		Elapsed:    time.Since(start),
	}

	p.logger.Infow(sym.INGEST+" CSV ingestion complete",
		"dataset", dataset,
		"rows", rowCount,
		"columns", len(columns),
		"elapsed", summary.Elapsed.String())

	return summary, nil
}

// createTable drops any previous table for the dataset and creates a
// fresh one with the inferred column affinities.
func (p *CSVProcessor) createTable(ctx context.Context, dataset string, columns []string, affinities []string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin schema transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, dataset)); err != nil {
		return errors.Wrapf(err, "failed to drop existing table %s", dataset)
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = fmt.Sprintf(`"%s" %s`, col, affinities[i])
	}
	createSQL := fmt.Sprintf(`CREATE TABLE "%s" (%s)`, dataset, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return errors.Wrapf(err, "failed to create table %s", dataset)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit schema transaction")
	}
	return nil
}

// loadRows inserts the sampled rows followed by the remaining stream,
// flushing a transaction every insertBatchSize rows.
func (p *CSVProcessor) loadRows(ctx context.Context, dataset string, columns []string, sample [][]string, reader *csv.Reader) (int, error) {
	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, col := range columns {
		placeholders[i] = "?"
		quoted[i] = fmt.Sprintf(`"%s"`, col)
	}
	insertSQL := fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s)`,
		dataset, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin insert transaction")
	}
	// tx is rebound on each batch flush and is nil if a re-begin fails;
	// the deferred rollback must see the latest one.
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to prepare insert for %s", dataset)
	}

	rowCount := 0
	insert := func(record []string) error {
		args := recordArgs(record, len(columns))
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "failed to insert row %d into %s", rowCount+1, dataset)
		}
		rowCount++

		if rowCount%insertBatchSize == 0 {
			stmt.Close()
			if err := tx.Commit(); err != nil {
				return errors.Wrap(err, "failed to commit insert batch")
			}
			tx, err = p.db.BeginTx(ctx, nil)
			if err != nil {
				return errors.Wrap(err, "failed to begin insert transaction")
			}
			stmt, err = tx.PrepareContext(ctx, insertSQL)
			if err != nil {
				return errors.Wrapf(err, "failed to prepare insert for %s", dataset)
			}
		}
		return nil
	}

	for _, record := range sample {
		if err := insert(record); err != nil {
			return rowCount, err
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rowCount, errors.Wrap(err, "failed to read CSV record")
		}
		if err := insert(record); err != nil {
			return rowCount, err
		}
	}

	stmt.Close()
	if err := tx.Commit(); err != nil {
		return rowCount, errors.Wrap(err, "failed to commit final insert batch")
	}
	return rowCount, nil
}

// recordArgs pads or truncates a CSV record to the column count,
// converting empty fields to NULL.
func recordArgs(record []string, width int) []any {
	args := make([]any, width)
	for i := 0; i < width; i++ {
		if i >= len(record) || record[i] == "" {
			args[i] = nil
			continue
		}
		args[i] = record[i]
	}
	return args
}

var identifierCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeIdentifier lowercases a name and collapses non-alphanumeric
// runs to underscores so it is safe as a SQLite identifier.
func sanitizeIdentifier(name string) string {
	cleaned := identifierCleaner.ReplaceAllString(strings.ToLower(name), "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned != "" && cleaned[0] >= '0' && cleaned[0] <= '9' {
		cleaned = "c_" + cleaned
	}
	return cleaned
}

// sanitizeHeader sanitizes each header cell, substituting positional
// names for blanks and suffixing until every name is unique. The suffix
// probe must loop: a later cell can collide with an already-suffixed
// name (e.g. "a_2,a,a").
func sanitizeHeader(header []string) []string {
	seen := make(map[string]bool, len(header))
	columns := make([]string, len(header))
	for i, cell := range header {
		name := sanitizeIdentifier(cell)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for n := 2; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[name] = true
		columns[i] = name
	}
	return columns
}

// inferAffinities picks INTEGER, REAL, or TEXT per column from the
// sampled rows. Empty fields are ignored; a column with no values at
// all defaults to TEXT.
func inferAffinities(columns []string, sample [][]string) []string {
	affinities := make([]string, len(columns))
	for i := range columns {
		isInteger := true
		isReal := true
		populated := false

		for _, record := range sample {
			if i >= len(record) || record[i] == "" {
				continue
			}
			populated = true
			value := record[i]
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				isInteger = false
			}
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				isReal = false
			}
			if !isInteger && !isReal {
				break
			}
		}

		switch {
		case !populated:
			affinities[i] = "TEXT"
		case isInteger:
			affinities[i] = "INTEGER"
		case isReal:
			affinities[i] = "REAL"
		default:
			affinities[i] = "TEXT"
		}
	}
	return affinities
}
