package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/ASE/errors"
	asetest "github.com/teranos/ASE/internal/testing"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIngestFile(t *testing.T) {
	db := asetest.CreateTestDB(t)

	path := writeCSV(t, "sales.csv", `region,amount,units
north,1200.50,3
south,800.25,2
east,950.00,4
`)

	processor := NewCSVProcessor(db, zaptest.NewLogger(t).Sugar())
	summary, err := processor.IngestFile(context.Background(), path, "")
	require.NoError(t, err)

	assert.Equal(t, "sales", summary.Dataset)
	assert.Equal(t, []string{"region", "amount", "units"}, summary.Columns)
	assert.Equal(t, 3, summary.RowCount)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sales`).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestIngestFile_TypeInference(t *testing.T) {
	db := asetest.CreateTestDB(t)

	path := writeCSV(t, "mixed.csv", `id,price,label
1,9.99,widget
2,12.50,gadget
`)

	processor := NewCSVProcessor(db, zaptest.NewLogger(t).Sugar())
	_, err := processor.IngestFile(context.Background(), path, "")
	require.NoError(t, err)

	rows, err := db.Query(`SELECT name, type FROM pragma_table_info('mixed')`)
	require.NoError(t, err)
	defer rows.Close()

	types := map[string]string{}
	for rows.Next() {
		var name, declared string
		require.NoError(t, rows.Scan(&name, &declared))
		types[name] = declared
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, "INTEGER", types["id"])
	assert.Equal(t, "REAL", types["price"])
	assert.Equal(t, "TEXT", types["label"])
}

func TestIngestFile_HeaderSanitization(t *testing.T) {
	db := asetest.CreateTestDB(t)

	path := writeCSV(t, "messy.csv", `Total Revenue ($),Total Revenue ($),,2021
10,20,x,y
`)

	processor := NewCSVProcessor(db, zaptest.NewLogger(t).Sugar())
	summary, err := processor.IngestFile(context.Background(), path, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"total_revenue", "total_revenue_2", "column_3", "c_2021"}, summary.Columns)
}

func TestIngestFile_ExplicitDatasetReplacesTable(t *testing.T) {
	db := asetest.CreateTestDB(t)

	processor := NewCSVProcessor(db, zaptest.NewLogger(t).Sugar())

	first := writeCSV(t, "v1.csv", "a,b\n1,2\n")
	_, err := processor.IngestFile(context.Background(), first, "metrics")
	require.NoError(t, err)

	second := writeCSV(t, "v2.csv", "a,b\n3,4\n5,6\n")
	summary, err := processor.IngestFile(context.Background(), second, "metrics")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.RowCount)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metrics`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestIngestFile_EmptyFieldsBecomeNull(t *testing.T) {
	db := asetest.CreateTestDB(t)

	path := writeCSV(t, "gaps.csv", "name,score\nalice,10\nbob,\n")

	processor := NewCSVProcessor(db, zaptest.NewLogger(t).Sugar())
	_, err := processor.IngestFile(context.Background(), path, "")
	require.NoError(t, err)

	var nulls int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM gaps WHERE score IS NULL`).Scan(&nulls))
	assert.Equal(t, 1, nulls)
}

func TestIngestFile_EmptyFile(t *testing.T) {
	db := asetest.CreateTestDB(t)

	path := writeCSV(t, "empty.csv", "")

	processor := NewCSVProcessor(db, zaptest.NewLogger(t).Sugar())
	_, err := processor.IngestFile(context.Background(), path, "")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestIngestFile_BatchBeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Exactly one full batch, so the flush at row 500 tries to open the
	// next transaction and hits the scripted failure.
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < insertBatchSize; i++ {
		fmt.Fprintf(&b, "%d\n", i)
	}
	path := writeCSV(t, "big.csv", b.String())

	mock.ExpectBegin()
	mock.ExpectExec(`DROP TABLE IF EXISTS "big"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE "big"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	mock.ExpectBegin()
	prepared := mock.ExpectPrepare(`INSERT INTO "big"`)
	for i := 0; i < insertBatchSize; i++ {
		prepared.ExpectExec().WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectCommit()
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	processor := NewCSVProcessor(db, zaptest.NewLogger(t).Sugar())

	var summary *Summary
	require.NotPanics(t, func() {
		summary, err = processor.IngestFile(context.Background(), path, "")
	})
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "failed to begin insert transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestFile_MissingFile(t *testing.T) {
	db := asetest.CreateTestDB(t)

	processor := NewCSVProcessor(db, zaptest.NewLogger(t).Sugar())
	_, err := processor.IngestFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "")
	require.Error(t, err)
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Total Revenue ($)", "total_revenue"},
		{"already_clean", "already_clean"},
		{"2021", "c_2021"},
		{"___", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeIdentifier(tt.in), tt.in)
	}
}

func TestSanitizeHeader_SuffixCollision(t *testing.T) {
	// A later duplicate may land on a name an earlier cell already holds;
	// the suffix has to keep climbing until it is unique.
	assert.Equal(t,
		[]string{"a_2", "a", "a_3"},
		sanitizeHeader([]string{"a_2", "a", "a"}))
	assert.Equal(t,
		[]string{"x", "x_2", "x_3"},
		sanitizeHeader([]string{"x", "x", "x"}))
}

func TestInferAffinities_EmptyColumnDefaultsToText(t *testing.T) {
	affinities := inferAffinities([]string{"a", "b"}, [][]string{{"1", ""}, {"2", ""}})
	assert.Equal(t, []string{"INTEGER", "TEXT"}, affinities)
}
