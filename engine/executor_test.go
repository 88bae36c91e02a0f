package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/ASE/errors"
	"github.com/teranos/ASE/transport"
)

// fakeTransport scripts per-statement behavior and records every call.
type fakeTransport struct {
	calls   []string
	results map[string]*transport.Result
	errs    map[string]error
}

func (f *fakeTransport) Execute(_ context.Context, _, statement string) (*transport.Result, error) {
	f.calls = append(f.calls, statement)
	if err, ok := f.errs[statement]; ok {
		return nil, err
	}
	if res, ok := f.results[statement]; ok {
		return res, nil
	}
	return &transport.Result{Kind: transport.ResultScalar, Scalar: int64(1), RowCount: 1}, nil
}

type fakeColumns struct {
	cols []transport.ColumnDescriptor
	err  error
}

func (f *fakeColumns) Columns(context.Context, string) ([]transport.ColumnDescriptor, error) {
	return f.cols, f.err
}

func tabular(rows int) *transport.Result {
	return &transport.Result{Kind: transport.ResultTabular, Columns: []string{"a"}, RowCount: rows}
}

func newTestEngine(t *testing.T, ft transport.ExecutionTransport, fc transport.ColumnProvider) *Engine {
	t.Helper()
	return New(ft, fc, NewLedger(50), zaptest.NewLogger(t).Sugar())
}

func TestSubmit_LastSuccessWins(t *testing.T) {
	first := tabular(3)
	third := tabular(7)
	ft := &fakeTransport{results: map[string]*transport.Result{
		"SELECT a FROM t": first,
		"SELECT c FROM t": third,
	}}
	e := newTestEngine(t, ft, nil)

	// Statement 2 fails validation; 1 and 3 succeed
	batch, err := e.Submit(context.Background(), "SELECT a FROM t; DROP TABLE t; SELECT c FROM t", "t")
	require.NoError(t, err)

	require.Len(t, batch.Outcomes, 3)
	assert.Equal(t, 2, batch.SuccessCount)
	assert.Equal(t, 1, batch.FailureCount)
	assert.Same(t, third, batch.DisplayedResult, "displayed result is the last success, not the first")
}

func TestSubmit_RejectedStatementsNeverReachTransport(t *testing.T) {
	ft := &fakeTransport{}
	e := newTestEngine(t, ft, nil)

	batch, err := e.Submit(context.Background(), "SELECT * FROM dataset LIMIT 10; DELETE FROM dataset;", "dataset")
	require.NoError(t, err)

	// Only the accepted statement was dispatched
	assert.Equal(t, []string{"SELECT * FROM dataset LIMIT 10"}, ft.calls)

	require.Len(t, batch.Outcomes, 2)
	assert.Equal(t, 1, batch.SuccessCount)
	assert.Equal(t, 1, batch.FailureCount)

	assert.True(t, batch.Outcomes[0].Success)
	assert.Equal(t, 1, batch.Outcomes[0].Index)
	assert.NotNil(t, batch.DisplayedResult)
	assert.Same(t, batch.Outcomes[0].Result, batch.DisplayedResult)

	assert.False(t, batch.Outcomes[1].Success)
	assert.Equal(t, 2, batch.Outcomes[1].Index)
	assert.Contains(t, batch.Outcomes[1].ErrorMessage, "DELETE")
}

func TestSubmit_TransportFailureDoesNotShortCircuit(t *testing.T) {
	ft := &fakeTransport{
		errs: map[string]error{
			"SELECT a FROM t": errors.NewTransportError("connection refused"),
			"SELECT b FROM t": errors.NewTransportError("connection refused"),
		},
		results: map[string]*transport.Result{
			"SELECT c FROM t": tabular(2),
		},
	}
	e := newTestEngine(t, ft, nil)

	batch, err := e.Submit(context.Background(), "SELECT a FROM t; SELECT b FROM t; SELECT c FROM t", "t")
	require.NoError(t, err, "per-statement transport failures never abort the batch")

	// Every statement was still attempted
	assert.Len(t, ft.calls, 3)
	assert.Equal(t, 1, batch.SuccessCount)
	assert.Equal(t, 2, batch.FailureCount)
	assert.Contains(t, batch.Outcomes[0].ErrorMessage, "connection refused")
	assert.Equal(t, 0, batch.Outcomes[0].RowCount)
}

func TestSubmit_AllFailedMeansNoDisplayedResult(t *testing.T) {
	ft := &fakeTransport{errs: map[string]error{
		"SELECT a FROM t": errors.NewTransportError("boom"),
	}}
	e := newTestEngine(t, ft, nil)

	batch, err := e.Submit(context.Background(), "SELECT a FROM t;", "t")
	require.NoError(t, err)
	assert.Nil(t, batch.DisplayedResult)
	assert.Equal(t, 0, batch.SuccessCount)
}

func TestSubmit_EmptyDatasetIDIsConfigurationError(t *testing.T) {
	e := newTestEngine(t, &fakeTransport{}, nil)

	_, err := e.Submit(context.Background(), "SELECT 1 FROM t", "")
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))

	_, err = e.Submit(context.Background(), "SELECT 1 FROM t", "   ")
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestSubmit_EmptyInputYieldsEmptyBatch(t *testing.T) {
	ft := &fakeTransport{}
	e := newTestEngine(t, ft, nil)

	batch, err := e.Submit(context.Background(), " ;; ", "t")
	require.NoError(t, err)
	assert.Empty(t, batch.Outcomes)
	assert.Empty(t, ft.calls)
	assert.Nil(t, batch.DisplayedResult)
}

func TestSubmit_RecordsHistoryForFailedBatches(t *testing.T) {
	ft := &fakeTransport{errs: map[string]error{
		"SELECT a FROM t": errors.NewTransportError("down"),
	}}
	e := newTestEngine(t, ft, nil)

	_, err := e.Submit(context.Background(), "SELECT a FROM t", "t")
	require.NoError(t, err)

	// History records attempts, not just successes
	recent := e.Recent(10)
	require.Len(t, recent, 1)
	assert.Equal(t, "SELECT a FROM t", recent[0].StatementText)
	assert.Nil(t, recent[0].Result)
}

type captureSink struct {
	entries []HistoryEntry
	err     error
}

func (c *captureSink) RecordHistory(_ context.Context, e HistoryEntry) error {
	c.entries = append(c.entries, e)
	return c.err
}

func TestSubmit_HistorySink(t *testing.T) {
	t.Run("entries flow to the sink", func(t *testing.T) {
		sink := &captureSink{}
		e := newTestEngine(t, &fakeTransport{}, nil).WithHistorySink(sink)

		_, err := e.Submit(context.Background(), "SELECT 1 FROM t", "t")
		require.NoError(t, err)
		require.Len(t, sink.entries, 1)
		assert.Equal(t, "SELECT 1 FROM t", sink.entries[0].StatementText)
	})

	t.Run("sink failure is swallowed", func(t *testing.T) {
		sink := &captureSink{err: errors.New("disk full")}
		e := newTestEngine(t, &fakeTransport{}, nil).WithHistorySink(sink)

		_, err := e.Submit(context.Background(), "SELECT 1 FROM t", "t")
		require.NoError(t, err)
		assert.Equal(t, 1, e.ledger.Len(), "in-memory ledger still records the entry")
	})
}

func TestTemplates_DegradesOnProviderFailure(t *testing.T) {
	fc := &fakeColumns{err: errors.NewTransportError("metadata service down")}
	e := newTestEngine(t, &fakeTransport{}, fc)

	templates, err := e.Templates(context.Background(), "t")
	require.NoError(t, err, "provider failure degrades to fewer templates, never an error")
	assert.Equal(t, []string{
		"Basic Select",
		"Count Records",
		"Data Quality Check",
		"Schema Info",
	}, templateNames(templates))
}

func TestTemplates_UsesProviderColumns(t *testing.T) {
	fc := &fakeColumns{cols: salesColumns()}
	e := newTestEngine(t, &fakeTransport{}, fc)

	templates, err := e.Templates(context.Background(), "sales")
	require.NoError(t, err)
	assert.Len(t, templates, 12)
}

func TestTemplates_EmptyDatasetID(t *testing.T) {
	e := newTestEngine(t, &fakeTransport{}, &fakeColumns{})
	_, err := e.Templates(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestSaveAndToggle(t *testing.T) {
	e := newTestEngine(t, &fakeTransport{}, nil)

	saved := e.Save("Daily revenue", "SELECT SUM(revenue) FROM sales")
	assert.NotEmpty(t, saved.ID)
	require.Len(t, e.Saved(), 1)

	_, err := e.Submit(context.Background(), "SELECT 1 FROM t", "t")
	require.NoError(t, err)

	recent := e.Recent(1)
	require.Len(t, recent, 1)
	e.ToggleFavorite(recent[0].ID)
	require.Len(t, e.Favorites(), 1)

	// Saving and favoriting are disjoint concerns
	assert.Len(t, e.Saved(), 1)
}

func TestSubmit_EndToEndScenario(t *testing.T) {
	payload := tabular(10)
	ft := &fakeTransport{results: map[string]*transport.Result{
		"SELECT * FROM dataset LIMIT 10": payload,
	}}
	e := newTestEngine(t, ft, nil)

	batch, err := e.Submit(context.Background(), `SELECT * FROM dataset LIMIT 10; DELETE FROM dataset;`, "dataset")
	require.NoError(t, err)

	assert.Equal(t, 1, batch.SuccessCount)
	assert.Equal(t, 1, batch.FailureCount)
	assert.Same(t, payload, batch.DisplayedResult)
	assert.Contains(t, batch.Outcomes[1].ErrorMessage, "DELETE")
}
