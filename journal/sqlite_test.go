package journal

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func sampleRun(id string, created time.Time) RunRecord {
	return RunRecord{
		RunID:        id,
		Created:      created,
		Strategy:     "random",
		Instrument:   "DOGEUSDT",
		Dataset:      "trades.csv",
		Actions:      100,
		Fills:        98,
		Unfilled:     2,
		TotalPnL:     12.5,
		Sharpe:       0.42,
		Sortino:      0.6,
		MaxDrawdown:  -3.25,
		TradedVolume: 5000,
		AvgHoldingUS: 1_500_000,
		Flips:        7,
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','fills','equity')`)
	assert.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["runs"])
	assert.True(t, found["fills"])
	assert.True(t, found["equity"])
}

func TestSQLiteRunRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	rec := sampleRun("01RUN", created)
	require.NoError(t, j.RecordRun(ctx, rec))

	got, err := j.GetRun(ctx, "01RUN")
	require.NoError(t, err)

	assert.Equal(t, rec.RunID, got.RunID)
	assert.True(t, got.Created.Equal(created))
	assert.Equal(t, rec.Strategy, got.Strategy)
	assert.Equal(t, rec.Instrument, got.Instrument)
	assert.Equal(t, rec.Dataset, got.Dataset)
	assert.Equal(t, rec.Actions, got.Actions)
	assert.Equal(t, rec.Fills, got.Fills)
	assert.Equal(t, rec.Unfilled, got.Unfilled)
	assert.InDelta(t, rec.TotalPnL, got.TotalPnL, 1e-9)
	assert.InDelta(t, rec.Sharpe, got.Sharpe, 1e-9)
	assert.InDelta(t, rec.Sortino, got.Sortino, 1e-9)
	assert.InDelta(t, rec.MaxDrawdown, got.MaxDrawdown, 1e-9)
	assert.InDelta(t, rec.TradedVolume, got.TradedVolume, 1e-9)
	assert.InDelta(t, rec.AvgHoldingUS, got.AvgHoldingUS, 1e-9)
	assert.Equal(t, rec.Flips, got.Flips)
}

func TestSQLiteNaNRatios(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	rec := sampleRun("01NAN", time.Now().UTC())
	rec.Sharpe = math.NaN()
	rec.Sortino = math.NaN()
	require.NoError(t, j.RecordRun(ctx, rec))

	got, err := j.GetRun(ctx, "01NAN")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.Sharpe))
	assert.True(t, math.IsNaN(got.Sortino))
}

func TestSQLiteGetRunMissing(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	_, err := j.GetRun(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteDuplicateRunID(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	rec := sampleRun("01DUP", time.Now().UTC())
	require.NoError(t, j.RecordRun(ctx, rec))
	assert.Error(t, j.RecordRun(ctx, rec))
}

func TestSQLiteListRuns(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"01A", "01B", "01C"} {
		require.NoError(t, j.RecordRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := j.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "01C", runs[0].RunID)
	assert.Equal(t, "01B", runs[1].RunID)
	assert.Equal(t, "01A", runs[2].RunID)

	runs, err = j.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "01C", runs[0].RunID)
}

func TestSQLiteFillsAndEquity(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	fills := []FillRecord{
		{RunID: "01R", Seq: 0, Timestamp: 1000, Side: "buy", Price: 10, Size: 2, Position: 2, Cash: -20},
		{RunID: "01R", Seq: 1, Timestamp: 2000, Side: "sell", Price: 11, Size: 2, Position: 0, Cash: 2},
	}
	for _, rec := range fills {
		require.NoError(t, j.RecordFill(ctx, rec))
	}
	require.NoError(t, j.RecordEquity(ctx, EquityPoint{RunID: "01R", Timestamp: 1000, Value: 0}))
	require.NoError(t, j.RecordEquity(ctx, EquityPoint{RunID: "01R", Timestamp: 2000, Value: 2}))

	gotFills, err := j.ListFillsByRun(ctx, "01R")
	require.NoError(t, err)
	assert.Equal(t, fills, gotFills)

	equity, err := j.ListEquityByRun(ctx, "01R")
	require.NoError(t, err)
	require.Len(t, equity, 2)
	assert.Equal(t, int64(1000), equity[0].Timestamp)
	assert.InDelta(t, 2.0, equity[1].Value, 1e-9)

	empty, err := j.ListFillsByRun(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
