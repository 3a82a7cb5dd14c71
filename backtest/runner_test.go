package backtest

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/mdsim/journal"
	"github.com/rustyeddy/mdsim/market"
	"github.com/rustyeddy/mdsim/sim"
)

type fixedStrategy struct {
	name    string
	actions []sim.Action
	err     error
}

func (s fixedStrategy) Name() string { return s.name }

func (s fixedStrategy) Actions(start, end int64) ([]sim.Action, error) {
	return s.actions, s.err
}

type memJournal struct {
	runs    []journal.RunRecord
	fills   []journal.FillRecord
	equity  []journal.EquityPoint
	failRun bool
}

func (m *memJournal) RecordRun(_ context.Context, r journal.RunRecord) error {
	if m.failRun {
		return errors.New("boom")
	}
	m.runs = append(m.runs, r)
	return nil
}

func (m *memJournal) RecordFill(_ context.Context, f journal.FillRecord) error {
	m.fills = append(m.fills, f)
	return nil
}

func (m *memJournal) RecordEquity(_ context.Context, e journal.EquityPoint) error {
	m.equity = append(m.equity, e)
	return nil
}

func (m *memJournal) Close() error { return nil }

func testSeries() *market.Series {
	return &market.Series{
		Instrument: "DOGEUSDT",
		Trades: []market.Trade{
			{Timestamp: 1000, Side: market.Buy, Price: 10, Amount: 50},
			{Timestamp: 2000, Side: market.Sell, Price: 12, Amount: 50},
			{Timestamp: 3000, Side: market.Buy, Price: 11, Amount: 50},
		},
	}
}

func roundTrip() []sim.Action {
	return []sim.Action{
		{Timestamp: 900, Side: market.Buy, Size: 5},
		{Timestamp: 1500, Side: market.Sell, Size: 5},
	}
}

func TestRunnerRequiredFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := (&Runner{Strategy: fixedStrategy{name: "x"}}).Run(ctx, testSeries())
	assert.ErrorContains(t, err, "Engine is required")

	_, err = (&Runner{Engine: sim.NewEngine(nil)}).Run(ctx, testSeries())
	assert.ErrorContains(t, err, "Strategy is required")

	_, err = (&Runner{Engine: sim.NewEngine(nil), Strategy: fixedStrategy{name: "x"}}).Run(ctx, nil)
	assert.ErrorContains(t, err, "series is required")
}

func TestRunnerEndToEnd(t *testing.T) {
	t.Parallel()

	mem := &memJournal{}
	r := &Runner{
		Engine:   sim.NewEngine(sim.FIFO{}),
		Strategy: fixedStrategy{name: "fixed", actions: roundTrip()},
		Journal:  mem,
		Options:  RunnerOptions{Dataset: "doge-trades.csv"},
	}

	res, err := r.Run(context.Background(), testSeries())
	require.NoError(t, err)

	_, perr := ulid.Parse(res.RunID)
	assert.NoError(t, perr)
	assert.Equal(t, "fixed", res.Strategy)
	assert.Equal(t, "DOGEUSDT", res.Instrument)
	assert.Equal(t, int64(1000), res.Start)
	assert.Equal(t, int64(3000), res.End)
	assert.Equal(t, 2, res.Actions)
	assert.Zero(t, res.Unfilled)
	require.Len(t, res.Fills, 2)
	assert.InDelta(t, 10.0, res.Report.TotalPnL, 1e-9)
	assert.InDelta(t, 10.0, res.Report.TradedVolume, 1e-9)
	assert.True(t, math.IsNaN(res.Report.Sharpe))

	require.Len(t, mem.runs, 1)
	rec := mem.runs[0]
	assert.Equal(t, res.RunID, rec.RunID)
	assert.Equal(t, "doge-trades.csv", rec.Dataset)
	assert.Equal(t, 2, rec.Fills)
	assert.InDelta(t, 10.0, rec.TotalPnL, 1e-9)
	assert.InDelta(t, 1000.0, rec.AvgHoldingUS, 1e-9)
	assert.True(t, math.IsNaN(rec.Sharpe))

	require.Len(t, mem.fills, 2)
	assert.Equal(t, 0, mem.fills[0].Seq)
	assert.Equal(t, "buy", mem.fills[0].Side)
	assert.Equal(t, "sell", mem.fills[1].Side)

	require.Len(t, mem.equity, len(res.PnL))
	assert.Equal(t, res.RunID, mem.equity[0].RunID)
}

func TestRunnerEmptySeries(t *testing.T) {
	t.Parallel()

	mem := &memJournal{}
	r := &Runner{
		Engine:   sim.NewEngine(nil),
		Strategy: fixedStrategy{name: "fixed"},
		Journal:  mem,
	}

	res, err := r.Run(context.Background(), &market.Series{Instrument: "DOGEUSDT"})
	require.NoError(t, err)

	assert.Zero(t, res.Actions)
	assert.Empty(t, res.Fills)
	assert.True(t, math.IsNaN(res.Report.Sharpe))
	require.Len(t, mem.runs, 1)
	assert.Zero(t, mem.runs[0].Fills)
}

func TestRunnerStrategyError(t *testing.T) {
	t.Parallel()

	r := &Runner{
		Engine:   sim.NewEngine(nil),
		Strategy: fixedStrategy{name: "broken", err: errors.New("no data")},
	}

	_, err := r.Run(context.Background(), testSeries())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strategy broken")
}

func TestRunnerJournalError(t *testing.T) {
	t.Parallel()

	r := &Runner{
		Engine:   sim.NewEngine(nil),
		Strategy: fixedStrategy{name: "fixed", actions: roundTrip()},
		Journal:  &memJournal{failRun: true},
	}

	_, err := r.Run(context.Background(), testSeries())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal run")
}

func TestRunnerWithoutJournal(t *testing.T) {
	t.Parallel()

	r := &Runner{
		Engine:   sim.NewEngine(nil),
		Strategy: fixedStrategy{name: "fixed", actions: roundTrip()},
	}

	res, err := r.Run(context.Background(), testSeries())
	require.NoError(t, err)
	assert.Len(t, res.Fills, 2)
}

func TestRunnerDeterministicApartFromID(t *testing.T) {
	t.Parallel()

	run := func() Result {
		r := &Runner{
			Engine:   sim.NewEngine(sim.LIFO{}),
			Strategy: fixedStrategy{name: "fixed", actions: roundTrip()},
		}
		res, err := r.Run(context.Background(), testSeries())
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.NotEqual(t, a.RunID, b.RunID)
	a.RunID, b.RunID = "", ""

	// NaN ratios never compare equal through reflection; check them
	// apart and blank them for the deep comparison.
	assert.True(t, math.IsNaN(a.Report.Sharpe) && math.IsNaN(b.Report.Sharpe))
	assert.True(t, math.IsNaN(a.Report.Sortino) && math.IsNaN(b.Report.Sortino))
	a.Report.Sharpe, b.Report.Sharpe = 0, 0
	a.Report.Sortino, b.Report.Sortino = 0, 0
	assert.Equal(t, a, b)
}

func TestPrintResult(t *testing.T) {
	t.Parallel()

	r := &Runner{
		Engine:   sim.NewEngine(nil),
		Strategy: fixedStrategy{name: "fixed", actions: roundTrip()},
	}
	res, err := r.Run(context.Background(), testSeries())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintResult(&buf, res)
	out := buf.String()

	assert.Contains(t, out, res.RunID)
	assert.Contains(t, out, "Total PnL")
	assert.Contains(t, out, "10.000000")
	assert.Contains(t, out, "n/a") // Sharpe of a single-return run
	assert.Contains(t, out, "1ms")
}