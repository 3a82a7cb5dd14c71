// Package journal persists backtest runs: the summary row, the fill
// log and the equity (mark-to-market) series. Backends share one
// schema so the runs CLI can read whatever the backtest wrote.
package journal

import (
	"context"
	"time"
)

// RunRecord is the summary row for one backtest run.
type RunRecord struct {
	RunID      string
	Created    time.Time
	Strategy   string
	Instrument string
	Dataset    string

	Actions  int
	Fills    int
	Unfilled int

	// Sharpe and Sortino may be NaN; backends store that as an absent
	// value and hand NaN back on read.
	TotalPnL     float64
	Sharpe       float64
	Sortino      float64
	MaxDrawdown  float64
	TradedVolume float64
	AvgHoldingUS float64
	Flips        int
}

// FillRecord is one executed action, numbered by Seq within its run.
type FillRecord struct {
	RunID     string
	Seq       int
	Timestamp int64
	Side      string
	Price     float64
	Size      float64
	Position  float64
	Cash      float64
}

// EquityPoint is one mark-to-market sample of a run.
type EquityPoint struct {
	RunID     string
	Timestamp int64
	Value     float64
}

type Journal interface {
	RecordRun(ctx context.Context, r RunRecord) error
	RecordFill(ctx context.Context, f FillRecord) error
	RecordEquity(ctx context.Context, e EquityPoint) error
	Close() error
}
