// Package backtest wires a strategy, the simulation engine and an
// optional journal into one run over a recorded market series.
package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/mdsim/internal/id"
	"github.com/rustyeddy/mdsim/journal"
	"github.com/rustyeddy/mdsim/market"
	"github.com/rustyeddy/mdsim/metrics"
	"github.com/rustyeddy/mdsim/sim"
	"github.com/rustyeddy/mdsim/strategies"
)

// RunnerOptions controls the parts of a run that are not behavior:
// labels recorded with the journal row.
type RunnerOptions struct {
	// Dataset is recorded with the run so results stay traceable to
	// their input file.
	Dataset string
}

// Runner drives one strategy over one series. Journal may be nil, in
// which case nothing is persisted.
type Runner struct {
	Engine   *sim.Engine
	Strategy strategies.Strategy
	Journal  journal.Journal
	Options  RunnerOptions
}

// Result is everything a single run produced.
type Result struct {
	RunID      string
	Strategy   string
	Instrument string
	Start      int64
	End        int64

	Actions  int
	Unfilled int

	Report metrics.PerformanceReport
	PnL    []sim.PnLPoint
	Fills  []sim.Fill
	State  sim.State
}

// Run generates the decision stream over the series' trade span,
// replays it and reduces the outcome to a report. The same inputs
// always produce the same Result apart from RunID.
func (r *Runner) Run(ctx context.Context, series *market.Series) (Result, error) {
	if r.Engine == nil {
		return Result{}, fmt.Errorf("backtest: Engine is required")
	}
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	if series == nil {
		return Result{}, fmt.Errorf("backtest: series is required")
	}

	res := Result{
		RunID:      id.New(),
		Strategy:   r.Strategy.Name(),
		Instrument: series.Instrument,
	}

	start, end, ok := series.Span()
	if !ok {
		// Nothing to replay. Still a run: report and journal it.
		res.Report = metrics.Report(nil, nil)
		if err := r.journalRun(ctx, res); err != nil {
			return Result{}, err
		}
		return res, nil
	}
	res.Start, res.End = start, end

	actions, err := r.Strategy.Actions(start, end)
	if err != nil {
		return Result{}, fmt.Errorf("strategy %s: %w", r.Strategy.Name(), err)
	}
	res.Actions = len(actions)

	slog.Debug("replaying actions",
		"run_id", res.RunID,
		"strategy", res.Strategy,
		"actions", len(actions),
		"trades", len(series.Trades))

	simRes, err := r.Engine.Run(actions, series)
	if err != nil {
		return Result{}, err
	}

	res.Unfilled = simRes.Unfilled
	res.PnL = simRes.PnL
	res.Fills = simRes.Fills
	res.State = simRes.State
	res.Report = metrics.Report(simRes.PnL, simRes.Fills)

	if err := r.journalRun(ctx, res); err != nil {
		return Result{}, err
	}

	slog.Info("backtest complete",
		"run_id", res.RunID,
		"strategy", res.Strategy,
		"fills", len(res.Fills),
		"unfilled", res.Unfilled,
		"pnl", res.Report.TotalPnL)
	return res, nil
}

func (r *Runner) journalRun(ctx context.Context, res Result) error {
	if r.Journal == nil {
		return nil
	}

	rec := journal.RunRecord{
		RunID:        res.RunID,
		Created:      time.Now().UTC(),
		Strategy:     res.Strategy,
		Instrument:   res.Instrument,
		Dataset:      r.Options.Dataset,
		Actions:      res.Actions,
		Fills:        len(res.Fills),
		Unfilled:     res.Unfilled,
		TotalPnL:     res.Report.TotalPnL,
		Sharpe:       res.Report.Sharpe,
		Sortino:      res.Report.Sortino,
		MaxDrawdown:  res.Report.MaxDrawdown,
		TradedVolume: res.Report.TradedVolume,
		AvgHoldingUS: float64(res.Report.AvgHoldingTime) / float64(time.Microsecond),
		Flips:        res.Report.Flips,
	}
	if err := r.Journal.RecordRun(ctx, rec); err != nil {
		return fmt.Errorf("journal run: %w", err)
	}

	for i, f := range res.Fills {
		err := r.Journal.RecordFill(ctx, journal.FillRecord{
			RunID:     res.RunID,
			Seq:       i,
			Timestamp: f.Timestamp,
			Side:      f.Side.String(),
			Price:     f.Price,
			Size:      f.Size,
			Position:  f.Position,
			Cash:      f.Cash,
		})
		if err != nil {
			return fmt.Errorf("journal fill %d: %w", i, err)
		}
	}

	for _, p := range res.PnL {
		err := r.Journal.RecordEquity(ctx, journal.EquityPoint{
			RunID:     res.RunID,
			Timestamp: p.Timestamp,
			Value:     p.Value,
		})
		if err != nil {
			return fmt.Errorf("journal equity: %w", err)
		}
	}
	return nil
}
