package metrics

import (
	"math"
	"time"

	"github.com/rustyeddy/mdsim/sim"
)

// PerformanceReport is the scalar summary of one run.
//
// Sharpe and Sortino are NaN when not computable: Sharpe needs at
// least two period returns and nonzero variance, Sortino needs at
// least one negative return. NaN keeps "zero risk-adjusted return"
// distinguishable from "not computable". MaxDrawdown is never
// positive. AvgHoldingTime is zero when no unit was ever closed;
// ClosedVolume is the disambiguator.
type PerformanceReport struct {
	Sharpe       float64
	Sortino      float64
	TotalPnL     float64
	MaxDrawdown  float64
	TradedVolume float64

	AvgHoldingTime time.Duration
	ClosedVolume   float64

	Fills int
	Flips int
}

// Report reduces a run's mark-to-market series and fill log to a
// PerformanceReport. Pure function: neither input is mutated and
// nothing outside the inputs is consulted. Period returns are the
// first differences of the PnL values. Holding durations are
// reconstructed from the fill log with FIFO unwind, the engine
// default.
func Report(pnl []sim.PnLPoint, fills []sim.Fill) PerformanceReport {
	r := PerformanceReport{Fills: len(fills)}

	if n := len(pnl); n > 0 {
		r.TotalPnL = pnl[n-1].Value
	}
	r.MaxDrawdown = maxDrawdown(pnl)

	var returns []float64
	for i := 1; i < len(pnl); i++ {
		returns = append(returns, pnl[i].Value-pnl[i-1].Value)
	}
	r.Sharpe = sharpe(returns)
	r.Sortino = sortino(returns)

	for _, f := range fills {
		r.TradedVolume += f.Size
	}
	r.Flips = flips(fills)
	r.AvgHoldingTime, r.ClosedVolume = holding(fills)
	return r
}

// sharpe is mean over population standard deviation. NaN with fewer
// than two returns or zero variance.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return math.NaN()
	}
	m := mean(returns)
	var ss float64
	for _, x := range returns {
		d := x - m
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(returns)))
	if sd == 0 {
		return math.NaN()
	}
	return m / sd
}

// sortino divides the mean of all returns by the root-mean-square of
// the strictly negative subset. NaN when no return is negative.
func sortino(returns []float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	var (
		ss float64
		n  int
	)
	for _, x := range returns {
		if x < 0 {
			ss += x * x
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return mean(returns) / math.Sqrt(ss/float64(n))
}

// maxDrawdown is the most negative gap between the running peak and
// the series, zero for a never-declining (or empty) series.
func maxDrawdown(pnl []sim.PnLPoint) float64 {
	if len(pnl) == 0 {
		return 0
	}
	peak := pnl[0].Value
	var dd float64
	for _, p := range pnl {
		if p.Value > peak {
			peak = p.Value
		}
		if d := p.Value - peak; d < dd {
			dd = d
		}
	}
	return dd
}

// flips counts sign inversions of the post-fill position.
func flips(fills []sim.Fill) int {
	var (
		n    int
		prev float64
	)
	for _, f := range fills {
		if prev*f.Position < 0 {
			n++
		}
		prev = f.Position
	}
	return n
}

// holding replays the fill log with FIFO unwind and returns the
// closed-volume-weighted average holding time plus the closed volume.
func holding(fills []sim.Fill) (time.Duration, float64) {
	type lot struct {
		ts  int64
		qty float64
	}
	var (
		lots   []lot
		dir    int8
		total  float64
		closed float64
	)
	for _, f := range fills {
		d := int8(f.Side)
		if dir == 0 || dir == d {
			dir = d
			lots = append(lots, lot{ts: f.Timestamp, qty: f.Size})
			continue
		}

		remaining := f.Size
		for remaining > 0 && len(lots) > 0 {
			l := &lots[0]
			c := remaining
			if l.qty < c {
				c = l.qty
			}
			total += float64(f.Timestamp-l.ts) * c
			closed += c
			l.qty -= c
			remaining -= c
			if l.qty == 0 {
				lots = lots[1:]
			}
		}
		if remaining > 0 {
			dir = d
			lots = append(lots, lot{ts: f.Timestamp, qty: remaining})
		} else if len(lots) == 0 {
			dir = 0
		}
	}

	if closed == 0 {
		return 0, 0
	}
	avg := total / closed * float64(time.Microsecond)
	return time.Duration(avg), closed
}

func mean(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}
