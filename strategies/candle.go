package strategies

import (
	"fmt"
	"time"

	"github.com/rustyeddy/mdsim/market"
	"github.com/rustyeddy/mdsim/sim"
)

// CandlePattern trades each candle with hindsight: enter at the
// candle's first trade in the direction it closed, exit at its last.
// Candles touching the margin at either edge of the window are
// skipped so both legs always have market data around them.
type CandlePattern struct {
	Candles []market.Candle
	Amount  float64
	Margin  time.Duration
}

func (s CandlePattern) Name() string { return "candles" }

func (s CandlePattern) Actions(start, end int64) ([]sim.Action, error) {
	if s.Amount <= 0 {
		return nil, fmt.Errorf("candles: amount %v must be positive", s.Amount)
	}

	m := s.Margin.Microseconds()
	out := make([]sim.Action, 0, 2*len(s.Candles))
	for _, c := range s.Candles {
		if c.Start <= start+m || c.End >= end-m {
			continue
		}

		// A doji counts as rising, so it buys first.
		entry, exit := market.Buy, market.Sell
		if c.Open > c.Close {
			entry, exit = market.Sell, market.Buy
		}
		out = append(out,
			sim.Action{Timestamp: c.Start, Side: entry, Size: s.Amount},
			sim.Action{Timestamp: c.End, Side: exit, Size: s.Amount},
		)
	}
	return out, nil
}
