package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/mdsim/indicators"
	"github.com/rustyeddy/mdsim/market"
	"github.com/rustyeddy/mdsim/sim"
)

// EMACross trades fast/slow EMA crossovers on candle closes.
//
// It goes long when the fast average crosses above the slow one,
// reverses on the opposite cross, and flattens after the last candle.
// Signals use only candles already closed, so unlike CandlePattern it
// has no hindsight advantage.
type EMACross struct {
	Candles []market.Candle
	Fast    int
	Slow    int
	Amount  float64
}

func (s EMACross) Name() string { return "ema-cross" }

// Actions walks the candles once, updating both averages per close and
// emitting an order at the close of every crossing candle. Too few
// candles for a cross is not an error; it just trades nothing.
func (s EMACross) Actions(start, end int64) ([]sim.Action, error) {
	if s.Fast <= 0 {
		return nil, fmt.Errorf("ema-cross: fast period must be positive, got %d", s.Fast)
	}
	if s.Slow <= s.Fast {
		return nil, fmt.Errorf("ema-cross: slow period must exceed fast period %d, got %d", s.Fast, s.Slow)
	}
	if s.Amount <= 0 {
		return nil, fmt.Errorf("ema-cross: amount must be positive, got %v", s.Amount)
	}

	fast := indicators.NewEMA(s.Fast)
	slow := indicators.NewEMA(s.Slow)

	var (
		actions  []sim.Action
		net      float64
		lastDiff float64
		haveLast bool
		lastEnd  int64
	)
	for _, c := range s.Candles {
		if c.Start < start || c.End > end {
			continue
		}
		lastEnd = c.End

		fast.Update(c)
		slow.Update(c)
		if !fast.Ready() || !slow.Ready() {
			continue
		}

		diff := fast.Value() - slow.Value()
		if !haveLast {
			lastDiff, haveLast = diff, true
			continue
		}
		bull := diff > 0 && lastDiff <= 0
		bear := diff < 0 && lastDiff >= 0
		lastDiff = diff

		target := net
		switch {
		case bull:
			target = s.Amount
		case bear:
			target = -s.Amount
		default:
			continue
		}
		delta := target - net
		if delta == 0 {
			continue
		}

		side := market.Buy
		if delta < 0 {
			side = market.Sell
		}
		actions = append(actions, sim.Action{Timestamp: c.End, Side: side, Size: math.Abs(delta)})
		net = target
	}

	if net != 0 {
		side := market.Buy
		if net > 0 {
			side = market.Sell
		}
		actions = append(actions, sim.Action{Timestamp: lastEnd, Side: side, Size: math.Abs(net)})
	}
	return actions, nil
}
