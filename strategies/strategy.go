package strategies

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/mdsim/market"
	"github.com/rustyeddy/mdsim/sim"
)

// Strategy produces the decision stream for one run. Actions must
// come back sorted by timestamp; the engine rejects anything else.
type Strategy interface {
	Name() string
	Actions(start, end int64) ([]sim.Action, error)
}

// Params collects the knobs shared across strategy constructors. Each
// strategy reads only the fields it cares about.
type Params struct {
	N       int           // random: number of decisions
	MaxSize float64       // random: upper bound per order
	Seed    int64         // random: rng seed
	Amount  float64       // candles, ema-cross: fixed order size
	Margin  time.Duration // candles: boundary guard
	Fast    int           // ema-cross: fast period
	Slow    int           // ema-cross: slow period

	Candles []market.Candle // candles, ema-cross
}

// ByName builds a strategy from its CLI / config name. Candles are
// only consulted by the candle strategies and may be nil otherwise.
func ByName(name string, p Params) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "random":
		return Random{N: p.N, MaxSize: p.MaxSize, Seed: p.Seed}, nil

	case "candles", "candle-pattern":
		return CandlePattern{Candles: p.Candles, Amount: p.Amount, Margin: p.Margin}, nil

	case "ema-cross", "emacross":
		return EMACross{Candles: p.Candles, Fast: p.Fast, Slow: p.Slow, Amount: p.Amount}, nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: random, candles, ema-cross)", name)
	}
}
