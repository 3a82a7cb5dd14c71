package strategies

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rustyeddy/mdsim/market"
	"github.com/rustyeddy/mdsim/sim"
)

// Random emits N evenly spaced decisions with seeded random side and
// size, then flattens the net position one minute before the end of
// the window. Same seed, same stream.
type Random struct {
	N       int
	MaxSize float64
	Seed    int64
}

func (s Random) Name() string { return "random" }

func (s Random) Actions(start, end int64) ([]sim.Action, error) {
	if s.N <= 0 {
		return nil, fmt.Errorf("random: decision count %d must be positive", s.N)
	}
	if s.MaxSize <= 0 {
		return nil, fmt.Errorf("random: max size %v must be positive", s.MaxSize)
	}
	stop := end - time.Minute.Microseconds()
	if stop <= start {
		return nil, fmt.Errorf("random: window [%d, %d] leaves no room for the closing trade", start, end)
	}

	rng := rand.New(rand.NewSource(s.Seed))
	step := (stop - start) / int64(s.N)

	var (
		out []sim.Action
		net float64
	)
	for i := 0; i < s.N; i++ {
		size := rng.Float64() * s.MaxSize
		side := market.Buy
		if rng.Intn(2) == 1 {
			side = market.Sell
		}
		if size == 0 {
			continue
		}
		net += float64(side) * size
		out = append(out, sim.Action{
			Timestamp: start + int64(i)*step,
			Side:      side,
			Size:      size,
		})
	}

	if net != 0 {
		side := market.Sell
		if net < 0 {
			side = market.Buy
		}
		out = append(out, sim.Action{Timestamp: stop, Side: side, Size: math.Abs(net)})
	}
	return out, nil
}
