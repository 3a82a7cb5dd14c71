package sim

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/mdsim/market"
)

var (
	// ErrUnsortedActions reports an action stream that is not
	// timestamp-ordered. Run fails fast before replaying anything.
	ErrUnsortedActions = errors.New("actions not sorted by timestamp")

	// ErrBadAction reports an action with a non-positive size.
	ErrBadAction = errors.New("non-positive action size")
)

// State is the running accounting of one replay. Position is signed,
// positive for long. Cash is cumulative trade cash flow: buys debit
// price x size, sells credit it. Realized accumulates the PnL of
// closed units. HoldingUS and ClosedVolume carry the closed-unit
// bookkeeping for the average holding time: microsecond durations
// weighted by closed size.
type State struct {
	Position float64
	Cash     float64
	Realized float64

	HoldingUS    float64
	ClosedVolume float64
}

// Result is everything one replay produces: the mark-to-market series,
// the fill log, the final state, and the count of actions that matched
// no market record.
type Result struct {
	PnL      []PnLPoint
	Fills    []Fill
	State    State
	Unfilled int
}

// Engine replays action streams against a market series. One engine
// value may serve many runs; each Run owns its state exclusively.
type Engine struct {
	unwind UnwindPolicy
}

// NewEngine returns an engine using the given unwind policy, or FIFO
// when p is nil.
func NewEngine(p UnwindPolicy) *Engine {
	if p == nil {
		p = FIFO{}
	}
	return &Engine{unwind: p}
}

// Unwind reports the engine's unwind policy.
func (e *Engine) Unwind() UnwindPolicy { return e.unwind }

// Run replays actions in order against series.
//
// Both inputs must be timestamp-sorted; Run fails fast with
// ErrUnsortedActions or the series' own validation error otherwise.
// Every action executes at the price of the first trade at or after
// its timestamp. An action beyond the last record is counted in
// Unfilled and skipped without touching state. Empty inputs complete
// trivially with a zero-valued Result.
//
// After each executed action a PnL point is appended at the matched
// record's timestamp; when consecutive actions match the same record
// the point is overwritten in place, keeping the series strictly
// increasing.
func (e *Engine) Run(actions []Action, series *market.Series) (Result, error) {
	if err := series.Validate(); err != nil {
		return Result{}, fmt.Errorf("market series: %w", err)
	}
	for i, a := range actions {
		if a.Size <= 0 {
			return Result{}, fmt.Errorf("action %d: size %v: %w", i, a.Size, ErrBadAction)
		}
		if i > 0 && a.Timestamp < actions[i-1].Timestamp {
			return Result{}, fmt.Errorf("action %d: %w", i, ErrUnsortedActions)
		}
	}

	var (
		res Result
		bk  book
	)
	for _, a := range actions {
		idx, ok := series.Locate(a.Timestamp)
		if !ok {
			res.Unfilled++
			continue
		}
		rec := series.Trades[idx]

		res.State.Position += float64(a.Side) * a.Size
		res.State.Cash -= float64(a.Side) * rec.Price * a.Size
		res.State.Realized += bk.apply(e.unwind, rec.Timestamp, a.Side, a.Size, rec.Price)

		res.Fills = append(res.Fills, Fill{
			Timestamp: rec.Timestamp,
			Side:      a.Side,
			Price:     rec.Price,
			Size:      a.Size,
			Position:  res.State.Position,
			Cash:      res.State.Cash,
		})

		mtm := res.State.Realized + bk.unrealized(rec.Price)
		if n := len(res.PnL); n > 0 && res.PnL[n-1].Timestamp == rec.Timestamp {
			res.PnL[n-1].Value = mtm
		} else {
			res.PnL = append(res.PnL, PnLPoint{Timestamp: rec.Timestamp, Value: mtm})
		}
	}

	res.State.HoldingUS = bk.holdingUS
	res.State.ClosedVolume = bk.closedVolume
	return res, nil
}
