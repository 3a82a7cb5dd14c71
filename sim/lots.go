package sim

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/mdsim/market"
)

// lot is an open chunk of position: qty units (always positive)
// entered at price, opened at ts.
type lot struct {
	ts    int64
	qty   float64
	price float64
}

// UnwindPolicy picks which open lot a reducing fill closes next. The
// choice only affects holding durations and the split of realized vs
// unrealized PnL mid-run; totals at flat are identical.
type UnwindPolicy interface {
	Name() string
	next(lots []lot) int
}

// FIFO closes the oldest lot first. Engine default.
type FIFO struct{}

func (FIFO) Name() string        { return "fifo" }
func (FIFO) next(lots []lot) int { return 0 }

// LIFO closes the most recent lot first.
type LIFO struct{}

func (LIFO) Name() string        { return "lifo" }
func (LIFO) next(lots []lot) int { return len(lots) - 1 }

// PolicyByName maps a config or flag value to an unwind policy. The
// empty string selects FIFO.
func PolicyByName(name string) (UnwindPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fifo":
		return FIFO{}, nil
	case "lifo":
		return LIFO{}, nil
	}
	return nil, fmt.Errorf("unknown unwind policy %q (supported: fifo, lifo)", name)
}

// book tracks the open lots of a single-instrument position. All lots
// share one direction: +1 long, -1 short, 0 flat.
type book struct {
	dir  int8
	lots []lot

	// Closed-unit bookkeeping. holdingUS accumulates
	// (close ts - open ts) x closed size in microseconds; closedVolume
	// accumulates the sizes, so the weighted average survives lot
	// splitting.
	holdingUS    float64
	closedVolume float64
}

// apply executes a fill of qty units on side at price/ts and returns
// the realized PnL delta. Same-direction fills open a new lot.
// Opposite fills close open lots in policy order; a sign flip closes
// everything first and opens the remainder fresh.
func (b *book) apply(p UnwindPolicy, ts int64, side market.Side, qty, price float64) (realized float64) {
	dir := int8(side)
	if b.dir == 0 || b.dir == dir {
		b.dir = dir
		b.lots = append(b.lots, lot{ts: ts, qty: qty, price: price})
		return 0
	}

	remaining := qty
	for remaining > 0 && len(b.lots) > 0 {
		i := p.next(b.lots)
		l := &b.lots[i]

		c := remaining
		if l.qty < c {
			c = l.qty
		}
		realized += float64(b.dir) * c * (price - l.price)
		b.holdingUS += float64(ts-l.ts) * c
		b.closedVolume += c

		l.qty -= c
		remaining -= c
		if l.qty == 0 {
			b.lots = append(b.lots[:i], b.lots[i+1:]...)
		}
	}

	if remaining > 0 {
		b.dir = dir
		b.lots = append(b.lots, lot{ts: ts, qty: remaining, price: price})
	} else if len(b.lots) == 0 {
		b.dir = 0
	}
	return realized
}

// unrealized marks the open lots at price. Equivalent to
// position x (price - volume-weighted entry price).
func (b *book) unrealized(price float64) float64 {
	var u float64
	for _, l := range b.lots {
		u += float64(b.dir) * l.qty * (price - l.price)
	}
	return u
}
