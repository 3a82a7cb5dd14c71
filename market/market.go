package market

import (
	"errors"
	"fmt"
	"strings"
)

// Side is the aggressor side of a trade or action.
type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return fmt.Sprintf("Side(%d)", int8(s))
}

// ParseSide maps a dataset side column value to a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

// Trade is one recorded market trade. Timestamp is microseconds since
// the Unix epoch; a series carries them in non-decreasing order.
type Trade struct {
	Timestamp int64
	Side      Side
	Price     float64
	Amount    float64
}

// BBO is a best bid/offer snapshot, the optional companion series to
// the trade stream.
type BBO struct {
	Timestamp int64
	BidPrice  float64
	BidAmount float64
	AskPrice  float64
	AskAmount float64
}

func (b BBO) Mid() float64    { return (b.BidPrice + b.AskPrice) / 2 }
func (b BBO) Spread() float64 { return b.AskPrice - b.BidPrice }

var (
	ErrUnordered = errors.New("timestamps out of order")
	ErrBadRecord = errors.New("non-positive price or amount")
)

// Series is one instrument's recorded data for a single run. The
// simulator treats it as read-only; nothing here mutates after load.
type Series struct {
	Instrument string
	Trades     []Trade
	Quotes     []BBO
}

// Validate checks the ordering and positivity invariants on both
// record streams. A run performs this before replaying anything, since
// binary search is only correct over sorted data.
func (s *Series) Validate() error {
	for i, t := range s.Trades {
		if t.Price <= 0 || t.Amount <= 0 {
			return fmt.Errorf("trade %d: %w", i, ErrBadRecord)
		}
		if i > 0 && t.Timestamp < s.Trades[i-1].Timestamp {
			return fmt.Errorf("trade %d: %w", i, ErrUnordered)
		}
	}
	for i, q := range s.Quotes {
		if q.BidPrice <= 0 || q.AskPrice <= 0 || q.BidAmount <= 0 || q.AskAmount <= 0 {
			return fmt.Errorf("bbo %d: %w", i, ErrBadRecord)
		}
		if i > 0 && q.Timestamp < s.Quotes[i-1].Timestamp {
			return fmt.Errorf("bbo %d: %w", i, ErrUnordered)
		}
	}
	return nil
}

// Span returns the first and last trade timestamps. ok is false when
// the series holds no trades.
func (s *Series) Span() (start, end int64, ok bool) {
	if len(s.Trades) == 0 {
		return 0, 0, false
	}
	return s.Trades[0].Timestamp, s.Trades[len(s.Trades)-1].Timestamp, true
}
