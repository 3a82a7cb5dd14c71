package sim

import "github.com/rustyeddy/mdsim/market"

// Action is one strategy decision: trade Size units on Side at the
// first market record at or after Timestamp (microseconds since
// epoch). Streams handed to the engine must be timestamp-ordered.
type Action struct {
	Timestamp int64
	Side      market.Side
	Size      float64
}

// Fill records one executed action. Timestamp is the matched market
// record's, never earlier than the action that produced it. Position
// and Cash are the run state immediately after execution. Fills are
// never mutated once appended.
type Fill struct {
	Timestamp int64
	Side      market.Side
	Price     float64
	Size      float64
	Position  float64
	Cash      float64
}

// PnLPoint is the mark-to-market value of the run after an executed
// action: realized PnL plus the open position valued at the matched
// price.
type PnLPoint struct {
	Timestamp int64
	Value     float64
}
