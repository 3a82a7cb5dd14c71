// Package indicators provides streaming technical indicators over candles.
package indicators

import "github.com/rustyeddy/mdsim/market"

// Indicator computes a single streaming value from closed candles.
// Implementations are deterministic: feeding the same candles in the
// same order always yields the same value.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)".
	Name() string

	// Warmup returns how many updates are needed before Ready can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed candle.
	Update(c market.Candle)

	// Ready reports whether Value is meaningful.
	Ready() bool

	// Value returns the current indicator value. Until Ready it returns 0,
	// so callers should always check Ready first.
	Value() float64
}
