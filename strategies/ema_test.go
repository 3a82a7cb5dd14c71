package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/mdsim/market"
	"github.com/rustyeddy/mdsim/sim"
)

func emaCandles(closes ...float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		ts := int64(i+1) * 1000
		out[i] = market.Candle{Start: ts, End: ts + 500, Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func TestEMACrossSignals(t *testing.T) {
	t.Parallel()

	// Fast EMA(2) crosses above the slow EMA(3) on the fourth candle,
	// back below on the seventh, and the run flattens on the last.
	s := EMACross{
		Candles: emaCandles(10, 10, 10, 20, 20, 20, 5, 5, 5),
		Fast:    2,
		Slow:    3,
		Amount:  3,
	}

	got, err := s.Actions(0, 100_000)
	require.NoError(t, err)

	want := []sim.Action{
		{Timestamp: 4500, Side: market.Buy, Size: 3},
		{Timestamp: 7500, Side: market.Sell, Size: 6},
		{Timestamp: 9500, Side: market.Buy, Size: 3},
	}
	assert.Equal(t, want, got)
}

func TestEMACrossNetsToZero(t *testing.T) {
	t.Parallel()

	s := EMACross{
		Candles: emaCandles(10, 10, 10, 20, 20, 20, 5, 5, 5),
		Fast:    2,
		Slow:    3,
		Amount:  2.5,
	}

	actions, err := s.Actions(0, 100_000)
	require.NoError(t, err)
	require.NotEmpty(t, actions)

	net := 0.0
	for _, a := range actions {
		net += float64(a.Side) * a.Size
	}
	assert.InDelta(t, 0, net, 1e-9)
}

func TestEMACrossNoCross(t *testing.T) {
	t.Parallel()

	s := EMACross{
		Candles: emaCandles(10, 10, 10, 10, 10),
		Fast:    2,
		Slow:    3,
		Amount:  1,
	}

	actions, err := s.Actions(0, 100_000)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestEMACrossTooFewCandles(t *testing.T) {
	t.Parallel()

	s := EMACross{
		Candles: emaCandles(10, 20),
		Fast:    2,
		Slow:    3,
		Amount:  1,
	}

	actions, err := s.Actions(0, 100_000)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestEMACrossWindowExcludesCandles(t *testing.T) {
	t.Parallel()

	s := EMACross{
		Candles: emaCandles(10, 10, 10, 20, 20, 20, 5, 5, 5),
		Fast:    2,
		Slow:    3,
		Amount:  1,
	}

	// Every candle starts before the window opens, so none are used.
	actions, err := s.Actions(50_000, 100_000)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestEMACrossValidation(t *testing.T) {
	t.Parallel()

	candles := emaCandles(10, 11, 12)

	tests := []struct {
		name     string
		strategy EMACross
	}{
		{"zero_fast", EMACross{Candles: candles, Fast: 0, Slow: 3, Amount: 1}},
		{"slow_not_above_fast", EMACross{Candles: candles, Fast: 3, Slow: 3, Amount: 1}},
		{"zero_amount", EMACross{Candles: candles, Fast: 2, Slow: 3, Amount: 0}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.strategy.Actions(0, 100_000)
			assert.Error(t, err)
		})
	}
}
