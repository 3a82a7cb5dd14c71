package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCandles(t *testing.T) {
	t.Parallel()

	min := time.Minute.Microseconds()

	trades := []Trade{
		// First minute bucket.
		{Timestamp: 10, Side: Buy, Price: 100, Amount: 2},
		{Timestamp: 20, Side: Sell, Price: 105, Amount: 1},
		{Timestamp: 30, Side: Buy, Price: 95, Amount: 3},
		{Timestamp: 40, Side: Buy, Price: 102, Amount: 1},
		// Third minute bucket; the second has no trades.
		{Timestamp: 2*min + 5, Side: Sell, Price: 90, Amount: 4},
		{Timestamp: 2*min + 6, Side: Sell, Price: 92, Amount: 1},
	}

	candles := BuildCandles(trades, time.Minute)
	require.Len(t, candles, 2)

	c := candles[0]
	assert.Equal(t, int64(10), c.Start)
	assert.Equal(t, int64(40), c.End)
	assert.Equal(t, 100.0, c.Open)
	assert.Equal(t, 105.0, c.High)
	assert.Equal(t, 95.0, c.Low)
	assert.Equal(t, 102.0, c.Close)
	assert.InDelta(t, 6.0, c.BuyVolume, 1e-12)
	assert.InDelta(t, 1.0, c.SellVolume, 1e-12)
	assert.True(t, c.Rising())

	c = candles[1]
	assert.Equal(t, 2*min+5, c.Start)
	assert.Equal(t, 2*min+6, c.End)
	assert.Equal(t, 90.0, c.Open)
	assert.Equal(t, 92.0, c.Close)
	assert.InDelta(t, 0.0, c.BuyVolume, 1e-12)
	assert.InDelta(t, 5.0, c.SellVolume, 1e-12)
}

func TestBuildCandlesDegenerate(t *testing.T) {
	t.Parallel()

	assert.Nil(t, BuildCandles(nil, time.Minute))
	assert.Nil(t, BuildCandles(tradesAt(10, 20), 0))
	assert.Nil(t, BuildCandles(tradesAt(10, 20), -time.Second))
}

func TestBuildCandlesOrderedDisjoint(t *testing.T) {
	t.Parallel()

	var trades []Trade
	price := 50.0
	for ts := int64(0); ts < 10*time.Minute.Microseconds(); ts += 7 * time.Second.Microseconds() {
		price += 0.25
		trades = append(trades, Trade{Timestamp: ts, Side: Buy, Price: price, Amount: 1})
	}

	candles := BuildCandles(trades, time.Minute)
	require.NotEmpty(t, candles)
	for i := 1; i < len(candles); i++ {
		if candles[i].Start <= candles[i-1].End {
			t.Fatalf("candle %d starts at %d, before previous end %d", i, candles[i].Start, candles[i-1].End)
		}
	}
}
