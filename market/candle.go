package market

import "time"

// Candle aggregates the trades of one fixed-width time bucket. Start
// and End are the first and last trade timestamps seen inside the
// bucket, not the bucket bounds.
type Candle struct {
	Start int64
	End   int64

	Open  float64
	High  float64
	Low   float64
	Close float64

	BuyVolume  float64
	SellVolume float64
}

// Rising reports whether the candle closed above its open.
func (c Candle) Rising() bool { return c.Close > c.Open }

// BuildCandles buckets time-ordered trades by floor(timestamp/width)
// and aggregates OHLC plus per-side volume. Buckets without trades
// produce no candle, so output candles are ordered and disjoint. A
// non-positive width or an empty input yields nil.
func BuildCandles(trades []Trade, width time.Duration) []Candle {
	w := width.Microseconds()
	if w <= 0 || len(trades) == 0 {
		return nil
	}

	var (
		out    []Candle
		bucket int64
	)
	for i, t := range trades {
		b := t.Timestamp / w * w
		if i == 0 || b != bucket {
			bucket = b
			out = append(out, Candle{
				Start: t.Timestamp,
				End:   t.Timestamp,
				Open:  t.Price,
				High:  t.Price,
				Low:   t.Price,
				Close: t.Price,
			})
		}

		c := &out[len(out)-1]
		c.End = t.Timestamp
		c.Close = t.Price
		if t.Price > c.High {
			c.High = t.Price
		}
		if t.Price < c.Low {
			c.Low = t.Price
		}
		if t.Side == Buy {
			c.BuyVolume += t.Amount
		} else {
			c.SellVolume += t.Amount
		}
	}
	return out
}
