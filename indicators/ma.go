package indicators

import (
	"fmt"

	"github.com/rustyeddy/mdsim/market"
)

// SMA is a streaming simple moving average over candle closes.
type SMA struct {
	period int
	closes []float64
}

// NewSMA returns a simple moving average with the given period.
func NewSMA(period int) *SMA {
	return &SMA{
		period: period,
		closes: make([]float64, 0, period),
	}
}

func (m *SMA) Name() string {
	return fmt.Sprintf("SMA(%d)", m.period)
}

func (m *SMA) Warmup() int {
	return m.period
}

func (m *SMA) Reset() {
	m.closes = m.closes[:0]
}

func (m *SMA) Update(c market.Candle) {
	m.closes = append(m.closes, c.Close)
	// Keep only the last 'period' closes.
	if len(m.closes) > m.period {
		m.closes = m.closes[1:]
	}
}

func (m *SMA) Ready() bool {
	return len(m.closes) >= m.period
}

func (m *SMA) Value() float64 {
	if !m.Ready() {
		return 0
	}

	sum := 0.0
	for _, v := range m.closes {
		sum += v
	}
	return sum / float64(len(m.closes))
}

// EMA is a streaming exponential moving average over candle closes.
// The first value is seeded with the simple average of the warmup window.
type EMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

// NewEMA returns an exponential moving average with the given period.
func NewEMA(period int) *EMA {
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *EMA) Warmup() int {
	return e.period
}

func (e *EMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *EMA) Update(c market.Candle) {
	if e.count < e.period {
		// During warmup, accumulate the sum for the initial SMA seed.
		e.warmupSum += c.Close
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (c.Close-e.ema)*e.multiplier + e.ema
}

func (e *EMA) Ready() bool {
	return e.count >= e.period
}

func (e *EMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}
