// Package pricing computes per-resource fair values from supply/demand
// pressure, policy costs and external predictive signals, and keeps a bounded
// observation history for trend queries.
package pricing

import (
	"github.com/Ritinpaul/symbios-core/internal/resource"
)

const (
	// PriceFloor prevents zero or negative pricing under any input.
	PriceFloor = 0.01

	// scarcityCeiling is the market factor applied when supply is zero.
	scarcityCeiling = 2.0

	// signalSwing caps the speculative adjustment at ±10%.
	signalSwing = 0.1

	// DefaultHistoryCapacity bounds per-resource observation history.
	DefaultHistoryCapacity = 256
)

// Trend classifies recent price movement.
type Trend int

const (
	Neutral Trend = iota
	Stable
	Bullish
	Bearish
)

func (t Trend) String() string {
	switch t {
	case Bullish:
		return "Bullish"
	case Bearish:
		return "Bearish"
	case Stable:
		return "Stable"
	default:
		return "Neutral"
	}
}

// Observation is one pricing call's outcome.
type Observation struct {
	Price  float64
	Demand float64
	Supply float64
}

// history is a fixed-capacity ring buffer of observations.
type history struct {
	buf   []Observation
	head  int
	count int
}

func newHistory(capacity int) *history {
	return &history{buf: make([]Observation, capacity)}
}

func (h *history) push(obs Observation) {
	h.buf[h.head] = obs
	h.head = (h.head + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// last returns up to n most recent observations, oldest first.
func (h *history) last(n int) []Observation {
	if n > h.count {
		n = h.count
	}
	out := make([]Observation, 0, n)
	for i := h.count - n; i < h.count; i++ {
		idx := (h.head - h.count + i + 2*len(h.buf)) % len(h.buf)
		out = append(out, h.buf[idx])
	}
	return out
}

// Engine prices resources against configured base prices.
type Engine struct {
	basePrices resource.Table[float64]
	histories  resource.Table[*history]
}

// NewEngine builds an engine with the given base prices and bounded history
// per resource. capacity <= 0 selects DefaultHistoryCapacity.
func NewEngine(basePrices resource.Table[float64], capacity int) *Engine {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	e := &Engine{basePrices: basePrices}
	for _, kind := range resource.Kinds() {
		e.histories.Set(kind, newHistory(capacity))
	}
	return e
}

// BasePrice returns the configured production-cost floor for a resource.
func (e *Engine) BasePrice(kind resource.Kind) float64 {
	return e.basePrices.Get(kind)
}

// CalculatePrice derives the current fair value of a resource.
//
// The market factor is demand/supply clamped to [0.5, 2.0], with the ceiling
// applied outright on zero supply. Policy cost (taxRate) is additive and
// urgency is a local multiplier. The predictive signal, expected to be
// normalized to roughly [-1, 1], swings the result by at most ±10%; callers
// must not pass unbounded values, but the engine clamps defensively anyway.
// The final price never falls below PriceFloor.
//
// Each call appends an observation to the resource's ring-buffer history.
func (e *Engine) CalculatePrice(kind resource.Kind, supply, demand, signal, taxRate, urgency float64) float64 {
	marketFactor := scarcityCeiling
	if supply != 0 {
		marketFactor = clamp(demand/supply, 0.5, scarcityCeiling)
	}

	fairValue := e.basePrices.Get(kind)*marketFactor*urgency + taxRate
	adjustment := 1.0 + clamp(signal, -1, 1)*signalSwing
	price := max(PriceFloor, fairValue*adjustment)

	e.histories.Get(kind).push(Observation{Price: price, Demand: demand, Supply: supply})
	return price
}

// Trend compares the first and last price in the most recent window
// observations: Bullish at +5% or more, Bearish at -5% or less, Stable
// between, Neutral when the history is still shorter than the window.
func (e *Engine) Trend(kind resource.Kind, window int) Trend {
	recent := e.histories.Get(kind).last(window)
	if len(recent) < window || window < 2 {
		return Neutral
	}
	start := recent[0].Price
	end := recent[len(recent)-1].Price
	change := (end - start) / start
	switch {
	case change >= 0.05:
		return Bullish
	case change <= -0.05:
		return Bearish
	default:
		return Stable
	}
}

// History returns up to n recent observations for a resource, oldest first.
func (e *Engine) History(kind resource.Kind, n int) []Observation {
	return e.histories.Get(kind).last(n)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
