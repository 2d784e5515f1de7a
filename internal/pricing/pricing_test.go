package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ritinpaul/symbios-core/internal/pricing"
	"github.com/Ritinpaul/symbios-core/internal/resource"
)

func testEngine(capacity int) *pricing.Engine {
	var basePrices resource.Table[float64]
	basePrices.Fill(10)
	basePrices.Set(resource.Heat, 12)
	return pricing.NewEngine(basePrices, capacity)
}

func TestCalculatePrice_SupplyDemandRatio(t *testing.T) {
	e := testEngine(0)

	// demand/supply = 2.0 exactly at the ceiling: 12 * 2.0 = 24.
	price := e.CalculatePrice(resource.Heat, 100, 200, 0, 0, 1.0)
	assert.InDelta(t, 24.0, price, 1e-9)

	// Balanced market prices at base.
	price = e.CalculatePrice(resource.Heat, 100, 100, 0, 0, 1.0)
	assert.InDelta(t, 12.0, price, 1e-9)

	// Oversupply is floored at the 0.5 factor.
	price = e.CalculatePrice(resource.Heat, 1000, 1, 0, 0, 1.0)
	assert.InDelta(t, 6.0, price, 1e-9)
}

func TestCalculatePrice_ScarcityCeiling(t *testing.T) {
	e := testEngine(0)
	// Zero supply applies the scarcity premium outright, no division.
	price := e.CalculatePrice(resource.Water, 0, 50, 0, 0, 1.0)
	assert.InDelta(t, 20.0, price, 1e-9)
}

func TestCalculatePrice_PositiveSignalRaisesPrice(t *testing.T) {
	e := testEngine(0)
	base := e.CalculatePrice(resource.Heat, 100, 200, 0, 0, 1.0)
	boosted := e.CalculatePrice(resource.Heat, 100, 200, 0.9, 0, 1.0)
	assert.Greater(t, boosted, base)
	// The swing is capped at 10% even for out-of-range signals.
	capped := e.CalculatePrice(resource.Heat, 100, 200, 5.0, 0, 1.0)
	assert.InDelta(t, base*1.1, capped, 1e-9)
}

func TestCalculatePrice_TaxAndUrgency(t *testing.T) {
	e := testEngine(0)
	price := e.CalculatePrice(resource.Heat, 100, 100, 0, 3.0, 1.5)
	// base 12 * factor 1.0 * urgency 1.5 + tax 3.0
	assert.InDelta(t, 21.0, price, 1e-9)
}

func TestCalculatePrice_Floor(t *testing.T) {
	e := testEngine(0)
	// Even a heavily discounted negative-ish input never breaches the floor.
	price := e.CalculatePrice(resource.CO2, 1000, 1, -1, 0, 0.0001)
	assert.GreaterOrEqual(t, price, pricing.PriceFloor)
}

func TestTrend(t *testing.T) {
	e := testEngine(0)

	// Fewer than window observations: Neutral.
	e.CalculatePrice(resource.Heat, 100, 100, 0, 0, 1)
	assert.Equal(t, pricing.Neutral, e.Trend(resource.Heat, 5))

	// Rising demand drives a Bullish window.
	for _, demand := range []float64{100, 120, 150, 180, 200} {
		e.CalculatePrice(resource.Energy, 100, demand, 0, 0, 1)
	}
	assert.Equal(t, pricing.Bullish, e.Trend(resource.Energy, 5))

	// Falling demand drives Bearish.
	for _, demand := range []float64{200, 180, 150, 120, 100} {
		e.CalculatePrice(resource.Water, 100, demand, 0, 0, 1)
	}
	assert.Equal(t, pricing.Bearish, e.Trend(resource.Water, 5))

	// Flat prices stay Stable.
	for i := 0; i < 5; i++ {
		e.CalculatePrice(resource.Storage, 100, 100, 0, 0, 1)
	}
	assert.Equal(t, pricing.Stable, e.Trend(resource.Storage, 5))
}

func TestHistory_BoundedRingBuffer(t *testing.T) {
	e := testEngine(4)
	for i := 0; i < 10; i++ {
		e.CalculatePrice(resource.Heat, 100, float64(100+i), 0, 0, 1)
	}

	history := e.History(resource.Heat, 100)
	assert.Len(t, history, 4, "history must stay capped at capacity")
	// Oldest retained observation is the 7th call (demand 106).
	assert.Equal(t, 106.0, history[0].Demand)
	assert.Equal(t, 109.0, history[3].Demand)
}
