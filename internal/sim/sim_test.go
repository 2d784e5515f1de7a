package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ritinpaul/symbios-core/internal/config"
	"github.com/Ritinpaul/symbios-core/internal/maker"
	"github.com/Ritinpaul/symbios-core/internal/market"
	"github.com/Ritinpaul/symbios-core/internal/pricing"
	"github.com/Ritinpaul/symbios-core/internal/reputation"
	"github.com/Ritinpaul/symbios-core/internal/resource"
	"github.com/Ritinpaul/symbios-core/internal/sim"
)

func testMarket() *market.Market {
	cfg := config.Default()
	return market.New(
		market.DefaultConfig(),
		pricing.NewEngine(cfg.BasePriceTable(), cfg.HistoryCapacity),
		maker.New(maker.DefaultConfig()),
		reputation.NewLedger(reputation.DefaultDecayRate),
		nil,
	)
}

func TestGuindyPark_Preset(t *testing.T) {
	park := sim.GuindyPark(1, 0.1)
	factories := park.Factories()
	require.Len(t, factories, 3)

	assert.Equal(t, "SteelCo", factories[0].Name)
	assert.Equal(t, 500.0, factories[0].Capacity.Get(resource.Heat))
	assert.Equal(t, "ChemCorp", factories[1].Name)
	assert.Equal(t, "CementWorks", factories[2].Name)
	assert.Equal(t, 1000.0, factories[2].Capacity.Get(resource.Byproduct))
}

func TestPark_StepAggregatesSupplyAndDemand(t *testing.T) {
	park := sim.GuindyPark(1, 0)
	var fair resource.Table[float64]
	fair.Fill(10)

	// Several production steps leave the producer with surplus and the
	// consumer with deficits, which must show up as market pressure.
	var input market.TickInput
	for i := 0; i < 15; i++ {
		input = park.Step(fair)
	}

	var totalSupply, totalDemand float64
	for _, kind := range resource.Kinds() {
		totalSupply += input.Supply.Get(kind)
		totalDemand += input.Demand.Get(kind)
		signal := input.Signals.Get(kind)
		assert.GreaterOrEqual(t, signal, -1.0)
		assert.LessOrEqual(t, signal, 1.0)
	}
	assert.Greater(t, totalSupply, 0.0)
	assert.Greater(t, totalDemand, 0.0)
	assert.NotEmpty(t, input.Orders)
}

func TestRunner_CompletesSession(t *testing.T) {
	park := sim.GuindyPark(7, 0.1)
	runner := sim.NewRunner(park, testMarket(), 20)
	runner.Start()

	var ticks int
	var lastTick uint64
	for result := range runner.Results() {
		ticks++
		assert.Greater(t, result.Tick, lastTick, "ticks arrive in order")
		lastTick = result.Tick
	}
	require.NoError(t, runner.Wait())
	assert.Equal(t, 20, ticks)
}

func TestRunner_StopAborts(t *testing.T) {
	park := sim.GuindyPark(7, 0.1)
	runner := sim.NewRunner(park, testMarket(), 1_000_000)
	runner.Start()

	// Drain a few results, then abort mid-session.
	for i := 0; i < 3; i++ {
		<-runner.Results()
	}
	require.NoError(t, runner.Stop())
}
