// Package sim drives simulation sessions: it owns the factory agents of an
// industrial park, advances their production each tick, aggregates their
// states into market inputs, and applies settled trades back to their books.
package sim

import (
	"math/rand"

	"github.com/Ritinpaul/symbios-core/internal/agent"
	"github.com/Ritinpaul/symbios-core/internal/auction"
	"github.com/Ritinpaul/symbios-core/internal/market"
	"github.com/Ritinpaul/symbios-core/internal/resource"
)

// Park is a set of factories trading through one market.
type Park struct {
	factories []*agent.Factory
	byID      map[string]*agent.Factory

	rng            *rand.Rand
	disruptionProb float64
}

// NewPark builds a park around the given factories. The RNG is owned by the
// park so a fixed seed replays the same session.
func NewPark(factories []*agent.Factory, seed int64, disruptionProb float64) *Park {
	p := &Park{
		factories:      factories,
		byID:           make(map[string]*agent.Factory, len(factories)),
		rng:            rand.New(rand.NewSource(seed)),
		disruptionProb: disruptionProb,
	}
	for _, f := range factories {
		p.byID[f.ID] = f
	}
	return p
}

// GuindyPark is the canonical three-factory demo scenario.
func GuindyPark(seed int64, disruptionProb float64) *Park {
	steel := agent.New("agent_steelco_0", "SteelCo", agent.Producer, 5000)
	steel.Capacity.Set(resource.Heat, 500)
	steel.Capacity.Set(resource.Water, 1000)

	chem := agent.New("agent_chemcorp_1", "ChemCorp", agent.Consumer, 6000)
	chem.Capacity.Set(resource.Heat, 300)
	chem.Capacity.Set(resource.Water, 500)
	chem.Inventory = chem.Capacity // consumers start stocked and draw down

	cement := agent.New("agent_cementworks_2", "CementWorks", agent.Converter, 4000)
	cement.Capacity.Set(resource.Byproduct, 1000)
	cement.Capacity.Set(resource.Heat, 200)

	return NewPark([]*agent.Factory{steel, chem, cement}, seed, disruptionProb)
}

// Factories returns the live agents.
func (p *Park) Factories() []*agent.Factory {
	return p.factories
}

// Snapshots returns the externally visible state of every factory.
func (p *Park) Snapshots() []agent.Snapshot {
	out := make([]agent.Snapshot, len(p.factories))
	for i, f := range p.factories {
		out[i] = f.Snapshot()
	}
	return out
}

// Step advances production one tick and derives the market's TickInput from
// the resulting agent states. At most one factory is disrupted per tick.
func (p *Park) Step(fairValues resource.Table[float64]) market.TickInput {
	disrupted := ""
	if p.rng.Float64() < p.disruptionProb {
		disrupted = p.factories[p.rng.Intn(len(p.factories))].ID
	}

	var input market.TickInput
	for _, f := range p.factories {
		f.StepProduction(p.rng, f.ID == disrupted)
	}

	// Aggregate supply and demand from inventory pressure.
	for _, kind := range resource.Kinds() {
		var supply, demand float64
		for _, f := range p.factories {
			if surplus := f.Surplus(kind); surplus > 0 {
				supply += surplus
			}
			if deficit := f.Deficit(kind); deficit > 0 {
				demand += deficit
			}
		}
		input.Supply.Set(kind, supply)
		input.Demand.Set(kind, demand)
		// Stand-in for the external value-function estimate: small
		// zero-centered noise already normalized to [-1, 1].
		input.Signals.Set(kind, clampSignal(p.rng.NormFloat64()*0.2))
	}

	for _, f := range p.factories {
		for _, intent := range f.Intents(fairValues) {
			input.Orders = append(input.Orders, market.AgentOrder{
				AgentID:    f.ID,
				Resource:   intent.Resource,
				Side:       intent.Side,
				Quantity:   intent.Quantity,
				LimitPrice: intent.LimitPrice,
			})
		}
	}
	return input
}

// Apply settles the tick's agreed trades against factory inventories and
// cash. Orders owned by outside agents (the market maker) are skipped; the
// orchestrator does the maker's bookkeeping itself.
func (p *Park) Apply(result market.TickResult) {
	for _, s := range result.Settlements {
		if !s.Agreed {
			continue
		}
		if buyer, ok := p.byID[s.Buyer]; ok {
			buyer.ApplyFill(s.Resource, auction.Buy, s.Quantity, s.FinalPrice)
		}
		if seller, ok := p.byID[s.Seller]; ok {
			seller.ApplyFill(s.Resource, auction.Sell, s.Quantity, s.FinalPrice)
		}
	}
}

func clampSignal(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
