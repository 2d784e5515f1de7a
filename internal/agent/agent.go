// Package agent models the factory participants of an industrial park:
// producers generating surplus resources, consumers drawing them down, and
// converters fluctuating between the two. Agents own their production state;
// trading decisions are expressed as order intents handed to the market.
package agent

import (
	"math/rand"

	"github.com/Ritinpaul/symbios-core/internal/auction"
	"github.com/Ritinpaul/symbios-core/internal/resource"
)

type Type int

const (
	Producer Type = iota
	Consumer
	Converter
)

func (t Type) String() string {
	switch t {
	case Producer:
		return "producer"
	case Consumer:
		return "consumer"
	default:
		return "converter"
	}
}

// Intent is an order an agent wants submitted this tick.
type Intent struct {
	Resource   resource.Kind
	Side       auction.Side
	Quantity   float64
	LimitPrice float64
}

// Factory is one plant in the park.
type Factory struct {
	ID   string
	Name string
	Type Type

	Inventory resource.Table[float64]
	Capacity  resource.Table[float64]
	Cash      float64

	// ProductionSchedule is the factor of normal operation, degraded by
	// disruptions and recovering 0.1 per tick toward 1.0.
	ProductionSchedule float64
}

// New builds a factory with uniform default capacity of 100 per resource.
func New(id, name string, typ Type, initialCash float64) *Factory {
	f := &Factory{
		ID:                 id,
		Name:               name,
		Type:               typ,
		Cash:               initialCash,
		ProductionSchedule: 1.0,
	}
	f.Capacity.Fill(100)
	return f
}

// StepProduction advances one tick of the plant's physical model. A
// disruption (equipment failure, supply shock) halves the schedule, floored
// at 0.1; otherwise the schedule recovers toward full operation.
func (f *Factory) StepProduction(rng *rand.Rand, disrupted bool) {
	if disrupted {
		f.ProductionSchedule = max(0.1, f.ProductionSchedule*0.5)
	} else {
		f.ProductionSchedule = min(1.0, f.ProductionSchedule+0.1)
	}

	for _, kind := range resource.Kinds() {
		capacity := f.Capacity.Get(kind)
		inv := f.Inventory.Get(kind)
		switch f.Type {
		case Producer:
			inv = min(capacity, inv+(2+rng.Float64()*6)*f.ProductionSchedule)
		case Consumer:
			inv = max(0, inv-(2+rng.Float64()*6)*f.ProductionSchedule)
		case Converter:
			inv = clamp(inv+(rng.Float64()*10-5)*f.ProductionSchedule, 0, capacity)
		}
		f.Inventory.Set(kind, inv)
	}
}

// Surplus is how much of a resource the factory holds above its comfort
// level (60% of capacity). Positive values are sellable.
func (f *Factory) Surplus(kind resource.Kind) float64 {
	return f.Inventory.Get(kind) - 0.6*f.Capacity.Get(kind)
}

// Deficit is how far the factory's holding sits below its reorder level
// (20% of capacity). Positive values want buying.
func (f *Factory) Deficit(kind resource.Kind) float64 {
	return 0.2*f.Capacity.Get(kind) - f.Inventory.Get(kind)
}

// Intents derives this tick's orders from inventory pressure. Sellers
// undercut fair value slightly to move surplus; buyers bid over it to cover
// deficits. fairValues come from the pricing engine via the orchestrator.
func (f *Factory) Intents(fairValues resource.Table[float64]) []Intent {
	var intents []Intent
	for _, kind := range resource.Kinds() {
		fair := fairValues.Get(kind)
		if fair <= 0 {
			continue
		}
		if surplus := f.Surplus(kind); surplus > 0 {
			intents = append(intents, Intent{
				Resource:   kind,
				Side:       auction.Sell,
				Quantity:   surplus,
				LimitPrice: fair * 0.95,
			})
			continue
		}
		if deficit := f.Deficit(kind); deficit > 0 {
			affordable := deficit
			if cost := affordable * fair * 1.05; cost > f.Cash && fair > 0 {
				affordable = f.Cash / (fair * 1.05)
			}
			if affordable <= 0 {
				continue
			}
			intents = append(intents, Intent{
				Resource:   kind,
				Side:       auction.Buy,
				Quantity:   affordable,
				LimitPrice: fair * 1.05,
			})
		}
	}
	return intents
}

// ApplyFill settles a trade against the factory's books.
func (f *Factory) ApplyFill(kind resource.Kind, side auction.Side, quantity, price float64) {
	switch side {
	case auction.Buy:
		f.Inventory.Set(kind, min(f.Capacity.Get(kind), f.Inventory.Get(kind)+quantity))
		f.Cash -= quantity * price
	case auction.Sell:
		f.Inventory.Set(kind, max(0, f.Inventory.Get(kind)-quantity))
		f.Cash += quantity * price
	}
}

// Snapshot is the externally visible state of a factory, consumed by the
// pricing aggregation and by outside callers (RL policies, dashboards).
type Snapshot struct {
	ID                 string
	Name               string
	Type               Type
	Cash               float64
	ProductionSchedule float64
	Inventory          resource.Table[float64]
	Capacity           resource.Table[float64]
}

func (f *Factory) Snapshot() Snapshot {
	return Snapshot{
		ID:                 f.ID,
		Name:               f.Name,
		Type:               f.Type,
		Cash:               f.Cash,
		ProductionSchedule: f.ProductionSchedule,
		Inventory:          f.Inventory,
		Capacity:           f.Capacity,
	}
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
