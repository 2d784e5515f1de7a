// Package maker implements a standing-liquidity agent that posts paired
// bid/ask quotes into the auctions, skewing both sides against its inventory
// risk so trading never fully stops.
package maker

import (
	"fmt"

	"github.com/Ritinpaul/symbios-core/internal/auction"
	"github.com/Ritinpaul/symbios-core/internal/resource"
)

// AgentID identifies the maker's orders in books, matches and reputation.
const AgentID = "MM_01"

// Config holds the maker's quoting parameters.
type Config struct {
	// Spread is the half-spread fraction applied around fair value.
	Spread float64
	// SkewSensitivity scales how strongly inventory imbalance shifts quotes.
	SkewSensitivity float64
	// QuoteSize is the fixed quantity of each standing order.
	QuoteSize float64
	// InventoryTarget is the desired holding per resource.
	InventoryTarget float64
}

// DefaultConfig mirrors the canonical 5% spread / 0.02 skew parameters.
func DefaultConfig() Config {
	return Config{
		Spread:          0.05,
		SkewSensitivity: 0.02,
		QuoteSize:       100,
		InventoryTarget: 1000,
	}
}

// Quote is one side of the maker's standing pair.
type Quote struct {
	OrderID string
	Side    auction.Side
	Price   float64
}

// MarketMaker keeps a signed inventory position per resource and quotes
// around fair value. As it accumulates excess stock both quotes shift down,
// discouraging further buying and encouraging the excess to be sold off,
// and vice versa when short.
type MarketMaker struct {
	cfg       Config
	inventory resource.Table[float64]
	cash      float64
}

func New(cfg Config) *MarketMaker {
	m := &MarketMaker{cfg: cfg, cash: 100_000}
	m.inventory.Fill(cfg.InventoryTarget)
	return m
}

// QuotePrices computes the skewed bid/ask for a fair value without touching
// any book. Exposed separately so the skew math is testable in isolation.
func (m *MarketMaker) QuotePrices(kind resource.Kind, fairValue float64) (bid, ask float64) {
	skew := (m.inventory.Get(kind) - m.cfg.InventoryTarget) / m.cfg.InventoryTarget
	adjustment := skew * m.cfg.SkewSensitivity
	bid = fairValue * (1.0 - m.cfg.Spread - adjustment)
	ask = fairValue * (1.0 + m.cfg.Spread - adjustment)
	return bid, ask
}

// ProvideLiquidity posts one standing buy and one standing sell of the
// configured quote size into the auction. Inventory is not touched here:
// the matcher knows nothing of agent holdings, so fills against these
// orders are reported back through RecordFill by the orchestrator.
func (m *MarketMaker) ProvideLiquidity(a *auction.Auction, kind resource.Kind, fairValue float64) ([]Quote, error) {
	bid, ask := m.QuotePrices(kind, fairValue)

	bidID, err := a.Submit(auction.Order{
		Agent:      AgentID,
		Side:       auction.Buy,
		Quantity:   m.cfg.QuoteSize,
		LimitPrice: bid,
	})
	if err != nil {
		return nil, fmt.Errorf("post bid quote: %w", err)
	}
	askID, err := a.Submit(auction.Order{
		Agent:      AgentID,
		Side:       auction.Sell,
		Quantity:   m.cfg.QuoteSize,
		LimitPrice: ask,
	})
	if err != nil {
		return nil, fmt.Errorf("post ask quote: %w", err)
	}

	return []Quote{
		{OrderID: bidID, Side: auction.Buy, Price: bid},
		{OrderID: askID, Side: auction.Sell, Price: ask},
	}, nil
}

// RecordFill updates the maker's position after one of its resting quotes
// traded. A filled bid grows inventory, a filled ask shrinks it; cash moves
// the opposite way.
func (m *MarketMaker) RecordFill(kind resource.Kind, side auction.Side, quantity, price float64) {
	switch side {
	case auction.Buy:
		m.inventory.Set(kind, m.inventory.Get(kind)+quantity)
		m.cash -= quantity * price
	case auction.Sell:
		m.inventory.Set(kind, m.inventory.Get(kind)-quantity)
		m.cash += quantity * price
	}
}

// Inventory returns the current position for a resource.
func (m *MarketMaker) Inventory(kind resource.Kind) float64 {
	return m.inventory.Get(kind)
}

// Cash returns the maker's cash balance.
func (m *MarketMaker) Cash() float64 {
	return m.cash
}
