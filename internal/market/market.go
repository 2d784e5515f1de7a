// Package market orchestrates the per-tick trading pipeline of the
// industrial symbiosis exchange: pricing, liquidity provision, order
// submission, matching, bargaining/VCG settlement and reputation feedback,
// always in that order so a tick is reproducible from its inputs.
package market

import (
	"github.com/rs/zerolog/log"

	"github.com/Ritinpaul/symbios-core/internal/auction"
	"github.com/Ritinpaul/symbios-core/internal/maker"
	"github.com/Ritinpaul/symbios-core/internal/pricing"
	"github.com/Ritinpaul/symbios-core/internal/reputation"
	"github.com/Ritinpaul/symbios-core/internal/resource"
)

// Config tunes the orchestrator.
type Config struct {
	// CarbonTaxRate is the per-unit policy cost fed into pricing and into
	// both parties' settlement utilities.
	CarbonTaxRate float64
	// TrendWindow is the observation window for trend classification.
	TrendWindow int
	// SettlementValueScale normalizes trade value into a reputation update
	// weight: weight = clamp(value/scale, 0.01, 0.3).
	SettlementValueScale float64
	// DecayInterval applies reputation time decay every N ticks. Zero
	// disables periodic decay.
	DecayInterval uint64
}

func DefaultConfig() Config {
	return Config{
		CarbonTaxRate:        0,
		TrendWindow:          5,
		SettlementValueScale: 10_000,
		DecayInterval:        10,
	}
}

// Recorder persists tick outcomes. A nil Recorder disables persistence.
type Recorder interface {
	RecordSettlement(s Settlement) error
	RecordPrice(tick uint64, kind resource.Kind, price float64) error
	RecordScores(tick uint64, scores map[string]float64) error
}

// AgentOrder is an externally supplied trade intent for this tick.
type AgentOrder struct {
	AgentID    string
	Resource   resource.Kind
	Side       auction.Side
	Quantity   float64
	LimitPrice float64
}

// RejectedOrder pairs a refused intent with the rejection cause. The book is
// untouched by a rejection.
type RejectedOrder struct {
	Order AgentOrder
	Err   error
}

// MatchEvent ties a match to the resource it traded.
type MatchEvent struct {
	Resource resource.Kind
	Match    auction.Match
}

// TickInput carries the external signals for one tick: aggregate
// supply/demand observed from agent states, normalized fair-value hints from
// the predictive layer, optional urgency multipliers, and agent orders.
type TickInput struct {
	Supply  resource.Table[float64]
	Demand  resource.Table[float64]
	Signals resource.Table[float64]
	Urgency resource.Table[float64]
	Orders  []AgentOrder
}

// TickResult is everything one tick produced.
type TickResult struct {
	Tick        uint64
	Prices      resource.Table[float64]
	Trends      resource.Table[pricing.Trend]
	Matches     []MatchEvent
	Settlements []Settlement
	Rejected    []RejectedOrder
	Scores      map[string]float64
}

// Market owns one auction per resource plus the supporting engines.
// Exactly one writer per instance per tick; any external concurrency must
// synchronize around it.
type Market struct {
	cfg        Config
	auctions   resource.Table[*auction.Auction]
	pricing    *pricing.Engine
	maker      *maker.MarketMaker
	reputation *reputation.Ledger
	recorder   Recorder

	tick uint64

	// quotes are the maker's standing orders, cancelled before re-quoting.
	quotes resource.Table[[]maker.Quote]

	// limits remembers the limit price of every order the market submitted,
	// keyed by order ID, for surplus accounting at settlement. Entries are
	// pruned once their orders leave the books.
	limits map[string]float64
}

func New(cfg Config, priceEngine *pricing.Engine, mm *maker.MarketMaker, rep *reputation.Ledger, recorder Recorder) *Market {
	if cfg.TrendWindow <= 0 {
		cfg.TrendWindow = 5
	}
	if cfg.SettlementValueScale <= 0 {
		cfg.SettlementValueScale = 10_000
	}
	m := &Market{
		cfg:        cfg,
		pricing:    priceEngine,
		maker:      mm,
		reputation: rep,
		recorder:   recorder,
		limits:     make(map[string]float64),
	}
	for _, kind := range resource.Kinds() {
		m.auctions.Set(kind, auction.New(kind))
	}
	return m
}

// Auction exposes the book for one resource, mainly for inspection.
func (m *Market) Auction(kind resource.Kind) *auction.Auction {
	return m.auctions.Get(kind)
}

// Reputation exposes the trust ledger.
func (m *Market) Reputation() *reputation.Ledger {
	return m.reputation
}

// Pricing exposes the pricing engine.
func (m *Market) Pricing() *pricing.Engine {
	return m.pricing
}

// Maker exposes the liquidity provider.
func (m *Market) Maker() *maker.MarketMaker {
	return m.maker
}

// Tick runs one full market cycle. The stage order is fixed:
// pricing, maker quoting and order submission, matching, settlement,
// reputation update. Reordering any of it breaks replayability.
func (m *Market) Tick(input TickInput) TickResult {
	m.tick++
	result := TickResult{Tick: m.tick}

	for _, kind := range resource.Kinds() {
		// 1. Fair value from current aggregate conditions.
		urgency := input.Urgency.Get(kind)
		if urgency == 0 {
			urgency = 1.0
		}
		fair := m.pricing.CalculatePrice(
			kind,
			input.Supply.Get(kind),
			input.Demand.Get(kind),
			input.Signals.Get(kind),
			m.cfg.CarbonTaxRate,
			urgency,
		)
		result.Prices.Set(kind, fair)

		book := m.auctions.Get(kind)

		// 2. Refresh the maker's standing quotes, then take agent orders.
		m.refreshQuotes(book, kind, fair)
		for _, order := range input.Orders {
			if order.Resource != kind {
				continue
			}
			id, err := book.Submit(auction.Order{
				Agent:      order.AgentID,
				Side:       order.Side,
				Quantity:   order.Quantity,
				LimitPrice: order.LimitPrice,
			})
			if err != nil {
				log.Debug().
					Str("agent", order.AgentID).
					Stringer("resource", kind).
					Float64("quantity", order.Quantity).
					Float64("price", order.LimitPrice).
					Err(err).
					Msg("order rejected")
				result.Rejected = append(result.Rejected, RejectedOrder{Order: order, Err: err})
				continue
			}
			m.limits[id] = order.LimitPrice
		}

		// 3. Match, keeping the pre-match book for VCG counterfactuals.
		preBook := book.Clone()
		matches := book.Match()
		for _, match := range matches {
			result.Matches = append(result.Matches, MatchEvent{Resource: kind, Match: match})
		}

		// 4/5. Settlement and reputation feedback.
		settlements := m.settle(kind, preBook, matches)
		result.Settlements = append(result.Settlements, settlements...)

		m.pruneLimits(book, matches)
		result.Trends.Set(kind, m.pricing.Trend(kind, m.cfg.TrendWindow))

		if m.recorder != nil {
			if err := m.recorder.RecordPrice(m.tick, kind, fair); err != nil {
				log.Warn().Err(err).Stringer("resource", kind).Msg("record price")
			}
		}
	}

	if m.cfg.DecayInterval > 0 && m.tick%m.cfg.DecayInterval == 0 {
		m.reputation.ApplyTimeDecay()
	}

	result.Scores = m.reputation.Scores()
	if m.recorder != nil {
		if err := m.recorder.RecordScores(m.tick, result.Scores); err != nil {
			log.Warn().Err(err).Msg("record scores")
		}
	}

	log.Info().
		Uint64("tick", m.tick).
		Int("matches", len(result.Matches)).
		Int("settlements", len(result.Settlements)).
		Int("rejected", len(result.Rejected)).
		Msg("tick complete")

	return result
}

// refreshQuotes cancels the maker's stale standing orders and posts a new
// skewed pair against the current fair value.
func (m *Market) refreshQuotes(book *auction.Auction, kind resource.Kind, fair float64) {
	for _, quote := range m.quotes.Get(kind) {
		if err := book.Cancel(quote.OrderID); err == nil {
			delete(m.limits, quote.OrderID)
		}
	}
	quotes, err := m.maker.ProvideLiquidity(book, kind, fair)
	if err != nil {
		log.Warn().Err(err).Stringer("resource", kind).Msg("maker quoting failed")
		m.quotes.Set(kind, nil)
		return
	}
	for _, quote := range quotes {
		m.limits[quote.OrderID] = quote.Price
	}
	m.quotes.Set(kind, quotes)
}

// pruneLimits drops limit records of orders fully consumed by matching.
func (m *Market) pruneLimits(book *auction.Auction, matches []auction.Match) {
	for _, match := range matches {
		if !book.Resting(match.BuyOrderID) {
			delete(m.limits, match.BuyOrderID)
		}
		if !book.Resting(match.SellOrderID) {
			delete(m.limits, match.SellOrderID)
		}
	}
}
