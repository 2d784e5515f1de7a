package market

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Ritinpaul/symbios-core/internal/auction"
	"github.com/Ritinpaul/symbios-core/internal/bargain"
	"github.com/Ritinpaul/symbios-core/internal/maker"
	"github.com/Ritinpaul/symbios-core/internal/resource"
)

// Settlement is the final, bargained form of one match plus the VCG payments
// owed by each side.
type Settlement struct {
	Tick     uint64
	Resource resource.Kind
	Buyer    string
	Seller   string
	Quantity float64

	// MatchPrice is the auction's midpoint execution price; FinalPrice is
	// the bargained price (equal when bargaining failed and the match price
	// stands unadjusted).
	MatchPrice float64
	FinalPrice float64

	BuyerUtility  float64
	SellerUtility float64
	BuyerPayment  float64
	SellerPayment float64

	// Agreed reports whether an individually rational deal existed. A false
	// value is an expected outcome, penalized through reputation, not an
	// error.
	Agreed bool
}

// candidateFractions places candidate deal prices along the bid-ask surplus
// interval: sellLimit + f*(buyLimit - sellLimit).
var candidateFractions = [...]float64{0.25, 0.5, 0.75}

// settle runs Nash bargaining and VCG payment computation for every match of
// one resource, then feeds the outcomes back into reputation and, when a
// maker quote was hit, into the maker's inventory bookkeeping.
func (m *Market) settle(kind resource.Kind, preBook *auction.Auction, matches []auction.Match) []Settlement {
	if len(matches) == 0 {
		return nil
	}

	totalSurplus, bids := m.surplusAccounting(matches)
	withoutCache := make(map[string]float64)

	settlements := make([]Settlement, 0, len(matches))
	for _, match := range matches {
		s := Settlement{
			Tick:       m.tick,
			Resource:   kind,
			Buyer:      match.Buyer,
			Seller:     match.Seller,
			Quantity:   match.Quantity,
			MatchPrice: match.Price,
			FinalPrice: match.Price,
		}

		buyLimit := m.limits[match.BuyOrderID]
		sellLimit := m.limits[match.SellOrderID]

		outcome, err := bargain.SolveTwoParty(
			bargain.BuyerUtility{ValuePerUnit: buyLimit, CarbonTaxPerUnit: m.cfg.CarbonTaxRate},
			bargain.SellerUtility{CostPerUnit: sellLimit, CarbonTaxPerUnit: m.cfg.CarbonTaxRate},
			0, 0,
			m.candidateDeals(kind, match.Quantity, buyLimit, sellLimit),
		)
		switch {
		case err == nil:
			s.Agreed = true
			s.FinalPrice = outcome.Deal.Price
			s.BuyerUtility = outcome.Utility1
			s.SellerUtility = outcome.Utility2
		case errors.Is(err, bargain.ErrNoAgreement):
			log.Debug().
				Stringer("resource", kind).
				Str("buyer", match.Buyer).
				Str("seller", match.Seller).
				Msg("no individually rational deal, settlement failed")
		}

		s.BuyerPayment = m.vcgPayment(match.Buyer, preBook, bids, totalSurplus, withoutCache)
		s.SellerPayment = m.vcgPayment(match.Seller, preBook, bids, totalSurplus, withoutCache)

		weight := clamp(s.Quantity*s.FinalPrice/m.cfg.SettlementValueScale, 0.01, 0.3)
		m.reputation.Update(match.Buyer, s.Agreed, weight)
		m.reputation.Update(match.Seller, s.Agreed, weight)

		if s.Agreed {
			if match.Buyer == maker.AgentID {
				m.maker.RecordFill(kind, auction.Buy, s.Quantity, s.FinalPrice)
			}
			if match.Seller == maker.AgentID {
				m.maker.RecordFill(kind, auction.Sell, s.Quantity, s.FinalPrice)
			}
		}

		if m.recorder != nil {
			if err := m.recorder.RecordSettlement(s); err != nil {
				log.Warn().Err(err).Msg("record settlement")
			}
		}
		settlements = append(settlements, s)
	}
	return settlements
}

// candidateDeals builds the finite deal set handed to the solver. For the
// linear utilities used here the Nash product peaks at the midpoint, which
// keeps the documented 50/50 surplus split of the auction's execution price.
func (m *Market) candidateDeals(kind resource.Kind, quantity, buyLimit, sellLimit float64) []bargain.Deal {
	deals := make([]bargain.Deal, 0, len(candidateFractions))
	for _, f := range candidateFractions {
		deals = append(deals, bargain.Deal{
			Resource: kind,
			Quantity: quantity,
			Price:    sellLimit + f*(buyLimit-sellLimit),
		})
	}
	return deals
}

// surplusAccounting totals the reported gains from trade of a match set and
// attributes each agent its share under the midpoint split. Limit prices are
// the agents' reported valuations, so the surplus of one match is
// (buyLimit - sellLimit) * quantity.
func (m *Market) surplusAccounting(matches []auction.Match) (total float64, bids map[string]float64) {
	bids = make(map[string]float64)
	for _, match := range matches {
		buyLimit := m.limits[match.BuyOrderID]
		sellLimit := m.limits[match.SellOrderID]
		total += (buyLimit - sellLimit) * match.Quantity
		bids[match.Buyer] += (buyLimit - match.Price) * match.Quantity
		bids[match.Seller] += (match.Price - sellLimit) * match.Quantity
	}
	return total, bids
}

// vcgPayment charges an agent the externality its participation imposed on
// everyone else, measured by replaying the pre-match book without the
// agent's orders and comparing the surplus the others realize.
func (m *Market) vcgPayment(agentID string, preBook *auction.Auction, bids map[string]float64, totalSurplus float64, cache map[string]float64) float64 {
	without, ok := cache[agentID]
	if !ok {
		counterfactual := preBook.Clone()
		counterfactual.WithdrawAgent(agentID)
		for _, match := range counterfactual.Match() {
			buyLimit := m.limits[match.BuyOrderID]
			sellLimit := m.limits[match.SellOrderID]
			without += (buyLimit - sellLimit) * match.Quantity
		}
		cache[agentID] = without
	}
	return bargain.VCGExternalityPayment(agentID, bids, totalSurplus, without)
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
