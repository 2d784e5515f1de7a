// Package bargain implements the two-party Nash bargaining solution over a
// finite candidate set and VCG externality payments for truthful surplus
// allocation.
package bargain

import (
	"errors"
	"math"

	"github.com/Ritinpaul/symbios-core/internal/resource"
)

// ErrNoAgreement signals that no candidate deal strictly improved on both
// parties' walk-away values. It is an expected outcome, not a system fault;
// callers branch on it rather than treat it as failure.
var ErrNoAgreement = errors.New("no individually rational deal")

// Deal is one candidate trade presented to the solver. Never mutated after
// selection.
type Deal struct {
	Resource resource.Kind
	Quantity float64
	Price    float64
}

// Utility evaluates how much a party values a deal. Distinct variant types
// implement it per party, replacing arbitrary callables with a capability
// interface.
type Utility interface {
	Evaluate(deal Deal) float64
}

// BuyerUtility is linear utility for the receiving party:
// value received minus cost incurred minus carbon tax.
type BuyerUtility struct {
	// ValuePerUnit is what one unit of the resource is worth to the buyer.
	ValuePerUnit float64
	// CarbonTaxPerUnit is the policy cost the buyer carries per unit moved.
	CarbonTaxPerUnit float64
}

func (u BuyerUtility) Evaluate(deal Deal) float64 {
	value := u.ValuePerUnit * deal.Quantity
	cost := deal.Price * deal.Quantity
	tax := u.CarbonTaxPerUnit * deal.Quantity
	return value - cost - tax
}

// SellerUtility is linear utility for the providing party: revenue minus
// production cost minus carbon tax.
type SellerUtility struct {
	// CostPerUnit is the seller's marginal cost of providing one unit.
	CostPerUnit float64
	// CarbonTaxPerUnit is the policy cost the seller carries per unit moved.
	CarbonTaxPerUnit float64
}

func (u SellerUtility) Evaluate(deal Deal) float64 {
	revenue := deal.Price * deal.Quantity
	cost := u.CostPerUnit * deal.Quantity
	tax := u.CarbonTaxPerUnit * deal.Quantity
	return revenue - cost - tax
}

// Outcome is the solver's selection with the utilities both parties realize.
type Outcome struct {
	Deal        Deal
	Utility1    float64
	Utility2    float64
	NashProduct float64
}

// SolveTwoParty picks, from a finite candidate set, the deal maximizing the
// Nash product (u1-batna1)*(u2-batna2). Candidates where either party does
// not strictly beat its BATNA are rejected outright: no deal is forced on a
// party worse off than walking away. Returns ErrNoAgreement when the
// individually rational set is empty.
func SolveTwoParty(u1, u2 Utility, batna1, batna2 float64, deals []Deal) (Outcome, error) {
	best := Outcome{NashProduct: math.Inf(-1)}
	found := false

	for _, deal := range deals {
		v1 := u1.Evaluate(deal)
		v2 := u2.Evaluate(deal)
		if v1 <= batna1 || v2 <= batna2 {
			continue
		}
		product := (v1 - batna1) * (v2 - batna2)
		if product > best.NashProduct {
			best = Outcome{Deal: deal, Utility1: v1, Utility2: v2, NashProduct: product}
			found = true
		}
	}

	if !found {
		return Outcome{NashProduct: math.Inf(-1)}, ErrNoAgreement
	}
	return best, nil
}

// VCGExternalityPayment charges an agent the marginal harm its presence
// imposes on everyone else: the value the others would realize without the
// agent, minus the value they realize with it. Truthful bidding being a
// dominant strategy depends on computing the payment this way rather than
// from the agent's own bid. Payments are never negative.
func VCGExternalityPayment(agentID string, allBids map[string]float64, optimalAllocationValue, allocationValueWithoutAgent float64) float64 {
	othersWithAgent := optimalAllocationValue - allBids[agentID]
	payment := allocationValueWithoutAgent - othersWithAgent
	return max(0, payment)
}
