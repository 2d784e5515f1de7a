package bargain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ritinpaul/symbios-core/internal/bargain"
	"github.com/Ritinpaul/symbios-core/internal/resource"
)

func candidates(quantity float64, prices ...float64) []bargain.Deal {
	deals := make([]bargain.Deal, len(prices))
	for i, price := range prices {
		deals[i] = bargain.Deal{Resource: resource.Heat, Quantity: quantity, Price: price}
	}
	return deals
}

func TestSolveTwoParty_MaximizesNashProduct(t *testing.T) {
	buyer := bargain.BuyerUtility{ValuePerUnit: 100}
	seller := bargain.SellerUtility{CostPerUnit: 60}

	// With linear utilities the product (100-p)(p-60) peaks at the midpoint.
	outcome, err := bargain.SolveTwoParty(buyer, seller, 0, 0, candidates(1, 70, 80, 90))
	require.NoError(t, err)
	assert.Equal(t, 80.0, outcome.Deal.Price)
	assert.Equal(t, 20.0, outcome.Utility1)
	assert.Equal(t, 20.0, outcome.Utility2)
	assert.Equal(t, 400.0, outcome.NashProduct)
}

func TestSolveTwoParty_IndividualRationality(t *testing.T) {
	buyer := bargain.BuyerUtility{ValuePerUnit: 100}
	seller := bargain.SellerUtility{CostPerUnit: 60}

	// BATNAs exclude the lopsided candidates; only the middle one clears
	// both floors strictly.
	outcome, err := bargain.SolveTwoParty(buyer, seller, 15, 15, candidates(1, 70, 80, 90))
	require.NoError(t, err)
	assert.Equal(t, 80.0, outcome.Deal.Price)
	assert.Greater(t, outcome.Utility1, 15.0)
	assert.Greater(t, outcome.Utility2, 15.0)
}

func TestSolveTwoParty_NoAgreement(t *testing.T) {
	buyer := bargain.BuyerUtility{ValuePerUnit: 100}
	seller := bargain.SellerUtility{CostPerUnit: 60}

	// Equal utilities at the BATNA floor are not strictly better: no deal.
	_, err := bargain.SolveTwoParty(buyer, seller, 20, 20, candidates(1, 80))
	assert.ErrorIs(t, err, bargain.ErrNoAgreement)

	// An empty candidate set can never agree.
	_, err = bargain.SolveTwoParty(buyer, seller, 0, 0, nil)
	assert.ErrorIs(t, err, bargain.ErrNoAgreement)
}

func TestSolveTwoParty_CarbonTaxShrinksSurplus(t *testing.T) {
	buyer := bargain.BuyerUtility{ValuePerUnit: 100, CarbonTaxPerUnit: 25}
	seller := bargain.SellerUtility{CostPerUnit: 60, CarbonTaxPerUnit: 25}

	// Tax of 25/unit each side swallows the 40/unit gross surplus entirely.
	_, err := bargain.SolveTwoParty(buyer, seller, 0, 0, candidates(1, 80))
	assert.ErrorIs(t, err, bargain.ErrNoAgreement)
}

func TestVCGExternalityPayment(t *testing.T) {
	bids := map[string]float64{"A": 50, "B": 30, "C": 20}

	// Without A the others could realize 90; with A present they realize
	// 100 - 50 = 50. A owes the 40 it displaced.
	assert.Equal(t, 40.0, bargain.VCGExternalityPayment("A", bids, 100, 90))

	// An agent imposing no externality pays nothing.
	assert.Equal(t, 0.0, bargain.VCGExternalityPayment("B", bids, 100, 70))

	// Payments are never negative even when presence helps others.
	assert.Equal(t, 0.0, bargain.VCGExternalityPayment("C", bids, 100, 10))

	// Unknown agents carry a zero bid.
	assert.Equal(t, 20.0, bargain.VCGExternalityPayment("D", bids, 100, 120))
}
