package maker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ritinpaul/symbios-core/internal/auction"
	"github.com/Ritinpaul/symbios-core/internal/maker"
	"github.com/Ritinpaul/symbios-core/internal/resource"
)

func TestQuotePrices_BalancedInventory(t *testing.T) {
	m := maker.New(maker.DefaultConfig())

	// At target inventory the skew is zero: symmetric 5% spread.
	bid, ask := m.QuotePrices(resource.Heat, 100)
	assert.InDelta(t, 95.0, bid, 1e-9)
	assert.InDelta(t, 105.0, ask, 1e-9)
}

func TestQuotePrices_SkewLowersQuotesWhenLong(t *testing.T) {
	m := maker.New(maker.DefaultConfig())

	// Accumulate excess stock: 1500 vs target 1000 gives skew 0.5, which
	// shifts both quotes down by 1% of fair value.
	m.RecordFill(resource.Heat, auction.Buy, 500, 100)
	bid, ask := m.QuotePrices(resource.Heat, 100)
	assert.InDelta(t, 94.0, bid, 1e-9)
	assert.InDelta(t, 104.0, ask, 1e-9)
}

func TestQuotePrices_SkewRaisesQuotesWhenShort(t *testing.T) {
	m := maker.New(maker.DefaultConfig())

	m.RecordFill(resource.Heat, auction.Sell, 500, 100)
	bid, ask := m.QuotePrices(resource.Heat, 100)
	assert.InDelta(t, 96.0, bid, 1e-9)
	assert.InDelta(t, 106.0, ask, 1e-9)
}

func TestProvideLiquidity_PostsStandingPair(t *testing.T) {
	m := maker.New(maker.DefaultConfig())
	book := auction.New(resource.Water)

	quotes, err := m.ProvideLiquidity(book, resource.Water, 40)
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, 1, book.Depth(auction.Buy))
	assert.Equal(t, 1, book.Depth(auction.Sell))

	bestBid, ok := book.BestBid()
	require.True(t, ok)
	bestAsk, ok := book.BestAsk()
	require.True(t, ok)
	assert.InDelta(t, 38.0, bestBid, 1e-9)
	assert.InDelta(t, 42.0, bestAsk, 1e-9)

	// Quoting alone must not move the maker's inventory; fills are
	// reported back separately by the orchestrator.
	assert.Equal(t, 1000.0, m.Inventory(resource.Water))

	// A wide market never self-crosses.
	assert.Empty(t, book.Match())
}

func TestRecordFill_MovesInventoryAndCash(t *testing.T) {
	m := maker.New(maker.DefaultConfig())
	startCash := m.Cash()

	m.RecordFill(resource.Energy, auction.Buy, 100, 20)
	assert.Equal(t, 1100.0, m.Inventory(resource.Energy))
	assert.Equal(t, startCash-2000, m.Cash())

	m.RecordFill(resource.Energy, auction.Sell, 50, 22)
	assert.Equal(t, 1050.0, m.Inventory(resource.Energy))
	assert.Equal(t, startCash-2000+1100, m.Cash())
}
