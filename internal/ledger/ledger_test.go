package ledger_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ritinpaul/symbios-core/internal/ledger"
	"github.com/Ritinpaul/symbios-core/internal/market"
	"github.com/Ritinpaul/symbios-core/internal/resource"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "market.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSettlementRoundTrip(t *testing.T) {
	store := openStore(t)

	require.NoError(t, store.RecordSettlement(market.Settlement{
		Tick:       3,
		Resource:   resource.Heat,
		Buyer:      "A",
		Seller:     "B",
		Quantity:   30,
		MatchPrice: 77.5,
		FinalPrice: 77.5,
		Agreed:     true,
	}))
	require.NoError(t, store.RecordSettlement(market.Settlement{
		Tick:       4,
		Resource:   resource.Water,
		Buyer:      "B",
		Seller:     "A",
		Quantity:   10,
		MatchPrice: 5,
		FinalPrice: 5,
		Agreed:     false,
	}))

	rows, err := store.RecentSettlements(10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first.
	assert.Equal(t, uint64(4), rows[0].Tick)
	assert.False(t, rows[0].Agreed)
	assert.Equal(t, "water", rows[0].Resource)
	assert.Equal(t, uint64(3), rows[1].Tick)
	assert.True(t, rows[1].Agreed)
	assert.Equal(t, 77.5, rows[1].FinalPrice)
}

func TestPriceSeries(t *testing.T) {
	store := openStore(t)

	for tick, price := range []float64{10, 11, 12, 13} {
		require.NoError(t, store.RecordPrice(uint64(tick+1), resource.Energy, price))
	}
	require.NoError(t, store.RecordPrice(9, resource.Heat, 99))

	points, err := store.PriceSeries(resource.Energy, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// Oldest first within the window, other resources excluded.
	assert.Equal(t, 11.0, points[0].Price)
	assert.Equal(t, 13.0, points[2].Price)
}

func TestRecordScores(t *testing.T) {
	store := openStore(t)
	assert.NoError(t, store.RecordScores(7, map[string]float64{"A": 0.9, "B": 0.4}))
}
