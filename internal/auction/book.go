package auction

// FlatLevel is a copyable view of one price level, used by tests and by the
// orchestrator when snapshotting book depth.
type FlatLevel struct {
	Price  float64
	Orders []Order
}

func flatten(levels *priceLevels) []FlatLevel {
	out := make([]FlatLevel, 0, levels.Len())
	levels.Scan(func(level *priceLevel) bool {
		flat := FlatLevel{Price: level.price, Orders: make([]Order, len(level.orders))}
		for i, o := range level.orders {
			flat.Orders[i] = *o
		}
		out = append(out, flat)
		return true
	})
	return out
}

// BidLevels returns the buy book best-first.
func (a *Auction) BidLevels() []FlatLevel { return flatten(a.bids) }

// AskLevels returns the sell book best-first.
func (a *Auction) AskLevels() []FlatLevel { return flatten(a.asks) }

// Resting reports whether an order is still queued in either book.
func (a *Auction) Resting(id string) bool {
	_, ok := a.byID[id]
	return ok
}

// RestingQuantity sums the remaining quantity on one side.
func (a *Auction) RestingQuantity(side Side) float64 {
	levels := a.bids
	if side == Sell {
		levels = a.asks
	}
	var total float64
	levels.Scan(func(level *priceLevel) bool {
		for _, o := range level.orders {
			total += o.Quantity
		}
		return true
	})
	return total
}

// Depth reports the number of resting orders on one side.
func (a *Auction) Depth(side Side) int {
	levels := a.bids
	if side == Sell {
		levels = a.asks
	}
	var n int
	levels.Scan(func(level *priceLevel) bool {
		n += len(level.orders)
		return true
	})
	return n
}
