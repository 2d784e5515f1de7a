package auction

// Clone deep-copies the auction, preserving order IDs, remaining quantities
// and arrival sequence. Used by the settlement layer to replay matching on
// counterfactual books (e.g. with one agent's orders withdrawn) without
// disturbing live state.
func (a *Auction) Clone() *Auction {
	clone := New(a.kind)
	clone.seq = a.seq

	copyLevels := func(src, dst *priceLevels) {
		src.Scan(func(level *priceLevel) bool {
			orders := make([]*Order, len(level.orders))
			for i, o := range level.orders {
				dup := *o
				orders[i] = &dup
				clone.byID[dup.ID] = &dup
			}
			dst.Set(&priceLevel{price: level.price, orders: orders})
			return true
		})
	}
	copyLevels(a.bids, clone.bids)
	copyLevels(a.asks, clone.asks)
	return clone
}

// OrdersByAgent lists the IDs of every resting order owned by an agent.
func (a *Auction) OrdersByAgent(agentID string) []string {
	var ids []string
	for id, o := range a.byID {
		if o.Agent == agentID {
			ids = append(ids, id)
		}
	}
	return ids
}

// WithdrawAgent cancels every resting order owned by an agent.
func (a *Auction) WithdrawAgent(agentID string) {
	for _, id := range a.OrdersByAgent(agentID) {
		_ = a.Cancel(id)
	}
}
