// Package auction implements a continuous double auction for a single
// resource kind. Orders rest in price-sorted books and crossing pairs are
// matched greedily at the midpoint of the two limit prices.
package auction

import (
	"errors"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"github.com/Ritinpaul/symbios-core/internal/resource"
)

var (
	ErrInvalidOrder  = errors.New("invalid order")
	ErrUnknownOrder  = errors.New("unknown order")
)

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Order is a priced intent to trade. Quantity is decremented in place while
// the order rests in a book and the order is removed once it reaches zero.
type Order struct {
	ID         string
	Agent      string
	Side       Side
	Quantity   float64
	LimitPrice float64

	// seq is the arrival counter used to break price ties FIFO.
	seq uint64
}

// Match is one execution produced by a matching pass. Immutable once emitted.
type Match struct {
	Buyer       string
	Seller      string
	BuyOrderID  string
	SellOrderID string
	Quantity    float64
	Price       float64
}

// priceLevel groups resting orders sharing a limit price, sorted by arrival
// as they are appended.
type priceLevel struct {
	price  float64
	orders []*Order
}

type priceLevels = btree.BTreeG[*priceLevel]

// Auction holds the buy and sell books for one resource kind.
type Auction struct {
	kind resource.Kind

	// bids sorted greatest price first, asks least first.
	bids *priceLevels
	asks *priceLevels

	// byID indexes resting orders for cancellation.
	byID map[string]*Order
	seq  uint64
}

func New(kind resource.Kind) *Auction {
	bids := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price > b.price
	})
	asks := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price < b.price
	})
	return &Auction{
		kind: kind,
		bids: bids,
		asks: asks,
		byID: make(map[string]*Order),
	}
}

func (a *Auction) Kind() resource.Kind { return a.kind }

// Submit validates and inserts an order into its side of the book. The book
// is left untouched on rejection. Returns the order ID, generating one when
// the caller left it empty.
func (a *Auction) Submit(order Order) (string, error) {
	if order.Quantity <= 0 || order.LimitPrice < 0 {
		return "", ErrInvalidOrder
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	a.seq++
	order.seq = a.seq

	levels := a.bids
	if order.Side == Sell {
		levels = a.asks
	}

	// Comparator only looks at price, so probe with a bare level.
	resting := &order
	level, ok := levels.GetMut(&priceLevel{price: order.LimitPrice})
	if ok {
		level.orders = append(level.orders, resting)
	} else {
		levels.Set(&priceLevel{
			price:  order.LimitPrice,
			orders: []*Order{resting},
		})
	}
	a.byID[order.ID] = resting
	return order.ID, nil
}

// Cancel removes a resting order by ID. Fully filled orders are already gone
// from the index, so cancelling them reports ErrUnknownOrder.
func (a *Auction) Cancel(id string) error {
	order, ok := a.byID[id]
	if !ok {
		return ErrUnknownOrder
	}
	levels := a.bids
	if order.Side == Sell {
		levels = a.asks
	}
	level, ok := levels.GetMut(&priceLevel{price: order.LimitPrice})
	if !ok {
		return ErrUnknownOrder
	}
	for i, o := range level.orders {
		if o.ID == id {
			level.orders = append(level.orders[:i], level.orders[i+1:]...)
			break
		}
	}
	if len(level.orders) == 0 {
		levels.Delete(level)
	}
	delete(a.byID, id)
	return nil
}

// Match consumes crossing orders while the best bid price is at or above the
// best ask price. Each execution trades the minimum remaining quantity of the
// pair at the arithmetic mean of the two limit prices, so neither side
// captures the full surplus. The pass is greedy: all eligible crossings are
// executed before returning. Deterministic given book state.
func (a *Auction) Match() []Match {
	var matches []Match
	for {
		bestBid, bidOk := a.bids.MinMut()
		bestAsk, askOk := a.asks.MinMut()
		if !bidOk || !askOk || bestBid.price < bestAsk.price {
			break
		}

		// Walk the FIFO queues of both top levels while both have orders.
		var bIdx, sIdx int
		for bIdx < len(bestBid.orders) && sIdx < len(bestAsk.orders) {
			buy := bestBid.orders[bIdx]
			sell := bestAsk.orders[sIdx]

			qty := min(buy.Quantity, sell.Quantity)
			buy.Quantity -= qty
			sell.Quantity -= qty

			matches = append(matches, Match{
				Buyer:       buy.Agent,
				Seller:      sell.Agent,
				BuyOrderID:  buy.ID,
				SellOrderID: sell.ID,
				Quantity:    qty,
				Price:       (buy.LimitPrice + sell.LimitPrice) / 2,
			})

			if buy.Quantity == 0 {
				delete(a.byID, buy.ID)
				bIdx++
			}
			if sell.Quantity == 0 {
				delete(a.byID, sell.ID)
				sIdx++
			}
		}

		// Slice off consumed orders and drop emptied levels.
		if bIdx > 0 {
			bestBid.orders = bestBid.orders[bIdx:]
		}
		if sIdx > 0 {
			bestAsk.orders = bestAsk.orders[sIdx:]
		}
		if len(bestBid.orders) == 0 {
			a.bids.Delete(bestBid)
		}
		if len(bestAsk.orders) == 0 {
			a.asks.Delete(bestAsk)
		}
	}
	return matches
}

// BestBid returns the highest resting buy price.
func (a *Auction) BestBid() (float64, bool) {
	level, ok := a.bids.Min()
	if !ok {
		return 0, false
	}
	return level.price, true
}

// BestAsk returns the lowest resting sell price.
func (a *Auction) BestAsk() (float64, bool) {
	level, ok := a.asks.Min()
	if !ok {
		return 0, false
	}
	return level.price, true
}
