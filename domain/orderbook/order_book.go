package orderbook

import "sort"

// OrderBook holds both sides of one market.
//
// Bids are sorted descending by price, asks ascending. Orders at the
// same price keep insertion order, so time priority falls out of the
// insert position and never needs a re-sort.
type OrderBook struct {
	BaseAsset  string
	QuoteAsset string

	bids []*Order
	asks []*Order

	depthBids map[float64]float64
	depthAsks map[float64]float64

	LastTradeID  int64
	CurrentPrice float64
}

func NewOrderBook(baseAsset, quoteAsset string) *OrderBook {
	return &OrderBook{
		BaseAsset:  baseAsset,
		QuoteAsset: quoteAsset,
		depthBids:  make(map[float64]float64),
		depthAsks:  make(map[float64]float64),
	}
}

// Market returns the ticker in base_quote form, e.g. "TATA_INR".
func (b *OrderBook) Market() string {
	return b.BaseAsset + "_" + b.QuoteAsset
}

//
// ──────────────────────────────────────────────────────────
// Matching
// ──────────────────────────────────────────────────────────
//

// AddOrder matches the incoming order against the opposite side and
// rests any remainder on its own side, unless the order is IOC.
// Returns the executed quantity and the fills in execution order.
func (b *OrderBook) AddOrder(o *Order) (float64, []Fill) {
	var fills []Fill
	if o.Side == Buy {
		fills = b.matchBid(o)
	} else {
		fills = b.matchAsk(o)
	}

	if o.Remaining() > 0 && o.Kind != KindIOC {
		if o.Side == Buy {
			b.bids = insertSorted(b.bids, o, true)
			b.bumpDepth(b.depthBids, o.Price, o.Remaining())
		} else {
			b.asks = insertSorted(b.asks, o, false)
			b.bumpDepth(b.depthAsks, o.Price, o.Remaining())
		}
	}

	return o.Filled, fills
}

func (b *OrderBook) matchBid(o *Order) []Fill {
	var fills []Fill

	i := 0
	for i < len(b.asks) && o.Remaining() > 0 {
		ask := b.asks[i]
		if ask.Price > o.Price {
			break
		}

		qty := min(o.Remaining(), ask.Remaining())
		o.Filled += qty
		ask.Filled += qty
		fills = append(fills, b.recordFill(ask, qty))
		b.bumpDepth(b.depthAsks, ask.Price, -qty)

		if ask.Remaining() == 0 {
			b.asks = removeAt(b.asks, i)
		} else {
			i++
		}
	}

	return fills
}

func (b *OrderBook) matchAsk(o *Order) []Fill {
	var fills []Fill

	i := 0
	for i < len(b.bids) && o.Remaining() > 0 {
		bid := b.bids[i]
		if bid.Price < o.Price {
			break
		}

		qty := min(o.Remaining(), bid.Remaining())
		o.Filled += qty
		bid.Filled += qty
		fills = append(fills, b.recordFill(bid, qty))
		b.bumpDepth(b.depthBids, bid.Price, -qty)

		if bid.Remaining() == 0 {
			b.bids = removeAt(b.bids, i)
		} else {
			i++
		}
	}

	return fills
}

func (b *OrderBook) recordFill(maker *Order, qty float64) Fill {
	b.LastTradeID++
	b.CurrentPrice = maker.Price
	return Fill{
		Price:        maker.Price,
		Quantity:     qty,
		TradeID:      b.LastTradeID,
		MakerOrderID: maker.OrderID,
		MakerUserID:  maker.UserID,
	}
}

//
// ──────────────────────────────────────────────────────────
// Cancellation and lookup
// ──────────────────────────────────────────────────────────
//

// FindOrder scans both sides for a resting order by id.
func (b *OrderBook) FindOrder(orderID string) (*Order, bool) {
	for _, o := range b.bids {
		if o.OrderID == orderID {
			return o, true
		}
	}
	for _, o := range b.asks {
		if o.OrderID == orderID {
			return o, true
		}
	}
	return nil, false
}

// Cancel removes a resting order and releases its unfilled quantity
// from the depth aggregate. Returns the price it rested at. Balance
// release is the caller's job.
func (b *OrderBook) Cancel(o *Order) (float64, bool) {
	side := &b.bids
	depth := b.depthBids
	if o.Side == Sell {
		side = &b.asks
		depth = b.depthAsks
	}

	for i, resting := range *side {
		if resting.OrderID == o.OrderID {
			b.bumpDepth(depth, resting.Price, -resting.Remaining())
			*side = removeAt(*side, i)
			return resting.Price, true
		}
	}
	return 0, false
}

// OpenOrders returns the user's resting orders on both sides.
func (b *OrderBook) OpenOrders(userID string) []*Order {
	var out []*Order
	for _, o := range b.bids {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	for _, o := range b.asks {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

func (b *OrderBook) BestBid() (*Order, bool) {
	if len(b.bids) == 0 {
		return nil, false
	}
	return b.bids[0], true
}

func (b *OrderBook) BestAsk() (*Order, bool) {
	if len(b.asks) == 0 {
		return nil, false
	}
	return b.asks[0], true
}

//
// ──────────────────────────────────────────────────────────
// Depth
// ──────────────────────────────────────────────────────────
//

// PriceLevel is one aggregated row of the depth view.
type PriceLevel struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Depth is the aggregated book: bids descending, asks ascending.
type Depth struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// GetDepth renders the depth aggregates. Cost is proportional to the
// number of distinct price levels, not the number of resting orders.
func (b *OrderBook) GetDepth() Depth {
	return Depth{
		Bids: levels(b.depthBids, true),
		Asks: levels(b.depthAsks, false),
	}
}

func levels(m map[float64]float64, descending bool) []PriceLevel {
	prices := make([]float64, 0, len(m))
	for p := range m {
		prices = append(prices, p)
	}
	sort.Float64s(prices)
	if descending {
		for i, j := 0, len(prices)-1; i < j; i, j = i+1, j-1 {
			prices[i], prices[j] = prices[j], prices[i]
		}
	}

	out := make([]PriceLevel, 0, len(prices))
	for _, p := range prices {
		out = append(out, PriceLevel{Price: p, Quantity: m[p]})
	}
	return out
}

// bumpDepth applies a delta to one depth bucket. Empty buckets are
// deleted, never kept as zero rows.
func (b *OrderBook) bumpDepth(m map[float64]float64, price, delta float64) {
	updated := m[price] + delta
	if updated <= 0 {
		delete(m, price)
	} else {
		m[price] = updated
	}
}

//
// ──────────────────────────────────────────────────────────
// Snapshot support
// ──────────────────────────────────────────────────────────
//

// SnapshotOrders copies both sides for a point-in-time snapshot.
func (b *OrderBook) SnapshotOrders() (bids, asks []Order) {
	bids = make([]Order, 0, len(b.bids))
	for _, o := range b.bids {
		bids = append(bids, *o)
	}
	asks = make([]Order, 0, len(b.asks))
	for _, o := range b.asks {
		asks = append(asks, *o)
	}
	return bids, asks
}

// RestoreOrder re-inserts a previously resting order without running
// the matching loop. Replaying restored orders through AddOrder would
// re-execute trades that already settled.
func (b *OrderBook) RestoreOrder(o *Order) {
	if o.Side == Buy {
		b.bids = insertSorted(b.bids, o, true)
		b.bumpDepth(b.depthBids, o.Price, o.Remaining())
	} else {
		b.asks = insertSorted(b.asks, o, false)
		b.bumpDepth(b.depthAsks, o.Price, o.Remaining())
	}
}

//
// ──────────────────────────────────────────────────────────
// helpers
// ──────────────────────────────────────────────────────────
//

// insertSorted places o after any existing orders at the same price,
// which is exactly the FIFO tie-break.
func insertSorted(list []*Order, o *Order, descending bool) []*Order {
	i := 0
	for i < len(list) {
		if (descending && list[i].Price < o.Price) ||
			(!descending && list[i].Price > o.Price) {
			break
		}
		i++
	}
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = o
	return list
}

func removeAt(list []*Order, i int) []*Order {
	copy(list[i:], list[i+1:])
	return list[:len(list)-1]
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
