package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(id, userID string, side Side, price, qty float64) *Order {
	return &Order{
		OrderID:  id,
		UserID:   userID,
		Side:     side,
		Kind:     KindLimit,
		Price:    price,
		Quantity: qty,
	}
}

func depthQty(levels []PriceLevel, price float64) float64 {
	for _, lvl := range levels {
		if lvl.Price == price {
			return lvl.Quantity
		}
	}
	return 0
}

func TestAddOrderRestsWithoutCrossing(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	executed, fills := b.AddOrder(newOrder("a1", "u1", Sell, 105, 10))
	require.Zero(t, executed)
	require.Empty(t, fills)

	executed, fills = b.AddOrder(newOrder("b1", "u2", Buy, 100, 5))
	require.Zero(t, executed)
	require.Empty(t, fills)

	depth := b.GetDepth()
	assert.Equal(t, 5.0, depthQty(depth.Bids, 100))
	assert.Equal(t, 10.0, depthQty(depth.Asks, 105))
}

func TestMatchAtMakerPrice(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	b.AddOrder(newOrder("a1", "maker", Sell, 101, 4))

	// Taker is willing to pay 110 but trades at the resting price.
	executed, fills := b.AddOrder(newOrder("b1", "taker", Buy, 110, 4))
	require.Equal(t, 4.0, executed)
	require.Len(t, fills, 1)
	assert.Equal(t, 101.0, fills[0].Price)
	assert.Equal(t, "a1", fills[0].MakerOrderID)
	assert.Equal(t, "maker", fills[0].MakerUserID)
	assert.Equal(t, 101.0, b.CurrentPrice)

	// Fully filled maker left the book and its depth bucket.
	_, found := b.FindOrder("a1")
	assert.False(t, found)
	assert.Empty(t, b.GetDepth().Asks)
}

func TestPriceTimePriority(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	b.AddOrder(newOrder("first", "u1", Sell, 100, 3))
	b.AddOrder(newOrder("second", "u2", Sell, 100, 3))

	// A marketable bid that only covers part of the level must hit the
	// earlier ask first.
	executed, fills := b.AddOrder(newOrder("b1", "u3", Buy, 100, 4))
	require.Equal(t, 4.0, executed)
	require.Len(t, fills, 2)
	assert.Equal(t, "first", fills[0].MakerOrderID)
	assert.Equal(t, 3.0, fills[0].Quantity)
	assert.Equal(t, "second", fills[1].MakerOrderID)
	assert.Equal(t, 1.0, fills[1].Quantity)

	second, found := b.FindOrder("second")
	require.True(t, found)
	assert.Equal(t, 2.0, second.Remaining())
}

func TestBestPriceMatchedFirst(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	b.AddOrder(newOrder("high", "u1", Sell, 103, 2))
	b.AddOrder(newOrder("low", "u2", Sell, 101, 2))

	_, fills := b.AddOrder(newOrder("b1", "u3", Buy, 103, 3))
	require.Len(t, fills, 2)
	assert.Equal(t, 101.0, fills[0].Price)
	assert.Equal(t, 103.0, fills[1].Price)
}

func TestBookNeverCrossed(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	orders := []*Order{
		newOrder("o1", "u1", Sell, 102, 5),
		newOrder("o2", "u2", Buy, 101, 5),
		newOrder("o3", "u3", Buy, 103, 2),
		newOrder("o4", "u4", Sell, 99, 10),
		newOrder("o5", "u5", Buy, 100, 3),
	}
	for _, o := range orders {
		b.AddOrder(o)

		bid, hasBid := b.BestBid()
		ask, hasAsk := b.BestAsk()
		if hasBid && hasAsk {
			assert.Less(t, bid.Price, ask.Price)
		}
	}
}

func TestPartialFillRestsRemainder(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	b.AddOrder(newOrder("a1", "u1", Sell, 100, 3))
	executed, _ := b.AddOrder(newOrder("b1", "u2", Buy, 100, 5))
	require.Equal(t, 3.0, executed)

	rested, found := b.FindOrder("b1")
	require.True(t, found)
	assert.Equal(t, 2.0, rested.Remaining())
	assert.Equal(t, 2.0, depthQty(b.GetDepth().Bids, 100))
}

func TestIOCRemainderDiscarded(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	b.AddOrder(newOrder("a1", "u1", Sell, 100, 3))

	ioc := newOrder("b1", "u2", Buy, 100, 5)
	ioc.Kind = KindIOC
	executed, fills := b.AddOrder(ioc)
	require.Equal(t, 3.0, executed)
	require.Len(t, fills, 1)

	_, found := b.FindOrder("b1")
	assert.False(t, found)
	assert.Empty(t, b.GetDepth().Bids)
}

func TestDepthAggregatesAcrossOrders(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	b.AddOrder(newOrder("a1", "u1", Sell, 100, 3))
	b.AddOrder(newOrder("a2", "u2", Sell, 100, 7))
	b.AddOrder(newOrder("a3", "u3", Sell, 101, 2))

	depth := b.GetDepth()
	require.Len(t, depth.Asks, 2)
	assert.Equal(t, 10.0, depthQty(depth.Asks, 100))
	assert.Equal(t, 2.0, depthQty(depth.Asks, 101))

	// Asks ascending.
	assert.Equal(t, 100.0, depth.Asks[0].Price)
	assert.Equal(t, 101.0, depth.Asks[1].Price)

	// Partial execution shrinks the bucket in place.
	b.AddOrder(newOrder("b1", "u4", Buy, 100, 4))
	assert.Equal(t, 6.0, depthQty(b.GetDepth().Asks, 100))
}

func TestDepthOrdering(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	b.AddOrder(newOrder("b1", "u1", Buy, 98, 1))
	b.AddOrder(newOrder("b2", "u2", Buy, 100, 1))
	b.AddOrder(newOrder("b3", "u3", Buy, 99, 1))

	depth := b.GetDepth()
	require.Len(t, depth.Bids, 3)
	assert.Equal(t, []float64{100, 99, 98}, []float64{
		depth.Bids[0].Price, depth.Bids[1].Price, depth.Bids[2].Price,
	})
}

func TestCancelReleasesRemainingDepth(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	b.AddOrder(newOrder("a1", "u1", Sell, 100, 5))
	b.AddOrder(newOrder("b1", "u2", Buy, 100, 2)) // partially fills a1

	order, found := b.FindOrder("a1")
	require.True(t, found)
	require.Equal(t, 3.0, order.Remaining())

	price, cancelled := b.Cancel(order)
	require.True(t, cancelled)
	assert.Equal(t, 100.0, price)
	assert.Empty(t, b.GetDepth().Asks)

	_, found = b.FindOrder("a1")
	assert.False(t, found)
}

func TestCancelUnknownOrder(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	_, cancelled := b.Cancel(newOrder("ghost", "u1", Buy, 100, 1))
	assert.False(t, cancelled)
}

func TestOpenOrdersFiltersByUser(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	b.AddOrder(newOrder("b1", "alice", Buy, 99, 1))
	b.AddOrder(newOrder("a1", "alice", Sell, 101, 2))
	b.AddOrder(newOrder("a2", "bob", Sell, 102, 3))

	open := b.OpenOrders("alice")
	require.Len(t, open, 2)
	assert.Empty(t, b.OpenOrders("carol"))
}

func TestRestoreRepopulatesWithoutMatching(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	// A crossed pair: replaying through AddOrder would execute it.
	bid := newOrder("b1", "u1", Buy, 105, 5)
	ask := newOrder("a1", "u2", Sell, 100, 5)
	ask.Filled = 2

	b.RestoreOrder(bid)
	b.RestoreOrder(ask)

	assert.Equal(t, int64(0), b.LastTradeID)
	assert.Equal(t, 5.0, depthQty(b.GetDepth().Bids, 105))
	assert.Equal(t, 3.0, depthQty(b.GetDepth().Asks, 100))

	_, found := b.FindOrder("b1")
	assert.True(t, found)
	_, found = b.FindOrder("a1")
	assert.True(t, found)
}

func TestTradeIDsMonotonic(t *testing.T) {
	b := NewOrderBook("TATA", "INR")

	b.AddOrder(newOrder("a1", "u1", Sell, 100, 1))
	b.AddOrder(newOrder("a2", "u2", Sell, 100, 1))
	_, fills := b.AddOrder(newOrder("b1", "u3", Buy, 100, 2))

	require.Len(t, fills, 2)
	assert.Equal(t, int64(1), fills[0].TradeID)
	assert.Equal(t, int64(2), fills[1].TradeID)
	assert.Equal(t, int64(2), b.LastTradeID)
}
