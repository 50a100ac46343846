package service

import (
	"github.com/piyushzingade/exchange/api"
	"github.com/piyushzingade/exchange/domain/orderbook"
)

// emitTradeEvents publishes everything a completed matching pass owes
// the outside world: trade records and maker progress for persistence,
// trade prints and a ticker refresh for subscribers, plus one taker
// summary update.
//
// The maker is always the resting order, so a sell taker means the
// buyer made the market.
func (e *Engine) emitTradeEvents(
	book *orderbook.OrderBook,
	taker *orderbook.Order,
	executedQty float64,
	fills []orderbook.Fill,
) {
	market := book.Market()
	isBuyerMaker := taker.Side == orderbook.Sell
	ts := e.now().UnixMilli()
	stats := e.stats[market]

	for _, fill := range fills {
		stats.record(fill.Price, fill.Quantity)

		trade := api.TradeRecorded{
			ID:            fill.TradeID,
			Market:        market,
			Price:         fill.Price,
			Quantity:      fill.Quantity,
			QuoteQuantity: fill.Quantity * fill.Price,
			IsBuyerMaker:  isBuyerMaker,
			Timestamp:     ts,
		}
		e.emit.enqueue(func() error { return e.store.AppendTrade(trade) })

		print := api.TradePrinted{
			Market:    market,
			Price:     fill.Price,
			Quantity:  fill.Quantity,
			TradeID:   fill.TradeID,
			IsMaker:   isBuyerMaker,
			Timestamp: ts,
		}
		e.emit.enqueue(func() error { return e.pub.Publish(api.TradeStream(market), print) })

		makerUpdate := api.OrderUpdate{
			OrderID:     fill.MakerOrderID,
			ExecutedQty: fill.Quantity,
		}
		e.emit.enqueue(func() error { return e.store.AppendOrderUpdate(makerUpdate) })
	}

	takerUpdate := api.OrderUpdate{
		OrderID:     taker.OrderID,
		ExecutedQty: executedQty,
		Market:      market,
		Price:       taker.Price,
		Quantity:    taker.Quantity,
		Side:        taker.Side,
	}
	e.emit.enqueue(func() error { return e.store.AppendOrderUpdate(takerUpdate) })

	if len(fills) > 0 {
		ticker := stats.ticker(market)
		e.emit.enqueue(func() error { return e.pub.Publish(api.TickerStream(market), ticker) })
	}
}

// emitDepth publishes the aggregated book after any quantity moved
// between price levels. The depth copy is taken under the engine lock;
// delivery happens asynchronously.
func (e *Engine) emitDepth(book *orderbook.OrderBook) {
	market := book.Market()
	depth := book.GetDepth()

	changed := api.DepthChanged{
		Market: market,
		Bids:   depth.Bids,
		Asks:   depth.Asks,
	}
	e.emit.enqueue(func() error { return e.pub.Publish(api.DepthStream(market), changed) })
}
