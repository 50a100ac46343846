package api

import "github.com/piyushzingade/exchange/domain/orderbook"

// Persistence pipeline message tags (db_processor topic).
const (
	TypeTradeAdded  = "TRADE_ADDED"
	TypeOrderUpdate = "ORDER_UPDATE"
)

// TradeRecorded goes to the durable trade history store.
type TradeRecorded struct {
	ID            int64   `json:"id"`
	Market        string  `json:"market"`
	Price         float64 `json:"price"`
	Quantity      float64 `json:"quantity"`
	QuoteQuantity float64 `json:"quoteQuantity"`
	IsBuyerMaker  bool    `json:"isBuyerMaker"`
	Timestamp     int64   `json:"timestamp"`
}

// OrderUpdate reports executed quantity progress on one order. Maker
// updates carry just the fill delta; the taker update summarizes the
// whole placement.
type OrderUpdate struct {
	OrderID     string         `json:"orderId"`
	ExecutedQty float64        `json:"executedQty"`
	Market      string         `json:"market,omitempty"`
	Price       float64        `json:"price,omitempty"`
	Quantity    float64        `json:"quantity,omitempty"`
	Side        orderbook.Side `json:"side,omitempty"`
}

// DepthChanged fans out the new aggregated book after any quantity
// moved between price levels.
type DepthChanged struct {
	Market string                 `json:"market"`
	Bids   []orderbook.PriceLevel `json:"bids"`
	Asks   []orderbook.PriceLevel `json:"asks"`
}

// TradePrinted fans out one execution to subscribers.
type TradePrinted struct {
	Market    string  `json:"market"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	TradeID   int64   `json:"tradeId"`
	IsMaker   bool    `json:"isMaker"`
	Timestamp int64   `json:"timestamp"`
}

// TickerUpdated fans out rolling market statistics after a fill batch.
type TickerUpdated struct {
	Market      string  `json:"market"`
	LastPrice   float64 `json:"lastPrice"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Volume      float64 `json:"volume"`
	QuoteVolume float64 `json:"quoteVolume"`
	OpenPrice   float64 `json:"openPrice"`
}

// Stream names for the broadcast collaborator, one per market feed.

func DepthStream(market string) string  { return "depth@" + market }
func TradeStream(market string) string  { return "trade@" + market }
func TickerStream(market string) string { return "ticker@" + market }
