package orderbook

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Kind selects what happens to the unmatched remainder of an order.
type Kind string

const (
	// KindLimit rests the remainder on the book (good till cancel).
	KindLimit Kind = "limit"
	// KindIOC discards the remainder after the matching pass.
	KindIOC Kind = "ioc"
)

// Order is a pure domain entity. Only the orderbook mutates Filled.
type Order struct {
	OrderID  string  `json:"orderId"`
	UserID   string  `json:"userId"`
	Side     Side    `json:"side"`
	Kind     Kind    `json:"kind,omitempty"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Filled   float64 `json:"filled"`
}

// Remaining is the quantity still open for matching.
func (o *Order) Remaining() float64 {
	return o.Quantity - o.Filled
}

// Fill is one execution against a resting order. The price is always
// the maker's price: the resting order sets the trade price, never the
// incoming one.
type Fill struct {
	Price        float64 `json:"price"`
	Quantity     float64 `json:"qty"`
	TradeID      int64   `json:"tradeId"`
	MakerOrderID string  `json:"makerOrderId"`
	MakerUserID  string  `json:"makerUserId"`
}
