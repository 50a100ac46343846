package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/piyushzingade/exchange/api"
	"github.com/piyushzingade/exchange/domain/ledger"
	"github.com/piyushzingade/exchange/domain/orderbook"
)

var (
	ErrMarketNotFound = errors.New("market not found")
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidOrder   = errors.New("invalid order")
)

// TradeStore is the persistence collaborator: it receives trade
// records and order progress for durable history.
type TradeStore interface {
	AppendTrade(api.TradeRecorded) error
	AppendOrderUpdate(api.OrderUpdate) error
}

// Publisher is the broadcast collaborator fanning events out to
// subscribers, keyed by stream name.
type Publisher interface {
	Publish(stream string, payload any) error
}

// Engine owns every market's orderbook and the shared ledger.
//
// All mutation is serialized behind one mutex: matching never observes
// a partially applied command, and the ledger needs no locking of its
// own. Queries take the same mutex briefly to copy state out.
type Engine struct {
	mu       sync.Mutex
	books    map[string]*orderbook.OrderBook
	ledger   *ledger.Ledger
	stats    map[string]*marketStats
	currency string

	store TradeStore
	pub   Publisher
	emit  *emitter
	log   *logrus.Logger

	newOrderID func() string
	now        func() time.Time
}

// New wires an engine with its collaborators. currency is the quote
// asset shared by every market on this engine.
func New(currency string, store TradeStore, pub Publisher, log *logrus.Logger) *Engine {
	return &Engine{
		books:      make(map[string]*orderbook.OrderBook),
		ledger:     ledger.New(),
		stats:      make(map[string]*marketStats),
		currency:   currency,
		store:      store,
		pub:        pub,
		emit:       newEmitter(1024, log),
		log:        log,
		newOrderID: uuid.NewString,
		now:        time.Now,
	}
}

// AddMarket registers a book for baseAsset quoted in the engine
// currency. Adding an existing market is a no-op.
func (e *Engine) AddMarket(baseAsset string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	book := orderbook.NewOrderBook(baseAsset, e.currency)
	if _, ok := e.books[book.Market()]; ok {
		return
	}
	e.books[book.Market()] = book
	e.stats[book.Market()] = &marketStats{}
}

// Close drains and stops outbound event delivery.
func (e *Engine) Close() {
	e.emit.Close()
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// PlaceOrder reserves funds, runs the matching pass, settles every
// fill, and emits the resulting events.
//
// Business-rule failures (unknown market, insufficient funds) reject
// the order before it touches the book: no partial lock, no partial
// order construction.
func (e *Engine) PlaceOrder(
	market string,
	price, quantity float64,
	side orderbook.Side,
	kind orderbook.Kind,
	userID string,
) (api.OrderPlaced, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	book, ok := e.books[market]
	if !ok {
		return api.OrderPlaced{}, fmt.Errorf("place order: %w", ErrMarketNotFound)
	}
	if price <= 0 || quantity <= 0 {
		return api.OrderPlaced{}, fmt.Errorf("place order: %w", ErrInvalidOrder)
	}
	if kind == "" {
		kind = orderbook.KindLimit
	}

	// Pre-trade reservation: buys lock quote, sells lock base.
	if side == orderbook.Buy {
		if err := e.ledger.Lock(userID, book.QuoteAsset, price*quantity); err != nil {
			return api.OrderPlaced{}, fmt.Errorf("place order: %w", err)
		}
	} else {
		if err := e.ledger.Lock(userID, book.BaseAsset, quantity); err != nil {
			return api.OrderPlaced{}, fmt.Errorf("place order: %w", err)
		}
	}

	order := &orderbook.Order{
		OrderID:  e.newOrderID(),
		UserID:   userID,
		Side:     side,
		Kind:     kind,
		Price:    price,
		Quantity: quantity,
	}

	executedQty, fills := book.AddOrder(order)
	e.settleFills(book, order, fills)

	// An IOC remainder never rests, so its reservation goes back.
	if kind == orderbook.KindIOC && order.Remaining() > 0 {
		if side == orderbook.Buy {
			e.ledger.Unlock(userID, book.QuoteAsset, order.Remaining()*price)
		} else {
			e.ledger.Unlock(userID, book.BaseAsset, order.Remaining())
		}
	}

	e.emitTradeEvents(book, order, executedQty, fills)
	rested := order.Remaining() > 0 && kind != orderbook.KindIOC
	if executedQty > 0 || rested {
		e.emitDepth(book)
	}

	return api.OrderPlaced{
		OrderID:     order.OrderID,
		ExecutedQty: executedQty,
		Fills:       fills,
	}, nil
}

// CancelOrder removes a resting order and releases exactly the still-
// reserved remainder.
func (e *Engine) CancelOrder(orderID, market string) (api.OrderCancelled, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	book, ok := e.books[market]
	if !ok {
		return api.OrderCancelled{}, fmt.Errorf("cancel order: %w", ErrMarketNotFound)
	}

	order, ok := book.FindOrder(orderID)
	if !ok {
		return api.OrderCancelled{}, fmt.Errorf("cancel order %s: %w", orderID, ErrOrderNotFound)
	}

	remaining := order.Remaining()
	if order.Side == orderbook.Buy {
		e.ledger.Unlock(order.UserID, book.QuoteAsset, remaining*order.Price)
	} else {
		e.ledger.Unlock(order.UserID, book.BaseAsset, remaining)
	}

	if _, cancelled := book.Cancel(order); cancelled {
		e.emitDepth(book)
	}

	return api.OrderCancelled{OrderID: orderID}, nil
}

// OnRamp credits external funds in the engine currency. Amount
// validation happens upstream.
func (e *Engine) OnRamp(userID string, amount float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ledger.Credit(userID, e.currency, amount)
}

// Credit seeds an arbitrary asset balance, used for demo setup and
// base-asset deposits.
func (e *Engine) Credit(userID, asset string, amount float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ledger.Credit(userID, asset, amount)
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// OpenOrders lists the user's resting orders. Unknown markets degrade
// to an empty list to keep the read path resilient.
func (e *Engine) OpenOrders(userID, market string) []orderbook.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	book, ok := e.books[market]
	if !ok {
		return nil
	}

	open := book.OpenOrders(userID)
	out := make([]orderbook.Order, 0, len(open))
	for _, o := range open {
		out = append(out, *o)
	}
	return out
}

// GetDepth returns the aggregated book; unknown markets yield empty
// depth rather than an error.
func (e *Engine) GetDepth(market string) orderbook.Depth {
	e.mu.Lock()
	defer e.mu.Unlock()

	book, ok := e.books[market]
	if !ok {
		return orderbook.Depth{}
	}
	return book.GetDepth()
}

// Balance reports one user position, for the onramp/balance surface.
func (e *Engine) Balance(userID, asset string) ledger.Balance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Get(userID, asset)
}

//
// ──────────────────────────────────────────────────────────
// Settlement
// ──────────────────────────────────────────────────────────
//

// settleFills moves funds for each fill. Transfers are zero-sum across
// the two parties in both assets; any clamp inside the ledger means a
// settlement defect and is logged loudly.
func (e *Engine) settleFills(book *orderbook.OrderBook, taker *orderbook.Order, fills []orderbook.Fill) {
	base, quote := book.BaseAsset, book.QuoteAsset

	for _, fill := range fills {
		value := fill.Quantity * fill.Price

		if taker.Side == orderbook.Buy {
			// The reservation was taken at the taker's limit price;
			// fills at a better price refund the difference.
			reserved := fill.Quantity * taker.Price
			e.adjust(taker.UserID, quote, reserved-value, -reserved)
			e.adjust(taker.UserID, base, fill.Quantity, 0)

			e.adjust(fill.MakerUserID, base, 0, -fill.Quantity)
			e.adjust(fill.MakerUserID, quote, value, 0)
		} else {
			e.adjust(taker.UserID, quote, value, 0)
			e.adjust(taker.UserID, base, 0, -fill.Quantity)

			e.adjust(fill.MakerUserID, base, fill.Quantity, 0)
			e.adjust(fill.MakerUserID, quote, 0, -value)
		}
	}
}

func (e *Engine) adjust(userID, asset string, availableDelta, lockedDelta float64) {
	if e.ledger.Adjust(userID, asset, availableDelta, lockedDelta) {
		e.log.WithFields(logrus.Fields{
			"userId":         userID,
			"asset":          asset,
			"availableDelta": availableDelta,
			"lockedDelta":    lockedDelta,
		}).Warn("balance clamp triggered, settlement deltas are inconsistent")
	}
}
