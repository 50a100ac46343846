package service

import (
	"sort"

	"github.com/piyushzingade/exchange/domain/ledger"
	"github.com/piyushzingade/exchange/domain/orderbook"
	"github.com/piyushzingade/exchange/snapshot"
)

// Capture copies the full engine state under the lock. The copy is
// cheap relative to matching, so inbound commands only pause for the
// duration of the walk, never for file I/O.
func (e *Engine) Capture() *snapshot.EngineSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	markets := make([]string, 0, len(e.books))
	for market := range e.books {
		markets = append(markets, market)
	}
	sort.Strings(markets)

	snap := &snapshot.EngineSnapshot{
		Orderbooks: make([]snapshot.BookState, 0, len(markets)),
	}
	for _, market := range markets {
		book := e.books[market]
		bids, asks := book.SnapshotOrders()
		snap.Orderbooks = append(snap.Orderbooks, snapshot.BookState{
			BaseAsset:    book.BaseAsset,
			QuoteAsset:   book.QuoteAsset,
			Bids:         bids,
			Asks:         asks,
			LastTradeID:  book.LastTradeID,
			CurrentPrice: book.CurrentPrice,
		})
	}

	balances := e.ledger.Snapshot()
	users := make([]string, 0, len(balances))
	for user := range balances {
		users = append(users, user)
	}
	sort.Strings(users)
	for _, user := range users {
		snap.Balances = append(snap.Balances, snapshot.BalanceEntry{
			UserID: user,
			Assets: balances[user],
		})
	}

	return snap
}

// Restore rebuilds books and balances from a snapshot. Restored orders
// are re-inserted directly: replaying them through the matching path
// would execute trades that already settled before the crash.
func (e *Engine) Restore(snap *snapshot.EngineSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.books = make(map[string]*orderbook.OrderBook, len(snap.Orderbooks))
	e.stats = make(map[string]*marketStats, len(snap.Orderbooks))

	for _, state := range snap.Orderbooks {
		quote := state.QuoteAsset
		if quote == "" {
			quote = e.currency
		}
		book := orderbook.NewOrderBook(state.BaseAsset, quote)
		book.LastTradeID = state.LastTradeID
		book.CurrentPrice = state.CurrentPrice

		for i := range state.Bids {
			o := state.Bids[i]
			book.RestoreOrder(&o)
		}
		for i := range state.Asks {
			o := state.Asks[i]
			book.RestoreOrder(&o)
		}

		e.books[book.Market()] = book
		e.stats[book.Market()] = &marketStats{LastPrice: state.CurrentPrice}
	}

	balances := make(map[string]map[string]ledger.Balance, len(snap.Balances))
	for _, entry := range snap.Balances {
		balances[entry.UserID] = entry.Assets
	}
	e.ledger.Restore(balances)
}
