package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/piyushzingade/exchange/domain/ledger"
	"github.com/piyushzingade/exchange/domain/orderbook"
)

// EngineSnapshot is the full persisted state: every market's book plus
// the balance map. It is a recovery aid, not an authoritative store.
type EngineSnapshot struct {
	Orderbooks []BookState    `json:"orderbooks"`
	Balances   []BalanceEntry `json:"balances"`
}

// BookState is one market's resting orders and counters.
type BookState struct {
	BaseAsset    string            `json:"baseAsset"`
	QuoteAsset   string            `json:"quoteAsset"`
	Bids         []orderbook.Order `json:"bids"`
	Asks         []orderbook.Order `json:"asks"`
	LastTradeID  int64             `json:"lastTradeId"`
	CurrentPrice float64           `json:"currentPrice"`
}

// BalanceEntry serializes as a [userId, balances] tuple to keep the
// on-disk layout stable.
type BalanceEntry struct {
	UserID string
	Assets map[string]ledger.Balance
}

func (e BalanceEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.UserID, e.Assets})
}

func (e *BalanceEntry) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("balance entry is not a tuple: %w", err)
	}
	if err := json.Unmarshal(tuple[0], &e.UserID); err != nil {
		return fmt.Errorf("balance entry user id: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &e.Assets); err != nil {
		return fmt.Errorf("balance entry assets: %w", err)
	}
	return nil
}
