package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piyushzingade/exchange/domain/ledger"
	"github.com/piyushzingade/exchange/domain/orderbook"
)

func sampleSnapshot() *EngineSnapshot {
	return &EngineSnapshot{
		Orderbooks: []BookState{
			{
				BaseAsset:  "TATA",
				QuoteAsset: "INR",
				Bids: []orderbook.Order{
					{OrderID: "b1", UserID: "alice", Side: orderbook.Buy, Price: 100, Quantity: 5, Filled: 3},
				},
				Asks: []orderbook.Order{
					{OrderID: "a1", UserID: "bob", Side: orderbook.Sell, Price: 105, Quantity: 2},
				},
				LastTradeID:  42,
				CurrentPrice: 100,
			},
		},
		Balances: []BalanceEntry{
			{UserID: "alice", Assets: map[string]ledger.Balance{
				"INR":  {Available: 500, Locked: 200},
				"TATA": {Available: 3},
			}},
		},
	}
}

func TestBalanceEntryTupleLayout(t *testing.T) {
	entry := BalanceEntry{
		UserID: "alice",
		Assets: map[string]ledger.Balance{"INR": {Available: 10, Locked: 5}},
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	// On disk the entry is a [userId, balances] pair.
	var tuple []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &tuple))
	require.Len(t, tuple, 2)

	var user string
	require.NoError(t, json.Unmarshal(tuple[0], &user))
	assert.Equal(t, "alice", user)

	var decoded BalanceEntry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, entry, decoded)
}

func TestBalanceEntryRejectsNonTuple(t *testing.T) {
	var entry BalanceEntry
	err := json.Unmarshal([]byte(`{"userId":"alice"}`), &entry)
	assert.Error(t, err)
}

func TestWriterLoaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	w := &Writer{Path: path}

	snap := sampleSnapshot()
	require.NoError(t, w.Write(snap))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, snap, loaded)
}

func TestWriterReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	w := &Writer{Path: path}

	require.NoError(t, w.Write(sampleSnapshot()))

	second := sampleSnapshot()
	second.Orderbooks[0].LastTradeID = 43
	require.NoError(t, w.Write(second))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(43), loaded.Orderbooks[0].LastTradeID)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLoadMissingFileStartsFresh(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
