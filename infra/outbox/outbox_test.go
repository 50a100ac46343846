package outbox

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piyushzingade/exchange/api"
)

func openTestOutbox(t *testing.T) *Outbox {
	t.Helper()
	ob, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ob.Close() })
	return ob
}

func TestAppendAndDrainOrder(t *testing.T) {
	ob := openTestOutbox(t)

	require.NoError(t, ob.AppendTrade(api.TradeRecorded{ID: 1, Market: "TATA_INR", Price: 100, Quantity: 2}))
	require.NoError(t, ob.AppendOrderUpdate(api.OrderUpdate{OrderID: "o1", ExecutedQty: 2}))

	entries, err := ob.Pending(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Sequence order, typed envelopes.
	assert.Less(t, entries[0].Seq, entries[1].Seq)
	assert.Equal(t, api.TypeTradeAdded, entries[0].Payload.Type)
	assert.Equal(t, api.TypeOrderUpdate, entries[1].Payload.Type)

	var trade api.TradeRecorded
	require.NoError(t, json.Unmarshal(entries[0].Payload.Data, &trade))
	assert.Equal(t, int64(1), trade.ID)
	assert.Equal(t, "TATA_INR", trade.Market)
}

func TestPendingRespectsLimit(t *testing.T) {
	ob := openTestOutbox(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, ob.AppendTrade(api.TradeRecorded{ID: int64(i)}))
	}

	entries, err := ob.Pending(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestMarkAckedRemovesEntry(t *testing.T) {
	ob := openTestOutbox(t)

	require.NoError(t, ob.AppendTrade(api.TradeRecorded{ID: 7}))
	entries, err := ob.Pending(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, ob.MarkAcked(entries[0].Seq))

	entries, err = ob.Pending(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMarkFailedKeepsEntryForRetry(t *testing.T) {
	ob := openTestOutbox(t)

	require.NoError(t, ob.AppendTrade(api.TradeRecorded{ID: 8}))
	entries, err := ob.Pending(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, ob.MarkFailed(entries[0]))

	entries, err = ob.Pending(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StateFailed, entries[0].State)
	assert.Equal(t, uint32(1), entries[0].Retries)
}

func TestSequenceSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	ob, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, ob.AppendTrade(api.TradeRecorded{ID: 1}))
	require.NoError(t, ob.AppendTrade(api.TradeRecorded{ID: 2}))
	require.NoError(t, ob.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.AppendTrade(api.TradeRecorded{ID: 3}))

	entries, err := reopened.Pending(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// New entries keep sequencing after the recovered counter.
	assert.Equal(t, entries[1].Seq+1, entries[2].Seq)
}
