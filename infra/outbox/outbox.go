// Package outbox is a durable staging area between the engine and the
// persistence pipeline. Trade records and order updates land here
// synchronously-from-the-emitter's-view and are drained to the trades
// topic by the broadcaster job; an unavailable broker therefore never
// reaches back into the matching path.
package outbox

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"github.com/piyushzingade/exchange/api"
)

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Record --------------------

// Entry is one pending persistence message.
type Entry struct {
	Seq     uint64
	State   State
	Retries uint32
	Payload api.Envelope
}

// value encoding: [state:1][retries:4][json payload]
func encodeValue(state State, retries uint32, payload []byte) []byte {
	buf := make([]byte, 5+len(payload))
	buf[0] = byte(state)
	binary.BigEndian.PutUint32(buf[1:5], retries)
	copy(buf[5:], payload)
	return buf
}

func decodeValue(b []byte) (State, uint32, []byte, error) {
	if len(b) < 5 {
		return 0, 0, nil, errors.New("outbox value too short")
	}
	return State(b[0]), binary.BigEndian.Uint32(b[1:5]), b[5:], nil
}

func keyFor(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// -------------------- Outbox --------------------

type Outbox struct {
	db   *pebble.DB
	next atomic.Uint64
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // we WANT durability
	})
	if err != nil {
		return nil, err
	}

	o := &Outbox{db: db}
	if err := o.recoverSeq(); err != nil {
		db.Close()
		return nil, err
	}
	return o, nil
}

// recoverSeq resumes the sequence counter after the highest stored key.
func (o *Outbox) recoverSeq() error {
	it, err := o.db.NewIter(nil)
	if err != nil {
		return err
	}
	defer it.Close()

	if it.Last() && len(it.Key()) == 8 {
		o.next.Store(binary.BigEndian.Uint64(it.Key()))
	}
	return nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// -------------------- Append (engine side) --------------------

// AppendTrade stages a trade record for the persistence pipeline.
func (o *Outbox) AppendTrade(trade api.TradeRecorded) error {
	return o.append(api.TypeTradeAdded, trade)
}

// AppendOrderUpdate stages an order progress update.
func (o *Outbox) AppendOrderUpdate(update api.OrderUpdate) error {
	return o.append(api.TypeOrderUpdate, update)
}

func (o *Outbox) append(msgType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	envelope, err := json.Marshal(api.Envelope{Type: msgType, Data: data})
	if err != nil {
		return err
	}

	seq := o.next.Add(1)
	return o.db.Set(keyFor(seq), encodeValue(StateNew, 0, envelope), pebble.Sync)
}

// -------------------- Drain (broadcaster side) --------------------

// Pending returns up to limit undelivered entries in sequence order.
func (o *Outbox) Pending(limit int) ([]Entry, error) {
	it, err := o.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []Entry
	for it.First(); it.Valid() && len(out) < limit; it.Next() {
		state, retries, payload, err := decodeValue(it.Value())
		if err != nil {
			return nil, err
		}
		if state == StateSent {
			continue
		}

		var env api.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, err
		}
		out = append(out, Entry{
			Seq:     binary.BigEndian.Uint64(it.Key()),
			State:   state,
			Retries: retries,
			Payload: env,
		})
	}
	return out, it.Error()
}

// MarkAcked removes a delivered entry.
func (o *Outbox) MarkAcked(seq uint64) error {
	return o.db.Delete(keyFor(seq), pebble.Sync)
}

// MarkFailed records a delivery failure for later retry.
func (o *Outbox) MarkFailed(entry Entry) error {
	envelope, err := json.Marshal(entry.Payload)
	if err != nil {
		return err
	}
	value := encodeValue(StateFailed, entry.Retries+1, envelope)
	return o.db.Set(keyFor(entry.Seq), value, pebble.Sync)
}
