package api

import (
	"encoding/json"
	"fmt"

	"github.com/piyushzingade/exchange/domain/orderbook"
)

// Inbound command type tags.
const (
	TypeCreateOrder   = "CREATE_ORDER"
	TypeCancelOrder   = "CANCEL_ORDER"
	TypeGetOpenOrders = "GET_OPEN_ORDERS"
	TypeGetDepth      = "GET_DEPTH"
	TypeOnRamp        = "ON_RAMP"
)

// Command is the closed set of inbound messages. The only
// implementations live in this package.
type Command interface {
	isCommand()
}

type PlaceOrder struct {
	Market   string         `json:"market"`
	Price    float64        `json:"price"`
	Quantity float64        `json:"quantity"`
	Side     orderbook.Side `json:"side"`
	Kind     orderbook.Kind `json:"kind,omitempty"`
	UserID   string         `json:"userId"`
}

type CancelOrder struct {
	OrderID string `json:"orderId"`
	Market  string `json:"market"`
}

type GetOpenOrders struct {
	UserID string `json:"userId"`
	Market string `json:"market"`
}

type GetDepth struct {
	Market string `json:"market"`
}

type OnRamp struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
}

func (PlaceOrder) isCommand()    {}
func (CancelOrder) isCommand()   {}
func (GetOpenOrders) isCommand() {}
func (GetDepth) isCommand()      {}
func (OnRamp) isCommand()        {}

// Envelope is the wire framing for a command.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// DecodeCommand parses an envelope into its concrete variant. An
// unknown type tag is a decode error, not a silent default.
func DecodeCommand(raw []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode command envelope: %w", err)
	}

	switch env.Type {
	case TypeCreateOrder:
		var cmd PlaceOrder
		if err := json.Unmarshal(env.Data, &cmd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return cmd, nil
	case TypeCancelOrder:
		var cmd CancelOrder
		if err := json.Unmarshal(env.Data, &cmd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return cmd, nil
	case TypeGetOpenOrders:
		var cmd GetOpenOrders
		if err := json.Unmarshal(env.Data, &cmd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return cmd, nil
	case TypeGetDepth:
		var cmd GetDepth
		if err := json.Unmarshal(env.Data, &cmd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return cmd, nil
	case TypeOnRamp:
		var cmd OnRamp
		if err := json.Unmarshal(env.Data, &cmd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return cmd, nil
	default:
		return nil, fmt.Errorf("unknown command type %q", env.Type)
	}
}

// Response type tags.
const (
	TypeOrderPlaced    = "ORDER_PLACED"
	TypeOrderCancelled = "ORDER_CANCELLED"
	TypeOpenOrders     = "OPEN_ORDERS"
	TypeDepth          = "DEPTH"
)

// Response is what the engine sends back per command.
type Response struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// OrderPlaced acknowledges an accepted order.
type OrderPlaced struct {
	OrderID     string           `json:"orderId"`
	ExecutedQty float64          `json:"executedQty"`
	Fills       []orderbook.Fill `json:"fills"`
}

// OrderCancelled acknowledges a cancel. It doubles as the rejection
// payload for a failed place: zero executed, empty order id.
type OrderCancelled struct {
	OrderID      string  `json:"orderId"`
	ExecutedQty  float64 `json:"executedQty"`
	RemainingQty float64 `json:"remainingQty"`
}
