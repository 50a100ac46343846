// Package redisserver feeds the engine from a Redis command queue and
// publishes per-client responses, mirroring how the upstream API layer
// talks to the engine. One consumer goroutine pops commands, so every
// mutation arrives at the engine already serialized.
package redisserver

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/piyushzingade/exchange/api"
	"github.com/piyushzingade/exchange/service"
)

type Server struct {
	client *redis.Client
	engine *service.Engine
	queue  string
	log    *logrus.Logger
}

func New(client *redis.Client, engine *service.Engine, queue string, log *logrus.Logger) *Server {
	return &Server{
		client: client,
		engine: engine,
		queue:  queue,
		log:    log,
	}
}

// inbound is the queue framing: which client to answer, and what they
// asked for.
type inbound struct {
	ClientID string          `json:"clientId"`
	Message  json.RawMessage `json:"message"`
}

// Run consumes commands until the context ends.
func (s *Server) Run(ctx context.Context) error {
	for {
		res, err := s.client.BLPop(ctx, time.Second, s.queue).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.WithError(err).Warn("command queue pop failed")
			continue
		}
		// BLPop returns [queue, payload].
		s.handle(ctx, []byte(res[1]))
	}
}

func (s *Server) handle(ctx context.Context, raw []byte) {
	var in inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		s.log.WithError(err).Warn("malformed command framing")
		return
	}

	cmd, err := api.DecodeCommand(in.Message)
	if err != nil {
		s.log.WithError(err).Warn("rejected command")
		s.respond(ctx, in.ClientID, rejection(""))
		return
	}

	switch cmd := cmd.(type) {
	case api.PlaceOrder:
		placed, err := s.engine.PlaceOrder(cmd.Market, cmd.Price, cmd.Quantity, cmd.Side, cmd.Kind, cmd.UserID)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"market": cmd.Market,
				"userId": cmd.UserID,
			}).Info("order rejected")
			s.respond(ctx, in.ClientID, rejection(""))
			return
		}
		s.respond(ctx, in.ClientID, api.Response{Type: api.TypeOrderPlaced, Payload: placed})

	case api.CancelOrder:
		cancelled, err := s.engine.CancelOrder(cmd.OrderID, cmd.Market)
		if err != nil {
			s.log.WithError(err).WithField("orderId", cmd.OrderID).Info("cancel rejected")
			s.respond(ctx, in.ClientID, rejection(cmd.OrderID))
			return
		}
		s.respond(ctx, in.ClientID, api.Response{Type: api.TypeOrderCancelled, Payload: cancelled})

	case api.GetOpenOrders:
		orders := s.engine.OpenOrders(cmd.UserID, cmd.Market)
		s.respond(ctx, in.ClientID, api.Response{Type: api.TypeOpenOrders, Payload: orders})

	case api.GetDepth:
		depth := s.engine.GetDepth(cmd.Market)
		s.respond(ctx, in.ClientID, api.Response{Type: api.TypeDepth, Payload: depth})

	case api.OnRamp:
		s.engine.OnRamp(cmd.UserID, cmd.Amount)
	}
}

// rejection is the negative result for a failed place or cancel: zero
// executed quantity, nothing partially constructed.
func rejection(orderID string) api.Response {
	return api.Response{
		Type:    api.TypeOrderCancelled,
		Payload: api.OrderCancelled{OrderID: orderID},
	}
}

func (s *Server) respond(ctx context.Context, clientID string, resp api.Response) {
	if clientID == "" {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.WithError(err).Warn("response not serializable")
		return
	}
	if err := s.client.Publish(ctx, clientID, data).Err(); err != nil {
		s.log.WithError(err).Warn("response publish failed")
	}
}
