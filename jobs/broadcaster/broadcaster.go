// Package broadcaster drains the persistence outbox into the trades
// topic. Delivery runs on its own clock: the engine keeps matching
// whether or not the broker is reachable, and undelivered entries stay
// durable in the outbox until acked.
package broadcaster

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"github.com/piyushzingade/exchange/infra/outbox"
)

const drainBatch = 256

type Broadcaster struct {
	outbox   *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      *logrus.Logger
}

func New(
	ob *outbox.Outbox,
	brokers []string,
	topic string,
	interval time.Duration,
	log *logrus.Logger,
) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		outbox:   ob,
		producer: producer,
		topic:    topic,
		interval: interval,
		log:      log,
	}, nil
}

// Run drains the outbox until the context ends.
func (b *Broadcaster) Run(ctx context.Context) {
	t := time.NewTicker(b.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			b.drain()
		}
	}
}

func (b *Broadcaster) drain() {
	entries, err := b.outbox.Pending(drainBatch)
	if err != nil {
		b.log.WithError(err).Warn("outbox scan failed")
		return
	}

	for _, entry := range entries {
		value, err := json.Marshal(entry.Payload)
		if err != nil {
			b.log.WithError(err).WithField("seq", entry.Seq).Warn("outbox entry not serializable")
			continue
		}

		_, _, err = b.producer.SendMessage(&sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(entry.Payload.Type),
			Value: sarama.ByteEncoder(value),
		})
		if err != nil {
			b.log.WithError(err).WithFields(logrus.Fields{
				"seq":     entry.Seq,
				"retries": entry.Retries,
			}).Warn("trade pipeline send failed")
			if err := b.outbox.MarkFailed(entry); err != nil {
				b.log.WithError(err).Warn("outbox mark failed errored")
			}
			continue
		}

		if err := b.outbox.MarkAcked(entry.Seq); err != nil {
			b.log.WithError(err).Warn("outbox ack failed")
		}
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
