// Package kafka adapts the broadcast collaborator to a Kafka topic.
// Streams become message keys, so consumers see each market feed in
// order while the writer stays fully asynchronous.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string, log *logrus.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			Async:        true,
			BatchTimeout: 10 * time.Millisecond,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					log.WithError(err).Warn("broadcast delivery failed")
				}
			},
		},
	}
}

// Publish marshals the event and hands it to the async writer. The
// matching path never waits on broker round trips.
func (p *Producer) Publish(stream string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(stream),
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
