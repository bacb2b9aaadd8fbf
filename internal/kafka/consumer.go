package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"culturaviva-api/internal/logger"
	"culturaviva-api/internal/models"
)

type Consumer struct {
	reader *kafka.Reader
	topic  string
	log    *logger.Logger
}

// NewConsumer creates a new Kafka consumer for the given topic and group
func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, topic: topic, log: log}
}

// Start consumes engagement events until the context is cancelled.
// Undecodable messages are skipped; handler errors are logged and the
// message is not retried, since counters tolerate an occasional miss
// better than a stuck partition.
func (c *Consumer) Start(ctx context.Context, handler func(models.EngagementEvent) error) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.log.Error("KAFKA", fmt.Sprintf("error reading message: %v", err))
			continue
		}

		var event models.EngagementEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.Error("KAFKA", fmt.Sprintf("failed to unmarshal message: %v", err))
			continue
		}

		if err := handler(event); err != nil {
			c.log.Error("KAFKA", fmt.Sprintf("failed to apply %s event: %v", event.Type, err))
			continue
		}
		c.log.LogKafka("CONSUME", c.topic, fmt.Sprintf("applied %s event", event.Type))
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
