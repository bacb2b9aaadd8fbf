package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"culturaviva-api/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

// PublishEngagement streams an engagement event (visit, save, comment,
// disable) to the engagement topic. Events for the same user land in the
// same partition.
func (p *Producer) PublishEngagement(ctx context.Context, event models.EngagementEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(event.UserID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
