package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"rifa-service/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// PublishSubmissionValidated streams the validated event to Kafka, keyed by
// submission ID.
func (p *Producer) PublishSubmissionValidated(ctx context.Context, event models.SubmissionValidatedEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx,
		kafka.Message{
			Topic: TopicSubmissionValidated,
			Key:   []byte(event.SubmissionID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
