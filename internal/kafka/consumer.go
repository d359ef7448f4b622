package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"rifa-service/internal/logger"
	"rifa-service/internal/models"
)

type Consumer struct {
	reader *kafka.Reader
	logger *logger.Logger
}

// NewConsumer creates a Kafka consumer for the validated-submission topic.
func NewConsumer(brokers []string, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    TopicSubmissionValidated,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: log}
}

// Start consumes validated-submission events until ctx is cancelled. Handler
// errors are logged and the loop moves on; redelivery semantics stay with the
// consumer group.
func (c *Consumer) Start(ctx context.Context, handler func(ctx context.Context, event models.SubmissionValidatedEvent) error) {
	c.logger.LogKafka("CONSUME", TopicSubmissionValidated, "consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("KAFKA", fmt.Sprintf("error reading message: %v", err))
			continue
		}

		var event models.SubmissionValidatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Warn("KAFKA", fmt.Sprintf("failed to unmarshal message: %v", err))
			continue
		}

		c.logger.LogKafka("RECEIVED", TopicSubmissionValidated, event.SubmissionID)
		if err := handler(ctx, event); err != nil {
			c.logger.Error("KAFKA", fmt.Sprintf("handler failed for submission %s: %v", event.SubmissionID, err))
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
