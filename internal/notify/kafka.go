package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier hands confirmations to the mail worker over a topic. The
// storefront only needs fire-and-forget semantics, so there is no retry here;
// the caller logs failures and moves on.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers ...string) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-confirmations",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: w}
}

func (n *KafkaNotifier) SendConfirmation(ctx context.Context, c Confirmation) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(c.OrderID.String()),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write confirmation message: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
