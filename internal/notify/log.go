package notify

import (
	"context"
	"log"
)

// LogNotifier is the broker-less fallback for local runs and tests.
type LogNotifier struct{}

func (LogNotifier) SendConfirmation(_ context.Context, c Confirmation) error {
	log.Printf("order confirmation for order_id = %v to %v, total %v", c.OrderID, c.CustomerEmail, c.Total)
	return nil
}
