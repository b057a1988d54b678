// Package notify delivers order confirmation messages. Delivery is best
// effort by contract: a failed send is logged by the caller and never rolls
// back or blocks a finished purchase.
package notify

import (
	"context"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
)

type Confirmation struct {
	OrderID       uuid.UUID          `json:"order_id"`
	CustomerEmail string             `json:"customer_email"`
	CustomerName  string             `json:"customer_name"`
	Items         []domain.OrderItem `json:"items"`
	Subtotal      domain.Money       `json:"subtotal"`
	ShippingFee   domain.Money       `json:"shipping_fee"`
	Total         domain.Money       `json:"total"`
}

type Notifier interface {
	SendConfirmation(ctx context.Context, c Confirmation) error
}
