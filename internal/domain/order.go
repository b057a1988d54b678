package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusFailed     OrderStatus = "FAILED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusFailed
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

type OrderItem struct {
	ProductID int64   `json:"product_id"`
	VariantID *string `json:"variant_id,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice Money   `json:"unit_price"`
}

// Order is the durable backend entity created atomically with its processor
// payment intent. UserID is nil for anonymous purchases, which are reachable
// only through the (order id, access token) pair.
type Order struct {
	ID              uuid.UUID   `json:"id"`
	UserID          *string     `json:"user_id,omitempty"`
	Status          OrderStatus `json:"status"`
	Items           []OrderItem `json:"items"`
	Subtotal        Money       `json:"subtotal"`
	ShippingFee     Money       `json:"shipping_fee"`
	Total           Money       `json:"total"`
	ShippingAddress Address     `json:"shipping_address"`
	BillingAddress  Address     `json:"billing_address"`
	Customer        Customer    `json:"customer"`
	IntentID        string      `json:"-"`
	ClientSecret    string      `json:"-"`
	TransactionID   string      `json:"transaction_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// PaymentIntent is what the checkout flow gets back from intent creation. The
// access token is a bearer credential for anonymous order lookup; it is empty
// for signed-in customers.
type PaymentIntent struct {
	ClientSecret string    `json:"client_secret"`
	OrderID      uuid.UUID `json:"order_id"`
	AccessToken  string    `json:"access_token,omitempty"`
}
