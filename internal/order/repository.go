package order

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	IllegalTransitionError = errors.New("illegal transition of order status")
)

// IntentCreator runs inside the pending-order transaction: if it fails the
// order row is rolled back, so no order exists without a processor intent and
// no intent without an order.
type IntentCreator func(ctx context.Context) (intentID, clientSecret string, err error)

type Repository interface {
	CreatePendingOrder(ctx context.Context, order domain.Order, accessToken string, createIntent IntentCreator) (domain.Order, error)
	// GetOrder returns the order and its stored access token (empty for
	// user-owned orders).
	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, string, error)
	MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus) error
}
