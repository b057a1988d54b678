// Package grant keeps the pairing of order id to its anonymous access token,
// one entry per anonymous order. Deleting an entry after its first confirmed
// use is hygiene only; the order service stays the authority on access.
package grant

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrGrantNotFound = errors.New("access grant not found")

type Store interface {
	Save(ctx context.Context, ownerID string, orderID uuid.UUID, token string) error
	Get(ctx context.Context, ownerID string, orderID uuid.UUID) (string, error)
	Delete(ctx context.Context, ownerID string, orderID uuid.UUID) error
}
