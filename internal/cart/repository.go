package cart

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrLineNotFound = errors.New("line not found in cart")
)

type Repository interface {
	GetCart(ctx context.Context, ownerID string) (*domain.Cart, error)
	UpsertLine(ctx context.Context, ownerID string, line domain.CartLine) error
	RemoveLine(ctx context.Context, ownerID string, productID int64, variantID *string) error
	DeleteCart(ctx context.Context, ownerID string) error
}
