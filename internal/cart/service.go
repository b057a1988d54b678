package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Service is the single owner of cart state. It is an explicit, injectable
// instance: whoever needs the cart gets this service handed to them, and only
// the checkout finalizer or direct user edits ever mutate it.
type Service struct {
	repo        Repository
	cache       Cache
	shippingFee domain.Money
	sfg         singleflight.Group // Prevents cache stampede

	mu        sync.Mutex
	listeners []func(ownerID string)
}

func NewService(repo Repository, cache Cache, shippingFee domain.Money) *Service {
	return &Service{
		repo:        repo,
		cache:       cache,
		shippingFee: shippingFee,
	}
}

func (s *Service) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(ownerID, func() (interface{}, error) {

		cached, err := s.cache.Get(ctx, ownerID)
		if err == nil {
			return cached, nil // cart is in cache
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		stored, errGet := s.repo.GetCart(ctx, ownerID)
		if errors.Is(errGet, ErrCartNotFound) { // no cart yet, return empty cart
			return &domain.Cart{
				OwnerID:   ownerID,
				Lines:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			if errSet := s.cache.Set(context.Background(), ownerID, stored); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return stored, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *Service) AddLine(ctx context.Context, ownerID string, line domain.CartLine) error {
	if line.Quantity < 1 {
		return ErrInvalidQuantity
	}

	if err := s.repo.UpsertLine(ctx, ownerID, line); err != nil {
		log.Printf("repo upsert line error: %v", err)
		return err
	}

	s.invalidateCache(ownerID)
	s.notifyChange(ownerID)
	return nil
}

// UpdateQuantity sets a new quantity for an existing line. A quantity of zero
// or below removes the line instead: lines with quantity <= 0 are never stored.
func (s *Service) UpdateQuantity(ctx context.Context, ownerID string, productID int64, variantID *string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveLine(ctx, ownerID, productID, variantID)
	}

	cart, err := s.repo.GetCart(ctx, ownerID)
	if err != nil {
		return err
	}

	for _, line := range cart.Lines {
		if sameLine(line, productID, variantID) {
			line.Quantity = quantity
			if errUpsert := s.repo.UpsertLine(ctx, ownerID, line); errUpsert != nil {
				log.Printf("repo update quantity error: %v", errUpsert)
				return errUpsert
			}
			s.invalidateCache(ownerID)
			s.notifyChange(ownerID)
			return nil
		}
	}

	return ErrLineNotFound
}

func (s *Service) RemoveLine(ctx context.Context, ownerID string, productID int64, variantID *string) error {
	if err := s.repo.RemoveLine(ctx, ownerID, productID, variantID); err != nil {
		log.Printf("repo remove line error: %v", err)
		return err
	}

	s.invalidateCache(ownerID)
	s.notifyChange(ownerID)
	return nil
}

func (s *Service) Clear(ctx context.Context, ownerID string) error {
	err := s.repo.DeleteCart(ctx, ownerID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", err)
		return err
	}

	s.invalidateCache(ownerID)
	s.notifyChange(ownerID)
	return nil
}

// Totals computes subtotal plus the flat shipping fee, exact to the cent.
// An empty cart totals to the bare shipping fee in the fee's currency.
func (s *Service) Totals(ctx context.Context, ownerID string) (domain.CartTotals, error) {
	cart, err := s.Get(ctx, ownerID)
	if err != nil {
		return domain.CartTotals{}, err
	}
	return s.TotalsFor(cart)
}

func (s *Service) TotalsFor(cart *domain.Cart) (domain.CartTotals, error) {
	subtotal, err := cart.Subtotal()
	if err != nil {
		return domain.CartTotals{}, fmt.Errorf("cart subtotal: %w", err)
	}
	if cart.IsEmpty() {
		subtotal = domain.Money{Amount: decimal.Zero, Currency: s.shippingFee.Currency}
	}

	total, err := subtotal.Add(s.shippingFee)
	if err != nil {
		return domain.CartTotals{}, fmt.Errorf("add shipping fee: %w", err)
	}

	return domain.CartTotals{
		Subtotal: subtotal,
		Shipping: s.shippingFee,
		Total:    total,
	}, nil
}

func (s *Service) ShippingFee() domain.Money {
	return s.shippingFee
}

// OnChange registers a callback invoked after every successful cart mutation
// with the owner id of the changed cart. Callbacks run synchronously on the
// mutating goroutine and must not call back into the service's write methods.
func (s *Service) OnChange(fn func(ownerID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) notifyChange(ownerID string) {
	s.mu.Lock()
	fns := make([]func(string), len(s.listeners))
	copy(fns, s.listeners)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ownerID)
	}
}

func (s *Service) invalidateCache(ownerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, ownerID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
