package processor

import (
	"context"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// Breaker decorates a Processor with a circuit breaker so a flapping
// processor degrades into fast retryable errors instead of piling up
// timeouts. Declined payments come back as results, not errors, so they never
// trip the breaker.
type Breaker struct {
	inner Processor
	cb    *gobreaker.CircuitBreaker[any]
}

func NewBreaker(inner Processor) *Breaker {
	settings := gobreaker.Settings{
		Name:        "payment-processor",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}

	return &Breaker{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (b *Breaker) CheckCapability(ctx context.Context, amount domain.Money) (bool, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.inner.CheckCapability(ctx, amount)
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

func (b *Breaker) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.inner.CreateIntent(ctx, req)
	})
	if err != nil {
		return Intent{}, err
	}
	return res.(Intent), nil
}

func (b *Breaker) ConfirmPayment(ctx context.Context, req ConfirmRequest) (ConfirmResult, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.inner.ConfirmPayment(ctx, req)
	})
	if err != nil {
		return ConfirmResult{}, err
	}
	return res.(ConfirmResult), nil
}
