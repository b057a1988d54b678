package checkout

import (
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/address"
)

var (
	// ErrAttemptInFlight enforces the single-attempt-at-a-time invariant: a
	// second pay click while a confirmation is running is rejected, not queued.
	ErrAttemptInFlight = errors.New("a payment attempt is already in flight")
	ErrNoIntent        = errors.New("no payment intent requested yet")
	ErrAttemptFinished = errors.New("checkout attempt already succeeded")
	// ErrExpressShippingIncomplete fails an express event before any network
	// call when the wallet-supplied address misses required fields.
	ErrExpressShippingIncomplete = errors.New("express shipping address is missing required fields")
)

// ValidationError blocks intent creation locally; it never reaches the
// network.
type ValidationError struct {
	Shipping address.Result
	Billing  address.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("address validation failed: %d shipping error(s), %d billing error(s)",
		len(e.Shipping.Errors), len(e.Billing.Errors))
}
