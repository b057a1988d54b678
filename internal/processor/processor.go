// Package processor wraps the third-party payment processor: capability
// checks, intent creation, payment confirmation and the express wallet
// payment-request handle.
package processor

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
)

var ErrIntentNotFound = errors.New("payment intent not found")

type ConfirmStatus string

const (
	ConfirmStatusSucceeded ConfirmStatus = "SUCCEEDED"
	ConfirmStatusFailed    ConfirmStatus = "FAILED"
)

type SourceKind string

const (
	SourceCard   SourceKind = "CARD"
	SourceWallet SourceKind = "WALLET"
)

// PaymentMethodSource is the tagged variant both checkout entry paths converge
// on: a tokenized card element from the manual form, or the method the express
// wallet selected.
type PaymentMethodSource struct {
	Kind           SourceKind
	CardToken      string
	WalletMethodID string
}

type IntentRequest struct {
	Amount        domain.Money
	Description   string
	CustomerEmail string
}

// Intent is the processor-side record authorizing a specific amount,
// referenced by its client secret.
type Intent struct {
	ID           string
	ClientSecret string
}

type ConfirmRequest struct {
	ClientSecret string
	Source       PaymentMethodSource
	// HandleActions false skips client-side redirect/3-DS handling; the
	// express wallet has already authenticated the payer.
	HandleActions bool
}

type ConfirmResult struct {
	Status        ConfirmStatus
	TransactionID string
	Reason        string
}

type Processor interface {
	// CheckCapability is the pre-flight query: can this amount/currency be
	// charged through the express channel on this device.
	CheckCapability(ctx context.Context, amount domain.Money) (bool, error)
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
	ConfirmPayment(ctx context.Context, req ConfirmRequest) (ConfirmResult, error)
}
