package processor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// OutcomeProvider decides how a confirmation attempt ends. Production wiring
// uses RandomOutcome; tests plug in scripted providers.
type OutcomeProvider interface {
	Outcome() (ConfirmStatus, string)
}

type RandomOutcome struct{}

func (RandomOutcome) Outcome() (ConfirmStatus, string) {
	randomInt := mrand.Intn(101) // 101 because Intn is exclusive of the upper bound
	return calcOutcome(randomInt)
}

var declineReasons = [...]string{
	"Your card was declined.",
	"Your card has insufficient funds.",
	"Your card has expired.",
	"Your card's security code is incorrect.",
	"An error occurred while processing your card.",
}

func calcOutcome(randomInt int) (ConfirmStatus, string) {
	if randomInt < 95 {
		return ConfirmStatusSucceeded, ""
	}
	reason := randomInt - 95
	if reason == 0 || reason > len(declineReasons) {
		return ConfirmStatusFailed, "Payment was not completed."
	}
	return ConfirmStatusFailed, declineReasons[reason-1]
}

type simIntent struct {
	intent Intent
	amount domain.Money
	result *ConfirmResult
}

// Simulated stands in for the processor SDK. Intents live in memory; a failed
// intent can be re-confirmed with the same client secret, a succeeded one
// returns its recorded result.
type Simulated struct {
	mu        sync.Mutex
	outcomes  OutcomeProvider
	intents   map[string]*simIntent // keyed by client secret
	supported map[string]bool
	maxAmount decimal.Decimal
}

func NewSimulated(outcomes OutcomeProvider) *Simulated {
	return &Simulated{
		outcomes: outcomes,
		intents:  map[string]*simIntent{},
		supported: map[string]bool{
			"USD": true,
			"EUR": true,
			"GBP": true,
		},
		maxAmount: decimal.NewFromInt(10_000),
	}
}

func (s *Simulated) CheckCapability(_ context.Context, amount domain.Money) (bool, error) {
	if !s.supported[amount.Currency.String()] {
		return false, nil
	}
	if !amount.Amount.IsPositive() || amount.Amount.GreaterThan(s.maxAmount) {
		return false, nil
	}
	return true, nil
}

func (s *Simulated) CreateIntent(_ context.Context, req IntentRequest) (Intent, error) {
	if !req.Amount.Amount.IsPositive() {
		return Intent{}, fmt.Errorf("intent amount must be positive, got %s", req.Amount)
	}

	id := "pi_" + randomToken(12)
	intent := Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + randomToken(16),
	}

	s.mu.Lock()
	s.intents[intent.ClientSecret] = &simIntent{intent: intent, amount: req.Amount}
	s.mu.Unlock()

	return intent, nil
}

func (s *Simulated) ConfirmPayment(_ context.Context, req ConfirmRequest) (ConfirmResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.intents[req.ClientSecret]
	if !ok {
		return ConfirmResult{}, ErrIntentNotFound
	}

	if stored.result != nil && stored.result.Status == ConfirmStatusSucceeded {
		return *stored.result, nil
	}

	status, reason := s.outcomes.Outcome()
	result := ConfirmResult{Status: status, Reason: reason}
	if status == ConfirmStatusSucceeded {
		result.TransactionID = "txn_" + randomToken(12)
	}
	stored.result = &result

	return result, nil
}

func randomToken(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}
