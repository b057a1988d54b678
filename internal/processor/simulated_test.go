package processor

import (
	"context"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedOutcome implements OutcomeProvider for testing
type scriptedOutcome struct {
	outcomes []ConfirmResult
	calls    int
}

func (s *scriptedOutcome) Outcome() (ConfirmStatus, string) {
	out := s.outcomes[s.calls]
	if s.calls < len(s.outcomes)-1 {
		s.calls++
	}
	return out.Status, out.Reason
}

func succeedAlways() *scriptedOutcome {
	return &scriptedOutcome{outcomes: []ConfirmResult{{Status: ConfirmStatusSucceeded}}}
}

func TestCalcOutcome(t *testing.T) {
	tests := []struct {
		name       string
		v          int
		wantStatus ConfirmStatus
		wantReason string
	}{
		{name: "success low", v: 0, wantStatus: ConfirmStatusSucceeded},
		{name: "success boundary", v: 94, wantStatus: ConfirmStatusSucceeded},
		{name: "generic failure", v: 95, wantStatus: ConfirmStatusFailed, wantReason: "Payment was not completed."},
		{name: "first decline reason", v: 96, wantStatus: ConfirmStatusFailed, wantReason: declineReasons[0]},
		{name: "last decline reason", v: 100, wantStatus: ConfirmStatusFailed, wantReason: declineReasons[4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, reason := calcOutcome(tt.v)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestSimulated_CheckCapability(t *testing.T) {
	sim := NewSimulated(succeedAlways())
	ctx := context.Background()

	tests := []struct {
		name   string
		amount domain.Money
		want   bool
	}{
		{name: "usd ok", amount: domain.MustMoney("45.99", "USD"), want: true},
		{name: "eur ok", amount: domain.MustMoney("10.00", "EUR"), want: true},
		{name: "unsupported currency", amount: domain.MustMoney("100.00", "JPY"), want: false},
		{name: "zero amount", amount: domain.MustMoney("0.00", "USD"), want: false},
		{name: "over limit", amount: domain.MustMoney("10000.01", "USD"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sim.CheckCapability(ctx, tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSimulated_ConfirmPayment(t *testing.T) {
	script := &scriptedOutcome{outcomes: []ConfirmResult{
		{Status: ConfirmStatusFailed, Reason: declineReasons[0]},
		{Status: ConfirmStatusSucceeded},
	}}
	sim := NewSimulated(script)
	ctx := context.Background()

	intent, err := sim.CreateIntent(ctx, IntentRequest{Amount: domain.MustMoney("45.99", "USD")})
	require.NoError(t, err)
	require.NotEmpty(t, intent.ClientSecret)

	// first attempt declines, intent stays confirmable
	res, err := sim.ConfirmPayment(ctx, ConfirmRequest{
		ClientSecret: intent.ClientSecret,
		Source:       PaymentMethodSource{Kind: SourceCard, CardToken: "tok_visa"},
	})
	require.NoError(t, err)
	assert.Equal(t, ConfirmStatusFailed, res.Status)
	assert.Equal(t, declineReasons[0], res.Reason)
	assert.Empty(t, res.TransactionID)

	// retry with the same client secret succeeds
	res, err = sim.ConfirmPayment(ctx, ConfirmRequest{
		ClientSecret: intent.ClientSecret,
		Source:       PaymentMethodSource{Kind: SourceCard, CardToken: "tok_visa"},
	})
	require.NoError(t, err)
	assert.Equal(t, ConfirmStatusSucceeded, res.Status)
	assert.NotEmpty(t, res.TransactionID)

	// confirming a succeeded intent returns the recorded result
	again, err := sim.ConfirmPayment(ctx, ConfirmRequest{ClientSecret: intent.ClientSecret})
	require.NoError(t, err)
	assert.Equal(t, res.TransactionID, again.TransactionID)
}

func TestSimulated_ConfirmPayment_UnknownSecret(t *testing.T) {
	sim := NewSimulated(succeedAlways())

	_, err := sim.ConfirmPayment(context.Background(), ConfirmRequest{ClientSecret: "nope"})

	assert.ErrorIs(t, err, ErrIntentNotFound)
}

func TestSimulated_CreateIntent_RejectsNonPositive(t *testing.T) {
	sim := NewSimulated(succeedAlways())

	_, err := sim.CreateIntent(context.Background(), IntentRequest{Amount: domain.MustMoney("0.00", "USD")})

	assert.Error(t, err)
}
