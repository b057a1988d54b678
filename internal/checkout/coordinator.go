package checkout

import (
	"context"
	"log"
	"sync"

	"github.com/fjod/go_storefront/internal/address"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/grant"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/fjod/go_storefront/internal/processor"
	"github.com/google/uuid"
)

// OrderAuthority is the backend side of checkout: it owns order rows and
// their processor intents.
type OrderAuthority interface {
	CreateIntent(ctx context.Context, p order.IntentParams) (domain.PaymentIntent, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, transactionID string) error
}

// AccountCreator turns a guest into an account holder before intent creation.
// Failure is never fatal for the purchase.
type AccountCreator interface {
	CreateAccount(ctx context.Context, customer domain.Customer) (userID string, err error)
}

// Request is the transient checkout aggregate: contact info plus addresses
// for one attempt. It lives only for the attempt itself.
type Request struct {
	Customer        domain.Customer
	ShippingAddress domain.Address
	BillingAddress  domain.Address
	SameAsShipping  bool
	UserID          *string
	CreateAccount   bool
}

// Outcome is the single result type both confirmation paths resolve to.
// RedirectTo is the storefront confirmation page for the order, not the
// API resource path; clients fetch order data via GET /api/v1/orders/{id}.
type Outcome struct {
	Status     Status
	Reason     string
	OrderID    uuid.UUID
	RedirectTo string
}

type CardDetails struct {
	Token string
}

// Coordinator drives one owner's checkout attempt through
// idle -> intent_requested -> intent_ready -> confirming -> succeeded|failed.
// A failed attempt returns to idle with its intent retained, so the same
// client secret can be re-confirmed; succeeded is terminal.
type Coordinator struct {
	ownerID  string
	carts    *cart.Service
	orders   OrderAuthority
	proc     processor.Processor
	grants   grant.Store
	notifier notify.Notifier
	accounts AccountCreator // optional

	watchOnce sync.Once // cart change subscription, at most one per coordinator

	mu       sync.Mutex
	status   Status
	intent   domain.PaymentIntent
	customer domain.Customer
	userID   *string
	express  *processor.PaymentRequest // mounted wallet handle, nil when none
}

func NewCoordinator(
	ownerID string,
	carts *cart.Service,
	orders OrderAuthority,
	proc processor.Processor,
	grants grant.Store,
	notifier notify.Notifier,
	accounts AccountCreator,
) *Coordinator {
	return &Coordinator{
		ownerID:  ownerID,
		carts:    carts,
		orders:   orders,
		proc:     proc,
		grants:   grants,
		notifier: notifier,
		accounts: accounts,
		status:   StatusIdle,
	}
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Intent returns the attempt's payment intent, zero-valued before
// RequestIntent succeeds.
func (c *Coordinator) Intent() domain.PaymentIntent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intent
}

// RequestIntent validates both addresses as the submission gate and then asks
// the order authority for a pending order plus processor intent. It may be
// called once per attempt; a failure before any intent exists resets to idle,
// so retrying is safe.
func (c *Coordinator) RequestIntent(ctx context.Context, req Request) (domain.PaymentIntent, error) {
	billing := req.BillingAddress
	if req.SameAsShipping {
		billing = req.ShippingAddress
	}

	// Validation errors are recovered locally and never reach the network.
	shippingRes := address.Validate(req.ShippingAddress, req.ShippingAddress.CountryCode)
	billingRes := address.Validate(billing, billing.CountryCode)
	if !shippingRes.Valid() || !billingRes.Valid() {
		return domain.PaymentIntent{}, &ValidationError{Shipping: shippingRes, Billing: billingRes}
	}

	if err := c.begin(StatusIntentRequested); err != nil {
		return domain.PaymentIntent{}, err
	}

	userID := req.UserID
	if req.CreateAccount && userID == nil && c.accounts != nil {
		created, err := c.accounts.CreateAccount(ctx, req.Customer)
		if err != nil {
			// best effort: the purchase continues as an anonymous one
			log.Printf("account creation failed, continuing anonymously: %v", err)
		} else {
			userID = &created
		}
	}

	currentCart, err := c.carts.Get(ctx, c.ownerID)
	if err != nil {
		c.setStatus(StatusIdle)
		return domain.PaymentIntent{}, err
	}

	intent, err := c.orders.CreateIntent(ctx, order.IntentParams{
		Lines:           currentCart.Lines,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		Customer:        req.Customer,
		UserID:          userID,
	})
	if err != nil {
		// nothing was created server-side, retry is safe
		c.setStatus(StatusIdle)
		return domain.PaymentIntent{}, err
	}

	c.mu.Lock()
	c.status = StatusIntentReady
	c.intent = intent
	c.customer = req.Customer
	c.userID = userID
	c.mu.Unlock()

	return intent, nil
}

// ConfirmManual drives the processor with the manually entered card element.
func (c *Coordinator) ConfirmManual(ctx context.Context, card CardDetails) (Outcome, error) {
	source := processor.PaymentMethodSource{
		Kind:      processor.SourceCard,
		CardToken: card.Token,
	}
	return c.confirm(ctx, source, true)
}

// confirm is the single sink both payment method producers feed into.
func (c *Coordinator) confirm(ctx context.Context, source processor.PaymentMethodSource, handleActions bool) (Outcome, error) {
	c.mu.Lock()
	if c.status == StatusSucceeded {
		c.mu.Unlock()
		return Outcome{}, ErrAttemptFinished
	}
	if c.intent.ClientSecret == "" {
		c.mu.Unlock()
		return Outcome{}, ErrNoIntent
	}
	if !c.status.CanTransitionTo(StatusConfirming) {
		c.mu.Unlock()
		return Outcome{}, ErrAttemptInFlight
	}
	c.status = StatusConfirming
	intent := c.intent
	c.mu.Unlock()

	result, err := c.proc.ConfirmPayment(ctx, processor.ConfirmRequest{
		ClientSecret:  intent.ClientSecret,
		Source:        source,
		HandleActions: handleActions,
	})
	if err != nil {
		// transport-level failure: the intent is intact, retry is safe
		c.setStatus(StatusIdle)
		return Outcome{}, err
	}

	if result.Status != processor.ConfirmStatusSucceeded {
		// declined: cart and form state untouched, same intent retryable
		c.setStatus(StatusFailed)
		c.setStatus(StatusIdle)
		return Outcome{
			Status:  StatusFailed,
			Reason:  result.Reason,
			OrderID: intent.OrderID,
		}, nil
	}

	outcome := c.finalize(ctx, intent, result.TransactionID)
	c.mu.Lock()
	c.status = StatusSucceeded
	c.express = nil // the attempt is done, stop tracking the wallet handle
	c.mu.Unlock()
	return outcome, nil
}

// begin moves idle (or a failed-and-reset attempt) into intent_requested.
func (c *Coordinator) begin(next Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusSucceeded {
		return ErrAttemptFinished
	}
	if !c.status.CanTransitionTo(next) {
		return ErrAttemptInFlight
	}
	c.status = next
	return nil
}

func (c *Coordinator) setStatus(next Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = next
}
