package processor

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
)

var (
	// ErrChannelUnavailable means the capability check said no: the express
	// channel must not render and no handle is built.
	ErrChannelUnavailable   = errors.New("express payment channel unavailable")
	ErrNoShippingHandler    = errors.New("no shipping change handler attached")
	ErrAlreadyAuthorized    = errors.New("payment request already authorized")
	ErrShippingNotRequested = errors.New("payment request does not collect shipping")
)

type PayerInfo struct {
	Name  string
	Email string
	Phone string
}

type ShippingOption struct {
	ID     string
	Label  string
	Amount domain.Money
}

// ShippingUpdate is the structured reply to a payer shipping-address change.
// The wallet sheet blocks until it arrives, so the exchange is a synchronous
// request/reply pair, never fire-and-forget.
type ShippingUpdate struct {
	Total   domain.Money
	Options []ShippingOption
}

type ShippingChangeHandler func(addr domain.Address) (ShippingUpdate, error)

type MethodSelectedHandler func(ev *MethodSelectedEvent)

type PaymentRequestOptions struct {
	Total             domain.Money
	RequestPayerName  bool
	RequestPayerEmail bool
	RequestPayerPhone bool
	RequestShipping   bool
}

// PaymentRequest is the live, amount-bound express channel handle. It exists
// only after a positive capability check.
type PaymentRequest struct {
	mu               sync.Mutex
	total            domain.Money
	opts             PaymentRequestOptions
	onShippingChange ShippingChangeHandler
	onMethodSelected MethodSelectedHandler
	authorized       bool
}

// NewPaymentRequest runs the capability check first and refuses to build a
// half-initialized handle when the channel is unavailable.
func NewPaymentRequest(ctx context.Context, p Processor, opts PaymentRequestOptions) (*PaymentRequest, error) {
	available, err := p.CheckCapability(ctx, opts.Total)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrChannelUnavailable
	}

	return &PaymentRequest{total: opts.Total, opts: opts}, nil
}

func (pr *PaymentRequest) Total() domain.Money {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.total
}

// UpdateAmount recomputes the displayed total, called whenever the cart total
// changes while the sheet is mounted.
func (pr *PaymentRequest) UpdateAmount(total domain.Money) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.total = total
}

func (pr *PaymentRequest) OnShippingChange(h ShippingChangeHandler) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.onShippingChange = h
}

func (pr *PaymentRequest) OnMethodSelected(h MethodSelectedHandler) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.onMethodSelected = h
}

// SelectShippingAddress is the wallet-side entry point for a payer changing or
// confirming their shipping address. Only handles built with RequestShipping
// accept it. The consumer's handler runs inline; an unhandled change is
// answered with an error so the sheet is never left hanging.
func (pr *PaymentRequest) SelectShippingAddress(addr domain.Address) (ShippingUpdate, error) {
	pr.mu.Lock()
	collectShipping := pr.opts.RequestShipping
	handler := pr.onShippingChange
	pr.mu.Unlock()

	if !collectShipping {
		return ShippingUpdate{}, ErrShippingNotRequested
	}
	if handler == nil {
		return ShippingUpdate{}, ErrNoShippingHandler
	}

	update, err := handler(addr)
	if err != nil {
		return ShippingUpdate{}, err
	}

	pr.mu.Lock()
	pr.total = update.Total
	pr.mu.Unlock()

	return update, nil
}

// AuthorizePayment is the wallet-side entry point for the payer authorizing
// payment. It fires the single terminal method-selected event and returns it
// so the sheet can watch for Complete.
func (pr *PaymentRequest) AuthorizePayment(methodID string, payer PayerInfo, shipping domain.Address) (*MethodSelectedEvent, error) {
	pr.mu.Lock()
	if pr.authorized {
		pr.mu.Unlock()
		return nil, ErrAlreadyAuthorized
	}
	pr.authorized = true
	handler := pr.onMethodSelected
	pr.mu.Unlock()

	ev := &MethodSelectedEvent{
		MethodID:        methodID,
		Payer:           payer,
		ShippingAddress: shipping,
	}

	if handler != nil {
		handler(ev)
	}

	return ev, nil
}

// MethodSelectedEvent carries the wallet-selected payment method and payer
// data. The consumer must call Complete exactly once so the native sheet
// dismisses with the right animation; the first call wins.
type MethodSelectedEvent struct {
	MethodID        string
	Payer           PayerInfo
	ShippingAddress domain.Address

	mu        sync.Mutex
	completed bool
	success   bool
}

func (e *MethodSelectedEvent) Complete(success bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.completed {
		return
	}
	e.completed = true
	e.success = success
}

// Completion reports whether Complete was called and with what status.
func (e *MethodSelectedEvent) Completion() (completed, success bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completed, e.success
}
