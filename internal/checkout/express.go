package checkout

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/fjod/go_storefront/internal/processor"
)

// AttachExpressChannel builds the express wallet handle for the current cart
// total and wires its callbacks to this coordinator. It returns
// processor.ErrChannelUnavailable when the capability check says no; the
// caller then simply does not offer the channel.
func (c *Coordinator) AttachExpressChannel(ctx context.Context) (*processor.PaymentRequest, error) {
	totals, err := c.carts.Totals(ctx, c.ownerID)
	if err != nil {
		return nil, err
	}

	pr, err := processor.NewPaymentRequest(ctx, c.proc, processor.PaymentRequestOptions{
		Total:             totals.Total,
		RequestPayerName:  true,
		RequestPayerEmail: true,
		RequestPayerPhone: true,
		RequestShipping:   true,
	})
	if err != nil {
		return nil, err
	}

	pr.OnShippingChange(func(addr domain.Address) (processor.ShippingUpdate, error) {
		t, errTotals := c.carts.Totals(context.Background(), c.ownerID)
		if errTotals != nil {
			return processor.ShippingUpdate{}, errTotals
		}
		return processor.ShippingUpdate{
			Total: t.Total,
			Options: []processor.ShippingOption{
				{ID: "flat", Label: "Flat rate shipping", Amount: c.carts.ShippingFee()},
			},
		}, nil
	})

	pr.OnMethodSelected(func(ev *processor.MethodSelectedEvent) {
		if _, errSel := c.HandleExpressSelection(context.Background(), ev); errSel != nil {
			log.Printf("express selection for owner %s failed: %v", c.ownerID, errSel)
		}
	})

	c.mu.Lock()
	c.express = pr
	c.mu.Unlock()

	// The handle's displayed total must follow the cart: re-push it on every
	// mutation of this owner's cart for as long as a handle is mounted.
	c.watchOnce.Do(func() {
		c.carts.OnChange(func(ownerID string) {
			if ownerID == c.ownerID {
				c.refreshExpressTotal()
			}
		})
	})

	return pr, nil
}

func (c *Coordinator) refreshExpressTotal() {
	c.mu.Lock()
	pr := c.express
	c.mu.Unlock()
	if pr == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	totals, err := c.carts.Totals(ctx, c.ownerID)
	if err != nil {
		log.Printf("express total refresh for owner %s failed: %v", c.ownerID, err)
		return
	}
	pr.UpdateAmount(totals.Total)
}

// HandleExpressSelection runs the full express path for one wallet
// authorization: gate on the wallet-supplied shipping address, request a fresh
// intent from the payer data, confirm without client-side action handling, and
// complete the event so the native sheet dismisses. An address missing street
// line, city or postal code fails the event before anything touches the
// processor.
func (c *Coordinator) HandleExpressSelection(ctx context.Context, ev *processor.MethodSelectedEvent) (Outcome, error) {
	if ev.ShippingAddress.Line1 == "" || ev.ShippingAddress.City == "" || ev.ShippingAddress.PostalCode == "" {
		ev.Complete(false)
		return Outcome{}, ErrExpressShippingIncomplete
	}

	customer := domain.Customer{
		Name:  ev.Payer.Name,
		Email: ev.Payer.Email,
		Phone: ev.Payer.Phone,
	}
	shipping := ev.ShippingAddress
	shipping.FirstName, shipping.LastName = splitName(ev.Payer.Name)

	// An express authorization always supersedes whatever manual intent was
	// ready: the wallet amount and payer data define the order now.
	if _, err := c.requestExpressIntent(ctx, customer, shipping); err != nil {
		ev.Complete(false)
		return Outcome{}, err
	}

	source := processor.PaymentMethodSource{
		Kind:           processor.SourceWallet,
		WalletMethodID: ev.MethodID,
	}
	// The wallet already authenticated the payer, skip client-side actions.
	outcome, err := c.confirm(ctx, source, false)
	if err != nil {
		ev.Complete(false)
		return Outcome{}, err
	}

	ev.Complete(outcome.Status == StatusSucceeded)
	return outcome, nil
}

// requestExpressIntent creates a fresh pending order and intent from wallet
// payer data. Unlike the manual form gate, the only address requirements here
// are the fields the sheet guarantees; the wallet is trusted for the rest.
func (c *Coordinator) requestExpressIntent(ctx context.Context, customer domain.Customer, shipping domain.Address) (domain.PaymentIntent, error) {
	if err := c.begin(StatusIntentRequested); err != nil {
		return domain.PaymentIntent{}, err
	}

	currentCart, err := c.carts.Get(ctx, c.ownerID)
	if err != nil {
		c.setStatus(StatusIdle)
		return domain.PaymentIntent{}, err
	}

	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()

	intent, err := c.orders.CreateIntent(ctx, order.IntentParams{
		Lines:           currentCart.Lines,
		ShippingAddress: shipping,
		BillingAddress:  shipping,
		Customer:        customer,
		UserID:          userID,
	})
	if err != nil {
		c.setStatus(StatusIdle)
		return domain.PaymentIntent{}, err
	}

	c.mu.Lock()
	c.status = StatusIntentReady
	c.intent = intent
	c.customer = customer
	c.mu.Unlock()

	return intent, nil
}

func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	idx := strings.LastIndex(full, " ")
	if idx < 0 {
		return full, ""
	}
	return full[:idx], full[idx+1:]
}
