package checkout

import (
	"context"
	"log"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
)

const notifyTimeout = 2 * time.Second

// finalize runs the post-payment side effects in order: record the payment on
// the order, empty the cart, persist the anonymous access grant, send the
// confirmation. The payment already happened; every step here logs its failure
// and keeps going rather than leave a paid customer staring at an error.
func (c *Coordinator) finalize(ctx context.Context, intent domain.PaymentIntent, transactionID string) Outcome {
	if err := c.orders.MarkPaid(ctx, intent.OrderID, transactionID); err != nil {
		log.Printf("mark order %v paid failed: %v", intent.OrderID, err)
	}

	currentCart, err := c.carts.Get(ctx, c.ownerID)
	if err != nil {
		log.Printf("load cart for confirmation failed: %v", err)
		currentCart = &domain.Cart{OwnerID: c.ownerID}
	}

	if err := c.carts.Clear(ctx, c.ownerID); err != nil {
		log.Printf("clear cart after payment failed: %v", err)
	}

	if intent.AccessToken != "" {
		if err := c.grants.Save(ctx, c.ownerID, intent.OrderID, intent.AccessToken); err != nil {
			log.Printf("save access grant for order %v failed: %v", intent.OrderID, err)
		}
	}

	c.sendConfirmation(intent, currentCart)

	return Outcome{
		Status:     StatusSucceeded,
		OrderID:    intent.OrderID,
		RedirectTo: "/orders/" + intent.OrderID.String(),
	}
}

func (c *Coordinator) sendConfirmation(intent domain.PaymentIntent, currentCart *domain.Cart) {
	totals, err := c.carts.TotalsFor(currentCart)
	if err != nil {
		log.Printf("compute confirmation totals failed: %v", err)
		return
	}

	items := make([]domain.OrderItem, 0, len(currentCart.Lines))
	for _, line := range currentCart.Lines {
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	c.mu.Lock()
	customer := c.customer
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	err = c.notifier.SendConfirmation(ctx, notify.Confirmation{
		OrderID:       intent.OrderID,
		CustomerEmail: customer.Email,
		CustomerName:  customer.Name,
		Items:         items,
		Subtotal:      totals.Subtotal,
		ShippingFee:   totals.Shipping,
		Total:         totals.Total,
	})
	if err != nil {
		log.Printf("send confirmation for order %v failed: %v", intent.OrderID, err)
	}
}
