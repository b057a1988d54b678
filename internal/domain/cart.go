package domain

import "time"

type Cart struct {
	OwnerID   string     `json:"owner_id"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartLine holds one product entry. Quantity is always >= 1: updates that would
// drop it to zero or below remove the line instead of storing it.
type CartLine struct {
	ProductID int64     `json:"product_id"`
	VariantID *string   `json:"variant_id,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice Money     `json:"unit_price"`
	AddedAt   time.Time `json:"added_at"`
}

func (l CartLine) Subtotal() Money {
	return l.UnitPrice.Mul(int64(l.Quantity))
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Subtotal sums unit_price x quantity over all lines. The zero Money value is
// returned for an empty cart.
func (c *Cart) Subtotal() (Money, error) {
	var total Money
	for i, line := range c.Lines {
		if i == 0 {
			total = line.Subtotal()
			continue
		}
		sum, err := total.Add(line.Subtotal())
		if err != nil {
			return Money{}, err
		}
		total = sum
	}
	return total, nil
}

// CartTotals is the checkout-facing price breakdown: subtotal plus a flat
// shipping fee.
type CartTotals struct {
	Subtotal Money `json:"subtotal"`
	Shipping Money `json:"shipping"`
	Total    Money `json:"total"`
}
