package order

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/processor"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart    = errors.New("cart is empty, nothing to checkout")
	ErrAccessDenied = errors.New("not authorized to view this order")
)

// Service is the order authority: it owns pending-order + intent creation,
// payment recording and order access decisions.
type Service struct {
	repo        Repository
	proc        processor.Processor
	shippingFee domain.Money
}

func NewService(repo Repository, proc processor.Processor, shippingFee domain.Money) *Service {
	return &Service{
		repo:        repo,
		proc:        proc,
		shippingFee: shippingFee,
	}
}

type IntentParams struct {
	Lines           []domain.CartLine
	ShippingAddress domain.Address
	BillingAddress  domain.Address
	Customer        domain.Customer
	UserID          *string
}

// CreateIntent atomically creates one pending order and one matching processor
// intent. Anonymous purchases additionally get an opaque bearer token that is
// the sole proof of ownership for that order.
func (s *Service) CreateIntent(ctx context.Context, p IntentParams) (domain.PaymentIntent, error) {
	if len(p.Lines) == 0 {
		return domain.PaymentIntent{}, ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(p.Lines))
	subtotal := domain.Money{Amount: decimal.Zero, Currency: s.shippingFee.Currency}
	for _, line := range p.Lines {
		if line.Quantity < 1 {
			return domain.PaymentIntent{}, fmt.Errorf("line for product %d has quantity %d", line.ProductID, line.Quantity)
		}
		sum, err := subtotal.Add(line.Subtotal())
		if err != nil {
			return domain.PaymentIntent{}, fmt.Errorf("sum cart lines: %w", err)
		}
		subtotal = sum
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	total, err := subtotal.Add(s.shippingFee)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("add shipping fee: %w", err)
	}

	pending := domain.Order{
		ID:              uuid.New(),
		UserID:          p.UserID,
		Status:          domain.OrderStatusPending,
		Items:           items,
		Subtotal:        subtotal,
		ShippingFee:     s.shippingFee,
		Total:           total,
		ShippingAddress: p.ShippingAddress,
		BillingAddress:  p.BillingAddress,
		Customer:        p.Customer,
	}

	accessToken := ""
	if p.UserID == nil {
		accessToken = generateAccessToken()
	}

	created, err := s.repo.CreatePendingOrder(ctx, pending, accessToken, func(ctx context.Context) (string, string, error) {
		intent, errIntent := s.proc.CreateIntent(ctx, processor.IntentRequest{
			Amount:        total,
			Description:   fmt.Sprintf("order %s", pending.ID),
			CustomerEmail: p.Customer.Email,
		})
		if errIntent != nil {
			return "", "", errIntent
		}
		return intent.ID, intent.ClientSecret, nil
	})
	if err != nil {
		return domain.PaymentIntent{}, err
	}

	return domain.PaymentIntent{
		ClientSecret: created.ClientSecret,
		OrderID:      created.ID,
		AccessToken:  accessToken,
	}, nil
}

// MarkPaid records the processor transaction and moves the order from pending
// to paid.
func (s *Service) MarkPaid(ctx context.Context, orderID uuid.UUID, transactionID string) error {
	return s.repo.MarkPaid(ctx, orderID, transactionID)
}

// VerifyAccess authorizes a read of one order. A valid bearer token for an
// anonymous order passes, and so does the authenticated owner; every other
// combination gets ErrAccessDenied with no order data attached. A missing
// order is reported the same way, so callers cannot probe for order ids.
func (s *Service) VerifyAccess(ctx context.Context, orderID uuid.UUID, token string, userID *string) (domain.Order, error) {
	order, storedToken, err := s.repo.GetOrder(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return domain.Order{}, ErrAccessDenied
	}
	if err != nil {
		return domain.Order{}, err
	}

	if order.UserID != nil {
		if userID != nil && *userID == *order.UserID {
			return order, nil
		}
		return domain.Order{}, ErrAccessDenied
	}

	if token != "" && storedToken != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(storedToken)) == 1 {
		return order, nil
	}

	return domain.Order{}, ErrAccessDenied
}

func generateAccessToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
