package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) CreatePendingOrder(ctx context.Context, order domain.Order, accessToken string, createIntent IntentCreator) (_ domain.Order, txErr error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("marshal order items: %w", err)
	}
	shippingJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return domain.Order{}, fmt.Errorf("marshal shipping address: %w", err)
	}
	billingJSON, err := json.Marshal(order.BillingAddress)
	if err != nil {
		return domain.Order{}, fmt.Errorf("marshal billing address: %w", err)
	}

	order.Status = domain.OrderStatusPending

	query := `INSERT INTO orders
	          (id, user_id, status, items, subtotal, shipping_fee, total, currency,
	           shipping_address, billing_address,
	           customer_email, customer_name, customer_phone, access_token,
	           created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())`

	_, err = tx.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.Status.String(),
		itemsJSON,
		order.Subtotal.Amount,
		order.ShippingFee.Amount,
		order.Total.Amount,
		order.Total.Currency.String(),
		shippingJSON,
		billingJSON,
		order.Customer.Email,
		order.Customer.Name,
		order.Customer.Phone,
		accessToken,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	// Processor intent creation happens inside the transaction window so a
	// processor failure leaves no order row behind.
	intentID, clientSecret, err := createIntent(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create processor intent: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders SET intent_id = $2, client_secret = $3, updated_at = NOW() WHERE id = $1`,
		order.ID, intentID, clientSecret)
	if err != nil {
		return domain.Order{}, fmt.Errorf("attach intent to order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("commit tx: %w", err)
	}

	order.IntentID = intentID
	order.ClientSecret = clientSecret
	return order, nil
}

func (r *postgresRepository) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, string, error) {
	query := `SELECT id, user_id, status, items, subtotal, shipping_fee, total, currency,
	                 shipping_address, billing_address,
	                 customer_email, customer_name, customer_phone,
	                 intent_id, client_secret, transaction_id, access_token,
	                 created_at, updated_at
	          FROM orders WHERE id = $1`

	var (
		order        domain.Order
		status       string
		itemsJSON    []byte
		shippingJSON []byte
		billingJSON  []byte
		subtotal     decimal.Decimal
		shippingFee  decimal.Decimal
		total        decimal.Decimal
		currencyCode string
		accessToken  string
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&status,
		&itemsJSON,
		&subtotal,
		&shippingFee,
		&total,
		&currencyCode,
		&shippingJSON,
		&billingJSON,
		&order.Customer.Email,
		&order.Customer.Name,
		&order.Customer.Phone,
		&order.IntentID,
		&order.ClientSecret,
		&order.TransactionID,
		&accessToken,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, "", ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, "", fmt.Errorf("query order by id: %w", err)
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Order{}, "", fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	order.Status = domain.OrderStatus(status)
	order.Subtotal = domain.Money{Amount: subtotal, Currency: parsedCurrency}
	order.ShippingFee = domain.Money{Amount: shippingFee, Currency: parsedCurrency}
	order.Total = domain.Money{Amount: total, Currency: parsedCurrency}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return domain.Order{}, "", fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(shippingJSON, &order.ShippingAddress); err != nil {
		return domain.Order{}, "", fmt.Errorf("unmarshal shipping address: %w", err)
	}
	if err := json.Unmarshal(billingJSON, &order.BillingAddress); err != nil {
		return domain.Order{}, "", fmt.Errorf("unmarshal billing address: %w", err)
	}

	return order, accessToken, nil
}

func (r *postgresRepository) MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, transaction_id = $3, updated_at = NOW()
		 WHERE id = $1 AND status = $4`,
		id, domain.OrderStatusPaid.String(), transactionID, domain.OrderStatusPending.String())
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, _, errGet := r.GetOrder(ctx, id); errGet != nil {
			return errGet
		}
		return IllegalTransitionError
	}
	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus) error {
	current, _, err := r.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(next) {
		return IllegalTransitionError
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, next.String(), current.Status.String())
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return IllegalTransitionError
	}
	return nil
}
