package order_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"migrations/01_orders.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

type orderRepositorySuite struct {
	suite.Suite

	repo order.Repository
	pool *pgxpool.Pool
}

// entry point to run the tests in the suite
func TestOrderRepositorySuite(t *testing.T) {
	suite.Run(t, new(orderRepositorySuite))
}

// before all tests in the suite
func (suite *orderRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	_, connStr, err := startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.NoError(err)

	suite.repo = order.NewPostgresRepository(suite.pool)
}

// after all tests in the suite
func (suite *orderRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func randomOrder() domain.Order {
	variant := "hardcover"
	return domain.Order{
		ID:     uuid.New(),
		Status: domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: 1, VariantID: &variant, Quantity: 2, UnitPrice: domain.MustMoney("20.00", "USD")},
		},
		Subtotal:    domain.MustMoney("40.00", "USD"),
		ShippingFee: domain.MustMoney("5.99", "USD"),
		Total:       domain.MustMoney("45.99", "USD"),
		ShippingAddress: domain.Address{
			FirstName: gofakeit.FirstName(), LastName: gofakeit.LastName(),
			Line1: gofakeit.Street(), City: gofakeit.City(),
			PostalCode: "62704", CountryCode: "US",
		},
		BillingAddress: domain.Address{
			FirstName: gofakeit.FirstName(), LastName: gofakeit.LastName(),
			Line1: gofakeit.Street(), City: gofakeit.City(),
			PostalCode: "62704", CountryCode: "US",
		},
		Customer: domain.Customer{Email: gofakeit.Email(), Name: gofakeit.Name()},
	}
}

func succeedingIntent(context.Context) (string, string, error) {
	return "pi_test", "pi_test_secret_abc", nil
}

func (suite *orderRepositorySuite) TestCreatePendingOrder_RoundTrip() {
	t := suite.T()
	ctx := t.Context()

	want := randomOrder()
	created, err := suite.repo.CreatePendingOrder(ctx, want, "token-abc", succeedingIntent)
	require.NoError(t, err)
	require.Equal(t, "pi_test", created.IntentID)

	got, token, err := suite.repo.GetOrder(ctx, want.ID)
	require.NoError(t, err)

	require.Equal(t, domain.OrderStatusPending, got.Status)
	require.Equal(t, "token-abc", token)
	require.Equal(t, want.Customer, got.Customer)
	require.Equal(t, want.ShippingAddress, got.ShippingAddress)
	require.Equal(t, want.BillingAddress, got.BillingAddress)
	require.Len(t, got.Items, 1)
	require.True(t, got.Total.Equal(want.Total), "total %s vs %s", got.Total, want.Total)
	require.Equal(t, "pi_test_secret_abc", got.ClientSecret)
}

func (suite *orderRepositorySuite) TestCreatePendingOrder_IntentFailureRollsBack() {
	t := suite.T()
	ctx := t.Context()

	want := randomOrder()
	_, err := suite.repo.CreatePendingOrder(ctx, want, "", func(context.Context) (string, string, error) {
		return "", "", fmt.Errorf("processor down")
	})
	require.Error(t, err)

	_, _, err = suite.repo.GetOrder(ctx, want.ID)
	require.ErrorIs(t, err, order.ErrOrderNotFound)
}

func (suite *orderRepositorySuite) TestMarkPaid() {
	t := suite.T()
	ctx := t.Context()

	want := randomOrder()
	_, err := suite.repo.CreatePendingOrder(ctx, want, "", succeedingIntent)
	require.NoError(t, err)

	require.NoError(t, suite.repo.MarkPaid(ctx, want.ID, "txn_42"))

	got, _, err := suite.repo.GetOrder(ctx, want.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPaid, got.Status)
	require.Equal(t, "txn_42", got.TransactionID)

	// a second MarkPaid finds no pending row
	require.ErrorIs(t, suite.repo.MarkPaid(ctx, want.ID, "txn_43"), order.IllegalTransitionError)
}

func (suite *orderRepositorySuite) TestUpdateStatus() {
	t := suite.T()
	ctx := t.Context()

	want := randomOrder()
	_, err := suite.repo.CreatePendingOrder(ctx, want, "", succeedingIntent)
	require.NoError(t, err)

	// pending cannot skip straight to shipped
	require.ErrorIs(t, suite.repo.UpdateStatus(ctx, want.ID, domain.OrderStatusShipped), order.IllegalTransitionError)

	require.NoError(t, suite.repo.MarkPaid(ctx, want.ID, "txn_1"))
	require.NoError(t, suite.repo.UpdateStatus(ctx, want.ID, domain.OrderStatusProcessing))
	require.NoError(t, suite.repo.UpdateStatus(ctx, want.ID, domain.OrderStatusShipped))
	require.NoError(t, suite.repo.UpdateStatus(ctx, want.ID, domain.OrderStatusDelivered))
}

func (suite *orderRepositorySuite) TestGetOrder_NotFound() {
	t := suite.T()

	_, _, err := suite.repo.GetOrder(t.Context(), uuid.New())

	require.ErrorIs(t, err, order.ErrOrderNotFound)
}
