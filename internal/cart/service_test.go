package cart

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository implements Repository for testing
type memoryRepository struct {
	carts map[string]*domain.Cart
	err   error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{carts: map[string]*domain.Cart{}}
}

func (m *memoryRepository) GetCart(_ context.Context, ownerID string) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[ownerID]
	if !ok {
		return nil, ErrCartNotFound
	}
	cp := *cart
	cp.Lines = append([]domain.CartLine(nil), cart.Lines...)
	return &cp, nil
}

func (m *memoryRepository) UpsertLine(_ context.Context, ownerID string, line domain.CartLine) error {
	if m.err != nil {
		return m.err
	}
	cart, ok := m.carts[ownerID]
	if !ok {
		cart = &domain.Cart{OwnerID: ownerID, CreatedAt: time.Now()}
		m.carts[ownerID] = cart
	}
	for i, existing := range cart.Lines {
		if sameLine(existing, line.ProductID, line.VariantID) {
			cart.Lines[i] = line
			return nil
		}
	}
	cart.Lines = append(cart.Lines, line)
	return nil
}

func (m *memoryRepository) RemoveLine(_ context.Context, ownerID string, productID int64, variantID *string) error {
	cart, ok := m.carts[ownerID]
	if !ok {
		return ErrCartNotFound
	}
	for i, line := range cart.Lines {
		if sameLine(line, productID, variantID) {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

func (m *memoryRepository) DeleteCart(_ context.Context, ownerID string) error {
	if _, ok := m.carts[ownerID]; !ok {
		return ErrCartNotFound
	}
	delete(m.carts, ownerID)
	return nil
}

// noopCache implements Cache and always misses
type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.Cart, error) { return nil, ErrCacheMiss }
func (noopCache) Set(context.Context, string, *domain.Cart) error   { return nil }
func (noopCache) Delete(context.Context, string) error              { return nil }

func newTestService(repo Repository) *Service {
	return NewService(repo, noopCache{}, domain.MustMoney("5.99", "USD"))
}

func TestService_AddLine(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	ctx := context.Background()

	err := svc.AddLine(ctx, "owner-1", domain.CartLine{
		ProductID: 42,
		Quantity:  2,
		UnitPrice: domain.MustMoney("20.00", "USD"),
	})
	require.NoError(t, err)

	cart, err := svc.Get(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func TestService_AddLine_RejectsZeroQuantity(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	err := svc.AddLine(context.Background(), "owner-1", domain.CartLine{
		ProductID: 42,
		Quantity:  0,
		UnitPrice: domain.MustMoney("20.00", "USD"),
	})

	require.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Empty(t, repo.carts)
}

func TestService_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "owner-1", domain.CartLine{
		ProductID: 42,
		Quantity:  2,
		UnitPrice: domain.MustMoney("20.00", "USD"),
	}))

	require.NoError(t, svc.UpdateQuantity(ctx, "owner-1", 42, nil, 0))

	cart, err := svc.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestService_UpdateQuantity_MissingLine(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	err := svc.UpdateQuantity(context.Background(), "owner-1", 42, nil, 3)

	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestService_Get_UnknownOwnerReturnsEmptyCart(t *testing.T) {
	svc := newTestService(newMemoryRepository())

	cart, err := svc.Get(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Equal(t, "nobody", cart.OwnerID)
	assert.True(t, cart.IsEmpty())
}

func TestService_Totals(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	ctx := context.Background()

	// cart = [{book A, qty 2, $20.00}], flat shipping $5.99 => $45.99
	require.NoError(t, svc.AddLine(ctx, "owner-1", domain.CartLine{
		ProductID: 1,
		Quantity:  2,
		UnitPrice: domain.MustMoney("20.00", "USD"),
	}))

	totals, err := svc.Totals(ctx, "owner-1")
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(domain.MustMoney("40.00", "USD")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.Shipping.Equal(domain.MustMoney("5.99", "USD")))
	assert.True(t, totals.Total.Equal(domain.MustMoney("45.99", "USD")), "total %s", totals.Total)
}

func TestService_Totals_CentExact(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "o", domain.CartLine{
		ProductID: 1, Quantity: 3, UnitPrice: domain.MustMoney("0.10", "USD"),
	}))
	require.NoError(t, svc.AddLine(ctx, "o", domain.CartLine{
		ProductID: 2, Quantity: 1, UnitPrice: domain.MustMoney("19.99", "USD"),
	}))

	totals, err := svc.Totals(ctx, "o")
	require.NoError(t, err)

	// 0.30 + 19.99 + 5.99 = 26.28, no float drift allowed
	assert.Equal(t, "26.28", totals.Total.Amount.StringFixed(2))
}

func TestService_Clear(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "owner-1", domain.CartLine{
		ProductID: 42, Quantity: 1, UnitPrice: domain.MustMoney("9.99", "USD"),
	}))
	require.NoError(t, svc.Clear(ctx, "owner-1"))

	cart, err := svc.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	// clearing an already empty cart is fine
	require.NoError(t, svc.Clear(ctx, "owner-1"))
}

func TestService_OnChangeFiresPerMutation(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	ctx := context.Background()

	var changed []string
	svc.OnChange(func(ownerID string) { changed = append(changed, ownerID) })

	require.NoError(t, svc.AddLine(ctx, "owner-1", domain.CartLine{
		ProductID: 42, Quantity: 1, UnitPrice: domain.MustMoney("9.99", "USD"),
	}))
	require.NoError(t, svc.UpdateQuantity(ctx, "owner-1", 42, nil, 3))
	require.NoError(t, svc.RemoveLine(ctx, "owner-1", 42, nil))
	require.NoError(t, svc.Clear(ctx, "owner-1"))

	assert.Equal(t, []string{"owner-1", "owner-1", "owner-1", "owner-1"}, changed)

	// a rejected write must not notify
	_ = svc.AddLine(ctx, "owner-1", domain.CartLine{ProductID: 1, Quantity: 0})
	assert.Len(t, changed, 4)
}

func TestService_VariantsAreDistinctLines(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	ctx := context.Background()

	hardcover := "hardcover"
	paperback := "paperback"
	require.NoError(t, svc.AddLine(ctx, "o", domain.CartLine{
		ProductID: 7, VariantID: &hardcover, Quantity: 1, UnitPrice: domain.MustMoney("30.00", "USD"),
	}))
	require.NoError(t, svc.AddLine(ctx, "o", domain.CartLine{
		ProductID: 7, VariantID: &paperback, Quantity: 1, UnitPrice: domain.MustMoney("15.00", "USD"),
	}))

	cart, err := svc.Get(ctx, "o")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)

	require.NoError(t, svc.RemoveLine(ctx, "o", 7, &hardcover))
	cart, err = svc.Get(ctx, "o")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	if diff := cmp.Diff(&paperback, cart.Lines[0].VariantID); diff != "" {
		t.Errorf("unexpected surviving variant (-want +got):\n%s", diff)
	}
}
