package checkout

import (
	"sync"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/grant"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/processor"
)

// Manager hands out one coordinator per cart owner. A succeeded coordinator is
// replaced on next access, so a new purchase starts from a clean attempt.
type Manager struct {
	carts    *cart.Service
	orders   OrderAuthority
	proc     processor.Processor
	grants   grant.Store
	notifier notify.Notifier
	accounts AccountCreator

	mu     sync.Mutex
	active map[string]*Coordinator
}

func NewManager(
	carts *cart.Service,
	orders OrderAuthority,
	proc processor.Processor,
	grants grant.Store,
	notifier notify.Notifier,
	accounts AccountCreator,
) *Manager {
	return &Manager{
		carts:    carts,
		orders:   orders,
		proc:     proc,
		grants:   grants,
		notifier: notifier,
		accounts: accounts,
		active:   map[string]*Coordinator{},
	}
}

func (m *Manager) For(ownerID string) *Coordinator {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.active[ownerID]; ok && !c.Status().IsTerminal() {
		return c
	}

	c := NewCoordinator(ownerID, m.carts, m.orders, m.proc, m.grants, m.notifier, m.accounts)
	m.active[ownerID] = c
	return c
}
