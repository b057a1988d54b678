package grant

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a process-local Store, used in tests and single-node setups.
type MemoryStore struct {
	mu     sync.Mutex
	grants map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{grants: map[string]string{}}
}

func (s *MemoryStore) Save(_ context.Context, ownerID string, orderID uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grantKey(ownerID, orderID)] = token
	return nil
}

func (s *MemoryStore) Get(_ context.Context, ownerID string, orderID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.grants[grantKey(ownerID, orderID)]
	if !ok {
		return "", ErrGrantNotFound
	}
	return token, nil
}

func (s *MemoryStore) Delete(_ context.Context, ownerID string, orderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, grantKey(ownerID, orderID))
	return nil
}
