package memory

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
)

// CreateAddress stores a new address
func (s *Store) CreateAddress(ctx context.Context, address *models.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	address.ID = uuid.New().String()
	address.CreatedAt = time.Now()
	s.addresses = append(s.addresses, *address)
	return nil
}

// ListAddresses returns the user's addresses, newest first
func (s *Store) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addresses := []models.Address{}
	for i := len(s.addresses) - 1; i >= 0; i-- {
		if s.addresses[i].UserID == userID {
			addresses = append(addresses, s.addresses[i])
		}
	}
	return addresses, nil
}

// UpdateAddress overwrites an address owned by address.UserID
func (s *Store) UpdateAddress(ctx context.Context, address *models.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.addresses {
		if a.ID == address.ID && a.UserID == address.UserID {
			address.CreatedAt = a.CreatedAt
			s.addresses[i] = *address
			return nil
		}
	}
	return fmt.Errorf("address %s: %w", address.ID, store.ErrNotFound)
}

// DeleteAddress removes an address owned by userID
func (s *Store) DeleteAddress(ctx context.Context, userID, addressID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.addresses {
		if a.ID == addressID && a.UserID == userID {
			s.addresses = append(s.addresses[:i], s.addresses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("address %s: %w", addressID, store.ErrNotFound)
}
