package postgres

import (
	"context"
	"fmt"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

// CreateAddress inserts an address
func (s *Store) CreateAddress(ctx context.Context, address *models.Address) error {
	address.ID = uuid.New().String()
	query := `
		INSERT INTO addresses (id, user_id, address, city, pincode, phone, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return s.db.GetContext(ctx, &address.CreatedAt, query,
		address.ID, address.UserID, address.Address, address.City, address.Pincode, address.Phone, address.Notes)
}

// ListAddresses returns the user's addresses, newest first
func (s *Store) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	addresses := []models.Address{}
	err := s.db.SelectContext(ctx, &addresses,
		"SELECT * FROM addresses WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return addresses, err
}

// UpdateAddress overwrites an address owned by address.UserID
func (s *Store) UpdateAddress(ctx context.Context, address *models.Address) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE addresses SET address = $1, city = $2, pincode = $3, phone = $4, notes = $5
		WHERE id = $6 AND user_id = $7`,
		address.Address, address.City, address.Pincode, address.Phone, address.Notes, address.ID, address.UserID)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("address %s", address.ID))
}

// DeleteAddress removes an address owned by userID
func (s *Store) DeleteAddress(ctx context.Context, userID, addressID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM addresses WHERE id = $1 AND user_id = $2", addressID, userID)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("address %s", addressID))
}
