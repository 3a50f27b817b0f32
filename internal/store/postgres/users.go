package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
)

// CreateUser inserts a user; emails are unique regardless of case
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.New().String()
	err := s.db.GetContext(ctx, &user.CreatedAt, `
		INSERT INTO users (id, user_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		user.ID, user.UserName, user.Email, user.PasswordHash, user.Role)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Email, store.ErrDuplicate)
	}
	return err
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, ignoring case
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE LOWER(email) = $1", strings.ToLower(email))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
