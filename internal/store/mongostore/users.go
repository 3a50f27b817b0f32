package mongostore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateUser inserts a user; emails are unique regardless of case
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := s.users.InsertOne(ctx, userDoc{
		ID:           user.ID,
		UserName:     user.UserName,
		Email:        user.Email,
		EmailKey:     strings.ToLower(user.Email),
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("user %s: %w", user.Email, store.ErrDuplicate)
	}
	return err
}

func (d userDoc) toModel() *models.User {
	return &models.User{
		ID:           d.ID,
		UserName:     d.UserName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
	}
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFound(err, fmt.Sprintf("user %s", id))
	}
	return doc.toModel(), nil
}

// GetUserByEmail retrieves a user by email, ignoring case
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"emailKey": strings.ToLower(email)}).Decode(&doc); err != nil {
		return nil, notFound(err, fmt.Sprintf("user %s", email))
	}
	return doc.toModel(), nil
}
