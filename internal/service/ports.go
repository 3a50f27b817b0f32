package service

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
)

// EventPublisher publishes storefront domain events
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishReviewAdded(ctx context.Context, event *models.ReviewAddedEvent) error
}

// ProductCache is a read-through cache of single products
type ProductCache interface {
	CacheProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	GetCachedProduct(ctx context.Context, id string) (*models.Product, error)
	InvalidateProduct(ctx context.Context, id string) error
}

// PlacementGuard deduplicates order placements and serializes them per user
type PlacementGuard interface {
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetIdempotencyKey(ctx context.Context, key string) (string, error)
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}

// TokenRevoker denylists logged out tokens
type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// storeError maps a backend error to the application taxonomy
func storeError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) && notFoundMsg != "" {
		return apperr.NotFound(notFoundMsg)
	}
	return apperr.Store(err)
}
