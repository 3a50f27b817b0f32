package postgres

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
)

// CreateReview inserts a review; the (product, user) pair is unique
func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	review.ID = uuid.New().String()
	err := s.db.GetContext(ctx, &review.CreatedAt, `
		INSERT INTO reviews (id, product_id, user_id, user_name, review_message, review_value)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		review.ID, review.ProductID, review.UserID, review.UserName, review.ReviewMessage, review.ReviewValue)
	if isUniqueViolation(err) {
		return fmt.Errorf("review %s/%s: %w", review.ProductID, review.UserID, store.ErrDuplicate)
	}
	return err
}

// HasReviewed reports whether the user already reviewed the product
func (s *Store) HasReviewed(ctx context.Context, productID, userID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM reviews WHERE product_id = $1 AND user_id = $2)", productID, userID)
	return exists, err
}

// ListReviews returns the product's reviews, newest first
func (s *Store) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	reviews := []models.Review{}
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT * FROM reviews WHERE product_id = $1 ORDER BY created_at DESC", productID)
	return reviews, err
}

// AverageRating returns the mean review value, 0 without reviews
func (s *Store) AverageRating(ctx context.Context, productID string) (float64, error) {
	var avg float64
	err := s.db.GetContext(ctx, &avg,
		"SELECT COALESCE(AVG(review_value), 0)::float8 FROM reviews WHERE product_id = $1", productID)
	return avg, err
}
