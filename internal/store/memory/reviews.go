package memory

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
)

// CreateReview stores a review, rejecting a second one for the same product and user
func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reviews {
		if r.ProductID == review.ProductID && r.UserID == review.UserID {
			return fmt.Errorf("review %s/%s: %w", review.ProductID, review.UserID, store.ErrDuplicate)
		}
	}
	review.ID = uuid.New().String()
	review.CreatedAt = time.Now()
	s.reviews = append(s.reviews, *review)
	return nil
}

// HasReviewed reports whether the user already reviewed the product
func (s *Store) HasReviewed(ctx context.Context, productID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reviews {
		if r.ProductID == productID && r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// ListReviews returns the product's reviews, newest first
func (s *Store) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reviews := []models.Review{}
	for i := len(s.reviews) - 1; i >= 0; i-- {
		if s.reviews[i].ProductID == productID {
			reviews = append(reviews, s.reviews[i])
		}
	}
	return reviews, nil
}

// AverageRating returns the mean review value, 0 without reviews
func (s *Store) AverageRating(ctx context.Context, productID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum, count int
	for _, r := range s.reviews {
		if r.ProductID == productID {
			sum += r.ReviewValue
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return float64(sum) / float64(count), nil
}
