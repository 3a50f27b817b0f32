package mongostore

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateReview inserts a review; the (product, user) pair is unique
func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	review.ID = uuid.New().String()
	review.CreatedAt = time.Now().UTC()

	_, err := s.reviews.InsertOne(ctx, reviewDoc(*review))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("review %s/%s: %w", review.ProductID, review.UserID, store.ErrDuplicate)
	}
	return err
}

// HasReviewed reports whether the user already reviewed the product
func (s *Store) HasReviewed(ctx context.Context, productID, userID string) (bool, error) {
	n, err := s.reviews.CountDocuments(ctx, bson.M{"productId": productID, "userId": userID},
		options.Count().SetLimit(1))
	return n > 0, err
}

// ListReviews returns the product's reviews, newest first
func (s *Store) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	cur, err := s.reviews.Find(ctx, bson.M{"productId": productID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []reviewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	reviews := make([]models.Review, len(docs))
	for i, d := range docs {
		reviews[i] = models.Review(d)
	}
	return reviews, nil
}

// AverageRating returns the mean review value, 0 without reviews
func (s *Store) AverageRating(ctx context.Context, productID string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$reviewValue"}}}},
	}
	cur, err := s.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	var result []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Avg, nil
}
