package service

import (
	"context"
	"fmt"
	"math"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// RatingService keeps Product.AverageReview in step with the review ledger
type RatingService struct {
	reviews store.ReviewStore
	catalog *CatalogService
	logger  *zap.Logger
}

// NewRatingService creates a new rating service
func NewRatingService(reviews store.ReviewStore, catalog *CatalogService) *RatingService {
	return &RatingService{
		reviews: reviews,
		catalog: catalog,
		logger:  util.GetLogger(),
	}
}

// RecomputeAverage stores the mean review value of a product, rounded to two decimals
func (rs *RatingService) RecomputeAverage(ctx context.Context, productID string) (float64, error) {
	ctx, span := util.StartSpan(ctx, "RatingService.RecomputeAverage")
	defer span.End()

	avg, err := rs.reviews.AverageRating(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to compute average rating: %w", err)
	}
	avg = math.Round(avg*100) / 100

	if err := rs.catalog.RefreshAverage(ctx, productID, avg); err != nil {
		return 0, err
	}

	rs.logger.Debug("Average review updated",
		zap.String("product_id", productID),
		zap.Float64("average", avg))
	return avg, nil
}

// HandleReviewAdded handles ReviewAdded events from the broker
func (rs *RatingService) HandleReviewAdded(ctx context.Context, event *models.ReviewAddedEvent) error {
	rs.logger.Info("Handling review added",
		zap.String("event_id", event.EventID),
		zap.String("product_id", event.ProductID))

	_, err := rs.RecomputeAverage(ctx, event.ProductID)
	if apperr.KindOf(err) == apperr.KindNotFound {
		rs.logger.Warn("Reviewed product no longer exists", zap.String("product_id", event.ProductID))
		return nil
	}
	return err
}
