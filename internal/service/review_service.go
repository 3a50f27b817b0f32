package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgMustPurchase    = "You need to purchase product to review it."
	msgAlreadyReviewed = "You already reviewed this product!"
)

// ReviewService records purchase-gated product reviews
type ReviewService struct {
	reviews        store.ReviewStore
	orders         store.OrderStore
	ratings        *RatingService
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewReviewService creates a new review service; without a publisher averages are recomputed inline
func NewReviewService(
	reviews store.ReviewStore,
	orders store.OrderStore,
	ratings *RatingService,
	eventPublisher EventPublisher,
) *ReviewService {
	return &ReviewService{
		reviews:        reviews,
		orders:         orders,
		ratings:        ratings,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// AddReviewRequest represents a review submitted by a shopper
type AddReviewRequest struct {
	ProductID     string `json:"productId"`
	UserID        string `json:"userId"`
	UserName      string `json:"userName"`
	ReviewMessage string `json:"reviewMessage"`
	ReviewValue   int    `json:"reviewValue"`
}

// AddReview stores a review when the user bought the product and has not reviewed it yet
func (s *ReviewService) AddReview(ctx context.Context, req *AddReviewRequest) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.AddReview")
	defer span.End()

	if req.ProductID == "" || req.UserID == "" || strings.TrimSpace(req.ReviewMessage) == "" {
		return nil, apperr.InvalidInput("Invalid data provided!")
	}
	if req.ReviewValue < 1 || req.ReviewValue > 5 {
		return nil, apperr.InvalidInput("Review value must be between 1 and 5")
	}

	purchased, err := s.orders.HasPurchased(ctx, req.UserID, req.ProductID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if !purchased {
		util.ReviewsRejectedTotal.WithLabelValues("not_purchased").Inc()
		return nil, apperr.Forbidden(msgMustPurchase)
	}

	reviewed, err := s.reviews.HasReviewed(ctx, req.ProductID, req.UserID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if reviewed {
		util.ReviewsRejectedTotal.WithLabelValues("duplicate").Inc()
		return nil, apperr.Conflict(msgAlreadyReviewed)
	}

	review := &models.Review{
		ProductID:     req.ProductID,
		UserID:        req.UserID,
		UserName:      req.UserName,
		ReviewMessage: req.ReviewMessage,
		ReviewValue:   req.ReviewValue,
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			util.ReviewsRejectedTotal.WithLabelValues("duplicate").Inc()
			return nil, apperr.Conflict(msgAlreadyReviewed)
		}
		return nil, apperr.Store(err)
	}

	util.ReviewsAddedTotal.Inc()
	s.logger.Info("Review added",
		zap.String("product_id", review.ProductID),
		zap.String("user_id", review.UserID),
		zap.Int("value", review.ReviewValue))

	s.propagate(ctx, review)
	return review, nil
}

// propagate hands the new review to the rating worker, recomputing inline when no event can be sent
func (s *ReviewService) propagate(ctx context.Context, review *models.Review) {
	if s.eventPublisher != nil {
		event := &models.ReviewAddedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeReviewAdded,
				Timestamp: time.Now(),
			},
			ReviewID:    review.ID,
			ProductID:   review.ProductID,
			UserID:      review.UserID,
			ReviewValue: review.ReviewValue,
		}
		err := s.eventPublisher.PublishReviewAdded(ctx, event)
		if err == nil {
			return
		}
		s.logger.Error("Failed to publish ReviewAdded event", zap.String("review_id", review.ID), zap.Error(err))
	}

	if s.ratings == nil {
		return
	}
	if _, err := s.ratings.RecomputeAverage(ctx, review.ProductID); err != nil {
		s.logger.Error("Failed to recompute average review",
			zap.String("product_id", review.ProductID),
			zap.Error(err))
	}
}

// ListReviews returns a product's reviews, newest first
func (s *ReviewService) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.ListReviews")
	defer span.End()

	reviews, err := s.reviews.ListReviews(ctx, productID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}
