package service

import (
	"context"
	"errors"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

const msgInvalidData = "Invalid data provided!"

// CartService manages per-user carts
type CartService struct {
	carts    store.CartStore
	products store.CatalogStore
	logger   *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(carts store.CartStore, products store.CatalogStore) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   util.GetLogger(),
	}
}

// AddItem adds quantity of a product, merging with an existing row
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	if userID == "" || productID == "" || quantity <= 0 {
		return nil, apperr.InvalidInput(msgInvalidData)
	}

	_, err := s.products.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.InvalidInput(msgProductNotFound)
	}
	if err != nil {
		return nil, apperr.Store(err)
	}

	if err := s.carts.AddCartItem(ctx, userID, productID, quantity); err != nil {
		return nil, storeError(err, "")
	}

	util.CartItemsAddedTotal.Inc()
	s.logger.Debug("Cart item added",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))

	return s.GetCart(ctx, userID)
}

// GetCart returns the cart joined with live product data
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	if userID == "" {
		return nil, apperr.InvalidInput("User id is mandatory!")
	}

	lines, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return &models.Cart{UserID: userID, Items: lines}, nil
}

// UpdateItem sets the quantity of an existing row
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateItem")
	defer span.End()

	if userID == "" || productID == "" || quantity <= 0 {
		return nil, apperr.InvalidInput(msgInvalidData)
	}

	err := s.carts.UpdateCartItem(ctx, userID, productID, quantity)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Cart item not present!")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}

	return s.GetCart(ctx, userID)
}

// RemoveItem deletes a row; removing an absent row succeeds
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveItem")
	defer span.End()

	if userID == "" || productID == "" {
		return nil, apperr.InvalidInput(msgInvalidData)
	}

	if err := s.carts.RemoveCartItem(ctx, userID, productID); err != nil {
		return nil, storeError(err, "")
	}

	return s.GetCart(ctx, userID)
}
