package memory

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
)

func (s *Store) cartIndex(userID, productID string) int {
	for i, item := range s.cart {
		if item.UserID == userID && item.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddCartItem inserts a cart row or adds to the quantity of the existing one
func (s *Store) AddCartItem(ctx context.Context, userID, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.cartIndex(userID, productID); i >= 0 {
		s.cart[i].Quantity += quantity
		return nil
	}
	s.cart = append(s.cart, models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	})
	return nil
}

// GetCart returns the user's rows joined with current product data
func (s *Store) GetCart(ctx context.Context, userID string) ([]models.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := []models.CartLine{}
	for _, item := range s.cart {
		if item.UserID != userID {
			continue
		}
		p, ok := s.products[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, models.CartLine{
			ProductID: p.ID,
			Image:     p.Image,
			Title:     p.Title,
			Price:     p.Price,
			SalePrice: p.SalePrice,
			Quantity:  item.Quantity,
		})
	}
	return lines, nil
}

// UpdateCartItem sets the quantity of an existing row
func (s *Store) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.cartIndex(userID, productID)
	if i < 0 {
		return fmt.Errorf("cart item %s/%s: %w", userID, productID, store.ErrNotFound)
	}
	s.cart[i].Quantity = quantity
	return nil
}

// RemoveCartItem deletes a row if present
func (s *Store) RemoveCartItem(ctx context.Context, userID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.cartIndex(userID, productID); i >= 0 {
		s.cart = append(s.cart[:i], s.cart[i+1:]...)
	}
	return nil
}

// ClearCart deletes every row for the user
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.cart[:0]
	for _, item := range s.cart {
		if item.UserID != userID {
			kept = append(kept, item)
		}
	}
	s.cart = kept
	return nil
}
