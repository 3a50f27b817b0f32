package memory

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
)

func copyOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

func (s *Store) orderIndex(id string) int {
	for i, o := range s.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// CreateOrder stores an order together with its items
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.IdempotencyKey != "" {
		for _, o := range s.orders {
			if o.UserID == order.UserID && o.IdempotencyKey == order.IdempotencyKey {
				return fmt.Errorf("order idempotency key %s: %w", order.IdempotencyKey, store.ErrDuplicate)
			}
		}
	}

	now := time.Now()
	order.ID = uuid.New().String()
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].ID = uuid.New().String()
		order.Items[i].OrderID = order.ID
	}
	s.orders = append(s.orders, copyOrder(*order))
	return nil
}

// DeleteOrder removes an order and its items
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.orderIndex(id)
	if i < 0 {
		return fmt.Errorf("order %s: %w", id, store.ErrNotFound)
	}
	s.orders = append(s.orders[:i], s.orders[i+1:]...)
	return nil
}

// GetOrder retrieves an order with its items
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.orderIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("order %s: %w", id, store.ErrNotFound)
	}
	o := copyOrder(s.orders[i])
	return &o, nil
}

// GetOrderByIdempotencyKey returns nil when no order carries the key
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.UserID == userID && o.IdempotencyKey == key {
			o = copyOrder(o)
			return &o, nil
		}
	}
	return nil, nil
}

// ListOrdersByUser returns the user's orders, newest first
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.listOrders(func(o models.Order) bool { return o.UserID == userID }), nil
}

// ListOrders returns every order, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(func(models.Order) bool { return true }), nil
}

func (s *Store) listOrders(match func(models.Order) bool) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []models.Order{}
	for i := len(s.orders) - 1; i >= 0; i-- {
		if match(s.orders[i]) {
			orders = append(orders, copyOrder(s.orders[i]))
		}
	}
	return orders
}

// UpdateOrderStatus overwrites order and payment status
func (s *Store) UpdateOrderStatus(ctx context.Context, id, orderStatus, paymentStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.orderIndex(id)
	if i < 0 {
		return fmt.Errorf("order %s: %w", id, store.ErrNotFound)
	}
	s.orders[i].OrderStatus = orderStatus
	s.orders[i].PaymentStatus = paymentStatus
	s.orders[i].UpdatedAt = time.Now()
	return nil
}

// HasPurchased reports whether any order of the user contains the product
func (s *Store) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.UserID != userID {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}
