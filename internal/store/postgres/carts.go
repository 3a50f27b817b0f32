package postgres

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
)

// AddCartItem inserts a cart row or adds to the quantity of the existing one
func (s *Store) AddCartItem(ctx context.Context, userID, productID string, quantity int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, quantity)
	return err
}

// GetCart returns the user's rows joined with current product data
func (s *Store) GetCart(ctx context.Context, userID string) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := s.db.SelectContext(ctx, &lines, `
		SELECT ci.product_id, p.image, p.title, p.price, p.sale_price, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at`, userID)
	return lines, err
}

// UpdateCartItem sets the quantity of an existing row
func (s *Store) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE user_id = $2 AND product_id = $3",
		quantity, userID, productID)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("cart item %s/%s", userID, productID))
}

// RemoveCartItem deletes a row if present
func (s *Store) RemoveCartItem(ctx context.Context, userID, productID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2", userID, productID)
	return err
}

// ClearCart deletes every row for the user
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	return err
}
