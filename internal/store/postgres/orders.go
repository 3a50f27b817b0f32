package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type orderRow struct {
	ID             string          `db:"id"`
	UserID         string          `db:"user_id"`
	OrderStatus    string          `db:"order_status"`
	PaymentMethod  string          `db:"payment_method"`
	PaymentStatus  string          `db:"payment_status"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	AddressID      string          `db:"address_id"`
	Address        string          `db:"address"`
	City           string          `db:"city"`
	Pincode        string          `db:"pincode"`
	Phone          string          `db:"phone"`
	Notes          string          `db:"notes"`
	IdempotencyKey string          `db:"idempotency_key"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r orderRow) toModel() models.Order {
	return models.Order{
		ID:     r.ID,
		UserID: r.UserID,
		AddressInfo: models.ShippingAddress{
			AddressID: r.AddressID,
			Address:   r.Address,
			City:      r.City,
			Pincode:   r.Pincode,
			Phone:     r.Phone,
			Notes:     r.Notes,
		},
		OrderStatus:    r.OrderStatus,
		PaymentMethod:  r.PaymentMethod,
		PaymentStatus:  r.PaymentStatus,
		TotalAmount:    r.TotalAmount,
		IdempotencyKey: r.IdempotencyKey,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Items:          []models.OrderItem{},
	}
}

// CreateOrder inserts an order and its items in one transaction
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	order.ID = uuid.New().String()
	addr := order.AddressInfo
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO orders (id, user_id, order_status, payment_method, payment_status, total_amount,
		                    address_id, address, city, pincode, phone, notes, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.OrderStatus, order.PaymentMethod, order.PaymentStatus, order.TotalAmount,
		addr.AddressID, addr.Address, addr.City, addr.Pincode, addr.Phone, addr.Notes, order.IdempotencyKey,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order idempotency key %s: %w", order.IdempotencyKey, store.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.ID = uuid.New().String()
		item.OrderID = order.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, title, image, price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.OrderID, item.ProductID, item.Title, item.Image, item.Price, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteOrder removes an order; items cascade
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("order %s", id))
}

// GetOrder retrieves an order with its items
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	orders, err := s.attachItems(ctx, []orderRow{row})
	if err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// GetOrderByIdempotencyKey returns nil when no order carries the key
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM orders WHERE user_id = $1 AND idempotency_key = $2", userID, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	orders, err := s.attachItems(ctx, []orderRow{row})
	if err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListOrdersByUser returns the user's orders, newest first
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, rows)
}

// ListOrders returns every order, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var rows []orderRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM orders ORDER BY created_at DESC"); err != nil {
		return nil, err
	}
	return s.attachItems(ctx, rows)
}

func (s *Store) attachItems(ctx context.Context, rows []orderRow) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(rows))
	if len(rows) == 0 {
		return orders, nil
	}

	ids := make([]string, len(rows))
	index := make(map[string]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
		index[row.ID] = i
		orders = append(orders, row.toModel())
	}

	query, args, err := sqlx.In("SELECT * FROM order_items WHERE order_id IN (?) ORDER BY order_id", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.OrderItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	for _, item := range items {
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return orders, nil
}

// UpdateOrderStatus overwrites order and payment status
func (s *Store) UpdateOrderStatus(ctx context.Context, id, orderStatus, paymentStatus string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET order_status = $1, payment_status = $2, updated_at = NOW() WHERE id = $3",
		orderStatus, paymentStatus, id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("order %s", id))
}

// HasPurchased reports whether any order of the user contains the product
func (s *Store) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.user_id = $1 AND oi.product_id = $2)`, userID, productID)
	return exists, err
}
