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

// CreateOrder inserts the order as a single document with embedded items
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.ID = uuid.New().String()
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].ID = uuid.New().String()
		order.Items[i].OrderID = order.ID
	}

	_, err := s.orders.InsertOne(ctx, newOrderDoc(order))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("order idempotency key %s: %w", order.IdempotencyKey, store.ErrDuplicate)
	}
	return err
}

// DeleteOrder removes an order
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.orders.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("order %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// GetOrder retrieves an order with its items
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var doc orderDoc
	if err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFound(err, fmt.Sprintf("order %s", id))
	}
	order := doc.toModel()
	return &order, nil
}

// GetOrderByIdempotencyKey returns nil when no order carries the key
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	var doc orderDoc
	err := s.orders.FindOne(ctx, bson.M{"userId": userID, "idempotencyKey": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	order := doc.toModel()
	return &order, nil
}

func (s *Store) findOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cur, err := s.orders.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	orders := make([]models.Order, len(docs))
	for i, d := range docs {
		orders[i] = d.toModel()
	}
	return orders, nil
}

// ListOrdersByUser returns the user's orders, newest first
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{"userId": userID})
}

// ListOrders returns every order, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{})
}

// UpdateOrderStatus overwrites order and payment status
func (s *Store) UpdateOrderStatus(ctx context.Context, id, orderStatus, paymentStatus string) error {
	res, err := s.orders.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"orderStatus":   orderStatus,
		"paymentStatus": paymentStatus,
		"updatedAt":     time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// HasPurchased reports whether any order of the user contains the product
func (s *Store) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	n, err := s.orders.CountDocuments(ctx,
		bson.M{"userId": userID, "items.productId": productID},
		options.Count().SetLimit(1))
	return n > 0, err
}
