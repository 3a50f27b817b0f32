package mongostore

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AddCartItem upserts the (user, product) row, incrementing its quantity
func (s *Store) AddCartItem(ctx context.Context, userID, productID string, quantity int) error {
	_, err := s.cart.UpdateOne(ctx,
		bson.M{"userId": userID, "productId": productID},
		bson.M{
			"$inc":         bson.M{"quantity": quantity},
			"$setOnInsert": bson.M{"createdAt": time.Now().UTC()},
		},
		options.Update().SetUpsert(true))
	return err
}

// GetCart returns the user's rows joined with current product data
func (s *Store) GetCart(ctx context.Context, userID string) ([]models.CartLine, error) {
	cur, err := s.cart.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var rows []cartDoc
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	lines := []models.CartLine{}
	if len(rows) == 0 {
		return lines, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ProductID
	}
	pcur, err := s.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := pcur.All(ctx, &docs); err != nil {
		return nil, err
	}
	products := make(map[string]productDoc, len(docs))
	for _, d := range docs {
		products[d.ID] = d
	}

	for _, row := range rows {
		d, ok := products[row.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, models.CartLine{
			ProductID: d.ID,
			Image:     d.Image,
			Title:     d.Title,
			Price:     fromDecimal128(d.Price),
			SalePrice: fromDecimal128(d.SalePrice),
			Quantity:  row.Quantity,
		})
	}
	return lines, nil
}

// UpdateCartItem sets the quantity of an existing row
func (s *Store) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) error {
	res, err := s.cart.UpdateOne(ctx,
		bson.M{"userId": userID, "productId": productID},
		bson.M{"$set": bson.M{"quantity": quantity}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("cart item %s/%s: %w", userID, productID, store.ErrNotFound)
	}
	return nil
}

// RemoveCartItem deletes a row if present
func (s *Store) RemoveCartItem(ctx context.Context, userID, productID string) error {
	_, err := s.cart.DeleteOne(ctx, bson.M{"userId": userID, "productId": productID})
	return err
}

// ClearCart deletes every row for the user
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	_, err := s.cart.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}
