package mongostore

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateAddress inserts an address
func (s *Store) CreateAddress(ctx context.Context, address *models.Address) error {
	address.ID = uuid.New().String()
	address.CreatedAt = time.Now().UTC()
	_, err := s.addresses.InsertOne(ctx, addressDoc(*address))
	return err
}

// ListAddresses returns the user's addresses, newest first
func (s *Store) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	cur, err := s.addresses.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []addressDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	addresses := make([]models.Address, len(docs))
	for i, d := range docs {
		addresses[i] = d.toModel()
	}
	return addresses, nil
}

// UpdateAddress overwrites an address owned by address.UserID
func (s *Store) UpdateAddress(ctx context.Context, address *models.Address) error {
	res, err := s.addresses.UpdateOne(ctx,
		bson.M{"_id": address.ID, "userId": address.UserID},
		bson.M{"$set": bson.M{
			"address": address.Address,
			"city":    address.City,
			"pincode": address.Pincode,
			"phone":   address.Phone,
			"notes":   address.Notes,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("address %s: %w", address.ID, store.ErrNotFound)
	}
	return nil
}

// DeleteAddress removes an address owned by userID
func (s *Store) DeleteAddress(ctx context.Context, userID, addressID string) error {
	res, err := s.addresses.DeleteOne(ctx, bson.M{"_id": addressID, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("address %s: %w", addressID, store.ErrNotFound)
	}
	return nil
}
