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

// Store is the MongoDB backend
type Store struct {
	client     *mongo.Client
	categories *mongo.Collection
	brands     *mongo.Collection
	products   *mongo.Collection
	cart       *mongo.Collection
	addresses  *mongo.Collection
	orders     *mongo.Collection
	reviews    *mongo.Collection
	users      *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// NewStore connects to MongoDB and ensures indexes and reference data
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:     client,
		categories: db.Collection("categories"),
		brands:     db.Collection("brands"),
		products:   db.Collection("products"),
		cart:       db.Collection("cart_items"),
		addresses:  db.Collection("addresses"),
		orders:     db.Collection("orders"),
		reviews:    db.Collection("reviews"),
		users:      db.Collection("users"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := s.seedReferenceData(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.categories: {unique(bson.D{{Key: "slug", Value: 1}})},
		s.brands:     {unique(bson.D{{Key: "slug", Value: 1}})},
		s.cart:       {unique(bson.D{{Key: "userId", Value: 1}, {Key: "productId", Value: 1}})},
		s.addresses:  {{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		s.orders: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "items.productId", Value: 1}}},
			{
				Keys: bson.D{{Key: "userId", Value: 1}, {Key: "idempotencyKey", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"idempotencyKey": bson.M{"$gt": ""}}),
			},
		},
		s.reviews: {unique(bson.D{{Key: "productId", Value: 1}, {Key: "userId", Value: 1}})},
		s.users:   {unique(bson.D{{Key: "emailKey", Value: 1}})},
	}

	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) seedReferenceData(ctx context.Context) error {
	upsert := options.Update().SetUpsert(true)
	for _, c := range models.DefaultCategories {
		_, err := s.categories.UpdateOne(ctx, bson.M{"slug": c.Slug},
			bson.M{"$setOnInsert": bson.M{"_id": uuid.New().String(), "name": c.Name}}, upsert)
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Slug, err)
		}
	}
	for _, b := range models.DefaultBrands {
		_, err := s.brands.UpdateOne(ctx, bson.M{"slug": b.Slug},
			bson.M{"$setOnInsert": bson.M{"_id": uuid.New().String(), "name": b.Name}}, upsert)
		if err != nil {
			return fmt.Errorf("failed to seed brand %s: %w", b.Slug, err)
		}
	}
	return nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func notFound(err error, what string) error {
	if err == mongo.ErrNoDocuments {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return err
}
