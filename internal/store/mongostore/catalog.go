package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var productSort = map[store.SortKey]bson.D{
	store.SortPriceAsc:  {{Key: "price", Value: 1}, {Key: "title", Value: 1}},
	store.SortPriceDesc: {{Key: "price", Value: -1}, {Key: "title", Value: 1}},
	store.SortTitleAsc:  {{Key: "title", Value: 1}},
	store.SortTitleDesc: {{Key: "title", Value: -1}},
}

func (s *Store) refSlugs(ctx context.Context, coll *mongo.Collection) (map[string]string, error) {
	cur, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var refs []refDoc
	if err := cur.All(ctx, &refs); err != nil {
		return nil, err
	}
	slugs := make(map[string]string, len(refs))
	for _, r := range refs {
		slugs[r.ID] = r.Slug
	}
	return slugs, nil
}

func (s *Store) refIDs(ctx context.Context, coll *mongo.Collection, slugs []string) ([]string, error) {
	cur, err := coll.Find(ctx, bson.M{"slug": bson.M{"$in": slugs}})
	if err != nil {
		return nil, err
	}
	var refs []refDoc
	if err := cur.All(ctx, &refs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (s *Store) findProducts(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Product, error) {
	categorySlugs, err := s.refSlugs(ctx, s.categories)
	if err != nil {
		return nil, err
	}
	brandSlugs, err := s.refSlugs(ctx, s.brands)
	if err != nil {
		return nil, err
	}

	cur, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		p := d.toModel()
		if p.CategoryID != nil {
			p.Category = categorySlugs[*p.CategoryID]
		}
		if p.BrandID != nil {
			p.Brand = brandSlugs[*p.BrandID]
		}
		products = append(products, p)
	}
	return products, nil
}

// ListProducts retrieves products matching the filter
func (s *Store) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if len(filter.Categories) > 0 {
		ids, err := s.refIDs(ctx, s.categories, filter.Categories)
		if err != nil {
			return nil, err
		}
		query["categoryId"] = bson.M{"$in": ids}
	}
	if len(filter.Brands) > 0 {
		ids, err := s.refIDs(ctx, s.brands, filter.Brands)
		if err != nil {
			return nil, err
		}
		query["brandId"] = bson.M{"$in": ids}
	}

	sort, ok := productSort[filter.Sort]
	if !ok {
		sort = productSort[store.SortPriceAsc]
	}
	return s.findProducts(ctx, query, options.Find().SetSort(sort))
}

// SearchProducts matches keyword against title and description, ignoring case
func (s *Store) SearchProducts(ctx context.Context, keyword string) ([]models.Product, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
	query := bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"description": pattern},
	}}
	return s.findProducts(ctx, query, options.Find().SetSort(productSort[store.SortTitleAsc]))
}

// GetProduct retrieves a product by ID
func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	products, err := s.findProducts(ctx, bson.M{"_id": id}, options.Find().SetLimit(1))
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	return &products[0], nil
}

// CreateProduct inserts a product
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.ID = uuid.New().String()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := s.products.InsertOne(ctx, newProductDoc(product))
	return err
}

// UpdateProduct overwrites the editable fields of a product
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	doc := newProductDoc(product)

	set := bson.M{
		"title":         doc.Title,
		"description":   doc.Description,
		"image":         doc.Image,
		"price":         doc.Price,
		"salePrice":     doc.SalePrice,
		"totalStock":    doc.TotalStock,
		"averageReview": doc.AverageReview,
		"updatedAt":     doc.UpdatedAt,
	}
	unset := bson.M{}
	if doc.CategoryID != nil {
		set["categoryId"] = *doc.CategoryID
	} else {
		unset["categoryId"] = ""
	}
	if doc.BrandID != nil {
		set["brandId"] = *doc.BrandID
	} else {
		unset["brandId"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var updated productDoc
	err := s.products.FindOneAndUpdate(ctx, bson.M{"_id": product.ID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		return notFound(err, fmt.Sprintf("product %s", product.ID))
	}
	product.CreatedAt = updated.CreatedAt
	return nil
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// SetAverageReview stores a recomputed review average
func (s *Store) SetAverageReview(ctx context.Context, productID string, average float64) error {
	res, err := s.products.UpdateOne(ctx, bson.M{"_id": productID},
		bson.M{"$set": bson.M{"averageReview": average, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	return nil
}

// GetCategoryBySlug resolves a category slug
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var doc refDoc
	if err := s.categories.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		return nil, notFound(err, fmt.Sprintf("category %s", slug))
	}
	return &models.Category{ID: doc.ID, Name: doc.Name, Slug: doc.Slug}, nil
}

// GetBrandBySlug resolves a brand slug
func (s *Store) GetBrandBySlug(ctx context.Context, slug string) (*models.Brand, error) {
	var doc refDoc
	if err := s.brands.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		return nil, notFound(err, fmt.Sprintf("brand %s", slug))
	}
	return &models.Brand{ID: doc.ID, Name: doc.Name, Slug: doc.Slug}, nil
}

func (s *Store) listRefs(ctx context.Context, coll *mongo.Collection) ([]refDoc, error) {
	cur, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var refs []refDoc
	err = cur.All(ctx, &refs)
	return refs, err
}

// ListCategories returns all categories
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	refs, err := s.listRefs(ctx, s.categories)
	if err != nil {
		return nil, err
	}
	categories := make([]models.Category, len(refs))
	for i, r := range refs {
		categories[i] = models.Category(r)
	}
	return categories, nil
}

// ListBrands returns all brands
func (s *Store) ListBrands(ctx context.Context) ([]models.Brand, error) {
	refs, err := s.listRefs(ctx, s.brands)
	if err != nil {
		return nil, err
	}
	brands := make([]models.Brand, len(refs))
	for i, r := range refs {
		brands[i] = models.Brand(r)
	}
	return brands, nil
}
