package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const productColumns = `
	SELECT p.id, p.title, p.description, p.image, p.category_id, p.brand_id,
	       COALESCE(c.slug, '') AS category, COALESCE(b.slug, '') AS brand,
	       p.price, p.sale_price, p.total_stock, p.average_review, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN brands b ON b.id = p.brand_id`

var productOrder = map[store.SortKey]string{
	store.SortPriceAsc:  "p.price ASC, p.title ASC",
	store.SortPriceDesc: "p.price DESC, p.title ASC",
	store.SortTitleAsc:  "p.title ASC",
	store.SortTitleDesc: "p.title DESC",
}

// ListProducts retrieves products matching the filter
func (s *Store) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	query := productColumns + " WHERE 1=1"
	var args []interface{}

	if len(filter.Categories) > 0 {
		query += " AND c.slug IN (?)"
		args = append(args, filter.Categories)
	}
	if len(filter.Brands) > 0 {
		query += " AND b.slug IN (?)"
		args = append(args, filter.Brands)
	}

	order, ok := productOrder[filter.Sort]
	if !ok {
		order = productOrder[store.SortPriceAsc]
	}
	query += " ORDER BY " + order

	if len(args) > 0 {
		var err error
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return nil, err
		}
	}
	query = s.db.Rebind(query)

	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches keyword literally anywhere in the column
func likePattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}

// SearchProducts matches keyword against title and description
func (s *Store) SearchProducts(ctx context.Context, keyword string) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		productColumns+` WHERE p.title ILIKE $1 ESCAPE '\' OR p.description ILIKE $1 ESCAPE '\' ORDER BY p.title ASC`,
		likePattern(keyword))
	return products, err
}

// GetProduct retrieves a product by ID
func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, productColumns+" WHERE p.id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a product
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = uuid.New().String()
	query := `
		INSERT INTO products (id, title, description, image, category_id, brand_id,
		                      price, sale_price, total_stock, average_review)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		product.ID, product.Title, product.Description, product.Image, product.CategoryID, product.BrandID,
		product.Price, product.SalePrice, product.TotalStock, product.AverageReview,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
}

// UpdateProduct overwrites the editable fields of a product
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET title = $1, description = $2, image = $3, category_id = $4, brand_id = $5,
		    price = $6, sale_price = $7, total_stock = $8, average_review = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		product.Title, product.Description, product.Image, product.CategoryID, product.BrandID,
		product.Price, product.SalePrice, product.TotalStock, product.AverageReview, product.ID,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("product %s: %w", product.ID, store.ErrNotFound)
	}
	return err
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("product %s", id))
}

// SetAverageReview stores a recomputed review average
func (s *Store) SetAverageReview(ctx context.Context, productID string, average float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET average_review = $1, updated_at = NOW() WHERE id = $2", average, productID)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("product %s", productID))
}

// GetCategoryBySlug resolves a category slug
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := s.db.GetContext(ctx, &category, "SELECT id, name, slug FROM categories WHERE slug = $1", slug)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %s: %w", slug, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetBrandBySlug resolves a brand slug
func (s *Store) GetBrandBySlug(ctx context.Context, slug string) (*models.Brand, error) {
	var brand models.Brand
	err := s.db.GetContext(ctx, &brand, "SELECT id, name, slug FROM brands WHERE slug = $1", slug)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("brand %s: %w", slug, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

// ListCategories returns all categories
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.db.SelectContext(ctx, &categories, "SELECT id, name, slug FROM categories ORDER BY name")
	return categories, err
}

// ListBrands returns all brands
func (s *Store) ListBrands(ctx context.Context) ([]models.Brand, error) {
	brands := []models.Brand{}
	err := s.db.SelectContext(ctx, &brands, "SELECT id, name, slug FROM brands ORDER BY name")
	return brands, err
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return nil
}
