package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
)

// Store is an in-process backend guarded by a single mutex
type Store struct {
	mu sync.RWMutex

	categories []models.Category
	brands     []models.Brand
	products   map[string]models.Product
	cart       []models.CartItem
	addresses  []models.Address
	orders     []models.Order
	reviews    []models.Review
	users      map[string]models.User
}

var _ store.Store = (*Store)(nil)

// New creates an empty store seeded with the default categories and brands
func New() *Store {
	s := &Store{
		products: make(map[string]models.Product),
		users:    make(map[string]models.User),
	}
	for _, c := range models.DefaultCategories {
		c.ID = uuid.New().String()
		s.categories = append(s.categories, c)
	}
	for _, b := range models.DefaultBrands {
		b.ID = uuid.New().String()
		s.brands = append(s.brands, b)
	}
	return s
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

func (s *Store) categorySlug(id *string) string {
	if id == nil {
		return ""
	}
	for _, c := range s.categories {
		if c.ID == *id {
			return c.Slug
		}
	}
	return ""
}

func (s *Store) brandSlug(id *string) string {
	if id == nil {
		return ""
	}
	for _, b := range s.brands {
		if b.ID == *id {
			return b.Slug
		}
	}
	return ""
}

func (s *Store) withSlugs(p models.Product) models.Product {
	p.Category = s.categorySlug(p.CategoryID)
	p.Brand = s.brandSlug(p.BrandID)
	return p
}

func containsSlug(slugs []string, slug string) bool {
	for _, s := range slugs {
		if s == slug {
			return true
		}
	}
	return false
}

// ListProducts returns products matching the filter in the requested order
func (s *Store) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		p = s.withSlugs(p)
		if len(filter.Categories) > 0 && !containsSlug(filter.Categories, p.Category) {
			continue
		}
		if len(filter.Brands) > 0 && !containsSlug(filter.Brands, p.Brand) {
			continue
		}
		products = append(products, p)
	}

	sortProducts(products, filter.Sort)
	return products, nil
}

func sortProducts(products []models.Product, key store.SortKey) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch key {
		case store.SortPriceDesc:
			return a.Price.GreaterThan(b.Price)
		case store.SortTitleAsc:
			return a.Title < b.Title
		case store.SortTitleDesc:
			return a.Title > b.Title
		default:
			return a.Price.LessThan(b.Price)
		}
	})
}

// SearchProducts matches keyword against title and description, ignoring case
func (s *Store) SearchProducts(ctx context.Context, keyword string) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kw := strings.ToLower(keyword)
	products := []models.Product{}
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Title), kw) || strings.Contains(strings.ToLower(p.Description), kw) {
			products = append(products, s.withSlugs(p))
		}
	}
	sortProducts(products, store.SortTitleAsc)
	return products, nil
}

// GetProduct retrieves a product by ID
func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	p = s.withSlugs(p)
	return &p, nil
}

// CreateProduct stores a new product and assigns its ID
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	product.ID = uuid.New().String()
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = *product
	*product = s.withSlugs(*product)
	return nil
}

// UpdateProduct overwrites the editable fields of a product
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return fmt.Errorf("product %s: %w", product.ID, store.ErrNotFound)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	s.products[product.ID] = *product
	*product = s.withSlugs(*product)
	return nil
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	delete(s.products, id)
	return nil
}

// SetAverageReview stores a recomputed review average
func (s *Store) SetAverageReview(ctx context.Context, productID string, average float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	p.AverageReview = average
	s.products[productID] = p
	return nil
}

// GetCategoryBySlug resolves a category slug
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %s: %w", slug, store.ErrNotFound)
}

// GetBrandBySlug resolves a brand slug
func (s *Store) GetBrandBySlug(ctx context.Context, slug string) (*models.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.brands {
		if b.Slug == slug {
			b := b
			return &b, nil
		}
	}
	return nil, fmt.Errorf("brand %s: %w", slug, store.ErrNotFound)
}

// ListCategories returns all categories
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Category(nil), s.categories...), nil
}

// ListBrands returns all brands
func (s *Store) ListBrands(ctx context.Context) ([]models.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Brand(nil), s.brands...), nil
}
