package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

const (
	msgProductNotFound = "Product not found"
	minKeywordLength   = 3
)

// CatalogService handles product listing and administration
type CatalogService struct {
	store    store.CatalogStore
	cache    ProductCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service; cache may be nil
func NewCatalogService(catalog store.CatalogStore, cache ProductCache, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		store:    catalog,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// ProductInput carries the admin-editable product fields
type ProductInput struct {
	Image         string           `json:"image"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Brand         string           `json:"brand"`
	Price         *decimal.Decimal `json:"price"`
	SalePrice     *decimal.Decimal `json:"salePrice"`
	TotalStock    *int             `json:"totalStock"`
	AverageReview *float64         `json:"averageReview"`
}

// ListProducts returns the filtered, sorted catalog
func (s *CatalogService) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, storeError(err, "")
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// SearchProducts matches keyword against product titles and descriptions
func (s *CatalogService) SearchProducts(ctx context.Context, keyword string) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.SearchProducts")
	defer span.End()

	keyword = strings.TrimSpace(keyword)
	if len([]rune(keyword)) < minKeywordLength {
		return nil, apperr.InvalidInput("Keyword must be at least 3 characters long")
	}

	products, err := s.store.SearchProducts(ctx, keyword)
	if err != nil {
		return nil, storeError(err, "")
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProduct returns a product, served from cache when possible
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.GetCachedProduct(ctx, id)
		if err != nil {
			s.logger.Warn("Product cache read failed", zap.String("product_id", id), zap.Error(err))
		}
		if cached != nil {
			util.ProductCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		}
		util.ProductCacheTotal.WithLabelValues("miss").Inc()
	}

	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, storeError(err, msgProductNotFound)
	}

	if s.cache != nil {
		if err := s.cache.CacheProduct(ctx, product, s.cacheTTL); err != nil {
			s.logger.Warn("Product cache write failed", zap.String("product_id", id), zap.Error(err))
		}
	}
	return product, nil
}

// CreateProduct validates input and stores a new product
func (s *CatalogService) CreateProduct(ctx context.Context, in *ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	product := &models.Product{}
	if err := s.apply(ctx, product, in); err != nil {
		return nil, err
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, storeError(err, "")
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID))
	return product, nil
}

// UpdateProduct replaces the editable fields of a product
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in *ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, storeError(err, msgProductNotFound)
	}

	if err := s.apply(ctx, product, in); err != nil {
		return nil, err
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, storeError(err, msgProductNotFound)
	}
	s.invalidate(ctx, id)

	s.logger.Info("Product updated", zap.String("product_id", id))
	return product, nil
}

// DeleteProduct removes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProduct")
	defer span.End()

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return storeError(err, msgProductNotFound)
	}
	s.invalidate(ctx, id)

	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

// ListCategories returns category reference data
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	return categories, storeError(err, "")
}

// ListBrands returns brand reference data
func (s *CatalogService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	brands, err := s.store.ListBrands(ctx)
	return brands, storeError(err, "")
}

// ExportProducts renders the whole catalog as a spreadsheet
func (s *CatalogService) ExportProducts(ctx context.Context) (*xlsx.File, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ExportProducts")
	defer span.End()

	products, err := s.store.ListProducts(ctx, store.ProductFilter{Sort: store.SortTitleAsc})
	if err != nil {
		return nil, storeError(err, "")
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, apperr.Store(err)
	}

	header := sheet.AddRow()
	for _, title := range []string{"ID", "Title", "Category", "Brand", "Price", "Sale Price", "Total Stock", "Average Review"} {
		header.AddCell().SetValue(title)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Title)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Brand)
		row.AddCell().SetFloat(p.Price.InexactFloat64())
		row.AddCell().SetFloat(p.SalePrice.InexactFloat64())
		row.AddCell().SetInt(p.TotalStock)
		row.AddCell().SetFloat(p.AverageReview)
	}

	s.logger.Info("Catalog exported", zap.Int("products", len(products)))
	return file, nil
}

// RefreshAverage stores a recomputed average and drops the cached copy
func (s *CatalogService) RefreshAverage(ctx context.Context, productID string, average float64) error {
	if err := s.store.SetAverageReview(ctx, productID, average); err != nil {
		return storeError(err, msgProductNotFound)
	}
	s.invalidate(ctx, productID)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.Warn("Product cache invalidation failed", zap.String("product_id", id), zap.Error(err))
	}
}

// apply validates in and copies it onto product, resolving slugs to references
func (s *CatalogService) apply(ctx context.Context, product *models.Product, in *ProductInput) error {
	if in == nil || strings.TrimSpace(in.Title) == "" || in.Price == nil {
		return apperr.InvalidInput("Invalid data provided!")
	}
	if in.Price.IsNegative() ||
		(in.SalePrice != nil && in.SalePrice.IsNegative()) ||
		(in.TotalStock != nil && *in.TotalStock < 0) ||
		(in.AverageReview != nil && (*in.AverageReview < 0 || *in.AverageReview > 5)) {
		return apperr.InvalidInput("Invalid data provided!")
	}

	categoryID, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return err
	}
	brandID, err := s.resolveBrand(ctx, in.Brand)
	if err != nil {
		return err
	}

	product.Title = strings.TrimSpace(in.Title)
	product.Description = in.Description
	product.Image = in.Image
	product.CategoryID = categoryID
	product.BrandID = brandID
	product.Price = *in.Price
	product.SalePrice = decimal.Zero
	if in.SalePrice != nil {
		product.SalePrice = *in.SalePrice
	}
	product.TotalStock = 0
	if in.TotalStock != nil {
		product.TotalStock = *in.TotalStock
	}
	if in.AverageReview != nil {
		product.AverageReview = *in.AverageReview
	}
	return nil
}

func (s *CatalogService) resolveCategory(ctx context.Context, slug string) (*string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	category, err := s.store.GetCategoryBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.InvalidInput("Invalid category")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &category.ID, nil
}

func (s *CatalogService) resolveBrand(ctx context.Context, slug string) (*string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	brand, err := s.store.GetBrandBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.InvalidInput("Invalid brand")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &brand.ID, nil
}
