package store

import (
	"context"
	"errors"
	"strings"

	"storefront-service/internal/models"
)

var (
	// ErrNotFound is wrapped by backends when no row matches
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is wrapped by backends on a uniqueness violation
	ErrDuplicate = errors.New("duplicate")
)

// SortKey orders product listings
type SortKey string

const (
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortTitleAsc  SortKey = "title-asc"
	SortTitleDesc SortKey = "title-desc"
)

var sortAliases = map[string]SortKey{
	"price-asc":       SortPriceAsc,
	"price-lowtohigh": SortPriceAsc,
	"price-desc":      SortPriceDesc,
	"price-hightolow": SortPriceDesc,
	"title-asc":       SortTitleAsc,
	"title-atoz":      SortTitleAsc,
	"title-desc":      SortTitleDesc,
	"title-ztoa":      SortTitleDesc,
}

// ParseSortKey maps a sortBy query value to a SortKey, defaulting to price-asc
func ParseSortKey(s string) SortKey {
	if key, ok := sortAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return key
	}
	return SortPriceAsc
}

// ProductFilter restricts a product listing by category and brand slugs
type ProductFilter struct {
	Categories []string
	Brands     []string
	Sort       SortKey
}

// CatalogStore holds products and their reference data
type CatalogStore interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	SearchProducts(ctx context.Context, keyword string) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	SetAverageReview(ctx context.Context, productID string, average float64) error
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetBrandBySlug(ctx context.Context, slug string) (*models.Brand, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)
}

// CartStore holds per-user cart rows
type CartStore interface {
	AddCartItem(ctx context.Context, userID, productID string, quantity int) error
	GetCart(ctx context.Context, userID string) ([]models.CartLine, error)
	UpdateCartItem(ctx context.Context, userID, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error
}

// AddressStore holds saved shipping addresses
type AddressStore interface {
	CreateAddress(ctx context.Context, address *models.Address) error
	ListAddresses(ctx context.Context, userID string) ([]models.Address, error)
	UpdateAddress(ctx context.Context, address *models.Address) error
	DeleteAddress(ctx context.Context, userID, addressID string) error
}

// OrderStore holds orders with their item snapshots
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	DeleteOrder(ctx context.Context, id string) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, orderStatus, paymentStatus string) error
	HasPurchased(ctx context.Context, userID, productID string) (bool, error)
}

// ReviewStore holds product reviews
type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.Review) error
	HasReviewed(ctx context.Context, productID, userID string) (bool, error)
	ListReviews(ctx context.Context, productID string) ([]models.Review, error)
	AverageRating(ctx context.Context, productID string) (float64, error)
}

// UserStore holds registered users
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store is the full set of entity stores offered by a backend
type Store interface {
	CatalogStore
	CartStore
	AddressStore
	OrderStore
	ReviewStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}

// SplitSlugs parses a comma separated slug list, dropping blanks
func SplitSlugs(s string) []string {
	if s == "" {
		return nil
	}
	var slugs []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			slugs = append(slugs, part)
		}
	}
	return slugs
}
