package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered shopper or administrator
type User struct {
	ID           string    `db:"id" json:"id"`
	UserName     string    `db:"user_name" json:"userName"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Category is catalog reference data addressed by slug
type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

// Brand is catalog reference data addressed by slug
type Brand struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

// Product represents a product in the catalog
type Product struct {
	ID            string          `db:"id" json:"_id"`
	Title         string          `db:"title" json:"title"`
	Description   string          `db:"description" json:"description"`
	Image         string          `db:"image" json:"image"`
	CategoryID    *string         `db:"category_id" json:"-"`
	BrandID       *string         `db:"brand_id" json:"-"`
	Category      string          `db:"category" json:"category"`
	Brand         string          `db:"brand" json:"brand"`
	Price         decimal.Decimal `db:"price" json:"price"`
	SalePrice     decimal.Decimal `db:"sale_price" json:"salePrice"`
	TotalStock    int             `db:"total_stock" json:"totalStock"`
	AverageReview float64         `db:"average_review" json:"averageReview"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// EffectivePrice returns the sale price when one is set
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.IsPositive() {
		return p.SalePrice
	}
	return p.Price
}

// CartItem is one (user, product) row of a cart
type CartItem struct {
	UserID    string    `db:"user_id" json:"userId"`
	ProductID string    `db:"product_id" json:"productId"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// CartLine is a cart row joined with live product data
type CartLine struct {
	ProductID string          `db:"product_id" json:"productId"`
	Image     string          `db:"image" json:"image"`
	Title     string          `db:"title" json:"title"`
	Price     decimal.Decimal `db:"price" json:"price"`
	SalePrice decimal.Decimal `db:"sale_price" json:"salePrice"`
	Quantity  int             `db:"quantity" json:"quantity"`
}

// Cart is the full view of a user's cart
type Cart struct {
	UserID string     `json:"userId"`
	Items  []CartLine `json:"items"`
}

// Address is a saved shipping address
type Address struct {
	ID        string    `db:"id" json:"_id"`
	UserID    string    `db:"user_id" json:"userId"`
	Address   string    `db:"address" json:"address"`
	City      string    `db:"city" json:"city"`
	Pincode   string    `db:"pincode" json:"pincode"`
	Phone     string    `db:"phone" json:"phone"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// ShippingAddress is the address copy stored on an order
type ShippingAddress struct {
	AddressID string `db:"address_id" json:"addressId"`
	Address   string `db:"address" json:"address"`
	City      string `db:"city" json:"city"`
	Pincode   string `db:"pincode" json:"pincode"`
	Phone     string `db:"phone" json:"phone"`
	Notes     string `db:"notes" json:"notes"`
}

// Order represents a customer order
type Order struct {
	ID             string          `db:"id" json:"_id"`
	UserID         string          `db:"user_id" json:"userId"`
	Items          []OrderItem     `db:"-" json:"cartItems"`
	AddressInfo    ShippingAddress `db:"-" json:"addressInfo"`
	OrderStatus    string          `db:"order_status" json:"orderStatus"`
	PaymentMethod  string          `db:"payment_method" json:"paymentMethod"`
	PaymentStatus  string          `db:"payment_status" json:"paymentStatus"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"totalAmount"`
	IdempotencyKey string          `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"orderDate"`
	UpdatedAt      time.Time       `db:"updated_at" json:"orderUpdateDate"`
}

// OrderItem is a product snapshot taken at purchase time
type OrderItem struct {
	ID        string          `db:"id" json:"-"`
	OrderID   string          `db:"order_id" json:"-"`
	ProductID string          `db:"product_id" json:"productId"`
	Title     string          `db:"title" json:"title"`
	Image     string          `db:"image" json:"image"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Quantity  int             `db:"quantity" json:"quantity"`
}

// Review is a single user's review of a product
type Review struct {
	ID            string    `db:"id" json:"_id"`
	ProductID     string    `db:"product_id" json:"productId"`
	UserID        string    `db:"user_id" json:"userId"`
	UserName      string    `db:"user_name" json:"userName"`
	ReviewMessage string    `db:"review_message" json:"reviewMessage"`
	ReviewValue   int       `db:"review_value" json:"reviewValue"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// Payment methods
const (
	PaymentMethodCOD = "cod"
)

// Payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// DefaultCategories seeds catalog reference data
var DefaultCategories = []Category{
	{Name: "Men", Slug: "men"},
	{Name: "Women", Slug: "women"},
	{Name: "Kids", Slug: "kids"},
	{Name: "Accessories", Slug: "accessories"},
	{Name: "Footwear", Slug: "footwear"},
}

// DefaultBrands seeds catalog reference data
var DefaultBrands = []Brand{
	{Name: "Nike", Slug: "nike"},
	{Name: "Adidas", Slug: "adidas"},
	{Name: "Puma", Slug: "puma"},
	{Name: "Levi's", Slug: "levi"},
	{Name: "Zara", Slug: "zara"},
	{Name: "H&M", Slug: "h&m"},
}
