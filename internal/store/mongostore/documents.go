package mongostore

import (
	"time"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

type refDoc struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
	Slug string `bson:"slug"`
}

type productDoc struct {
	ID            string               `bson:"_id"`
	Title         string               `bson:"title"`
	Description   string               `bson:"description"`
	Image         string               `bson:"image"`
	CategoryID    *string              `bson:"categoryId,omitempty"`
	BrandID       *string              `bson:"brandId,omitempty"`
	Price         primitive.Decimal128 `bson:"price"`
	SalePrice     primitive.Decimal128 `bson:"salePrice"`
	TotalStock    int                  `bson:"totalStock"`
	AverageReview float64              `bson:"averageReview"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

func newProductDoc(p *models.Product) productDoc {
	return productDoc{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Image:         p.Image,
		CategoryID:    p.CategoryID,
		BrandID:       p.BrandID,
		Price:         toDecimal128(p.Price),
		SalePrice:     toDecimal128(p.SalePrice),
		TotalStock:    p.TotalStock,
		AverageReview: p.AverageReview,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (d productDoc) toModel() models.Product {
	return models.Product{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		Image:         d.Image,
		CategoryID:    d.CategoryID,
		BrandID:       d.BrandID,
		Price:         fromDecimal128(d.Price),
		SalePrice:     fromDecimal128(d.SalePrice),
		TotalStock:    d.TotalStock,
		AverageReview: d.AverageReview,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type cartDoc struct {
	UserID    string    `bson:"userId"`
	ProductID string    `bson:"productId"`
	Quantity  int       `bson:"quantity"`
	CreatedAt time.Time `bson:"createdAt"`
}

type addressDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Address   string    `bson:"address"`
	City      string    `bson:"city"`
	Pincode   string    `bson:"pincode"`
	Phone     string    `bson:"phone"`
	Notes     string    `bson:"notes"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d addressDoc) toModel() models.Address {
	return models.Address(d)
}

type orderItemDoc struct {
	ID        string               `bson:"_id"`
	ProductID string               `bson:"productId"`
	Title     string               `bson:"title"`
	Image     string               `bson:"image"`
	Price     primitive.Decimal128 `bson:"price"`
	Quantity  int                  `bson:"quantity"`
}

type shippingDoc struct {
	AddressID string `bson:"addressId"`
	Address   string `bson:"address"`
	City      string `bson:"city"`
	Pincode   string `bson:"pincode"`
	Phone     string `bson:"phone"`
	Notes     string `bson:"notes"`
}

type orderDoc struct {
	ID             string               `bson:"_id"`
	UserID         string               `bson:"userId"`
	Items          []orderItemDoc       `bson:"items"`
	AddressInfo    shippingDoc          `bson:"addressInfo"`
	OrderStatus    string               `bson:"orderStatus"`
	PaymentMethod  string               `bson:"paymentMethod"`
	PaymentStatus  string               `bson:"paymentStatus"`
	TotalAmount    primitive.Decimal128 `bson:"totalAmount"`
	IdempotencyKey string               `bson:"idempotencyKey,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

func newOrderDoc(o *models.Order) orderDoc {
	items := make([]orderItemDoc, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemDoc{
			ID:        item.ID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Image:     item.Image,
			Price:     toDecimal128(item.Price),
			Quantity:  item.Quantity,
		}
	}
	return orderDoc{
		ID:             o.ID,
		UserID:         o.UserID,
		Items:          items,
		AddressInfo:    shippingDoc(o.AddressInfo),
		OrderStatus:    o.OrderStatus,
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  o.PaymentStatus,
		TotalAmount:    toDecimal128(o.TotalAmount),
		IdempotencyKey: o.IdempotencyKey,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (d orderDoc) toModel() models.Order {
	items := make([]models.OrderItem, len(d.Items))
	for i, item := range d.Items {
		items[i] = models.OrderItem{
			ID:        item.ID,
			OrderID:   d.ID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Image:     item.Image,
			Price:     fromDecimal128(item.Price),
			Quantity:  item.Quantity,
		}
	}
	return models.Order{
		ID:             d.ID,
		UserID:         d.UserID,
		Items:          items,
		AddressInfo:    models.ShippingAddress(d.AddressInfo),
		OrderStatus:    d.OrderStatus,
		PaymentMethod:  d.PaymentMethod,
		PaymentStatus:  d.PaymentStatus,
		TotalAmount:    fromDecimal128(d.TotalAmount),
		IdempotencyKey: d.IdempotencyKey,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type reviewDoc struct {
	ID            string    `bson:"_id"`
	ProductID     string    `bson:"productId"`
	UserID        string    `bson:"userId"`
	UserName      string    `bson:"userName"`
	ReviewMessage string    `bson:"reviewMessage"`
	ReviewValue   int       `bson:"reviewValue"`
	CreatedAt     time.Time `bson:"createdAt"`
}

type userDoc struct {
	ID           string    `bson:"_id"`
	UserName     string    `bson:"userName"`
	Email        string    `bson:"email"`
	EmailKey     string    `bson:"emailKey"`
	PasswordHash string    `bson:"passwordHash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"createdAt"`
}
