package memory

import (
	"context"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addProduct(t *testing.T, s *Store, title, category string, price int64) *models.Product {
	t.Helper()
	ctx := context.Background()

	p := &models.Product{Title: title, Price: decimal.NewFromInt(price)}
	if category != "" {
		c, err := s.GetCategoryBySlug(ctx, category)
		require.NoError(t, err)
		p.CategoryID = &c.ID
	}
	require.NoError(t, s.CreateProduct(ctx, p))
	return p
}

func TestListProductsFilterAndSort(t *testing.T) {
	s := New()
	ctx := context.Background()

	addProduct(t, s, "Shirt", "men", 20)
	addProduct(t, s, "Jacket", "men", 30)
	addProduct(t, s, "Socks", "men", 10)
	addProduct(t, s, "Dress", "women", 50)
	addProduct(t, s, "Skirt", "women", 5)

	products, err := s.ListProducts(ctx, store.ProductFilter{
		Categories: []string{"men"},
		Sort:       store.ParseSortKey("price-hightolow"),
	})
	require.NoError(t, err)
	require.Len(t, products, 3)

	var prices []string
	for _, p := range products {
		assert.Equal(t, "men", p.Category)
		prices = append(prices, p.Price.String())
	}
	assert.Equal(t, []string{"30", "20", "10"}, prices)
}

func TestListProductsTitleSort(t *testing.T) {
	s := New()
	ctx := context.Background()

	addProduct(t, s, "b", "", 1)
	addProduct(t, s, "a", "", 2)
	addProduct(t, s, "c", "", 3)

	products, err := s.ListProducts(ctx, store.ProductFilter{Sort: store.SortTitleDesc})
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "c", products[0].Title)
	assert.Equal(t, "a", products[2].Title)
}

func TestAddCartItemMerges(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := addProduct(t, s, "Shirt", "men", 20)

	require.NoError(t, s.AddCartItem(ctx, "u1", p.ID, 2))
	require.NoError(t, s.AddCartItem(ctx, "u1", p.ID, 3))

	lines, err := s.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "Shirt", lines[0].Title)
}

func TestGetCartReflectsLivePrice(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := addProduct(t, s, "Shirt", "men", 20)
	require.NoError(t, s.AddCartItem(ctx, "u1", p.ID, 1))

	p.Price = decimal.NewFromInt(25)
	require.NoError(t, s.UpdateProduct(ctx, p))

	lines, err := s.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Price.Equal(decimal.NewFromInt(25)))
}

func TestRemoveCartItemIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := addProduct(t, s, "Shirt", "men", 20)
	require.NoError(t, s.AddCartItem(ctx, "u1", p.ID, 1))

	assert.NoError(t, s.RemoveCartItem(ctx, "u1", p.ID))
	assert.NoError(t, s.RemoveCartItem(ctx, "u1", p.ID))
	assert.NoError(t, s.RemoveCartItem(ctx, "u2", "missing"))

	lines, err := s.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestUpdateCartItemNotFound(t *testing.T) {
	s := New()
	err := s.UpdateCartItem(context.Background(), "u1", "p1", 2)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddressQuotaNotEnforced(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, s.CreateAddress(ctx, &models.Address{UserID: "u1", Address: "street", City: "c", Pincode: "1", Phone: "2"}))
	}

	addresses, err := s.ListAddresses(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, addresses, 4)
}

func TestAddressScopedByOwner(t *testing.T) {
	s := New()
	ctx := context.Background()

	a := &models.Address{UserID: "u1", Address: "street", City: "c", Pincode: "1", Phone: "2"}
	require.NoError(t, s.CreateAddress(ctx, a))

	err := s.DeleteAddress(ctx, "u2", a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.UpdateAddress(ctx, &models.Address{ID: a.ID, UserID: "u2", City: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NoError(t, s.DeleteAddress(ctx, "u1", a.ID))
}

func TestOrdersNewestFirstAndPurchaseCheck(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := &models.Order{UserID: "u1", Items: []models.OrderItem{{ProductID: "p1", Quantity: 1}}}
	second := &models.Order{UserID: "u1", Items: []models.OrderItem{{ProductID: "p2", Quantity: 1}}}
	require.NoError(t, s.CreateOrder(ctx, first))
	require.NoError(t, s.CreateOrder(ctx, second))

	orders, err := s.ListOrdersByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)

	bought, err := s.HasPurchased(ctx, "u1", "p2")
	require.NoError(t, err)
	assert.True(t, bought)

	bought, err = s.HasPurchased(ctx, "u2", "p2")
	require.NoError(t, err)
	assert.False(t, bought)
}

func TestDuplicateReviewRejected(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateReview(ctx, &models.Review{ProductID: "p1", UserID: "u1", ReviewValue: 4}))
	require.NoError(t, s.CreateReview(ctx, &models.Review{ProductID: "p1", UserID: "u2", ReviewValue: 2}))
	err := s.CreateReview(ctx, &models.Review{ProductID: "p1", UserID: "u1", ReviewValue: 5})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	avg, err := s.AverageRating(ctx, "p1")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, avg, 0.001)
}

func TestDuplicateEmailRejected(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Email: "a@example.com"}))
	err := s.CreateUser(ctx, &models.User{Email: "A@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}
