package mongostore

import (
	"context"
	"os"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal128RoundTrip(t *testing.T) {
	for _, s := range []string{"0", "19.99", "1234567.5"} {
		d := decimal.RequireFromString(s)
		assert.True(t, d.Equal(fromDecimal128(toDecimal128(d))), s)
	}
}

func TestOrderDocConversion(t *testing.T) {
	order := &models.Order{
		ID:          "o1",
		UserID:      "u1",
		TotalAmount: decimal.RequireFromString("40.00"),
		AddressInfo: models.ShippingAddress{City: "Pune"},
		Items: []models.OrderItem{
			{ID: "i1", ProductID: "p1", Title: "Shirt", Price: decimal.NewFromInt(20), Quantity: 2},
		},
	}

	back := newOrderDoc(order).toModel()
	assert.Equal(t, "Pune", back.AddressInfo.City)
	require.Len(t, back.Items, 1)
	assert.Equal(t, "o1", back.Items[0].OrderID)
	assert.True(t, back.TotalAmount.Equal(decimal.NewFromInt(40)))
}

func TestReviewLedger(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("Integration test - requires mongo")
	}

	ctx := context.Background()
	s, err := NewStore(ctx, uri, "storefront_test")
	require.NoError(t, err)
	defer s.Close()

	r := &models.Review{ProductID: "p-it", UserID: "u-it", UserName: "x", ReviewMessage: "ok", ReviewValue: 4}
	require.NoError(t, s.CreateReview(ctx, r))
	defer s.reviews.DeleteOne(ctx, map[string]string{"_id": r.ID})

	err = s.CreateReview(ctx, &models.Review{ProductID: "p-it", UserID: "u-it", ReviewValue: 2})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	avg, err := s.AverageRating(ctx, "p-it")
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 0.001)
}
