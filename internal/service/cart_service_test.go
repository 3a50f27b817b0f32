package service

import (
	"context"
	"testing"

	"storefront-service/internal/apperr"
	"storefront-service/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddMerges(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	p1 := seedProduct(t, mem, "Shirt", "20.00")
	svc := NewCartService(mem, mem)

	_, err := svc.AddItem(ctx, "u1", p1.ID, 1)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, "u1", p1.ID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, "Shirt", cart.Items[0].Title)
}

func TestCartRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	p1 := seedProduct(t, mem, "Shirt", "20.00")
	svc := NewCartService(mem, mem)

	_, err := svc.AddItem(ctx, "u1", p1.ID, 0)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = svc.AddItem(ctx, "u1", "ghost", 1)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	assert.Equal(t, msgProductNotFound, apperr.PublicMessage(err))
}

func TestCartUpdateZeroLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	p1 := seedProduct(t, mem, "Shirt", "20.00")
	svc := NewCartService(mem, mem)

	_, err := svc.AddItem(ctx, "u1", p1.ID, 2)
	require.NoError(t, err)

	_, err = svc.UpdateItem(ctx, "u1", p1.ID, 0)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	cart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	_, err = svc.UpdateItem(ctx, "u1", "not-in-cart", 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCartRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	p1 := seedProduct(t, mem, "Shirt", "20.00")
	svc := NewCartService(mem, mem)

	_, err := svc.AddItem(ctx, "u1", p1.ID, 1)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		cart, err := svc.RemoveItem(ctx, "u1", p1.ID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	}
}
