package service

import (
	"context"
	"fmt"
	"testing"

	"storefront-service/internal/apperr"
	"storefront-service/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addressInput(userID string, n int) *AddressInput {
	return &AddressInput{
		UserID:  userID,
		Address: fmt.Sprintf("%d Main Street", n),
		City:    "Pune",
		Pincode: "411001",
		Phone:   "9999999999",
	}
}

func TestAddAddressQuotaNotEnforced(t *testing.T) {
	ctx := context.Background()
	svc := NewAddressService(memory.New())

	for i := 1; i <= 4; i++ {
		_, err := svc.AddAddress(ctx, addressInput("u1", i))
		require.NoError(t, err, "address %d", i)
	}

	addresses, err := svc.ListAddresses(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, addresses, 4)
}

func TestAddAddressRequiresFields(t *testing.T) {
	in := addressInput("u1", 1)
	in.Phone = ""

	_, err := NewAddressService(memory.New()).AddAddress(context.Background(), in)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestUpdateAddressScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc := NewAddressService(memory.New())

	a, err := svc.AddAddress(ctx, addressInput("u1", 1))
	require.NoError(t, err)

	updated, err := svc.UpdateAddress(ctx, "u1", a.ID, &AddressInput{City: "Mumbai"})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.City)
	assert.Equal(t, "1 Main Street", updated.Address)

	_, err = svc.UpdateAddress(ctx, "u2", a.ID, &AddressInput{City: "Delhi"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = svc.DeleteAddress(ctx, "u2", a.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, svc.DeleteAddress(ctx, "u1", a.ID))
	addresses, err := svc.ListAddresses(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, addresses)
}
