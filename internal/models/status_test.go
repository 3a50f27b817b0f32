package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from   string
		to     string
		expect bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusRejected, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusConfirmed, OrderStatusInProcess, true},
		{OrderStatusConfirmed, OrderStatusInShipping, true},
		{OrderStatusInProcess, OrderStatusInShipping, true},
		{OrderStatusInShipping, OrderStatusDelivered, true},
		{OrderStatusInShipping, OrderStatusRejected, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusRejected, OrderStatusConfirmed, false},
		{OrderStatusConfirmed, "shipped-by-hand", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			order := &Order{OrderStatus: tt.from}
			assert.Equal(t, tt.expect, order.CanTransitionTo(tt.to))
		})
	}
}

func TestInitialStatuses(t *testing.T) {
	orderStatus, paymentStatus := InitialStatuses(PaymentMethodCOD)
	assert.Equal(t, OrderStatusConfirmed, orderStatus)
	assert.Equal(t, PaymentStatusPending, paymentStatus)

	orderStatus, paymentStatus = InitialStatuses("paypal")
	assert.Equal(t, OrderStatusPending, orderStatus)
	assert.Equal(t, PaymentStatusPending, paymentStatus)
}

func TestIsOrderStatus(t *testing.T) {
	assert.True(t, IsOrderStatus(OrderStatusInShipping))
	assert.False(t, IsOrderStatus("CONFIRMED"))
}
