package models

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusInProcess  = "inProcess"
	OrderStatusInShipping = "inShipping"
	OrderStatusDelivered  = "delivered"
	OrderStatusRejected   = "rejected"
)

var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusRejected},
	OrderStatusConfirmed:  {OrderStatusInProcess, OrderStatusInShipping, OrderStatusRejected},
	OrderStatusInProcess:  {OrderStatusInShipping, OrderStatusRejected},
	OrderStatusInShipping: {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusRejected:   {},
}

// IsOrderStatus reports whether status is a known order status
func IsOrderStatus(status string) bool {
	_, ok := orderTransitions[status]
	return ok
}

// CanTransitionTo reports whether the order may move to target
func (o *Order) CanTransitionTo(target string) bool {
	for _, allowed := range orderTransitions[o.OrderStatus] {
		if allowed == target {
			return true
		}
	}
	return false
}

// InitialStatuses returns the order and payment status of a new order
func InitialStatuses(paymentMethod string) (orderStatus, paymentStatus string) {
	if paymentMethod == PaymentMethodCOD {
		return OrderStatusConfirmed, PaymentStatusPending
	}
	return OrderStatusPending, PaymentStatusPending
}
