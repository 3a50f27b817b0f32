package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	msgOrderNotFound  = "Order not found"
	msgOrderPlacedCOD = "Order placed successfully with Cash on Delivery"
	msgOrderCreated   = "Order created successfully"
	msgPlacementInUse = "Another order is being placed, please retry"
	placementLockTTL  = 30 * time.Second
	defaultIdemKeyTTL = 24 * time.Hour
)

// OrderService handles order placement and fulfilment
type OrderService struct {
	orders         store.OrderStore
	carts          store.CartStore
	guard          PlacementGuard
	eventPublisher EventPublisher
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewOrderService creates a new order service; guard and eventPublisher may be nil
func NewOrderService(
	orders store.OrderStore,
	carts store.CartStore,
	guard PlacementGuard,
	eventPublisher EventPublisher,
	idempotencyTTL time.Duration,
) *OrderService {
	if idempotencyTTL <= 0 {
		idempotencyTTL = defaultIdemKeyTTL
	}
	return &OrderService{
		orders:         orders,
		carts:          carts,
		guard:          guard,
		eventPublisher: eventPublisher,
		idempotencyTTL: idempotencyTTL,
		logger:         util.GetLogger(),
	}
}

// PlaceOrderRequest represents a checkout submitted by a client
type PlaceOrderRequest struct {
	UserID         string                 `json:"userId"`
	CartItems      []OrderItemRequest     `json:"cartItems"`
	AddressInfo    models.ShippingAddress `json:"addressInfo"`
	PaymentMethod  string                 `json:"paymentMethod"`
	TotalAmount    *decimal.Decimal       `json:"totalAmount"`
	IdempotencyKey string                 `json:"-"`
}

// OrderItemRequest is one cart line as seen by the client at checkout
type OrderItemRequest struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// PlaceOrderResult describes a placed order
type PlaceOrderResult struct {
	Order   *models.Order
	Message string
	Replay  bool
}

func (r *PlaceOrderRequest) validate() error {
	if r.UserID == "" || len(r.CartItems) == 0 || r.TotalAmount == nil || r.TotalAmount.IsNegative() {
		return apperr.InvalidInput("Invalid data provided!")
	}
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return apperr.InvalidInput("Payment method is required!")
	}
	a := r.AddressInfo
	if a.Address == "" || a.City == "" || a.Pincode == "" || a.Phone == "" {
		return apperr.InvalidInput("Address is required!")
	}
	for _, item := range r.CartItems {
		if item.ProductID == "" || item.Quantity <= 0 || item.Price.IsNegative() {
			return apperr.InvalidInput("Invalid data provided!")
		}
	}
	return nil
}

func placementMessage(paymentMethod string) string {
	if paymentMethod == models.PaymentMethodCOD {
		return msgOrderPlacedCOD
	}
	return msgOrderCreated
}

func idempotencyRedisKey(userID, key string) string {
	return fmt.Sprintf("order:%s:%s", userID, key)
}

// PlaceOrder stores the order with its item snapshots; cod orders also clear the cart
func (s *OrderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResult, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderPlacementLatency.Observe(time.Since(start).Seconds())
	}()

	if err := req.validate(); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	if req.IdempotencyKey != "" {
		existing, err := s.findReplay(ctx, req.UserID, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.logger.Info("Duplicate order request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("order_id", existing.ID))
			return &PlaceOrderResult{Order: existing, Message: placementMessage(existing.PaymentMethod), Replay: true}, nil
		}
	}

	if s.guard != nil {
		lockKey := "order-placement:" + req.UserID
		acquired, err := s.guard.AcquireLock(ctx, lockKey, placementLockTTL)
		if err != nil {
			s.logger.Warn("Placement lock unavailable", zap.String("user_id", req.UserID), zap.Error(err))
		} else if !acquired {
			util.OrdersFailedTotal.WithLabelValues("concurrent").Inc()
			return nil, apperr.Conflict(msgPlacementInUse)
		} else {
			defer func() {
				if err := s.guard.ReleaseLock(context.Background(), lockKey); err != nil {
					s.logger.Warn("Failed to release placement lock", zap.Error(err))
				}
			}()
		}
	}

	order := s.buildOrder(req)

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, store.ErrDuplicate) && req.IdempotencyKey != "" {
			existing, lookupErr := s.orders.GetOrderByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey)
			if lookupErr == nil && existing != nil {
				return &PlaceOrderResult{Order: existing, Message: placementMessage(existing.PaymentMethod), Replay: true}, nil
			}
		}
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, apperr.Store(fmt.Errorf("failed to create order: %w", err))
	}

	if order.PaymentMethod == models.PaymentMethodCOD {
		if err := s.carts.ClearCart(ctx, order.UserID); err != nil {
			s.compensateOrder(ctx, order.ID)
			util.OrdersFailedTotal.WithLabelValues("cart_clear_failed").Inc()
			return nil, apperr.Store(fmt.Errorf("failed to clear cart: %w", err))
		}
	}

	if s.guard != nil && req.IdempotencyKey != "" {
		if err := s.guard.SetIdempotencyKey(ctx, idempotencyRedisKey(req.UserID, req.IdempotencyKey), order.ID, s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to record idempotency key", zap.Error(err))
		}
	}

	util.OrdersPlacedTotal.WithLabelValues(order.PaymentMethod).Inc()
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("payment_method", order.PaymentMethod),
		zap.Int("items", len(order.Items)))

	s.publishOrderPlaced(ctx, order)

	return &PlaceOrderResult{Order: order, Message: placementMessage(order.PaymentMethod)}, nil
}

func (s *OrderService) buildOrder(req *PlaceOrderRequest) *models.Order {
	orderStatus, paymentStatus := models.InitialStatuses(req.PaymentMethod)

	items := make([]models.OrderItem, len(req.CartItems))
	for i, line := range req.CartItems {
		items[i] = models.OrderItem{
			ProductID: line.ProductID,
			Title:     line.Title,
			Image:     line.Image,
			Price:     line.Price,
			Quantity:  line.Quantity,
		}
	}

	return &models.Order{
		UserID:         req.UserID,
		Items:          items,
		AddressInfo:    req.AddressInfo,
		OrderStatus:    orderStatus,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  paymentStatus,
		TotalAmount:    *req.TotalAmount,
		IdempotencyKey: req.IdempotencyKey,
	}
}

// findReplay returns the order previously placed under key, if any
func (s *OrderService) findReplay(ctx context.Context, userID, key string) (*models.Order, error) {
	if s.guard != nil {
		orderID, err := s.guard.GetIdempotencyKey(ctx, idempotencyRedisKey(userID, key))
		if err != nil {
			s.logger.Warn("Idempotency lookup failed", zap.Error(err))
		} else if orderID != "" {
			order, err := s.orders.GetOrder(ctx, orderID)
			if err == nil {
				return order, nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, apperr.Store(err)
			}
		}
	}

	order, err := s.orders.GetOrderByIdempotencyKey(ctx, userID, key)
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("failed to check idempotency: %w", err))
	}
	return order, nil
}

// compensateOrder removes an order whose placement could not complete
func (s *OrderService) compensateOrder(ctx context.Context, orderID string) {
	util.OrderCompensationsTotal.Inc()
	if err := s.orders.DeleteOrder(context.WithoutCancel(ctx), orderID); err != nil {
		s.logger.Error("Failed to compensate order",
			zap.String("order_id", orderID),
			zap.Error(err))
		return
	}
	s.logger.Warn("Order compensated", zap.String("order_id", orderID))
}

func (s *OrderService) publishOrderPlaced(ctx context.Context, order *models.Order) {
	if s.eventPublisher == nil {
		return
	}

	items := make([]models.OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = models.OrderItemData{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:       order.ID,
		UserID:        order.UserID,
		OrderStatus:   order.OrderStatus,
		PaymentMethod: order.PaymentMethod,
		TotalAmount:   order.TotalAmount,
		Items:         items,
	}

	if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.String("order_id", order.ID), zap.Error(err))
	}
}

// ListOrders returns a user's orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	if userID == "" {
		return nil, apperr.InvalidInput("User id is required!")
	}

	orders, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// ListAllOrders returns every order, newest first
func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListAllOrders")
	defer span.End()

	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, storeError(err, "")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetOrderDetail retrieves an order with its items
func (s *OrderService) GetOrderDetail(ctx context.Context, orderID string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrderDetail")
	defer span.End()

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, storeError(err, msgOrderNotFound)
	}
	return order, nil
}

// UpdateOrderStatus moves an order along the fulfilment state machine
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	if !models.IsOrderStatus(status) {
		return nil, apperr.InvalidInput("Invalid order status")
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, storeError(err, msgOrderNotFound)
	}

	if order.OrderStatus == status {
		return order, nil
	}
	if !order.CanTransitionTo(status) {
		return nil, apperr.InvalidInput(fmt.Sprintf("Cannot change order status from %s to %s", order.OrderStatus, status))
	}

	paymentStatus := order.PaymentStatus
	if status == models.OrderStatusDelivered && order.PaymentMethod == models.PaymentMethodCOD {
		paymentStatus = models.PaymentStatusPaid
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, status, paymentStatus); err != nil {
		return nil, storeError(err, msgOrderNotFound)
	}

	from := order.OrderStatus
	order.OrderStatus = status
	order.PaymentStatus = paymentStatus
	order.UpdatedAt = time.Now()

	util.OrderStatusTransitionsTotal.WithLabelValues(from, status).Inc()
	s.logger.Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("from", from),
		zap.String("to", status))

	if s.eventPublisher != nil {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderStatusChanged,
				Timestamp: time.Now(),
			},
			OrderID:       orderID,
			UserID:        order.UserID,
			FromStatus:    from,
			ToStatus:      status,
			PaymentStatus: paymentStatus,
		}
		if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderStatusChanged event", zap.String("order_id", orderID), zap.Error(err))
		}
	}

	return order, nil
}
