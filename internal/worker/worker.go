package worker

import (
	"context"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Feed message types
const (
	FeedOrderPlaced        = "order_placed"
	FeedOrderStatusChanged = "order_status_changed"
)

// Mailer sends order confirmation email
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, recipient, customerName string, event *models.OrderPlacedEvent) error
}

// Broadcaster pushes live updates to admin dashboards
type Broadcaster interface {
	Broadcast(msgType string, data interface{}) error
}

// NotificationWorker emails customers and feeds admin dashboards from order events
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	users        store.UserStore
	mailer       Mailer
	feed         Broadcaster
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker; mailer and feed may be nil
func NewNotificationWorker(
	consumer *broker.Consumer,
	users store.UserStore,
	mailer Mailer,
	feed Broadcaster,
) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		users:    users,
		mailer:   mailer,
		feed:     feed,
		logger:   util.GetLogger(),
	}

	w.eventHandler = broker.NewEventHandler()
	w.eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	w.eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	return w
}

func (w *NotificationWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	ctx, span := util.StartSpan(ctx, "NotificationWorker.OrderPlaced")
	defer span.End()

	if w.mailer != nil {
		user, err := w.users.GetUser(ctx, event.UserID)
		if err != nil {
			w.logger.Warn("Order owner lookup failed",
				zap.String("order_id", event.OrderID),
				zap.String("user_id", event.UserID),
				zap.Error(err))
		} else if err := w.mailer.SendOrderConfirmation(ctx, user.Email, user.UserName, event); err != nil {
			w.logger.Error("Failed to send order confirmation",
				zap.String("order_id", event.OrderID),
				zap.Error(err))
		}
	}

	w.broadcast(FeedOrderPlaced, event)
	return nil
}

func (w *NotificationWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	w.broadcast(FeedOrderStatusChanged, event)
	return nil
}

func (w *NotificationWorker) broadcast(msgType string, data interface{}) {
	if w.feed == nil {
		return
	}
	if err := w.feed.Broadcast(msgType, data); err != nil {
		w.logger.Warn("Feed broadcast failed", zap.String("type", msgType), zap.Error(err))
	}
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

// RatingWorker recomputes product averages from review events
type RatingWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewRatingWorker creates a new rating worker
func NewRatingWorker(consumer *broker.Consumer, ratings *service.RatingService) *RatingWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnReviewAdded(ratings.HandleReviewAdded)

	return &RatingWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       util.GetLogger(),
	}
}

// Start starts the rating worker
func (rw *RatingWorker) Start(ctx context.Context) error {
	rw.logger.Info("Starting rating worker")
	return rw.consumer.StartConsuming(ctx, rw.eventHandler.HandleMessage)
}

// Stop stops the rating worker
func (rw *RatingWorker) Stop() error {
	rw.logger.Info("Stopping rating worker")
	return rw.consumer.Close()
}
