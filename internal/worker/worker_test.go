package worker

import (
	"context"
	"encoding/json"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/store/memory"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	recipients []string
}

func (m *fakeMailer) SendOrderConfirmation(_ context.Context, recipient, _ string, _ *models.OrderPlacedEvent) error {
	m.recipients = append(m.recipients, recipient)
	return nil
}

type fakeFeed struct {
	types []string
}

func (f *fakeFeed) Broadcast(msgType string, _ interface{}) error {
	f.types = append(f.types, msgType)
	return nil
}

func encode(t *testing.T, event interface{}) kafka.Message {
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: payload}
}

func TestNotificationWorkerHandlesOrderEvents(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	user := &models.User{UserName: "alice", Email: "alice@example.com", Role: models.RoleUser}
	require.NoError(t, mem.CreateUser(ctx, user))

	mailer := &fakeMailer{}
	feed := &fakeFeed{}
	w := NewNotificationWorker(nil, mem, mailer, feed)

	err := w.eventHandler.HandleMessage(ctx, encode(t, &models.OrderPlacedEvent{
		BaseEvent:   models.BaseEvent{EventID: "e1", EventType: models.EventTypeOrderPlaced},
		OrderID:     "o1",
		UserID:      user.ID,
		TotalAmount: decimal.NewFromInt(40),
	}))
	require.NoError(t, err)

	err = w.eventHandler.HandleMessage(ctx, encode(t, &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{EventID: "e2", EventType: models.EventTypeOrderStatusChanged},
		OrderID:   "o1",
		ToStatus:  models.OrderStatusInShipping,
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"alice@example.com"}, mailer.recipients)
	assert.Equal(t, []string{FeedOrderPlaced, FeedOrderStatusChanged}, feed.types)
}

func TestNotificationWorkerUnknownUserStillBroadcasts(t *testing.T) {
	mailer := &fakeMailer{}
	feed := &fakeFeed{}
	w := NewNotificationWorker(nil, memory.New(), mailer, feed)

	err := w.eventHandler.HandleMessage(context.Background(), encode(t, &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{EventType: models.EventTypeOrderPlaced},
		OrderID:   "o1",
		UserID:    "ghost",
	}))
	require.NoError(t, err)
	assert.Empty(t, mailer.recipients)
	assert.Equal(t, []string{FeedOrderPlaced}, feed.types)
}

func TestRatingWorkerRecomputesAverage(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	p := &models.Product{Title: "Shirt", Price: decimal.NewFromInt(20)}
	require.NoError(t, mem.CreateProduct(ctx, p))
	require.NoError(t, mem.CreateReview(ctx, &models.Review{ProductID: p.ID, UserID: "u1", ReviewValue: 3}))
	require.NoError(t, mem.CreateReview(ctx, &models.Review{ProductID: p.ID, UserID: "u2", ReviewValue: 4}))

	ratings := service.NewRatingService(mem, service.NewCatalogService(mem, nil, 0))
	w := NewRatingWorker(nil, ratings)

	err := w.eventHandler.HandleMessage(ctx, encode(t, &models.ReviewAddedEvent{
		BaseEvent: models.BaseEvent{EventType: models.EventTypeReviewAdded},
		ProductID: p.ID,
	}))
	require.NoError(t, err)

	got, err := mem.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, got.AverageReview, 0.001)
}
