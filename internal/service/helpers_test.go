package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu       sync.Mutex
	err      error
	placed   []*models.OrderPlacedEvent
	changed  []*models.OrderStatusChangedEvent
	reviewed []*models.ReviewAddedEvent
}

func (p *fakePublisher) PublishOrderPlaced(_ context.Context, e *models.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, e)
	return p.err
}

func (p *fakePublisher) PublishOrderStatusChanged(_ context.Context, e *models.OrderStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, e)
	return p.err
}

func (p *fakePublisher) PublishReviewAdded(_ context.Context, e *models.ReviewAddedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reviewed = append(p.reviewed, e)
	return p.err
}

// fakeKV backs the cache, placement guard and revoker fakes
type fakeKV struct {
	mu     sync.Mutex
	values map[string]string
	cached map[string]models.Product
	locks  map[string]bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		values: map[string]string{},
		cached: map[string]models.Product{},
		locks:  map[string]bool{},
	}
}

func (f *fakeKV) CacheProduct(_ context.Context, p *models.Product, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cached[p.ID] = *p
	return nil
}

func (f *fakeKV) GetCachedProduct(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.cached[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeKV) InvalidateProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cached, id)
	return nil
}

func (f *fakeKV) SetIdempotencyKey(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values["idempotency:"+key] = value.(string)
	return nil
}

func (f *fakeKV) GetIdempotencyKey(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values["idempotency:"+key], nil
}

func (f *fakeKV) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locks[key] {
		return false, nil
	}
	f.locks[key] = true
	return true, nil
}

func (f *fakeKV) ReleaseLock(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locks, key)
	return nil
}

func (f *fakeKV) RevokeToken(_ context.Context, tokenID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values["revoked:"+tokenID] = "1"
	return nil
}

func (f *fakeKV) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.values["revoked:"+tokenID]
	return ok, nil
}

// failingCart breaks ClearCart to exercise order compensation
type failingCart struct {
	store.CartStore
}

func (failingCart) ClearCart(context.Context, string) error {
	return errors.New("cart backend unavailable")
}

func seedProduct(t *testing.T, s *memory.Store, title, price string) *models.Product {
	t.Helper()
	p := &models.Product{Title: title, Image: title + ".png", Price: decimal.RequireFromString(price)}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}
