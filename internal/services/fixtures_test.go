package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/sneakers-backend/internal/config"
	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/repository"
	"github.com/javajoker/sneakers-backend/internal/repository/memory"
)

type fixture struct {
	store   *memory.Store
	repos   *repository.Repositories
	removed *recordingRemover
}

func newFixture() *fixture {
	store := memory.NewStore()
	return &fixture{
		store:   store,
		repos:   store.Repositories(),
		removed: &recordingRemover{},
	}
}

func (f *fixture) orders() *OrderService {
	return NewOrderService(f.repos, config.LifecycleConfig{MaxRetries: 3})
}

func (f *fixture) trades() *TradeService {
	return NewTradeService(f.repos, f.removed)
}

func (f *fixture) user(t *testing.T, name string, role models.UserRole) Principal {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, u.SetPassword("Sneakers1!"))
	require.NoError(t, f.repos.Users.Create(context.Background(), u))
	return Principal{UserID: u.ID, Role: role}
}

func (f *fixture) item(t *testing.T, owner Principal, name string, price int64) *models.Item {
	t.Helper()
	item := &models.Item{
		Name:      name,
		Size:      "10",
		SRP:       decimal.NewFromInt(price),
		Price:     decimal.NewFromInt(price),
		OP:        decimal.Zero,
		Img:       "https://img.example/" + name,
		CreatedBy: owner.UserID,
	}
	require.NoError(t, f.repos.Items.Create(context.Background(), item))
	return item
}

func (f *fixture) tradeItem(t *testing.T, owner Principal, name string, price int64) *models.TradeItem {
	t.Helper()
	item := &models.TradeItem{
		Name:      name,
		Size:      "9.5",
		Price:     decimal.NewFromInt(price),
		Details:   "box included",
		CreatedBy: owner.UserID,
	}
	require.NoError(t, f.repos.TradeItems.Create(context.Background(), item))
	return item
}

func (f *fixture) itemStatus(t *testing.T, id uuid.UUID) models.ItemStatus {
	t.Helper()
	item, err := f.repos.Items.FindByID(context.Background(), id)
	require.NoError(t, err)
	return item.ItemStatus
}

func (f *fixture) tradeItemStatus(t *testing.T, id uuid.UUID) models.ItemStatus {
	t.Helper()
	items, err := f.repos.TradeItems.FindByIDs(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	require.Len(t, items, 1)
	return items[0].ItemStatus
}

type recordingRemover struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingRemover) DeleteFile(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	return nil
}

func (r *recordingRemover) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}
