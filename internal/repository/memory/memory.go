// Package memory is an in-process implementation of the repository
// interfaces. It applies the same optimistic guards as the GORM stores and is
// safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/repository"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

type Store struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]models.User
	items      map[uuid.UUID]models.Item
	tradeItems map[uuid.UUID]models.TradeItem
	orders     map[uuid.UUID]models.Order
	trades     map[uuid.UUID]models.Trade
	auditLogs  []models.AuditLog

	// Now stamps created records that arrive without a CreatedAt.
	Now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:      make(map[uuid.UUID]models.User),
		items:      make(map[uuid.UUID]models.Item),
		tradeItems: make(map[uuid.UUID]models.TradeItem),
		orders:     make(map[uuid.UUID]models.Order),
		trades:     make(map[uuid.UUID]models.Trade),
		Now:        time.Now,
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Users:      userRepo{s},
		Items:      itemRepo{s},
		TradeItems: tradeItemRepo{s},
		Orders:     orderRepo{s},
		Trades:     tradeRepo{s},
		AuditLogs:  auditRepo{s},
	}
}

func (s *Store) stamp(ts *models.Timestamps) {
	now := s.Now()
	if ts.CreatedAt.IsZero() {
		ts.CreatedAt = now
	}
	ts.UpdatedAt = now
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderLine(nil), o.Items...)
	o.SellerIDs = append([]string(nil), o.SellerIDs...)
	o.Buyer = nil
	return o
}

func cloneTrade(t models.Trade) models.Trade {
	t.UserOneItems = append([]models.TradeLine(nil), t.UserOneItems...)
	t.UserTwoItems = append([]models.ProposedItem(nil), t.UserTwoItems...)
	t.ImageKeys = append([]string(nil), t.ImageKeys...)
	return t
}

func page[T any](all []T, params utils.PaginationParams) []T {
	if params.Limit <= 0 {
		return all
	}
	offset := (params.Page - 1) * params.Limit
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	end := offset + params.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func sortByCreated[T any](all []T, created func(T) time.Time, ascending bool) {
	sort.SliceStable(all, func(i, j int) bool {
		if ascending {
			return created(all[i]).Before(created(all[j]))
		}
		return created(all[i]).After(created(all[j]))
	})
}

func matchesFilter(status models.ItemStatus, createdBy uuid.UUID, name string, filter repository.ItemFilter) bool {
	if filter.Status != nil && status != *filter.Status {
		return false
	}
	if filter.CreatedBy != nil && createdBy != *filter.CreatedBy {
		return false
	}
	if filter.Search != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(filter.Search)) {
		return false
	}
	return true
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	models.EnsureID(&user.ID)
	r.s.stamp(&user.Timestamps)
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) List(_ context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]models.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		all = append(all, user)
	}
	sortByCreated(all, func(u models.User) time.Time { return u.CreatedAt }, params.Order == "asc")
	return page(all, params), int64(len(all)), nil
}

func (r userRepo) UpdateProfile(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.s.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	stored.Name = user.Name
	stored.LastName = user.LastName
	stored.Email = user.Email
	stored.Location = user.Location
	stored.Birthday = user.Birthday
	r.s.stamp(&stored.Timestamps)
	r.s.users[user.ID] = stored
	*user = stored
	return nil
}

func (r userRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

type itemRepo struct{ s *Store }

func (r itemRepo) Create(_ context.Context, item *models.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	models.EnsureID(&item.ID)
	item.Derive()
	r.s.stamp(&item.Timestamps)
	r.s.items[item.ID] = *item
	return nil
}

func (r itemRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (r itemRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Item
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if item, ok := r.s.items[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, item)
		}
	}
	return out, nil
}

func (r itemRepo) List(_ context.Context, filter repository.ItemFilter) ([]models.Item, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var all []models.Item
	for _, item := range r.s.items {
		if matchesFilter(item.ItemStatus, item.CreatedBy, item.Name, filter) {
			all = append(all, item)
		}
	}
	sortByCreated(all, func(i models.Item) time.Time { return i.CreatedAt }, filter.Order == "asc")
	return page(all, filter.PaginationParams), int64(len(all)), nil
}

func (r itemRepo) ListBySeller(_ context.Context, sellerID uuid.UUID, window repository.DateWindow) ([]models.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Item
	for _, item := range r.s.items {
		if item.CreatedBy == sellerID && window.Contains(item.CreatedAt) {
			out = append(out, item)
		}
	}
	sortByCreated(out, func(i models.Item) time.Time { return i.CreatedAt }, true)
	return out, nil
}

func (r itemRepo) Update(_ context.Context, item *models.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.items[item.ID]
	if !ok {
		return repository.ErrNotFound
	}
	item.ItemStatus = stored.ItemStatus
	item.CreatedBy = stored.CreatedBy
	item.CreatedAt = stored.CreatedAt
	item.Derive()
	r.s.stamp(&item.Timestamps)
	r.s.items[item.ID] = *item
	return nil
}

func (r itemRepo) Delete(_ context.Context, id uuid.UUID, locked []models.ItemStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	if isLocked(item.ItemStatus, locked) {
		return repository.ErrConflict
	}
	delete(r.s.items, id)
	return nil
}

func (r itemRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.items)), nil
}

func isLocked(status models.ItemStatus, locked []models.ItemStatus) bool {
	for _, l := range locked {
		if status == l {
			return true
		}
	}
	return false
}

type tradeItemRepo struct{ s *Store }

func (r tradeItemRepo) Create(_ context.Context, item *models.TradeItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	models.EnsureID(&item.ID)
	item.Derive()
	r.s.stamp(&item.Timestamps)
	r.s.tradeItems[item.ID] = *item
	return nil
}

func (r tradeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*models.TradeItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.tradeItems[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (r tradeItemRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.TradeItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.TradeItem
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if item, ok := r.s.tradeItems[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, item)
		}
	}
	return out, nil
}

func (r tradeItemRepo) List(_ context.Context, filter repository.ItemFilter) ([]models.TradeItem, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var all []models.TradeItem
	for _, item := range r.s.tradeItems {
		if matchesFilter(item.ItemStatus, item.CreatedBy, item.Name, filter) {
			all = append(all, item)
		}
	}
	sortByCreated(all, func(i models.TradeItem) time.Time { return i.CreatedAt }, filter.Order == "asc")
	return page(all, filter.PaginationParams), int64(len(all)), nil
}

func (r tradeItemRepo) Update(_ context.Context, item *models.TradeItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.tradeItems[item.ID]
	if !ok {
		return repository.ErrNotFound
	}
	item.ItemStatus = stored.ItemStatus
	item.CreatedBy = stored.CreatedBy
	item.CreatedAt = stored.CreatedAt
	item.Derive()
	r.s.stamp(&item.Timestamps)
	r.s.tradeItems[item.ID] = *item
	return nil
}

func (r tradeItemRepo) Delete(_ context.Context, id uuid.UUID, locked []models.ItemStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.tradeItems[id]
	if !ok {
		return repository.ErrNotFound
	}
	if isLocked(item.ItemStatus, locked) {
		return repository.ErrConflict
	}
	delete(r.s.tradeItems, id)
	return nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	models.EnsureID(&order.ID)
	r.s.stamp(&order.Timestamps)
	r.s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r orderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneOrder(order)
	if buyer, ok := r.s.users[out.BuyerID]; ok {
		out.Buyer = &buyer
	}
	return &out, nil
}

func (r orderRepo) ListByParticipant(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Order
	for _, order := range r.s.orders {
		if order.BuyerID == userID || order.HasSeller(userID) {
			out = append(out, cloneOrder(order))
		}
	}
	sortByCreated(out, func(o models.Order) time.Time { return o.CreatedAt }, false)
	return out, nil
}

func (r orderRepo) ListByStatus(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Order
	for _, order := range r.s.orders {
		if order.Status == status {
			out = append(out, cloneOrder(order))
		}
	}
	return out, nil
}

func (r orderRepo) ApplyTransition(_ context.Context, t repository.OrderTransition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order, ok := r.s.orders[t.OrderID]
	if !ok || order.Version != t.ExpectedVersion {
		return repository.ErrConflict
	}

	order.Status = t.Status
	order.BuyerConfirmed = t.BuyerConfirmed
	order.SellerConfirmed = t.SellerConfirmed
	order.Version++
	order.UpdatedAt = r.s.Now()
	r.s.orders[order.ID] = order

	for _, id := range t.CascadeItemIDs {
		if item, ok := r.s.items[id]; ok {
			item.ItemStatus = t.CascadeStatus
			r.s.items[id] = item
		}
	}
	return nil
}

type tradeRepo struct{ s *Store }

func (r tradeRepo) Create(_ context.Context, trade *models.Trade) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	models.EnsureID(&trade.ID)
	r.s.stamp(&trade.Timestamps)
	r.s.trades[trade.ID] = cloneTrade(*trade)
	return nil
}

func (r tradeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Trade, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	trade, ok := r.s.trades[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneTrade(trade)
	return &out, nil
}

func (r tradeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Trade, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Trade
	for _, trade := range r.s.trades {
		if trade.IsParty(userID) {
			out = append(out, cloneTrade(trade))
		}
	}
	sortByCreated(out, func(t models.Trade) time.Time { return t.CreatedAt }, false)
	return out, nil
}

func (r tradeRepo) ChangeStatus(_ context.Context, change repository.TradeStatusChange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	trade, ok := r.s.trades[change.TradeID]
	if !ok || trade.Status != change.From {
		return repository.ErrConflict
	}
	trade.Status = change.To
	trade.UpdatedAt = r.s.Now()
	r.s.trades[trade.ID] = trade

	for _, id := range change.CascadeItemIDs {
		if item, ok := r.s.tradeItems[id]; ok {
			item.ItemStatus = change.CascadeStatus
			r.s.tradeItems[id] = item
		}
	}
	return nil
}

func (r tradeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.trades[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.trades, id)
	return nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Create(_ context.Context, entry *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	models.EnsureID(&entry.ID)
	r.s.stamp(&entry.Timestamps)
	r.s.auditLogs = append(r.s.auditLogs, *entry)
	return nil
}

// AuditLogs returns the journal in insertion order.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.auditLogs...)
}
