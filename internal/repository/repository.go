// Package repository persists the marketplace aggregates. Services depend on
// the interfaces declared here; the GORM implementations back production and
// the memory package backs tests.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("record was modified concurrently")
	ErrDuplicate = errors.New("record already exists")
)

// DateWindow bounds a query on creation time. Nil ends are open.
type DateWindow struct {
	From *time.Time
	To   *time.Time
}

func (w DateWindow) Contains(t time.Time) bool {
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.To != nil && t.After(*w.To) {
		return false
	}
	return true
}

type ItemFilter struct {
	utils.PaginationParams
	Status    *models.ItemStatus
	CreatedBy *uuid.UUID
}

// OrderTransition is an atomic compare-and-set on an order. It applies only
// if the stored version still equals ExpectedVersion, and writes
// CascadeStatus onto every item in CascadeItemIDs in the same transaction.
type OrderTransition struct {
	OrderID         uuid.UUID
	ExpectedVersion int64
	Status          models.OrderStatus
	BuyerConfirmed  bool
	SellerConfirmed bool
	CascadeItemIDs  []uuid.UUID
	CascadeStatus   models.ItemStatus
}

// TradeStatusChange moves a trade out of From and cascades CascadeStatus onto
// the listed trade items in the same transaction.
type TradeStatusChange struct {
	TradeID        uuid.UUID
	From           models.TradeStatus
	To             models.TradeStatus
	CascadeItemIDs []uuid.UUID
	CascadeStatus  models.ItemStatus
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error)
	// UpdateProfile writes the profile columns only; role and password
	// hash are never touched.
	UpdateProfile(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int64, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	// FindByIDs returns the items that exist; missing ids are simply absent.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]models.Item, int64, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, window DateWindow) ([]models.Item, error)
	// Update writes every owner field. ItemStatus belongs to the lifecycle
	// managers and is left as stored.
	Update(ctx context.Context, item *models.Item) error
	// Delete removes the item unless its stored status is one of locked, in
	// which case it returns ErrConflict.
	Delete(ctx context.Context, id uuid.UUID, locked []models.ItemStatus) error
	Count(ctx context.Context) (int64, error)
}

type TradeItemRepository interface {
	Create(ctx context.Context, item *models.TradeItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.TradeItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.TradeItem, error)
	List(ctx context.Context, filter ItemFilter) ([]models.TradeItem, int64, error)
	Update(ctx context.Context, item *models.TradeItem) error
	Delete(ctx context.Context, id uuid.UUID, locked []models.ItemStatus) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// ListByParticipant returns orders placed by userID or containing an item
	// userID sells, newest first.
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	ApplyTransition(ctx context.Context, t OrderTransition) error
}

type TradeRepository interface {
	Create(ctx context.Context, trade *models.Trade) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	// ListByUser returns trades where userID is either side, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Trade, error)
	ChangeStatus(ctx context.Context, change TradeStatusChange) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// Repositories bundles every store the services need.
type Repositories struct {
	Users      UserRepository
	Items      ItemRepository
	TradeItems TradeItemRepository
	Orders     OrderRepository
	Trades     TradeRepository
	AuditLogs  AuditLogRepository
}
