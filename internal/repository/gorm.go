package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/javajoker/sneakers-backend/internal/database"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

var itemSortColumns = utils.SortColumns{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"updated_at": "updated_at",
	"updatedAt":  "updated_at",
	"name":       "name",
	"price":      "price",
}

var userSortColumns = utils.SortColumns{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"name":       "name",
	"email":      "email",
}

// NewGormRepositories wires every GORM-backed store onto one connection.
func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:      &gormUserRepository{db: db},
		Items:      &gormItemRepository{db: db},
		TradeItems: &gormTradeItemRepository{db: db},
		Orders:     &gormOrderRepository{db: db},
		Trades:     &gormTradeRepository{db: db},
		AuditLogs:  &gormAuditLogRepository{db: db},
	}
}

func translateError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "duplicate key"):
		return ErrDuplicate
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func applyItemFilter(query *gorm.DB, filter ItemFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("item_status = ?", *filter.Status)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	return query
}

// paginate sorts newest first unless asked otherwise. A zero limit returns
// every row.
func paginate(query *gorm.DB, params utils.PaginationParams, columns utils.SortColumns) *gorm.DB {
	query = utils.ApplySort(query, params, columns)
	if params.Limit <= 0 {
		return query
	}
	if params.Page < 1 {
		params.Page = 1
	}
	return utils.ApplyPagination(query, params)
}

// withTx runs fn inside a transaction bound to the caller's connection.
func withTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return database.WithTransaction(db, fn)
}
