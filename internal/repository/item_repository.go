package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/sneakers-backend/internal/models"
)

type gormItemRepository struct {
	db *gorm.DB
}

func (r *gormItemRepository) Create(ctx context.Context, item *models.Item) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error, "failed to create item")
}

func (r *gormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to load item")
	}
	return &item, nil
}

func (r *gormItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Item
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, translateError(err, "failed to load items")
	}
	return items, nil
}

func (r *gormItemRepository) List(ctx context.Context, filter ItemFilter) ([]models.Item, int64, error) {
	query := applyItemFilter(r.db.WithContext(ctx).Model(&models.Item{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "failed to count items")
	}

	var items []models.Item
	if err := paginate(query, filter.PaginationParams, itemSortColumns).Find(&items).Error; err != nil {
		return nil, 0, translateError(err, "failed to fetch items")
	}
	return items, total, nil
}

func (r *gormItemRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, window DateWindow) ([]models.Item, error) {
	query := r.db.WithContext(ctx).Where("created_by = ?", sellerID)
	if window.From != nil {
		query = query.Where("created_at >= ?", *window.From)
	}
	if window.To != nil {
		query = query.Where("created_at <= ?", *window.To)
	}

	var items []models.Item
	if err := query.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, translateError(err, "failed to fetch seller items")
	}
	return items, nil
}

var itemUpdateColumns = []string{
	"name", "size", "srp", "price", "op", "details", "discount",
	"wear_label", "wear_value", "img", "img_public_id", "updated_at",
}

func (r *gormItemRepository) Update(ctx context.Context, item *models.Item) error {
	item.Derive()
	res := r.db.WithContext(ctx).Model(item).Select(itemUpdateColumns).Updates(item)
	if res.Error != nil {
		return translateError(res.Error, "failed to update item")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormItemRepository) Delete(ctx context.Context, id uuid.UUID, locked []models.ItemStatus) error {
	return deleteUnlocked(r.db.WithContext(ctx), &models.Item{}, id, locked, "item")
}

func (r *gormItemRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Item{}).Count(&total).Error
	return total, translateError(err, "failed to count items")
}

// deleteUnlocked removes the row with id unless its item_status is locked.
// A zero row count is resolved into ErrNotFound or ErrConflict.
func deleteUnlocked(db *gorm.DB, model interface{}, id uuid.UUID, locked []models.ItemStatus, what string) error {
	query := db.Where("id = ?", id)
	if len(locked) > 0 {
		query = query.Where("item_status NOT IN ?", locked)
	}
	res := query.Delete(model)
	if res.Error != nil {
		return translateError(res.Error, "failed to delete "+what)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateError(err, "failed to load "+what)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

type gormTradeItemRepository struct {
	db *gorm.DB
}

func (r *gormTradeItemRepository) Create(ctx context.Context, item *models.TradeItem) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error, "failed to create trade item")
}

func (r *gormTradeItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.TradeItem, error) {
	var item models.TradeItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to load trade item")
	}
	return &item, nil
}

func (r *gormTradeItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.TradeItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.TradeItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, translateError(err, "failed to load trade items")
	}
	return items, nil
}

func (r *gormTradeItemRepository) List(ctx context.Context, filter ItemFilter) ([]models.TradeItem, int64, error) {
	query := applyItemFilter(r.db.WithContext(ctx).Model(&models.TradeItem{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "failed to count trade items")
	}

	var items []models.TradeItem
	if err := paginate(query, filter.PaginationParams, itemSortColumns).Find(&items).Error; err != nil {
		return nil, 0, translateError(err, "failed to fetch trade items")
	}
	return items, total, nil
}

var tradeItemUpdateColumns = []string{
	"name", "size", "price", "details", "wear_label", "wear_value",
	"img", "img_public_id", "updated_at",
}

func (r *gormTradeItemRepository) Update(ctx context.Context, item *models.TradeItem) error {
	item.Derive()
	res := r.db.WithContext(ctx).Model(item).Select(tradeItemUpdateColumns).Updates(item)
	if res.Error != nil {
		return translateError(res.Error, "failed to update trade item")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormTradeItemRepository) Delete(ctx context.Context, id uuid.UUID, locked []models.ItemStatus) error {
	return deleteUnlocked(r.db.WithContext(ctx), &models.TradeItem{}, id, locked, "trade item")
}
