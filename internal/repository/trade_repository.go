package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/sneakers-backend/internal/models"
)

type gormTradeRepository struct {
	db *gorm.DB
}

func (r *gormTradeRepository) Create(ctx context.Context, trade *models.Trade) error {
	return translateError(r.db.WithContext(ctx).Create(trade).Error, "failed to create trade")
}

func (r *gormTradeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	var trade models.Trade
	if err := r.db.WithContext(ctx).First(&trade, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to load trade")
	}
	return &trade, nil
}

func (r *gormTradeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Trade, error) {
	var trades []models.Trade
	err := r.db.WithContext(ctx).
		Where("user_one_id = ? OR user_two_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&trades).Error
	if err != nil {
		return nil, translateError(err, "failed to fetch trades")
	}
	return trades, nil
}

func (r *gormTradeRepository) ChangeStatus(ctx context.Context, change TradeStatusChange) error {
	return withTx(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		res := tx.Model(&models.Trade{}).
			Where("id = ? AND status = ?", change.TradeID, change.From).
			Update("status", change.To)
		if res.Error != nil {
			return translateError(res.Error, "failed to update trade")
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if len(change.CascadeItemIDs) == 0 {
			return nil
		}
		err := tx.Model(&models.TradeItem{}).
			Where("id IN ?", change.CascadeItemIDs).
			UpdateColumn("item_status", change.CascadeStatus).Error
		return translateError(err, "failed to cascade trade item status")
	})
}

func (r *gormTradeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Trade{}, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error, "failed to delete trade")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
