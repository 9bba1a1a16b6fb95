package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/sneakers-backend/internal/models"
)

type gormOrderRepository struct {
	db *gorm.DB
}

func (r *gormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return translateError(r.db.WithContext(ctx).Create(order).Error, "failed to create order")
}

func (r *gormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Buyer").First(&order, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to load order")
	}
	return &order, nil
}

func (r *gormOrderRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Where("buyer_id = ? OR ? = ANY(seller_ids)", userID, userID.String()).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, translateError(err, "failed to fetch orders")
	}
	return orders, nil
}

func (r *gormOrderRepository) ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Where("status = ?", status).Find(&orders).Error; err != nil {
		return nil, translateError(err, "failed to fetch orders")
	}
	return orders, nil
}

func (r *gormOrderRepository) ApplyTransition(ctx context.Context, t OrderTransition) error {
	return withTx(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", t.OrderID, t.ExpectedVersion).
			Updates(map[string]interface{}{
				"status":           t.Status,
				"buyer_confirmed":  t.BuyerConfirmed,
				"seller_confirmed": t.SellerConfirmed,
				"version":          gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return translateError(res.Error, "failed to update order")
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if len(t.CascadeItemIDs) == 0 {
			return nil
		}
		err := tx.Model(&models.Item{}).
			Where("id IN ?", t.CascadeItemIDs).
			UpdateColumn("item_status", t.CascadeStatus).Error
		return translateError(err, "failed to cascade item status")
	})
}
