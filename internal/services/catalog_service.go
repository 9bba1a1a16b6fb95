// internal/services/catalog_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/repository"
)

// CatalogService covers owner CRUD for shop and trade listings.
type CatalogService struct {
	items      repository.ItemRepository
	tradeItems repository.TradeItemRepository
	images     ImageRemover
	log        *logrus.Entry
}

type CreateItemRequest struct {
	Name      string          `json:"name" validate:"required,max=255"`
	Size      string          `json:"size" validate:"required,max=20"`
	SRP       decimal.Decimal `json:"srp" validate:"gte=0"`
	Price     decimal.Decimal `json:"price" validate:"gt=0"`
	OP        decimal.Decimal `json:"op" validate:"gte=0"`
	Details   string          `json:"details"`
	WearValue float64         `json:"wearValue" validate:"gte=0,lte=1"`
}

type CreateTradeItemRequest struct {
	Name      string          `json:"name" validate:"required,max=255"`
	Size      string          `json:"size" validate:"required,max=20"`
	Price     decimal.Decimal `json:"price" validate:"gt=0"`
	Details   string          `json:"details"`
	WearValue float64         `json:"wearValue" validate:"gte=0,lte=1"`
}

// UpdateItemRequest is a partial update; nil fields keep their stored value.
// ItemStatus is accepted only so that a client trying to write it gets a
// validation error instead of having it silently dropped.
type UpdateItemRequest struct {
	Name       *string            `json:"name"`
	Size       *string            `json:"size"`
	SRP        *decimal.Decimal   `json:"srp"`
	Price      *decimal.Decimal   `json:"price"`
	OP         *decimal.Decimal   `json:"op"`
	Details    *string            `json:"details"`
	WearValue  *float64           `json:"wearValue"`
	ItemStatus *models.ItemStatus `json:"itemStatus"`
}

type UpdateTradeItemRequest struct {
	Name       *string            `json:"name"`
	Size       *string            `json:"size"`
	Price      *decimal.Decimal   `json:"price"`
	Details    *string            `json:"details"`
	WearValue  *float64           `json:"wearValue"`
	ItemStatus *models.ItemStatus `json:"itemStatus"`
}

// lockedStatuses are the listing states an in-flight order or trade depends on.
var lockedStatuses = []models.ItemStatus{models.ItemStatusAccepted, models.ItemStatusInTransit}

func NewCatalogService(repos *repository.Repositories, images ImageRemover) *CatalogService {
	return &CatalogService{
		items:      repos.Items,
		tradeItems: repos.TradeItems,
		images:     images,
		log:        logrus.WithField("component", "catalog"),
	}
}

func (s *CatalogService) CreateItem(ctx context.Context, actor Principal, req *CreateItemRequest, img *ImageRef) (item *models.Item, err error) {
	defer s.cleanupOnError(ctx, img, &err)

	if !req.Price.IsPositive() {
		return nil, ValidationError("price must be positive")
	}
	if req.SRP.IsNegative() || req.OP.IsNegative() {
		return nil, ValidationError("srp and op must not be negative")
	}
	wear, err := models.NewItemWear(req.WearValue)
	if err != nil {
		return nil, ValidationError("%v", err)
	}

	item = &models.Item{
		Name:       req.Name,
		Size:       req.Size,
		SRP:        req.SRP,
		Price:      req.Price,
		OP:         req.OP,
		Details:    req.Details,
		ItemWear:   wear,
		ItemStatus: models.ItemStatusPending,
		CreatedBy:  actor.UserID,
	}
	if img != nil {
		item.Img, item.ImgPublicID = img.URL, img.Key
	}
	item.Derive()

	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	s.log.WithFields(logrus.Fields{"item_id": item.ID, "owner_id": actor.UserID}).Info("Item listed")
	return item, nil
}

func (s *CatalogService) ListItems(ctx context.Context, filter repository.ItemFilter) ([]models.Item, int64, error) {
	items, total, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch items: %w", err)
	}
	return items, total, nil
}

func (s *CatalogService) CreateTradeItem(ctx context.Context, actor Principal, req *CreateTradeItemRequest, img *ImageRef) (item *models.TradeItem, err error) {
	defer s.cleanupOnError(ctx, img, &err)

	if !req.Price.IsPositive() {
		return nil, ValidationError("price must be positive")
	}
	wear, err := models.NewItemWear(req.WearValue)
	if err != nil {
		return nil, ValidationError("%v", err)
	}

	item = &models.TradeItem{
		Name:       req.Name,
		Size:       req.Size,
		Price:      req.Price,
		Details:    req.Details,
		ItemWear:   wear,
		ItemStatus: models.ItemStatusPending,
		CreatedBy:  actor.UserID,
	}
	if img != nil {
		item.Img, item.ImgPublicID = img.URL, img.Key
	}
	item.Derive()

	if err := s.tradeItems.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create trade item: %w", err)
	}
	s.log.WithFields(logrus.Fields{"trade_item_id": item.ID, "owner_id": actor.UserID}).Info("Trade item listed")
	return item, nil
}

func (s *CatalogService) ListTradeItems(ctx context.Context, filter repository.ItemFilter) ([]models.TradeItem, int64, error) {
	items, total, err := s.tradeItems.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch trade items: %w", err)
	}
	return items, total, nil
}

func (s *CatalogService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "item")
	}
	return item, nil
}

// UpdateItem applies the owner's edits and recomputes the discount. A new
// image replaces the stored one, which is removed once the row is written.
func (s *CatalogService) UpdateItem(ctx context.Context, actor Principal, id uuid.UUID, req *UpdateItemRequest, img *ImageRef) (item *models.Item, err error) {
	defer s.cleanupOnError(ctx, img, &err)

	if req.ItemStatus != nil {
		return nil, ValidationError("itemStatus is managed by orders and cannot be edited")
	}
	item, err = s.items.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "item")
	}
	if err := authorizeOwner(actor, item.CreatedBy, "item"); err != nil {
		return nil, err
	}

	if err := applyListingEdits(&item.Name, &item.Size, &item.Price, &item.Details, &item.ItemWear,
		req.Name, req.Size, req.Price, req.Details, req.WearValue); err != nil {
		return nil, err
	}
	if req.SRP != nil {
		if req.SRP.IsNegative() {
			return nil, ValidationError("srp must not be negative")
		}
		item.SRP = *req.SRP
	}
	if req.OP != nil {
		if req.OP.IsNegative() {
			return nil, ValidationError("op must not be negative")
		}
		item.OP = *req.OP
	}

	oldKey := item.ImgPublicID
	if img != nil {
		item.Img, item.ImgPublicID = img.URL, img.Key
	}
	item.Derive()

	if err := s.items.Update(ctx, item); err != nil {
		return nil, lookupError(err, "item")
	}
	if img != nil && oldKey != img.Key {
		RemoveImages(ctx, s.images, []string{oldKey}, s.log)
	}
	s.log.WithFields(logrus.Fields{"item_id": item.ID, "actor_id": actor.UserID}).Info("Item updated")
	return item, nil
}

// DeleteItem removes a listing unless an accepted or shipping order holds it.
func (s *CatalogService) DeleteItem(ctx context.Context, actor Principal, id uuid.UUID) error {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "item")
	}
	if err := authorizeOwner(actor, item.CreatedBy, "item"); err != nil {
		return err
	}

	if err := s.items.Delete(ctx, id, lockedStatuses); err != nil {
		return deleteError(err, "item")
	}
	RemoveImages(ctx, s.images, []string{item.ImgPublicID}, s.log)
	s.log.WithFields(logrus.Fields{"item_id": id, "actor_id": actor.UserID}).Info("Item deleted")
	return nil
}

func (s *CatalogService) GetTradeItem(ctx context.Context, id uuid.UUID) (*models.TradeItem, error) {
	item, err := s.tradeItems.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "trade item")
	}
	return item, nil
}

func (s *CatalogService) UpdateTradeItem(ctx context.Context, actor Principal, id uuid.UUID, req *UpdateTradeItemRequest, img *ImageRef) (item *models.TradeItem, err error) {
	defer s.cleanupOnError(ctx, img, &err)

	if req.ItemStatus != nil {
		return nil, ValidationError("itemStatus is managed by trades and cannot be edited")
	}
	item, err = s.tradeItems.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "trade item")
	}
	if err := authorizeOwner(actor, item.CreatedBy, "trade item"); err != nil {
		return nil, err
	}

	if err := applyListingEdits(&item.Name, &item.Size, &item.Price, &item.Details, &item.ItemWear,
		req.Name, req.Size, req.Price, req.Details, req.WearValue); err != nil {
		return nil, err
	}

	oldKey := item.ImgPublicID
	if img != nil {
		item.Img, item.ImgPublicID = img.URL, img.Key
	}
	item.Derive()

	if err := s.tradeItems.Update(ctx, item); err != nil {
		return nil, lookupError(err, "trade item")
	}
	if img != nil && oldKey != img.Key {
		RemoveImages(ctx, s.images, []string{oldKey}, s.log)
	}
	s.log.WithFields(logrus.Fields{"trade_item_id": item.ID, "actor_id": actor.UserID}).Info("Trade item updated")
	return item, nil
}

// DeleteTradeItem removes a trade listing unless an accepted trade holds it.
func (s *CatalogService) DeleteTradeItem(ctx context.Context, actor Principal, id uuid.UUID) error {
	item, err := s.tradeItems.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "trade item")
	}
	if err := authorizeOwner(actor, item.CreatedBy, "trade item"); err != nil {
		return err
	}

	if err := s.tradeItems.Delete(ctx, id, lockedStatuses); err != nil {
		return deleteError(err, "trade item")
	}
	RemoveImages(ctx, s.images, []string{item.ImgPublicID}, s.log)
	s.log.WithFields(logrus.Fields{"trade_item_id": id, "actor_id": actor.UserID}).Info("Trade item deleted")
	return nil
}

func authorizeOwner(actor Principal, owner uuid.UUID, resource string) error {
	if actor.UserID == owner || actor.IsAdmin() {
		return nil
	}
	return AuthorizationError("only the owner can change this %s", resource)
}

func deleteError(err error, resource string) error {
	if errors.Is(err, repository.ErrConflict) {
		return ConflictError("%s is held by an accepted or shipping deal", resource)
	}
	return lookupError(err, resource)
}

// applyListingEdits validates and copies the fields shop and trade listings
// share.
func applyListingEdits(name, size *string, price *decimal.Decimal, details *string, wear *models.ItemWear,
	newName, newSize *string, newPrice *decimal.Decimal, newDetails *string, newWear *float64) error {
	if newName != nil {
		trimmed := strings.TrimSpace(*newName)
		if trimmed == "" || len(trimmed) > 255 {
			return ValidationError("name must be between 1 and 255 characters")
		}
		*name = trimmed
	}
	if newSize != nil {
		trimmed := strings.TrimSpace(*newSize)
		if trimmed == "" || len(trimmed) > 20 {
			return ValidationError("size must be between 1 and 20 characters")
		}
		*size = trimmed
	}
	if newPrice != nil {
		if !newPrice.IsPositive() {
			return ValidationError("price must be positive")
		}
		*price = *newPrice
	}
	if newDetails != nil {
		*details = *newDetails
	}
	if newWear != nil {
		w, err := models.NewItemWear(*newWear)
		if err != nil {
			return ValidationError("%v", err)
		}
		*wear = w
	}
	return nil
}

func (s *CatalogService) cleanupOnError(ctx context.Context, img *ImageRef, err *error) {
	if *err != nil && img != nil {
		RemoveImages(ctx, s.images, []string{img.Key}, s.log)
	}
}
