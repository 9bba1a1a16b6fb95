// internal/services/trade_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sneakers-backend/internal/fsm"
	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/repository"
)

// MaxTradeImages caps the photos attached to one offer.
const MaxTradeImages = 5

type TradeService struct {
	tradeItems repository.TradeItemRepository
	trades     repository.TradeRepository
	images     ImageRemover
	log        *logrus.Entry
}

// ProposedItemInput describes an item the proposer puts up in exchange.
type ProposedItemInput struct {
	Name      string          `json:"name" validate:"required,max=255"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	Size      string          `json:"size" validate:"required,max=20"`
	Details   string          `json:"details"`
	WearValue float64         `json:"wearValue"`
}

// CreateOfferRequest pairs each proposed item with the image at the same
// index.
type CreateOfferRequest struct {
	UserOneItemIDs  []uuid.UUID
	UserTwoItems    []ProposedItemInput
	Images          []ImageRef
	ShippingAddress string
}

type UpdateTradeStatusRequest struct {
	Status models.TradeStatus `json:"status" validate:"required"`
}

func NewTradeService(repos *repository.Repositories, images ImageRemover) *TradeService {
	return &TradeService{
		tradeItems: repos.TradeItems,
		trades:     repos.Trades,
		images:     images,
		log:        logrus.WithField("component", "trades"),
	}
}

// CreateOffer persists a pending trade between the proposer and the single
// owner of the requested trade items. A rejected offer removes the images
// uploaded for it.
func (s *TradeService) CreateOffer(ctx context.Context, actor Principal, req *CreateOfferRequest) (trade *models.Trade, err error) {
	defer func() {
		if err != nil {
			RemoveImages(ctx, s.images, imageKeys(req.Images), s.log)
		}
	}()

	if len(req.UserOneItemIDs) == 0 {
		return nil, ValidationError("at least one requested item is required")
	}
	if len(req.UserTwoItems) == 0 {
		return nil, ValidationError("at least one offered item is required")
	}
	if len(req.Images) != len(req.UserTwoItems) {
		return nil, ValidationError("each offered item needs exactly one image: got %d images for %d items",
			len(req.Images), len(req.UserTwoItems))
	}
	if len(req.Images) > MaxTradeImages {
		return nil, ValidationError("at most %d offered items are allowed", MaxTradeImages)
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return nil, ValidationError("shipping address is required")
	}

	requested, err := s.resolveRequested(ctx, actor, req.UserOneItemIDs)
	if err != nil {
		return nil, err
	}

	trade = &models.Trade{
		UserOneID:         requested[0].CreatedBy,
		UserTwoID:         actor.UserID,
		ShippingAddress:   req.ShippingAddress,
		Status:            models.TradeStatusPending,
		UserOneTotalPrice: decimal.Zero,
		UserTwoTotalPrice: decimal.Zero,
	}
	for _, item := range requested {
		trade.UserOneItems = append(trade.UserOneItems, models.TradeLine{
			ItemID:  item.ID,
			Name:    item.Name,
			Img:     item.Img,
			Price:   item.Price,
			Size:    item.Size,
			Details: item.Details,
		})
		trade.UserOneTotalPrice = trade.UserOneTotalPrice.Add(item.Price)
	}

	for i, input := range req.UserTwoItems {
		if input.Price.IsNegative() {
			return nil, ValidationError("offered item %q has a negative price", input.Name)
		}
		wear, err := models.NewItemWear(input.WearValue)
		if err != nil {
			return nil, ValidationError("offered item %q: %v", input.Name, err)
		}
		trade.UserTwoItems = append(trade.UserTwoItems, models.ProposedItem{
			ItemID:   uuid.New(),
			Name:     input.Name,
			Img:      req.Images[i].URL,
			Price:    input.Price,
			Size:     input.Size,
			Details:  input.Details,
			ItemWear: wear,
		})
		trade.UserTwoTotalPrice = trade.UserTwoTotalPrice.Add(input.Price)
	}
	trade.ImageKeys = imageKeys(req.Images)

	if err := s.trades.Create(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"trade_id": trade.ID,
		"user_one": trade.UserOneID,
		"user_two": trade.UserTwoID,
	}).Info("Trade offer created")
	return trade, nil
}

// resolveRequested loads the requested trade items in request order and
// checks they target exactly one counterparty who is not the proposer.
func (s *TradeService) resolveRequested(ctx context.Context, actor Principal, ids []uuid.UUID) ([]models.TradeItem, error) {
	found, err := s.tradeItems.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load trade items: %w", err)
	}
	byID := make(map[uuid.UUID]models.TradeItem, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	var owner uuid.UUID
	seen := make(map[uuid.UUID]bool, len(ids))
	items := make([]models.TradeItem, 0, len(ids))
	for i, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, ValidationError("trade item %s does not exist", id)
		}
		if seen[id] {
			return nil, ValidationError("trade item %s is requested more than once", id)
		}
		seen[id] = true
		if i == 0 {
			owner = item.CreatedBy
		} else if item.CreatedBy != owner {
			return nil, ValidationError("requested items must all belong to the same user")
		}
		items = append(items, item)
	}

	if owner == actor.UserID {
		return nil, ValidationError("cannot trade with yourself")
	}
	return items, nil
}

// UpdateStatus lets the owner of the requested items accept or decline a
// pending offer. Accepting marks those items accepted.
func (s *TradeService) UpdateStatus(ctx context.Context, actor Principal, tradeID uuid.UUID, req *UpdateTradeStatusRequest) (*models.Trade, error) {
	trade, err := s.trades.FindByID(ctx, tradeID)
	if err != nil {
		return nil, lookupError(err, "trade")
	}

	if trade.UserOneID != actor.UserID {
		return nil, AuthorizationError("only the owner of the requested items can answer trade %s", tradeID)
	}
	if !fsm.IsTradeStatus(req.Status) {
		return nil, InvalidTransitionError("status %q cannot be requested for a trade", req.Status)
	}
	if !fsm.CanTransitionTrade(trade.Status, req.Status) {
		return nil, InvalidTransitionError("cannot move trade from %s to %s", trade.Status, req.Status)
	}

	change := repository.TradeStatusChange{
		TradeID: trade.ID,
		From:    trade.Status,
		To:      req.Status,
	}
	if req.Status == models.TradeStatusAccepted {
		change.CascadeItemIDs = trade.UserOneItemIDs()
		change.CascadeStatus = models.ItemStatusAccepted
	}

	err = s.trades.ChangeStatus(ctx, change)
	if errors.Is(err, repository.ErrConflict) {
		return nil, InvalidTransitionError("trade %s is no longer %s", tradeID, trade.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"trade_id": tradeID,
		"actor_id": actor.UserID,
		"from":     trade.Status,
		"to":       req.Status,
	}).Info("Trade status updated")

	trade.Status = req.Status
	return trade, nil
}

// DeleteOffer removes a trade for either party or an admin, then its images.
func (s *TradeService) DeleteOffer(ctx context.Context, actor Principal, tradeID uuid.UUID) error {
	trade, err := s.trades.FindByID(ctx, tradeID)
	if err != nil {
		return lookupError(err, "trade")
	}
	if !trade.IsParty(actor.UserID) && !actor.IsAdmin() {
		return AuthorizationError("not a participant of trade %s", tradeID)
	}

	if err := s.trades.Delete(ctx, tradeID); err != nil {
		return lookupError(err, "trade")
	}
	RemoveImages(ctx, s.images, trade.ImageKeys, s.log)

	s.log.WithFields(logrus.Fields{"trade_id": tradeID, "actor_id": actor.UserID}).Info("Trade offer deleted")
	return nil
}

func (s *TradeService) ListForUser(ctx context.Context, actor Principal) ([]models.Trade, error) {
	trades, err := s.trades.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trades: %w", err)
	}
	return trades, nil
}

func imageKeys(refs []ImageRef) []string {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		keys = append(keys, ref.Key)
	}
	return keys
}
