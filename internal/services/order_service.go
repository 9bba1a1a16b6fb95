// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sneakers-backend/internal/config"
	"github.com/javajoker/sneakers-backend/internal/fsm"
	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/repository"
)

type OrderService struct {
	items      repository.ItemRepository
	orders     repository.OrderRepository
	maxRetries int
	log        *logrus.Entry
}

type CreateOrderRequest struct {
	ItemIDs         []uuid.UUID `json:"items" validate:"required,min=1"`
	ShippingAddress string      `json:"shippingAddress" validate:"required,max=500"`
	PaymentMethod   string      `json:"paymentMethod" validate:"required,max=50"`
}

type TransitionOrderRequest struct {
	Status        models.OrderStatus `json:"status" validate:"required"`
	ForceComplete bool               `json:"forceComplete"`
}

// TransitionOutcome tells a completed move apart from a recorded
// confirmation that still waits on the other party.
type TransitionOutcome string

const (
	OutcomeTransitioned         TransitionOutcome = "transitioned"
	OutcomeAwaitingConfirmation TransitionOutcome = "awaiting_confirmation"
)

type TransitionResult struct {
	Order   *models.Order     `json:"order"`
	Outcome TransitionOutcome `json:"outcome"`
}

func NewOrderService(repos *repository.Repositories, cfg config.LifecycleConfig) *OrderService {
	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}
	return &OrderService{
		items:      repos.Items,
		orders:     repos.Orders,
		maxRetries: retries,
		log:        logrus.WithField("component", "orders"),
	}
}

// Create snapshots the cart into a pending order. Item statuses are not
// touched until the seller accepts.
func (s *OrderService) Create(ctx context.Context, actor Principal, req *CreateOrderRequest) (*models.Order, error) {
	if len(req.ItemIDs) == 0 {
		return nil, ValidationError("cart is empty")
	}

	seen := make(map[uuid.UUID]bool, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		if seen[id] {
			return nil, ValidationError("item %s appears more than once in the cart", id)
		}
		seen[id] = true
	}

	items, err := s.items.FindByIDs(ctx, req.ItemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	byID := make(map[uuid.UUID]models.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	order := &models.Order{
		BuyerID:         actor.UserID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          models.OrderStatusPending,
	}
	sellers := make(map[uuid.UUID]bool)
	for _, id := range req.ItemIDs {
		item, ok := byID[id]
		if !ok {
			return nil, ValidationError("item %s does not exist", id)
		}
		if item.CreatedBy == actor.UserID {
			return nil, AuthorizationError("cannot purchase your own item %s", id)
		}
		order.Items = append(order.Items, models.OrderLine{
			ItemID: item.ID,
			Name:   item.Name,
			Img:    item.Img,
			Price:  item.Price,
		})
		if !sellers[item.CreatedBy] {
			sellers[item.CreatedBy] = true
			order.SellerIDs = append(order.SellerIDs, item.CreatedBy.String())
		}
	}
	order.ItemsCount = len(order.Items)
	order.TotalPrice = order.LineTotal()

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"buyer_id": actor.UserID,
		"items":    order.ItemsCount,
		"total":    order.TotalPrice.String(),
	}).Info("Order created")
	return order, nil
}

// Transition applies a status request as one conditional write. When a
// concurrent writer wins the version guard the order is reloaded and the
// request re-planned, so no confirmation is lost.
func (s *OrderService) Transition(ctx context.Context, actor Principal, orderID uuid.UUID, req *TransitionOrderRequest) (*TransitionResult, error) {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		order, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, lookupError(err, "order")
		}
		party, err := s.partyOf(ctx, actor, order)
		if err != nil {
			return nil, err
		}

		plan, err := planOrderTransition(order, party, req)
		if err != nil {
			return nil, err
		}
		if !plan.write {
			return &TransitionResult{Order: order, Outcome: plan.outcome}, nil
		}

		err = s.orders.ApplyTransition(ctx, plan.change)
		if errors.Is(err, repository.ErrConflict) {
			s.log.WithFields(logrus.Fields{"order_id": orderID, "attempt": attempt}).
				Debug("Order changed concurrently, re-planning transition")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to transition order: %w", err)
		}

		from := order.Status
		order.Status = plan.change.Status
		order.BuyerConfirmed = plan.change.BuyerConfirmed
		order.SellerConfirmed = plan.change.SellerConfirmed
		order.Version++

		s.log.WithFields(logrus.Fields{
			"order_id": orderID,
			"actor_id": actor.UserID,
			"from":     from,
			"to":       order.Status,
			"outcome":  plan.outcome,
		}).Info("Order transition applied")
		return &TransitionResult{Order: order, Outcome: plan.outcome}, nil
	}

	return nil, ConflictError("order %s was modified concurrently, retry the request", orderID)
}

func (s *OrderService) ListForUser(ctx context.Context, actor Principal) ([]models.Order, error) {
	orders, err := s.orders.ListByParticipant(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// Get returns the order to its buyer, its sellers and admins.
func (s *OrderService) Get(ctx context.Context, actor Principal, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, lookupError(err, "order")
	}
	if actor.IsAdmin() {
		return order, nil
	}
	party, err := s.partyOf(ctx, actor, order)
	if err != nil {
		return nil, err
	}
	if party == 0 {
		return nil, AuthorizationError("not a participant of order %s", orderID)
	}
	return order, nil
}

// partyOf resolves the line items' owners so that seller rights follow the
// items' createdBy rather than the stored listing index.
func (s *OrderService) partyOf(ctx context.Context, actor Principal, order *models.Order) (fsm.Party, error) {
	items, err := s.items.FindByIDs(ctx, order.ItemIDs())
	if err != nil {
		return 0, fmt.Errorf("failed to resolve order items: %w", err)
	}

	var party fsm.Party
	if actorIsBuyer(actor, order) {
		party |= fsm.PartyBuyer
	}
	if actorIsSeller(actor, items) {
		party |= fsm.PartySeller
	}
	return party, nil
}

func actorIsBuyer(actor Principal, order *models.Order) bool {
	return order.BuyerID == actor.UserID
}

func actorIsSeller(actor Principal, items []models.Item) bool {
	for _, item := range items {
		if item.CreatedBy == actor.UserID {
			return true
		}
	}
	return false
}

type orderPlan struct {
	change  repository.OrderTransition
	outcome TransitionOutcome
	write   bool
}

// planOrderTransition decides the effect of a request against a loaded
// order without touching storage.
func planOrderTransition(order *models.Order, party fsm.Party, req *TransitionOrderRequest) (orderPlan, error) {
	rule, ok := fsm.OrderRuleFor(req.Status)
	if !ok {
		return orderPlan{}, InvalidTransitionError("status %q cannot be requested", req.Status)
	}
	if !party.Has(rule.Allowed) {
		return orderPlan{}, AuthorizationError("not allowed to move order to %s", req.Status)
	}
	if fsm.IsTerminalOrder(order.Status) {
		return orderPlan{}, InvalidTransitionError("order %s is already %s and cannot change", order.ID, order.Status)
	}
	if !fsm.CanTransitionOrder(order.Status, req.Status) {
		return orderPlan{}, InvalidTransitionError("cannot move order from %s to %s", order.Status, req.Status)
	}

	plan := orderPlan{
		change: repository.OrderTransition{
			OrderID:         order.ID,
			ExpectedVersion: order.Version,
			Status:          req.Status,
			BuyerConfirmed:  order.BuyerConfirmed,
			SellerConfirmed: order.SellerConfirmed,
		},
		outcome: OutcomeTransitioned,
		write:   true,
	}

	if req.Status == models.OrderStatusCompleted {
		switch {
		case req.ForceComplete && party.Has(fsm.PartySeller):
			plan.change.SellerConfirmed = true
		default:
			if party.Has(fsm.PartyBuyer) {
				plan.change.BuyerConfirmed = true
			}
			if party.Has(fsm.PartySeller) {
				plan.change.SellerConfirmed = true
			}
			if !plan.change.BuyerConfirmed || !plan.change.SellerConfirmed {
				plan.change.Status = order.Status
				plan.outcome = OutcomeAwaitingConfirmation
				plan.write = plan.change.BuyerConfirmed != order.BuyerConfirmed ||
					plan.change.SellerConfirmed != order.SellerConfirmed
				return plan, nil
			}
		}
	}

	if rule.Cascade {
		plan.change.CascadeItemIDs = order.ItemIDs()
		plan.change.CascadeStatus = req.Status
	}
	return plan, nil
}
