package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/sneakers-backend/internal/fsm"
	"github.com/javajoker/sneakers-backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	f      *fixture
	svc    *OrderService
	buyer  Principal
	seller Principal
	other  Principal
	i1, i2 *models.Item
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.f = newFixture()
	s.svc = s.f.orders()
	s.buyer = s.f.user(s.T(), "buyer", models.UserRoleUser)
	s.seller = s.f.user(s.T(), "seller", models.UserRoleSeller)
	s.other = s.f.user(s.T(), "other", models.UserRoleUser)
	s.i1 = s.f.item(s.T(), s.seller, "jordan-1", 500)
	s.i2 = s.f.item(s.T(), s.seller, "dunk-low", 300)
}

func (s *OrderServiceTestSuite) placeOrder() *models.Order {
	order, err := s.svc.Create(s.ctx, s.buyer, &CreateOrderRequest{
		ItemIDs:         []uuid.UUID{s.i1.ID, s.i2.ID},
		ShippingAddress: "1 Court St",
		PaymentMethod:   "card",
	})
	s.Require().NoError(err)
	return order
}

func (s *OrderServiceTestSuite) move(actor Principal, orderID uuid.UUID, status models.OrderStatus) *TransitionResult {
	result, err := s.svc.Transition(s.ctx, actor, orderID, &TransitionOrderRequest{Status: status})
	s.Require().NoError(err)
	return result
}

func (s *OrderServiceTestSuite) reload(id uuid.UUID) *models.Order {
	order, err := s.f.repos.Orders.FindByID(s.ctx, id)
	s.Require().NoError(err)
	return order
}

func (s *OrderServiceTestSuite) TestCreateSnapshotsLines() {
	order := s.placeOrder()

	s.Equal("800", order.TotalPrice.String())
	s.Equal(models.OrderStatusPending, order.Status)
	s.Equal(2, order.ItemsCount)
	s.False(order.BuyerConfirmed)
	s.False(order.SellerConfirmed)
	s.Equal([]string{s.seller.UserID.String()}, []string(order.SellerIDs))
	s.Require().Len(order.Items, 2)
	s.Equal(s.i1.Name, order.Items[0].Name)
	s.Equal(s.i1.Img, order.Items[0].Img)

	// Creation leaves items alone.
	s.Equal(models.ItemStatusPending, s.f.itemStatus(s.T(), s.i1.ID))
}

func (s *OrderServiceTestSuite) TestTotalIgnoresLaterPriceEdits() {
	order := s.placeOrder()

	repriced := decimal.NewFromInt(9000)
	updated, err := NewCatalogService(s.f.repos, s.f.removed).UpdateItem(s.ctx, s.seller, s.i1.ID, &UpdateItemRequest{Price: &repriced}, nil)
	s.Require().NoError(err)
	s.Equal("9000", updated.Price.String())

	stored := s.reload(order.ID)
	s.Equal("800", stored.TotalPrice.String())
	s.True(stored.TotalPrice.Equal(stored.LineTotal()))
}

func (s *OrderServiceTestSuite) TestCreateValidation() {
	_, err := s.svc.Create(s.ctx, s.buyer, &CreateOrderRequest{ShippingAddress: "x", PaymentMethod: "card"})
	s.Equal(KindValidation, KindOf(err))

	_, err = s.svc.Create(s.ctx, s.buyer, &CreateOrderRequest{
		ItemIDs:         []uuid.UUID{s.i1.ID, uuid.New()},
		ShippingAddress: "x",
		PaymentMethod:   "card",
	})
	s.Equal(KindValidation, KindOf(err))

	_, err = s.svc.Create(s.ctx, s.buyer, &CreateOrderRequest{
		ItemIDs:         []uuid.UUID{s.i1.ID, s.i1.ID},
		ShippingAddress: "x",
		PaymentMethod:   "card",
	})
	s.Equal(KindValidation, KindOf(err))
}

func (s *OrderServiceTestSuite) TestSelfPurchaseIsRejected() {
	own := s.f.item(s.T(), s.buyer, "own-pair", 100)

	_, err := s.svc.Create(s.ctx, s.buyer, &CreateOrderRequest{
		ItemIDs:         []uuid.UUID{s.i1.ID, own.ID},
		ShippingAddress: "x",
		PaymentMethod:   "card",
	})
	s.Equal(KindAuthorization, KindOf(err))

	orders, err := s.svc.ListForUser(s.ctx, s.buyer)
	s.Require().NoError(err)
	s.Empty(orders)
}

func (s *OrderServiceTestSuite) TestFullLifecycleWithDualConfirmation() {
	order := s.placeOrder()

	result := s.move(s.seller, order.ID, models.OrderStatusAccepted)
	s.Equal(OutcomeTransitioned, result.Outcome)
	s.Equal(models.OrderStatusAccepted, result.Order.Status)
	s.Equal(models.ItemStatusAccepted, s.f.itemStatus(s.T(), s.i1.ID))
	s.Equal(models.ItemStatusAccepted, s.f.itemStatus(s.T(), s.i2.ID))

	s.move(s.seller, order.ID, models.OrderStatusInTransit)
	s.Equal(models.ItemStatusInTransit, s.f.itemStatus(s.T(), s.i1.ID))

	result = s.move(s.buyer, order.ID, models.OrderStatusCompleted)
	s.Equal(OutcomeAwaitingConfirmation, result.Outcome)
	s.Equal(models.OrderStatusInTransit, result.Order.Status)
	s.True(result.Order.BuyerConfirmed)
	s.False(result.Order.SellerConfirmed)
	s.Equal(models.ItemStatusInTransit, s.f.itemStatus(s.T(), s.i1.ID))

	result = s.move(s.seller, order.ID, models.OrderStatusCompleted)
	s.Equal(OutcomeTransitioned, result.Outcome)
	s.Equal(models.OrderStatusCompleted, result.Order.Status)
	s.Equal(models.ItemStatusCompleted, s.f.itemStatus(s.T(), s.i1.ID))
	s.Equal(models.ItemStatusCompleted, s.f.itemStatus(s.T(), s.i2.ID))

	stored := s.reload(order.ID)
	s.Equal(models.OrderStatusCompleted, stored.Status)
	s.True(stored.BuyerConfirmed)
	s.True(stored.SellerConfirmed)
}

func (s *OrderServiceTestSuite) TestSkippingStatesIsInvalid() {
	order := s.placeOrder()

	_, err := s.svc.Transition(s.ctx, s.seller, order.ID, &TransitionOrderRequest{Status: models.OrderStatusInTransit})
	s.Equal(KindInvalidTransition, KindOf(err))

	_, err = s.svc.Transition(s.ctx, s.seller, order.ID, &TransitionOrderRequest{Status: models.OrderStatusCompleted, ForceComplete: true})
	s.Equal(KindInvalidTransition, KindOf(err))

	stored := s.reload(order.ID)
	s.Equal(models.OrderStatusPending, stored.Status)
	s.Equal(models.ItemStatusPending, s.f.itemStatus(s.T(), s.i1.ID))
}

func (s *OrderServiceTestSuite) TestUnknownStatusIsInvalid() {
	order := s.placeOrder()

	for _, status := range []models.OrderStatus{models.OrderStatusPending, models.ItemStatusDeclined, "shipped"} {
		_, err := s.svc.Transition(s.ctx, s.seller, order.ID, &TransitionOrderRequest{Status: status})
		s.Equal(KindInvalidTransition, KindOf(err), status)
	}
}

func (s *OrderServiceTestSuite) TestOnlySellerAcceptsAndShips() {
	order := s.placeOrder()

	_, err := s.svc.Transition(s.ctx, s.buyer, order.ID, &TransitionOrderRequest{Status: models.OrderStatusAccepted})
	s.Equal(KindAuthorization, KindOf(err))

	s.move(s.seller, order.ID, models.OrderStatusAccepted)

	_, err = s.svc.Transition(s.ctx, s.buyer, order.ID, &TransitionOrderRequest{Status: models.OrderStatusInTransit})
	s.Equal(KindAuthorization, KindOf(err))
}

func (s *OrderServiceTestSuite) TestStrangerCannotTouchOrder() {
	order := s.placeOrder()

	_, err := s.svc.Transition(s.ctx, s.other, order.ID, &TransitionOrderRequest{Status: models.OrderStatusCancelled})
	s.Equal(KindAuthorization, KindOf(err))

	_, err = s.svc.Get(s.ctx, s.other, order.ID)
	s.Equal(KindAuthorization, KindOf(err))

	admin := Principal{UserID: uuid.New(), Role: models.UserRoleAdmin}
	got, err := s.svc.Get(s.ctx, admin, order.ID)
	s.Require().NoError(err)
	s.Equal(order.ID, got.ID)
}

func (s *OrderServiceTestSuite) TestCancelLeavesItemsAvailable() {
	pending := s.placeOrder()
	result := s.move(s.buyer, pending.ID, models.OrderStatusCancelled)
	s.Equal(models.OrderStatusCancelled, result.Order.Status)
	s.Equal(models.ItemStatusPending, s.f.itemStatus(s.T(), s.i1.ID))

	accepted := s.placeOrder()
	s.move(s.seller, accepted.ID, models.OrderStatusAccepted)
	s.move(s.seller, accepted.ID, models.OrderStatusCancelled)
	// Items keep the status the acceptance gave them.
	s.Equal(models.ItemStatusAccepted, s.f.itemStatus(s.T(), s.i1.ID))

	_, err := s.svc.Transition(s.ctx, s.buyer, accepted.ID, &TransitionOrderRequest{Status: models.OrderStatusAccepted})
	s.Equal(KindAuthorization, KindOf(err))
	_, err = s.svc.Transition(s.ctx, s.seller, accepted.ID, &TransitionOrderRequest{Status: models.OrderStatusAccepted})
	s.Equal(KindInvalidTransition, KindOf(err))
}

func (s *OrderServiceTestSuite) TestCancelInTransitFails() {
	order := s.placeOrder()
	s.move(s.seller, order.ID, models.OrderStatusAccepted)
	s.move(s.seller, order.ID, models.OrderStatusInTransit)

	for _, actor := range []Principal{s.buyer, s.seller} {
		_, err := s.svc.Transition(s.ctx, actor, order.ID, &TransitionOrderRequest{Status: models.OrderStatusCancelled})
		s.Equal(KindInvalidTransition, KindOf(err))
	}
	s.Equal(models.OrderStatusInTransit, s.reload(order.ID).Status)
}

func (s *OrderServiceTestSuite) TestSellerForceComplete() {
	order := s.placeOrder()
	s.move(s.seller, order.ID, models.OrderStatusAccepted)
	s.move(s.seller, order.ID, models.OrderStatusInTransit)

	result, err := s.svc.Transition(s.ctx, s.seller, order.ID, &TransitionOrderRequest{
		Status:        models.OrderStatusCompleted,
		ForceComplete: true,
	})
	s.Require().NoError(err)
	s.Equal(OutcomeTransitioned, result.Outcome)
	s.Equal(models.OrderStatusCompleted, result.Order.Status)
	s.True(result.Order.SellerConfirmed)
	s.False(result.Order.BuyerConfirmed)
	s.Equal(models.ItemStatusCompleted, s.f.itemStatus(s.T(), s.i2.ID))
}

func (s *OrderServiceTestSuite) TestBuyerForceCompleteOnlyConfirms() {
	order := s.placeOrder()
	s.move(s.seller, order.ID, models.OrderStatusAccepted)
	s.move(s.seller, order.ID, models.OrderStatusInTransit)

	result, err := s.svc.Transition(s.ctx, s.buyer, order.ID, &TransitionOrderRequest{
		Status:        models.OrderStatusCompleted,
		ForceComplete: true,
	})
	s.Require().NoError(err)
	s.Equal(OutcomeAwaitingConfirmation, result.Outcome)
	s.Equal(models.OrderStatusInTransit, result.Order.Status)
}

func (s *OrderServiceTestSuite) TestRepeatedConfirmationIsNoop() {
	order := s.placeOrder()
	s.move(s.seller, order.ID, models.OrderStatusAccepted)
	s.move(s.seller, order.ID, models.OrderStatusInTransit)
	s.move(s.buyer, order.ID, models.OrderStatusCompleted)
	version := s.reload(order.ID).Version

	result := s.move(s.buyer, order.ID, models.OrderStatusCompleted)
	s.Equal(OutcomeAwaitingConfirmation, result.Outcome)
	s.Equal(version, s.reload(order.ID).Version)
}

func (s *OrderServiceTestSuite) TestConcurrentConfirmationsBothLand() {
	order := s.placeOrder()
	s.move(s.seller, order.ID, models.OrderStatusAccepted)
	s.move(s.seller, order.ID, models.OrderStatusInTransit)

	var wg sync.WaitGroup
	outcomes := make([]TransitionOutcome, 2)
	errs := make([]error, 2)
	for i, actor := range []Principal{s.buyer, s.seller} {
		wg.Add(1)
		go func(i int, actor Principal) {
			defer wg.Done()
			result, err := s.svc.Transition(s.ctx, actor, order.ID, &TransitionOrderRequest{Status: models.OrderStatusCompleted})
			errs[i] = err
			if err == nil {
				outcomes[i] = result.Outcome
			}
		}(i, actor)
	}
	wg.Wait()

	s.Require().NoError(errs[0])
	s.Require().NoError(errs[1])
	s.ElementsMatch([]TransitionOutcome{OutcomeAwaitingConfirmation, OutcomeTransitioned}, outcomes)

	stored := s.reload(order.ID)
	s.Equal(models.OrderStatusCompleted, stored.Status)
	s.True(stored.BuyerConfirmed)
	s.True(stored.SellerConfirmed)
	s.Equal(models.ItemStatusCompleted, s.f.itemStatus(s.T(), s.i1.ID))
}

func (s *OrderServiceTestSuite) TestTransitionMissingOrder() {
	_, err := s.svc.Transition(s.ctx, s.seller, uuid.New(), &TransitionOrderRequest{Status: models.OrderStatusAccepted})
	s.Equal(KindNotFound, KindOf(err))
}

func (s *OrderServiceTestSuite) TestListForSellerAndBuyer() {
	order := s.placeOrder()

	for _, actor := range []Principal{s.buyer, s.seller} {
		orders, err := s.svc.ListForUser(s.ctx, actor)
		s.Require().NoError(err)
		s.Require().Len(orders, 1)
		s.Equal(order.ID, orders[0].ID)
	}

	orders, err := s.svc.ListForUser(s.ctx, s.other)
	s.Require().NoError(err)
	s.Empty(orders)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func TestPlanOrderTransitionDoesNotCascadeOnCancel(t *testing.T) {
	order := &models.Order{
		ID:     uuid.New(),
		Status: models.OrderStatusAccepted,
		Items:  []models.OrderLine{{ItemID: uuid.New()}},
	}

	plan, err := planOrderTransition(order, fsm.PartyBuyer, &TransitionOrderRequest{Status: models.OrderStatusCancelled})
	require.NoError(t, err)
	assert.True(t, plan.write)
	assert.Empty(t, plan.change.CascadeItemIDs)
	assert.Equal(t, models.OrderStatusCancelled, plan.change.Status)
}

func TestPlanOrderTransitionCarriesVersion(t *testing.T) {
	order := &models.Order{
		ID:      uuid.New(),
		Status:  models.OrderStatusPending,
		Version: 7,
		Items:   []models.OrderLine{{ItemID: uuid.New()}, {ItemID: uuid.New()}},
	}

	plan, err := planOrderTransition(order, fsm.PartySeller, &TransitionOrderRequest{Status: models.OrderStatusAccepted})
	require.NoError(t, err)
	assert.Equal(t, int64(7), plan.change.ExpectedVersion)
	assert.Equal(t, order.ItemIDs(), plan.change.CascadeItemIDs)
	assert.Equal(t, models.ItemStatusAccepted, plan.change.CascadeStatus)
}

func TestPlanOrderTransitionRejectsFinalOrders(t *testing.T) {
	for _, status := range []models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusCancelled} {
		order := &models.Order{ID: uuid.New(), Status: status}

		_, err := planOrderTransition(order, fsm.PartyBuyer|fsm.PartySeller, &TransitionOrderRequest{Status: models.OrderStatusCancelled})
		require.Error(t, err)
		assert.Equal(t, KindInvalidTransition, KindOf(err))
		assert.Contains(t, err.Error(), "already "+string(status))
	}
}
