//go:build integration

package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/sneakers-backend/internal/database"
	"github.com/javajoker/sneakers-backend/internal/models"
)

// Run with:
//
//	TEST_DATABASE_DSN="host=localhost user=postgres password=postgres dbname=sneakers_test sslmode=disable" \
//	  go test -tags integration ./internal/repository/...
type PostgresSuite struct {
	suite.Suite
	ctx   context.Context
	db    *gorm.DB
	repos *Repositories
	buyer *models.User
}

func (s *PostgresSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		s.T().Skip("TEST_DATABASE_DSN is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(db))

	s.ctx = context.Background()
	s.db = db
	s.repos = NewGormRepositories(db)
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.db.Exec("TRUNCATE orders, trades, items, trade_items, audit_logs, users CASCADE").Error)

	s.buyer = &models.User{Name: "buyer", Email: "buyer@example.com", Role: models.UserRoleUser}
	s.Require().NoError(s.buyer.SetPassword("Sneakers1!"))
	s.Require().NoError(s.repos.Users.Create(s.ctx, s.buyer))
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		database.Close(s.db)
	}
}

func (s *PostgresSuite) item(name string) *models.Item {
	item := &models.Item{
		Name:      name,
		Size:      "10",
		SRP:       decimal.NewFromInt(200),
		Price:     decimal.NewFromInt(180),
		OP:        decimal.NewFromInt(100),
		CreatedBy: uuid.New(),
	}
	s.Require().NoError(s.repos.Items.Create(s.ctx, item))
	return item
}

func (s *PostgresSuite) order(items ...*models.Item) *models.Order {
	order := &models.Order{
		BuyerID:         s.buyer.ID,
		ShippingAddress: "1 Court St",
		PaymentMethod:   "card",
		Status:          models.OrderStatusPending,
		ItemsCount:      len(items),
		TotalPrice:      decimal.Zero,
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderLine{ItemID: item.ID, Name: item.Name, Price: item.Price})
		order.SellerIDs = append(order.SellerIDs, item.CreatedBy.String())
		order.TotalPrice = order.TotalPrice.Add(item.Price)
	}
	s.Require().NoError(s.repos.Orders.Create(s.ctx, order))
	return order
}

func (s *PostgresSuite) TestApplyTransitionCascadesAndBumpsVersion() {
	item := s.item("jordan-1")
	order := s.order(item)

	err := s.repos.Orders.ApplyTransition(s.ctx, OrderTransition{
		OrderID:         order.ID,
		ExpectedVersion: order.Version,
		Status:          models.OrderStatusAccepted,
		CascadeItemIDs:  []uuid.UUID{item.ID},
		CascadeStatus:   models.ItemStatusAccepted,
	})
	s.Require().NoError(err)

	stored, err := s.repos.Orders.FindByID(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusAccepted, stored.Status)
	s.Equal(order.Version+1, stored.Version)

	storedItem, err := s.repos.Items.FindByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(models.ItemStatusAccepted, storedItem.ItemStatus)
}

func (s *PostgresSuite) TestApplyTransitionRejectsStaleVersion() {
	item := s.item("dunk")
	order := s.order(item)

	first := OrderTransition{
		OrderID:         order.ID,
		ExpectedVersion: order.Version,
		Status:          models.OrderStatusAccepted,
		CascadeItemIDs:  []uuid.UUID{item.ID},
		CascadeStatus:   models.ItemStatusAccepted,
	}
	s.Require().NoError(s.repos.Orders.ApplyTransition(s.ctx, first))

	stale := first
	stale.Status = models.OrderStatusCancelled
	stale.CascadeStatus = models.ItemStatusCancelled
	s.ErrorIs(s.repos.Orders.ApplyTransition(s.ctx, stale), ErrConflict)

	stored, err := s.repos.Orders.FindByID(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusAccepted, stored.Status)

	storedItem, err := s.repos.Items.FindByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(models.ItemStatusAccepted, storedItem.ItemStatus, "a rejected transition must not cascade")

	s.ErrorIs(s.repos.Orders.ApplyTransition(s.ctx, OrderTransition{OrderID: uuid.New()}), ErrConflict)
}

func (s *PostgresSuite) TestChangeStatusGuardsOnFromStatus() {
	tradeItem := &models.TradeItem{Name: "yeezy", Size: "9", Price: decimal.NewFromInt(300), CreatedBy: uuid.New()}
	s.Require().NoError(s.repos.TradeItems.Create(s.ctx, tradeItem))

	trade := &models.Trade{
		UserOneID:         tradeItem.CreatedBy,
		UserTwoID:         uuid.New(),
		UserOneItems:      []models.TradeLine{{ItemID: tradeItem.ID, Name: tradeItem.Name, Price: tradeItem.Price}},
		UserTwoItems:      []models.ProposedItem{},
		UserOneTotalPrice: tradeItem.Price,
		UserTwoTotalPrice: decimal.Zero,
		ShippingAddress:   "2 Market St",
		Status:            models.TradeStatusPending,
	}
	s.Require().NoError(s.repos.Trades.Create(s.ctx, trade))

	accept := TradeStatusChange{
		TradeID:        trade.ID,
		From:           models.TradeStatusPending,
		To:             models.TradeStatusAccepted,
		CascadeItemIDs: []uuid.UUID{tradeItem.ID},
		CascadeStatus:  models.ItemStatusAccepted,
	}
	s.Require().NoError(s.repos.Trades.ChangeStatus(s.ctx, accept))

	decline := TradeStatusChange{TradeID: trade.ID, From: models.TradeStatusPending, To: models.TradeStatusDeclined}
	s.ErrorIs(s.repos.Trades.ChangeStatus(s.ctx, decline), ErrConflict)

	stored, err := s.repos.Trades.FindByID(s.ctx, trade.ID)
	s.Require().NoError(err)
	s.Equal(models.TradeStatusAccepted, stored.Status)

	items, err := s.repos.TradeItems.FindByIDs(s.ctx, []uuid.UUID{tradeItem.ID})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(models.ItemStatusAccepted, items[0].ItemStatus)
}

func (s *PostgresSuite) TestDeleteRespectsLockedStatuses() {
	item := s.item("samba")
	order := s.order(item)
	s.Require().NoError(s.repos.Orders.ApplyTransition(s.ctx, OrderTransition{
		OrderID:         order.ID,
		ExpectedVersion: order.Version,
		Status:          models.OrderStatusAccepted,
		CascadeItemIDs:  []uuid.UUID{item.ID},
		CascadeStatus:   models.ItemStatusAccepted,
	}))

	locked := []models.ItemStatus{models.ItemStatusAccepted, models.ItemStatusInTransit}
	s.ErrorIs(s.repos.Items.Delete(s.ctx, item.ID, locked), ErrConflict)
	s.ErrorIs(s.repos.Items.Delete(s.ctx, uuid.New(), locked), ErrNotFound)

	free := s.item("kobe")
	s.Require().NoError(s.repos.Items.Delete(s.ctx, free.ID, locked))
	_, err := s.repos.Items.FindByID(s.ctx, free.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *PostgresSuite) TestUpdateLeavesItemStatusAlone() {
	item := s.item("air-max")
	item.Price = decimal.NewFromInt(150)
	item.ItemStatus = models.ItemStatusCompleted
	s.Require().NoError(s.repos.Items.Update(s.ctx, item))

	stored, err := s.repos.Items.FindByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal("150", stored.Price.String())
	s.Equal(models.ItemStatusPending, stored.ItemStatus)
	s.Equal("-25", stored.Discount.String())
}

func TestPostgresSuite(t *testing.T) {
	if os.Getenv("TEST_DATABASE_DSN") == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}
	suite.Run(t, new(PostgresSuite))
}
