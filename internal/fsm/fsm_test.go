package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/javajoker/sneakers-backend/internal/models"
)

func TestCanTransitionOrder(t *testing.T) {
	allowed := [][2]models.OrderStatus{
		{models.OrderStatusPending, models.OrderStatusAccepted},
		{models.OrderStatusPending, models.OrderStatusCancelled},
		{models.OrderStatusAccepted, models.OrderStatusCancelled},
		{models.OrderStatusAccepted, models.OrderStatusInTransit},
		{models.OrderStatusInTransit, models.OrderStatusCompleted},
	}
	for _, edge := range allowed {
		assert.True(t, CanTransitionOrder(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}

	denied := [][2]models.OrderStatus{
		{models.OrderStatusPending, models.OrderStatusInTransit},
		{models.OrderStatusPending, models.OrderStatusCompleted},
		{models.OrderStatusAccepted, models.OrderStatusCompleted},
		{models.OrderStatusInTransit, models.OrderStatusCancelled},
		{models.OrderStatusCompleted, models.OrderStatusCancelled},
		{models.OrderStatusCancelled, models.OrderStatusAccepted},
		{models.OrderStatusPending, models.ItemStatusDeclined},
		{models.OrderStatusAccepted, models.OrderStatusPending},
	}
	for _, edge := range denied {
		assert.False(t, CanTransitionOrder(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}
}

func TestTerminalOrderStatuses(t *testing.T) {
	assert.True(t, IsTerminalOrder(models.OrderStatusCompleted))
	assert.True(t, IsTerminalOrder(models.OrderStatusCancelled))
	assert.False(t, IsTerminalOrder(models.OrderStatusPending))
	assert.False(t, IsTerminalOrder(models.OrderStatusInTransit))
}

func TestOrderRulesCascade(t *testing.T) {
	for _, status := range []models.OrderStatus{models.OrderStatusAccepted, models.OrderStatusInTransit, models.OrderStatusCompleted} {
		rule, ok := OrderRuleFor(status)
		assert.True(t, ok)
		assert.True(t, rule.Cascade, "%s should cascade", status)
	}

	rule, ok := OrderRuleFor(models.OrderStatusCancelled)
	assert.True(t, ok)
	assert.False(t, rule.Cascade)

	_, ok = OrderRuleFor(models.ItemStatusDeclined)
	assert.False(t, ok)
}

func TestPartyHas(t *testing.T) {
	both := PartyBuyer | PartySeller
	assert.True(t, both.Has(PartyBuyer))
	assert.True(t, both.Has(PartySeller))
	assert.False(t, Party(0).Has(PartySeller))
	assert.False(t, PartyBuyer.Has(PartySeller))
}

func TestCanTransitionTrade(t *testing.T) {
	assert.True(t, CanTransitionTrade(models.TradeStatusPending, models.TradeStatusAccepted))
	assert.True(t, CanTransitionTrade(models.TradeStatusPending, models.TradeStatusDeclined))
	assert.False(t, CanTransitionTrade(models.TradeStatusAccepted, models.TradeStatusDeclined))
	assert.False(t, CanTransitionTrade(models.TradeStatusDeclined, models.TradeStatusAccepted))
	assert.False(t, CanTransitionTrade(models.TradeStatusPending, models.TradeStatus("completed")))
	assert.False(t, IsTradeStatus(models.TradeStatus("cancelled")))
}
