// Package fsm holds the transition tables for orders and trades.
package fsm

import "github.com/javajoker/sneakers-backend/internal/models"

// Party is the relationship an actor holds to an order or trade.
type Party int

const (
	PartyBuyer Party = 1 << iota
	PartySeller
)

func (p Party) Has(other Party) bool {
	return p&other != 0
}

// OrderRule describes one edge of the order state machine.
type OrderRule struct {
	From    []models.OrderStatus
	Allowed Party
	Cascade bool
}

var orderRules = map[models.OrderStatus]OrderRule{
	models.OrderStatusAccepted: {
		From:    []models.OrderStatus{models.OrderStatusPending},
		Allowed: PartySeller,
		Cascade: true,
	},
	models.OrderStatusCancelled: {
		From:    []models.OrderStatus{models.OrderStatusPending, models.OrderStatusAccepted},
		Allowed: PartyBuyer | PartySeller,
	},
	models.OrderStatusInTransit: {
		From:    []models.OrderStatus{models.OrderStatusAccepted},
		Allowed: PartySeller,
		Cascade: true,
	},
	models.OrderStatusCompleted: {
		From:    []models.OrderStatus{models.OrderStatusInTransit},
		Allowed: PartyBuyer | PartySeller,
		Cascade: true,
	},
}

// OrderRuleFor returns the rule for entering the target status. Targets with
// no rule (pending, declined, unknown values) can never be requested.
func OrderRuleFor(to models.OrderStatus) (OrderRule, bool) {
	rule, ok := orderRules[to]
	return rule, ok
}

// CanTransitionOrder reports whether the order can move from the current to
// the target status.
func CanTransitionOrder(from, to models.OrderStatus) bool {
	rule, ok := orderRules[to]
	if !ok {
		return false
	}
	for _, s := range rule.From {
		if s == from {
			return true
		}
	}
	return false
}

// IsTerminalOrder reports whether no edge leaves the status.
func IsTerminalOrder(status models.OrderStatus) bool {
	for to := range orderRules {
		if CanTransitionOrder(status, to) {
			return false
		}
	}
	return true
}

var tradeTransitions = map[models.TradeStatus]map[models.TradeStatus]struct{}{
	models.TradeStatusPending: {
		models.TradeStatusAccepted: {},
		models.TradeStatusDeclined: {},
	},
	models.TradeStatusAccepted: {},
	models.TradeStatusDeclined: {},
}

// CanTransitionTrade reports whether a trade can move from the current to the
// target status.
func CanTransitionTrade(from, to models.TradeStatus) bool {
	allowed, ok := tradeTransitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// IsTradeStatus reports whether the value is a status the trade lifecycle
// models at all.
func IsTradeStatus(status models.TradeStatus) bool {
	_, ok := tradeTransitions[status]
	return ok
}
