// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/sneakers-backend/internal/i18n"
	"github.com/javajoker/sneakers-backend/internal/services"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, order)
}

// GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListForUser(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, orders)
}

// GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "order")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), actor, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

// PATCH /orders/:id
//
// A recorded confirmation that still waits on the other party answers 202.
func (h *OrderHandler) Transition(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := principal(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "order")
	if !ok {
		return
	}

	var req services.TransitionOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.orderService.Transition(c.Request.Context(), actor, orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Outcome == services.OutcomeAwaitingConfirmation {
		utils.AcceptedResponse(c, gin.H{
			"message": i18n.T(lang, i18n.KeyOrderAwaitingConfirmation),
			"outcome": result.Outcome,
			"order":   result.Order,
		})
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderUpdated),
		"outcome": result.Outcome,
		"order":   result.Order,
	})
}
