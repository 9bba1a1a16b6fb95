// internal/handlers/trade.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/sneakers-backend/internal/i18n"
	"github.com/javajoker/sneakers-backend/internal/services"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

type TradeHandler struct {
	tradeService *services.TradeService
	images       ImageStore
}

func NewTradeHandler(tradeService *services.TradeService, images ImageStore) *TradeHandler {
	return &TradeHandler{tradeService: tradeService, images: images}
}

// POST /trades
//
// Multipart form: userOneItemIds and userTwoItemsData are JSON arrays, images
// holds one file per entry of userTwoItemsData in the same order.
func (h *TradeHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := principal(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "form"), err.Error())
		return
	}

	var itemIDs []uuid.UUID
	if err := json.Unmarshal([]byte(c.PostForm("userOneItemIds")), &itemIDs); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "userOneItemIds"), err.Error())
		return
	}

	var proposed []services.ProposedItemInput
	if err := json.Unmarshal([]byte(c.PostForm("userTwoItemsData")), &proposed); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "userTwoItemsData"), err.Error())
		return
	}
	for i := range proposed {
		if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&proposed[i])); len(validationErrors) > 0 {
			utils.ValidationErrorResponse(c, validationErrors)
			return
		}
	}

	files := form.File["images"]
	if len(files) > services.MaxTradeImages {
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationInvalid, "images"), nil)
		return
	}

	refs, err := uploadAll(c.Request.Context(), h.images, files, services.FolderTrades)
	if err != nil {
		respondError(c, err)
		return
	}

	trade, err := h.tradeService.CreateOffer(c.Request.Context(), actor, &services.CreateOfferRequest{
		UserOneItemIDs:  itemIDs,
		UserTwoItems:    proposed,
		Images:          refs,
		ShippingAddress: c.PostForm("shippingAddress"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, trade)
}

// GET /trades
func (h *TradeHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	trades, err := h.tradeService.ListForUser(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, trades)
}

// PATCH /trades/:id
func (h *TradeHandler) UpdateStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := principal(c)
	if !ok {
		return
	}
	tradeID, ok := pathID(c, "trade")
	if !ok {
		return
	}

	var req services.UpdateTradeStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	trade, err := h.tradeService.UpdateStatus(c.Request.Context(), actor, tradeID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTradeUpdated),
		"trade":   trade,
	})
}

// DELETE /trades/:id
func (h *TradeHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := principal(c)
	if !ok {
		return
	}
	tradeID, ok := pathID(c, "trade")
	if !ok {
		return
	}

	if err := h.tradeService.DeleteOffer(c.Request.Context(), actor, tradeID); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTradeDeleted),
	})
}
