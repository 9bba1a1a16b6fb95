// internal/handlers/item.go
package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"

	"github.com/javajoker/sneakers-backend/internal/i18n"
	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/repository"
	"github.com/javajoker/sneakers-backend/internal/services"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

type ItemHandler struct {
	catalogService *services.CatalogService
	images         ImageStore
}

func NewItemHandler(catalogService *services.CatalogService, images ImageStore) *ItemHandler {
	return &ItemHandler{catalogService: catalogService, images: images}
}

// POST /items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := principal(c)
	if !ok {
		return
	}

	form := formParser{c: c}
	req := services.CreateItemRequest{
		Name:      c.PostForm("name"),
		Size:      c.PostForm("size"),
		Details:   c.PostForm("details"),
		SRP:       form.decimal("srp"),
		Price:     form.decimal("price"),
		OP:        form.decimal("op"),
		WearValue: form.float("wearValue"),
	}
	if form.err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, form.field), form.err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	img, ok := h.optionalImage(c, services.FolderItems)
	if !ok {
		return
	}

	item, err := h.catalogService.CreateItem(c.Request.Context(), actor, &req, img)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, item)
}

// GET /items
func (h *ItemHandler) ListItems(c *gin.Context) {
	filter, ok := itemFilter(c)
	if !ok {
		return
	}

	items, total, err := h.catalogService.ListItems(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(items, total, filter.PaginationParams))
}

// GET /items/mine
func (h *ItemHandler) ListMyItems(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	filter, ok := itemFilter(c)
	if !ok {
		return
	}
	filter.CreatedBy = &actor.UserID

	items, total, err := h.catalogService.ListItems(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(items, total, filter.PaginationParams))
}

// POST /trade-items
func (h *ItemHandler) CreateTradeItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := principal(c)
	if !ok {
		return
	}

	form := formParser{c: c}
	req := services.CreateTradeItemRequest{
		Name:      c.PostForm("name"),
		Size:      c.PostForm("size"),
		Details:   c.PostForm("details"),
		Price:     form.decimal("price"),
		WearValue: form.float("wearValue"),
	}
	if form.err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, form.field), form.err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	img, ok := h.optionalImage(c, services.FolderTradeItems)
	if !ok {
		return
	}

	item, err := h.catalogService.CreateTradeItem(c.Request.Context(), actor, &req, img)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, item)
}

// GET /trade-items
func (h *ItemHandler) ListTradeItems(c *gin.Context) {
	filter, ok := itemFilter(c)
	if !ok {
		return
	}

	items, total, err := h.catalogService.ListTradeItems(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(items, total, filter.PaginationParams))
}

// GET /items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := pathID(c, "item")
	if !ok {
		return
	}

	item, err := h.catalogService.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, item)
}

// PATCH /items/:id accepts a JSON body or a multipart form with an optional
// replacement img.
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "item")
	if !ok {
		return
	}

	var req services.UpdateItemRequest
	var img *services.ImageRef
	if c.ContentType() == binding.MIMEJSON {
		if !bindJSON(c, &req) {
			return
		}
	} else {
		form := formParser{c: c}
		req = services.UpdateItemRequest{
			Name:       form.optString("name"),
			Size:       form.optString("size"),
			Details:    form.optString("details"),
			SRP:        form.optDecimal("srp"),
			Price:      form.optDecimal("price"),
			OP:         form.optDecimal("op"),
			WearValue:  form.optFloat("wearValue"),
			ItemStatus: form.optStatus("itemStatus"),
		}
		if form.err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, form.field), form.err.Error())
			return
		}
		if img, ok = h.optionalImage(c, services.FolderItems); !ok {
			return
		}
	}

	item, err := h.catalogService.UpdateItem(c.Request.Context(), actor, id, &req, img)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, item)
}

// DELETE /items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "item")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteItem(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyItemDeleted)})
}

// GET /trade-items/:id
func (h *ItemHandler) GetTradeItem(c *gin.Context) {
	id, ok := pathID(c, "trade item")
	if !ok {
		return
	}

	item, err := h.catalogService.GetTradeItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, item)
}

// PATCH /trade-items/:id
func (h *ItemHandler) UpdateTradeItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "trade item")
	if !ok {
		return
	}

	var req services.UpdateTradeItemRequest
	var img *services.ImageRef
	if c.ContentType() == binding.MIMEJSON {
		if !bindJSON(c, &req) {
			return
		}
	} else {
		form := formParser{c: c}
		req = services.UpdateTradeItemRequest{
			Name:       form.optString("name"),
			Size:       form.optString("size"),
			Details:    form.optString("details"),
			Price:      form.optDecimal("price"),
			WearValue:  form.optFloat("wearValue"),
			ItemStatus: form.optStatus("itemStatus"),
		}
		if form.err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, form.field), form.err.Error())
			return
		}
		if img, ok = h.optionalImage(c, services.FolderTradeItems); !ok {
			return
		}
	}

	item, err := h.catalogService.UpdateTradeItem(c.Request.Context(), actor, id, &req, img)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, item)
}

// DELETE /trade-items/:id
func (h *ItemHandler) DeleteTradeItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "trade item")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteTradeItem(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyTradeItemDeleted)})
}

func (h *ItemHandler) optionalImage(c *gin.Context, folder string) (*services.ImageRef, bool) {
	header, err := c.FormFile("img")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return nil, false
	}

	refs, err := uploadAll(c.Request.Context(), h.images, []*multipart.FileHeader{header}, folder)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return &refs[0], true
}

func itemFilter(c *gin.Context) (repository.ItemFilter, bool) {
	filter := repository.ItemFilter{PaginationParams: utils.GetPaginationParams(c)}
	if raw := c.Query("status"); raw != "" {
		status := models.ItemStatus(raw)
		if !status.Valid() {
			lang := utils.GetLangFromContext(c)
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "status"), nil)
			return filter, false
		}
		filter.Status = &status
	}
	return filter, true
}

// formParser reads numeric form fields, keeping the first failure.
type formParser struct {
	c     *gin.Context
	err   error
	field string
}

func (p *formParser) decimal(field string) decimal.Decimal {
	raw := p.c.PostForm(field)
	if raw == "" || p.err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		p.err, p.field = err, field
	}
	return d
}

func (p *formParser) float(field string) float64 {
	raw := p.c.PostForm(field)
	if raw == "" || p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.err, p.field = err, field
	}
	return f
}

// The opt readers return nil for fields absent from the form.

func (p *formParser) optString(field string) *string {
	raw, ok := p.c.GetPostForm(field)
	if !ok {
		return nil
	}
	return &raw
}

func (p *formParser) optDecimal(field string) *decimal.Decimal {
	if _, ok := p.c.GetPostForm(field); !ok {
		return nil
	}
	d := p.decimal(field)
	return &d
}

func (p *formParser) optFloat(field string) *float64 {
	if _, ok := p.c.GetPostForm(field); !ok {
		return nil
	}
	f := p.float(field)
	return &f
}

func (p *formParser) optStatus(field string) *models.ItemStatus {
	raw, ok := p.c.GetPostForm(field)
	if !ok {
		return nil
	}
	status := models.ItemStatus(raw)
	return &status
}
