// internal/handlers/dashboard.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/sneakers-backend/internal/i18n"
	"github.com/javajoker/sneakers-backend/internal/repository"
	"github.com/javajoker/sneakers-backend/internal/services"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

const dateLayout = "2006-01-02"

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GET /dashboard?from=&to=
func (h *DashboardHandler) Stats(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := principal(c)
	if !ok {
		return
	}

	from, err := parseBound(c.Query("from"), false)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyDashboardInvalidRange), err.Error())
		return
	}
	to, err := parseBound(c.Query("to"), true)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyDashboardInvalidRange), err.Error())
		return
	}

	stats, err := h.dashboardService.Stats(c.Request.Context(), actor, repository.DateWindow{From: from, To: to})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, stats)
}

// parseBound accepts RFC3339 or a bare date. A bare upper bound covers the
// whole day.
func parseBound(raw string, upper bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
