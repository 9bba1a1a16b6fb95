// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/sneakers-backend/internal/services"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /users
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.List(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// GET /users/stats
func (h *UserHandler) Stats(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	stats, err := h.userService.Stats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, stats)
}

// PATCH /users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}
