// internal/handlers/common.go
package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sneakers-backend/internal/i18n"
	"github.com/javajoker/sneakers-backend/internal/middleware"
	"github.com/javajoker/sneakers-backend/internal/services"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

// ImageStore uploads request files and removes them again.
type ImageStore interface {
	UploadImage(ctx context.Context, header *multipart.FileHeader, options services.UploadOptions) (*services.ImageRef, error)
	services.ImageRemover
}

// bindJSON decodes and validates the body, writing the error response itself.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func principal(c *gin.Context) (services.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return p, ok
}

func pathID(c *gin.Context, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationID, resource), nil)
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service error kinds onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		utils.InternalErrorResponse(c, "")
		return
	}

	switch svcErr.Kind {
	case services.KindValidation:
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", svcErr.Message, nil)
	case services.KindAuthorization:
		utils.ForbiddenResponse(c, svcErr.Message)
	case services.KindNotFound:
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", svcErr.Message, nil)
	case services.KindInvalidTransition:
		utils.InvalidTransitionResponse(c, svcErr.Message)
	case services.KindConflict:
		utils.ConflictResponse(c, svcErr.Message)
	default:
		utils.InternalErrorResponse(c, "")
	}
}

// uploadAll stores every file, removing the ones already stored when a later
// upload fails.
func uploadAll(ctx context.Context, store ImageStore, files []*multipart.FileHeader, folder string) ([]services.ImageRef, error) {
	refs := make([]services.ImageRef, 0, len(files))
	for _, file := range files {
		ref, err := store.UploadImage(ctx, file, services.UploadOptionsFor(folder))
		if err != nil {
			keys := make([]string, 0, len(refs))
			for _, done := range refs {
				keys = append(keys, done.Key)
			}
			services.RemoveImages(ctx, store, keys, logrus.WithField("component", "uploads"))
			return nil, err
		}
		refs = append(refs, *ref)
	}
	return refs, nil
}
