// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/sneakers-backend/internal/i18n"
	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/services"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

const principalKey = "principal"

// AuthRequired resolves the bearer token into a services.Principal stored on
// the request context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		role := models.UserRole(claims.Role)
		if err != nil || !role.Valid() {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		c.Set(principalKey, services.Principal{UserID: userID, Role: role})
		c.Next()
	}
}

// RoleRequired admits only principals holding one of roles. It must run
// after AuthRequired.
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if ok {
			for _, role := range roles {
				if principal.Role == role {
					c.Next()
					return
				}
			}
		}

		utils.ForbiddenResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthSellerRequired))
		c.Abort()
	}
}

// SellerRequired admits sellers and admins.
func SellerRequired() gin.HandlerFunc {
	return RoleRequired(models.UserRoleSeller, models.UserRoleAdmin)
}

func CurrentPrincipal(c *gin.Context) (services.Principal, bool) {
	if value, exists := c.Get(principalKey); exists {
		if principal, ok := value.(services.Principal); ok {
			return principal, true
		}
	}
	return services.Principal{}, false
}
