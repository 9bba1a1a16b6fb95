// internal/services/principal.go
package services

import (
	"github.com/google/uuid"

	"github.com/javajoker/sneakers-backend/internal/models"
)

// Principal is the authenticated caller. It is resolved once per request and
// passed explicitly into every service operation.
type Principal struct {
	UserID uuid.UUID
	Role   models.UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.UserRoleAdmin
}

func (p Principal) IsZero() bool {
	return p.UserID == uuid.Nil
}
