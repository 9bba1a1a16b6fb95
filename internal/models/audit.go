// internal/models/audit.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog journals every mutating API request.
type AuditLog struct {
	ID           uuid.UUID  `json:"auditLogId" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       *uuid.UUID `json:"userId" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resourceType" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resourceId" gorm:"type:uuid;index"`
	StatusCode   int        `json:"statusCode"`
	NewValues    JSONB      `json:"newValues" gorm:"type:jsonb"`
	IPAddress    string     `json:"ipAddress" gorm:"size:45"`
	UserAgent    string     `json:"userAgent" gorm:"type:text"`
	Timestamps
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	EnsureID(&a.ID)
	return nil
}
