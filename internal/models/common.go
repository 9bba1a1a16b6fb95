// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Timestamps is embedded by every persisted aggregate.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// EnsureID assigns a fresh identity when the caller did not supply one.
func EnsureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// Enums
type UserRole string

const (
	UserRoleUser   UserRole = "user"
	UserRoleSeller UserRole = "seller"
	UserRoleAdmin  UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleSeller, UserRoleAdmin:
		return true
	}
	return false
}

// ItemStatus is shared by items, trade items and orders so that an item's
// availability mirrors the progress of the order or trade holding it.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusAccepted  ItemStatus = "accepted"
	ItemStatusInTransit ItemStatus = "in_transit"
	ItemStatusCompleted ItemStatus = "completed"
	ItemStatusCancelled ItemStatus = "cancelled"
	ItemStatusDeclined  ItemStatus = "declined"
)

// OrderStatus values are the item statuses an order can hold.
type OrderStatus = ItemStatus

const (
	OrderStatusPending   = ItemStatusPending
	OrderStatusAccepted  = ItemStatusAccepted
	OrderStatusInTransit = ItemStatusInTransit
	OrderStatusCompleted = ItemStatusCompleted
	OrderStatusCancelled = ItemStatusCancelled
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusAccepted, ItemStatusInTransit,
		ItemStatusCompleted, ItemStatusCancelled, ItemStatusDeclined:
		return true
	}
	return false
}

type TradeStatus string

const (
	TradeStatusPending  TradeStatus = "pending"
	TradeStatusAccepted TradeStatus = "accepted"
	TradeStatusDeclined TradeStatus = "declined"
)
