// internal/models/trade.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TradeLine snapshots an existing TradeItem requested from userOne.
type TradeLine struct {
	ItemID  uuid.UUID       `json:"itemId"`
	Name    string          `json:"name"`
	Img     string          `json:"img"`
	Price   decimal.Decimal `json:"price"`
	Size    string          `json:"size"`
	Details string          `json:"details"`
}

// ProposedItem is described by the proposer inside the offer. It has an
// identity but no trade_items row.
type ProposedItem struct {
	ItemID   uuid.UUID       `json:"itemId"`
	Name     string          `json:"name"`
	Img      string          `json:"img"`
	Price    decimal.Decimal `json:"price"`
	Size     string          `json:"size"`
	Details  string          `json:"details"`
	ItemWear ItemWear        `json:"itemWear"`
}

type Trade struct {
	ID                uuid.UUID       `json:"tradeId" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserOneID         uuid.UUID       `json:"userOne" gorm:"type:uuid;not null;index"`
	UserTwoID         uuid.UUID       `json:"userTwo" gorm:"type:uuid;not null;index"`
	UserOneItems      []TradeLine     `json:"userOneItems" gorm:"type:jsonb;serializer:json;not null"`
	UserTwoItems      []ProposedItem  `json:"userTwoItems" gorm:"type:jsonb;serializer:json;not null"`
	UserOneTotalPrice decimal.Decimal `json:"userOneTotalPrice" gorm:"type:decimal(12,2);not null"`
	UserTwoTotalPrice decimal.Decimal `json:"userTwoTotalPrice" gorm:"type:decimal(12,2);not null"`
	ShippingAddress   string          `json:"shippingAddress" gorm:"type:text;not null"`
	Status            TradeStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ImageKeys         pq.StringArray  `json:"-" gorm:"type:text[]"`
	Timestamps
}

func (t *Trade) BeforeCreate(tx *gorm.DB) error {
	EnsureID(&t.ID)
	return nil
}

// UserOneItemIDs lists the persisted trade items requested by the offer.
func (t *Trade) UserOneItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.UserOneItems))
	for _, line := range t.UserOneItems {
		ids = append(ids, line.ItemID)
	}
	return ids
}

func (t *Trade) IsParty(userID uuid.UUID) bool {
	return t.UserOneID == userID || t.UserTwoID == userID
}
