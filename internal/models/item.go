// internal/models/item.go
package models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WearLabel string

const (
	WearBrandNew WearLabel = "brand-new"
	WearVNDS     WearLabel = "vnds"
	WearUIGC     WearLabel = "uigc"
	WearBeaters  WearLabel = "beaters"
)

// WearLabelFor maps a 0..1 condition score onto its coarse tier.
func WearLabelFor(wearValue float64) WearLabel {
	switch {
	case wearValue == 0:
		return WearBrandNew
	case wearValue <= 0.25:
		return WearVNDS
	case wearValue <= 0.75:
		return WearUIGC
	default:
		return WearBeaters
	}
}

type ItemWear struct {
	Label     WearLabel `json:"label" gorm:"column:wear_label;type:varchar(20);not null"`
	WearValue float64   `json:"wearValue" gorm:"column:wear_value;not null"`
}

// NewItemWear validates the score and derives its label.
func NewItemWear(wearValue float64) (ItemWear, error) {
	if wearValue < 0 || wearValue > 1 {
		return ItemWear{}, fmt.Errorf("wear value must be between 0 and 1, got %v", wearValue)
	}
	return ItemWear{Label: WearLabelFor(wearValue), WearValue: wearValue}, nil
}

var hundred = decimal.NewFromInt(100)

// DiscountPercent returns (price-srp)/srp*100 rounded to two places, or zero
// when no SRP is known.
func DiscountPercent(price, srp decimal.Decimal) decimal.Decimal {
	if srp.IsZero() {
		return decimal.Zero
	}
	return price.Sub(srp).Div(srp).Mul(hundred).Round(2)
}

// Item is a sneaker listed in the shop. Only ItemStatus is written by the
// order lifecycle; every other field belongs to the owner.
type Item struct {
	ID          uuid.UUID       `json:"itemId" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Size        string          `json:"size" gorm:"size:20;not null"`
	SRP         decimal.Decimal `json:"srp" gorm:"type:decimal(12,2);not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	OP          decimal.Decimal `json:"op" gorm:"type:decimal(12,2);not null"`
	Details     string          `json:"details,omitempty" gorm:"type:text"`
	Discount    decimal.Decimal `json:"discount" gorm:"type:decimal(8,2);default:0"`
	ItemStatus  ItemStatus      `json:"itemStatus" gorm:"type:varchar(20);not null;default:'pending';index"`
	ItemWear    ItemWear        `json:"itemWear" gorm:"embedded"`
	Img         string          `json:"img,omitempty" gorm:"size:512"`
	ImgPublicID string          `json:"imgPublicId,omitempty" gorm:"size:255"`
	CreatedBy   uuid.UUID       `json:"createdBy" gorm:"type:uuid;not null;index"`
	Timestamps
}

// Derive recomputes the fields that are functions of other fields.
func (i *Item) Derive() {
	i.Discount = DiscountPercent(i.Price, i.SRP)
	i.ItemWear.Label = WearLabelFor(i.ItemWear.WearValue)
	if i.ItemStatus == "" {
		i.ItemStatus = ItemStatusPending
	}
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	EnsureID(&i.ID)
	return nil
}

func (i *Item) BeforeSave(tx *gorm.DB) error {
	i.Derive()
	return nil
}

// TradeItem is a sneaker offered for trade. It carries no SRP, acquisition
// price or discount.
type TradeItem struct {
	ID          uuid.UUID       `json:"itemId" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Size        string          `json:"size" gorm:"size:20;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Details     string          `json:"details,omitempty" gorm:"type:text"`
	ItemStatus  ItemStatus      `json:"itemStatus" gorm:"type:varchar(20);not null;default:'pending';index"`
	ItemWear    ItemWear        `json:"itemWear" gorm:"embedded"`
	Img         string          `json:"img,omitempty" gorm:"size:512"`
	ImgPublicID string          `json:"imgPublicId,omitempty" gorm:"size:255"`
	CreatedBy   uuid.UUID       `json:"createdBy" gorm:"type:uuid;not null;index"`
	Timestamps
}

func (t *TradeItem) Derive() {
	t.ItemWear.Label = WearLabelFor(t.ItemWear.WearValue)
	if t.ItemStatus == "" {
		t.ItemStatus = ItemStatusPending
	}
}

func (t *TradeItem) BeforeCreate(tx *gorm.DB) error {
	EnsureID(&t.ID)
	return nil
}

func (t *TradeItem) BeforeSave(tx *gorm.DB) error {
	t.Derive()
	return nil
}
