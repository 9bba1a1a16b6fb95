// internal/models/order.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderLine is the purchase-time snapshot of an item. Settlement reads the
// snapshot, never the live item, so later price edits cannot leak in.
type OrderLine struct {
	ItemID uuid.UUID       `json:"itemId"`
	Name   string          `json:"name"`
	Img    string          `json:"img"`
	Price  decimal.Decimal `json:"price"`
}

type Order struct {
	ID              uuid.UUID       `json:"orderId" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	BuyerID         uuid.UUID       `json:"buyerId" gorm:"type:uuid;not null;index"`
	Items           []OrderLine     `json:"items" gorm:"type:jsonb;serializer:json;not null"`
	SellerIDs       pq.StringArray  `json:"-" gorm:"type:text[]"`
	TotalPrice      decimal.Decimal `json:"totalPrice" gorm:"type:decimal(12,2);not null"`
	ShippingAddress string          `json:"shippingAddress" gorm:"type:text;not null"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"size:50;not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ItemsCount      int             `json:"itemsCount" gorm:"not null"`
	BuyerConfirmed  bool            `json:"buyerConfirmed" gorm:"not null;default:false"`
	SellerConfirmed bool            `json:"sellerConfirmed" gorm:"not null;default:false"`
	Version         int64           `json:"-" gorm:"not null;default:0"`
	Timestamps

	// Relationships
	Buyer *User `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	EnsureID(&o.ID)
	return nil
}

// ItemIDs lists the referenced items in line order.
func (o *Order) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, line := range o.Items {
		ids = append(ids, line.ItemID)
	}
	return ids
}

// LineTotal sums the snapshotted line prices.
func (o *Order) LineTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Items {
		total = total.Add(line.Price)
	}
	return total
}

// HasSeller reports whether the denormalised seller index lists userID.
func (o *Order) HasSeller(userID uuid.UUID) bool {
	for _, id := range o.SellerIDs {
		if id == userID.String() {
			return true
		}
	}
	return false
}
