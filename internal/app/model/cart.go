package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartEntry is one pending selection; (user_id, item_id) is unique so re-adding
// an item grows the existing row.
type CartEntry struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"user_id"`
	ItemID    uint            `gorm:"not null;uniqueIndex:idx_cart_user_item;index" json:"item_id"`
	Quantity  int             `gorm:"not null;check:chk_cart_quantity,quantity > 0" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"` // snapshot at add time
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Relationships
	Item Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

func (CartEntry) TableName() string {
	return "cart"
}

func (e CartEntry) Subtotal() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Shortage describes a cart entry whose quantity exceeds the item's current stock.
type Shortage struct {
	CartEntryID uint   `json:"cart_entry_id"`
	ItemID      uint   `json:"item_id"`
	Name        string `json:"name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}
