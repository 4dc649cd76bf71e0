package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID            uint            `gorm:"primarykey" json:"id"`                                                               // 상품 ID
	Name          string          `gorm:"type:varchar(100);not null;index" json:"name"`                                       // 이름
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null;check:chk_items_price,price > 0" json:"price"`           // 단가
	Description   string          `gorm:"type:text" json:"description"`                                                       // 설명
	Category      string          `gorm:"type:varchar(50);not null;index" json:"category"`                                    // 카테고리
	StockQuantity int             `gorm:"not null;default:0;check:chk_items_stock,stock_quantity >= 0" json:"stock_quantity"` // 재고
	CreatedAt     time.Time       `json:"created_at"`                                                                         // 생성 시각
	UpdatedAt     time.Time       `json:"updated_at"`                                                                         // 수정 시각
}

func (Item) TableName() string {
	return "items"
}

// InStock reports whether quantity units can currently be taken.
func (i *Item) InStock(quantity int) bool {
	return i.StockQuantity >= quantity
}
