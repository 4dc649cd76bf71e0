package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string // 주문 상태 코드

const (
	OrderStatusPending   OrderStatus = "Pending"   // 주문 접수
	OrderStatusConfirmed OrderStatus = "Confirmed" // 주문 확정
	OrderStatusPreparing OrderStatus = "Preparing" // 조리 중
	OrderStatusReady     OrderStatus = "Ready"     // 픽업 대기
	OrderStatusCompleted OrderStatus = "Completed" // 완료
	OrderStatusCancelled OrderStatus = "Cancelled" // 주문 취소
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady},
	OrderStatusReady:     {OrderStatusCompleted},
}

// ParseOrderStatus accepts any of the six status names.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

type Order struct {
	ID                  uint            `gorm:"primarykey" json:"id"`                                            // 주문 ID
	UserID              uint            `gorm:"not null;index" json:"user_id"`                                   // 주문자 ID
	TotalAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`                 // 총 결제 금액
	Status              OrderStatus     `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"` // 주문 상태
	DeliveryAddress     *string         `gorm:"type:text" json:"delivery_address,omitempty"`                     // 배송지
	SpecialInstructions *string         `gorm:"type:text" json:"special_instructions,omitempty"`                 // 요청 사항
	CreatedAt           time.Time       `gorm:"index" json:"created_at"`                                         // 생성 시각
	UpdatedAt           time.Time       `json:"updated_at"`                                                      // 수정 시각

	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"` // 주문 항목 목록
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint            `gorm:"primarykey" json:"id"`                     // 주문 항목 ID
	OrderID   uint            `gorm:"not null;index" json:"order_id"`           // 주문 ID
	ItemID    uint            `gorm:"not null;index" json:"item_id"`            // 상품 ID
	Quantity  int             `gorm:"not null" json:"quantity"`                 // 수량
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"` // 단가 스냅샷
	CreatedAt time.Time       `json:"created_at"`                               // 생성 시각
	UpdatedAt time.Time       `json:"updated_at"`                               // 수정 시각

	Item Item `gorm:"foreignKey:ItemID" json:"item,omitempty"` // 상품 정보
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (oi OrderItem) Subtotal() decimal.Decimal {
	return oi.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}

// OrderStatistics aggregates orders; pending and completed counts are always reported.
type OrderStatistics struct {
	TotalOrders       int64           `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	PendingOrders     int64           `json:"pending_orders"`
	CompletedOrders   int64           `json:"completed_orders"`
}
