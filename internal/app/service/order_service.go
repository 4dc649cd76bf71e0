package service

import (
	"strings"
	"time"

	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/internal/app/repository"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	DefaultOrderListLimit = 50
	DefaultRecentDays     = 7
)

type CreateOrderInput struct {
	DeliveryAddress     *string
	SpecialInstructions *string
}

type OrderService interface {
	CreateOrder(userID uint, input CreateOrderInput) (*model.Order, error)
	CancelOrder(userID, orderID uint) error
	UpdateStatus(orderID uint, status model.OrderStatus) error
	GetStatistics(userID *uint) (model.OrderStatistics, error)
	GetUserOrders(userID uint, status *model.OrderStatus) ([]model.Order, error)
	GetOrderDetails(userID, orderID uint) (*model.Order, error)
	ListOrders(status *model.OrderStatus, limit int) ([]model.Order, error)
	RecentOrders(days int) ([]model.Order, error)
}

type orderService struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	itemRepo  repository.ItemRepository
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	itemRepo repository.ItemRepository,
	m *metrics.Metrics,
) OrderService {
	return &orderService{
		db:        db,
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		itemRepo:  itemRepo,
		metrics:   m,
		now:       time.Now,
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// CreateOrder turns the user's cart into a Pending order. The order rows, the stock
// decrements and the cart clear commit together or not at all.
func (s *orderService) CreateOrder(userID uint, input CreateOrderInput) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id": userID,
	})

	var orderID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		items := s.itemRepo.WithTx(tx)
		orders := s.orderRepo.WithTx(tx)

		entries, err := carts.FindByUserIDForUpdate(userID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return apperrors.EmptyCart()
		}

		shortages, err := carts.FindShortages(userID)
		if err != nil {
			return err
		}
		if len(shortages) > 0 {
			logger.Warn("Order rejected: cart items unavailable", map[string]interface{}{
				"user_id":   userID,
				"shortages": len(shortages),
			})
			return apperrors.Availability(shortages)
		}

		order := &model.Order{
			UserID:              userID,
			TotalAmount:         cartTotal(entries),
			Status:              model.OrderStatusPending,
			DeliveryAddress:     trimOptional(input.DeliveryAddress),
			SpecialInstructions: trimOptional(input.SpecialInstructions),
		}
		lines := make([]stockLine, 0, len(entries))
		for _, entry := range entries {
			order.OrderItems = append(order.OrderItems, model.OrderItem{
				ItemID:   entry.ItemID,
				Quantity: entry.Quantity,
				Price:    entry.Price,
			})
			lines = append(lines, stockLine{
				itemID:   entry.ItemID,
				name:     entry.Item.Name,
				quantity: entry.Quantity,
			})
		}

		if err := orders.Create(order); err != nil {
			return err
		}
		if err := applyStock(items, s.metrics, lines, -1); err != nil {
			return err
		}

		removed, err := carts.DeleteByUserID(userID)
		if err != nil {
			return err
		}
		if removed != int64(len(entries)) {
			logger.Warn("Cart changed while placing order", map[string]interface{}{
				"user_id":  userID,
				"expected": len(entries),
				"removed":  removed,
			})
			return apperrors.Conflict("Cart changed while placing the order. Please review your cart and try again")
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, classify(err, "order")
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, classify(err, "order")
	}

	s.metrics.RecordOrderCreated()
	logger.Info("Order created", map[string]interface{}{
		"order_id":     order.ID,
		"user_id":      userID,
		"total_amount": order.TotalAmount.StringFixed(2),
		"item_count":   len(order.OrderItems),
	})
	return order, nil
}

// CancelOrder cancels an order owned by userID and returns its quantities to stock.
func (s *orderService) CancelOrder(userID, orderID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		order, err := orders.FindByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			return apperrors.NotFound("Order not found")
		}
		if !order.Status.Cancellable() {
			return apperrors.InvalidState("Order cannot be cancelled at this stage")
		}
		return s.transition(tx, order, model.OrderStatusCancelled)
	})
	if err != nil {
		return classify(err, "order")
	}

	s.metrics.RecordOrderCancelled()
	logger.Info("Order cancelled", map[string]interface{}{
		"order_id": orderID,
		"user_id":  userID,
	})
	return nil
}

// UpdateStatus moves an order along the status machine. Any user's order is accepted.
func (s *orderService) UpdateStatus(orderID uint, status model.OrderStatus) error {
	if _, err := model.ParseOrderStatus(string(status)); err != nil {
		return apperrors.Validation("Invalid order status")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).FindByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return apperrors.InvalidState("Order is already " + string(order.Status))
		}
		if !order.Status.CanTransitionTo(status) {
			logger.Warn("Order status transition rejected", map[string]interface{}{
				"order_id": orderID,
				"from":     order.Status,
				"to":       status,
			})
			return apperrors.InvalidState("Order cannot move from " + string(order.Status) + " to " + string(status))
		}
		return s.transition(tx, order, status)
	})
	if err != nil {
		return classify(err, "order")
	}

	if status == model.OrderStatusCancelled {
		s.metrics.RecordOrderCancelled()
	}
	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return nil
}

// transition writes the new status guarded by the current one. A move to Cancelled
// restores stock in the same transaction.
func (s *orderService) transition(tx *gorm.DB, order *model.Order, to model.OrderStatus) error {
	if to == model.OrderStatusCancelled {
		lines := make([]stockLine, 0, len(order.OrderItems))
		for _, oi := range order.OrderItems {
			lines = append(lines, stockLine{itemID: oi.ItemID, quantity: oi.Quantity})
		}
		if err := applyStock(s.itemRepo.WithTx(tx), s.metrics, lines, 1); err != nil {
			return err
		}
	}

	rows, err := s.orderRepo.WithTx(tx).UpdateStatus(order.ID, order.Status, to)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.InvalidState("Order status changed concurrently")
	}
	return nil
}

func (s *orderService) GetStatistics(userID *uint) (model.OrderStatistics, error) {
	stats, err := s.orderRepo.Statistics(userID)
	if err != nil {
		return model.OrderStatistics{}, classify(err, "order")
	}
	return stats, nil
}

func (s *orderService) GetUserOrders(userID uint, status *model.OrderStatus) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID, status)
	if err != nil {
		return nil, classify(err, "order")
	}
	return orders, nil
}

func (s *orderService) GetOrderDetails(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, classify(err, "order")
	}
	if order.UserID != userID {
		return nil, apperrors.NotFound("Order not found")
	}
	return order, nil
}

func (s *orderService) ListOrders(status *model.OrderStatus, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = DefaultOrderListLimit
	}
	orders, err := s.orderRepo.FindAll(status, limit)
	if err != nil {
		return nil, classify(err, "order")
	}
	return orders, nil
}

func (s *orderService) RecentOrders(days int) ([]model.Order, error) {
	if days <= 0 {
		days = DefaultRecentDays
	}
	orders, err := s.orderRepo.FindSince(s.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, classify(err, "order")
	}
	return orders, nil
}
