package repository

import (
	"time"

	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByIDForUpdate(id uint) (*model.Order, error)
	FindByUserID(userID uint, status *model.OrderStatus) ([]model.Order, error)
	FindAll(status *model.OrderStatus, limit int) ([]model.Order, error)
	FindSince(since time.Time) ([]model.Order, error)
	UpdateStatus(id uint, from, to model.OrderStatus) (int64, error)
	Statistics(userID *uint) (model.OrderStatistics, error)
	WithTx(tx *gorm.DB) OrderRepository
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

// Create inserts the order together with its OrderItems.
func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount.String(),
		"item_count":   len(order.OrderItems),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id ASC")
	}).Preload("OrderItems.Item").First(&order, id).Error
	if err != nil {
		logger.Debug("Order lookup by ID failed", map[string]interface{}{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate locks the order row, then loads its lines without the lock clause.
// Must be called inside a transaction.
func (r *orderRepository) FindByIDForUpdate(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		return nil, err
	}
	if err := r.db.Where("order_id = ?", order.ID).Order("item_id ASC").Find(&order.OrderItems).Error; err != nil {
		logger.Error("Failed to load order items", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint, status *model.OrderStatus) ([]model.Order, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id": userID,
		"status":  status,
	})

	query := r.db.Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var orders []model.Order
	err := query.Preload("OrderItems").
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindAll(status *model.OrderStatus, limit int) ([]model.Order, error) {
	query := r.db.Model(&model.Order{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var orders []model.Order
	if err := query.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to list orders in database", err, map[string]interface{}{
			"status": status,
			"limit":  limit,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindSince(since time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("created_at >= ?", since).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find recent orders in database", err, map[string]interface{}{
			"since": since,
		})
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another only if it is still in from.
// Zero rows affected means the order changed underneath the caller.
func (r *orderRepository) UpdateStatus(id uint, from, to model.OrderStatus) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"from":     from,
			"to":       to,
		})
		return 0, result.Error
	}

	logger.Debug("Order status updated in database", map[string]interface{}{
		"order_id": id,
		"from":     from,
		"to":       to,
		"rows":     result.RowsAffected,
	})
	return result.RowsAffected, nil
}

type statisticsRow struct {
	TotalOrders       int64
	TotalRevenue      decimal.NullDecimal
	AverageOrderValue decimal.NullDecimal
	PendingOrders     int64
	CompletedOrders   int64
}

func (r *orderRepository) Statistics(userID *uint) (model.OrderStatistics, error) {
	query := r.db.Model(&model.Order{}).Select(
		"COUNT(*) AS total_orders, "+
			"SUM(total_amount) AS total_revenue, "+
			"AVG(total_amount) AS average_order_value, "+
			"COUNT(CASE WHEN status = ? THEN 1 END) AS pending_orders, "+
			"COUNT(CASE WHEN status = ? THEN 1 END) AS completed_orders",
		model.OrderStatusPending, model.OrderStatusCompleted,
	)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var row statisticsRow
	if err := query.Scan(&row).Error; err != nil {
		logger.Error("Failed to compute order statistics", err, map[string]interface{}{
			"user_id": userID,
		})
		return model.OrderStatistics{}, err
	}

	stats := model.OrderStatistics{
		TotalOrders:     row.TotalOrders,
		PendingOrders:   row.PendingOrders,
		CompletedOrders: row.CompletedOrders,
	}
	if row.TotalRevenue.Valid {
		stats.TotalRevenue = row.TotalRevenue.Decimal.Round(2)
	}
	if row.AverageOrderValue.Valid {
		stats.AverageOrderValue = row.AverageOrderValue.Decimal.Round(2)
	}
	return stats, nil
}
