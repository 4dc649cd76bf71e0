package repository

import (
	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	Create(entry *model.CartEntry) error
	AddQuantity(entry *model.CartEntry) error
	FindByUserID(userID uint) ([]model.CartEntry, error)
	FindByUserIDForUpdate(userID uint) ([]model.CartEntry, error)
	FindByID(id uint) (*model.CartEntry, error)
	FindByUserAndItem(userID, itemID uint) (*model.CartEntry, error)
	FindShortages(userID uint) ([]model.Shortage, error)
	UpdateQuantity(id uint, quantity int) error
	Delete(id, userID uint) (int64, error)
	DeleteByUserID(userID uint) (int64, error)
	CountByUserID(userID uint) (int64, error)
	SumQuantityByUserID(userID uint) (int64, error)
	WithTx(tx *gorm.DB) CartRepository
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) Create(entry *model.CartEntry) error {
	logger.Debug("Creating cart entry in database", map[string]interface{}{
		"user_id":  entry.UserID,
		"item_id":  entry.ItemID,
		"quantity": entry.Quantity,
	})

	if err := r.db.Omit("Item").Create(entry).Error; err != nil {
		logger.Error("Failed to create cart entry in database", err, map[string]interface{}{
			"user_id":  entry.UserID,
			"item_id":  entry.ItemID,
			"quantity": entry.Quantity,
		})
		return err
	}

	logger.Debug("Cart entry created in database", map[string]interface{}{
		"cart_entry_id": entry.ID,
		"user_id":       entry.UserID,
		"item_id":       entry.ItemID,
	})
	return nil
}

// AddQuantity inserts entry, or adds entry.Quantity to the row already held for the
// same user and item, keeping that row's price snapshot. entry is reloaded from the
// resulting row.
func (r *cartRepository) AddQuantity(entry *model.CartEntry) error {
	logger.Debug("Upserting cart entry in database", map[string]interface{}{
		"user_id":  entry.UserID,
		"item_id":  entry.ItemID,
		"quantity": entry.Quantity,
	})

	err := r.db.Omit("Item").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(entry).Error
	if err != nil {
		logger.Error("Failed to upsert cart entry in database", err, map[string]interface{}{
			"user_id": entry.UserID,
			"item_id": entry.ItemID,
		})
		return err
	}

	stored, err := r.FindByUserAndItem(entry.UserID, entry.ItemID)
	if err != nil {
		return err
	}
	*entry = *stored
	return nil
}

// FindByUserID returns the user's entries with item details, newest first.
func (r *cartRepository) FindByUserID(userID uint) ([]model.CartEntry, error) {
	logger.Debug("Finding cart entries by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var entries []model.CartEntry
	err := r.db.Where("user_id = ?", userID).
		Preload("Item").
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		logger.Error("Failed to find cart entries by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Cart entries found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(entries),
	})
	return entries, nil
}

// FindByUserIDForUpdate locks the user's entries, then loads them with item details.
// Must be called inside a transaction.
func (r *cartRepository) FindByUserIDForUpdate(userID uint) ([]model.CartEntry, error) {
	var locked []model.CartEntry
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&locked).Error
	if err != nil {
		logger.Error("Failed to lock cart entries in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	if len(locked) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(locked))
	for i, e := range locked {
		ids[i] = e.ID
	}

	var entries []model.CartEntry
	if err := r.db.Preload("Item").Where("id IN ?", ids).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *cartRepository) FindByID(id uint) (*model.CartEntry, error) {
	var entry model.CartEntry
	if err := r.db.Preload("Item").First(&entry, id).Error; err != nil {
		logger.Debug("Cart entry lookup by ID failed", map[string]interface{}{
			"cart_entry_id": id,
			"error":         err.Error(),
		})
		return nil, err
	}
	return &entry, nil
}

func (r *cartRepository) FindByUserAndItem(userID, itemID uint) (*model.CartEntry, error) {
	var entry model.CartEntry
	err := r.db.Where("user_id = ? AND item_id = ?", userID, itemID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindShortages lists the user's entries whose quantity exceeds the item's current stock.
func (r *cartRepository) FindShortages(userID uint) ([]model.Shortage, error) {
	var shortages []model.Shortage
	err := r.db.Table("cart").
		Select("cart.id AS cart_entry_id, cart.item_id AS item_id, items.name AS name, cart.quantity AS requested, items.stock_quantity AS available").
		Joins("JOIN items ON items.id = cart.item_id").
		Where("cart.user_id = ? AND cart.quantity > items.stock_quantity", userID).
		Order("cart.item_id ASC").
		Scan(&shortages).Error
	if err != nil {
		logger.Error("Failed to check cart availability in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return shortages, nil
}

func (r *cartRepository) UpdateQuantity(id uint, quantity int) error {
	logger.Debug("Updating cart entry quantity in database", map[string]interface{}{
		"cart_entry_id": id,
		"quantity":      quantity,
	})

	result := r.db.Model(&model.CartEntry{}).Where("id = ?", id).Update("quantity", quantity)
	if result.Error != nil {
		logger.Error("Failed to update cart entry in database", result.Error, map[string]interface{}{
			"cart_entry_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes one entry scoped to its owner and reports how many rows went.
func (r *cartRepository) Delete(id, userID uint) (int64, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.CartEntry{})
	if result.Error != nil {
		logger.Error("Failed to delete cart entry from database", result.Error, map[string]interface{}{
			"cart_entry_id": id,
			"user_id":       userID,
		})
		return 0, result.Error
	}

	logger.Debug("Cart entry deleted from database", map[string]interface{}{
		"cart_entry_id": id,
		"rows":          result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *cartRepository) DeleteByUserID(userID uint) (int64, error) {
	logger.Debug("Deleting cart entries by user ID from database", map[string]interface{}{
		"user_id": userID,
	})

	result := r.db.Where("user_id = ?", userID).Delete(&model.CartEntry{})
	if result.Error != nil {
		logger.Error("Failed to delete cart entries by user ID from database", result.Error, map[string]interface{}{
			"user_id": userID,
		})
		return 0, result.Error
	}

	logger.Debug("Cart entries deleted by user ID from database", map[string]interface{}{
		"user_id": userID,
		"rows":    result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *cartRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.CartEntry{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *cartRepository) SumQuantityByUserID(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&model.CartEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}
