package repository

import (
	"errors"
	"strings"

	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNegativeStock is returned by AdjustStock when the delta would drive stock below zero.
var ErrNegativeStock = errors.New("stock quantity would become negative")

type ItemSort string

const (
	ItemSortName      ItemSort = "name"
	ItemSortPrice     ItemSort = "price"
	ItemSortCategory  ItemSort = "category"
	ItemSortCreatedAt ItemSort = "created_at"
)

type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

var itemSortColumns = map[ItemSort]string{
	ItemSortName:      "items.name",
	ItemSortPrice:     "items.price",
	ItemSortCategory:  "items.category",
	ItemSortCreatedAt: "items.created_at",
}

// ParseItemSort falls back to name for anything unrecognised.
func ParseItemSort(s string) ItemSort {
	sort := ItemSort(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := itemSortColumns[sort]; ok {
		return sort
	}
	return ItemSortName
}

// ParseSortOrder falls back to ascending for anything unrecognised.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

type ItemFilter struct {
	Category  string
	Search    string
	SortBy    ItemSort
	SortOrder SortOrder
}

type ItemRepository interface {
	Create(item *model.Item) error
	FindByID(id uint) (*model.Item, error)
	FindByIDForUpdate(id uint) (*model.Item, error)
	FindWithFilter(filter ItemFilter) ([]model.Item, error)
	Update(item *model.Item) error
	AdjustStock(id uint, delta int) (int, error)
	WithTx(tx *gorm.DB) ItemRepository
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) WithTx(tx *gorm.DB) ItemRepository {
	return &itemRepository{db: tx}
}

func (r *itemRepository) Create(item *model.Item) error {
	logger.Debug("Creating item in database", map[string]interface{}{
		"name":     item.Name,
		"category": item.Category,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create item in database", err, map[string]interface{}{
			"name":     item.Name,
			"category": item.Category,
		})
		return err
	}

	logger.Debug("Item created in database", map[string]interface{}{
		"item_id": item.ID,
	})
	return nil
}

func (r *itemRepository) FindByID(id uint) (*model.Item, error) {
	var item model.Item
	if err := r.db.First(&item, id).Error; err != nil {
		logger.Debug("Item lookup by ID failed", map[string]interface{}{
			"item_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate locks the item row. Must be called inside a transaction.
func (r *itemRepository) FindByIDForUpdate(id uint) (*model.Item, error) {
	var item model.Item
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) FindWithFilter(filter ItemFilter) ([]model.Item, error) {
	logger.Debug("Finding items with filter", map[string]interface{}{
		"category":   filter.Category,
		"search":     filter.Search,
		"sort_by":    filter.SortBy,
		"sort_order": filter.SortOrder,
	})

	query := r.db.Model(&model.Item{})

	if filter.Category != "" {
		query = query.Where("items.category = ?", filter.Category)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(`(LOWER(items.name) LIKE ? ESCAPE '\' OR LOWER(items.description) LIKE ? ESCAPE '\')`, like, like)
	}

	column, ok := itemSortColumns[filter.SortBy]
	if !ok {
		column = itemSortColumns[ItemSortName]
	}
	direction := SortAsc
	if filter.SortOrder == SortDesc {
		direction = SortDesc
	}
	query = query.Order(column + " " + string(direction)).Order("items.id ASC")

	var items []model.Item
	if err := query.Find(&items).Error; err != nil {
		logger.Error("Failed to find items with filter", err, map[string]interface{}{
			"category": filter.Category,
			"search":   filter.Search,
		})
		return nil, err
	}

	logger.Debug("Items found with filter", map[string]interface{}{
		"count": len(items),
	})
	return items, nil
}

// Update writes the descriptive fields of an existing item. Stock is left to AdjustStock.
func (r *itemRepository) Update(item *model.Item) error {
	logger.Debug("Updating item in database", map[string]interface{}{
		"item_id": item.ID,
	})

	result := r.db.Model(&model.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"price":       item.Price,
			"description": item.Description,
			"category":    item.Category,
		})
	if result.Error != nil {
		logger.Error("Failed to update item in database", result.Error, map[string]interface{}{
			"item_id": item.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustStock is the only path that changes stock_quantity after an item is created.
// It locks the row, applies delta with a guarded UPDATE and returns the new stock.
// On ErrNegativeStock the returned value is the stock currently available.
func (r *itemRepository) AdjustStock(id uint, delta int) (int, error) {
	var newStock int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var item model.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "stock_quantity").
			First(&item, id).Error; err != nil {
			return err
		}

		if item.StockQuantity+delta < 0 {
			newStock = item.StockQuantity
			return ErrNegativeStock
		}

		result := tx.Model(&model.Item{}).
			Where("id = ? AND stock_quantity + ? >= 0", id, delta).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			newStock = item.StockQuantity
			return ErrNegativeStock
		}

		var updated model.Item
		if err := tx.Select("id", "stock_quantity").First(&updated, id).Error; err != nil {
			return err
		}
		newStock = updated.StockQuantity
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNegativeStock) && !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to adjust item stock", err, map[string]interface{}{
				"item_id": id,
				"delta":   delta,
			})
		}
		return newStock, err
	}

	logger.Debug("Item stock adjusted", map[string]interface{}{
		"item_id":   id,
		"delta":     delta,
		"new_stock": newStock,
	})
	return newStock, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
