package service

import (
	"strings"

	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/internal/app/repository"
	"github.com/homemeal/homemeal-backend/internal/app/validation"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ListItemsInput struct {
	Category  string
	Search    string
	SortBy    string
	SortOrder string
}

type ItemInput struct {
	Name          string
	Description   string
	Category      string
	Price         decimal.Decimal
	StockQuantity int
}

type CatalogService interface {
	List(input ListItemsInput) ([]model.Item, error)
	GetItem(id uint) (*model.Item, error)
	Categories() []string
	CreateItem(input ItemInput) (*model.Item, error)
	UpdateItem(id uint, input ItemInput) (*model.Item, error)
	AdjustStock(itemID uint, delta int) (int, error)
}

type catalogService struct {
	db        *gorm.DB
	itemRepo  repository.ItemRepository
	validator *validation.Validator
	metrics   *metrics.Metrics
}

func NewCatalogService(db *gorm.DB, itemRepo repository.ItemRepository, validator *validation.Validator, m *metrics.Metrics) CatalogService {
	return &catalogService{
		db:        db,
		itemRepo:  itemRepo,
		validator: validator,
		metrics:   m,
	}
}

// List applies the optional filters. Unknown categories, sort keys and directions
// are ignored rather than rejected.
func (s *catalogService) List(input ListItemsInput) ([]model.Item, error) {
	filter := repository.ItemFilter{
		Search:    strings.TrimSpace(input.Search),
		SortBy:    repository.ParseItemSort(input.SortBy),
		SortOrder: repository.ParseSortOrder(input.SortOrder),
	}
	if s.validator.IsCategory(input.Category) {
		filter.Category = input.Category
	} else if input.Category != "" {
		logger.Debug("Ignoring unknown category filter", map[string]interface{}{
			"category": input.Category,
		})
	}

	items, err := s.itemRepo.FindWithFilter(filter)
	if err != nil {
		return nil, classify(err, "item")
	}
	return items, nil
}

func (s *catalogService) GetItem(id uint) (*model.Item, error) {
	item, err := s.itemRepo.FindByID(id)
	if err != nil {
		return nil, classify(err, "item")
	}
	return item, nil
}

func (s *catalogService) Categories() []string {
	return s.validator.Categories()
}

func (s *catalogService) CreateItem(input ItemInput) (*model.Item, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if err := s.validator.Item(input.Name, input.Description, input.Category, input.Price, input.StockQuantity); err != nil {
		return nil, err
	}

	item := &model.Item{
		Name:          input.Name,
		Price:         input.Price,
		Description:   input.Description,
		Category:      input.Category,
		StockQuantity: input.StockQuantity,
	}
	if err := s.itemRepo.Create(item); err != nil {
		return nil, classify(err, "item")
	}

	logger.Info("Item created", map[string]interface{}{
		"item_id":  item.ID,
		"name":     item.Name,
		"category": item.Category,
	})
	return item, nil
}

// UpdateItem rewrites the item's fields. The new stock level is reached through
// AdjustStock so the non-negative guard still applies.
func (s *catalogService) UpdateItem(id uint, input ItemInput) (*model.Item, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if err := s.validator.Item(input.Name, input.Description, input.Category, input.Price, input.StockQuantity); err != nil {
		return nil, err
	}

	var updated *model.Item
	err := s.db.Transaction(func(tx *gorm.DB) error {
		items := s.itemRepo.WithTx(tx)

		current, err := items.FindByIDForUpdate(id)
		if err != nil {
			return err
		}

		current.Name = input.Name
		current.Price = input.Price
		current.Description = input.Description
		current.Category = input.Category
		if err := items.Update(current); err != nil {
			return err
		}

		if delta := input.StockQuantity - current.StockQuantity; delta != 0 {
			stock, err := adjustStock(items, s.metrics, id, delta)
			if err != nil {
				return err
			}
			current.StockQuantity = stock
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, classify(err, "item")
	}

	logger.Info("Item updated", map[string]interface{}{
		"item_id": id,
		"stock":   updated.StockQuantity,
	})
	return updated, nil
}

func (s *catalogService) AdjustStock(itemID uint, delta int) (int, error) {
	return adjustStock(s.itemRepo, s.metrics, itemID, delta)
}
