package service

import (
	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/internal/app/repository"
	"github.com/homemeal/homemeal-backend/internal/app/validation"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService interface {
	AddItem(userID, itemID uint, quantity int) (*model.CartEntry, error)
	UpdateQuantity(userID, entryID uint, quantity int) error
	Remove(userID, entryID uint) error
	Clear(userID uint) (int64, error)
	GetCart(userID uint) ([]model.CartEntry, error)
	Total(userID uint) (decimal.Decimal, error)
	ItemCount(userID uint) (int64, error)
	CheckAvailability(userID uint) ([]model.Shortage, error)
}

type cartService struct {
	db        *gorm.DB
	cartRepo  repository.CartRepository
	itemRepo  repository.ItemRepository
	validator *validation.Validator
	metrics   *metrics.Metrics
}

func NewCartService(db *gorm.DB, cartRepo repository.CartRepository, itemRepo repository.ItemRepository, validator *validation.Validator, m *metrics.Metrics) CartService {
	return &cartService{
		db:        db,
		cartRepo:  cartRepo,
		itemRepo:  itemRepo,
		validator: validator,
		metrics:   m,
	}
}

// AddItem checks against current stock only; nothing is reserved until an order is placed.
// A re-add grows the existing entry in a single upsert, and the combined quantity is
// checked before the transaction commits.
func (s *cartService) AddItem(userID, itemID uint, quantity int) (*model.CartEntry, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":  userID,
		"item_id":  itemID,
		"quantity": quantity,
	})

	if err := s.validator.Quantity(quantity); err != nil {
		return nil, err
	}

	var entry *model.CartEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.WithTx(tx).FindByID(itemID)
		if err != nil {
			return err
		}
		if !item.InStock(quantity) {
			logger.Warn("Add to cart failed: insufficient stock", map[string]interface{}{
				"user_id":   userID,
				"item_id":   itemID,
				"requested": quantity,
				"available": item.StockQuantity,
			})
			s.metrics.RecordStockRejection()
			return apperrors.InsufficientStock(item.StockQuantity)
		}

		entry = &model.CartEntry{
			UserID:   userID,
			ItemID:   itemID,
			Quantity: quantity,
			Price:    item.Price,
		}
		if err := s.cartRepo.WithTx(tx).AddQuantity(entry); err != nil {
			return err
		}
		if entry.Quantity == quantity {
			return nil
		}

		if err := s.validator.Quantity(entry.Quantity); err != nil {
			return err
		}
		if !item.InStock(entry.Quantity) {
			logger.Warn("Add to cart failed: combined quantity exceeds stock", map[string]interface{}{
				"user_id":   userID,
				"item_id":   itemID,
				"requested": entry.Quantity,
				"available": item.StockQuantity,
			})
			s.metrics.RecordStockRejection()
			return apperrors.InsufficientStock(item.StockQuantity)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, "item")
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"cart_entry_id": entry.ID,
		"user_id":       userID,
		"quantity":      entry.Quantity,
	})
	return entry, nil
}

func (s *cartService) UpdateQuantity(userID, entryID uint, quantity int) error {
	if err := s.validator.Quantity(quantity); err != nil {
		return err
	}

	entry, err := s.cartRepo.FindByID(entryID)
	if err != nil {
		return classify(err, "cart")
	}
	if entry.UserID != userID {
		logger.Warn("Cart entry access denied: ownership mismatch", map[string]interface{}{
			"user_id":       userID,
			"cart_entry_id": entryID,
		})
		return apperrors.NotFound("Cart item not found")
	}

	if !entry.Item.InStock(quantity) {
		s.metrics.RecordStockRejection()
		return apperrors.InsufficientStock(entry.Item.StockQuantity)
	}

	if err := s.cartRepo.UpdateQuantity(entryID, quantity); err != nil {
		return classify(err, "cart")
	}
	return nil
}

func (s *cartService) Remove(userID, entryID uint) error {
	rows, err := s.cartRepo.Delete(entryID, userID)
	if err != nil {
		return classify(err, "cart")
	}
	if rows == 0 {
		return apperrors.NotFound("Cart item not found")
	}
	return nil
}

func (s *cartService) Clear(userID uint) (int64, error) {
	rows, err := s.cartRepo.DeleteByUserID(userID)
	if err != nil {
		return 0, classify(err, "cart")
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
		"removed": rows,
	})
	return rows, nil
}

func (s *cartService) GetCart(userID uint) ([]model.CartEntry, error) {
	entries, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return nil, classify(err, "cart")
	}
	return entries, nil
}

// Total sums quantity times the snapshot price; later catalog price changes do not apply.
func (s *cartService) Total(userID uint) (decimal.Decimal, error) {
	entries, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return decimal.Zero, classify(err, "cart")
	}
	return cartTotal(entries), nil
}

func (s *cartService) ItemCount(userID uint) (int64, error) {
	count, err := s.cartRepo.SumQuantityByUserID(userID)
	if err != nil {
		return 0, classify(err, "cart")
	}
	return count, nil
}

func (s *cartService) CheckAvailability(userID uint) ([]model.Shortage, error) {
	shortages, err := s.cartRepo.FindShortages(userID)
	if err != nil {
		return nil, classify(err, "cart")
	}
	return shortages, nil
}

func cartTotal(entries []model.CartEntry) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Subtotal())
	}
	return total
}
