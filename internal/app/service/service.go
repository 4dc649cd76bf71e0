package service

import (
	"errors"
	"sort"

	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/internal/app/repository"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	"gorm.io/gorm"
)

// classify converts a repository error into the core taxonomy, logging storage faults.
func classify(err error, context string) error {
	if err == nil {
		return nil
	}
	appErr := apperrors.Classify(err, context)
	if appErr.Code == apperrors.InternalDatabase {
		logger.Error("Storage failure", err, map[string]interface{}{
			"context": context,
		})
	}
	return appErr
}

// adjustStock routes a stock change through the repository choke point and maps its failures.
func adjustStock(items repository.ItemRepository, m *metrics.Metrics, itemID uint, delta int) (int, error) {
	stock, err := items.AdjustStock(itemID, delta)
	switch {
	case err == nil:
		return stock, nil
	case errors.Is(err, repository.ErrNegativeStock):
		m.RecordStockRejection()
		logger.Warn("Stock adjustment rejected", map[string]interface{}{
			"item_id":   itemID,
			"delta":     delta,
			"available": stock,
		})
		return stock, apperrors.InsufficientStock(stock)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 0, apperrors.NotFound("Item not found")
	}
	return 0, classify(err, "item")
}

type stockLine struct {
	itemID   uint
	name     string
	quantity int
}

// applyStock adjusts every line in item-id order so concurrent transactions lock rows
// in the same sequence. sign is -1 to consume and +1 to restore.
func applyStock(items repository.ItemRepository, m *metrics.Metrics, lines []stockLine, sign int) error {
	sorted := append([]stockLine(nil), lines...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].itemID < sorted[j].itemID })

	for _, line := range sorted {
		available, err := adjustStock(items, m, line.itemID, sign*line.quantity)
		if errors.Is(err, apperrors.ErrInsufficientStock) {
			return apperrors.Availability([]model.Shortage{{
				ItemID:    line.itemID,
				Name:      line.name,
				Requested: line.quantity,
				Available: available,
			}})
		}
		if err != nil {
			return err
		}
	}
	return nil
}
