package db

import (
	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Models lists every table the core owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Item{},
		&model.CartEntry{},
		&model.Order{},
		&model.OrderItem{},
	}
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

type demoItem struct {
	name        string
	price       string
	description string
	category    string
	stock       int
}

var demoMenu = []demoItem{
	{"Fresh Spinach", "2.49", "Washed baby spinach, 250g", "Fruits & Vegetables", 40},
	{"Alphonso Mangoes", "6.99", "Box of six ripe mangoes", "Fruits & Vegetables", 15},
	{"Paneer", "4.25", "Fresh cottage cheese, 400g", "Dairy & Eggs", 25},
	{"Free Range Eggs", "3.80", "Dozen large eggs", "Dairy & Eggs", 30},
	{"Whole Wheat Bread", "2.95", "Baked this morning", "Grains & Bread", 20},
	{"Basmati Rice", "9.50", "Aged long grain rice, 5kg", "Grains & Bread", 12},
	{"Masala Chai", "3.20", "Spiced tea blend, 200g", "Beverages", 18},
	{"Roasted Makhana", "2.10", "Lightly salted fox nuts", "Snacks", 35},
	{"Frozen Peas", "1.99", "Garden peas, 1kg", "Frozen Foods", 22},
	{"Chickpeas", "1.25", "Canned chickpeas in brine", "Canned Goods", 50},
	{"Mint Chutney", "2.75", "Fresh mint and coriander", "Condiments", 16},
}

// Seed inserts a demo menu when the catalog is empty. Items whose category is not
// in categories are skipped.
func Seed(db *gorm.DB, categories []string) error {
	var count int64
	if err := db.Model(&model.Item{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Catalog already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	allowed := make(map[string]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}

	logger.Info("Seeding demo menu...")

	totalInserted := 0
	for _, d := range demoMenu {
		if !allowed[d.category] {
			continue
		}
		item := model.Item{
			Name:          d.name,
			Price:         decimal.RequireFromString(d.price),
			Description:   d.description,
			Category:      d.category,
			StockQuantity: d.stock,
		}
		if err := db.Create(&item).Error; err != nil {
			logger.Error("Failed to create demo item", err, map[string]interface{}{
				"item": d.name,
			})
			return err
		}
		totalInserted++
	}

	logger.Info("Demo menu seeded successfully", map[string]interface{}{
		"total_items": totalInserted,
	})
	return nil
}
