package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/homemeal/homemeal-backend/config"
	"github.com/homemeal/homemeal-backend/internal/app/repository"
	"github.com/homemeal/homemeal-backend/internal/app/service"
	"github.com/homemeal/homemeal-backend/internal/app/validation"
	"github.com/homemeal/homemeal-backend/internal/db"
	"github.com/homemeal/homemeal-backend/internal/seed"
	"github.com/homemeal/homemeal-backend/pkg/logger"
)

func main() {
	assumeYes := flag.Bool("y", false, "import without asking for confirmation")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run cmd/seed/main.go [-y] <xlsx_file_path>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: cfg.Server.LogLevel, Format: cfg.Server.LogFormat})

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	v := validation.New(cfg.Validation, cfg.Catalog.Categories)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	items, report, err := seed.ReadItems(f, v)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total rows: %d, valid items: %d\n", report.TotalRows, len(items))
	for _, skipped := range report.Skipped {
		fmt.Printf("  skipped %s\n", skipped)
	}

	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(db.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	catalog := service.NewCatalogService(db.GetDB(), repository.NewItemRepository(db.GetDB()), v, nil)
	before := len(report.Skipped)
	if err := seed.Import(catalog, items, report); err != nil {
		log.Fatal("Import failed:", err)
	}

	for _, skipped := range report.Skipped[before:] {
		fmt.Printf("  rejected %s\n", skipped)
	}
	fmt.Println("Import completed successfully!")
	fmt.Printf("Total items imported: %d\n", report.Imported)
}
