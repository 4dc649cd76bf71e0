// Package seed imports catalog items from spreadsheet exports.
package seed

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/homemeal/homemeal-backend/internal/app/service"
	"github.com/homemeal/homemeal-backend/internal/app/validation"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Column layout of the first sheet. Row 1 is a header.
const (
	colName = iota
	colDescription
	colCategory
	colPrice
	colStock
	columnCount
)

// RowError describes a spreadsheet row that was not imported.
type RowError struct {
	Row      int // 1-based, as shown in a spreadsheet
	Messages []string
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, strings.Join(e.Messages, "; "))
}

// ItemRow is a parsed item with the sheet row it came from.
type ItemRow struct {
	Row  int
	Item service.ItemInput
}

type Report struct {
	TotalRows int
	Imported  int
	Skipped   []RowError
}

// ReadItems parses every data row. Rows with missing columns, unparsable numbers or a
// name already seen earlier in the sheet are reported and skipped.
func ReadItems(r io.Reader, v *validation.Validator) ([]ItemRow, *Report, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no data found in XLSX file")
	}

	report := &Report{TotalRows: len(rows) - 1}
	seen := make(map[string]bool)
	var items []ItemRow

	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			report.TotalRows--
			continue
		}
		if len(row) < columnCount {
			report.Skipped = append(report.Skipped, RowError{Row: rowNum, Messages: []string{"Missing columns"}})
			continue
		}

		name := strings.TrimSpace(row[colName])
		var msgs []string
		price, err := v.ParsePrice(row[colPrice])
		msgs = appendMessages(msgs, err)
		stock, err := v.ParseStock(row[colStock])
		msgs = appendMessages(msgs, err)

		key := strings.ToLower(name)
		if name != "" && seen[key] {
			msgs = append(msgs, "Duplicate item name")
		}
		if len(msgs) > 0 {
			report.Skipped = append(report.Skipped, RowError{Row: rowNum, Messages: msgs})
			continue
		}
		seen[key] = true

		items = append(items, ItemRow{
			Row: rowNum,
			Item: service.ItemInput{
				Name:          name,
				Description:   strings.TrimSpace(row[colDescription]),
				Category:      strings.TrimSpace(row[colCategory]),
				Price:         price,
				StockQuantity: stock,
			},
		})
	}

	logger.Info("Read catalog workbook", map[string]interface{}{
		"sheet":   sheetName,
		"rows":    report.TotalRows,
		"valid":   len(items),
		"skipped": len(report.Skipped),
	})
	return items, report, nil
}

// Import creates each item through the catalog service so the usual validation applies.
// Rows the service rejects are added to report; storage failures abort the import.
func Import(catalog service.CatalogService, items []ItemRow, report *Report) error {
	for _, item := range items {
		if _, err := catalog.CreateItem(item.Item); err != nil {
			if apperrors.IsStorage(err) {
				return fmt.Errorf("import stopped after %d items: %w", report.Imported, err)
			}
			report.Skipped = append(report.Skipped, RowError{
				Row:      item.Row,
				Messages: appendMessages(nil, err),
			})
			continue
		}
		report.Imported++
	}

	logger.Info("Catalog import finished", map[string]interface{}{
		"imported": report.Imported,
		"skipped":  len(report.Skipped),
	})
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func appendMessages(msgs []string, err error) []string {
	if err == nil {
		return msgs
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return append(msgs, appErr.Messages...)
	}
	return append(msgs, err.Error())
}
