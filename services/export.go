package services

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"invoice-extraction-platform/models"
)

const (
	invoicesSheet = "Invoices"
	productsSheet = "Products"
)

// BuildWorkbook renders a completed run's final document as an Excel
// workbook: one summary row per invoice plus a flattened products sheet.
func BuildWorkbook(run *models.ExtractionRun) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", invoicesSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(productsSheet); err != nil {
		return nil, fmt.Errorf("failed to create products sheet: %w", err)
	}

	invoiceHeaders := []string{"Invoice Number", "Invoice Date", "Client", "Client ID", "Products"}
	for i, h := range invoiceHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(invoicesSheet, cell, h)
	}

	productHeaders := []string{"Invoice Number", "Code", "Name", "Quantity", "Full Price", "Discounted Price", "Coverings"}
	for i, h := range productHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(productsSheet, cell, h)
	}

	invoiceRow := 2
	productRow := 2
	for _, group := range run.NormalizedData {
		setRow(f, invoicesSheet, invoiceRow, []interface{}{
			group.InvoiceNumber,
			group.InvoiceDate,
			group.Name,
			group.ClientID,
			len(group.Products),
		})
		invoiceRow++

		for _, product := range group.Products {
			setRow(f, productsSheet, productRow, []interface{}{
				group.InvoiceNumber,
				product.Code,
				product.Name,
				numericCell(product.Quantity),
				floatCell(product.FullPrice),
				floatCell(product.DiscountedPrice),
				formatCoverings(product.Coverings),
			})
			productRow++
		}
	}

	f.SetColWidth(invoicesSheet, "A", "E", 22)
	f.SetColWidth(productsSheet, "A", "G", 22)

	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

// numericCell keeps absent values absent instead of rendering them as 0.
func numericCell(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func floatCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func formatCoverings(coverings []models.Covering) string {
	if len(coverings) == 0 {
		return ""
	}
	parts := make([]string, 0, len(coverings))
	for _, c := range coverings {
		parts = append(parts, fmt.Sprintf("%s (%s) x%d", c.Name, c.Code, c.Count))
	}
	return strings.Join(parts, "; ")
}
