package services

import (
	"testing"

	"invoice-extraction-platform/models"
)

func TestBuildWorkbook(t *testing.T) {
	qty := 2
	price := 1500.0
	run := &models.ExtractionRun{
		Filename: "fatture.pdf",
		NormalizedData: []models.InvoiceGroup{
			{
				Name:          "Arredamenti Rossi SRL",
				ClientID:      "c-1",
				InvoiceNumber: "2024/001",
				InvoiceDate:   "2024-01-10",
				Products: []models.Product{
					{
						Code:      "A1",
						Name:      "DIVANO GIOIA",
						Quantity:  &qty,
						FullPrice: &price,
						Coverings: []models.Covering{{Name: "DURIAN", Code: "D1", Count: 2}},
					},
					{Name: "POLTRONA ELA"},
				},
			},
		},
	}

	f, err := BuildWorkbook(run)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	if got, _ := f.GetCellValue(invoicesSheet, "A2"); got != "2024/001" {
		t.Fatalf("unexpected invoice number cell %q", got)
	}
	if got, _ := f.GetCellValue(invoicesSheet, "C2"); got != "Arredamenti Rossi SRL" {
		t.Fatalf("unexpected client cell %q", got)
	}
	if got, _ := f.GetCellValue(invoicesSheet, "E2"); got != "2" {
		t.Fatalf("unexpected product count cell %q", got)
	}

	if got, _ := f.GetCellValue(productsSheet, "C2"); got != "DIVANO GIOIA" {
		t.Fatalf("unexpected product name cell %q", got)
	}
	if got, _ := f.GetCellValue(productsSheet, "G2"); got != "DURIAN (D1) x2" {
		t.Fatalf("unexpected coverings cell %q", got)
	}
	// Absent numeric values must stay empty, not zero
	if got, _ := f.GetCellValue(productsSheet, "D3"); got != "" {
		t.Fatalf("expected empty quantity cell, got %q", got)
	}
}
