package services

import (
	"testing"

	"invoice-extraction-platform/models"
)

func TestMergeByInvoiceConcatenatesProducts(t *testing.T) {
	items := []models.InvoiceGroup{
		{Name: "Arredo Casa", InvoiceNumber: "2024/001", InvoiceDate: "2024-01-10", Products: []models.Product{{Name: "DIVANO GIOIA"}}},
		{Name: "Mobili Sud", InvoiceNumber: "2024/002", Products: []models.Product{{Name: "POLTRONA ELA"}}},
		{Name: "Arredo Casa SRL", InvoiceNumber: "2024/001", InvoiceDate: "2024-01-11", Products: []models.Product{{Name: "POLTRONA ELA"}, {Name: "DIVANO GIOIA"}}},
	}

	merged := MergeByInvoice(items)
	if len(merged) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(merged))
	}

	first := merged[0]
	if first.InvoiceNumber != "2024/001" {
		t.Fatalf("expected first invoice 2024/001, got %q", first.InvoiceNumber)
	}
	// First-seen record keeps its own fields
	if first.Name != "Arredo Casa" || first.InvoiceDate != "2024-01-10" {
		t.Fatalf("first-seen fields must win, got %+v", first)
	}
	if len(first.Products) != 3 {
		t.Fatalf("expected 3 products after merge, got %d", len(first.Products))
	}
	// Products keep chunk order, duplicates included
	if first.Products[0].Name != "DIVANO GIOIA" || first.Products[2].Name != "DIVANO GIOIA" {
		t.Fatalf("unexpected product order %+v", first.Products)
	}
}

func TestMergeByInvoiceDropsMissingNumbers(t *testing.T) {
	items := []models.InvoiceGroup{
		{Name: "senza numero", Products: []models.Product{{Name: "DIVANO GIOIA"}}},
		{Name: "ok", InvoiceNumber: "42", Products: []models.Product{{Name: "POLTRONA ELA"}}},
	}

	merged := MergeByInvoice(items)
	if len(merged) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(merged))
	}
	if merged[0].InvoiceNumber != "42" {
		t.Fatalf("unexpected survivor %+v", merged[0])
	}
}

func TestMergeByInvoiceEmpty(t *testing.T) {
	if merged := MergeByInvoice(nil); len(merged) != 0 {
		t.Fatalf("expected empty result, got %v", merged)
	}
}
