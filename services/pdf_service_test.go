package services

import (
	"testing"

	"invoice-extraction-platform/internal/apperr"
)

func TestExtractPagesRejectsNonPDF(t *testing.T) {
	svc := NewPDFService(nil)

	_, err := svc.ExtractPages([]byte("this is not a pdf"))
	if err == nil {
		t.Fatal("expected error for non-PDF content")
	}
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExtractPagesRejectsEmpty(t *testing.T) {
	svc := NewPDFService(nil)

	if _, err := svc.ExtractPages(nil); err == nil {
		t.Fatal("expected error for empty content")
	}
}
