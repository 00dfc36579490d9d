package services

import (
	"bytes"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"invoice-extraction-platform/internal/apperr"
	"invoice-extraction-platform/internal/telemetry"
)

// PDFService extracts per-page plain text from uploaded invoices.
type PDFService struct {
	metrics *telemetry.Metrics
}

func NewPDFService(metrics *telemetry.Metrics) *PDFService {
	return &PDFService{metrics: metrics}
}

// ExtractPages returns one text string per page, in page order. A file
// that is not a valid PDF is a validation error; a valid PDF with no
// extractable text on any page is an extraction error.
func (s *PDFService) ExtractPages(content []byte) ([]string, error) {
	start := time.Now()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		s.record(start, "invalid")
		return nil, apperr.Wrap(apperr.KindValidation, err, "a valid PDF file is required")
	}

	totalPages := reader.NumPage()
	pages := make([]string, 0, totalPages)
	hasText := false

	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			// A single unreadable page keeps its slot so page ranges stay accurate
			pages = append(pages, "")
			continue
		}

		if strings.TrimSpace(text) != "" {
			hasText = true
		}
		pages = append(pages, text)
	}

	if len(pages) == 0 || !hasText {
		s.record(start, "empty")
		return nil, apperr.New(apperr.KindExtraction, "error extracting text: no extractable text in document")
	}

	s.record(start, "ok")
	return pages, nil
}

func (s *PDFService) record(start time.Time, status string) {
	if s.metrics != nil {
		s.metrics.RecordPDFProcessing(time.Since(start).Seconds(), status)
	}
}
