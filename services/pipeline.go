package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"invoice-extraction-platform/internal/apperr"
	"invoice-extraction-platform/internal/logger"
	"invoice-extraction-platform/internal/telemetry"
	"invoice-extraction-platform/models"
)

// Pipeline orchestrates one extraction run: chunk pages, extract each
// chunk through the model, normalize against the company reference
// lists, and merge by invoice number. One bad chunk invalidates the
// whole document: the downstream merge assumes completeness, so there
// is no partial-success mode and no retry.
type Pipeline struct {
	llm           LLMClient
	processor     *ChunkProcessor
	pagesPerChunk int
	metrics       *telemetry.Metrics
}

func NewPipeline(llm LLMClient, pagesPerChunk int, metrics *telemetry.Metrics) *Pipeline {
	return &Pipeline{
		llm:           llm,
		processor:     NewChunkProcessor(llm),
		pagesPerChunk: pagesPerChunk,
		metrics:       metrics,
	}
}

// Run produces the final document plus the per-chunk audit trail.
// Chunks are processed sequentially; the merge order is chunk order.
func (p *Pipeline) Run(ctx context.Context, filename string, pages []string, company *models.CompanyConfig, clients []models.CRMClient) (_ *models.ExtractionResult, err error) {
	tracer := otel.Tracer("extraction-pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	defer func() {
		if p.metrics == nil {
			return
		}
		outcome := "completed"
		if err != nil {
			outcome = "failed"
		}
		p.metrics.RecordRun(company.ID, outcome)
	}()

	span.SetAttributes(
		attribute.String("company.id", company.ID),
		attribute.Int("pdf.pages", len(pages)),
	)

	if len(pages) == 0 {
		return nil, apperr.New(apperr.KindExtraction, "error extracting text: document has no pages")
	}

	result := &models.ExtractionResult{
		Filename: filename,
		CompanyInfo: models.CompanyInfo{
			ID:   company.ID,
			Name: company.Name,
		},
	}

	chunks := ChunkPages(pages, p.pagesPerChunk)
	span.SetAttributes(attribute.Int("pipeline.chunks", len(chunks)))

	var items []models.InvoiceGroup

	for _, chunk := range chunks {
		raw, err := p.extractChunk(ctx, chunk, company)
		if err != nil {
			return nil, err
		}

		result.RawData.Chunks = append(result.RawData.Chunks, models.RawChunk{
			Pages: chunk.Pages,
			Data:  json.RawMessage(raw),
		})

		var groups []models.RawInvoiceGroup
		if err := json.Unmarshal([]byte(raw), &groups); err != nil {
			return nil, apperr.Wrap(apperr.KindMalformedResponse, err, "error parsing JSON response for pages %s", chunk.Pages)
		}

		processed, err := p.processor.Process(ctx, groups, company.ProductsList, company.CoveringsList, clients)
		if err != nil {
			return nil, fmt.Errorf("pages %s: %w", chunk.Pages, err)
		}

		items = append(items, processed...)

		if p.metrics != nil {
			p.metrics.RecordChunk(company.ID)
		}
		logger.Debug("chunk processed", "pages", chunk.Pages, "groups", len(processed))
	}

	result.RawData.TotalChunks = len(result.RawData.Chunks)
	result.RawData.TotalPages = len(pages)
	result.NormalizedData = MergeByInvoice(items)

	span.SetAttributes(attribute.Int("pipeline.invoices", len(result.NormalizedData)))
	return result, nil
}

func (p *Pipeline) extractChunk(ctx context.Context, chunk Chunk, company *models.CompanyConfig) (string, error) {
	prompt := fmt.Sprintf("%s\n\nExtract informations from the following invoices text (pages %s): \n---\n%s\n---",
		company.MainPrompt, chunk.Pages, chunk.Text)

	raw, err := p.llm.GenerateJSON(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("pages %s: %w", chunk.Pages, err)
	}

	if strings.TrimSpace(raw) == "" {
		return "", apperr.New(apperr.KindProvider, "no result (raw invoice info) from Gemini API for pages %s", chunk.Pages)
	}

	return raw, nil
}
