package services

import (
	"context"
	"encoding/json"
	"fmt"

	"invoice-extraction-platform/internal/apperr"
	"invoice-extraction-platform/models"
)

// LLMClient is the single operation the pipeline needs from the model
// provider: prompt in, JSON document out.
type LLMClient interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// ChunkProcessor normalizes one chunk's raw extraction against the
// company reference lists, then runs a second model pass to resolve
// client names against the CRM directory.
type ChunkProcessor struct {
	llm LLMClient
}

func NewChunkProcessor(llm LLMClient) *ChunkProcessor {
	return &ChunkProcessor{llm: llm}
}

const clientNormalizationPrompt = `You are an assistant specialized in normalizing client names. Your task is to match and replace client names with their standardized versions from a reference list.

REFERENCE LIST:
%s

RULES:
1. Match the input client name with the most similar name in the reference list
2. If a match is found, replace the name with the standardized version and set its id in a "client_id" field
3. If no match is found, keep the original name and omit "client_id"
4. Preserve all other fields in the input data verbatim
5. Return the data in the same format as the input

INPUT DATA:
%s

Return the normalized data in JSON format.`

// Process filters and normalizes a chunk's invoice groups.
//
// Records without a products list are skipped, not failed. Products
// survive only when their name contains a canonical product name;
// surviving names are rewritten to the canonical form and numeric
// fields coerced. Records with zero surviving products are dropped
// entirely, which is also how coverings without products disappear:
// coverings live inside product objects and have nothing to attach to.
//
// A failure in the client-name pass is fatal for the whole run, because
// client identity is required for correct invoice merging downstream.
func (p *ChunkProcessor) Process(ctx context.Context, groups []models.RawInvoiceGroup, productsList, coveringsList []string, clients []models.CRMClient) ([]models.InvoiceGroup, error) {
	var processed []models.InvoiceGroup

	for _, group := range groups {
		rawProducts, ok := decodeProducts(group.Products)
		if !ok {
			continue
		}

		var normalized []models.Product
		for _, raw := range rawProducts {
			if raw.Name == "" {
				continue
			}

			name, matched := MatchCanonical(raw.Name, productsList)
			if !matched {
				continue
			}

			normalized = append(normalized, models.Product{
				Code:            raw.Code,
				Name:            name,
				Quantity:        ParseQuantity(raw.Quantity),
				FullPrice:       ParsePrice(raw.FullPrice),
				DiscountedPrice: ParsePrice(raw.DiscountedPrice),
				Coverings:       NormalizeCoverings(raw.Coverings, coveringsList),
			})
		}

		if len(normalized) == 0 {
			continue
		}

		processed = append(processed, models.InvoiceGroup{
			Name:          group.Name,
			InvoiceNumber: group.InvoiceNumber,
			InvoiceDate:   group.InvoiceDate,
			Products:      normalized,
		})
	}

	if len(processed) == 0 {
		return processed, nil
	}

	return p.normalizeClientNames(ctx, processed, clients)
}

// decodeProducts reports whether the raw products field is a usable
// list. Missing or non-list values skip the record rather than failing
// the chunk.
func decodeProducts(raw json.RawMessage) ([]models.RawProduct, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var products []models.RawProduct
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false
	}
	return products, true
}

func (p *ChunkProcessor) normalizeClientNames(ctx context.Context, items []models.InvoiceGroup, clients []models.CRMClient) ([]models.InvoiceGroup, error) {
	clientsJSON, err := json.MarshalIndent(clients, "", "  ")
	if err != nil {
		return nil, apperr.Wrap(apperr.KindMalformedResponse, err, "failed to encode clients list")
	}

	itemsJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, apperr.Wrap(apperr.KindMalformedResponse, err, "failed to encode chunk items")
	}

	prompt := fmt.Sprintf(clientNormalizationPrompt, clientsJSON, itemsJSON)

	response, err := p.llm.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("error during client names normalization in chunk: %w", err)
	}

	var normalized []models.InvoiceGroup
	if err := json.Unmarshal([]byte(response), &normalized); err != nil {
		return nil, apperr.Wrap(apperr.KindMalformedResponse, err, "error during client names normalization in chunk")
	}

	return normalized, nil
}
