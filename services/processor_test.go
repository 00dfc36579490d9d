package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"invoice-extraction-platform/internal/apperr"
	"invoice-extraction-platform/models"
)

// fakeLLM replays a scripted sequence of replies and records every
// prompt it receives. An echo reply returns the INPUT DATA section of
// the client-normalization prompt unchanged.
type fakeLLM struct {
	prompts []string
	replies []fakeReply
}

type fakeReply struct {
	text string
	err  error
	echo bool
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.replies) == 0 {
		return "", errors.New("unexpected model call")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if r.echo {
		return inputDataSection(prompt), nil
	}
	return r.text, r.err
}

func inputDataSection(prompt string) string {
	const marker = "INPUT DATA:\n"
	start := strings.Index(prompt, marker)
	end := strings.LastIndex(prompt, "\n\nReturn the normalized")
	if start < 0 || end < 0 {
		return ""
	}
	return prompt[start+len(marker) : end]
}

var testClients = []models.CRMClient{
	{ID: "c-1", Name: "Arredamenti Rossi SRL"},
}

func TestProcessFiltersAndNormalizes(t *testing.T) {
	groups := []models.RawInvoiceGroup{
		{
			Name:          "Rossi",
			InvoiceNumber: "2024/001",
			InvoiceDate:   "2024-01-10",
			Products: json.RawMessage(`[
				{"code":"A1","name":"DIVANO GIOIA 3 posti","quantity":"3","full_price":"1.234,56","discounted_price":"abc",
					"coverings":[{"name":"Tessuto DURIAN","code":"D1","count":2},{"name":"ignoto","code":"X","count":1}]},
				{"code":"B2","name":"prodotto sconosciuto","quantity":"1","full_price":"10,00"}
			]`),
		},
		{Name: "senza prodotti", InvoiceNumber: "2024/002"},
		{
			Name:          "solo scarti",
			InvoiceNumber: "2024/003",
			Products:      json.RawMessage(`[{"name":"altro prodotto","quantity":"1"}]`),
		},
	}

	llm := &fakeLLM{replies: []fakeReply{{echo: true}}}
	processor := NewChunkProcessor(llm)

	got, err := processor.Process(context.Background(), groups, []string{"DIVANO GIOIA"}, []string{"DURIAN"}, testClients)
	if err != nil {
		t.Fatalf("process error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 surviving record, got %d", len(got))
	}
	record := got[0]
	if record.InvoiceNumber != "2024/001" {
		t.Fatalf("unexpected survivor %+v", record)
	}
	if len(record.Products) != 1 {
		t.Fatalf("expected 1 surviving product, got %d", len(record.Products))
	}

	product := record.Products[0]
	if product.Name != "DIVANO GIOIA" {
		t.Fatalf("product name not rewritten: %q", product.Name)
	}
	if product.Quantity == nil || *product.Quantity != 3 {
		t.Fatalf("unexpected quantity %v", product.Quantity)
	}
	if product.FullPrice == nil || *product.FullPrice != 1234.56 {
		t.Fatalf("unexpected full price %v", product.FullPrice)
	}
	if product.DiscountedPrice != nil {
		t.Fatalf("unparseable price must stay nil, got %v", *product.DiscountedPrice)
	}
	if len(product.Coverings) != 1 || product.Coverings[0].Name != "DURIAN" {
		t.Fatalf("unexpected coverings %+v", product.Coverings)
	}
}

func TestProcessEmptyResultSkipsClientPass(t *testing.T) {
	groups := []models.RawInvoiceGroup{
		{Name: "niente", InvoiceNumber: "1", Products: json.RawMessage(`[{"name":"sconosciuto"}]`)},
	}

	llm := &fakeLLM{}
	processor := NewChunkProcessor(llm)

	got, err := processor.Process(context.Background(), groups, []string{"DIVANO GIOIA"}, nil, testClients)
	if err != nil {
		t.Fatalf("process error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
	if len(llm.prompts) != 0 {
		t.Fatalf("client pass must not run on an empty chunk, got %d calls", len(llm.prompts))
	}
}

func TestProcessClientPromptContents(t *testing.T) {
	groups := []models.RawInvoiceGroup{
		{Name: "Rossi", InvoiceNumber: "1", Products: json.RawMessage(`[{"name":"DIVANO GIOIA"}]`)},
	}

	llm := &fakeLLM{replies: []fakeReply{{echo: true}}}
	processor := NewChunkProcessor(llm)

	if _, err := processor.Process(context.Background(), groups, []string{"DIVANO GIOIA"}, nil, testClients); err != nil {
		t.Fatalf("process error: %v", err)
	}
	if len(llm.prompts) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(llm.prompts))
	}

	prompt := llm.prompts[0]
	if !strings.Contains(prompt, "REFERENCE LIST:") {
		t.Fatalf("prompt missing reference list section:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Arredamenti Rossi SRL") {
		t.Fatalf("prompt missing CRM client name:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"invoice_number": "1"`) {
		t.Fatalf("prompt missing chunk data:\n%s", prompt)
	}
}

func TestProcessClientPassMalformedResponse(t *testing.T) {
	groups := []models.RawInvoiceGroup{
		{Name: "Rossi", InvoiceNumber: "1", Products: json.RawMessage(`[{"name":"DIVANO GIOIA"}]`)},
	}

	llm := &fakeLLM{replies: []fakeReply{{text: "non sono JSON"}}}
	processor := NewChunkProcessor(llm)

	_, err := processor.Process(context.Background(), groups, []string{"DIVANO GIOIA"}, nil, testClients)
	if err == nil {
		t.Fatal("expected error on malformed client-pass response")
	}
	if !apperr.IsKind(err, apperr.KindMalformedResponse) {
		t.Fatalf("expected malformed-response error, got %v", err)
	}
	if !strings.Contains(err.Error(), "client names normalization") {
		t.Fatalf("error must name the client pass: %v", err)
	}
}

func TestProcessClientPassModelError(t *testing.T) {
	groups := []models.RawInvoiceGroup{
		{Name: "Rossi", InvoiceNumber: "1", Products: json.RawMessage(`[{"name":"DIVANO GIOIA"}]`)},
	}

	providerErr := apperr.New(apperr.KindProvider, "model unavailable")
	llm := &fakeLLM{replies: []fakeReply{{err: providerErr}}}
	processor := NewChunkProcessor(llm)

	_, err := processor.Process(context.Background(), groups, []string{"DIVANO GIOIA"}, nil, testClients)
	if err == nil {
		t.Fatal("expected error when the model call fails")
	}
	if !apperr.IsKind(err, apperr.KindProvider) {
		t.Fatalf("provider kind must survive wrapping, got %v", err)
	}
}
