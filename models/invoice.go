package models

import "encoding/json"

// Covering is a secondary attribute line attached to a product
// (fabric/material option). Never billable on its own.
type Covering struct {
	Name  string `json:"name" bson:"name"`
	Code  string `json:"code" bson:"code"`
	Count int    `json:"count" bson:"count"`
}

// RawProduct is a product exactly as the model extracted it: every
// numeric field is still a string and nothing has been validated.
type RawProduct struct {
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	Quantity        string     `json:"quantity"`
	FullPrice       string     `json:"full_price"`
	DiscountedPrice string     `json:"discounted_price"`
	Coverings       []Covering `json:"coverings"`
}

// RawInvoiceGroup is one invoice-group record from a chunk's LLM output.
// Products stays raw JSON: a record whose products field is missing or
// not a list is skipped by the processor, not a parse failure.
type RawInvoiceGroup struct {
	Name          string          `json:"name"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   string          `json:"invoice_date"`
	Products      json.RawMessage `json:"products"`
}

// Product is a normalized product: name rewritten to its canonical
// form, prices and quantity coerced. Nil means unparseable, not zero.
type Product struct {
	Code            string     `json:"code" bson:"code"`
	Name            string     `json:"name" bson:"name"`
	Quantity        *int       `json:"quantity" bson:"quantity"`
	FullPrice       *float64   `json:"full_price" bson:"full_price"`
	DiscountedPrice *float64   `json:"discounted_price" bson:"discounted_price"`
	Coverings       []Covering `json:"coverings" bson:"coverings"`
}

// InvoiceGroup is a normalized invoice-group record. ClientID is set
// when the client-name pass matched the name against the CRM directory.
type InvoiceGroup struct {
	Name          string    `json:"name" bson:"name"`
	ClientID      string    `json:"client_id,omitempty" bson:"client_id,omitempty"`
	InvoiceNumber string    `json:"invoice_number" bson:"invoice_number"`
	InvoiceDate   string    `json:"invoice_date" bson:"invoice_date"`
	Products      []Product `json:"products" bson:"products"`
}

// RawChunk retains one chunk's raw LLM output for the audit trail.
type RawChunk struct {
	Pages string          `json:"pages"`
	Data  json.RawMessage `json:"data"`
}

type RawData struct {
	Chunks      []RawChunk `json:"chunks"`
	TotalChunks int        `json:"total_chunks"`
	TotalPages  int        `json:"total_pages"`
}

type CompanyInfo struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// ExtractionResult is the terminal artifact of a pipeline run: the
// merged document plus the per-chunk diagnostics.
type ExtractionResult struct {
	Filename       string         `json:"filename"`
	CompanyInfo    CompanyInfo    `json:"company_info"`
	RawData        RawData        `json:"raw_data"`
	NormalizedData []InvoiceGroup `json:"normalized_data"`
}
