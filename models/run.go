package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// StoredChunk is one chunk's raw LLM payload as persisted: compressed
// bytes plus the algorithm needed to read them back.
type StoredChunk struct {
	Pages       string `bson:"pages" json:"pages"`
	Payload     []byte `bson:"payload" json:"-"`
	Compression string `bson:"compression" json:"-"`
}

// ExtractionRun is the persistent record of one upload: lifecycle
// status, the audit trail, and the final document once completed.
type ExtractionRun struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Filename       string             `bson:"filename" json:"filename"`
	CompanyID      string             `bson:"company_id" json:"company_id"`
	CompanyName    string             `bson:"company_name" json:"company_name"`
	Status         RunStatus          `bson:"status" json:"status"`
	Error          string             `bson:"error,omitempty" json:"error,omitempty"`
	TotalPages     int                `bson:"total_pages" json:"total_pages"`
	TotalChunks    int                `bson:"total_chunks" json:"total_chunks"`
	RawChunks      []StoredChunk      `bson:"raw_chunks,omitempty" json:"-"`
	NormalizedData []InvoiceGroup     `bson:"normalized_data,omitempty" json:"normalized_data,omitempty"`
	FilePath       string             `bson:"file_path,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// RunResponse is the API shape of a run, with raw chunks decompressed
// back to JSON for operator debugging.
type RunResponse struct {
	ExtractionRun
	RawData *RawData `json:"raw_data,omitempty"`
}
