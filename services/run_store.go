package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"invoice-extraction-platform/internal/telemetry"
	"invoice-extraction-platform/models"
	"invoice-extraction-platform/utils"
)

const runsCollection = "extraction_runs"

// RunStore persists extraction runs: lifecycle status, the compressed
// per-chunk raw payloads, and the final document.
type RunStore struct {
	col     *mongo.Collection
	metrics *telemetry.Metrics
}

func NewRunStore(db *mongo.Database, metrics *telemetry.Metrics) *RunStore {
	return &RunStore{
		col:     db.Collection(runsCollection),
		metrics: metrics,
	}
}

// Create inserts a new run record and returns its id.
func (s *RunStore) Create(ctx context.Context, run *models.ExtractionRun) (primitive.ObjectID, error) {
	now := time.Now()
	run.CreatedAt = now
	run.UpdatedAt = now

	res, err := s.col.InsertOne(ctx, run)
	s.record("insert", err == nil)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create extraction run: %w", err)
	}

	id := res.InsertedID.(primitive.ObjectID)
	run.ID = id
	return id, nil
}

// MarkProcessing transitions a run to the processing state.
func (s *RunStore) MarkProcessing(ctx context.Context, id primitive.ObjectID) error {
	return s.setStatus(ctx, id, models.StatusProcessing, "")
}

// Fail records a run failure with its error message.
func (s *RunStore) Fail(ctx context.Context, id primitive.ObjectID, errMsg string) error {
	return s.setStatus(ctx, id, models.StatusFailed, errMsg)
}

func (s *RunStore) setStatus(ctx context.Context, id primitive.ObjectID, status models.RunStatus, errMsg string) error {
	update := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if errMsg != "" {
		update["error"] = errMsg
	}

	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	s.record("update", err == nil)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	return nil
}

// Complete stores the finished result on a run. Raw chunk payloads are
// compressed before persisting.
func (s *RunStore) Complete(ctx context.Context, id primitive.ObjectID, result *models.ExtractionResult) error {
	stored := make([]models.StoredChunk, 0, len(result.RawData.Chunks))
	for _, chunk := range result.RawData.Chunks {
		payload, algorithm, err := utils.CompressText(string(chunk.Data))
		if err != nil {
			return fmt.Errorf("failed to compress raw chunk %s: %w", chunk.Pages, err)
		}
		stored = append(stored, models.StoredChunk{
			Pages:       chunk.Pages,
			Payload:     payload,
			Compression: string(algorithm),
		})
	}

	update := bson.M{
		"status":          models.StatusCompleted,
		"total_pages":     result.RawData.TotalPages,
		"total_chunks":    result.RawData.TotalChunks,
		"raw_chunks":      stored,
		"normalized_data": result.NormalizedData,
		"updated_at":      time.Now(),
	}

	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	s.record("update", err == nil)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// Get loads one run by id.
func (s *RunStore) Get(ctx context.Context, id primitive.ObjectID) (*models.ExtractionRun, error) {
	var run models.ExtractionRun
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	s.record("find", err == nil)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// DecodeRawData decompresses a run's stored chunks back into the
// audit-trail shape returned by the API.
func DecodeRawData(run *models.ExtractionRun) (*models.RawData, error) {
	if len(run.RawChunks) == 0 {
		return nil, nil
	}

	raw := &models.RawData{
		TotalChunks: run.TotalChunks,
		TotalPages:  run.TotalPages,
	}
	for _, stored := range run.RawChunks {
		text, err := utils.DecompressText(stored.Payload, utils.CompressionAlgorithm(stored.Compression))
		if err != nil {
			return nil, fmt.Errorf("failed to decompress raw chunk %s: %w", stored.Pages, err)
		}
		raw.Chunks = append(raw.Chunks, models.RawChunk{
			Pages: stored.Pages,
			Data:  json.RawMessage(text),
		})
	}

	return raw, nil
}

// DeleteOlderThan removes completed and failed runs older than cutoff.
func (s *RunStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{
		"status":     bson.M{"$in": []models.RunStatus{models.StatusCompleted, models.StatusFailed}},
		"created_at": bson.M{"$lt": cutoff},
	})
	s.record("delete", err == nil)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired runs: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *RunStore) record(op string, success bool) {
	if s.metrics != nil {
		s.metrics.RecordDatabaseOperation(op, runsCollection, success)
	}
}
