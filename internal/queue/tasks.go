package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"invoice-extraction-platform/internal/apperr"
	"invoice-extraction-platform/internal/companies"
	"invoice-extraction-platform/internal/crm"
	"invoice-extraction-platform/internal/logger"
	"invoice-extraction-platform/services"
)

const TaskExtractInvoice = "invoice:extract"

type ExtractInvoicePayload struct {
	RunID     string `json:"run_id"`
	CompanyID string `json:"company_id"`
	Filename  string `json:"filename"`
	FilePath  string `json:"file_path"`
}

// NewExtractInvoiceTask builds the background task for one uploaded
// invoice. MaxRetry is zero: the no-retry policy of the pipeline also
// holds for queued work, a failed run stays failed and auditable.
func NewExtractInvoiceTask(runID, companyID, filename, filePath string) (*asynq.Task, error) {
	payload, err := json.Marshal(ExtractInvoicePayload{
		RunID:     runID,
		CompanyID: companyID,
		Filename:  filename,
		FilePath:  filePath,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskExtractInvoice,
		payload,
		asynq.MaxRetry(0),
		asynq.Timeout(30*time.Minute),
		asynq.Queue("default"),
	), nil
}

// TaskProcessor executes queued extraction runs.
type TaskProcessor struct {
	pipeline   *services.Pipeline
	pdfService *services.PDFService
	crmClient  *crm.Client
	store      *services.RunStore
}

func NewTaskProcessor(pipeline *services.Pipeline, pdfService *services.PDFService, crmClient *crm.Client, store *services.RunStore) *TaskProcessor {
	return &TaskProcessor{
		pipeline:   pipeline,
		pdfService: pdfService,
		crmClient:  crmClient,
		store:      store,
	}
}

func (p *TaskProcessor) HandleExtractInvoice(ctx context.Context, t *asynq.Task) error {
	var payload ExtractInvoicePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logger.Info("Processing queued extraction", "run_id", payload.RunID, "file", payload.Filename)

	runID, err := primitive.ObjectIDFromHex(payload.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %v: %w", payload.RunID, err, asynq.SkipRetry)
	}

	if err := p.process(ctx, runID, payload); err != nil {
		if failErr := p.store.Fail(context.Background(), runID, err.Error()); failErr != nil {
			logger.Error("Failed to mark run as failed", "run_id", payload.RunID, "error", failErr)
		}
		return err
	}

	return nil
}

func (p *TaskProcessor) process(ctx context.Context, runID primitive.ObjectID, payload ExtractInvoicePayload) error {
	company, ok := companies.Get(payload.CompanyID)
	if !ok {
		return apperr.New(apperr.KindValidation, "a valid company ID is required")
	}

	content, err := os.ReadFile(payload.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read stored upload: %w", err)
	}
	// The upload buffer is scoped to this run; remove it on every exit path
	defer os.Remove(payload.FilePath)

	if err := p.store.MarkProcessing(ctx, runID); err != nil {
		return err
	}

	clients, err := p.crmClient.FetchClients(ctx)
	if err != nil {
		return err
	}

	pages, err := p.pdfService.ExtractPages(content)
	if err != nil {
		return err
	}

	result, err := p.pipeline.Run(ctx, payload.Filename, pages, company, clients)
	if err != nil {
		return err
	}

	return p.store.Complete(ctx, runID, result)
}
