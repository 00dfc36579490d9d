package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"invoice-extraction-platform/internal/companies"
	"invoice-extraction-platform/internal/config"
	"invoice-extraction-platform/internal/crm"
	"invoice-extraction-platform/internal/logger"
	"invoice-extraction-platform/internal/queue"
	"invoice-extraction-platform/middleware"
	"invoice-extraction-platform/models"
	"invoice-extraction-platform/services"
	"invoice-extraction-platform/utils"
)

// InvoiceDeps bundles everything the invoice endpoints need.
type InvoiceDeps struct {
	Cfg         *config.Config
	Pipeline    *services.Pipeline
	PDFService  *services.PDFService
	CRMClient   *crm.Client
	Store       *services.RunStore
	QueueClient *asynq.Client
}

// SetupInvoiceRoutes registers the invoice submission surface.
func SetupInvoiceRoutes(router *gin.Engine, deps *InvoiceDeps, auth *middleware.AuthMiddleware) {
	protected := router.Group("/")
	protected.Use(auth.RequireAPIKey())

	protected.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "You've found the perfect place to manage your invoices"})
	})

	invoices := protected.Group("/invoices")
	invoices.POST("/upload", HandleInvoiceUpload(deps))
	invoices.GET("/runs/:id", HandleGetRun(deps))
	invoices.GET("/runs/:id/export", HandleRunExport(deps))
}

// HandleInvoiceUpload accepts a PDF invoice and a company id. Small
// files are processed synchronously and the final document is returned;
// uploads above the sync limit are queued and a 202 with the run id is
// returned for polling.
func HandleInvoiceUpload(deps *InvoiceDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID := c.PostForm("companyId")
		company, ok := companies.Get(companyID)
		if !ok {
			utils.RespondWithBadRequest(c, "a valid company ID is required", nil)
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "no PDF file provided", nil)
			return
		}
		defer file.Close()

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
			utils.RespondWithBadRequest(c, "a valid PDF file is required", nil)
			return
		}

		if header.Size > deps.Cfg.MaxFileSize {
			utils.RespondWithBadRequest(c, "file size exceeds maximum limit", gin.H{"max_bytes": deps.Cfg.MaxFileSize})
			return
		}

		// Basic PDF header validation before doing any work
		magic := make([]byte, 5)
		if _, err := io.ReadFull(file, magic); err != nil || string(magic[:4]) != "%PDF" {
			utils.RespondWithBadRequest(c, "file does not appear to be a valid PDF", nil)
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			utils.RespondWithInternalError(c, "failed to reset upload for reading", nil)
			return
		}

		if header.Size > deps.Cfg.SyncProcessingLimit {
			handleAsyncUpload(c, deps, company, file, header.Filename)
			return
		}

		handleSyncUpload(c, deps, company, file, header.Filename)
	}
}

func handleSyncUpload(c *gin.Context, deps *InvoiceDeps, company *models.CompanyConfig, file io.Reader, filename string) {
	ctx := c.Request.Context()

	content, err := io.ReadAll(file)
	if err != nil {
		utils.RespondWithInternalError(c, "failed to read upload", nil)
		return
	}

	clients, err := deps.CRMClient.FetchClients(ctx)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	pages, err := deps.PDFService.ExtractPages(content)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	runID, err := deps.Store.Create(ctx, &models.ExtractionRun{
		Filename:    filename,
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Status:      models.StatusProcessing,
		TotalPages:  len(pages),
	})
	if err != nil {
		utils.RespondWithInternalError(c, err.Error(), nil)
		return
	}

	result, err := deps.Pipeline.Run(ctx, filename, pages, company, clients)
	if err != nil {
		logger.Error("Extraction run failed", "run_id", runID.Hex(), "file", filename, "error", err)
		// Best effort: the failed state must survive even if the caller is gone
		if failErr := deps.Store.Fail(context.Background(), runID, err.Error()); failErr != nil {
			logger.Error("Failed to persist run failure", "run_id", runID.Hex(), "error", failErr)
		}
		utils.RespondWithAppError(c, err)
		return
	}

	if err := deps.Store.Complete(ctx, runID, result); err != nil {
		logger.Error("Failed to persist run result", "run_id", runID.Hex(), "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":          runID.Hex(),
		"filename":        result.Filename,
		"company_info":    result.CompanyInfo,
		"raw_data":        result.RawData,
		"normalized_data": result.NormalizedData,
	})
}

func handleAsyncUpload(c *gin.Context, deps *InvoiceDeps, company *models.CompanyConfig, file io.Reader, filename string) {
	ctx := c.Request.Context()

	uploadDir := filepath.Join(deps.Cfg.FileStorageDir, "invoices", company.ID)
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		utils.RespondWithInternalError(c, "failed to create upload directory", nil)
		return
	}

	filePath := filepath.Join(uploadDir, fmt.Sprintf("%s.pdf", uuid.NewString()))
	dst, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		utils.RespondWithInternalError(c, "failed to store upload", nil)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(filePath)
		utils.RespondWithInternalError(c, "failed to store upload", nil)
		return
	}
	dst.Close()

	runID, err := deps.Store.Create(ctx, &models.ExtractionRun{
		Filename:    filename,
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Status:      models.StatusPending,
		FilePath:    filePath,
	})
	if err != nil {
		os.Remove(filePath)
		utils.RespondWithInternalError(c, err.Error(), nil)
		return
	}

	task, err := queue.NewExtractInvoiceTask(runID.Hex(), company.ID, filename, filePath)
	if err != nil {
		utils.RespondWithInternalError(c, "failed to build extraction task", nil)
		return
	}

	if _, err := deps.QueueClient.Enqueue(task); err != nil {
		if failErr := deps.Store.Fail(ctx, runID, "failed to enqueue extraction task"); failErr != nil {
			logger.Error("Failed to persist enqueue failure", "run_id", runID.Hex(), "error", failErr)
		}
		utils.RespondWithInternalError(c, "failed to enqueue extraction task", nil)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"run_id":  runID.Hex(),
		"status":  models.StatusPending,
		"message": "invoice queued for extraction",
	})
}

// HandleGetRun returns one run with its decompressed audit trail.
func HandleGetRun(deps *InvoiceDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		run, ok := loadRun(c, deps)
		if !ok {
			return
		}

		rawData, err := services.DecodeRawData(run)
		if err != nil {
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}

		c.JSON(http.StatusOK, models.RunResponse{
			ExtractionRun: *run,
			RawData:       rawData,
		})
	}
}

// HandleRunExport streams a completed run as an Excel workbook.
func HandleRunExport(deps *InvoiceDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		run, ok := loadRun(c, deps)
		if !ok {
			return
		}

		if run.Status != models.StatusCompleted {
			utils.RespondWithBadRequest(c, "run is not completed", gin.H{"status": run.Status})
			return
		}

		workbook, err := services.BuildWorkbook(run)
		if err != nil {
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(run)))
		if err := workbook.Write(c.Writer); err != nil {
			logger.Error("Failed to stream export", "run_id", run.ID.Hex(), "error", err)
		}
	}
}

func exportFilename(run *models.ExtractionRun) string {
	base := strings.TrimSuffix(run.Filename, filepath.Ext(run.Filename))
	if base == "" {
		base = run.ID.Hex()
	}
	return base + ".xlsx"
}

func loadRun(c *gin.Context, deps *InvoiceDeps) (*models.ExtractionRun, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.RespondWithBadRequest(c, "invalid run id", nil)
		return nil, false
	}

	run, err := deps.Store.Get(c.Request.Context(), id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithNotFound(c, "run not found")
		} else {
			utils.RespondWithInternalError(c, err.Error(), nil)
		}
		return nil, false
	}

	return run, true
}
