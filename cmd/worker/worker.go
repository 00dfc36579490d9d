package main

import (
	"context"
	"log"

	"invoice-extraction-platform/internal/ai"
	"invoice-extraction-platform/internal/config"
	"invoice-extraction-platform/internal/crm"
	"invoice-extraction-platform/internal/logger"
	"invoice-extraction-platform/internal/queue"
	"invoice-extraction-platform/internal/telemetry"
	"invoice-extraction-platform/services"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(context.Background())

	// Initialize Gemini client
	llmClient, err := ai.NewExtractionClient(context.Background(), cfg, metrics)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer llmClient.Close()

	// Wire services
	db := mongoClient.Database(cfg.DBName)
	runStore := services.NewRunStore(db, metrics)
	pdfService := services.NewPDFService(metrics)
	crmClient := crm.NewClient(cfg)
	pipeline := services.NewPipeline(llmClient, cfg.PagesPerChunk, metrics)

	// Redis options for Asynq
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Create Asynq server
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	// Create task processor
	processor := queue.NewTaskProcessor(pipeline, pdfService, crmClient, runStore)

	// Create mux and register handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskExtractInvoice, processor.HandleExtractInvoice)

	logger.Info("Starting extraction worker", "concurrency", cfg.WorkerConcurrency, "redis", redisOpt.Addr)

	// Start the server
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
