package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	DBName   string

	APIKey       string // shared secret for the submission surface
	GeminiAPIKey string
	GeminiModel  string
	GeminiTier   string

	CRMBaseAPI       string
	CRMSecretKey     string
	CRMAllowedOrigin string

	Port        string
	GinMode     string
	CORSOrigins []string

	MaxFileSize         int64
	SyncProcessingLimit int64
	FileStorageDir      string

	PagesPerChunk  int
	LLMTimeoutSecs int
	CRMTimeoutSecs int

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	RateLimitReqs   int
	RateLimitWindow int

	// Run retention and observability
	RunRetentionDays   int
	RetentionSweepMins int
	OTLPEndpoint       string
	TracingSampleRatio float64
	WorkerConcurrency  int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/invoice_extraction"),
		DBName:   getEnv("DB_NAME", "invoice_extraction"),

		APIKey:       getEnv("API_KEY", ""),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTier:   getEnv("GEMINI_TIER", "free"),

		CRMBaseAPI:       getEnv("CRM_BASE_API", ""),
		CRMSecretKey:     getEnv("CRM_SECRET_KEY", ""),
		CRMAllowedOrigin: getEnv("CRM_ALLOWED_ORIGIN", ""),

		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),

		MaxFileSize:         getEnvInt64("MAX_FILE_SIZE", 104857600),        // 100MB
		SyncProcessingLimit: getEnvInt64("SYNC_PROCESSING_LIMIT", 20971520), // 20MB, larger uploads go async
		FileStorageDir:      getEnv("FILE_STORAGE_DIR", "./storage"),

		PagesPerChunk:  getEnvInt("PAGES_PER_CHUNK", 10),
		LLMTimeoutSecs: getEnvInt("LLM_TIMEOUT", 120),
		CRMTimeoutSecs: getEnvInt("CRM_TIMEOUT", 30),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		RunRetentionDays:   getEnvInt("RUN_RETENTION_DAYS", 30),
		RetentionSweepMins: getEnvInt("RETENTION_SWEEP_MINUTES", 60),
		OTLPEndpoint:       getEnv("OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRatio: getEnvFloat64("TRACING_SAMPLE_RATIO", 0.1),
		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 4),
	}

	// Validate required fields
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY is required - set it in .env file")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.CRMBaseAPI == "" {
		return nil, fmt.Errorf("CRM_BASE_API is required - set it in .env file")
	}

	if cfg.CRMSecretKey == "" {
		return nil, fmt.Errorf("CRM_SECRET_KEY is required - set it in .env file")
	}

	if cfg.PagesPerChunk <= 0 {
		return nil, fmt.Errorf("PAGES_PER_CHUNK must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
