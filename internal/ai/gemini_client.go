package ai

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"

	"invoice-extraction-platform/internal/apperr"
	"invoice-extraction-platform/internal/config"
	"invoice-extraction-platform/internal/telemetry"
)

// ExtractionClient wraps a single Gemini call configured for JSON-only
// output. One failed call aborts the request: there are no retries and
// no fallback response, so the audit trail never contains fabricated data.
type ExtractionClient struct {
	client      *genai.Client
	modelName   string
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	timeout     time.Duration
	metrics     *telemetry.Metrics
}

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
	RPD int // Requests per day
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	case "tier1":
		return RateLimits{RPM: 1000, TPM: 1000000, RPD: 10000}
	case "tier2":
		return RateLimits{RPM: 2000, TPM: 4000000, RPD: 50000}
	default:
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	}
}

func NewExtractionClient(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*ExtractionClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, apperr.New(apperr.KindConfiguration, "GEMINI_API_KEY not found in environment variables")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "failed to create Gemini client")
	}

	limits := getRateLimits(cfg.GeminiTier)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
			if metrics != nil {
				metrics.RecordCircuitBreakerState(name, to.String())
			}
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), limits.RPM/10)

	return &ExtractionClient{
		client:      client,
		modelName:   cfg.GeminiModel,
		breaker:     breaker,
		rateLimiter: rateLimiter,
		timeout:     time.Duration(cfg.LLMTimeoutSecs) * time.Second,
		metrics:     metrics,
	}, nil
}

// GenerateJSON sends one prompt and returns the model's JSON document.
// An empty body is a provider error, distinct from the JSON parse
// failures raised by callers, so operators can tell outages from drift.
func (c *ExtractionClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_json")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", c.modelName),
		attribute.Int("gemini.prompt_chars", len(prompt)),
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", apperr.Wrap(apperr.KindProvider, err, "rate limiter wait failed")
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		model := c.client.GenerativeModel(c.modelName)
		model.SetTemperature(0.1)
		model.ResponseMIMEType = "application/json"

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", apperr.Wrap(apperr.KindProvider, err, "Gemini API unavailable")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", apperr.Wrap(apperr.KindProvider, err, "Gemini API call timed out")
		}
		return "", apperr.Wrap(apperr.KindProvider, err, "error during Gemini API call")
	}

	resp := result.(*genai.GenerateContentResponse)

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		span.SetAttributes(attribute.String("gemini.block_reason", resp.PromptFeedback.BlockReason.String()))
		return "", apperr.New(apperr.KindContentBlocked, "request was blocked: %s", resp.PromptFeedback.BlockReason)
	}

	if c.metrics != nil && resp.UsageMetadata != nil {
		c.metrics.RecordTokensUsed(int64(resp.UsageMetadata.TotalTokenCount), c.modelName)
	}

	text := extractResponseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", apperr.New(apperr.KindProvider, "empty response from Gemini API")
	}

	span.SetAttributes(attribute.Int("gemini.response_chars", len(text)))
	return text, nil
}

func extractResponseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		// Only the first candidate carries the document
		break
	}
	return sb.String()
}

// Close releases the underlying API client.
func (c *ExtractionClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
