package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pdfchat-backend/internal/shared/telemetry"
)

// Defaults, overridable through config.
const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultMinInterval = 2 * time.Second
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 3 * time.Second
)

const (
	maxDocumentChars = 12000
	truncationMarker = "...\n[Truncated for length]"

	systemPrompt = "You are an assistant that answers questions strictly using the " +
		"provided document text. If the answer cannot be found, reply with " +
		"a short apology and say it's unavailable."
)

// Config tunes a Generator. Zero values fall back to the defaults above.
type Config struct {
	Model       string
	MinInterval time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
}

// Generator turns (documentText, question) into an answer through one
// external generation call, with prompt assembly, a shared minimum-interval
// gate, and bounded exponential-backoff retry.
type Generator struct {
	client      Client
	model       string
	limiter     *IntervalLimiter
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewGenerator builds a Generator over the given client.
func NewGenerator(client Client, cfg Config) *Generator {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	return &Generator{
		client:      client,
		model:       cfg.Model,
		limiter:     NewIntervalLimiter(cfg.MinInterval),
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		sleep:       sleepCtx,
	}
}

// Answer generates an answer for the question from the document text. An
// empty response from the model is returned as an empty string; the caller
// decides how to handle it.
func (g *Generator) Answer(ctx context.Context, documentText, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	prompt := buildPrompt(documentText, question)

	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		resp, err := g.client.Generate(ctx, g.model, prompt)
		if err == nil {
			return strings.TrimSpace(resp), nil
		}
		lastErr = err
		quota := isQuotaError(err)

		// A missing API key never heals within the retry window.
		if errors.Is(err, ErrNotConfigured) {
			telemetry.Error("genai.not_configured", map[string]any{"error": err.Error()})
			return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}

		if attempt < g.maxAttempts-1 {
			delay := g.baseDelay * (1 << attempt)
			telemetry.Warn("genai.retry", map[string]any{
				"attempt":  attempt + 1,
				"max":      g.maxAttempts,
				"quota":    quota,
				"delay_ms": delay.Milliseconds(),
				"error":    err.Error(),
			})
			if err := g.sleep(ctx, delay); err != nil {
				return "", err
			}
			continue
		}

		telemetry.Error("genai.exhausted", map[string]any{
			"attempts": g.maxAttempts,
			"quota":    quota,
			"error":    err.Error(),
		})
		if quota {
			return "", fmt.Errorf("%w: %s", ErrQuotaExhausted, QuotaRemediation)
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
	}

	return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
}

func buildPrompt(documentText, question string) string {
	return fmt.Sprintf("%s\n\nDocument Text:\n%s\n\nQuestion:\n%s\n\nAnswer:",
		systemPrompt, truncate(documentText, maxDocumentChars), question)
}

func truncate(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + truncationMarker
}

// isQuotaError matches the upstream rate/quota signatures. Classification
// happens here once; callers never re-classify.
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "too many requests")
}
