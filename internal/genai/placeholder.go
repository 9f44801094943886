package genai

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no generation API key was provided.
var ErrNotConfigured = errors.New("generation client not configured")

// PlaceholderClient stands in when GEMINI_API_KEY is absent so the rest of
// the API keeps working.
type PlaceholderClient struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	_ = ctx
	_ = model
	_ = prompt
	return "", ErrNotConfigured
}

var _ Client = PlaceholderClient{}
