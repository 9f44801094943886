package genai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newGeminiAgainst(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewGeminiClient("test-key")
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	client.baseURL = srv.URL
	return client
}

func TestGeminiClientGenerate(t *testing.T) {
	client := newGeminiAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if !strings.HasSuffix(r.URL.Path, "/gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello "},{"text":"there"}]}}]}`))
	})

	got, err := client.Generate(context.Background(), "gemini-2.0-flash", "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "hello there" {
		t.Fatalf("expected joined parts, got %q", got)
	}
}

func TestGeminiClientQuotaSignatureSurfaces(t *testing.T) {
	client := newGeminiAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := client.Generate(context.Background(), "gemini-2.0-flash", "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if !isQuotaError(err) {
		t.Fatalf("quota signature not classifiable: %v", err)
	}
}

func TestGeminiClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewGeminiClient("  "); err == nil {
		t.Fatal("expected error for missing api key")
	}

	client, err := NewGeminiClient("k")
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), "", "prompt"); err == nil {
		t.Fatal("expected error for missing model")
	}
}
