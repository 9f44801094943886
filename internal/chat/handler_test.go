package chat

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"pdfchat-backend/internal/genai"
)

func newTestHandler(t *testing.T, gen AnswerGenerator) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := newTestChat(t, gen)
	h := NewHandler(svc)
	r := gin.New()
	api := r.Group("/api")
	h.RegisterRoutes(api)
	return r, svc
}

func postAsk(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestAskEndpoint(t *testing.T) {
	r, svc := newTestHandler(t, &fakeGen{answer: "42"})
	seedDocument(t, svc.Records, "u1", "d1", "doc text")

	resp := postAsk(t, r, `{"user_id":"u1","doc_id":"d1","question":"meaning of life?"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var out askResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Answer != "42" {
		t.Fatalf("unexpected answer %q", out.Answer)
	}
}

func TestAskEndpointStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		gen    *fakeGen
		body   string
		seed   bool
		status int
	}{
		{
			name:   "empty question",
			gen:    &fakeGen{},
			body:   `{"user_id":"u1","doc_id":"d1","question":"  "}`,
			seed:   true,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown document",
			gen:    &fakeGen{},
			body:   `{"user_id":"u1","doc_id":"nope","question":"q"}`,
			status: http.StatusNotFound,
		},
		{
			name:   "quota exhausted",
			gen:    &fakeGen{err: fmt.Errorf("%w: %s", genai.ErrQuotaExhausted, genai.QuotaRemediation)},
			body:   `{"user_id":"u1","doc_id":"d1","question":"q"}`,
			seed:   true,
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "generation failed",
			gen:    &fakeGen{err: fmt.Errorf("%w: boom", genai.ErrGenerationFailed)},
			body:   `{"user_id":"u1","doc_id":"d1","question":"q"}`,
			seed:   true,
			status: http.StatusBadGateway,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, svc := newTestHandler(t, tc.gen)
			if tc.seed {
				seedDocument(t, svc.Records, "u1", "d1", "doc text")
			}
			resp := postAsk(t, r, tc.body)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestAskEndpointQuotaMessage(t *testing.T) {
	r, svc := newTestHandler(t, &fakeGen{err: fmt.Errorf("%w: %s", genai.ErrQuotaExhausted, genai.QuotaRemediation)})
	seedDocument(t, svc.Records, "u1", "d1", "doc text")

	resp := postAsk(t, r, `{"user_id":"u1","doc_id":"d1","question":"q"}`)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "quota") {
		t.Fatalf("expected remediation message, got %s", resp.Body.String())
	}
}

func TestHistoryEndpointMessages(t *testing.T) {
	r, svc := newTestHandler(t, &fakeGen{answer: "sure"})
	seedDocument(t, svc.Records, "u1", "d1", "doc text")

	resp := postAsk(t, r, `{"user_id":"u1","doc_id":"d1","question":"first?"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("ask expected 200, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history?user_id=u1&doc_id=d1", nil)
	histResp := httptest.NewRecorder()
	r.ServeHTTP(histResp, req)
	if histResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", histResp.Code)
	}

	var msgs []map[string]any
	if err := json.Unmarshal(histResp.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0]["role"] != "user" || msgs[0]["content"] != "first?" {
		t.Fatalf("unexpected first message %+v", msgs[0])
	}
	if msgs[0]["type"] != "message" {
		t.Fatalf("expected type message, got %+v", msgs[0])
	}
}

func TestHistoryEndpointDocumentsWhenNoDocID(t *testing.T) {
	r, svc := newTestHandler(t, &fakeGen{})
	seedDocument(t, svc.Records, "u1", "d1", "doc text")

	req := httptest.NewRequest(http.MethodGet, "/api/history?user_id=u1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var docs []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &docs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0]["id"] != "d1" || docs[0]["file_name"] != "d1.pdf" {
		t.Fatalf("unexpected document %+v", docs[0])
	}
}

func TestHistoryEndpointRequiresUserID(t *testing.T) {
	r, _ := newTestHandler(t, &fakeGen{})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
