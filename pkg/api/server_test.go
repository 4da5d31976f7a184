package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/zpam/hamspam/pkg/config"
	"github.com/zpam/hamspam/pkg/learning"
	"github.com/zpam/hamspam/pkg/service"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}

	model, err := learning.NewModel(cfg.Model.Language)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	svc := service.NewClassifier(learning.NewGuard(model), nil, nil, zerolog.Nop())
	return NewServer(cfg, svc, zerolog.Nop())
}

func do(t *testing.T, s *Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("Failed to decode %s: %v", data, err)
	}
	return v
}

func TestTrainThenClassify(t *testing.T) {
	s := newTestServer(t, nil)

	resp, body := do(t, s, "POST", "/train_bulk",
		`[{"label":"spam","text":"buy viagra now"},{"label":"ham","text":"meeting notes attached"},{"label":"unknown","text":"x"}]`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}
	report := decode[service.TrainReport](t, body)
	if report.Status != "ok" || report.Trained != 2 || report.Skipped != 1 || report.Tokens != 6 {
		t.Errorf("Unexpected report: %+v", report)
	}

	resp, body = do(t, s, "POST", "/classify", `{"text":"buy now"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}
	result := decode[map[string]any](t, body)
	if result["label"] != "spam" {
		t.Errorf("Expected label spam, got %v", result["label"])
	}
	if score, _ := result["score"].(float64); score <= 0.8 {
		t.Errorf("Expected score > 0.8, got %v", result["score"])
	}

	_, body = do(t, s, "GET", "/tokens/x", "")
	token := decode[learning.TokenStats](t, body)
	if token.SpamCount != 0 || token.HamCount != 0 {
		t.Errorf("Skipped record must not train x, got %+v", token)
	}
}

func TestClassifyEmptyText(t *testing.T) {
	s := newTestServer(t, nil)

	_, body := do(t, s, "POST", "/classify", `{"text":""}`)
	result := decode[map[string]any](t, body)
	if result["label"] != "ham" || result["score"] != 0.0 {
		t.Errorf("Expected {ham 0}, got %v", result)
	}
}

func TestClassifyWithoutContentType(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest("POST", "/classify", strings.NewReader(`{"text":"hello"}`))
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestMalformedJSON(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		path string
		body string
		code string
	}{
		{"/classify", `{"text":`, "BAD_REQUEST"},
		{"/classify", `{}`, "INVALID_INPUT"},
		{"/train_bulk", `{"label":"spam"}`, "BAD_REQUEST"},
		{"/train_bulk", `not json`, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		resp, body := do(t, s, "POST", tt.path, tt.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s %q: expected 400, got %d", tt.path, tt.body, resp.StatusCode)
			continue
		}

		envelope := decode[ErrorResponse](t, body)
		if envelope.Success || envelope.Error.Code != tt.code {
			t.Errorf("%s %q: unexpected envelope %+v", tt.path, tt.body, envelope)
		}
		if envelope.RequestID == "" || envelope.RequestID != resp.Header.Get(HeaderRequestID) {
			t.Errorf("Envelope request id %q does not match header %q",
				envelope.RequestID, resp.Header.Get(HeaderRequestID))
		}
	}
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("Expected caller request id, got %q", got)
	}

	resp, _ = do(t, s, "GET", "/health", "")
	if resp.Header.Get(HeaderRequestID) == "" {
		t.Error("Expected generated request id")
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	resp, body := do(t, s, "GET", "/nope", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", resp.StatusCode)
	}
	if envelope := decode[ErrorResponse](t, body); envelope.Error.Code != "NOT_FOUND" {
		t.Errorf("Unexpected envelope: %+v", envelope)
	}
}

func TestMaxBatchSize(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.Model.MaxBatchSize = 1 })

	resp, body := do(t, s, "POST", "/train_bulk",
		`[{"label":"spam","text":"a"},{"label":"ham","text":"b"}]`)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected 413, got %d: %s", resp.StatusCode, body)
	}
}

func TestHealthAndStats(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, "POST", "/train_bulk", `[{"label":"spam","text":"casino"}]`)
	do(t, s, "POST", "/classify", `{"text":"casino"}`)

	resp, body := do(t, s, "GET", "/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	health := decode[map[string]any](t, body)
	if health["status"] != "ok" || health["language"] != "english" || health["generation"] != 1.0 {
		t.Errorf("Unexpected health: %v", health)
	}

	_, body = do(t, s, "GET", "/stats", "")
	stats := decode[service.Stats](t, body)
	if stats.Model.SpamTokens != 1 || stats.Model.SpamExamples != 1 {
		t.Errorf("Unexpected model stats: %+v", stats.Model)
	}
	if len(stats.Operations) != 2 {
		t.Errorf("Expected classify and train_bulk timings, got %+v", stats.Operations)
	}
}

func TestTopTokensEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, "POST", "/train_bulk",
		`[{"label":"spam","text":"jackpot jackpot bonus"},{"label":"ham","text":"agenda"}]`)

	resp, body := do(t, s, "GET", "/tokens?kind=ham&limit=5", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}
	result := decode[struct {
		Kind   string                `json:"kind"`
		Tokens []learning.TokenStats `json:"tokens"`
	}](t, body)
	if result.Kind != "ham" || len(result.Tokens) != 1 || result.Tokens[0].Score != 0.01 {
		t.Errorf("Unexpected ham tokens: %+v", result)
	}

	for _, path := range []string{"/tokens?kind=eggs", "/tokens?limit=0", "/tokens?limit=5000"} {
		if resp, _ := do(t, s, "GET", path, ""); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}

	if resp, _ := do(t, s, "GET", "/tokens/%21%21", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("Punctuation-only word: expected 404, got %d", resp.StatusCode)
	}
}
