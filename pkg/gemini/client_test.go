package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
)

type generateRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
		TopP        float64 `json:"topP"`
	} `json:"generationConfig"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "secret", "gemini-flash", zap.NewNop(),
		WithHTTPClient(srv.Client()),
		WithBaseURL(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestGenerateTextSendsPromptAndConfig(t *testing.T) {
	var (
		gotPath string
		gotKey  string
		gotReq  generateRequest
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "- Tăng giá"}, {"text": " bán"}]}}]
		}`))
	})

	text, err := c.GenerateText(context.Background(), "hello", GenerationConfig{Temperature: 0.7, TopP: 0.95})
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if text != "- Tăng giá bán" {
		t.Fatalf("expected joined parts, got %q", text)
	}
	if gotPath != "/v1beta/models/gemini-flash:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 || gotReq.Contents[0].Parts[0].Text != "hello" {
		t.Fatalf("unexpected contents %+v", gotReq.Contents)
	}
	if gotReq.Contents[0].Role != "user" {
		t.Fatalf("expected a user turn, got %q", gotReq.Contents[0].Role)
	}
	// sampling values travel as float32
	if math.Abs(gotReq.GenerationConfig.Temperature-0.7) > 1e-6 || math.Abs(gotReq.GenerationConfig.TopP-0.95) > 1e-6 {
		t.Fatalf("unexpected generation config %+v", gotReq.GenerationConfig)
	}
}

func TestGenerateTextChecksHTTPStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`))
	})
	_, err := c.GenerateText(context.Background(), "p", GenerationConfig{})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != http.StatusTooManyRequests || statusErr.Body != "quota exceeded" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestGenerateTextNoCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})
	text, err := c.GenerateText(context.Background(), "p", GenerationConfig{})
	if err != nil || text != "" {
		t.Fatalf("expected empty text without error, got %q, %v", text, err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	if _, err := NewClient(context.Background(), "", "m", zap.NewNop()); err == nil {
		t.Fatal("expected an error without an api key")
	}
}

func TestSummarizeBody(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  string
		runes int
	}{
		{"blank", "  ", "empty response body", 19},
		{"short", " quota exceeded ", "quota exceeded", 14},
		{"long ascii", strings.Repeat("x", 300), strings.Repeat("x", 197) + "...", 200},
		{"long multibyte", strings.Repeat("ế", 300), strings.Repeat("ế", 197) + "...", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarizeBody(tt.body)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if !utf8.ValidString(got) {
				t.Errorf("expected valid utf-8, got %q", got)
			}
			if n := utf8.RuneCountInString(got); n != tt.runes {
				t.Errorf("expected %d runes, got %d", tt.runes, n)
			}
		})
	}
}
