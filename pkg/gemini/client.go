// Package gemini wraps the Gen AI SDK for single-turn text generation.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const maxSummaryRunes = 200

// StatusError is a non-2xx reply from the API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini status %d: %s", e.Status, e.Body)
}

// GenerationConfig holds the sampling parameters of generateContent.
type GenerationConfig struct {
	Temperature float64
	TopP        float64
}

type Client struct {
	models *genai.Models
	model  string
	logger *zap.Logger
}

type Option func(*genai.ClientConfig)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(cc *genai.ClientConfig) { cc.HTTPClient = hc }
}

// WithBaseURL points the client at another host. The API version is appended
// by the SDK.
func WithBaseURL(u string) Option {
	return func(cc *genai.ClientConfig) { cc.HTTPOptions.BaseURL = u }
}

func NewClient(ctx context.Context, apiKey, model string, logger *zap.Logger, opts ...Option) (*Client, error) {
	const operation = "gemini.NewClient"

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return &Client{models: client.Models, model: model, logger: logger}, nil
}

// GenerateText sends prompt as a single user turn and returns the text of the
// first candidate. An empty candidate list yields "" and no error.
func (c *Client) GenerateText(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	started := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(cfg.Temperature)),
		TopP:        genai.Ptr(float32(cfg.TopP)),
	})

	c.logger.Debug("gemini request finished",
		zap.String("model", c.model),
		zap.Duration("took", time.Since(started)),
		zap.Bool("ok", err == nil))

	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{Status: apiErr.Code, Body: summarizeBody(apiErr.Message)}
		}
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// summarizeBody trims an error message to maxSummaryRunes, cutting on a rune
// boundary.
func summarizeBody(body string) string {
	trimmed := strings.TrimSpace(strings.ToValidUTF8(body, "�"))
	if trimmed == "" {
		return "empty response body"
	}
	if utf8.RuneCountInString(trimmed) <= maxSummaryRunes {
		return trimmed
	}
	runes := []rune(trimmed)
	return string(runes[:maxSummaryRunes-3]) + "..."
}
