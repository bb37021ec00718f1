// Package advisor asks a language model for narrative advice on a result.
package advisor

import (
	"context"
	"errors"
	"strings"

	"ecom-auditor/internal/profit"
	"ecom-auditor/pkg/gemini"

	"go.uber.org/zap"
)

const (
	// FallbackEmpty is shown when the provider answers with no text.
	FallbackEmpty = "Không thể lấy thông tin tư vấn lúc này."
	// FallbackError is shown when the provider call fails.
	FallbackError = "Có lỗi xảy ra khi kết nối với AI chuyên gia."
)

// DefaultGeneration is the sampling used for advice.
var DefaultGeneration = gemini.GenerationConfig{Temperature: 0.7, TopP: 0.95}

type Generator interface {
	GenerateText(ctx context.Context, prompt string, cfg gemini.GenerationConfig) (string, error)
}

type Advisor struct {
	gen    Generator
	cfg    gemini.GenerationConfig
	logger *zap.Logger
}

func New(gen Generator, logger *zap.Logger) *Advisor {
	return &Advisor{gen: gen, cfg: DefaultGeneration, logger: logger}
}

// Advise returns advice text, or one of the fallback texts when the provider
// fails. The only error is the context's, when the request was superseded or
// abandoned; callers must then discard the reply.
func (a *Advisor) Advise(ctx context.Context, platform profit.Platform, product profit.ProductData, result profit.CalculationResult) (string, error) {
	if a.gen == nil {
		return FallbackError, nil
	}

	text, err := a.gen.GenerateText(ctx, BuildPrompt(platform, product, result), a.cfg)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		a.logger.Error("AI advice request failed",
			zap.String("platform", string(platform)),
			zap.Error(err))
		return FallbackError, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		a.logger.Warn("AI advice came back empty", zap.String("platform", string(platform)))
		return FallbackEmpty, nil
	}
	return text, nil
}
