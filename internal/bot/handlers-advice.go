package bot

import (
	"context"
	"fmt"
	"time"

	"ecom-auditor/internal/advisor"
	"ecom-auditor/internal/profit"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const adviceWindow = time.Hour

func adviceKey(chatID int64) string {
	return fmt.Sprintf("chat:%d", chatID)
}

// handleAdvice starts an advice request in the background. A newer request
// for the same chat supersedes an outstanding one, whose reply is dropped.
func (b *Bot) handleAdvice(ctx context.Context, chatID int64, session Session) {
	if b.advisor == nil {
		b.sendError(chatID, "Tính năng tư vấn AI chưa được cấu hình")
		return
	}

	r, err := b.calculate(session)
	if err != nil {
		b.sendCalcError(chatID, err)
		return
	}

	if !b.allowAdvice(ctx, chatID) {
		b.sendError(chatID, "Bạn đã hết lượt tư vấn trong giờ này, vui lòng thử lại sau")
		return
	}

	ticket := b.tracker.Begin(ctx, adviceKey(chatID))
	b.sendMessage(tgbotapi.NewMessage(chatID, "🤖 Đang phân tích..."))

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.runAdvice(ticket, chatID, session.Platform, session.Product, r)
	}()
}

func (b *Bot) runAdvice(ticket advisor.Ticket, chatID int64, platform profit.Platform, product profit.ProductData, r profit.CalculationResult) {
	text, err := b.advisor.Advise(ticket.Ctx, platform, product, r)
	if !b.tracker.Finish(ticket) || err != nil {
		b.logger.Debug("Dropping superseded advice",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	msg := tgbotapi.NewMessage(chatID, "💡 Trợ lý Chiến lược AI\n\n"+text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		// Model Markdown does not always parse; retry as plain text.
		msg.ParseMode = ""
		b.sendMessage(msg)
	}
}

func (b *Bot) allowAdvice(ctx context.Context, chatID int64) bool {
	limit := b.cfg.Gemini.RateLimit
	if b.limiter == nil || limit <= 0 {
		return true
	}
	ok, err := b.limiter.Allow(ctx, fmt.Sprintf("ratelimit:%d:%s", chatID, adviceAction), limit, adviceWindow)
	if err != nil {
		b.logger.Warn("Rate limit check failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return true
	}
	return ok
}
