package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"ecom-auditor/internal/feebook"
	"ecom-auditor/internal/profit"
	"ecom-auditor/internal/render"
	"ecom-auditor/internal/report"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

var menuButtons = map[string]string{
	buttonResult:  "result",
	buttonEdit:    "edit",
	buttonFees:    "fees",
	buttonCompare: "compare",
	buttonChart:   "chart",
	buttonAdvice:  "advice",
	buttonReport:  "report",
	buttonSwitch:  "platform",
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	cmd := msg.Command()
	args := strings.Fields(msg.CommandArguments())

	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}

	switch cmd {
	case "setfee", "resetfees", "overrides":
		b.handleAdminCommand(ctx, chatID, userID, cmd, args)
		return
	}

	session, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Lỗi khi xử lý yêu cầu")
		return
	}
	b.dispatch(ctx, chatID, userID, session, cmd, args)
}

func (b *Bot) handleMenuButton(ctx context.Context, chatID int64, session Session, text string) bool {
	action, ok := menuButtons[strings.TrimSpace(text)]
	if !ok {
		return false
	}
	b.dispatch(ctx, chatID, 0, session, action, nil)
	return true
}

// dispatch runs a user action. Any pending input is abandoned first.
func (b *Bot) dispatch(ctx context.Context, chatID, userID int64, session Session, action string, args []string) {
	if session.Step != StepIdle && action != "cancel" {
		session = session.Idle()
		if !b.saveSession(ctx, chatID, session) {
			return
		}
	}

	switch action {
	case "start":
		b.handleStart(ctx, chatID, userID, session)
	case "help":
		b.handleHelp(chatID, userID)
	case "platform":
		b.handlePlatform(ctx, chatID, session, args)
	case "compare":
		b.handleCompareToggle(ctx, chatID, session, !session.Comparison)
	case "edit":
		b.sendHTML(chatID, render.ProductSummary(session.Product), b.createProductKeyboard(session.Product))
	case "fees":
		b.sendHTML(chatID, render.FeeSchedule(session.Platform, session.Fees), b.createFeeKeyboard(session.Platform, session.Fees))
	case "result":
		b.showResult(ctx, chatID, session)
	case "chart":
		b.showChart(chatID, session)
	case "report":
		b.sendReport(ctx, chatID, session)
	case "advice":
		b.handleAdvice(ctx, chatID, session)
	case "reset":
		b.handleReset(ctx, chatID)
	case "cancel":
		b.handleCancel(ctx, chatID, session)
	default:
		b.sendError(chatID, "Lệnh không hợp lệ. Gõ /help để xem danh sách lệnh")
	}
}

func (b *Bot) handleCallbackData(ctx context.Context, chatID int64, session Session, data string) {
	switch {
	case strings.HasPrefix(data, callbackPlatform):
		b.handlePlatform(ctx, chatID, session.Idle(), []string{strings.TrimPrefix(data, callbackPlatform)})

	case strings.HasPrefix(data, callbackCompare):
		b.handleCompareToggle(ctx, chatID, session.Idle(), strings.TrimPrefix(data, callbackCompare) == "on")

	case strings.HasPrefix(data, callbackEdit):
		b.askForValue(ctx, chatID, session, strings.TrimPrefix(data, callbackEdit))

	case data == callbackCancel:
		b.handleCancel(ctx, chatID, session)

	default:
		b.logger.Warn("Unknown callback data",
			zap.Int64("chat_id", chatID),
			zap.String("data", data))
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID, userID int64, session Session) {
	if !b.saveSession(ctx, chatID, session) {
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Xin chào! 👋\n\n"+
		"Tôi giúp bạn tính lợi nhuận ròng, biên lợi nhuận, ROI và giá hòa vốn khi bán trên Shopee và TikTok Shop.\n\n"+
		"Sàn hiện tại: "+session.Platform.DisplayName())
	msg.ReplyMarkup = b.createMainMenuKeyboard()
	b.sendMessage(msg)
	b.handleHelp(chatID, userID)
}

func (b *Bot) handleHelp(chatID, userID int64) {
	text := helpText
	if b.cfg.IsAdmin(userID) {
		text += "\n" + adminHelpText
	}
	b.sendHTML(chatID, text, nil)
}

func (b *Bot) handlePlatform(ctx context.Context, chatID int64, session Session, args []string) {
	if len(args) == 0 {
		b.sendHTML(chatID, "Chọn sàn thương mại điện tử:", b.createPlatformKeyboard(session.Platform))
		return
	}

	p, err := profit.ParsePlatform(args[0])
	if err != nil {
		b.sendError(chatID, "Sàn không hợp lệ. Chọn shopee hoặc tiktok")
		return
	}

	session = session.WithPlatform(p, b.schedule(ctx, p))
	if !b.saveSession(ctx, chatID, session) {
		return
	}
	b.logger.Info("Platform selected",
		zap.Int64("chat_id", chatID),
		zap.String("platform", string(p)))
	b.showResult(ctx, chatID, session)
}

func (b *Bot) handleCompareToggle(ctx context.Context, chatID int64, session Session, on bool) {
	session = session.WithComparison(on)
	if !b.saveSession(ctx, chatID, session) {
		return
	}
	if !on {
		b.sendHTML(chatID, "Đã tắt chế độ so sánh.", b.createCompareKeyboard(false))
		return
	}
	b.showResult(ctx, chatID, session)
}

func (b *Bot) handleReset(ctx context.Context, chatID int64) {
	b.tracker.Cancel(adviceKey(chatID))
	if err := b.state.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Không thể khôi phục mặc định")
		return
	}
	session := NewSession(b.schedule(ctx, profit.PlatformShopee))
	if !b.saveSession(ctx, chatID, session) {
		return
	}
	b.sendMessage(tgbotapi.NewMessage(chatID, "🔄 Đã khôi phục dữ liệu mặc định."))
	b.showResult(ctx, chatID, session)
}

func (b *Bot) handleCancel(ctx context.Context, chatID int64, session Session) {
	if session.Step == StepIdle {
		b.sendMessage(tgbotapi.NewMessage(chatID, "Không có thao tác nào để huỷ."))
		return
	}
	if !b.saveSession(ctx, chatID, session.Idle()) {
		return
	}
	b.sendMessage(tgbotapi.NewMessage(chatID, "Đã huỷ."))
}

func (b *Bot) handleDefault(chatID int64) {
	b.sendMessage(tgbotapi.NewMessage(chatID, "Dùng menu bên dưới hoặc gõ /help để xem các lệnh."))
}

// calculate validates the session inputs and computes the active platform.
func (b *Bot) calculate(session Session) (profit.CalculationResult, error) {
	if err := session.Product.Validate(); err != nil {
		return profit.CalculationResult{}, err
	}
	if err := session.Fees.Validate(); err != nil {
		return profit.CalculationResult{}, err
	}
	return b.calc.Calculate(session.Platform, session.Product, session.Fees)
}

func (b *Bot) showResult(ctx context.Context, chatID int64, session Session) {
	r, err := b.calculate(session)
	if err != nil {
		b.sendCalcError(chatID, err)
		return
	}
	threshold := b.calc.Options().WarningMarginPercent
	b.sendHTML(chatID, render.ResultCard(session.Platform, session.Product, r, threshold), b.createCompareKeyboard(session.Comparison))

	if session.Comparison {
		cmp, err := b.calc.Compare(session.Product, feebook.Resolver(ctx, b.book, b.logger))
		if err != nil {
			b.sendCalcError(chatID, err)
			return
		}
		b.sendHTML(chatID, render.ComparisonTable(cmp), nil)
	}
}

func (b *Bot) showChart(chatID int64, session Session) {
	r, err := b.calculate(session)
	if err != nil {
		b.sendCalcError(chatID, err)
		return
	}
	b.sendHTML(chatID, render.BreakdownChart(session.Platform, r), nil)
}

func (b *Bot) sendReport(ctx context.Context, chatID int64, session Session) {
	r, err := b.calculate(session)
	if err != nil {
		b.sendCalcError(chatID, err)
		return
	}

	in := report.Input{
		Platform:    session.Platform,
		Product:     session.Product,
		Fees:        session.Fees,
		Result:      r,
		GeneratedAt: time.Now(),
	}
	if session.Comparison {
		cmp, err := b.calc.Compare(session.Product, feebook.Resolver(ctx, b.book, b.logger))
		if err != nil {
			b.sendCalcError(chatID, err)
			return
		}
		in.Comparison = &cmp
	}

	data, err := report.Build(in)
	if err != nil {
		b.logger.Error("Failed to build report",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Không tạo được báo cáo")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  report.FileName(session.Platform, in.GeneratedAt),
		Bytes: data,
	})
	doc.Caption = "📄 Báo cáo lợi nhuận " + session.Platform.DisplayName()
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Error("Failed to send Excel file",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Không gửi được báo cáo")
	}
}

func (b *Bot) sendCalcError(chatID int64, err error) {
	switch {
	case errors.Is(err, profit.ErrInvalidInput):
		b.sendError(chatID, "Dữ liệu không hợp lệ: "+err.Error())
	default:
		b.logger.Error("Calculation failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Không tính được kết quả")
	}
}
