package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecom-auditor/internal/profit"
	"ecom-auditor/internal/render"
	"ecom-auditor/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// OverrideLister is implemented by stores that can list stored overrides.
type OverrideLister interface {
	Overrides(ctx context.Context, p profit.Platform) ([]storage.Override, error)
}

func (b *Bot) handleAdminCommand(ctx context.Context, chatID, userID int64, cmd string, args []string) {
	if !b.cfg.IsAdmin(userID) {
		b.logger.Warn("Admin command from non-admin",
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", userID),
			zap.String("command", cmd))
		b.sendError(chatID, "Bạn không có quyền dùng lệnh này")
		return
	}
	if b.admin == nil {
		b.sendError(chatID, "Chưa cấu hình cơ sở dữ liệu, không thể thay đổi biểu phí")
		return
	}

	switch cmd {
	case "setfee":
		if len(args) != 3 {
			b.sendError(chatID, "Cú pháp: /setfee <shopee|tiktok> <trường> <giá trị>")
			return
		}
		b.handleSetFee(ctx, chatID, userID, args[0], args[1], args[2])
	case "resetfees":
		if len(args) != 1 {
			b.sendError(chatID, "Cú pháp: /resetfees <shopee|tiktok>")
			return
		}
		b.handleResetFees(ctx, chatID, args[0])
	case "overrides":
		if len(args) != 1 {
			b.sendError(chatID, "Cú pháp: /overrides <shopee|tiktok>")
			return
		}
		b.handleListOverrides(ctx, chatID, args[0])
	}
}

func (b *Bot) handleSetFee(ctx context.Context, chatID, userID int64, platformArg, key, valueArg string) {
	p, err := profit.ParsePlatform(platformArg)
	if err != nil {
		b.sendError(chatID, "Sàn không hợp lệ")
		return
	}
	field, ok := profit.LookupField(key)
	if !ok || profit.IsProductField(key) {
		b.sendError(chatID, "Trường phí không hợp lệ. Các trường: "+feeKeys(p))
		return
	}
	v, err := ParseNumber(valueArg, field.Unit)
	if err != nil {
		b.sendError(chatID, "Giá trị không hợp lệ")
		return
	}

	if err := b.admin.SetFee(ctx, p, key, v, userID); err != nil {
		switch {
		case errors.Is(err, profit.ErrUnknownField):
			b.sendError(chatID, "Trường phí không áp dụng cho sàn này. Các trường: "+feeKeys(p))
		case errors.Is(err, profit.ErrInvalidInput):
			b.sendError(chatID, "Giá trị không được là số âm")
		default:
			b.logger.Error("Failed to set fee override",
				zap.String("platform", string(p)),
				zap.String("field", key),
				zap.Error(err))
			b.sendError(chatID, "Lỗi khi lưu biểu phí")
		}
		return
	}

	b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"✅ %s: %s = %s", p.DisplayName(), field.Label, render.FieldValue(field, v))))
}

func (b *Bot) handleResetFees(ctx context.Context, chatID int64, platformArg string) {
	p, err := profit.ParsePlatform(platformArg)
	if err != nil {
		b.sendError(chatID, "Sàn không hợp lệ")
		return
	}
	if err := b.admin.ResetFees(ctx, p); err != nil {
		b.logger.Error("Failed to reset fee overrides",
			zap.String("platform", string(p)),
			zap.Error(err))
		b.sendError(chatID, "Lỗi khi khôi phục biểu phí")
		return
	}
	b.sendMessage(tgbotapi.NewMessage(chatID, "✅ Đã khôi phục biểu phí mặc định của "+p.DisplayName()))
}

func (b *Bot) handleListOverrides(ctx context.Context, chatID int64, platformArg string) {
	p, err := profit.ParsePlatform(platformArg)
	if err != nil {
		b.sendError(chatID, "Sàn không hợp lệ")
		return
	}
	lister, ok := b.admin.(OverrideLister)
	if !ok {
		b.sendError(chatID, "Không hỗ trợ")
		return
	}
	overrides, err := lister.Overrides(ctx, p)
	if err != nil {
		b.logger.Error("Failed to list fee overrides",
			zap.String("platform", string(p)),
			zap.Error(err))
		b.sendError(chatID, "Lỗi khi đọc biểu phí")
		return
	}
	if len(overrides) == 0 {
		b.sendMessage(tgbotapi.NewMessage(chatID, p.DisplayName()+": đang dùng biểu phí mặc định"))
		return
	}

	var sb strings.Builder
	sb.WriteString(p.DisplayName() + ":\n")
	for _, o := range overrides {
		fmt.Fprintf(&sb, "%s = %v\n", o.Key, o.Value)
	}
	b.sendMessage(tgbotapi.NewMessage(chatID, strings.TrimRight(sb.String(), "\n")))
}

func feeKeys(p profit.Platform) string {
	var keys []string
	for _, f := range profit.FeeFields(p) {
		keys = append(keys, f.Key)
	}
	return strings.Join(keys, ", ")
}
