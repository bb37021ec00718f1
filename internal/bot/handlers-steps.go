package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"ecom-auditor/internal/profit"
	"ecom-auditor/internal/render"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const maxNameLength = 120

var errNotANumber = errors.New("not a number")

func (b *Bot) askForValue(ctx context.Context, chatID int64, session Session, key string) {
	if key == fieldName {
		if !b.saveSession(ctx, chatID, session.Awaiting(fieldName)) {
			return
		}
		msg := tgbotapi.NewMessage(chatID, "Nhập tên sản phẩm:")
		msg.ReplyMarkup = b.createCancelKeyboard()
		b.sendMessage(msg)
		return
	}

	field, ok := profit.LookupField(key)
	if !ok || (!profit.IsProductField(key) && !feeFieldOf(session.Platform, key)) {
		b.sendError(chatID, "Trường không hợp lệ")
		return
	}

	var current float64
	if profit.IsProductField(key) {
		current, _ = session.Product.Value(key)
	} else {
		current, _ = session.Fees.Value(key)
	}

	if !b.saveSession(ctx, chatID, session.Awaiting(key)) {
		return
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Nhập giá trị mới cho «%s» (%s)\nHiện tại: %s",
		field.Label, field.Unit, render.FieldValue(field, current)))
	msg.ReplyMarkup = b.createCancelKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleValueInput(ctx context.Context, chatID int64, session Session, text string) {
	field, ok := profit.LookupField(session.PendingField)
	if !ok {
		b.logger.Warn("Pending field vanished",
			zap.Int64("chat_id", chatID),
			zap.String("field", session.PendingField))
		b.saveSession(ctx, chatID, session.Idle())
		b.handleDefault(chatID)
		return
	}

	v, err := ParseNumber(text, field.Unit)
	if err != nil {
		b.sendError(chatID, "Vui lòng nhập một số hợp lệ, ví dụ 150000 hoặc 2,5")
		return
	}

	next, err := session.WithValue(field.Key, v)
	if err != nil {
		b.sendError(chatID, inputErrorText(field, err))
		return
	}
	next = next.Idle()
	if !b.saveSession(ctx, chatID, next) {
		return
	}

	b.logger.Debug("Field updated",
		zap.Int64("chat_id", chatID),
		zap.String("field", field.Key),
		zap.Float64("value", v))
	b.showResult(ctx, chatID, next)
}

func (b *Bot) handleNameInput(ctx context.Context, chatID int64, session Session, text string) {
	name := strings.TrimSpace(text)
	if name == "" {
		b.sendError(chatID, "Tên sản phẩm không được để trống")
		return
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}

	next := session.WithName(name).Idle()
	if !b.saveSession(ctx, chatID, next) {
		return
	}
	b.showResult(ctx, chatID, next)
}

func inputErrorText(field profit.Field, err error) string {
	if field.Unit == profit.UnitPieces {
		return "Số lượng phải là số nguyên từ 1 trở lên"
	}
	if errors.Is(err, profit.ErrInvalidInput) {
		return fmt.Sprintf("«%s» không được là số âm", field.Label)
	}
	return "Giá trị không hợp lệ"
}

// ParseNumber reads a number typed by a user. It accepts '.' and ',' both as
// thousands and decimal separators, a trailing unit ("đ", "%", "vnd"), and
// the shorthands "k" (thousand) and "tr" (million) for money.
func ParseNumber(text string, unit profit.Unit) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, " ", "")
	for _, suffix := range []string{"vnđ", "vnd", "đ", "%", "cái"} {
		s = strings.TrimSuffix(s, suffix)
	}

	multiplier := 1.0
	if unit == profit.UnitMoney {
		switch {
		case strings.HasSuffix(s, "tr"):
			multiplier, s = 1e6, strings.TrimSuffix(s, "tr")
		case strings.HasSuffix(s, "k"):
			multiplier, s = 1e3, strings.TrimSuffix(s, "k")
		}
	}
	if s == "" {
		return 0, errNotANumber
	}

	s = normalizeSeparators(s, unit == profit.UnitMoney && multiplier == 1)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotANumber
	}
	return v * multiplier, nil
}

// normalizeSeparators rewrites s to use '.' as the only decimal separator.
// A lone separator followed by exactly three digits is read as a thousands
// separator when groupThousands is set.
func normalizeSeparators(s string, groupThousands bool) string {
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		// The later one is the decimal separator.
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			return strings.ReplaceAll(s, ",", "")
		}
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)

	case dots > 1:
		return strings.ReplaceAll(s, ".", "")

	case commas > 1:
		return strings.ReplaceAll(s, ",", "")

	case dots == 1 || commas == 1:
		sep := "."
		if commas == 1 {
			sep = ","
		}
		i := strings.Index(s, sep)
		if groupThousands && len(s)-i-1 == 3 {
			return strings.Replace(s, sep, "", 1)
		}
		return strings.Replace(s, sep, ".", 1)
	}
	return s
}
