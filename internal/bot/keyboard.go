package bot

import (
	"fmt"

	"ecom-auditor/internal/profit"
	"ecom-auditor/internal/render"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) createMainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonResult),
			tgbotapi.NewKeyboardButton(buttonEdit),
			tgbotapi.NewKeyboardButton(buttonFees),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonCompare),
			tgbotapi.NewKeyboardButton(buttonChart),
			tgbotapi.NewKeyboardButton(buttonSwitch),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonAdvice),
			tgbotapi.NewKeyboardButton(buttonReport),
		),
	)
}

func (b *Bot) createPlatformKeyboard(active profit.Platform) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, p := range profit.Platforms() {
		label := p.DisplayName()
		if p == active {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, callbackPlatform+string(p)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func (b *Bot) createCompareKeyboard(on bool) tgbotapi.InlineKeyboardMarkup {
	label, data := "⚖️ Bật so sánh", callbackCompare+"on"
	if on {
		label, data = "Tắt so sánh", callbackCompare+"off"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)),
	)
}

// createProductKeyboard lists product fields with their current values, two
// per row.
func (b *Bot) createProductKeyboard(product profit.ProductData) tgbotapi.InlineKeyboardMarkup {
	buttons := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Tên sản phẩm", callbackEdit+fieldName),
	}
	for _, f := range profit.ProductFields() {
		v, _ := product.Value(f.Key)
		buttons = append(buttons, fieldButton(f, v))
	}
	return gridKeyboard(buttons, 2)
}

func (b *Bot) createFeeKeyboard(p profit.Platform, fees profit.FeeStructure) tgbotapi.InlineKeyboardMarkup {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, f := range profit.FeeFields(p) {
		v, _ := fees.Value(f.Key)
		buttons = append(buttons, fieldButton(f, v))
	}
	return gridKeyboard(buttons, 2)
}

func (b *Bot) createCancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✖️ Huỷ", callbackCancel)),
	)
}

func fieldButton(f profit.Field, v float64) tgbotapi.InlineKeyboardButton {
	text := fmt.Sprintf("%s: %s", f.Label, render.FieldValue(f, v))
	return tgbotapi.NewInlineKeyboardButtonData(text, callbackEdit+f.Key)
}

func gridKeyboard(buttons []tgbotapi.InlineKeyboardButton, perRow int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(buttons); i += perRow {
		end := min(i+perRow, len(buttons))
		rows = append(rows, buttons[i:end])
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
