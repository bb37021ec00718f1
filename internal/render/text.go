// Package render turns calculation results into chat and terminal text.
package render

import (
	"fmt"
	"html"
	"math"
	"strings"

	"ecom-auditor/internal/profit"
	"ecom-auditor/pkg/money"
)

// Metric is one labelled figure of a result.
type Metric struct {
	Label   string
	Value   float64
	Percent bool
}

func (m Metric) String() string {
	if m.Percent {
		return money.Percent(m.Value, 1)
	}
	return money.VND(m.Value)
}

// Metrics lists every figure of r in display order.
func Metrics(r profit.CalculationResult) []Metric {
	return []Metric{
		{Label: "Doanh thu", Value: r.TotalRevenue},
		{Label: "Doanh thu thực thu", Value: r.RealRevenue},
		{Label: "Giá vốn COGS", Value: r.TotalCapital},
		{Label: "Phí sàn ước tính", Value: r.TotalPlatformFees},
		{Label: "Vận hành (Kho/Nhân viên)", Value: r.TotalOperatingCosts},
		{Label: "Marketing (Ads/Affiliate)", Value: r.TotalMarketingCosts},
		{Label: "Lợi nhuận ròng", Value: r.NetProfit},
		{Label: "Biên lợi nhuận", Value: r.ProfitMargin, Percent: true},
		{Label: "ROI", Value: r.ROI, Percent: true},
		{Label: "Giá hòa vốn / SP", Value: r.BreakevenPrice},
	}
}

// WarningText is the low-margin notice for threshold.
func WarningText(threshold float64) string {
	return fmt.Sprintf("Cảnh báo rủi ro (<%s%%)", trimFloat(threshold))
}

// FieldValue formats v with the unit of the field.
func FieldValue(f profit.Field, v float64) string {
	switch f.Unit {
	case profit.UnitPercent:
		return trimFloat(v) + "%"
	case profit.UnitPieces:
		return fmt.Sprintf("%s %s", money.Amount(v), f.Unit)
	default:
		return money.VND(v)
	}
}

// ResultCard is the main Telegram card (HTML parse mode).
func ResultCard(platform profit.Platform, product profit.ProductData, r profit.CalculationResult, threshold float64) string {
	var b strings.Builder

	title := "📊 <b>Kết quả " + html.EscapeString(platform.DisplayName()) + "</b>"
	if product.Name != "" {
		title += " · " + html.EscapeString(product.Name)
	}
	b.WriteString(title + "\n\n")

	icon := "🟢"
	if r.NetProfit < 0 {
		icon = "🔴"
	}
	fmt.Fprintf(&b, "%s Lợi nhuận ròng: <b>%s</b>\n", icon, money.VND(r.NetProfit))
	fmt.Fprintf(&b, "<i>Tổng LN cho %d sản phẩm</i>\n", product.Quantity)
	fmt.Fprintf(&b, "📈 Biên lợi nhuận: <b>%s</b>\n", money.Percent(r.ProfitMargin, 1))
	if r.IsWarning {
		fmt.Fprintf(&b, "⚠️ <b>%s</b>\n", html.EscapeString(WarningText(threshold)))
	}
	fmt.Fprintf(&b, "💹 ROI: %s\n", money.Percent(r.ROI, 1))
	fmt.Fprintf(&b, "🎯 Giá hòa vốn / SP: <b>%s</b>\n", money.VND(r.BreakevenPrice))
	b.WriteString("<i>Đã gồm phí sàn &amp; vận hành %</i>\n\n")

	fmt.Fprintf(&b, "Doanh thu thực thu: %s\n", money.VND(r.RealRevenue))
	fmt.Fprintf(&b, "Giá vốn COGS: %s\n", money.VND(r.TotalCapital))
	fmt.Fprintf(&b, "Phí sàn ước tính: %s\n", money.VND(r.TotalPlatformFees))
	fmt.Fprintf(&b, "Vận hành: %s\n", money.VND(r.TotalOperatingCosts))
	fmt.Fprintf(&b, "Marketing: %s", money.VND(r.TotalMarketingCosts))
	return b.String()
}

// ComparisonTable renders both platforms side by side in a <pre> block.
func ComparisonTable(cmp profit.Comparison) string {
	rows := []struct {
		label  string
		shopee string
		tiktok string
	}{
		{"Thực thu", money.Amount(cmp.Shopee.RealRevenue), money.Amount(cmp.TikTok.RealRevenue)},
		{"Phí sàn", money.Amount(cmp.Shopee.TotalPlatformFees), money.Amount(cmp.TikTok.TotalPlatformFees)},
		{"Lợi nhuận", money.Amount(cmp.Shopee.NetProfit), money.Amount(cmp.TikTok.NetProfit)},
		{"Biên LN", money.Percent(cmp.Shopee.ProfitMargin, 1), money.Percent(cmp.TikTok.ProfitMargin, 1)},
		{"Hòa vốn", money.Amount(cmp.Shopee.BreakevenPrice), money.Amount(cmp.TikTok.BreakevenPrice)},
	}

	var b strings.Builder
	b.WriteString("⚖️ <b>So sánh Shopee vs TikTok Shop</b>\n<pre>")
	fmt.Fprintf(&b, "%-10s %12s %12s\n", "", "Shopee", "TikTok")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-10s %12s %12s\n", r.label, r.shopee, r.tiktok)
	}
	b.WriteString("</pre>")

	better := cmp.Better()
	fmt.Fprintf(&b, "\n🏆 %s lãi hơn %s", better.DisplayName(), money.VND(cmp.ProfitGap()))
	return b.String()
}

const barWidth = 20

// BreakdownChart renders the five cost categories as proportional bars.
func BreakdownChart(platform profit.Platform, r profit.CalculationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🥧 <b>Cấu trúc dòng tiền (%s)</b>\n<pre>", html.EscapeString(platform.DisplayName()))
	for _, s := range profit.Breakdown(r) {
		fmt.Fprintf(&b, "%s %s %5s\n", padRight(s.Label, 10), Bar(s.Share, barWidth), money.Percent(s.Share*100, 0))
	}
	b.WriteString("</pre>")
	fmt.Fprintf(&b, "Tổng chi phí: <b>%s</b>\n", money.VND(profit.TotalCosts(r)))
	fmt.Fprintf(&b, "Doanh thu thực thu: %s", money.VND(r.RealRevenue))
	return b.String()
}

// Bar draws share (0..1) as a fixed-width bar.
func Bar(share float64, width int) string {
	if math.IsNaN(share) || share < 0 {
		share = 0
	}
	if share > 1 {
		share = 1
	}
	filled := int(math.Round(share * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// ProductSummary lists the current inputs.
func ProductSummary(product profit.ProductData) string {
	var b strings.Builder
	b.WriteString("📦 <b>Thông tin sản phẩm</b>\n")
	if product.Name != "" {
		fmt.Fprintf(&b, "Tên: %s\n", html.EscapeString(product.Name))
	}
	for _, f := range profit.ProductFields() {
		v, _ := product.Value(f.Key)
		fmt.Fprintf(&b, "%s: %s\n", f.Label, FieldValue(f, v))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FeeSchedule lists the fee fields of platform.
func FeeSchedule(platform profit.Platform, fees profit.FeeStructure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏷 <b>Biểu phí %s</b>\n", html.EscapeString(platform.DisplayName()))
	for _, f := range profit.FeeFields(platform) {
		v, _ := fees.Value(f.Key)
		fmt.Fprintf(&b, "%s: %s\n", f.Label, FieldValue(f, v))
	}
	return strings.TrimRight(b.String(), "\n")
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// padRight pads by rune count so Vietnamese labels line up.
func padRight(s string, n int) string {
	l := len([]rune(s))
	if l >= n {
		return s
	}
	return s + strings.Repeat(" ", n-l)
}
