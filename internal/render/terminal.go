package render

import (
	"fmt"
	"strings"

	"ecom-auditor/internal/profit"
	"ecom-auditor/pkg/money"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	colorDanger  = lipgloss.AdaptiveColor{Light: "#BE123C", Dark: "#FB7185"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#CBD5E1", Dark: "#475569"}

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	titleStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted).Width(26)
	profitStyle  = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	lossStyle    = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
)

// TerminalResult renders a result as a bordered panel.
func TerminalResult(platform profit.Platform, product profit.ProductData, r profit.CalculationResult, threshold float64) string {
	title := "Kết quả " + platform.DisplayName()
	if product.Name != "" {
		title += " · " + product.Name
	}

	lines := []string{titleStyle.Render(title), ""}
	for _, m := range Metrics(r) {
		value := m.String()
		if m.Label == "Lợi nhuận ròng" {
			value = signedStyle(r.NetProfit).Render(value)
		}
		lines = append(lines, labelStyle.Render(m.Label)+value)
	}
	if r.IsWarning {
		lines = append(lines, "", warningStyle.Render("⚠ "+WarningText(threshold)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// TerminalComparison renders both platforms as two panels side by side.
func TerminalComparison(cmp profit.Comparison) string {
	side := func(p profit.Platform, r profit.CalculationResult) string {
		lines := []string{
			titleStyle.Render(p.DisplayName()),
			labelStyle.Render("Thực thu") + money.VND(r.RealRevenue),
			labelStyle.Render("Phí sàn") + money.VND(r.TotalPlatformFees),
			labelStyle.Render("Lợi nhuận") + signedStyle(r.NetProfit).Render(money.VND(r.NetProfit)),
			labelStyle.Render("Biên LN") + money.Percent(r.ProfitMargin, 1),
		}
		return panelStyle.Render(strings.Join(lines, "\n"))
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		side(profit.PlatformShopee, cmp.Shopee),
		" ",
		side(profit.PlatformTikTok, cmp.TikTok),
	)
	verdict := fmt.Sprintf("%s lãi hơn %s", cmp.Better().DisplayName(), money.VND(cmp.ProfitGap()))
	return lipgloss.JoinVertical(lipgloss.Left, panels, profitStyle.Render(verdict))
}

// TerminalBreakdown renders the cost structure with coloured bars.
func TerminalBreakdown(platform profit.Platform, r profit.CalculationResult) string {
	lines := []string{titleStyle.Render(fmt.Sprintf("Cấu trúc dòng tiền (%s)", platform.DisplayName())), ""}
	for _, s := range profit.Breakdown(r) {
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(Bar(s.Share, barWidth))
		lines = append(lines, fmt.Sprintf("%s %s %s", labelStyle.Render(s.Label), bar, money.VND(s.Value)))
	}
	lines = append(lines, "", labelStyle.Render("Tổng chi phí")+money.VND(profit.TotalCosts(r)))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func signedStyle(v float64) lipgloss.Style {
	if v < 0 {
		return lossStyle
	}
	return profitStyle
}
