// Package report exports calculations as xlsx workbooks.
package report

import (
	"fmt"
	"time"

	"ecom-auditor/internal/profit"
	"ecom-auditor/internal/render"
	"ecom-auditor/pkg/money"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	SheetReport     = "Báo cáo"
	SheetComparison = "So sánh"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Input is everything one workbook shows.
type Input struct {
	Platform    profit.Platform
	Product     profit.ProductData
	Fees        profit.FeeStructure
	Result      profit.CalculationResult
	Comparison  *profit.Comparison
	GeneratedAt time.Time
}

// Build renders the workbook and returns its bytes.
func Build(in Input) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetReport); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	w := &sheetWriter{f: f, sheet: SheetReport, bold: bold, amount: amount}

	w.header("Báo cáo lợi nhuận " + in.Platform.DisplayName())
	w.row("Sản phẩm", in.Product.Name)
	w.row("Thời gian", in.GeneratedAt.Format("2006-01-02 15:04"))
	w.blank()

	w.header("Thông tin sản phẩm")
	for _, fd := range profit.ProductFields() {
		v, _ := in.Product.Value(fd.Key)
		w.field(fd, v)
	}
	w.blank()

	w.header("Biểu phí " + in.Platform.DisplayName())
	for _, fd := range profit.FeeFields(in.Platform) {
		v, _ := in.Fees.Value(fd.Key)
		w.field(fd, v)
	}
	w.blank()

	w.header("Kết quả")
	for _, m := range render.Metrics(in.Result) {
		if m.Percent {
			w.row(m.Label+" (%)", round2(m.Value))
		} else {
			w.money(m.Label, m.Value)
		}
	}
	w.row("Cảnh báo", yesNo(in.Result.IsWarning))
	w.blank()

	w.header("Cơ cấu chi phí")
	for _, s := range profit.Breakdown(in.Result) {
		w.money(s.Label, s.Value)
	}
	w.money("Tổng chi phí", profit.TotalCosts(in.Result))

	if err := f.SetColWidth(SheetReport, "A", "A", 32); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(SheetReport, "B", "B", 18); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	if in.Comparison != nil {
		if err := writeComparison(f, *in.Comparison, bold, amount); err != nil {
			return nil, err
		}
	}
	if w.err != nil {
		return nil, fmt.Errorf("failed to write report: %w", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to save Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeComparison(f *excelize.File, cmp profit.Comparison, bold, amount int) error {
	if _, err := f.NewSheet(SheetComparison); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []any{"Chỉ tiêu", profit.PlatformShopee.DisplayName(), profit.PlatformTikTok.DisplayName()}
	if err := f.SetSheetRow(SheetComparison, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(SheetComparison, "A1", "C1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	shopee := render.Metrics(cmp.Shopee)
	tiktok := render.Metrics(cmp.TikTok)
	for i := range shopee {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		label := shopee[i].Label
		if shopee[i].Percent {
			label += " (%)"
		}
		row := []any{label, round2(shopee[i].Value), round2(tiktok[i].Value)}
		if err := f.SetSheetRow(SheetComparison, cell, &row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		if !shopee[i].Percent {
			from, _ := excelize.CoordinatesToCellName(2, i+2)
			to, _ := excelize.CoordinatesToCellName(3, i+2)
			if err := f.SetCellStyle(SheetComparison, from, to, amount); err != nil {
				return fmt.Errorf("failed to style row: %w", err)
			}
		}
	}

	last := len(shopee) + 3
	verdict, _ := excelize.CoordinatesToCellName(1, last)
	if err := f.SetCellValue(SheetComparison, verdict, "Sàn lãi hơn"); err != nil {
		return fmt.Errorf("failed to write verdict: %w", err)
	}
	winner, _ := excelize.CoordinatesToCellName(2, last)
	if err := f.SetCellValue(SheetComparison, winner, cmp.Better().DisplayName()); err != nil {
		return fmt.Errorf("failed to write verdict: %w", err)
	}
	return f.SetColWidth(SheetComparison, "A", "C", 24)
}

// FileName builds a unique download name such as
// profit_shopee_20260102_1504_1a2b3c4d.xlsx.
func FileName(p profit.Platform, at time.Time) string {
	return fmt.Sprintf("profit_%s_%s_%s.xlsx", p, at.Format("20060102_1504"), uuid.NewString()[:8])
}

type sheetWriter struct {
	f      *excelize.File
	sheet  string
	line   int
	bold   int
	amount int
	err    error
}

func (w *sheetWriter) next() (string, string) {
	w.line++
	a, _ := excelize.CoordinatesToCellName(1, w.line)
	b, _ := excelize.CoordinatesToCellName(2, w.line)
	return a, b
}

func (w *sheetWriter) set(cell string, v any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, v)
}

func (w *sheetWriter) style(cell string, style int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, cell, cell, style)
}

func (w *sheetWriter) header(title string) {
	a, _ := w.next()
	w.set(a, title)
	w.style(a, w.bold)
}

func (w *sheetWriter) row(label string, v any) {
	a, b := w.next()
	w.set(a, label)
	w.set(b, v)
}

func (w *sheetWriter) money(label string, v float64) {
	a, b := w.next()
	w.set(a, label)
	w.set(b, round2(v))
	w.style(b, w.amount)
}

func (w *sheetWriter) field(fd profit.Field, v float64) {
	switch fd.Unit {
	case profit.UnitMoney:
		w.money(fd.Label+" ("+string(fd.Unit)+")", v)
	default:
		w.row(fd.Label+" ("+string(fd.Unit)+")", v)
	}
}

func (w *sheetWriter) blank() {
	w.line++
}

func round2(v float64) float64 {
	return money.Round(v, 2)
}

func yesNo(b bool) string {
	if b {
		return "Có"
	}
	return "Không"
}
