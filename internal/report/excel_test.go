package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"ecom-auditor/internal/profit"

	"github.com/xuri/excelize/v2"
)

func buildInput(t *testing.T, withComparison bool) Input {
	t.Helper()
	product := profit.DefaultProduct()
	product.Name = "Áo thun"
	fees := profit.DefaultFees(profit.PlatformShopee)
	calc := profit.NewCalculator(profit.DefaultOptions())
	r, err := calc.Calculate(profit.PlatformShopee, product, fees)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	in := Input{
		Platform:    profit.PlatformShopee,
		Product:     product,
		Fees:        fees,
		Result:      r,
		GeneratedAt: time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC),
	}
	if withComparison {
		cmp, err := calc.Compare(product, nil)
		if err != nil {
			t.Fatalf("Compare failed: %v", err)
		}
		in.Comparison = &cmp
	}
	return in
}

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func lookup(t *testing.T, f *excelize.File, sheet, label string) []string {
	t.Helper()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows(%s) failed: %v", sheet, err)
	}
	for _, row := range rows {
		if len(row) > 0 && row[0] == label {
			return row
		}
	}
	t.Fatalf("row %q not found in %s", label, sheet)
	return nil
}

func TestBuildReport(t *testing.T) {
	data, err := Build(buildInput(t, false))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	f := open(t, data)

	title, err := f.GetCellValue(SheetReport, "A1")
	if err != nil || title != "Báo cáo lợi nhuận Shopee" {
		t.Fatalf("unexpected title %q (%v)", title, err)
	}
	if row := lookup(t, f, SheetReport, "Sản phẩm"); row[1] != "Áo thun" {
		t.Fatalf("expected product name, got %v", row)
	}
	if row := lookup(t, f, SheetReport, "Lợi nhuận ròng"); row[1] != "68880" {
		t.Fatalf("expected net profit 68880, got %v", row)
	}
	if row := lookup(t, f, SheetReport, "Biên lợi nhuận (%)"); row[1] != "14.35" {
		t.Fatalf("expected margin 14.35, got %v", row)
	}
	if row := lookup(t, f, SheetReport, "Cảnh báo"); row[1] != "Có" {
		t.Fatalf("expected warning flag, got %v", row)
	}
	if row := lookup(t, f, SheetReport, "Dịch vụ Piship (đ)"); row[1] != "1620" {
		t.Fatalf("expected piship fee 1620, got %v", row)
	}
	if row := lookup(t, f, SheetReport, "Tổng chi phí"); row[1] != "411120" {
		t.Fatalf("expected total costs 411120, got %v", row)
	}

	if idx, _ := f.GetSheetIndex(SheetComparison); idx != -1 {
		t.Fatal("did not expect a comparison sheet")
	}
}

func TestBuildReportWithComparison(t *testing.T) {
	data, err := Build(buildInput(t, true))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	f := open(t, data)

	row := lookup(t, f, SheetComparison, "Lợi nhuận ròng")
	if len(row) != 3 || row[1] != "68880" || row[2] != "98000" {
		t.Fatalf("unexpected comparison row %v", row)
	}
	if row := lookup(t, f, SheetComparison, "Sàn lãi hơn"); row[1] != "TikTok Shop" {
		t.Fatalf("expected TikTok Shop to win, got %v", row)
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)
	a := FileName(profit.PlatformTikTok, at)
	b := FileName(profit.PlatformTikTok, at)
	if !strings.HasPrefix(a, "profit_tiktok_20260102_1504_") || !strings.HasSuffix(a, ".xlsx") {
		t.Fatalf("unexpected file name %q", a)
	}
	if a == b {
		t.Fatal("expected unique file names")
	}
}
