package bot

import (
	"testing"

	"ecom-auditor/internal/profit"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input   string
		unit    profit.Unit
		want    float64
		wantErr bool
	}{
		{"150000", profit.UnitMoney, 150000, false},
		{"150.000", profit.UnitMoney, 150000, false},
		{"150,000", profit.UnitMoney, 150000, false},
		{"1.234.567", profit.UnitMoney, 1234567, false},
		{"1.234,5", profit.UnitMoney, 1234.5, false},
		{"1,234.5", profit.UnitMoney, 1234.5, false},
		{"200.000đ", profit.UnitMoney, 200000, false},
		{"200 000 vnd", profit.UnitMoney, 200000, false},
		{"150k", profit.UnitMoney, 150000, false},
		{"1,5tr", profit.UnitMoney, 1500000, false},
		{"2,5", profit.UnitPercent, 2.5, false},
		{"2.5", profit.UnitPercent, 2.5, false},
		{"1.500", profit.UnitPercent, 1.5, false},
		{"12%", profit.UnitPercent, 12, false},
		{"3 cái", profit.UnitPieces, 3, false},
		{"-5", profit.UnitPercent, -5, false},
		{"", profit.UnitMoney, 0, true},
		{"k", profit.UnitMoney, 0, true},
		{"abc", profit.UnitMoney, 0, true},
		{"nan", profit.UnitPercent, 0, true},
		{"1.2.3,4,5", profit.UnitMoney, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNumber(tt.input, tt.unit)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
