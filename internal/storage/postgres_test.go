package storage

import (
	"errors"
	"testing"

	"ecom-auditor/internal/profit"
)

func TestApplyOverrides(t *testing.T) {
	base := profit.DefaultFees(profit.PlatformShopee)
	fees, skipped := ApplyOverrides(base, map[string]float64{
		"fixedFeePercent": 6.5,
		"shopMallPercent": 2,
		"bogus":           1,
	})

	if fees.FixedFeePercent != 6.5 || fees.ShopMallPercent != 2 {
		t.Fatalf("expected overrides applied, got %+v", fees)
	}
	if fees.PaymentFeePercent != base.PaymentFeePercent {
		t.Fatalf("expected untouched fields to keep defaults, got %v", fees.PaymentFeePercent)
	}
	if len(skipped) != 1 || skipped[0] != "bogus" {
		t.Fatalf("expected bogus to be skipped, got %v", skipped)
	}
	if base.FixedFeePercent != 5 {
		t.Fatal("expected base schedule unchanged")
	}
}

func TestApplyOverridesEmpty(t *testing.T) {
	base := profit.DefaultFees(profit.PlatformTikTok)
	fees, skipped := ApplyOverrides(base, nil)
	if fees != base || skipped != nil {
		t.Fatalf("expected identity, got %+v %v", fees, skipped)
	}
}

func TestCheckFeeKey(t *testing.T) {
	tests := []struct {
		platform profit.Platform
		key      string
		want     error
	}{
		{profit.PlatformShopee, "pishipServiceFee", nil},
		{profit.PlatformTikTok, "tiktokOrderProcessingFee", nil},
		{profit.PlatformTikTok, "pishipServiceFee", profit.ErrUnknownField},
		{profit.PlatformShopee, "sellingPrice", profit.ErrUnknownField},
		{profit.Platform("lazada"), "taxPercent", profit.ErrUnknownPlatform},
	}
	for _, tc := range tests {
		err := CheckFeeKey(tc.platform, tc.key)
		if tc.want == nil && err != nil {
			t.Errorf("CheckFeeKey(%s, %s): expected nil, got %v", tc.platform, tc.key, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Errorf("CheckFeeKey(%s, %s): expected %v, got %v", tc.platform, tc.key, tc.want, err)
		}
	}
}

func TestFeeCacheKey(t *testing.T) {
	if got := feeCacheKey(profit.PlatformTikTok); got != "fees:tiktok" {
		t.Fatalf("expected fees:tiktok, got %q", got)
	}
}
