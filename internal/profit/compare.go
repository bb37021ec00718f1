package profit

import "fmt"

// Comparison holds one product evaluated on both marketplaces.
type Comparison struct {
	Shopee CalculationResult `json:"shopee"`
	TikTok CalculationResult `json:"tiktok"`
}

// Compare evaluates product on both platforms. schedule supplies the fee
// schedule per platform; nil means the defaults. Like Calculate it fails
// with ErrInvalidInput when either side overflows.
func (c Calculator) Compare(product ProductData, schedule func(Platform) FeeStructure) (Comparison, error) {
	if schedule == nil {
		schedule = DefaultFees
	}
	cmp := Comparison{
		Shopee: c.CalculateWithPolicy(ShopeePolicy{}, product, schedule(PlatformShopee)),
		TikTok: c.CalculateWithPolicy(TikTokPolicy{}, product, schedule(PlatformTikTok)),
	}
	if err := cmp.Shopee.checkFinite(); err != nil {
		return Comparison{}, fmt.Errorf("shopee: %w", err)
	}
	if err := cmp.TikTok.checkFinite(); err != nil {
		return Comparison{}, fmt.Errorf("tiktok: %w", err)
	}
	return cmp, nil
}

// Result returns the side for p.
func (cmp Comparison) Result(p Platform) (CalculationResult, bool) {
	switch p {
	case PlatformShopee:
		return cmp.Shopee, true
	case PlatformTikTok:
		return cmp.TikTok, true
	}
	return CalculationResult{}, false
}

// Better returns the platform with the higher net profit. Ties go to Shopee.
func (cmp Comparison) Better() Platform {
	if cmp.TikTok.NetProfit > cmp.Shopee.NetProfit {
		return PlatformTikTok
	}
	return PlatformShopee
}

// ProfitGap is the absolute net profit difference between the platforms.
func (cmp Comparison) ProfitGap() float64 {
	gap := cmp.Shopee.NetProfit - cmp.TikTok.NetProfit
	if gap < 0 {
		return -gap
	}
	return gap
}
