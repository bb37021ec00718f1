package profit

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPlatform = errors.New("unknown platform")

type Platform string

const (
	PlatformShopee Platform = "shopee"
	PlatformTikTok Platform = "tiktok"
)

// Platforms lists the supported marketplaces in display order.
func Platforms() []Platform {
	return []Platform{PlatformShopee, PlatformTikTok}
}

// ParsePlatform accepts the identifier in any case, plus "tiktokshop".
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shopee":
		return PlatformShopee, nil
	case "tiktok", "tiktokshop", "tiktok_shop":
		return PlatformTikTok, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
}

func (p Platform) DisplayName() string {
	switch p {
	case PlatformShopee:
		return "Shopee"
	case PlatformTikTok:
		return "TikTok Shop"
	}
	return string(p)
}

func (p Platform) Valid() bool {
	_, ok := defaultFees[p]
	return ok
}

// FeePolicy is one marketplace's way of charging a seller: a rate applied to
// gross revenue plus a flat amount per unit sold.
type FeePolicy interface {
	VariableRatePercent(f FeeStructure) float64
	FlatFeePerUnit(f FeeStructure) float64
}

type ShopeePolicy struct{}

func (ShopeePolicy) VariableRatePercent(f FeeStructure) float64 {
	return f.ShippingFeePercent + f.FixedFeePercent + f.VoucherExtraPercent +
		f.PaymentFeePercent + f.TaxPercent + f.ShopMallPercent
}

func (ShopeePolicy) FlatFeePerUnit(f FeeStructure) float64 {
	return f.PishipServiceFee + f.InfrastructureFee
}

type TikTokPolicy struct{}

func (TikTokPolicy) VariableRatePercent(f FeeStructure) float64 {
	return f.ShippingFeePercent + f.TikTokTransactionFeePercent +
		f.VoucherExtraPercent + f.ShopMallPercent
}

func (TikTokPolicy) FlatFeePerUnit(f FeeStructure) float64 {
	return f.TikTokOrderProcessingFee
}

// PolicyFor resolves the fee policy of a platform.
func PolicyFor(p Platform) (FeePolicy, error) {
	switch p {
	case PlatformShopee:
		return ShopeePolicy{}, nil
	case PlatformTikTok:
		return TikTokPolicy{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, string(p))
}
