package profit

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidInput = errors.New("invalid input")
)

type Unit string

const (
	UnitMoney   Unit = "đ"
	UnitPercent Unit = "%"
	UnitPieces  Unit = "Cái"
)

// Field describes one editable input.
type Field struct {
	Key   string
	Label string
	Unit  Unit
}

type productField struct {
	Field
	get func(ProductData) float64
	set func(*ProductData, float64)
}

type feeField struct {
	Field
	get func(FeeStructure) float64
	set func(*FeeStructure, float64)
}

var productFields = []productField{
	{Field{"quantity", "Số lượng", UnitPieces},
		func(p ProductData) float64 { return float64(p.Quantity) },
		func(p *ProductData, v float64) { p.Quantity = int(math.Round(v)) }},
	{Field{"sellingPrice", "Giá bán/SP", UnitMoney},
		func(p ProductData) float64 { return p.SellingPrice },
		func(p *ProductData, v float64) { p.SellingPrice = v }},
	{Field{"capitalCost", "Giá vốn/SP", UnitMoney},
		func(p ProductData) float64 { return p.CapitalCost },
		func(p *ProductData, v float64) { p.CapitalCost = v }},
	{Field{"warehousingPercent", "Kho bãi", UnitPercent},
		func(p ProductData) float64 { return p.WarehousingPercent },
		func(p *ProductData, v float64) { p.WarehousingPercent = v }},
	{Field{"utilitiesPercent", "Điện nước", UnitPercent},
		func(p ProductData) float64 { return p.UtilitiesPercent },
		func(p *ProductData, v float64) { p.UtilitiesPercent = v }},
	{Field{"staffPercent", "Nhân viên", UnitPercent},
		func(p ProductData) float64 { return p.StaffPercent },
		func(p *ProductData, v float64) { p.StaffPercent = v }},
	{Field{"packagingCost", "Đóng gói", UnitMoney},
		func(p ProductData) float64 { return p.PackagingCost },
		func(p *ProductData, v float64) { p.PackagingCost = v }},
	{Field{"shippingFeeInternal", "Vận chuyển kho", UnitMoney},
		func(p ProductData) float64 { return p.ShippingFeeInternal },
		func(p *ProductData, v float64) { p.ShippingFeeInternal = v }},
	{Field{"otherCosts", "Chi phí khác", UnitMoney},
		func(p ProductData) float64 { return p.OtherCosts },
		func(p *ProductData, v float64) { p.OtherCosts = v }},
	{Field{"marketingCostFixed", "Ads cố định", UnitMoney},
		func(p ProductData) float64 { return p.MarketingCostFixed },
		func(p *ProductData, v float64) { p.MarketingCostFixed = v }},
	{Field{"affiliatePercent", "Affiliate", UnitPercent},
		func(p ProductData) float64 { return p.AffiliatePercent },
		func(p *ProductData, v float64) { p.AffiliatePercent = v }},
	{Field{"adCommissionPercent", "HH Quảng cáo", UnitPercent},
		func(p ProductData) float64 { return p.AdCommissionPercent },
		func(p *ProductData, v float64) { p.AdCommissionPercent = v }},
	{Field{"voucherShop", "Voucher Shop chịu", UnitMoney},
		func(p ProductData) float64 { return p.VoucherShop },
		func(p *ProductData, v float64) { p.VoucherShop = v }},
	{Field{"voucherPlatform", "Voucher Sàn chịu", UnitMoney},
		func(p ProductData) float64 { return p.VoucherPlatform },
		func(p *ProductData, v float64) { p.VoucherPlatform = v }},
}

var feeFields = []feeField{
	{Field{"shippingFeePercent", "Phí vận chuyển", UnitPercent},
		func(f FeeStructure) float64 { return f.ShippingFeePercent },
		func(f *FeeStructure, v float64) { f.ShippingFeePercent = v }},
	{Field{"fixedFeePercent", "Phí cố định", UnitPercent},
		func(f FeeStructure) float64 { return f.FixedFeePercent },
		func(f *FeeStructure, v float64) { f.FixedFeePercent = v }},
	{Field{"pishipServiceFee", "Dịch vụ Piship", UnitMoney},
		func(f FeeStructure) float64 { return f.PishipServiceFee },
		func(f *FeeStructure, v float64) { f.PishipServiceFee = v }},
	{Field{"infrastructureFee", "Phí hạ tầng", UnitMoney},
		func(f FeeStructure) float64 { return f.InfrastructureFee },
		func(f *FeeStructure, v float64) { f.InfrastructureFee = v }},
	{Field{"voucherExtraPercent", "Voucher Extra", UnitPercent},
		func(f FeeStructure) float64 { return f.VoucherExtraPercent },
		func(f *FeeStructure, v float64) { f.VoucherExtraPercent = v }},
	{Field{"paymentFeePercent", "Phí thanh toán", UnitPercent},
		func(f FeeStructure) float64 { return f.PaymentFeePercent },
		func(f *FeeStructure, v float64) { f.PaymentFeePercent = v }},
	{Field{"taxPercent", "Thuế TNCN", UnitPercent},
		func(f FeeStructure) float64 { return f.TaxPercent },
		func(f *FeeStructure, v float64) { f.TaxPercent = v }},
	{Field{"shopMallPercent", "Shop Mall", UnitPercent},
		func(f FeeStructure) float64 { return f.ShopMallPercent },
		func(f *FeeStructure, v float64) { f.ShopMallPercent = v }},
	{Field{"tiktokTransactionFeePercent", "Phí giao dịch", UnitPercent},
		func(f FeeStructure) float64 { return f.TikTokTransactionFeePercent },
		func(f *FeeStructure, v float64) { f.TikTokTransactionFeePercent = v }},
	{Field{"tiktokOrderProcessingFee", "Phí xử lý đơn", UnitMoney},
		func(f FeeStructure) float64 { return f.TikTokOrderProcessingFee },
		func(f *FeeStructure, v float64) { f.TikTokOrderProcessingFee = v }},
}

// Fee fields shown for each platform, in form order.
var platformFeeKeys = map[Platform][]string{
	PlatformShopee: {
		"shippingFeePercent", "fixedFeePercent", "pishipServiceFee", "infrastructureFee",
		"voucherExtraPercent", "paymentFeePercent", "taxPercent", "shopMallPercent",
	},
	PlatformTikTok: {
		"shippingFeePercent", "tiktokTransactionFeePercent", "voucherExtraPercent",
		"shopMallPercent", "tiktokOrderProcessingFee",
	},
}

func ProductFields() []Field {
	out := make([]Field, len(productFields))
	for i, f := range productFields {
		out[i] = f.Field
	}
	return out
}

// FeeFields lists the fee fields a platform actually uses.
func FeeFields(p Platform) []Field {
	keys := platformFeeKeys[p]
	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		if f, ok := lookupFeeField(k); ok {
			out = append(out, f.Field)
		}
	}
	return out
}

// LookupField finds a product or fee field by key.
func LookupField(key string) (Field, bool) {
	if f, ok := lookupProductField(key); ok {
		return f.Field, true
	}
	if f, ok := lookupFeeField(key); ok {
		return f.Field, true
	}
	return Field{}, false
}

// IsProductField reports whether key names a ProductData field.
func IsProductField(key string) bool {
	_, ok := lookupProductField(key)
	return ok
}

func lookupProductField(key string) (productField, bool) {
	for _, f := range productFields {
		if f.Key == key {
			return f, true
		}
	}
	return productField{}, false
}

func lookupFeeField(key string) (feeField, bool) {
	for _, f := range feeFields {
		if f.Key == key {
			return f, true
		}
	}
	return feeField{}, false
}

// WithField returns a copy of p with the field set to v. Quantity is rounded
// to the nearest whole unit.
func (p ProductData) WithField(key string, v float64) (ProductData, error) {
	f, ok := lookupProductField(key)
	if !ok {
		return p, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	f.set(&p, v)
	return p, nil
}

// Value returns the current value of a product field.
func (p ProductData) Value(key string) (float64, bool) {
	f, ok := lookupProductField(key)
	if !ok {
		return 0, false
	}
	return f.get(p), true
}

// WithField returns a copy of f with the field set to v.
func (f FeeStructure) WithField(key string, v float64) (FeeStructure, error) {
	ff, ok := lookupFeeField(key)
	if !ok {
		return f, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	ff.set(&f, v)
	return f, nil
}

func (f FeeStructure) Value(key string) (float64, bool) {
	ff, ok := lookupFeeField(key)
	if !ok {
		return 0, false
	}
	return ff.get(f), true
}

// Validate rejects values the input surfaces should never pass to the engine.
func (p ProductData) Validate() error {
	if p.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	for _, f := range productFields {
		if err := checkAmount(f.Key, f.get(p)); err != nil {
			return err
		}
	}
	return nil
}

func (f FeeStructure) Validate() error {
	for _, ff := range feeFields {
		if err := checkAmount(ff.Key, ff.get(f)); err != nil {
			return err
		}
	}
	return nil
}

func checkAmount(key string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not a number", ErrInvalidInput, key)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, key)
	}
	return nil
}
