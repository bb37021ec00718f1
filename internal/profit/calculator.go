package profit

import (
	"fmt"
	"math"
)

// DefaultWarningMarginPercent is the margin below which a result is flagged.
const DefaultWarningMarginPercent = 20.0

// Options holds the business heuristics of the calculator.
type Options struct {
	WarningMarginPercent float64
}

func DefaultOptions() Options {
	return Options{
		WarningMarginPercent: DefaultWarningMarginPercent,
	}
}

type Calculator struct {
	opts Options
}

func NewCalculator(opts Options) Calculator {
	return Calculator{opts: opts}
}

// Options returns the heuristics this calculator was built with.
func (c Calculator) Options() Options {
	return c.opts
}

// Calculate computes the result of selling product on platform with fees,
// using the default options.
func Calculate(platform Platform, product ProductData, fees FeeStructure) (CalculationResult, error) {
	return NewCalculator(DefaultOptions()).Calculate(platform, product, fees)
}

// Calculate resolves the platform's fee policy and computes the result. It
// fails with ErrUnknownPlatform, or with ErrInvalidInput when the inputs are
// so large that a figure overflows.
func (c Calculator) Calculate(platform Platform, product ProductData, fees FeeStructure) (CalculationResult, error) {
	policy, err := PolicyFor(platform)
	if err != nil {
		return CalculationResult{}, err
	}
	r := c.CalculateWithPolicy(policy, product, fees)
	if err := r.checkFinite(); err != nil {
		return CalculationResult{}, err
	}
	return r, nil
}

// CalculateWithPolicy maps the inputs to a result. Zero denominators yield 0
// instead of NaN or Inf; overflow is left to the caller, see checkFinite.
func (c Calculator) CalculateWithPolicy(policy FeePolicy, product ProductData, fees FeeStructure) CalculationResult {
	qty := float64(product.Quantity)

	totalRevenue := product.SellingPrice * qty
	// Platform vouchers are absorbed by the marketplace.
	realRevenue := totalRevenue - product.VoucherShop

	platformRatePercent := policy.VariableRatePercent(fees)
	fixedPlatformFees := policy.FlatFeePerUnit(fees) * qty
	platformFees := totalRevenue*platformRatePercent/100 + fixedPlatformFees

	operatingPercent := product.WarehousingPercent + product.UtilitiesPercent + product.StaffPercent
	operatingCosts := realRevenue * operatingPercent / 100

	marketingPercent := product.AffiliatePercent + product.AdCommissionPercent
	marketingCosts := product.MarketingCostFixed + realRevenue*marketingPercent/100

	totalCapital := (product.CapitalCost + product.PackagingCost + product.ShippingFeeInternal + product.OtherCosts) * qty

	netProfit := realRevenue - totalCapital - platformFees - operatingCosts - marketingCosts

	var margin float64
	if realRevenue > 0 {
		margin = netProfit / realRevenue * 100
	}
	var roi float64
	if totalCapital > 0 {
		roi = netProfit / totalCapital * 100
	}

	deductionRate := (platformRatePercent + operatingPercent + marketingPercent) / 100
	breakeven := breakevenPrice(
		totalCapital+product.MarketingCostFixed+fixedPlatformFees,
		product.VoucherShop,
		deductionRate,
		qty,
	)

	return CalculationResult{
		TotalRevenue:        totalRevenue,
		RealRevenue:         realRevenue,
		TotalCapital:        totalCapital,
		TotalPlatformFees:   platformFees,
		TotalOperatingCosts: operatingCosts,
		TotalMarketingCosts: marketingCosts,
		NetProfit:           netProfit,
		ProfitMargin:        margin,
		ROI:                 roi,
		BreakevenPrice:      breakeven,
		IsWarning:           margin < c.opts.WarningMarginPercent,
	}
}

// breakevenPrice solves P*qty*(1-rate) - voucher*(1-rate) = fixed for P, with
// every percent deduction linearized against gross revenue. It is a planning
// estimate, not the exact inverse of CalculateWithPolicy.
func breakevenPrice(fixed, voucherShop, deductionRate, qty float64) float64 {
	keep := 1 - deductionRate
	if keep <= 0 || qty <= 0 {
		return 0
	}
	return (fixed + voucherShop*keep) / (qty * keep)
}

// checkFinite rejects a result carrying NaN or Inf. Finite inputs near the
// float64 limit overflow once multiplied by quantity or a rate.
func (r CalculationResult) checkFinite() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"totalRevenue", r.TotalRevenue},
		{"realRevenue", r.RealRevenue},
		{"totalCapital", r.TotalCapital},
		{"totalPlatformFees", r.TotalPlatformFees},
		{"totalOperatingCosts", r.TotalOperatingCosts},
		{"totalMarketingCosts", r.TotalMarketingCosts},
		{"netProfit", r.NetProfit},
		{"profitMargin", r.ProfitMargin},
		{"roi", r.ROI},
		{"breakevenPrice", r.BreakevenPrice},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s overflows, inputs are too large", ErrInvalidInput, f.name)
		}
	}
	return nil
}
