package profit

// ProductData is one seller-entered product/order record.
// Money fields are per unit unless noted, percent fields are whole percents.
type ProductData struct {
	Name                string  `json:"name"`
	Quantity            int     `json:"quantity"`
	SellingPrice        float64 `json:"sellingPrice"`
	CapitalCost         float64 `json:"capitalCost"`
	ShippingFeeInternal float64 `json:"shippingFeeInternal"` // warehouse -> carrier
	PackagingCost       float64 `json:"packagingCost"`

	// Operating costs, percent of realized revenue
	WarehousingPercent float64 `json:"warehousingPercent"`
	UtilitiesPercent   float64 `json:"utilitiesPercent"`
	StaffPercent       float64 `json:"staffPercent"`

	MarketingCostFixed  float64 `json:"marketingCostFixed"` // flat ads budget
	AffiliatePercent    float64 `json:"affiliatePercent"`
	AdCommissionPercent float64 `json:"adCommissionPercent"`
	VoucherShop         float64 `json:"voucherShop"`     // seller-absorbed, flat
	VoucherPlatform     float64 `json:"voucherPlatform"` // platform-absorbed, informational

	OtherCosts float64 `json:"otherCosts"`
}

// FeeStructure is one platform's fee schedule. It carries the fields of both
// platforms; a policy ignores the ones it does not use.
type FeeStructure struct {
	// Shopee
	ShippingFeePercent  float64 `json:"shippingFeePercent"`
	FixedFeePercent     float64 `json:"fixedFeePercent"`
	PishipServiceFee    float64 `json:"pishipServiceFee"`  // flat per unit
	InfrastructureFee   float64 `json:"infrastructureFee"` // flat per unit
	VoucherExtraPercent float64 `json:"voucherExtraPercent"`
	PaymentFeePercent   float64 `json:"paymentFeePercent"`
	TaxPercent          float64 `json:"taxPercent"`
	ShopMallPercent     float64 `json:"shopMallPercent"`

	// TikTok
	TikTokTransactionFeePercent float64 `json:"tiktokTransactionFeePercent"`
	TikTokOrderProcessingFee    float64 `json:"tiktokOrderProcessingFee"` // flat per unit
}

// CalculationResult is derived from ProductData and FeeStructure and is never
// mutated, only replaced.
type CalculationResult struct {
	TotalRevenue        float64 `json:"totalRevenue"`
	RealRevenue         float64 `json:"realRevenue"`
	TotalCapital        float64 `json:"totalCapital"`
	TotalPlatformFees   float64 `json:"totalPlatformFees"`
	TotalOperatingCosts float64 `json:"totalOperatingCosts"`
	TotalMarketingCosts float64 `json:"totalMarketingCosts"`
	NetProfit           float64 `json:"netProfit"`
	ProfitMargin        float64 `json:"profitMargin"`
	ROI                 float64 `json:"roi"`
	BreakevenPrice      float64 `json:"breakevenPrice"`
	IsWarning           bool    `json:"isWarning"`
}

var defaultFees = map[Platform]FeeStructure{
	PlatformShopee: {
		ShippingFeePercent:  0,
		FixedFeePercent:     5.0,
		PishipServiceFee:    1620,
		InfrastructureFee:   3000,
		VoucherExtraPercent: 4.0,
		PaymentFeePercent:   4.0,
		TaxPercent:          1.5,
		ShopMallPercent:     0,
	},
	PlatformTikTok: {
		ShippingFeePercent:          0,
		VoucherExtraPercent:         4.0,
		ShopMallPercent:             0,
		TikTokTransactionFeePercent: 5.0,
		TikTokOrderProcessingFee:    3000,
	},
}

// DefaultFees returns the default fee schedule for a platform. Unknown
// platforms get an empty schedule.
func DefaultFees(p Platform) FeeStructure {
	return defaultFees[p]
}

// DefaultProduct returns the sample product the calculator starts with.
func DefaultProduct() ProductData {
	return ProductData{
		Quantity:            1,
		SellingPrice:        500000,
		CapitalCost:         200000,
		ShippingFeeInternal: 5000,
		PackagingCost:       3000,
		WarehousingPercent:  2,
		UtilitiesPercent:    1,
		StaffPercent:        5,
		MarketingCostFixed:  30000,
		AffiliatePercent:    10,
		AdCommissionPercent: 2,
		VoucherShop:         20000,
		VoucherPlatform:     50000,
		OtherCosts:          0,
	}
}
