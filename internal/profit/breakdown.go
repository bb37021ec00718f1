package profit

type Category string

const (
	CategoryCapital   Category = "capital"
	CategoryPlatform  Category = "platform"
	CategoryOperating Category = "operating"
	CategoryMarketing Category = "marketing"
	CategoryProfit    Category = "profit"
)

// Slice is one category of the cash-flow chart.
type Slice struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Color    string   `json:"color"`
	Value    float64  `json:"value"`
	Share    float64  `json:"share"` // 0..1 of the slice total
}

// Breakdown splits a result into the five chart categories. Net profit is
// floored at zero so a loss does not produce a negative slice.
func Breakdown(r CalculationResult) []Slice {
	slices := []Slice{
		{Category: CategoryCapital, Label: "Giá vốn", Color: "#6366f1", Value: r.TotalCapital},
		{Category: CategoryPlatform, Label: "Phí sàn", Color: "#f59e0b", Value: r.TotalPlatformFees},
		{Category: CategoryOperating, Label: "Vận hành", Color: "#94a3b8", Value: r.TotalOperatingCosts},
		{Category: CategoryMarketing, Label: "Marketing", Color: "#ec4899", Value: r.TotalMarketingCosts},
		{Category: CategoryProfit, Label: "Lợi nhuận", Color: "#10b981", Value: max(0, r.NetProfit)},
	}

	var total float64
	for _, s := range slices {
		total += s.Value
	}
	if total > 0 {
		for i := range slices {
			slices[i].Share = slices[i].Value / total
		}
	}
	return slices
}

// TotalCosts is everything deducted from realized revenue.
func TotalCosts(r CalculationResult) float64 {
	return r.TotalCapital + r.TotalPlatformFees + r.TotalOperatingCosts + r.TotalMarketingCosts
}
