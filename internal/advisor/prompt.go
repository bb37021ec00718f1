package advisor

import (
	"fmt"
	"strings"

	"ecom-auditor/internal/profit"
	"ecom-auditor/pkg/money"
)

const promptTemplate = `Dưới đây là dữ liệu kinh doanh của một sản phẩm trên sàn %s:

Thông tin sản phẩm:
- Giá bán: %s VNĐ
- Giá vốn: %s VNĐ
- Chi phí Marketing: %s VNĐ
- Lợi nhuận ròng: %s VNĐ
- Tỷ suất lợi nhuận: %s
- ROI: %s
- Tổng phí sàn (Thanh toán + Hoa hồng + Dịch vụ): %s VNĐ

Hãy đóng vai một chuyên gia tư vấn tài chính E-commerce giàu kinh nghiệm. Hãy phân tích các con số này và đưa ra 3-4 lời khuyên cụ thể (ngắn gọn, súc tích bằng tiếng Việt) để tối ưu hóa lợi nhuận cho nhà bán hàng này. Tập trung vào việc giảm chi phí nào là quan trọng nhất hoặc liệu giá bán có đang quá thấp hay không. Trình bày dưới dạng Markdown.`

// BuildPrompt renders the advisory request for one calculated product.
func BuildPrompt(platform profit.Platform, product profit.ProductData, result profit.CalculationResult) string {
	return fmt.Sprintf(promptTemplate,
		strings.ToUpper(string(platform)),
		money.Amount(product.SellingPrice),
		money.Amount(product.CapitalCost),
		money.Amount(result.TotalMarketingCosts),
		money.Amount(result.NetProfit),
		money.Percent(result.ProfitMargin, 2),
		money.Percent(result.ROI, 2),
		money.Amount(result.TotalPlatformFees),
	)
}
