package bot

const (
	callbackPlatform = "platform:"
	callbackEdit     = "edit:"
	callbackCompare  = "compare:"
	callbackCancel   = "cancel"

	// fieldName is the pseudo field for the free-text product name.
	fieldName = "name"

	adviceAction = "advice"
)

// Reply keyboard buttons; pressing one sends its text as a message.
const (
	buttonResult  = "📊 Kết quả"
	buttonEdit    = "✏️ Sửa sản phẩm"
	buttonFees    = "🏷 Biểu phí"
	buttonCompare = "⚖️ So sánh"
	buttonChart   = "🥧 Biểu đồ"
	buttonAdvice  = "🤖 Tư vấn AI"
	buttonReport  = "📄 Xuất Excel"
	buttonSwitch  = "🔁 Đổi sàn"
)

const helpText = `🧮 <b>Máy tính lợi nhuận Shopee / TikTok Shop</b>

/platform - chọn sàn
/edit - sửa thông tin sản phẩm
/fees - sửa biểu phí của sàn
/result - xem kết quả
/compare - bật/tắt so sánh hai sàn
/chart - cấu trúc dòng tiền
/report - xuất báo cáo Excel
/advice - nhận tư vấn từ AI
/reset - khôi phục mặc định
/cancel - huỷ nhập liệu`

const adminHelpText = `
<b>Quản trị</b>
/setfee &lt;sàn&gt; &lt;trường&gt; &lt;giá trị&gt; - đặt phí mặc định
/resetfees &lt;sàn&gt; - xoá phí đã đặt
/overrides &lt;sàn&gt; - xem phí đã đặt`
