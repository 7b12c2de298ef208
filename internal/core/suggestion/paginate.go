package suggestion

// Page 分頁資訊
type Page struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// Paginate 切出第 page 頁（從 1 開始）；參數不合法時回到第一頁
func Paginate[T any](items []T, page, limit int) ([]T, Page) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total := len(items)
	// 先比較頁數再相乘，超大頁碼不會溢位
	start := total
	if pages := (total + limit - 1) / limit; page-1 < pages {
		start = (page - 1) * limit
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, Page{Page: page, Limit: limit, Total: total, HasMore: end < total}
}
