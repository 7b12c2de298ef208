package suggestion

import (
	"fmt"

	"meal-planner/internal/core/eligibility"
)

// Reason 依評估結果產生推薦說明，只用於顯示
func Reason(res eligibility.Result, isFavorite bool) string {
	var reason string
	switch {
	case res.MissingMandatoryCount == 0 && res.MissingRecommendedCount == 0:
		reason = "all required ingredients available"
	case res.MissingMandatoryCount == 0:
		reason = fmt.Sprintf("all required ingredients available, missing %s",
			plural(res.MissingRecommendedCount, "recommended ingredient"))
	default:
		reason = "missing " + plural(res.MissingMandatoryCount, "required ingredient")
	}
	if isFavorite {
		return "one of your favorites: " + reason
	}
	return reason
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
