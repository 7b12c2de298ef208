package nutrition

import (
	"math"

	"meal-planner/internal/pkg/common"
)

// ReferenceTable 營養素 → 每日參考攝取量
type ReferenceTable map[string]float64

// 巨量營養素鍵
const (
	KeyCalories = "calories"
	KeyProtein  = "protein"
	KeyCarbs    = "carbs"
	KeyFat      = "fat"
)

// DefaultReferences 成人每日參考值（2000 大卡飲食）。礦物質單位為 mg，維生素依慣例為 mg 或 µg。
var DefaultReferences = ReferenceTable{
	KeyCalories: 2000,
	KeyProtein:  50,
	KeyCarbs:    300,
	KeyFat:      65,

	"fiber":       28,
	"sugar":       50,
	"cholesterol": 300,
	"sodium":      2300,
	"potassium":   4700,
	"calcium":     1300,
	"iron":        18,
	"magnesium":   420,
	"phosphorus":  1250,
	"zinc":        11,
	"vitamin_a":   900,
	"vitamin_c":   90,
	"vitamin_d":   20,
	"vitamin_e":   15,
	"vitamin_k":   120,
	"vitamin_b6":  1.7,
	"vitamin_b12": 2.4,
	"folate":      400,
}

// DailyValues 計算每份數值佔每日參考值的百分比（四捨五入為整數）。
// 參考表沒有的營養素不會出現在結果中，並發出警告。
func DailyValues(perServing Values, table ReferenceTable, sink common.WarningSink) map[string]int {
	if table == nil {
		table = DefaultReferences
	}
	sink = common.SinkOrDefault(sink)

	out := make(map[string]int, 4+len(perServing.Minerals))
	put := func(key string, value float64) bool {
		ref, ok := table[key]
		if !ok || ref <= 0 {
			return false
		}
		out[key] = int(math.Round(value / ref * 100))
		return true
	}

	put(KeyCalories, perServing.Calories)
	put(KeyProtein, perServing.Protein)
	put(KeyCarbs, perServing.Carbs)
	put(KeyFat, perServing.Fat)

	for _, key := range perServing.MineralKeys() {
		if !put(key, perServing.Minerals[key]) {
			sink.Warn(common.Warning{Kind: common.WarnUnknownNutrient, Value: key})
		}
	}
	return out
}
