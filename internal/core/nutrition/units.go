package nutrition

import (
	"strings"

	"meal-planner/internal/pkg/common"
)

// ConversionSource 換算係數來源
type ConversionSource int

const (
	// SourceOverride 食材專屬換算表
	SourceOverride ConversionSource = iota
	// SourceGeneral 通用單位換算表
	SourceGeneral
	// SourceFallback 無法辨識的單位，數量直接視為公克
	SourceFallback
)

func (s ConversionSource) String() string {
	switch s {
	case SourceOverride:
		return "override"
	case SourceGeneral:
		return "general"
	default:
		return "fallback"
	}
}

// MarshalText 讓 JSON 輸出來源名稱
func (s ConversionSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 解析來源名稱
func (s *ConversionSource) UnmarshalText(b []byte) error {
	switch string(b) {
	case "override":
		*s = SourceOverride
	case "general":
		*s = SourceGeneral
	case "fallback":
		*s = SourceFallback
	default:
		return common.NewValidationErrorf("unknown conversion source %q", string(b))
	}
	return nil
}

// Conversion 單位換算結果
type Conversion struct {
	Grams  float64          `json:"grams"`
	Unit   string           `json:"unit"` // 正規化後的單位
	Source ConversionSource `json:"source"`
}

// UnitTable 單位 → 公克
type UnitTable map[string]float64

// OverrideTable 食材鍵 → 單位 → 公克
type OverrideTable map[string]UnitTable

// Lookup 查詢食材專屬換算係數
func (t OverrideTable) Lookup(ingredientKey, unit string) (float64, bool) {
	units, ok := t[ingredientKey]
	if !ok {
		return 0, false
	}
	factor, ok := units[unit]
	return factor, ok
}

// GeneralUnits 通用換算表。體積單位以水的密度近似。
var GeneralUnits = UnitTable{
	// 重量
	"g":  1,
	"mg": 0.001,
	"kg": 1000,
	"oz": 28.35,
	"lb": 453.59,
	// 體積
	"cup":  240,
	"tbsp": 15,
	"tsp":  5,
	"l":    1000,
	"ml":   1,
	// 計數
	"piece":  100,
	"slice":  30,
	"clove":  5,
	"pinch":  0.5,
	"small":  75,
	"medium": 120,
	"large":  180,
}

// DefaultOverrides 常見食材的專屬換算
var DefaultOverrides = OverrideTable{
	"egg":            {"piece": 50, "small": 40, "medium": 50, "large": 60},
	"garlic":         {"clove": 3, "piece": 40},
	"flour":          {"cup": 125, "tbsp": 8},
	"sugar":          {"cup": 200, "tbsp": 12.5, "tsp": 4.2},
	"butter":         {"cup": 227, "tbsp": 14, "tsp": 4.7},
	"honey":          {"cup": 340, "tbsp": 21, "tsp": 7},
	"olive oil":      {"cup": 216, "tbsp": 13.5, "tsp": 4.5},
	"salt":           {"tbsp": 18, "tsp": 6, "pinch": 0.4},
	"milk":           {"cup": 245},
	"onion":          {"piece": 110, "small": 70, "medium": 110, "large": 150},
	"tomato":         {"piece": 120, "small": 90, "medium": 120, "large": 180},
	"potato":         {"piece": 170, "small": 120, "medium": 170, "large": 300},
	"bread":          {"slice": 25},
	"cheese":         {"slice": 20, "cup": 113},
	"chicken breast": {"piece": 175},
}

// unitAliases 單位別名 → 標準名稱
var unitAliases = buildAliases(map[string][]string{
	"g":     {"gram", "grams", "gr"},
	"mg":    {"milligram", "milligrams"},
	"kg":    {"kilogram", "kilograms", "kilo", "kilos"},
	"oz":    {"ounce", "ounces"},
	"lb":    {"pound", "pounds", "lbs"},
	"cup":   {"cups"},
	"tbsp":  {"tablespoon", "tablespoons", "tbs", "tbsps"},
	"tsp":   {"teaspoon", "teaspoons", "tsps"},
	"l":     {"liter", "liters", "litre", "litres"},
	"ml":    {"milliliter", "milliliters", "millilitre", "millilitres"},
	"piece": {"pieces", "pc", "pcs", "whole", "unit", "units"},
	"slice": {"slices"},
	"clove": {"cloves"},
	"pinch": {"pinches"},
})

func buildAliases(groups map[string][]string) map[string]string {
	aliases := make(map[string]string)
	for canonical, names := range groups {
		for _, name := range names {
			aliases[name] = canonical
		}
	}
	return aliases
}

// NormalizeUnit 小寫、去空白並解析別名
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.TrimSuffix(u, ".")
	if canonical, ok := unitAliases[u]; ok {
		return canonical
	}
	return u
}

// NormalizeIngredientKey 食材名稱小寫並合併空白
func NormalizeIngredientKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Normalizer 將 (數量, 單位, 食材) 換算為公克
type Normalizer struct {
	general   UnitTable
	overrides OverrideTable
	sink      common.WarningSink
}

// NewNormalizer 創建換算器；overrides 為 nil 時使用 DefaultOverrides，sink 為 nil 時寫入日誌
func NewNormalizer(overrides OverrideTable, sink common.WarningSink) *Normalizer {
	if overrides == nil {
		overrides = DefaultOverrides
	}
	return &Normalizer{
		general:   GeneralUnits,
		overrides: overrides,
		sink:      common.SinkOrDefault(sink),
	}
}

// ToGrams 換算為公克。數量必須為正；未知單位不報錯，改以公克計並發出警告。
func (n *Normalizer) ToGrams(quantity float64, unit, ingredientName string) (Conversion, error) {
	if quantity <= 0 {
		return Conversion{}, common.NewValidationErrorf("quantity must be positive, got %v", quantity)
	}

	u := NormalizeUnit(unit)
	if ingredientName != "" {
		if factor, ok := n.overrides.Lookup(NormalizeIngredientKey(ingredientName), u); ok {
			return Conversion{Grams: quantity * factor, Unit: u, Source: SourceOverride}, nil
		}
	}

	if factor, ok := n.general[u]; ok {
		return Conversion{Grams: quantity * factor, Unit: u, Source: SourceGeneral}, nil
	}

	n.sink.Warn(common.Warning{
		Kind:       common.WarnUnknownUnit,
		Ingredient: ingredientName,
		Value:      unit,
	})
	return Conversion{Grams: quantity, Unit: u, Source: SourceFallback}, nil
}
