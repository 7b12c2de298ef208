package nutrition

import (
	"sort"

	"meal-planner/internal/pkg/common"
)

// Values 營養素數值
type Values struct {
	Calories float64            `json:"calories"`
	Protein  float64            `json:"protein"`
	Carbs    float64            `json:"carbs"`
	Fat      float64            `json:"fat"`
	Minerals map[string]float64 `json:"minerals,omitempty"`
}

// Contribution 單一食材在指定數量下的營養貢獻
type Contribution struct {
	IngredientID string     `json:"ingredient_id"`
	Name         string     `json:"name,omitempty"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit"`
	Conversion   Conversion `json:"conversion"`
	Values
	CalorieShare float64 `json:"calorie_share"` // 佔整份餐點熱量的百分比，由 MealTotals 填入
}

// MealNutrition 整份餐點的營養彙總
type MealNutrition struct {
	Servings   int            `json:"servings"`
	Total      Values         `json:"total"`
	PerServing Values         `json:"per_serving"`
	Breakdown  []Contribution `json:"breakdown"`
}

// Calculator 營養計算器，無狀態，可併發使用
type Calculator struct {
	normalizer *Normalizer
}

// NewCalculator 創建營養計算器
func NewCalculator(normalizer *Normalizer) *Calculator {
	if normalizer == nil {
		normalizer = NewNormalizer(nil, nil)
	}
	return &Calculator{normalizer: normalizer}
}

// Normalizer 回傳使用中的單位換算器
func (c *Calculator) Normalizer() *Normalizer {
	return c.normalizer
}

// Contribution 依每 100 公克營養資料計算食材貢獻
func (c *Calculator) Contribution(profile common.IngredientProfile, quantity float64, unit, ingredientName string) (Contribution, error) {
	if ingredientName == "" {
		ingredientName = profile.Name
	}
	conv, err := c.normalizer.ToGrams(quantity, unit, ingredientName)
	if err != nil {
		return Contribution{}, err
	}

	factor := conv.Grams / 100
	contrib := Contribution{
		IngredientID: profile.ID,
		Name:         ingredientName,
		Quantity:     quantity,
		Unit:         unit,
		Conversion:   conv,
		Values: Values{
			Calories: common.Round2(profile.Calories * factor),
			Protein:  common.Round2(profile.Protein * factor),
			Carbs:    common.Round2(profile.Carbs * factor),
			Fat:      common.Round2(profile.Fat * factor),
		},
	}
	if len(profile.Minerals) > 0 {
		contrib.Minerals = make(map[string]float64, len(profile.Minerals))
		for key, amount := range profile.Minerals {
			contrib.Minerals[key] = common.Round2(amount * factor)
		}
	}
	return contrib, nil
}

// MealTotals 彙總多個食材貢獻並計算每份數值與熱量占比。輸入不會被修改。
func (c *Calculator) MealTotals(contributions []Contribution, servings int) (MealNutrition, error) {
	return MealTotals(contributions, servings)
}

// MealTotals 彙總多個食材貢獻
func MealTotals(contributions []Contribution, servings int) (MealNutrition, error) {
	if servings <= 0 {
		return MealNutrition{}, common.NewValidationErrorf("servings must be at least 1, got %d", servings)
	}

	var total Values
	minerals := make(map[string]float64)
	for _, contrib := range contributions {
		total.Calories += contrib.Calories
		total.Protein += contrib.Protein
		total.Carbs += contrib.Carbs
		total.Fat += contrib.Fat
		for key, amount := range contrib.Minerals {
			minerals[key] += amount
		}
	}
	total = roundValues(total, minerals)

	breakdown := make([]Contribution, len(contributions))
	for i, contrib := range contributions {
		contrib.Minerals = copyMinerals(contrib.Minerals)
		if total.Calories > 0 {
			contrib.CalorieShare = common.Round2(contrib.Calories / total.Calories * 100)
		} else {
			contrib.CalorieShare = 0
		}
		breakdown[i] = contrib
	}

	per := float64(servings)
	perMinerals := make(map[string]float64, len(total.Minerals))
	for key, amount := range total.Minerals {
		perMinerals[key] = amount / per
	}
	perServing := roundValues(Values{
		Calories: total.Calories / per,
		Protein:  total.Protein / per,
		Carbs:    total.Carbs / per,
		Fat:      total.Fat / per,
	}, perMinerals)

	return MealNutrition{
		Servings:   servings,
		Total:      total,
		PerServing: perServing,
		Breakdown:  breakdown,
	}, nil
}

func roundValues(v Values, minerals map[string]float64) Values {
	out := Values{
		Calories: common.Round2(v.Calories),
		Protein:  common.Round2(v.Protein),
		Carbs:    common.Round2(v.Carbs),
		Fat:      common.Round2(v.Fat),
	}
	if len(minerals) > 0 {
		out.Minerals = make(map[string]float64, len(minerals))
		for key, amount := range minerals {
			out.Minerals[key] = common.Round2(amount)
		}
	}
	return out
}

func copyMinerals(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MineralKeys 回傳排序後的礦物質鍵
func (v Values) MineralKeys() []string {
	keys := make([]string, 0, len(v.Minerals))
	for k := range v.Minerals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
