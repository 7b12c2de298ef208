// Package eligibility 判斷使用者能否以現有食材製作餐點。
package eligibility

import (
	"math"

	"meal-planner/internal/pkg/common"
)

// 分組權重
const (
	mandatoryWeight   = 0.7
	recommendedWeight = 0.2
	optionalWeight    = 0.1
)

// MissingIngredient 缺少的食材
type MissingIngredient struct {
	IngredientID string `json:"ingredient_id"`
	Name         string `json:"name,omitempty"`
}

// Result 單一 (餐點, 使用者) 的可製作評估
type Result struct {
	IsEligible              bool                `json:"is_eligible"`
	MissingMandatoryCount   int                 `json:"missing_mandatory_count"`
	MissingRecommendedCount int                 `json:"missing_recommended_count"`
	MissingOptionalCount    int                 `json:"missing_optional_count"`
	TotalIngredients        int                 `json:"total_ingredients"`
	AvailabilityScore       int                 `json:"availability_score"`
	MissingMandatory        []MissingIngredient `json:"missing_mandatory"`
	MissingRecommended      []MissingIngredient `json:"missing_recommended"`
}

type group struct {
	size    int
	missing []MissingIngredient
}

func (g group) score() float64 {
	if g.size == 0 {
		return 100
	}
	return 100 * float64(g.size-len(g.missing)) / float64(g.size)
}

// Evaluator 可製作評估器
type Evaluator struct {
	sink common.WarningSink
}

// NewEvaluator 創建評估器；sink 接收未知狀態等資料品質警告
func NewEvaluator(sink common.WarningSink) *Evaluator {
	return &Evaluator{sink: common.SinkOrDefault(sink)}
}

// Evaluate 以三個分組計算可用度分數；是否可製作只取決於缺少的必要食材數量。
func (e *Evaluator) Evaluate(ingredients []common.MealIngredientLink, pantry common.Pantry) (Result, error) {
	if len(ingredients) == 0 {
		return Result{}, common.NewValidationError("meal has no ingredients")
	}

	var mandatory, recommended, optional group
	for _, link := range ingredients {
		status, ok := common.ParseIngredientStatus(string(link.Status))
		if !ok {
			e.sink.Warn(common.Warning{
				Kind:       common.WarnUnknownStatus,
				Ingredient: link.IngredientID,
				Value:      string(link.Status),
			})
		}

		var g *group
		switch status {
		case common.StatusMandatory:
			g = &mandatory
		case common.StatusRecommended:
			g = &recommended
		default:
			g = &optional
		}

		g.size++
		if !pantry.Has(link.IngredientID) {
			g.missing = append(g.missing, MissingIngredient{IngredientID: link.IngredientID, Name: link.Name})
		}
	}

	score := mandatoryWeight*mandatory.score() +
		recommendedWeight*recommended.score() +
		optionalWeight*optional.score()

	return Result{
		IsEligible:              len(mandatory.missing) == 0,
		MissingMandatoryCount:   len(mandatory.missing),
		MissingRecommendedCount: len(recommended.missing),
		MissingOptionalCount:    len(optional.missing),
		TotalIngredients:        len(ingredients),
		AvailabilityScore:       int(math.Round(score)),
		MissingMandatory:        nonNil(mandatory.missing),
		MissingRecommended:      nonNil(recommended.missing),
	}, nil
}

func nonNil(m []MissingIngredient) []MissingIngredient {
	if m == nil {
		return []MissingIngredient{}
	}
	return m
}
