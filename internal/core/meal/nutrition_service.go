package meal

import (
	"context"
	"fmt"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// ComputeMealNutrition 取得餐點與食材營養資料後計算總量、每份數值與每日建議量百分比。
// servings 為 0 時使用餐點本身的份數。缺少營養資料的食材以零計並回報警告；
// 資料來源錯誤一律向上傳遞，不會回傳 0 大卡。
func (e *Engine) ComputeMealNutrition(ctx context.Context, mealID string, servings int) (*NutritionReport, error) {
	if mealID == "" {
		return nil, common.NewValidationError("meal id is required")
	}

	meal, err := e.deps.Catalog.GetMeal(ctx, mealID)
	if err != nil {
		return nil, collaboratorError("catalog", err)
	}
	if len(meal.Ingredients) == 0 {
		return nil, common.NewValidationErrorf("meal %s has no ingredients", mealID)
	}
	if servings == 0 {
		servings = meal.Servings
	}
	if servings <= 0 {
		return nil, common.NewValidationErrorf("servings must be at least 1, got %d", servings)
	}

	profiles, err := e.deps.Profiles.GetProfiles(ctx, ingredientIDs(meal.Ingredients))
	if err != nil {
		return nil, collaboratorError("profiles", err)
	}

	// 每個請求各自收集警告，同時轉送到引擎的 sink
	collector := common.NewCollector(e.sink)
	calc := nutrition.NewCalculator(nutrition.NewNormalizer(e.overrides, collector))

	contributions := make([]nutrition.Contribution, 0, len(meal.Ingredients))
	for _, link := range meal.Ingredients {
		profile, ok := profiles[link.IngredientID]
		if !ok {
			collector.Warn(common.Warning{Kind: common.WarnMissingProfile, Ingredient: link.IngredientID})
			profile = common.IngredientProfile{ID: link.IngredientID, Name: link.Name}
		}
		contrib, err := calc.Contribution(profile, link.Quantity, link.Unit, link.Name)
		if err != nil {
			return nil, fmt.Errorf("ingredient %s: %w", link.IngredientID, err)
		}
		contrib.IngredientID = link.IngredientID
		contributions = append(contributions, contrib)
	}

	totals, err := calc.MealTotals(contributions, servings)
	if err != nil {
		return nil, err
	}

	report := &NutritionReport{
		MealID:        mealID,
		MealNutrition: totals,
		DailyValues:   nutrition.DailyValues(totals.PerServing, e.references, collector),
		Warnings:      collector.Warnings(),
	}

	common.LogDebug("餐點營養計算完成",
		zap.String("meal_id", mealID),
		zap.Int("servings", servings),
		zap.Float64("calories", totals.Total.Calories),
		zap.Int("warnings", len(report.Warnings)),
	)
	return report, nil
}

// EvaluateMealForUser 以使用者目前的食材庫判斷單一餐點
func (e *Engine) EvaluateMealForUser(ctx context.Context, userID, mealID string) (*UserEligibility, error) {
	if userID == "" || mealID == "" {
		return nil, common.NewValidationError("user id and meal id are required")
	}

	meal, err := e.deps.Catalog.GetMeal(ctx, mealID)
	if err != nil {
		return nil, collaboratorError("catalog", err)
	}
	pantry, err := e.deps.Pantry.GetPantry(ctx, userID)
	if err != nil {
		return nil, collaboratorError("pantry", err)
	}

	res, err := e.evaluator.Evaluate(meal.Ingredients, pantry)
	if err != nil {
		return nil, err
	}
	return &UserEligibility{MealID: mealID, Result: res}, nil
}

// ingredientIDs 去除重複的食材 ID，保留順序
func ingredientIDs(links []common.MealIngredientLink) []string {
	seen := make(map[string]struct{}, len(links))
	ids := make([]string, 0, len(links))
	for _, link := range links {
		if _, ok := seen[link.IngredientID]; ok {
			continue
		}
		seen[link.IngredientID] = struct{}{}
		ids = append(ids, link.IngredientID)
	}
	return ids
}
