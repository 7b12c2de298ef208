package meal

import (
	"context"

	"meal-planner/internal/core/eligibility"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/suggestion"
	"meal-planner/internal/pkg/common"
)

// CatalogFilter 餐點目錄查詢條件
type CatalogFilter struct {
	MealType   string   `json:"meal_type,omitempty"`
	Cuisines   []string `json:"cuisines,omitempty"`
	ExcludeIDs []string `json:"exclude_ids,omitempty"`
}

// CatalogLookup 餐點目錄
type CatalogLookup interface {
	// ListCandidates 回傳符合條件的餐點（含食材連結）
	ListCandidates(ctx context.Context, filter CatalogFilter) ([]common.Meal, error)
	// GetMeal 找不到時回傳 common.ErrMealNotFound
	GetMeal(ctx context.Context, mealID string) (*common.Meal, error)
}

// PantryLookup 使用者食材庫
type PantryLookup interface {
	GetPantry(ctx context.Context, userID string) (common.Pantry, error)
}

// FavoritesLookup 使用者最愛
type FavoritesLookup interface {
	IsFavorite(ctx context.Context, userID, mealID string) (bool, error)
}

// RecentActivityLookup 使用者近期排程
type RecentActivityLookup interface {
	// RecentMealIDs 回傳最近 days 天（含今天）排入行程的餐點
	RecentMealIDs(ctx context.Context, userID string, days int) ([]string, error)
}

// ProfileLookup 食材營養資料；找不到的 ID 不會出現在結果中
type ProfileLookup interface {
	GetProfiles(ctx context.Context, ids []string) (map[string]common.IngredientProfile, error)
}

// Collaborators 引擎依賴的外部資料來源
type Collaborators struct {
	Catalog   CatalogLookup
	Pantry    PantryLookup
	Favorites FavoritesLookup
	Recent    RecentActivityLookup
	Profiles  ProfileLookup
}

// SuggestOptions 推薦查詢選項
type SuggestOptions struct {
	MealType      string   `json:"meal_type,omitempty"`
	Cuisines      []string `json:"cuisines,omitempty"`
	ExcludeIDs    []string `json:"exclude_ids,omitempty"`
	RecentDays    int      `json:"recent_days,omitempty"` // 0 使用預設值，負數停用近期排除
	StrictMode    bool     `json:"strict_mode,omitempty"`
	FavoriteBoost *bool    `json:"favorite_boost,omitempty"`
	Page          int      `json:"page,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

// SuggestionPage 分頁後的推薦結果
type SuggestionPage struct {
	Suggestions    []suggestion.Suggestion `json:"suggestions"`
	PartialMatches []suggestion.Suggestion `json:"partial_matches"`
	Pagination     suggestion.Page         `json:"pagination"`
}

// CookablePage 可製作餐點的分頁結果
type CookablePage struct {
	Meals      []suggestion.Suggestion `json:"meals"`
	Pagination suggestion.Page         `json:"pagination"`
}

// NutritionReport 單一餐點的營養報告
type NutritionReport struct {
	MealID string `json:"meal_id"`
	nutrition.MealNutrition
	DailyValues map[string]int   `json:"daily_values"`
	Warnings    []common.Warning `json:"warnings,omitempty"`
}

// UserEligibility 使用者對單一餐點的可製作性
type UserEligibility struct {
	MealID string `json:"meal_id"`
	eligibility.Result
}
