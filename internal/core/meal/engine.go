// Package meal 組合營養計算、可製作性判斷與推薦排序，並負責呼叫外部資料來源與結果快取。
package meal

import (
	"context"
	"errors"
	"time"

	"meal-planner/internal/core/cache"
	"meal-planner/internal/core/eligibility"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/suggestion"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

// Settings 引擎行為設定
type Settings struct {
	Workers          int
	RecentWindowDays int
	DefaultPageSize  int
	MaxPageSize      int
	FavoriteBoost    bool
	SurpriseCount    int
	CacheTTL         time.Duration
}

// DefaultSettings 預設設定
func DefaultSettings() Settings {
	return Settings{
		Workers:          8,
		RecentWindowDays: 1,
		DefaultPageSize:  10,
		MaxPageSize:      50,
		FavoriteBoost:    true,
		SurpriseCount:    3,
		CacheTTL:         5 * time.Minute,
	}
}

// SettingsFromConfig 由設定檔建立引擎設定
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Workers:          cfg.Engine.Workers,
		RecentWindowDays: cfg.Engine.RecentWindowDays,
		DefaultPageSize:  cfg.Engine.DefaultPageSize,
		MaxPageSize:      cfg.Engine.MaxPageSize,
		FavoriteBoost:    cfg.Engine.FavoriteBoost,
		SurpriseCount:    cfg.Engine.SurpriseCount,
		CacheTTL:         cfg.Cache.TTL,
	}
}

// Option 引擎選項
type Option func(*Engine)

// WithCache 啟用結果快取
func WithCache(store cache.Store) Option {
	return func(e *Engine) { e.cache = store }
}

// WithRandomSource 指定抽樣亂數來源
func WithRandomSource(src suggestion.RandomSource) Option {
	return func(e *Engine) { e.random = src }
}

// WithWarningSink 指定資料品質警告的接收端
func WithWarningSink(sink common.WarningSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithReferences 指定每日建議攝取量表
func WithReferences(table nutrition.ReferenceTable) Option {
	return func(e *Engine) { e.references = table }
}

// WithOverrides 指定食材單位換算表
func WithOverrides(overrides nutrition.OverrideTable) Option {
	return func(e *Engine) { e.overrides = overrides }
}

// Engine 餐點引擎。不持有請求之間共享的可變狀態，可併發使用。
type Engine struct {
	deps       Collaborators
	settings   Settings
	overrides  nutrition.OverrideTable
	references nutrition.ReferenceTable
	sink       common.WarningSink
	random     suggestion.RandomSource
	cache      cache.Store

	calculator *nutrition.Calculator
	evaluator  *eligibility.Evaluator
	ranker     *suggestion.Ranker
}

// NewEngine 創建餐點引擎
func NewEngine(deps Collaborators, settings Settings, opts ...Option) *Engine {
	e := &Engine{
		deps:       deps,
		settings:   settings,
		overrides:  nutrition.DefaultOverrides,
		references: nutrition.DefaultReferences,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sink = common.SinkOrDefault(e.sink)
	if e.random == nil {
		e.random = suggestion.NewRandomSource()
	}
	if e.settings.DefaultPageSize <= 0 {
		e.settings.DefaultPageSize = DefaultSettings().DefaultPageSize
	}
	if e.settings.MaxPageSize < e.settings.DefaultPageSize {
		e.settings.MaxPageSize = e.settings.DefaultPageSize
	}
	if e.settings.SurpriseCount <= 0 {
		e.settings.SurpriseCount = DefaultSettings().SurpriseCount
	}

	e.calculator = nutrition.NewCalculator(nutrition.NewNormalizer(e.overrides, e.sink))
	e.evaluator = eligibility.NewEvaluator(e.sink)
	e.ranker = suggestion.NewRanker(e.evaluator, e.settings.Workers)
	return e
}

// ComputeContribution 計算單一食材的營養貢獻
func (e *Engine) ComputeContribution(profile common.IngredientProfile, quantity float64, unit, ingredientName string) (nutrition.Contribution, error) {
	return e.calculator.Contribution(profile, quantity, unit, ingredientName)
}

// ComputeMealTotals 彙總營養貢獻並計算每份數值
func (e *Engine) ComputeMealTotals(contributions []nutrition.Contribution, servings int) (nutrition.MealNutrition, error) {
	return e.calculator.MealTotals(contributions, servings)
}

// ComputeDailyValuePercentages 計算每份數值佔每日建議量的百分比
func (e *Engine) ComputeDailyValuePercentages(perServing nutrition.Values) map[string]int {
	return nutrition.DailyValues(perServing, e.references, e.sink)
}

// EvaluateEligibility 判斷餐點在指定食材庫下是否可製作
func (e *Engine) EvaluateEligibility(ingredients []common.MealIngredientLink, pantry common.Pantry) (eligibility.Result, error) {
	return e.evaluator.Evaluate(ingredients, pantry)
}

// RankSuggestions 對候選餐點評分排序
func (e *Engine) RankSuggestions(ctx context.Context, candidates []common.Meal, pantry common.Pantry, opts suggestion.Options) (*suggestion.Result, error) {
	return e.ranker.Rank(ctx, candidates, pantry, opts)
}

// SampleRandom 依 weight_score 加權抽出不重複的推薦
func (e *Engine) SampleRandom(items []suggestion.Suggestion, count int) ([]suggestion.Suggestion, error) {
	return suggestion.Sample(items, count, e.random)
}

// collaboratorError 包裝外部來源錯誤；取消、已分類的錯誤原樣回傳
func collaboratorError(source string, err error) error {
	if err == nil {
		return nil
	}
	var ce *common.CustomError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case common.IsCollaboratorError(err), common.IsValidationError(err), errors.As(err, &ce):
		return err
	}
	return common.NewCollaboratorError(source, err)
}
