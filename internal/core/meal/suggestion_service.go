package meal

import (
	"context"
	"sort"
	"strings"

	"meal-planner/internal/core/cache"
	"meal-planner/internal/core/suggestion"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Suggest 回傳使用者的分頁推薦清單與部分符合的餐點
func (e *Engine) Suggest(ctx context.Context, userID string, opts SuggestOptions) (*SuggestionPage, error) {
	if userID == "" {
		return nil, common.NewValidationError("user id is required")
	}
	opts = e.normalizeOptions(opts)

	key, err := cache.Key(cache.PrefixSuggestions, userID, opts)
	if err != nil {
		return nil, err
	}
	var cached SuggestionPage
	if e.getFromCache(ctx, key, &cached) {
		return &cached, nil
	}

	result, err := e.rankForUser(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	items, page := suggestion.Paginate(result.Suggestions, opts.Page, opts.Limit)
	out := &SuggestionPage{
		Suggestions:    items,
		PartialMatches: result.PartialMatches,
		Pagination:     page,
	}
	e.setToCache(ctx, key, out)

	common.LogInfo("推薦產生完成",
		zap.String("user_id", userID),
		zap.Int("total", page.Total),
		zap.Int("partial_matches", len(out.PartialMatches)),
	)
	return out, nil
}

// Surprise 從排序後的推薦池依 weight_score 加權抽樣。結果不快取。
func (e *Engine) Surprise(ctx context.Context, userID string, opts SuggestOptions, count int) ([]suggestion.Suggestion, error) {
	if userID == "" {
		return nil, common.NewValidationError("user id is required")
	}
	if count < 0 {
		return nil, common.NewValidationErrorf("count must not be negative, got %d", count)
	}
	if count == 0 {
		count = e.settings.SurpriseCount
	}
	opts = e.normalizeOptions(opts)

	result, err := e.rankForUser(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	if len(result.Suggestions) == 0 {
		return nil, common.ErrNoCandidates
	}
	return suggestion.Sample(result.Suggestions, count, e.random)
}

// FilterCookable 回傳使用者目前可製作的餐點，依可用度由高到低排序
func (e *Engine) FilterCookable(ctx context.Context, userID string, filter CatalogFilter, page, limit int) (*CookablePage, error) {
	if userID == "" {
		return nil, common.NewValidationError("user id is required")
	}
	filter = CatalogFilter{
		MealType:   strings.TrimSpace(filter.MealType),
		Cuisines:   normalizeSet(filter.Cuisines),
		ExcludeIDs: normalizeSet(filter.ExcludeIDs),
	}
	page, limit = e.clampPage(page, limit)

	key, err := cache.Key(cache.PrefixPantryFilter, userID, struct {
		Filter CatalogFilter `json:"filter"`
		Page   int           `json:"page"`
		Limit  int           `json:"limit"`
	}{filter, page, limit})
	if err != nil {
		return nil, err
	}
	var cached CookablePage
	if e.getFromCache(ctx, key, &cached) {
		return &cached, nil
	}

	var (
		candidates []common.Meal
		pantry     common.Pantry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		candidates, err = e.deps.Catalog.ListCandidates(gctx, filter)
		return collaboratorError("catalog", err)
	})
	g.Go(func() (err error) {
		pantry, err = e.deps.Pantry.GetPantry(gctx, userID)
		return collaboratorError("pantry", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := e.ranker.Rank(ctx, candidates, pantry, suggestion.Options{
		ExcludeIDs: filter.ExcludeIDs,
		StrictMode: true,
	})
	if err != nil {
		return nil, err
	}

	cookable := result.Suggestions
	sort.SliceStable(cookable, func(i, j int) bool {
		return cookable[i].Eligibility.AvailabilityScore > cookable[j].Eligibility.AvailabilityScore
	})

	items, p := suggestion.Paginate(cookable, page, limit)
	out := &CookablePage{Meals: items, Pagination: p}
	e.setToCache(ctx, key, out)
	return out, nil
}

// rankForUser 批次取得目錄、近期排程與食材庫後排序
func (e *Engine) rankForUser(ctx context.Context, userID string, opts SuggestOptions) (*suggestion.Result, error) {
	var (
		candidates []common.Meal
		recent     []string
		pantry     common.Pantry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		candidates, err = e.deps.Catalog.ListCandidates(gctx, CatalogFilter{
			MealType:   opts.MealType,
			Cuisines:   opts.Cuisines,
			ExcludeIDs: opts.ExcludeIDs,
		})
		return collaboratorError("catalog", err)
	})
	if opts.RecentDays > 0 && e.deps.Recent != nil {
		g.Go(func() (err error) {
			recent, err = e.deps.Recent.RecentMealIDs(gctx, userID, opts.RecentDays)
			return collaboratorError("recent_activity", err)
		})
	}
	g.Go(func() (err error) {
		pantry, err = e.deps.Pantry.GetPantry(gctx, userID)
		return collaboratorError("pantry", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	exclude := make([]string, 0, len(opts.ExcludeIDs)+len(recent))
	exclude = append(exclude, opts.ExcludeIDs...)
	exclude = append(exclude, recent...)

	rankOpts := suggestion.Options{
		ExcludeIDs:    exclude,
		StrictMode:    opts.StrictMode,
		FavoriteBoost: opts.FavoriteBoost != nil && *opts.FavoriteBoost,
	}
	if e.deps.Favorites != nil {
		rankOpts.IsFavorite = func(ctx context.Context, mealID string) (bool, error) {
			fav, err := e.deps.Favorites.IsFavorite(ctx, userID, mealID)
			if err != nil {
				return false, collaboratorError("favorites", err)
			}
			return fav, nil
		}
	}

	return e.ranker.Rank(ctx, candidates, pantry, rankOpts)
}

// normalizeOptions 套用預設值並排序集合欄位，讓等價查詢得到相同快取鍵
func (e *Engine) normalizeOptions(opts SuggestOptions) SuggestOptions {
	opts.MealType = strings.TrimSpace(opts.MealType)
	opts.Cuisines = normalizeSet(opts.Cuisines)
	opts.ExcludeIDs = normalizeSet(opts.ExcludeIDs)
	if opts.RecentDays == 0 {
		opts.RecentDays = e.settings.RecentWindowDays
	}
	if opts.RecentDays < 0 {
		opts.RecentDays = -1
	}
	if opts.FavoriteBoost == nil {
		boost := e.settings.FavoriteBoost
		opts.FavoriteBoost = &boost
	}
	opts.Page, opts.Limit = e.clampPage(opts.Page, opts.Limit)
	return opts
}

// clampPage 頁碼從 1 開始，每頁數量限制在設定範圍內
func (e *Engine) clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = e.settings.DefaultPageSize
	}
	if limit > e.settings.MaxPageSize {
		limit = e.settings.MaxPageSize
	}
	return page, limit
}

// normalizeSet 去除空白與重複後排序
func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
