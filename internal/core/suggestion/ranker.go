package suggestion

import (
	"context"
	"sort"

	"meal-planner/internal/core/eligibility"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	favoriteBonus        = 20
	eligibleBonus        = 10
	missingRecommendCost = 2
	maxPartialMissing    = 2
	defaultWorkers       = 8
)

// FavoriteFunc 查詢餐點是否為使用者最愛
type FavoriteFunc func(ctx context.Context, mealID string) (bool, error)

// Options 排序選項
type Options struct {
	ExcludeIDs    []string
	StrictMode    bool
	FavoriteBoost bool
	IsFavorite    FavoriteFunc // nil 表示沒有最愛資料
}

// Suggestion 排序後的推薦餐點
type Suggestion struct {
	Meal             common.Meal        `json:"meal"`
	Eligibility      eligibility.Result `json:"eligibility"`
	IsFavorite       bool               `json:"is_favorite"`
	WeightScore      int                `json:"weight_score"`
	SuggestionReason string             `json:"suggestion_reason"`
}

// Result 排序結果
type Result struct {
	Suggestions    []Suggestion `json:"suggestions"`
	PartialMatches []Suggestion `json:"partial_matches"`
}

// Ranker 推薦排序器，以有上限的 worker 併發評估候選餐點
type Ranker struct {
	evaluator *eligibility.Evaluator
	workers   int
}

// NewRanker 創建排序器
func NewRanker(evaluator *eligibility.Evaluator, workers int) *Ranker {
	if evaluator == nil {
		evaluator = eligibility.NewEvaluator(nil)
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Ranker{evaluator: evaluator, workers: workers}
}

// WeightScore 計算排序權重
func WeightScore(res eligibility.Result, isFavorite, favoriteBoost bool) int {
	score := res.AvailabilityScore
	if favoriteBoost && isFavorite {
		score += favoriteBonus
	}
	if res.MissingMandatoryCount == 0 {
		score += eligibleBonus
	}
	return score - res.MissingRecommendedCount*missingRecommendCost
}

// Rank 評估所有候選餐點並依 weight_score 由高到低穩定排序。
// 每次評估前檢查 ctx；結果順序與併發無關。
func (r *Ranker) Rank(ctx context.Context, candidates []common.Meal, pantry common.Pantry, opts Options) (*Result, error) {
	excluded := make(map[string]struct{}, len(opts.ExcludeIDs))
	for _, id := range opts.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	pool := make([]common.Meal, 0, len(candidates))
	for _, meal := range candidates {
		if _, skip := excluded[meal.ID]; skip {
			continue
		}
		pool = append(pool, meal)
	}

	scored := make([]*Suggestion, len(pool))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range pool {
		if err := gctx.Err(); err != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := r.score(gctx, pool[i], pantry, opts)
			if err != nil {
				return err
			}
			scored[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Suggestions:    []Suggestion{},
		PartialMatches: []Suggestion{},
	}
	for _, s := range scored {
		if s == nil {
			continue
		}
		missing := s.Eligibility.MissingMandatoryCount
		if opts.StrictMode && missing > 0 {
			continue
		}
		result.Suggestions = append(result.Suggestions, *s)
		if !opts.StrictMode && missing >= 1 && missing <= maxPartialMissing {
			result.PartialMatches = append(result.PartialMatches, *s)
		}
	}

	sort.SliceStable(result.Suggestions, func(i, j int) bool {
		return result.Suggestions[i].WeightScore > result.Suggestions[j].WeightScore
	})
	sort.SliceStable(result.PartialMatches, func(i, j int) bool {
		a, b := result.PartialMatches[i].Eligibility, result.PartialMatches[j].Eligibility
		if a.MissingMandatoryCount != b.MissingMandatoryCount {
			return a.MissingMandatoryCount < b.MissingMandatoryCount
		}
		return a.AvailabilityScore > b.AvailabilityScore
	})

	return result, nil
}

// score 評估單一餐點；沒有食材的餐點略過並記錄警告
func (r *Ranker) score(ctx context.Context, meal common.Meal, pantry common.Pantry, opts Options) (*Suggestion, error) {
	if len(meal.Ingredients) == 0 {
		common.LogDataQuality(string(common.WarnMealWithoutContent), zap.String("meal_id", meal.ID))
		return nil, nil
	}

	res, err := r.evaluator.Evaluate(meal.Ingredients, pantry)
	if err != nil {
		return nil, err
	}

	isFavorite := false
	if opts.IsFavorite != nil {
		isFavorite, err = opts.IsFavorite(ctx, meal.ID)
		if err != nil {
			return nil, err
		}
	}

	return &Suggestion{
		Meal:             meal,
		Eligibility:      res,
		IsFavorite:       isFavorite,
		WeightScore:      WeightScore(res, isFavorite, opts.FavoriteBoost),
		SuggestionReason: Reason(res, isFavorite),
	}, nil
}
