package meal

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"meal-planner/internal/core/cache"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore 以記憶體實作所有外部查詢
type fakeStore struct {
	mu          sync.Mutex
	meals       []common.Meal
	profiles    map[string]common.IngredientProfile
	pantries    map[string]common.Pantry
	favorites   map[string]bool
	recent      []string
	catalogErr  error
	profileErr  error
	favoriteErr error

	catalogCalls int32
	lastFilter   CatalogFilter
	recentDays   int
}

func (f *fakeStore) ListCandidates(_ context.Context, filter CatalogFilter) ([]common.Meal, error) {
	atomic.AddInt32(&f.catalogCalls, 1)
	f.mu.Lock()
	f.lastFilter = filter
	f.mu.Unlock()
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	out := make([]common.Meal, 0, len(f.meals))
	for _, m := range f.meals {
		if filter.MealType != "" && m.MealType != filter.MealType {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) GetMeal(_ context.Context, mealID string) (*common.Meal, error) {
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	for _, m := range f.meals {
		if m.ID == mealID {
			return &m, nil
		}
	}
	return nil, common.ErrMealNotFound
}

func (f *fakeStore) GetPantry(_ context.Context, userID string) (common.Pantry, error) {
	return f.pantries[userID], nil
}

func (f *fakeStore) IsFavorite(_ context.Context, _ string, mealID string) (bool, error) {
	if f.favoriteErr != nil {
		return false, f.favoriteErr
	}
	return f.favorites[mealID], nil
}

func (f *fakeStore) RecentMealIDs(_ context.Context, _ string, days int) ([]string, error) {
	f.mu.Lock()
	f.recentDays = days
	f.mu.Unlock()
	return f.recent, nil
}

func (f *fakeStore) GetProfiles(_ context.Context, ids []string) (map[string]common.IngredientProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	out := make(map[string]common.IngredientProfile)
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func link(id string, qty float64, unit string, status common.IngredientStatus) common.MealIngredientLink {
	return common.MealIngredientLink{IngredientID: id, Quantity: qty, Unit: unit, Status: status}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		meals: []common.Meal{
			{ID: "rice-bowl", Name: "Rice Bowl", MealType: "lunch", Servings: 2, Ingredients: []common.MealIngredientLink{
				link("rice", 2, "cups", common.StatusMandatory),
				link("chicken", 200, "g", common.StatusMandatory),
			}},
			{ID: "omelette", Name: "Omelette", MealType: "breakfast", Servings: 1, Ingredients: []common.MealIngredientLink{
				link("egg", 2, "piece", common.StatusMandatory),
				link("cheese", 30, "g", common.StatusRecommended),
			}},
			{ID: "fried-rice", Name: "Fried Rice", MealType: "dinner", Servings: 2, Ingredients: []common.MealIngredientLink{
				link("rice", 1, "cup", common.StatusMandatory),
				link("egg", 1, "piece", common.StatusMandatory),
				link("scallion", 1, "tbsp", common.StatusOptional),
			}},
		},
		profiles: map[string]common.IngredientProfile{
			"rice":    {ID: "rice", Name: "Rice", Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3},
			"chicken": {ID: "chicken", Name: "Chicken", Calories: 165, Protein: 31, Fat: 3.6},
		},
		pantries: map[string]common.Pantry{
			"u1": common.NewPantry("rice", "egg", "chicken"),
		},
		favorites: map[string]bool{},
	}
}

func newTestEngine(store *fakeStore, opts ...Option) (*Engine, *common.Collector) {
	collector := common.NewCollector(nil)
	deps := Collaborators{Catalog: store, Pantry: store, Favorites: store, Recent: store, Profiles: store}
	opts = append([]Option{WithWarningSink(collector)}, opts...)
	return NewEngine(deps, DefaultSettings(), opts...), collector
}

func mealIDs(page *SuggestionPage) []string {
	ids := make([]string, len(page.Suggestions))
	for i, s := range page.Suggestions {
		ids[i] = s.Meal.ID
	}
	return ids
}

func TestComputeMealNutrition(t *testing.T) {
	engine, _ := newTestEngine(newFakeStore())

	report, err := engine.ComputeMealNutrition(context.Background(), "rice-bowl", 0)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Servings)
	assert.Equal(t, 954.0, report.Total.Calories)
	assert.Equal(t, 477.0, report.PerServing.Calories)
	require.Len(t, report.Breakdown, 2)
	assert.Equal(t, 65.41, report.Breakdown[0].CalorieShare)
	assert.Equal(t, 24, report.DailyValues["calories"])
	assert.Empty(t, report.Warnings)
}

func TestComputeMealNutritionMissingProfileIsZero(t *testing.T) {
	engine, collector := newTestEngine(newFakeStore())

	report, err := engine.ComputeMealNutrition(context.Background(), "fried-rice", 1)
	require.NoError(t, err)

	// rice 1 cup = 240g -> 312 kcal, egg and scallion have no profile
	assert.Equal(t, 312.0, report.Total.Calories)
	require.Len(t, report.Warnings, 2)
	assert.Equal(t, common.WarnMissingProfile, report.Warnings[0].Kind)
	assert.Equal(t, "egg", report.Warnings[0].Ingredient)
	assert.Len(t, collector.Warnings(), 2)
}

func TestComputeMealNutritionPropagatesFetchFailure(t *testing.T) {
	store := newFakeStore()
	store.profileErr = errors.New("connection refused")
	engine, _ := newTestEngine(store)

	report, err := engine.ComputeMealNutrition(context.Background(), "rice-bowl", 2)
	assert.Nil(t, report)
	assert.True(t, common.IsCollaboratorError(err))
}

func TestComputeMealNutritionErrors(t *testing.T) {
	engine, _ := newTestEngine(newFakeStore())
	ctx := context.Background()

	_, err := engine.ComputeMealNutrition(ctx, "missing", 1)
	assert.ErrorIs(t, err, common.ErrMealNotFound)

	_, err = engine.ComputeMealNutrition(ctx, "rice-bowl", -1)
	assert.True(t, common.IsValidationError(err))

	_, err = engine.ComputeMealNutrition(ctx, "", 1)
	assert.True(t, common.IsValidationError(err))
}

func TestEvaluateMealForUser(t *testing.T) {
	engine, _ := newTestEngine(newFakeStore())

	res, err := engine.EvaluateMealForUser(context.Background(), "u1", "omelette")
	require.NoError(t, err)
	assert.True(t, res.IsEligible)
	assert.Equal(t, 1, res.MissingRecommendedCount)
	assert.Equal(t, 80, res.AvailabilityScore)
}

func TestSuggestRanksAndExcludesRecentMeals(t *testing.T) {
	store := newFakeStore()
	store.recent = []string{"rice-bowl"}
	engine, _ := newTestEngine(store)

	page, err := engine.Suggest(context.Background(), "u1", SuggestOptions{})
	require.NoError(t, err)

	// fried-rice 90+10 (optional scallion missing), omelette 80+10-2
	assert.Equal(t, []string{"fried-rice", "omelette"}, mealIDs(page))
	assert.Equal(t, 100, page.Suggestions[0].WeightScore)
	assert.Equal(t, 88, page.Suggestions[1].WeightScore)
	assert.Equal(t, 1, store.recentDays)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.False(t, page.Pagination.HasMore)
}

func TestSuggestDisablesRecencyWithNegativeWindow(t *testing.T) {
	store := newFakeStore()
	store.recent = []string{"rice-bowl"}
	engine, _ := newTestEngine(store)

	page, err := engine.Suggest(context.Background(), "u1", SuggestOptions{RecentDays: -1})
	require.NoError(t, err)
	assert.Len(t, page.Suggestions, 3)
	assert.Equal(t, 0, store.recentDays)
}

func TestSuggestFavoriteBoostAndPartialMatches(t *testing.T) {
	store := newFakeStore()
	store.pantries["u2"] = common.NewPantry("rice", "egg")
	store.favorites["omelette"] = true
	engine, _ := newTestEngine(store)

	page, err := engine.Suggest(context.Background(), "u2", SuggestOptions{RecentDays: -1, Limit: 2})
	require.NoError(t, err)

	// omelette 80+20+10-2, fried-rice 90+10, rice-bowl 65
	assert.Equal(t, []string{"omelette", "fried-rice"}, mealIDs(page))
	assert.Equal(t, 108, page.Suggestions[0].WeightScore)
	assert.True(t, page.Suggestions[0].IsFavorite)
	assert.True(t, page.Pagination.HasMore)
	require.Len(t, page.PartialMatches, 1)
	assert.Equal(t, "rice-bowl", page.PartialMatches[0].Meal.ID)

	boost := false
	page, err = engine.Suggest(context.Background(), "u2", SuggestOptions{RecentDays: -1, FavoriteBoost: &boost})
	require.NoError(t, err)
	assert.Equal(t, []string{"fried-rice", "omelette"}, mealIDs(page))
	assert.Equal(t, 88, page.Suggestions[1].WeightScore)
}

func TestSuggestStrictMode(t *testing.T) {
	store := newFakeStore()
	store.pantries["u2"] = common.NewPantry("egg")
	engine, _ := newTestEngine(store)

	page, err := engine.Suggest(context.Background(), "u2", SuggestOptions{RecentDays: -1, StrictMode: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"omelette"}, mealIDs(page))
	assert.Empty(t, page.PartialMatches)
}

func TestSuggestCollaboratorFailure(t *testing.T) {
	store := newFakeStore()
	store.catalogErr = errors.New("timeout")
	engine, _ := newTestEngine(store)

	_, err := engine.Suggest(context.Background(), "u1", SuggestOptions{})
	assert.ErrorIs(t, err, common.ErrCollaboratorUnavailable)

	store.catalogErr = nil
	store.favoriteErr = errors.New("timeout")
	_, err = engine.Suggest(context.Background(), "u1", SuggestOptions{})
	assert.ErrorIs(t, err, common.ErrCollaboratorUnavailable)
}

func newMemoryCache(t *testing.T) *cache.CacheManager {
	t.Helper()
	m := cache.NewManager(&config.CacheConfig{Enabled: true, MaxSize: 100, TTL: time.Minute})
	t.Cleanup(func() { m.Close() })
	return m
}

func TestSuggestUsesCacheUntilInvalidated(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(store, WithCache(newMemoryCache(t)))
	ctx := context.Background()

	first, err := engine.Suggest(ctx, "u1", SuggestOptions{Cuisines: []string{"thai", "italian"}})
	require.NoError(t, err)
	second, err := engine.Suggest(ctx, "u1", SuggestOptions{Cuisines: []string{"italian", "thai", "thai"}})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&store.catalogCalls))
	assert.Equal(t, mealIDs(first), mealIDs(second))
	assert.Equal(t, []string{"italian", "thai"}, store.lastFilter.Cuisines)

	require.NoError(t, engine.InvalidateUser(ctx, "u1"))
	_, err = engine.Suggest(ctx, "u1", SuggestOptions{Cuisines: []string{"thai", "italian"}})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&store.catalogCalls))
}

func TestSurprise(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(store)

	picks, err := engine.Surprise(context.Background(), "u1", SuggestOptions{RecentDays: -1}, 2)
	require.NoError(t, err)
	require.Len(t, picks, 2)
	assert.NotEqual(t, picks[0].Meal.ID, picks[1].Meal.ID)

	picks, err = engine.Surprise(context.Background(), "u1", SuggestOptions{RecentDays: -1}, 0)
	require.NoError(t, err)
	assert.Len(t, picks, 3)

	_, err = engine.Surprise(context.Background(), "u1", SuggestOptions{}, -1)
	assert.True(t, common.IsValidationError(err))
}

func TestSurpriseWithoutCandidates(t *testing.T) {
	store := newFakeStore()
	store.meals = nil
	engine, _ := newTestEngine(store)

	_, err := engine.Surprise(context.Background(), "u1", SuggestOptions{}, 1)
	assert.ErrorIs(t, err, common.ErrNoCandidates)
}

func TestFilterCookable(t *testing.T) {
	store := newFakeStore()
	store.pantries["u2"] = common.NewPantry("rice", "egg", "cheese")
	engine, _ := newTestEngine(store, WithCache(newMemoryCache(t)))
	ctx := context.Background()

	page, err := engine.FilterCookable(ctx, "u2", CatalogFilter{}, 1, 10)
	require.NoError(t, err)

	require.Len(t, page.Meals, 2)
	// omelette 100, fried-rice 90 (scallion optional missing)
	assert.Equal(t, "omelette", page.Meals[0].Meal.ID)
	assert.Equal(t, "fried-rice", page.Meals[1].Meal.ID)
	assert.Equal(t, 90, page.Meals[1].Eligibility.AvailabilityScore)

	_, err = engine.FilterCookable(ctx, "u2", CatalogFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.catalogCalls))
}

func TestLibraryOperations(t *testing.T) {
	engine, _ := newTestEngine(newFakeStore())
	rice := common.IngredientProfile{ID: "rice", Name: "Rice", Calories: 130}

	contrib, err := engine.ComputeContribution(rice, 2, "cup", "")
	require.NoError(t, err)
	assert.Equal(t, 624.0, contrib.Calories)

	totals, err := engine.ComputeMealTotals([]nutrition.Contribution{contrib}, 2)
	require.NoError(t, err)
	assert.Equal(t, 312.0, totals.PerServing.Calories)
	assert.Equal(t, 16, engine.ComputeDailyValuePercentages(totals.PerServing)["calories"])

	res, err := engine.EvaluateEligibility([]common.MealIngredientLink{link("rice", 1, "g", common.StatusMandatory)}, common.NewPantry())
	require.NoError(t, err)
	assert.False(t, res.IsEligible)
}
