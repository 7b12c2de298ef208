package eligibility

import (
	"testing"

	"meal-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func link(id string, status common.IngredientStatus) common.MealIngredientLink {
	return common.MealIngredientLink{IngredientID: id, Name: "name-" + id, Quantity: 1, Unit: "piece", Status: status}
}

func TestEvaluateMissingOneMandatory(t *testing.T) {
	e := NewEvaluator(common.NewCollector(nil))
	meal := []common.MealIngredientLink{
		link("a", common.StatusMandatory),
		link("b", common.StatusMandatory),
		link("c", common.StatusRecommended),
	}

	got, err := e.Evaluate(meal, common.NewPantry("a", "c"))
	require.NoError(t, err)

	assert.False(t, got.IsEligible)
	assert.Equal(t, 1, got.MissingMandatoryCount)
	assert.Equal(t, 0, got.MissingRecommendedCount)
	assert.Equal(t, 3, got.TotalIngredients)
	assert.Equal(t, 65, got.AvailabilityScore)
	assert.Equal(t, []MissingIngredient{{IngredientID: "b", Name: "name-b"}}, got.MissingMandatory)
	assert.Empty(t, got.MissingRecommended)
}

func TestEvaluateEligibleDespiteOptionalShortfall(t *testing.T) {
	e := NewEvaluator(common.NewCollector(nil))
	meal := []common.MealIngredientLink{
		link("a", common.StatusMandatory),
		link("r1", common.StatusRecommended),
		link("r2", common.StatusRecommended),
		link("o1", common.StatusOptional),
	}

	got, err := e.Evaluate(meal, common.NewPantry("a"))
	require.NoError(t, err)

	assert.True(t, got.IsEligible)
	assert.Equal(t, 2, got.MissingRecommendedCount)
	assert.Equal(t, 1, got.MissingOptionalCount)
	// 0.7*100 + 0.2*0 + 0.1*0
	assert.Equal(t, 70, got.AvailabilityScore)
	assert.Len(t, got.MissingRecommended, 2)
}

func TestEvaluateEmptyGroupsScoreFull(t *testing.T) {
	e := NewEvaluator(common.NewCollector(nil))
	got, err := e.Evaluate([]common.MealIngredientLink{link("a", common.StatusMandatory)}, common.NewPantry("a"))
	require.NoError(t, err)
	assert.Equal(t, 100, got.AvailabilityScore)
	assert.True(t, got.IsEligible)
}

func TestEvaluateScoreMonotoneInMissingMandatory(t *testing.T) {
	e := NewEvaluator(common.NewCollector(nil))
	meal := []common.MealIngredientLink{
		link("m1", common.StatusMandatory),
		link("m2", common.StatusMandatory),
		link("m3", common.StatusMandatory),
		link("m4", common.StatusMandatory),
		link("r1", common.StatusRecommended),
		link("o1", common.StatusOptional),
	}
	owned := []string{"m1", "m2", "m3", "m4", "r1"}

	prev := 101
	for missing := 0; missing <= 4; missing++ {
		got, err := e.Evaluate(meal, common.NewPantry(owned[missing:]...))
		require.NoError(t, err)
		assert.Equal(t, missing, got.MissingMandatoryCount)
		assert.LessOrEqual(t, got.AvailabilityScore, prev)
		assert.Equal(t, missing == 0, got.IsEligible)
		prev = got.AvailabilityScore
	}
}

func TestEvaluateUnknownStatusCountsAsOptional(t *testing.T) {
	collector := common.NewCollector(nil)
	e := NewEvaluator(collector)
	meal := []common.MealIngredientLink{
		link("a", common.StatusMandatory),
		link("x", common.IngredientStatus("essential-ish")),
	}

	got, err := e.Evaluate(meal, common.NewPantry("a"))
	require.NoError(t, err)

	assert.True(t, got.IsEligible)
	assert.Equal(t, 1, got.MissingOptionalCount)
	assert.Equal(t, 90, got.AvailabilityScore)

	warnings := collector.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, common.WarnUnknownStatus, warnings[0].Kind)
}

func TestEvaluateStatusIsCaseInsensitive(t *testing.T) {
	e := NewEvaluator(common.NewCollector(nil))
	got, err := e.Evaluate([]common.MealIngredientLink{link("a", "MANDATORY")}, common.NewPantry())
	require.NoError(t, err)
	assert.Equal(t, 1, got.MissingMandatoryCount)
	assert.Equal(t, 30, got.AvailabilityScore)
}

func TestEvaluateRejectsEmptyMeal(t *testing.T) {
	e := NewEvaluator(common.NewCollector(nil))
	_, err := e.Evaluate(nil, common.NewPantry("a"))
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
}
