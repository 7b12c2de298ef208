package mongostore

import (
	"context"
	"errors"
	"fmt"

	"meal-planner/internal/core/meal"
	"meal-planner/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ListCandidates 依餐別、料理類型與排除清單查詢餐點
func (s *Store) ListCandidates(ctx context.Context, filter meal.CatalogFilter) ([]common.Meal, error) {
	cursor, err := s.meals.Find(ctx, catalogQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer cursor.Close(ctx)

	meals := []common.Meal{}
	if err := cursor.All(ctx, &meals); err != nil {
		return nil, fmt.Errorf("failed to decode meals: %w", err)
	}
	return meals, nil
}

// GetMeal 以 ID 取得餐點
func (s *Store) GetMeal(ctx context.Context, mealID string) (*common.Meal, error) {
	var m common.Meal
	err := s.meals.FindOne(ctx, bson.M{"_id": mealID}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrMealNotFound
		}
		return nil, fmt.Errorf("failed to get meal %s: %w", mealID, err)
	}
	return &m, nil
}

// GetProfiles 批次取得食材營養資料，找不到的 ID 不會出現在結果中
func (s *Store) GetProfiles(ctx context.Context, ids []string) (map[string]common.IngredientProfile, error) {
	out := make(map[string]common.IngredientProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := s.ingredients.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p common.IngredientProfile
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode ingredient: %w", err)
		}
		out[p.ID] = p
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredients: %w", err)
	}
	return out, nil
}

// catalogQuery 組出餐點查詢條件
func catalogQuery(filter meal.CatalogFilter) bson.M {
	query := bson.M{}
	if filter.MealType != "" {
		query["meal_type"] = filter.MealType
	}
	if len(filter.Cuisines) > 0 {
		query["cuisine"] = bson.M{"$in": filter.Cuisines}
	}
	if len(filter.ExcludeIDs) > 0 {
		query["_id"] = bson.M{"$nin": filter.ExcludeIDs}
	}
	return query
}

var (
	_ meal.CatalogLookup        = (*Store)(nil)
	_ meal.PantryLookup         = (*Store)(nil)
	_ meal.FavoritesLookup      = (*Store)(nil)
	_ meal.RecentActivityLookup = (*Store)(nil)
	_ meal.ProfileLookup        = (*Store)(nil)
)
