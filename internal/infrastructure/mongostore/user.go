package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meal-planner/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// pantryDoc 使用者食材庫文件
type pantryDoc struct {
	UserID        string    `bson:"_id"`
	IngredientIDs []string  `bson:"ingredient_ids"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

// GetPantry 取得使用者食材庫；沒有資料時回傳空集合
func (s *Store) GetPantry(ctx context.Context, userID string) (common.Pantry, error) {
	var doc pantryDoc
	err := s.pantries.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return common.NewPantry(), nil
		}
		return nil, fmt.Errorf("failed to get pantry: %w", err)
	}
	return common.NewPantry(doc.IngredientIDs...), nil
}

// ReplacePantry 以新清單取代食材庫
func (s *Store) ReplacePantry(ctx context.Context, userID string, ingredientIDs []string) error {
	if ingredientIDs == nil {
		ingredientIDs = []string{}
	}
	_, err := s.pantries.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"ingredient_ids": ingredientIDs, "updated_at": s.now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to replace pantry: %w", err)
	}
	return nil
}

// AddToPantry 加入食材，重複的 ID 會被忽略
func (s *Store) AddToPantry(ctx context.Context, userID string, ingredientIDs []string) error {
	_, err := s.pantries.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$addToSet": bson.M{"ingredient_ids": bson.M{"$each": ingredientIDs}},
			"$set":      bson.M{"updated_at": s.now()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to add to pantry: %w", err)
	}
	return nil
}

// RemoveFromPantry 移除食材
func (s *Store) RemoveFromPantry(ctx context.Context, userID string, ingredientIDs []string) error {
	_, err := s.pantries.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"ingredient_ids": bson.M{"$in": ingredientIDs}},
			"$set":  bson.M{"updated_at": s.now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove from pantry: %w", err)
	}
	return nil
}

// IsFavorite 餐點是否為使用者最愛
func (s *Store) IsFavorite(ctx context.Context, userID, mealID string) (bool, error) {
	n, err := s.favorites.CountDocuments(ctx,
		bson.M{"user_id": userID, "meal_id": mealID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return n > 0, nil
}

// AddFavorite 加入最愛
func (s *Store) AddFavorite(ctx context.Context, userID, mealID string) error {
	_, err := s.favorites.UpdateOne(ctx,
		bson.M{"user_id": userID, "meal_id": mealID},
		bson.M{"$setOnInsert": bson.M{"created_at": s.now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite 移除最愛
func (s *Store) RemoveFavorite(ctx context.Context, userID, mealID string) error {
	if _, err := s.favorites.DeleteOne(ctx, bson.M{"user_id": userID, "meal_id": mealID}); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// RecentMealIDs 回傳最近 days 天（含今天）排入行程的餐點
func (s *Store) RecentMealIDs(ctx context.Context, userID string, days int) ([]string, error) {
	if days <= 0 {
		return nil, nil
	}
	values, err := s.schedules.Distinct(ctx, "meal_id", recentQuery(userID, s.now(), days))
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// recentQuery 排程查詢條件：[windowStart, 明天午夜)，未來的排程不算近期
func recentQuery(userID string, now time.Time, days int) bson.M {
	return bson.M{
		"user_id": userID,
		"date": bson.M{
			"$gte": windowStart(now, days),
			"$lt":  windowStart(now, 0),
		},
	}
}

// windowStart 回傳 days 天視窗的起點（當地時間午夜）；days 為 0 時即明天午夜
func windowStart(now time.Time, days int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))
}
