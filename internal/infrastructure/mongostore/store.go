// Package mongostore 以 MongoDB 實作餐點目錄、食材庫、最愛、排程與食材營養資料的查詢與寫入。
package mongostore

import (
	"context"
	"fmt"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// 集合名稱
const (
	CollectionMeals       = "meals"
	CollectionIngredients = "ingredients"
	CollectionPantries    = "pantries"
	CollectionFavorites   = "favorites"
	CollectionSchedules   = "schedules"
)

// Store MongoDB 資料存取
type Store struct {
	client      *mongo.Client
	meals       *mongo.Collection
	ingredients *mongo.Collection
	pantries    *mongo.Collection
	favorites   *mongo.Collection
	schedules   *mongo.Collection
	now         func() time.Time
}

// Connect 連線並確認 MongoDB 可用
func Connect(ctx context.Context, cfg *config.MongoConfig) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	common.LogInfo("MongoDB 已連線", zap.String("database", cfg.Database))
	return New(client, cfg.Database), nil
}

// New 以既有的 client 建立 Store
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:      client,
		meals:       db.Collection(CollectionMeals),
		ingredients: db.Collection(CollectionIngredients),
		pantries:    db.Collection(CollectionPantries),
		favorites:   db.Collection(CollectionFavorites),
		schedules:   db.Collection(CollectionSchedules),
		now:         time.Now,
	}
}

// EnsureIndexes 建立查詢所需索引
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.meals, mongo.IndexModel{Keys: bson.D{{Key: "meal_type", Value: 1}, {Key: "cuisine", Value: 1}}}},
		{s.favorites, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "meal_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.schedules, mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// Ping 檢查連線
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close 關閉連線
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
