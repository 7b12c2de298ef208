package meal

import (
	"context"
	"encoding/json"
	"errors"

	"meal-planner/internal/core/cache"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// getFromCache 從緩存獲取數據；快取失敗只記錄日誌
func (e *Engine) getFromCache(ctx context.Context, key string, dst interface{}) bool {
	if e.cache == nil {
		return false
	}
	data, err := e.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			common.LogWarn("讀取快取失敗", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		common.LogWarn("快取內容無法解析", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// setToCache 將數據存入緩存
func (e *Engine) setToCache(ctx context.Context, key string, value interface{}) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		common.LogWarn("快取內容無法編碼", zap.String("key", key), zap.Error(err))
		return
	}
	if err := e.cache.Set(ctx, key, data, e.settings.CacheTTL); err != nil {
		common.LogWarn("寫入快取失敗", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateUser 清除使用者所有快取的推薦與可製作清單，食材庫或最愛變更時呼叫
func (e *Engine) InvalidateUser(ctx context.Context, userID string) error {
	if e.cache == nil {
		return nil
	}
	total := 0
	for _, prefix := range []string{cache.PrefixSuggestions, cache.PrefixPantryFilter} {
		n, err := e.cache.DeletePrefix(ctx, cache.UserPrefix(prefix, userID))
		if err != nil {
			return collaboratorError("cache", err)
		}
		total += n
	}
	common.LogDebug("已清除使用者快取", zap.String("user_id", userID), zap.Int("count", total))
	return nil
}
