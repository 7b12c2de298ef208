package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// 快取鍵前綴
const (
	PrefixSuggestions  = "suggestions"
	PrefixPantryFilter = "pantry-filter"
)

// UserPrefix 回傳某使用者在指定前綴下的鍵前綴
func UserPrefix(prefix, userID string) string {
	return prefix + ":" + userID + ":"
}

// Key 以查詢選項的 JSON 雜湊組成快取鍵
func Key(prefix, userID string, opts interface{}) (string, error) {
	data, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return UserPrefix(prefix, userID) + hex.EncodeToString(sum[:]), nil
}
