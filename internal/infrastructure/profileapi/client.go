// Package profileapi 從遠端食材目錄服務取得食材營養資料。
package profileapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// maxBatch 單次請求最多查詢的食材數
const maxBatch = 100

// Client 食材營養資料服務
type Client struct {
	client *resty.Client
}

// profilesResponse 服務回應
type profilesResponse struct {
	Ingredients []common.IngredientProfile `json:"ingredients"`
}

// NewClient 創建食材營養資料服務
func NewClient(cfg *config.ProfileAPIConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("X-API-Key", cfg.APIKey)
	}

	return &Client{client: client}
}

// GetProfiles 批次取得食材營養資料，找不到的 ID 不會出現在結果中
func (c *Client) GetProfiles(ctx context.Context, ids []string) (map[string]common.IngredientProfile, error) {
	out := make(map[string]common.IngredientProfile, len(ids))
	for start := 0; start < len(ids); start += maxBatch {
		end := start + maxBatch
		if end > len(ids) {
			end = len(ids)
		}
		if err := c.fetch(ctx, ids[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// fetch 查詢一批食材並寫入 out
func (c *Client) fetch(ctx context.Context, ids []string, out map[string]common.IngredientProfile) error {
	var result profilesResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("ids", strings.Join(ids, ",")).
		SetResult(&result).
		Get("/ingredients")
	if err != nil {
		return fmt.Errorf("failed to send request to profile service: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("profile service returned %d: %s", resp.StatusCode(), resp.String())
	}

	for _, p := range result.Ingredients {
		out[p.ID] = p
	}
	common.LogDebug("已取得食材營養資料",
		zap.Int("requested", len(ids)),
		zap.Int("received", len(result.Ingredients)),
		zap.Duration("latency", resp.Time()),
	)
	return nil
}
