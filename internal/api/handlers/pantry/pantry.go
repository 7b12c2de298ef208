package pantry

import (
	"context"
	"net/http"
	"sort"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Store 食材庫與最愛的讀寫
type Store interface {
	GetPantry(ctx context.Context, userID string) (common.Pantry, error)
	ReplacePantry(ctx context.Context, userID string, ingredientIDs []string) error
	AddToPantry(ctx context.Context, userID string, ingredientIDs []string) error
	RemoveFromPantry(ctx context.Context, userID string, ingredientIDs []string) error
	AddFavorite(ctx context.Context, userID, mealID string) error
	RemoveFavorite(ctx context.Context, userID, mealID string) error
}

// Invalidator 清除使用者快取
type Invalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

// PantryRequest 食材庫異動請求
type PantryRequest struct {
	IngredientIDs []string `json:"ingredient_ids"`
}

// PantryResponse 食材庫內容
type PantryResponse struct {
	UserID        string   `json:"user_id"`
	IngredientIDs []string `json:"ingredient_ids"`
}

// Handler 食材庫與最愛 API
type Handler struct {
	store Store
	cache Invalidator
}

// NewHandler 創建食材庫處理器
func NewHandler(store Store, cache Invalidator) *Handler {
	return &Handler{store: store, cache: cache}
}

// HandleGetPantry 處理 GET /users/:userId/pantry
func (h *Handler) HandleGetPantry(c *gin.Context) {
	requestID := handlers.RequestID(c)
	userID := c.Param("userId")

	pantry, err := h.store.GetPantry(c.Request.Context(), userID)
	if err != nil {
		handlers.RespondError(c, requestID, common.NewCollaboratorError("pantry", err))
		return
	}
	ids := pantry.IDs()
	sort.Strings(ids)
	c.JSON(http.StatusOK, PantryResponse{UserID: userID, IngredientIDs: ids})
}

// HandleReplacePantry 處理 PUT /users/:userId/pantry
func (h *Handler) HandleReplacePantry(c *gin.Context) {
	h.mutatePantry(c, "replace", h.store.ReplacePantry, false)
}

// HandleAddToPantry 處理 POST /users/:userId/pantry
func (h *Handler) HandleAddToPantry(c *gin.Context) {
	h.mutatePantry(c, "add", h.store.AddToPantry, true)
}

// HandleRemoveFromPantry 處理 DELETE /users/:userId/pantry
func (h *Handler) HandleRemoveFromPantry(c *gin.Context) {
	h.mutatePantry(c, "remove", h.store.RemoveFromPantry, true)
}

// HandleAddFavorite 處理 POST /users/:userId/favorites/:mealId
func (h *Handler) HandleAddFavorite(c *gin.Context) {
	h.mutateFavorite(c, "add", h.store.AddFavorite)
}

// HandleRemoveFavorite 處理 DELETE /users/:userId/favorites/:mealId
func (h *Handler) HandleRemoveFavorite(c *gin.Context) {
	h.mutateFavorite(c, "remove", h.store.RemoveFavorite)
}

func (h *Handler) mutatePantry(c *gin.Context, action string,
	apply func(context.Context, string, []string) error, requireIDs bool) {
	requestID := handlers.RequestID(c)
	userID := c.Param("userId")

	var req PantryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBadRequest(c, requestID, err)
		return
	}
	if requireIDs && len(req.IngredientIDs) == 0 {
		handlers.RespondError(c, requestID, common.NewValidationError("ingredient_ids must not be empty"))
		return
	}

	if err := apply(c.Request.Context(), userID, req.IngredientIDs); err != nil {
		handlers.RespondError(c, requestID, common.NewCollaboratorError("pantry", err))
		return
	}
	h.invalidate(c.Request.Context(), requestID, userID)

	common.LogInfo("食材庫已更新",
		zap.String("request_id", requestID),
		zap.String("user_id", userID),
		zap.String("action", action),
		zap.Int("count", len(req.IngredientIDs)),
	)
	c.Status(http.StatusNoContent)
}

func (h *Handler) mutateFavorite(c *gin.Context, action string, apply func(context.Context, string, string) error) {
	requestID := handlers.RequestID(c)
	userID, mealID := c.Param("userId"), c.Param("mealId")

	if err := apply(c.Request.Context(), userID, mealID); err != nil {
		handlers.RespondError(c, requestID, common.NewCollaboratorError("favorites", err))
		return
	}
	h.invalidate(c.Request.Context(), requestID, userID)

	common.LogInfo("最愛已更新",
		zap.String("request_id", requestID),
		zap.String("user_id", userID),
		zap.String("meal_id", mealID),
		zap.String("action", action),
	)
	c.Status(http.StatusNoContent)
}

// invalidate 快取清除失敗只記錄日誌
func (h *Handler) invalidate(ctx context.Context, requestID, userID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateUser(ctx, userID); err != nil {
		common.LogError("清除使用者快取失敗",
			zap.String("request_id", requestID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
