package planner

import (
	"errors"
	"net/http"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/meal"
	"meal-planner/internal/core/suggestion"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// noSuggestions 推薦無法產生時的統一訊息
const noSuggestions = "no suggestions available"

// EligibilityRequest 直接以食材清單判斷可製作性
type EligibilityRequest struct {
	Ingredients []common.MealIngredientLink `json:"ingredients" binding:"required,min=1"`
	Pantry      []string                    `json:"pantry"`
}

// SurpriseResponse 隨機推薦回應
type SurpriseResponse struct {
	Suggestions []suggestion.Suggestion `json:"suggestions"`
	Message     string                  `json:"message,omitempty"`
}

// Handler 可製作性與推薦 API
type Handler struct {
	engine *meal.Engine
}

// NewHandler 創建推薦處理器
func NewHandler(engine *meal.Engine) *Handler {
	return &Handler{engine: engine}
}

// HandleEvaluate 處理 POST /eligibility
func (h *Handler) HandleEvaluate(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req EligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBadRequest(c, requestID, err)
		return
	}

	res, err := h.engine.EvaluateEligibility(req.Ingredients, common.NewPantry(req.Pantry...))
	if err != nil {
		handlers.RespondError(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleMealEligibility 處理 GET /users/:userId/meals/:mealId/eligibility
func (h *Handler) HandleMealEligibility(c *gin.Context) {
	requestID := handlers.RequestID(c)

	res, err := h.engine.EvaluateMealForUser(c.Request.Context(), c.Param("userId"), c.Param("mealId"))
	if err != nil {
		handlers.RespondError(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleSuggestions 處理 GET /users/:userId/suggestions
func (h *Handler) HandleSuggestions(c *gin.Context) {
	requestID := handlers.RequestID(c)
	userID := c.Param("userId")

	opts, err := parseSuggestOptions(c)
	if err != nil {
		handlers.RespondError(c, requestID, err)
		return
	}

	common.LogInfo("開始處理推薦請求",
		zap.String("request_id", requestID),
		zap.String("user_id", userID),
		zap.String("meal_type", opts.MealType),
		zap.Strings("cuisines", opts.Cuisines),
		zap.Bool("strict", opts.StrictMode),
	)

	page, err := h.engine.Suggest(c.Request.Context(), userID, opts)
	if err != nil {
		respondSuggestionError(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// HandleSurprise 處理 GET /users/:userId/suggestions/surprise
func (h *Handler) HandleSurprise(c *gin.Context) {
	requestID := handlers.RequestID(c)

	opts, err := parseSuggestOptions(c)
	if err != nil {
		handlers.RespondError(c, requestID, err)
		return
	}
	count, err := handlers.QueryInt(c, "count", 0)
	if err != nil {
		handlers.RespondError(c, requestID, err)
		return
	}

	picks, err := h.engine.Surprise(c.Request.Context(), c.Param("userId"), opts, count)
	if errors.Is(err, common.ErrNoCandidates) {
		c.JSON(http.StatusOK, SurpriseResponse{Suggestions: []suggestion.Suggestion{}, Message: noSuggestions})
		return
	}
	if err != nil {
		respondSuggestionError(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, SurpriseResponse{Suggestions: picks})
}

// HandleCookable 處理 GET /users/:userId/cookable
func (h *Handler) HandleCookable(c *gin.Context) {
	requestID := handlers.RequestID(c)

	page, err := handlers.QueryInt(c, "page", 1)
	if err != nil {
		handlers.RespondError(c, requestID, err)
		return
	}
	limit, err := handlers.QueryInt(c, "limit", 0)
	if err != nil {
		handlers.RespondError(c, requestID, err)
		return
	}

	filter := meal.CatalogFilter{
		MealType:   c.Query("meal_type"),
		Cuisines:   handlers.QueryList(c, "cuisine"),
		ExcludeIDs: handlers.QueryList(c, "exclude"),
	}
	result, err := h.engine.FilterCookable(c.Request.Context(), c.Param("userId"), filter, page, limit)
	if err != nil {
		respondSuggestionError(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseSuggestOptions 解析推薦查詢參數
func parseSuggestOptions(c *gin.Context) (meal.SuggestOptions, error) {
	opts := meal.SuggestOptions{
		MealType:   c.Query("meal_type"),
		Cuisines:   handlers.QueryList(c, "cuisine"),
		ExcludeIDs: handlers.QueryList(c, "exclude"),
	}

	var err error
	if opts.RecentDays, err = handlers.QueryInt(c, "recent_days", 0); err != nil {
		return opts, err
	}
	if opts.Page, err = handlers.QueryInt(c, "page", 1); err != nil {
		return opts, err
	}
	if opts.Limit, err = handlers.QueryInt(c, "limit", 0); err != nil {
		return opts, err
	}
	strict, err := handlers.QueryBool(c, "strict")
	if err != nil {
		return opts, err
	}
	opts.StrictMode = strict != nil && *strict
	if opts.FavoriteBoost, err = handlers.QueryBool(c, "favorite_boost"); err != nil {
		return opts, err
	}
	return opts, nil
}

// respondSuggestionError 資料來源失敗時不回傳部分排序，只告知目前沒有推薦
func respondSuggestionError(c *gin.Context, requestID string, err error) {
	if common.IsCollaboratorError(err) {
		handlers.RespondError(c, requestID, common.NewError(
			common.ErrCodeServiceUnavailable, noSuggestions, http.StatusServiceUnavailable, err))
		return
	}
	handlers.RespondError(c, requestID, err)
}
