package nutrition

import (
	"net/http"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/meal"
	coreNutrition "meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContributionRequest 單一食材營養貢獻請求
type ContributionRequest struct {
	Profile        common.IngredientProfile `json:"profile"`
	Quantity       float64                  `json:"quantity"`
	Unit           string                   `json:"unit"`
	IngredientName string                   `json:"ingredient_name,omitempty"`
}

// TotalsRequest 整份餐點營養彙總請求
type TotalsRequest struct {
	Items    []ContributionRequest `json:"items" binding:"required,min=1"`
	Servings int                   `json:"servings"`
}

// TotalsResponse 營養彙總回應
type TotalsResponse struct {
	coreNutrition.MealNutrition
	DailyValues map[string]int `json:"daily_values"`
}

// DailyValuesRequest 每日建議量百分比請求
type DailyValuesRequest struct {
	PerServing coreNutrition.Values `json:"per_serving"`
}

// Handler 營養相關 API
type Handler struct {
	engine *meal.Engine
}

// NewHandler 創建營養處理器
func NewHandler(engine *meal.Engine) *Handler {
	return &Handler{engine: engine}
}

// HandleContribution 處理 /nutrition/contribution
func (h *Handler) HandleContribution(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req ContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBadRequest(c, requestID, err)
		return
	}

	contrib, err := h.engine.ComputeContribution(req.Profile, req.Quantity, req.Unit, req.IngredientName)
	if err != nil {
		handlers.RespondError(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, contrib)
}

// HandleTotals 處理 /nutrition/totals
func (h *Handler) HandleTotals(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req TotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBadRequest(c, requestID, err)
		return
	}

	contributions := make([]coreNutrition.Contribution, 0, len(req.Items))
	for _, item := range req.Items {
		contrib, err := h.engine.ComputeContribution(item.Profile, item.Quantity, item.Unit, item.IngredientName)
		if err != nil {
			handlers.RespondError(c, requestID, err)
			return
		}
		contributions = append(contributions, contrib)
	}

	totals, err := h.engine.ComputeMealTotals(contributions, req.Servings)
	if err != nil {
		handlers.RespondError(c, requestID, err)
		return
	}

	common.LogDebug("營養彙總完成",
		zap.String("request_id", requestID),
		zap.Int("items", len(contributions)),
		zap.Float64("calories", totals.Total.Calories),
	)
	c.JSON(http.StatusOK, TotalsResponse{
		MealNutrition: totals,
		DailyValues:   h.engine.ComputeDailyValuePercentages(totals.PerServing),
	})
}

// HandleDailyValues 處理 /nutrition/daily-values
func (h *Handler) HandleDailyValues(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req DailyValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBadRequest(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"daily_values": h.engine.ComputeDailyValuePercentages(req.PerServing)})
}

// HandleMealNutrition 處理 /meals/:mealId/nutrition
func (h *Handler) HandleMealNutrition(c *gin.Context) {
	requestID := handlers.RequestID(c)

	servings, err := handlers.QueryInt(c, "servings", 0)
	if err != nil {
		handlers.RespondError(c, requestID, err)
		return
	}

	report, err := h.engine.ComputeMealNutrition(c.Request.Context(), c.Param("mealId"), servings)
	if err != nil {
		handlers.RespondError(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
