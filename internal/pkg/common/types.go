package common

import (
	"strings"
)

// IngredientProfile 食材營養資料（每 100 公克）
type IngredientProfile struct {
	ID       string             `json:"id" bson:"_id"`
	Name     string             `json:"name" bson:"name"`
	NameAlt  string             `json:"name_alt,omitempty" bson:"name_alt,omitempty"` // 第二語言名稱
	Category string             `json:"category,omitempty" bson:"category,omitempty"`
	Unit     string             `json:"default_unit,omitempty" bson:"default_unit,omitempty"`
	Calories float64            `json:"calories" bson:"calories"`
	Protein  float64            `json:"protein" bson:"protein"`
	Carbs    float64            `json:"carbs" bson:"carbs"`
	Fat      float64            `json:"fat" bson:"fat"`
	Minerals map[string]float64 `json:"minerals,omitempty" bson:"minerals,omitempty"`
}

// IngredientStatus 餐點食材的必要程度
type IngredientStatus string

const (
	StatusMandatory   IngredientStatus = "mandatory"
	StatusRecommended IngredientStatus = "recommended"
	StatusOptional    IngredientStatus = "optional"
)

// ParseIngredientStatus 解析狀態字串。無法辨識時回傳 StatusOptional 且 ok=false，
// 呼叫端可據此記錄資料品質警告。
func ParseIngredientStatus(s string) (status IngredientStatus, ok bool) {
	switch IngredientStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusMandatory:
		return StatusMandatory, true
	case StatusRecommended:
		return StatusRecommended, true
	case StatusOptional:
		return StatusOptional, true
	default:
		return StatusOptional, false
	}
}

// Priority 排序優先度：mandatory > recommended > optional
func (s IngredientStatus) Priority() int {
	switch s {
	case StatusMandatory:
		return 3
	case StatusRecommended:
		return 2
	default:
		return 1
	}
}

// MealIngredientLink 餐點與食材的關聯
type MealIngredientLink struct {
	IngredientID string           `json:"ingredient_id" bson:"ingredient_id"`
	Name         string           `json:"name,omitempty" bson:"name,omitempty"`
	Quantity     float64          `json:"quantity" bson:"quantity"`
	Unit         string           `json:"unit" bson:"unit"`
	Status       IngredientStatus `json:"status" bson:"status"`
}

// Meal 目錄中的餐點
type Meal struct {
	ID          string               `json:"id" bson:"_id"`
	Name        string               `json:"name" bson:"name"`
	MealType    string               `json:"meal_type,omitempty" bson:"meal_type,omitempty"`
	Cuisine     string               `json:"cuisine,omitempty" bson:"cuisine,omitempty"`
	Servings    int                  `json:"servings,omitempty" bson:"servings,omitempty"`
	Ingredients []MealIngredientLink `json:"ingredients" bson:"ingredients"`
}

// Pantry 使用者擁有的食材集合，只記錄有無
type Pantry map[string]struct{}

// NewPantry 由食材 ID 建立 Pantry
func NewPantry(ids ...string) Pantry {
	p := make(Pantry, len(ids))
	for _, id := range ids {
		p[id] = struct{}{}
	}
	return p
}

// Has 是否擁有該食材
func (p Pantry) Has(id string) bool {
	_, ok := p[id]
	return ok
}

// IDs 回傳食材 ID（無序）
func (p Pantry) IDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	return ids
}
