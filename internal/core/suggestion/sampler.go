package suggestion

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"meal-planner/internal/pkg/common"
)

// RandomSource 可注入的亂數來源；*rand.Rand 即滿足
type RandomSource interface {
	Float64() float64
}

// NewRandomSource 以時間為種子的亂數來源，可併發使用
func NewRandomSource() RandomSource {
	return NewLockedSource(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// lockedSource 以互斥鎖保護的亂數來源
type lockedSource struct {
	mu  sync.Mutex
	src RandomSource
}

// NewLockedSource 包裝非執行緒安全的來源（例如 *rand.Rand）
func NewLockedSource(src RandomSource) RandomSource {
	return &lockedSource{src: src}
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

// SampleWithoutReplacement 輪盤法加權抽樣，不重複。
// 權重 <= 0 視為 1；items 數量不超過 count 時原樣回傳全部。
func SampleWithoutReplacement[T any](items []T, count int, weight func(T) float64, src RandomSource) ([]T, error) {
	if count < 0 {
		return nil, common.NewValidationErrorf("sample count must not be negative, got %d", count)
	}
	if len(items) <= count {
		out := make([]T, len(items))
		copy(out, items)
		return out, nil
	}
	if src == nil {
		src = NewRandomSource()
	}

	pool := make([]T, len(items))
	copy(pool, items)
	weights := make([]float64, len(items))
	for i, item := range items {
		weights[i] = flooredWeight(weight(item))
	}

	picked := make([]T, 0, count)
	for len(picked) < count {
		total := 0.0
		for _, w := range weights {
			total += w
		}

		r := src.Float64() * total
		idx := len(pool) - 1
		for i, w := range weights {
			r -= w
			if r <= 0 {
				idx = i
				break
			}
		}

		picked = append(picked, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}
	return picked, nil
}

func flooredWeight(w float64) float64 {
	if w <= 0 || math.IsNaN(w) {
		return 1
	}
	return w
}

// Sample 依 weight_score 抽出 count 個推薦
func Sample(suggestions []Suggestion, count int, src RandomSource) ([]Suggestion, error) {
	return SampleWithoutReplacement(suggestions, count, func(s Suggestion) float64 {
		return float64(s.WeightScore)
	}, src)
}
