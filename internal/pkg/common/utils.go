package common

import (
	"math"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// Round2 四捨五入到小數第二位（half-up）
func Round2(v float64) float64 {
	return RoundTo(v, 2)
}

// RoundTo 四捨五入到指定小數位（half-up，負數對稱）
func RoundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	// 先以 1e-9 修正浮點誤差，避免 0.125*100 變成 12.499999
	scaled := v * pow
	if scaled >= 0 {
		return math.Floor(scaled+0.5+1e-9) / pow
	}
	return -math.Floor(-scaled+0.5+1e-9) / pow
}
