package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// 缓动函数用于表现层特效（爆炸扩散、受击闪光淡出）。
// 所有函数接受进度 t ∈ [0, 1]，超出范围的输入会先被截断。
//
// 参考：https://easings.net/

// Clamp01 把 t 截断到 [0, 1]
func Clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}

// EaseOutQuad 二次方缓出：f(t) = 1 - (1-t)²
func EaseOutQuad(t float64) float64 {
	t = Clamp01(t)
	return 1 - (1-t)*(1-t)
}

// EaseOutCubic 三次方缓出：f(t) = 1 - (1-t)³
// 开始快，结束慢，用于冲击波扩散
func EaseOutCubic(t float64) float64 {
	t = Clamp01(t)
	return 1 - math.Pow(1-t, 3)
}

// FadeOut 线性淡出的透明度：t=0 时为 1，t=1 时为 0
func FadeOut(t float64) float64 {
	return 1 - Clamp01(t)
}

// Lerp 线性插值
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Lerp3 向量线性插值
func Lerp3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
