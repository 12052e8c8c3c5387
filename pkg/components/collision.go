package components

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB 轴对齐包围盒（世界坐标）
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Intersects 两个包围盒相交当且仅当每个轴的区间都重叠
// min_a <= max_b && max_a >= min_b（边界接触也算相交）
func (a AABB) Intersects(b AABB) bool {
	for i := 0; i < 3; i++ {
		if a.Min[i] > b.Max[i] || a.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// ContainsPoint 判断点是否在包围盒内（含边界）
func (a AABB) ContainsPoint(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < a.Min[i] || p[i] > a.Max[i] {
			return false
		}
	}
	return true
}

// Expand 向各方向扩大 margin
func (a AABB) Expand(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Center 包围盒中心
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// ClosestPoint 包围盒上离 p 最近的点（p 在盒内时返回 p 本身）
func (a AABB) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		out[i] = math.Max(a.Min[i], math.Min(a.Max[i], p[i]))
	}
	return out
}

// Overlap 返回指定轴上的重叠长度（不重叠时 <= 0）
func (a AABB) Overlap(b AABB, axis int) float64 {
	return math.Min(a.Max[axis], b.Max[axis]) - math.Max(a.Min[axis], b.Min[axis])
}

// IsDegenerate 任一轴尺寸为 0（或反向）的包围盒不参与碰撞
func (a AABB) IsDegenerate() bool {
	for i := 0; i < 3; i++ {
		if a.Max[i] <= a.Min[i] {
			return true
		}
	}
	return false
}

// SegmentEntry 线段 from->to 与包围盒的首次相交参数 t ∈ [0,1]
// 使用 slab 算法；起点在盒内时返回 0
//
// 返回:
//   - float64: 进入参数
//   - bool: 是否相交
func (a AABB) SegmentEntry(from, to mgl64.Vec3) (float64, bool) {
	if a.ContainsPoint(from) {
		return 0, true
	}
	dir := to.Sub(from)
	tMin, tMax := 0.0, 1.0
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-12 {
			if from[i] < a.Min[i] || from[i] > a.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1.0 / dir[i]
		t1 := (a.Min[i] - from[i]) * inv
		t2 := (a.Max[i] - from[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// BoundingBoxComponent 定义实体的局部坐标包围盒
// 与 TransformComponent 组合得到世界坐标包围盒
type BoundingBoxComponent struct {
	Min mgl64.Vec3 // 局部最小点（相对实体位置）
	Max mgl64.Vec3 // 局部最大点（相对实体位置）

	// Trigger 触发器只参与检测（GetCollisions），不参与位置修正
	// 用于子弹等不应推挤其他实体的对象
	Trigger bool
}

// NewCenteredBox 创建以实体位置为底面中心的包围盒
// width 对应 X，depth 对应 Z，height 从 Y=0 向上
func NewCenteredBox(width, height, depth float64) *BoundingBoxComponent {
	return &BoundingBoxComponent{
		Min: mgl64.Vec3{-width / 2, 0, -depth / 2},
		Max: mgl64.Vec3{width / 2, height, depth / 2},
	}
}

// WorldAABB 结合变换得到世界坐标包围盒（只考虑平移与缩放，旋转不影响 AABB）
func (b *BoundingBoxComponent) WorldAABB(t *TransformComponent) AABB {
	scale := t.Scale
	if scale == (mgl64.Vec3{}) {
		scale = mgl64.Vec3{1, 1, 1}
	}
	min := mgl64.Vec3{b.Min[0] * scale[0], b.Min[1] * scale[1], b.Min[2] * scale[2]}
	max := mgl64.Vec3{b.Max[0] * scale[0], b.Max[1] * scale[1], b.Max[2] * scale[2]}
	return AABB{Min: t.Position.Add(min), Max: t.Position.Add(max)}
}
