package components

import "github.com/go-gl/mathgl/mgl64"

// TransformComponent 实体的空间变换
// 坐标系：X/Z 为水平面，Y 向上
type TransformComponent struct {
	Position mgl64.Vec3
	Rotation float64    // 绕 Y 轴的朝向角（弧度）
	Scale    mgl64.Vec3 // 零值视为 (1,1,1)
}

// NewTransform 创建位于 pos、缩放为 1 的变换
func NewTransform(pos mgl64.Vec3) *TransformComponent {
	return &TransformComponent{Position: pos, Scale: mgl64.Vec3{1, 1, 1}}
}
