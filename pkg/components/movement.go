package components

import "github.com/go-gl/mathgl/mgl64"

// MovementComponent 可移动实体的运动学数据
//
// Velocity 是移动意图（由玩家输入或 AI 每帧设置）
// External 是外力速度（击退、推力区域），由移动积分逐渐衰减
// Speed 是设计上限；外力可以使合速度暂时超过它，推力区域负责钳制
type MovementComponent struct {
	Velocity mgl64.Vec3
	External mgl64.Vec3
	Speed    float64
	// BaseSpeed 未受减速区域影响的速度（Boss 狂暴等永久修改会同时更新它）
	BaseSpeed float64
	Facing    mgl64.Vec3

	// KnockbackResistance 击退抗性（0~1，1 表示完全免疫）
	KnockbackResistance float64
}

// NewMovement 创建速度上限为 speed 的运动组件，默认朝向 +Z
func NewMovement(speed float64) *MovementComponent {
	return &MovementComponent{
		Speed:     speed,
		BaseSpeed: speed,
		Facing:    mgl64.Vec3{0, 0, 1},
	}
}

// TotalVelocity 意图速度与外力速度之和
func (m *MovementComponent) TotalVelocity() mgl64.Vec3 {
	return m.Velocity.Add(m.External)
}

// Integrate 按合速度推进位置一帧
//
// 位置高于地面时重力作用在外力速度的 Y 分量上，落地后 Y 归位并清除向下速度；
// 外力的水平分量按 damping 每秒指数衰减。
func (m *MovementComponent) Integrate(t *TransformComponent, deltaTime, gravity, groundY, damping float64) {
	t.Position = t.Position.Add(m.TotalVelocity().Mul(deltaTime))

	if t.Position[1] > groundY {
		m.External[1] -= gravity * deltaTime
	} else {
		t.Position[1] = groundY
		if m.External[1] < 0 {
			m.External[1] = 0
		}
	}

	decay := 1 - damping*deltaTime
	if decay < 0 {
		decay = 0
	}
	m.External[0] *= decay
	m.External[2] *= decay
	if mgl64.Abs(m.External[0]) < 1e-4 {
		m.External[0] = 0
	}
	if mgl64.Abs(m.External[2]) < 1e-4 {
		m.External[2] = 0
	}
}
