package components

import (
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

// AreaEffect 范围伤害弹（火箭弹）的附加数据
type AreaEffect struct {
	Radius       float64
	SplashDamage float64
	Gravity      float64 // 每秒施加到 Y 速度上的下坠量
	Detonated    bool
}

// ProjectileComponent 弹丸数据
//
// 生成后 CollisionDelay 秒内不参与命中检测，避免在枪口处命中发射者
// 存在时间由同一实体上的 LifetimeComponent 记录
type ProjectileComponent struct {
	Damage     float64
	DamageType types.DamageType
	OwnerID    ecs.EntityID
	OwnerKind  types.EntityKind
	Weapon     string

	Origin       mgl64.Vec3 // 发射位置（用于射程判定）
	PrevPosition mgl64.Vec3 // 上一帧位置（用于扫掠命中检测）
	MaxRange     float64
	Radius       float64

	CollisionDelay float64
	Sequence       uint64 // 创建序号，超出上限时淘汰最旧的弹丸

	Area *AreaEffect
}
