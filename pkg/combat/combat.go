// Package combat 实现纯粹的伤害与击退计算
//
// 这里不持有任何状态，也不查询实体管理器：
// 调用方提供目标的生命值/运动组件和位置，结果直接写回组件或通过回调返回。
// 抗性等只有被攻击实体才知道的修正在调用方（伤害系统）完成。
package combat

import (
	"math"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

// FalloffCurve 伤害随距离衰减的曲线形状
type FalloffCurve int

const (
	// FalloffLinear 线性衰减：1 - d/r
	FalloffLinear FalloffCurve = iota
	// FalloffQuadratic 二次衰减：(1 - d/r)²
	FalloffQuadratic
)

// Falloff 一种衰减公式：曲线 + 最小伤害比例
// 每个调用点固定使用一种公式
type Falloff struct {
	Curve     FalloffCurve
	MinDamage float64 // 半径边缘处的伤害比例下限（0~1）
}

// ExplosionFalloff 通用爆炸（Boss 震地等）的默认公式
var ExplosionFalloff = Falloff{Curve: FalloffQuadratic, MinDamage: 0.3}

// RocketFalloff 火箭弹溅射的默认公式
var RocketFalloff = Falloff{Curve: FalloffLinear, MinDamage: 0.5}

// WithMinDamage 返回同一曲线、不同最小伤害比例的公式
func (f Falloff) WithMinDamage(minDamage float64) Falloff {
	f.MinDamage = minDamage
	return f
}

// directHitDistance 距离小于该值视为正中
const directHitDistance = 1e-6

// FalloffDamage 计算距离 distance 处的范围伤害
//
// 返回 floor(base × (min + (1-min) × falloff))；distance >= radius 时为 0。
// 对固定的 base 与 radius，结果随距离单调不增。
func FalloffDamage(base, distance, radius float64, f Falloff) float64 {
	if radius <= 0 || base <= 0 || distance >= radius {
		return 0
	}
	if distance < 0 {
		distance = 0
	}

	t := 1 - distance/radius
	if f.Curve == FalloffQuadratic {
		t *= t
	}

	minPct := math.Max(0, math.Min(1, f.MinDamage))
	return math.Floor(base * (minPct + (1-minPct)*t))
}

// ApplyPointDamage 对目标直接扣血
//
// health 扣到 0 为止；扣到 0 时 IsDead=true。已死亡的目标不再受影响。
// 负数伤害视为 0。
//
// 返回:
//   - applied: 实际扣除的生命值
//   - killed: 是否由本次伤害致死
func ApplyPointDamage(h *components.HealthComponent, amount float64) (applied float64, killed bool) {
	if h == nil || h.IsDead || amount <= 0 {
		return 0, false
	}

	before := h.Health
	h.Health = math.Max(0, h.Health-amount)
	if h.Health == 0 {
		h.IsDead = true
		return before, true
	}
	return before - h.Health, false
}

// Kill 直接把目标生命值清零（即死区域）
// 返回目标是否由本次调用致死
func Kill(h *components.HealthComponent) bool {
	if h == nil || h.IsDead {
		return false
	}
	h.Health = 0
	h.IsDead = true
	return true
}

// Knockback 在目标的外力速度上叠加击退冲量
//
// 方向为爆炸中心指向目标的水平单位向量，大小为 strength × (1 - d/r)，
// 另加固定的向上分量；目标的击退抗性按比例削弱两者。
// 目标与中心水平重合时只有向上分量。
func Knockback(m *components.MovementComponent, center, target mgl64.Vec3, radius, strength, upward float64) {
	if m == nil || radius <= 0 {
		return
	}

	offset := target.Sub(center)
	distance := offset.Len()
	if distance >= radius {
		return
	}

	scale := 1 - math.Max(0, math.Min(1, m.KnockbackResistance))
	if scale == 0 {
		return
	}

	horizontal := mgl64.Vec3{offset[0], 0, offset[2]}
	impulse := mgl64.Vec3{0, upward * scale, 0}
	if horizontal.Len() > directHitDistance {
		impulse = impulse.Add(horizontal.Normalize().Mul(strength * (1 - distance/radius) * scale))
	}
	m.External = m.External.Add(impulse)
}

// Target 范围伤害的候选目标
type Target struct {
	ID       ecs.EntityID
	Position mgl64.Vec3 // 用于测距的点（通常是包围盒上离中心最近的点）
}

// AreaHit 范围伤害命中结果
type AreaHit struct {
	ID       ecs.EntityID
	Distance float64
	Damage   float64
	Direct   bool // 距离为 0（正中）
}

// ApplyAreaDamage 计算一次范围伤害
//
// 对每个在 radius 内的候选目标（除非 damageOwner 为 true，否则排除 ownerID）
// 按 falloff 计算伤害，伤害大于 0 时调用 apply。
// 实际扣血由 apply 完成，这样抗性和死亡通知仍走统一的伤害入口。
//
// 参数:
//   - center: 爆炸中心
//   - radius: 爆炸半径
//   - baseDamage: 中心处伤害
//   - targets: 候选目标（调用方按 ID 升序提供，保证结果确定）
//   - ownerID: 伤害来源实体
//   - damageOwner: 是否伤害来源自身
//   - f: 衰减公式
//   - apply: 命中回调，可为 nil
//
// 返回:
//   - []AreaHit: 所有命中（按 targets 顺序）
func ApplyAreaDamage(
	center mgl64.Vec3,
	radius, baseDamage float64,
	targets []Target,
	ownerID ecs.EntityID,
	damageOwner bool,
	f Falloff,
	apply func(hit AreaHit),
) []AreaHit {
	var hits []AreaHit
	if radius <= 0 {
		return hits
	}

	for _, t := range targets {
		if t.ID == ownerID && !damageOwner {
			continue
		}
		distance := t.Position.Sub(center).Len()
		if distance >= radius {
			continue
		}
		damage := FalloffDamage(baseDamage, distance, radius, f)
		if damage <= 0 {
			continue
		}
		hit := AreaHit{ID: t.ID, Distance: distance, Damage: damage, Direct: distance < directHitDistance}
		hits = append(hits, hit)
		if apply != nil {
			apply(hit)
		}
	}
	return hits
}
