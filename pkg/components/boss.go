package components

import "github.com/go-gl/mathgl/mgl64"

// SpecialAttackKind Boss 特殊攻击类型
type SpecialAttackKind string

const (
	SpecialNone       SpecialAttackKind = ""
	SpecialCharge     SpecialAttackKind = "charge"      // 中距离冲锋
	SpecialGroundSlam SpecialAttackKind = "ground_slam" // 近距离震地（第 2 阶段起）
	SpecialSummon     SpecialAttackKind = "summon"      // 召唤小怪（第 2 阶段起，独立冷却）
)

// SpecialAttackState 正在进行中的特殊攻击
// 进行期间 Boss 的普通移动和攻击逻辑暂停
type SpecialAttackState struct {
	Kind      SpecialAttackKind
	Elapsed   float64
	Duration  float64
	Direction mgl64.Vec3 // 冲锋方向（开始时锁定）
	Resolved  bool       // 本次攻击的效果是否已结算（震地爆发、召唤、冲锋命中）
}

// InProgress 是否有特殊攻击正在进行
func (s *SpecialAttackState) InProgress() bool {
	return s.Kind != SpecialNone
}

// BossComponent Boss 阶段状态
//
// 阶段只会随生命值下降单调递增：1 普通 → 2 激怒（<=66%）→ 3 狂暴（<=33%）
type BossComponent struct {
	Name  string
	Phase int

	SpecialCooldown float64
	LastSpecialTime float64
	SummonCooldown  float64
	LastSummonTime  float64
	Special         SpecialAttackState

	// 累计倍率（只用于展示和日志，实际数值已写入各组件）
	SpeedMultiplier  float64
	DamageMultiplier float64

	BonusScore int
	Defeated   bool
}
