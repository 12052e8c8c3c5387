package components

import "github.com/decker502/arena/pkg/types"

// ZombieComponent 敌人数据
// 行为由 Type 标签选择的策略决定，不通过继承区分变体
//
// 攻击条件：now - LastAttackTime >= AttackCooldown 且目标在 AttackRange 内
type ZombieComponent struct {
	Type           types.ZombieType
	Damage         float64
	AttackRange    float64
	AttackCooldown float64
	LastAttackTime float64

	FireResistant bool // 火焰/爆炸伤害减半，免疫火焰/熔岩区域
	ScoreValue    int

	// WaveIndex 所属波次（0-based）；召唤物为 -1，不计入波次剩余数量
	WaveIndex int

	// 伪装僵尸：只有玩家进入 RevealDistance 才可见
	RevealDistance float64
	Visible        bool

	// GroanTimer 距离下一次呻吟音效的时间（秒）
	GroanTimer float64
}
