package types

// DamageType 伤害类型，用于抗性判断
type DamageType string

const (
	DamageNormal    DamageType = "normal"
	DamageFire      DamageType = "fire"
	DamageExplosion DamageType = "explosion"
	DamageLava      DamageType = "lava"
	DamagePoison    DamageType = "poison"
)

// IsFireLike 火焰、爆炸视为同一类（抗火敌人只受 50% 伤害）
func (d DamageType) IsFireLike() bool {
	return d == DamageFire || d == DamageExplosion
}

// IsHeatHazard 火焰、熔岩类危险区域对抗火实体无效
func (d DamageType) IsHeatHazard() bool {
	return d == DamageFire || d == DamageLava
}
