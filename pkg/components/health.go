package components

// HealthComponent 存储实体的生命值信息
// 用于玩家、僵尸、Boss 等可被攻击的实体
//
// 不变量：0 <= Health <= MaxHealth；IsDead 当且仅当 Health == 0
// 生命值使用浮点数，持续伤害（伤害区域每秒伤害 × deltaTime）可以精确累计
type HealthComponent struct {
	Health    float64
	MaxHealth float64
	IsDead    bool
}

// NewHealth 创建满血的生命值组件
func NewHealth(max float64) *HealthComponent {
	return &HealthComponent{Health: max, MaxHealth: max}
}

// Ratio 当前生命值比例（0~1）
func (h *HealthComponent) Ratio() float64 {
	if h.MaxHealth <= 0 {
		return 0
	}
	return h.Health / h.MaxHealth
}
