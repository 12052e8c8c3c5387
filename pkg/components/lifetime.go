package components

// LifetimeComponent 管理实体的生命周期
// 用于自动清理存在时间超过上限的实体(如子弹、火箭弹)
type LifetimeComponent struct {
	MaxLifetime     float64 // 最大生命周期(秒)
	CurrentLifetime float64 // 当前已存在时间(秒)
	IsExpired       bool    // 是否已过期
}

// Advance 累加存在时间，超过上限（严格大于）时标记过期
//
// 返回:
//   - bool: 本次调用后是否已过期
func (l *LifetimeComponent) Advance(deltaTime float64) bool {
	l.CurrentLifetime += deltaTime
	if l.CurrentLifetime > l.MaxLifetime {
		l.IsExpired = true
	}
	return l.IsExpired
}
