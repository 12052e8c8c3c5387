package types

// WinConditionType 关卡胜利条件
type WinConditionType string

const (
	WinKillAll     WinConditionType = "kill_all"
	WinSurviveTime WinConditionType = "survive_time"
	WinKillBoss    WinConditionType = "kill_boss"
	WinReachExit   WinConditionType = "reach_exit"
)

// Outcome 关卡结果
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeDefeat
)

// String 返回结果名称
func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	}
	return "none"
}

// WeaponKind 武器发射方式
type WeaponKind string

const (
	WeaponBullet WeaponKind = "bullet" // 单发/多发点伤害弹丸
	WeaponRocket WeaponKind = "rocket" // 范围伤害火箭弹
)
