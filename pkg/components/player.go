package components

import (
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

// WeaponState 玩家武器槽的运行时数据
type WeaponState struct {
	Name            string
	Kind            types.WeaponKind
	Damage          float64 // 直接命中伤害
	SplashDamage    float64 // 火箭弹溅射伤害（仅 rocket）
	SplashRadius    float64 // 火箭弹爆炸半径（仅 rocket）
	ProjectileSpeed float64
	FireInterval    float64 // 两次射击最小间隔（秒）
	Pellets         int     // 每次射击弹丸数（霰弹枪 > 1）
	Spread          float64 // 弹丸扇形总角度（弧度）
	DamageType      types.DamageType
	LastFired       float64 // 上次开火的模拟时间
}

// PlayerComponent 玩家专属数据
//
// 无敌窗口：受到一次伤害后 InvulnerabilityWindow 秒内的其他伤害全部忽略
// 判定条件为 now - LastDamageTime >= InvulnerabilityWindow
type PlayerComponent struct {
	Weapons               []WeaponState
	ActiveWeapon          int
	InvulnerabilityWindow float64
	LastDamageTime        float64
	AimPoint              mgl64.Vec3
}

// CurrentWeapon 返回当前武器（没有武器时返回 nil）
func (p *PlayerComponent) CurrentWeapon() *WeaponState {
	if p.ActiveWeapon < 0 || p.ActiveWeapon >= len(p.Weapons) {
		return nil
	}
	return &p.Weapons[p.ActiveWeapon]
}
