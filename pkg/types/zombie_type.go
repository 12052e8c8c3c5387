// Package types 定义共享的基础类型
package types

// ZombieType 定义敌人的子类型
// 取值直接对应关卡配置与僵尸属性配置中的字符串键
type ZombieType string

const (
	ZombieBasic       ZombieType = "basic"       // 普通僵尸：追击玩家，近战攻击
	ZombieFast        ZombieType = "fast"        // 快速僵尸：血量低，移动快
	ZombieTank        ZombieType = "tank"        // 重装僵尸：血量高，抗击退
	ZombieCamouflaged ZombieType = "camouflaged" // 伪装僵尸：远距离不可见
	ZombieBoss        ZombieType = "boss"        // Boss
)

// IsKnown 判断是否为已知子类型
func (t ZombieType) IsKnown() bool {
	switch t {
	case ZombieBasic, ZombieFast, ZombieTank, ZombieCamouflaged, ZombieBoss:
		return true
	}
	return false
}

// EntityKind 实体的种类标签
type EntityKind int

const (
	KindUnknown EntityKind = iota
	KindPlayer
	KindZombie
	KindBoss
	KindProjectile
	KindObstacle
	KindHazard
)

// String 返回种类名称（日志用）
func (k EntityKind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindZombie:
		return "zombie"
	case KindBoss:
		return "boss"
	case KindProjectile:
		return "projectile"
	case KindObstacle:
		return "obstacle"
	case KindHazard:
		return "hazard"
	}
	return "unknown"
}

// IsEnemy 僵尸和 Boss 都属于敌方
func (k EntityKind) IsEnemy() bool {
	return k == KindZombie || k == KindBoss
}
