package config

import (
	"fmt"
	"io/fs"
	"log"
	"math"

	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// ArenaConfig 竞技场全局配置
//
// 所有模拟参数都从这里读取，调试开关也在这里显式传入，
// 不存在可以从外部随意修改的全局变量。
//
// 配置文件位置: data/arena.yaml
type ArenaConfig struct {
	TickRate   int                     `yaml:"tickRate"` // 每秒 tick 数，默认 60
	World      WorldBoundsConfig       `yaml:"world"`
	Player     PlayerConfig            `yaml:"player"`
	Weapons    map[string]WeaponConfig `yaml:"weapons"`
	Projectile ProjectileConfig        `yaml:"projectile"`
	Combat     CombatConfig            `yaml:"combat"`
	Hazard     HazardDefaults          `yaml:"hazard"`
	Boss       BossConfig              `yaml:"boss"`
	Spawner    SpawnerConfig           `yaml:"spawner"`
	Debug      DebugConfig             `yaml:"debug"`
}

// WorldBoundsConfig 世界边界（实体越界时被推回，不会被销毁）
type WorldBoundsConfig struct {
	Min mgl64.Vec3 `yaml:"min"`
	Max mgl64.Vec3 `yaml:"max"`
}

// PlayerConfig 玩家初始属性
type PlayerConfig struct {
	Health            float64  `yaml:"health"`
	Speed             float64  `yaml:"speed"`
	InvulnerabilityMs float64  `yaml:"invulnerabilityMs"` // 无敌窗口（毫秒），默认 1000
	Width             float64  `yaml:"width"`
	Height            float64  `yaml:"height"`
	Weapons           []string `yaml:"weapons"` // 初始武器槽顺序，引用 Weapons 表中的名称
}

// WeaponConfig 单种武器的参数
type WeaponConfig struct {
	Kind            types.WeaponKind `yaml:"kind"`
	Damage          float64          `yaml:"damage"`
	SplashDamage    float64          `yaml:"splashDamage"`
	SplashRadius    float64          `yaml:"splashRadius"`
	ProjectileSpeed float64          `yaml:"projectileSpeed"`
	FireIntervalMs  float64          `yaml:"fireIntervalMs"`
	Pellets         int              `yaml:"pellets"`
	SpreadDegrees   float64          `yaml:"spreadDegrees"`
	DamageType      types.DamageType `yaml:"damageType"`
}

// ProjectileConfig 弹丸模拟参数
type ProjectileConfig struct {
	MaxActive       int     `yaml:"maxActive"`       // 同时存在的弹丸上限，超出时淘汰最旧的
	LifetimeSeconds float64 `yaml:"lifetimeSeconds"` // 默认 5 秒
	MaxRange        float64 `yaml:"maxRange"`        // 水平射程，默认 100
	CollisionDelay  float64 `yaml:"collisionDelay"`  // 默认 0.1 秒
	Radius          float64 `yaml:"radius"`
	RocketGravity   float64 `yaml:"rocketGravity"`
	MuzzleHeight    float64 `yaml:"muzzleHeight"`
	MuzzleOffset    float64 `yaml:"muzzleOffset"`
}

// CombatConfig 伤害与击退参数
type CombatConfig struct {
	KnockbackStrength       float64  `yaml:"knockbackStrength"`       // 默认 10
	KnockbackUpward         float64  `yaml:"knockbackUpward"`         // 击退的固定向上分量
	ExternalDamping         float64  `yaml:"externalDamping"`         // 外力速度每秒衰减系数
	Gravity                 float64  `yaml:"gravity"`                 // 实体离地时的重力
	GroundY                 float64  `yaml:"groundY"`                 // 地面高度
	FireResistMultiplier    float64  `yaml:"fireResistMultiplier"`    // 抗火实体受火焰/爆炸伤害倍率，默认 0.5
	// 范围伤害在半径边缘的最小比例（0~1）；未设置时使用默认值，显式的 0 表示没有下限
	ExplosionMinDamage      *float64 `yaml:"explosionMinDamage"`      // 通用爆炸（二次衰减），默认 0.3
	RocketSplashMinDamage   *float64 `yaml:"rocketSplashMinDamage"`   // 火箭弹溅射（线性衰减），默认 0.5
	ContactDamageMultiplier float64  `yaml:"contactDamageMultiplier"` // Boss 冲锋接触伤害倍率
}

// HazardDefaults 危险区域通用参数
type HazardDefaults struct {
	VerticalTolerance       float64 `yaml:"verticalTolerance"`       // 区域上下的容差带
	WarningDistance         float64 `yaml:"warningDistance"`         // 默认预警距离
	MaxPushSpeed            float64 `yaml:"maxPushSpeed"`            // 推力区域合速度上限，默认 20
	QuicksandDecayPerSecond float64 `yaml:"quicksandDecayPerSecond"` // 流沙减速系数每秒递减量，默认 0.05
	MinSlowFactor           float64 `yaml:"minSlowFactor"`           // 减速系数下限，默认 0.1
	GeyserPeriod            float64 `yaml:"geyserPeriod"`            // 间歇泉默认周期（秒）
}

// BossConfig Boss 阶段与特殊攻击参数
type BossConfig struct {
	Phase2Threshold float64 `yaml:"phase2Threshold"` // 默认 0.66
	Phase3Threshold float64 `yaml:"phase3Threshold"` // 默认 0.33

	SpecialCooldown float64 `yaml:"specialCooldown"`
	SummonCooldown  float64 `yaml:"summonCooldown"`

	Phase2SpecialCooldownMul float64 `yaml:"phase2SpecialCooldownMul"`
	Phase3SpecialCooldownMul float64 `yaml:"phase3SpecialCooldownMul"`
	Phase3SpeedMul           float64 `yaml:"phase3SpeedMul"`
	Phase3DamageMul          float64 `yaml:"phase3DamageMul"`
	Phase3AttackCooldownMul  float64 `yaml:"phase3AttackCooldownMul"`

	ChargeMinRange float64 `yaml:"chargeMinRange"` // 冲锋距离下限，默认 8
	ChargeMaxRange float64 `yaml:"chargeMaxRange"` // 冲锋距离上限，默认 20
	ChargeSpeedMul float64 `yaml:"chargeSpeedMul"`
	ChargeDuration float64 `yaml:"chargeDuration"`

	SlamRange     float64 `yaml:"slamRange"` // 震地触发距离，默认 5
	SlamRadius    float64 `yaml:"slamRadius"`
	SlamWindup    float64 `yaml:"slamWindup"`
	SlamDamageMul float64 `yaml:"slamDamageMul"`

	SummonCount    int              `yaml:"summonCount"`
	SummonType     types.ZombieType `yaml:"summonType"`
	SummonDuration float64          `yaml:"summonDuration"`

	BonusScore   int     `yaml:"bonusScore"`
	RemovalDelay float64 `yaml:"removalDelay"` // 击败后从 Boss 槽位移除的延迟（秒）
}

// SpawnerConfig 波次生成参数
type SpawnerConfig struct {
	StaggerMs   float64 `yaml:"staggerMs"`   // 同一波僵尸之间的部署间隔，默认 200ms
	Jitter      float64 `yaml:"jitter"`      // 出生点随机偏移半径
	WaveDelay   float64 `yaml:"waveDelay"`   // 一波完成后到下一波开始的间隔（秒）
	GroanChance float64 `yaml:"groanChance"` // 僵尸呻吟音效平均间隔（秒）
}

// DebugConfig 调试开关（构造时传入，运行时只能通过输入的调试切换沿改变）
type DebugConfig struct {
	Enabled       bool `yaml:"enabled"`
	ShowColliders bool `yaml:"showColliders"`
	LogCollisions bool `yaml:"logCollisions"`
	GodMode       bool `yaml:"godMode"` // 玩家不受伤害
}

// 范围伤害下限的默认值
const (
	DefaultExplosionMinDamage    = 0.3
	DefaultRocketSplashMinDamage = 0.5
)

// DefaultArenaConfig 返回全部使用默认值的配置
func DefaultArenaConfig() *ArenaConfig {
	cfg := &ArenaConfig{}
	applyArenaDefaults(cfg)
	return cfg
}

// ParseArenaConfig 解析 YAML 数据并补全默认值
func ParseArenaConfig(data []byte) (*ArenaConfig, error) {
	var cfg ArenaConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse arena config YAML: %w", err)
	}

	applyArenaDefaults(&cfg)

	if err := validateArenaConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid arena config: %w", err)
	}

	return &cfg, nil
}

// LoadArenaConfig 从文件系统加载竞技场配置
// 参数：
//
//	fsys - 文件系统（嵌入资源或 os.DirFS）
//	path - 配置文件路径
//
// 返回：
//
//	*ArenaConfig - 解析后的配置
//	error - 读取或解析失败
func LoadArenaConfig(fsys fs.FS, path string) (*ArenaConfig, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read arena config file %s: %w", path, err)
	}
	cfg, err := ParseArenaConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// InvulnerabilityWindow 无敌窗口（秒）
func (c *ArenaConfig) InvulnerabilityWindow() float64 {
	return c.Player.InvulnerabilityMs / 1000.0
}

// ExplosionFloor 通用爆炸的最小伤害比例
func (c CombatConfig) ExplosionFloor() float64 {
	if c.ExplosionMinDamage == nil {
		return DefaultExplosionMinDamage
	}
	return *c.ExplosionMinDamage
}

// RocketSplashFloor 火箭弹溅射的最小伤害比例
func (c CombatConfig) RocketSplashFloor() float64 {
	if c.RocketSplashMinDamage == nil {
		return DefaultRocketSplashMinDamage
	}
	return *c.RocketSplashMinDamage
}

// TickDelta 固定 tick 的时间步长（秒）
func (c *ArenaConfig) TickDelta() float64 {
	return 1.0 / float64(c.TickRate)
}

// applyArenaDefaults 为缺失字段设置默认值，越界的数值直接钳制
func applyArenaDefaults(cfg *ArenaConfig) {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}

	if cfg.World.Min == (mgl64.Vec3{}) && cfg.World.Max == (mgl64.Vec3{}) {
		cfg.World.Min = mgl64.Vec3{-45, -10, -45}
		cfg.World.Max = mgl64.Vec3{45, 50, 45}
	}

	p := &cfg.Player
	setDefault(&p.Health, 100)
	setDefault(&p.Speed, 8)
	setDefault(&p.InvulnerabilityMs, 1000)
	setDefault(&p.Width, 0.8)
	setDefault(&p.Height, 1.8)
	if len(p.Weapons) == 0 {
		p.Weapons = []string{"pistol", "shotgun", "rocket"}
	}

	if cfg.Weapons == nil {
		cfg.Weapons = make(map[string]WeaponConfig)
	}
	for name, def := range defaultWeapons() {
		if _, ok := cfg.Weapons[name]; !ok {
			cfg.Weapons[name] = def
		}
	}
	for name, w := range cfg.Weapons {
		if w.Kind == "" {
			w.Kind = types.WeaponBullet
		}
		if w.Pellets < 1 {
			w.Pellets = 1
		}
		if w.DamageType == "" {
			if w.Kind == types.WeaponRocket {
				w.DamageType = types.DamageExplosion
			} else {
				w.DamageType = types.DamageNormal
			}
		}
		setDefault(&w.ProjectileSpeed, 20)
		setDefault(&w.FireIntervalMs, 300)
		cfg.Weapons[name] = w
	}

	pr := &cfg.Projectile
	if pr.MaxActive <= 0 {
		pr.MaxActive = 100
	}
	setDefault(&pr.LifetimeSeconds, 5)
	setDefault(&pr.MaxRange, 100)
	setDefault(&pr.CollisionDelay, 0.1)
	setDefault(&pr.Radius, 0.2)
	setDefault(&pr.RocketGravity, 2)
	setDefault(&pr.MuzzleHeight, 1.0)
	setDefault(&pr.MuzzleOffset, 0.6)

	c := &cfg.Combat
	setDefault(&c.KnockbackStrength, 10)
	setDefault(&c.KnockbackUpward, 3)
	setDefault(&c.ExternalDamping, 4)
	setDefault(&c.Gravity, 20)
	setDefault(&c.FireResistMultiplier, 0.5)
	setRatio(&c.ExplosionMinDamage, DefaultExplosionMinDamage)
	setRatio(&c.RocketSplashMinDamage, DefaultRocketSplashMinDamage)
	setDefault(&c.ContactDamageMultiplier, 2)
	c.FireResistMultiplier = clamp(c.FireResistMultiplier, 0, 1)

	h := &cfg.Hazard
	setDefault(&h.VerticalTolerance, 0.5)
	setDefault(&h.WarningDistance, 2)
	setDefault(&h.MaxPushSpeed, 20)
	setDefault(&h.QuicksandDecayPerSecond, 0.05)
	setDefault(&h.MinSlowFactor, 0.1)
	setDefault(&h.GeyserPeriod, 4)
	h.MinSlowFactor = clamp(h.MinSlowFactor, 0.01, 1)

	b := &cfg.Boss
	setDefault(&b.Phase2Threshold, 0.66)
	setDefault(&b.Phase3Threshold, 0.33)
	setDefault(&b.SpecialCooldown, 6)
	setDefault(&b.SummonCooldown, 15)
	setDefault(&b.Phase2SpecialCooldownMul, 0.7)
	setDefault(&b.Phase3SpecialCooldownMul, 0.5)
	setDefault(&b.Phase3SpeedMul, 1.5)
	setDefault(&b.Phase3DamageMul, 1.5)
	setDefault(&b.Phase3AttackCooldownMul, 0.6)
	setDefault(&b.ChargeMinRange, 8)
	setDefault(&b.ChargeMaxRange, 20)
	setDefault(&b.ChargeSpeedMul, 3)
	setDefault(&b.ChargeDuration, 1.2)
	setDefault(&b.SlamRange, 5)
	setDefault(&b.SlamRadius, 6)
	setDefault(&b.SlamWindup, 0.8)
	setDefault(&b.SlamDamageMul, 2)
	if b.SummonCount <= 0 {
		b.SummonCount = 3
	}
	if b.SummonType == "" {
		b.SummonType = types.ZombieBasic
	}
	setDefault(&b.SummonDuration, 1.5)
	if b.BonusScore <= 0 {
		b.BonusScore = 1000
	}
	setDefault(&b.RemovalDelay, 3)

	s := &cfg.Spawner
	setDefault(&s.StaggerMs, 200)
	setDefault(&s.Jitter, 1.0)
	setDefault(&s.WaveDelay, 3)
	setDefault(&s.GroanChance, 8)
}

// defaultWeapons 内置的三种武器
func defaultWeapons() map[string]WeaponConfig {
	return map[string]WeaponConfig{
		"pistol": {
			Kind: types.WeaponBullet, Damage: 25, ProjectileSpeed: 20,
			FireIntervalMs: 300, Pellets: 1,
		},
		"shotgun": {
			Kind: types.WeaponBullet, Damage: 12, ProjectileSpeed: 18,
			FireIntervalMs: 900, Pellets: 6, SpreadDegrees: 30,
		},
		"rocket": {
			Kind: types.WeaponRocket, Damage: 150, SplashDamage: 75, SplashRadius: 5,
			ProjectileSpeed: 14, FireIntervalMs: 1200, Pellets: 1,
		},
	}
}

// validateArenaConfig 验证配置的合法性
func validateArenaConfig(cfg *ArenaConfig) error {
	for i := 0; i < 3; i++ {
		if cfg.World.Min[i] >= cfg.World.Max[i] {
			return fmt.Errorf("world bounds axis %d: min (%.2f) must be less than max (%.2f)", i, cfg.World.Min[i], cfg.World.Max[i])
		}
	}

	for _, name := range cfg.Player.Weapons {
		if _, ok := cfg.Weapons[name]; !ok {
			return fmt.Errorf("player weapon %q is not defined in weapons", name)
		}
	}

	for name, w := range cfg.Weapons {
		if w.Kind != types.WeaponBullet && w.Kind != types.WeaponRocket {
			return fmt.Errorf("weapon %s: unknown kind %q", name, w.Kind)
		}
		if w.Damage < 0 || w.SplashDamage < 0 || w.SplashRadius < 0 {
			return fmt.Errorf("weapon %s: damage values cannot be negative", name)
		}
		if w.Kind == types.WeaponRocket && w.SplashRadius <= 0 {
			return fmt.Errorf("weapon %s: rocket requires splashRadius > 0", name)
		}
	}

	if cfg.Boss.Phase3Threshold >= cfg.Boss.Phase2Threshold {
		return fmt.Errorf("boss phase3Threshold (%.2f) must be below phase2Threshold (%.2f)",
			cfg.Boss.Phase3Threshold, cfg.Boss.Phase2Threshold)
	}

	if cfg.Boss.ChargeMinRange > cfg.Boss.ChargeMaxRange {
		return fmt.Errorf("boss chargeMinRange must not exceed chargeMaxRange")
	}

	if cfg.Debug.GodMode && !cfg.Debug.Enabled {
		log.Printf("[Config] debug.godMode set while debug is disabled, inactive until debug is toggled on")
	}

	return nil
}

// setDefault 零值（或负值）字段设置为默认值
func setDefault(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}

// setRatio 未设置的比例字段使用默认值，已设置的钳制到 [0, 1]
func setRatio(v **float64, def float64) {
	if *v == nil {
		d := def
		*v = &d
		return
	}
	r := clamp(**v, 0, 1)
	*v = &r
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}
