package config

import (
	"fmt"
	"io/fs"

	"github.com/decker502/arena/pkg/types"
	"gopkg.in/yaml.v3"
)

// ZombieStats 单个敌人子类型的属性配置
type ZombieStats struct {
	Health              float64 `yaml:"health"`
	Speed               float64 `yaml:"speed"`
	Damage              float64 `yaml:"damage"`
	AttackRange         float64 `yaml:"attackRange"`
	AttackCooldownMs    float64 `yaml:"attackCooldownMs"`
	Width               float64 `yaml:"width"`
	Height              float64 `yaml:"height"`
	ScoreValue          int     `yaml:"scoreValue"`
	FireResistant       bool    `yaml:"fireResistant"`
	KnockbackResistance float64 `yaml:"knockbackResistance"` // 0~1
	RevealDistance      float64 `yaml:"revealDistance"`      // 伪装僵尸专用，0 表示总是可见
}

// AttackCooldown 攻击冷却（秒）
func (s ZombieStats) AttackCooldown() float64 {
	return s.AttackCooldownMs / 1000.0
}

// ZombieStatsConfig 僵尸属性配置文件结构
type ZombieStatsConfig struct {
	Zombies map[types.ZombieType]ZombieStats `yaml:"zombies"` // 子类型到属性的映射
}

// DefaultZombieStats 内置属性表（配置文件缺失时使用）
func DefaultZombieStats() *ZombieStatsConfig {
	return &ZombieStatsConfig{Zombies: map[types.ZombieType]ZombieStats{
		types.ZombieBasic: {
			Health: 100, Speed: 3, Damage: 10, AttackRange: 1.5, AttackCooldownMs: 1000,
			Width: 1, Height: 2, ScoreValue: 100,
		},
		types.ZombieFast: {
			Health: 60, Speed: 6, Damage: 8, AttackRange: 1.3, AttackCooldownMs: 700,
			Width: 0.8, Height: 1.8, ScoreValue: 150,
		},
		types.ZombieTank: {
			Health: 300, Speed: 1.8, Damage: 25, AttackRange: 1.8, AttackCooldownMs: 1600,
			Width: 1.6, Height: 2.4, ScoreValue: 300, FireResistant: true, KnockbackResistance: 0.8,
		},
		types.ZombieCamouflaged: {
			Health: 80, Speed: 3.5, Damage: 12, AttackRange: 1.5, AttackCooldownMs: 1000,
			Width: 1, Height: 2, ScoreValue: 200, RevealDistance: 6,
		},
		types.ZombieBoss: {
			Health: 2000, Speed: 2.5, Damage: 30, AttackRange: 2.5, AttackCooldownMs: 1500,
			Width: 2.5, Height: 4, ScoreValue: 500, FireResistant: true, KnockbackResistance: 1,
		},
	}}
}

// ParseZombieStats 解析 YAML 数据
func ParseZombieStats(data []byte) (*ZombieStatsConfig, error) {
	var config ZombieStatsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse zombie stats YAML: %w", err)
	}

	if err := validateZombieStats(&config); err != nil {
		return nil, fmt.Errorf("invalid zombie stats: %w", err)
	}

	return &config, nil
}

// LoadZombieStats 从文件系统加载僵尸属性配置
// 参数：
//
//	fsys - 文件系统
//	path - 配置文件路径
//
// 返回：
//
//	*ZombieStatsConfig - 解析后的配置对象
//	error - 如果文件读取或解析失败，返回错误信息
func LoadZombieStats(fsys fs.FS, path string) (*ZombieStatsConfig, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read zombie stats file %s: %w", path, err)
	}

	config, err := ParseZombieStats(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// validateZombieStats 验证僵尸属性配置的完整性和合法性
// 击退抗性越界时钳制到 0~1，不视为错误
func validateZombieStats(config *ZombieStatsConfig) error {
	if len(config.Zombies) == 0 {
		return fmt.Errorf("at least one zombie type is required")
	}

	for zombieType, stats := range config.Zombies {
		if !zombieType.IsKnown() {
			return fmt.Errorf("unknown zombie type %q", zombieType)
		}

		if stats.Health <= 0 {
			return fmt.Errorf("zombie %s: health must be positive, got %.1f", zombieType, stats.Health)
		}

		if stats.Speed < 0 {
			return fmt.Errorf("zombie %s: speed cannot be negative, got %.1f", zombieType, stats.Speed)
		}

		if stats.Damage < 0 {
			return fmt.Errorf("zombie %s: damage cannot be negative, got %.1f", zombieType, stats.Damage)
		}

		if stats.Width <= 0 || stats.Height <= 0 {
			return fmt.Errorf("zombie %s: width and height must be positive", zombieType)
		}

		stats.KnockbackResistance = clamp(stats.KnockbackResistance, 0, 1)
		config.Zombies[zombieType] = stats
	}

	return nil
}

// GetZombieStats 获取指定子类型的完整属性
// 如果子类型不存在，返回 nil 和 false
func (c *ZombieStatsConfig) GetZombieStats(zombieType types.ZombieType) (*ZombieStats, bool) {
	stats, ok := c.Zombies[zombieType]
	if !ok {
		return nil, false
	}
	return &stats, true
}
