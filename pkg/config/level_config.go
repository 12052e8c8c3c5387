package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"path"
	"sort"
	"strings"

	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// ErrLevelNotFound 请求的关卡不存在
var ErrLevelNotFound = errors.New("level not found")

// LevelConfig 关卡配置数据结构
// 关卡内容只读，关卡切换时加载一次
type LevelConfig struct {
	ID          string `yaml:"id"`          // 关卡ID，如 "1"
	Name        string `yaml:"name"`        // 关卡名称
	Description string `yaml:"description"` // 关卡描述（可选）

	PlayerStart mgl64.Vec3       `yaml:"playerStart"`
	SpawnPoints []mgl64.Vec3     `yaml:"spawnPoints"` // 僵尸出生点，按 index % len 循环使用
	Waves       []WaveConfig     `yaml:"waves"`       // 波次列表（按顺序）
	Obstacles   []ObstacleConfig `yaml:"obstacles"`   // 静态障碍物
	Hazards     []HazardConfig   `yaml:"hazards"`     // 危险区域
	Boss        *BossSpawnConfig `yaml:"boss"`        // 可选 Boss

	WinCondition WinConditionConfig `yaml:"winCondition"`
	NextLevel    string             `yaml:"nextLevel"` // 胜利后切换到的关卡（可选）
}

// WaveConfig 单个波次配置
// 一旦开始就不再改变
type WaveConfig struct {
	ZombieCount  int            `yaml:"zombieCount"`
	Distribution []ZombieWeight `yaml:"distribution"` // 类型 -> 百分比，总和应为 100
	SpawnDelayMs float64        `yaml:"spawnDelayMs"` // 每只僵尸的部署间隔，0 表示使用全局默认值
}

// ZombieWeight 波次中某类型僵尸所占百分比
type ZombieWeight struct {
	Type       types.ZombieType `yaml:"type"`
	Percentage float64          `yaml:"percentage"`
}

// ObstacleConfig 静态障碍物
type ObstacleConfig struct {
	Position mgl64.Vec3 `yaml:"position"` // 底面中心
	Size     mgl64.Vec3 `yaml:"size"`     // 宽、高、深
}

// HazardConfig 危险区域定义
type HazardConfig struct {
	Name            string              `yaml:"name"`
	Type            types.HazardKind    `yaml:"type"`
	Variant         types.HazardVariant `yaml:"variant"`
	Position        mgl64.Vec3          `yaml:"position"` // 底面中心
	Size            mgl64.Vec3          `yaml:"size"`
	DamagePerSecond float64             `yaml:"damagePerSecond"`
	DamageType      types.DamageType    `yaml:"damageType"`
	SlowFactor      float64             `yaml:"slowFactor"`
	PushForce       mgl64.Vec3          `yaml:"pushForce"`
	DutyPeriod      float64             `yaml:"dutyPeriod"`
	DutyOffset      float64             `yaml:"dutyOffset"`
	WarningDistance float64             `yaml:"warningDistance"`
}

// BossSpawnConfig Boss 出场配置
type BossSpawnConfig struct {
	Name      string     `yaml:"name"`
	Position  mgl64.Vec3 `yaml:"position"`
	AfterWave int        `yaml:"afterWave"` // 清完多少波后出场，0 表示关卡开始即出场
}

// WinConditionConfig 胜利条件
type WinConditionConfig struct {
	Type           types.WinConditionType `yaml:"type"`
	SurviveSeconds float64                `yaml:"surviveSeconds"` // survive_time
	ExitPosition   mgl64.Vec3             `yaml:"exitPosition"`   // reach_exit
	ExitSize       mgl64.Vec3             `yaml:"exitSize"`       // reach_exit
}

// ParseLevelConfig 解析关卡 YAML 数据
func ParseLevelConfig(data []byte) (*LevelConfig, error) {
	var levelConfig LevelConfig
	if err := yaml.Unmarshal(data, &levelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse level config YAML: %w", err)
	}

	// 应用默认值（向后兼容性）
	applyLevelDefaults(&levelConfig)

	// 验证必填字段
	if err := validateLevelConfig(&levelConfig); err != nil {
		return nil, fmt.Errorf("invalid level config: %w", err)
	}

	return &levelConfig, nil
}

// applyLevelDefaults 为 LevelConfig 中缺失的可选字段设置默认值
// 越界的数值直接钳制（百分比、减速系数），不拒绝加载
func applyLevelDefaults(config *LevelConfig) {
	if config.Name == "" {
		config.Name = config.ID
	}

	if config.WinCondition.Type == "" {
		config.WinCondition.Type = types.WinKillAll
	}

	if config.WinCondition.Type == types.WinReachExit && config.WinCondition.ExitSize == (mgl64.Vec3{}) {
		config.WinCondition.ExitSize = mgl64.Vec3{3, 3, 3}
	}

	for i := range config.Waves {
		for j := range config.Waves[i].Distribution {
			w := &config.Waves[i].Distribution[j]
			w.Percentage = math.Max(0, math.Min(100, w.Percentage))
		}
	}

	for i := range config.Hazards {
		h := &config.Hazards[i]
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", h.Type, i)
		}
		if h.Type == types.HazardSlow {
			if h.SlowFactor == 0 {
				h.SlowFactor = 0.5
			}
			h.SlowFactor = math.Max(0.1, math.Min(1.0, h.SlowFactor))
		}
		if h.Type == types.HazardDamage && h.DamageType == "" {
			switch h.Variant {
			case types.VariantLava:
				h.DamageType = types.DamageLava
			case types.VariantFire:
				h.DamageType = types.DamageFire
			case types.VariantAcid:
				h.DamageType = types.DamagePoison
			default:
				h.DamageType = types.DamageNormal
			}
		}
	}
}

// validateLevelConfig 验证关卡配置的完整性和合法性
func validateLevelConfig(config *LevelConfig) error {
	// 验证关卡ID
	if config.ID == "" {
		return fmt.Errorf("level ID is required")
	}

	hasZombies := false

	// 验证每个波次的配置
	for i, wave := range config.Waves {
		if wave.ZombieCount < 0 {
			return fmt.Errorf("wave %d: zombieCount cannot be negative, got %d", i, wave.ZombieCount)
		}
		if wave.SpawnDelayMs < 0 {
			return fmt.Errorf("wave %d: spawnDelayMs cannot be negative", i)
		}
		if wave.ZombieCount > 0 {
			hasZombies = true
			if len(wave.Distribution) == 0 {
				return fmt.Errorf("wave %d: distribution is required when zombieCount > 0", i)
			}
		}

		total := 0.0
		for j, w := range wave.Distribution {
			if !w.Type.IsKnown() || w.Type == types.ZombieBoss {
				return fmt.Errorf("wave %d, entry %d: unknown zombie type %q", i, j, w.Type)
			}
			total += w.Percentage
		}
		if len(wave.Distribution) > 0 && math.Abs(total-100) > 0.5 {
			// 百分比之和偏离 100 不拒绝加载，抽取时第一个类型作为兜底
			log.Printf("[Config] Warning: level %s wave %d distribution sums to %.1f, expected 100", config.ID, i, total)
		}
	}

	if hasZombies && len(config.SpawnPoints) == 0 {
		return fmt.Errorf("at least one spawn point is required")
	}

	for i, o := range config.Obstacles {
		if o.Size[0] <= 0 || o.Size[1] <= 0 || o.Size[2] <= 0 {
			return fmt.Errorf("obstacle %d: size must be positive on every axis", i)
		}
	}

	// 验证危险区域类型
	validHazards := map[types.HazardKind]bool{
		types.HazardDamage:       true,
		types.HazardInstantDeath: true,
		types.HazardSlow:         true,
		types.HazardPush:         true,
	}
	for i, h := range config.Hazards {
		if !validHazards[h.Type] {
			return fmt.Errorf("hazard %d: type must be one of damage, instant_death, slow, push, got %q", i, h.Type)
		}
		if h.Size[0] <= 0 || h.Size[1] <= 0 || h.Size[2] <= 0 {
			return fmt.Errorf("hazard %d (%s): size must be positive on every axis", i, h.Name)
		}
		if h.Type == types.HazardDamage && h.DamagePerSecond <= 0 {
			return fmt.Errorf("hazard %d (%s): damagePerSecond must be positive", i, h.Name)
		}
	}

	if config.Boss != nil && (config.Boss.AfterWave < 0 || config.Boss.AfterWave > len(config.Waves)) {
		return fmt.Errorf("boss.afterWave must be between 0 and %d, got %d", len(config.Waves), config.Boss.AfterWave)
	}

	// 验证胜利条件
	switch config.WinCondition.Type {
	case types.WinKillAll:
	case types.WinSurviveTime:
		if config.WinCondition.SurviveSeconds <= 0 {
			return fmt.Errorf("survive_time requires surviveSeconds > 0")
		}
	case types.WinKillBoss:
		if config.Boss == nil {
			return fmt.Errorf("kill_boss requires a boss definition")
		}
	case types.WinReachExit:
	default:
		return fmt.Errorf("winCondition.type must be one of: kill_all, survive_time, kill_boss, reach_exit, got %q", config.WinCondition.Type)
	}

	return nil
}

// LevelRepository 按关卡ID从文件系统读取关卡
// 文件命名约定：<dir>/level-<id>.yaml
type LevelRepository struct {
	fsys fs.FS
	dir  string
}

// NewLevelRepository 创建关卡仓库
func NewLevelRepository(fsys fs.FS, dir string) *LevelRepository {
	return &LevelRepository{fsys: fsys, dir: dir}
}

// Load 读取并解析指定关卡
// 关卡不存在时返回包装了 ErrLevelNotFound 的错误
func (r *LevelRepository) Load(levelID string) (*LevelConfig, error) {
	p := path.Join(r.dir, "level-"+levelID+".yaml")
	data, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, levelID)
		}
		return nil, fmt.Errorf("failed to read level config file %s: %w", p, err)
	}

	cfg, err := ParseLevelConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if cfg.ID != levelID {
		log.Printf("[LevelRepository] Warning: file %s declares id %q, using requested id %q", p, cfg.ID, levelID)
		cfg.ID = levelID
	}
	return cfg, nil
}

// List 返回仓库中所有关卡ID（排序后）
func (r *LevelRepository) List() ([]string, error) {
	entries, err := fs.ReadDir(r.fsys, r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list levels in %s: %w", r.dir, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "level-") || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, "level-"), ".yaml"))
	}
	sort.Strings(ids)
	return ids, nil
}
