package entities

import (
	"fmt"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

// NewZombieEntity 创建僵尸实体
// 属性全部来自僵尸属性配置，行为由 ZombieComponent.Type 选择
//
// 参数:
//   - em: 实体管理器
//   - statsConfig: 僵尸属性配置
//   - zombieType: 僵尸子类型
//   - pos: 出生位置（底面中心）
//   - waveIndex: 所属波次，召唤物传 -1
//
// 返回:
//   - ecs.EntityID: 创建的僵尸实体ID，如果失败返回 0
//   - error: 如果创建失败返回错误信息
func NewZombieEntity(em *ecs.EntityManager, statsConfig *config.ZombieStatsConfig, zombieType types.ZombieType, pos mgl64.Vec3, waveIndex int) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	if statsConfig == nil {
		return 0, fmt.Errorf("zombie stats config cannot be nil")
	}

	stats, ok := statsConfig.GetZombieStats(zombieType)
	if !ok {
		return 0, fmt.Errorf("no stats for zombie type %q", zombieType)
	}

	kind := types.KindZombie
	if zombieType == types.ZombieBoss {
		kind = types.KindBoss
	}

	entityID := em.CreateEntity()
	em.AddComponent(entityID, &components.EntityComponent{Kind: kind, Active: true})
	em.AddComponent(entityID, components.NewTransform(pos))
	em.AddComponent(entityID, components.NewCenteredBox(stats.Width, stats.Height, stats.Width))
	em.AddComponent(entityID, components.NewHealth(stats.Health))

	movement := components.NewMovement(stats.Speed)
	movement.KnockbackResistance = stats.KnockbackResistance
	em.AddComponent(entityID, movement)

	em.AddComponent(entityID, &components.ZombieComponent{
		Type:           zombieType,
		Damage:         stats.Damage,
		AttackRange:    stats.AttackRange,
		AttackCooldown: stats.AttackCooldown(),
		LastAttackTime: negInf,
		FireResistant:  stats.FireResistant,
		ScoreValue:     stats.ScoreValue,
		WaveIndex:      waveIndex,
		RevealDistance: stats.RevealDistance,
		// 伪装僵尸出生时不可见
		Visible: stats.RevealDistance <= 0,
	})

	return entityID, nil
}

// NewBossEntity 创建 Boss 实体（僵尸 + Boss 阶段状态）
//
// 参数:
//   - em: 实体管理器
//   - statsConfig: 僵尸属性配置（使用 boss 条目）
//   - bossConfig: Boss 调参
//   - name: Boss 名称
//   - pos: 出生位置
func NewBossEntity(em *ecs.EntityManager, statsConfig *config.ZombieStatsConfig, bossConfig config.BossConfig, name string, pos mgl64.Vec3) (ecs.EntityID, error) {
	entityID, err := NewZombieEntity(em, statsConfig, types.ZombieBoss, pos, -1)
	if err != nil {
		return 0, fmt.Errorf("failed to create boss %s: %w", name, err)
	}

	if name == "" {
		name = "Boss"
	}

	em.AddComponent(entityID, &components.BossComponent{
		Name:             name,
		Phase:            1,
		SpecialCooldown:  bossConfig.SpecialCooldown,
		LastSpecialTime:  negInf,
		SummonCooldown:   bossConfig.SummonCooldown,
		LastSummonTime:   negInf,
		SpeedMultiplier:  1,
		DamageMultiplier: 1,
		BonusScore:       bossConfig.BonusScore,
	})

	return entityID, nil
}
