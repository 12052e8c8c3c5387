package behavior

import (
	"log"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/systems"
	"github.com/decker502/arena/pkg/types"
)

// BehaviorSystem 处理敌人的行为逻辑
// 根据 ZombieComponent.Type 标签分发到对应的行为处理函数（普通、快速、重装、伪装）
// Boss 的普通移动也由这里提供，BossSystem 在没有特殊攻击时调用 MoveBoss
type BehaviorSystem struct {
	entityManager   *ecs.EntityManager
	cfg             *config.ArenaConfig
	damage          *systems.DamageSystem
	clock           func() float64
	presentation    game.PresentationSink
	audio           game.AudioSink
	logFrameCounter int // 日志输出计数器（避免全局变量）
}

// 日志输出间隔常量
const LogOutputFrameInterval = 100 // 日志输出间隔（每N帧输出一次）

// NewBehaviorSystem 创建一个新的行为系统
// 参数:
//   - em: EntityManager 实例
//   - cfg: 竞技场配置（重力、击退等移动参数）
//   - damage: 伤害系统（近战攻击）
//   - clock: 当前模拟时间
//   - presentation: 表现层（位置、可见性通知）
//   - audio: 音频层
func NewBehaviorSystem(em *ecs.EntityManager, cfg *config.ArenaConfig, damage *systems.DamageSystem, clock func() float64,
	presentation game.PresentationSink, audio game.AudioSink) *BehaviorSystem {
	if presentation == nil {
		presentation = game.NopPresentation{}
	}
	if audio == nil {
		audio = game.NopAudio{}
	}
	return &BehaviorSystem{
		entityManager: em,
		cfg:           cfg,
		damage:        damage,
		clock:         clock,
		presentation:  presentation,
		audio:         audio,
	}
}

// Update 更新所有敌人
// Boss 由 BossSystem 驱动，这里跳过
func (s *BehaviorSystem) Update(deltaTime float64) {
	zombies := s.queryZombies()

	if len(zombies) > 0 {
		s.logFrameCounter++
		if s.logFrameCounter%LogOutputFrameInterval == 1 {
			log.Printf("[BehaviorSystem] 更新 %d 个敌人", len(zombies))
		}
	}

	for _, entityID := range zombies {
		zombie, ok := ecs.GetComponent[*components.ZombieComponent](s.entityManager, entityID)
		if !ok {
			log.Printf("[BehaviorSystem] ⚠️ 实体 %d 缺少 ZombieComponent", entityID)
			continue
		}

		switch zombie.Type {
		case types.ZombieBasic:
			s.handleZombieBasicBehavior(entityID, deltaTime)
		case types.ZombieFast:
			s.handleZombieFastBehavior(entityID, deltaTime)
		case types.ZombieTank:
			s.handleZombieTankBehavior(entityID, deltaTime)
		case types.ZombieCamouflaged:
			s.handleZombieCamouflagedBehavior(entityID, deltaTime)
		default:
			log.Printf("[BehaviorSystem] 未知僵尸类型 %q (entity %d)，按普通僵尸处理", zombie.Type, entityID)
			s.handleZombieBasicBehavior(entityID, deltaTime)
		}
	}
}

// MoveBoss Boss 的普通移动与近战（实现 systems.BossMover）
func (s *BehaviorSystem) MoveBoss(id ecs.EntityID, deltaTime float64) {
	if !systems.IsAlive(s.entityManager, id) {
		return
	}
	s.chaseAndAttack(id, deltaTime, 1.0)
}

// queryZombies 所有存活的普通敌人（不含 Boss）
func (s *BehaviorSystem) queryZombies() []ecs.EntityID {
	ids := ecs.GetEntitiesWith2[*components.ZombieComponent, *components.EntityComponent](s.entityManager)
	out := ids[:0]
	for _, id := range ids {
		ec, _ := ecs.GetComponent[*components.EntityComponent](s.entityManager, id)
		if ec.Kind != types.KindZombie {
			continue
		}
		if !systems.IsAlive(s.entityManager, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
