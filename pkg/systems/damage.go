package systems

import (
	"log"

	"github.com/decker502/arena/pkg/combat"
	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/types"
)

// DamageSource 一次伤害的来源描述
type DamageSource struct {
	Amount     float64
	Type       types.DamageType
	SourceID   ecs.EntityID
	SourceKind types.EntityKind

	// Hazard 危险区域的持续伤害不受玩家无敌窗口限制，也不刷新窗口
	Hazard bool
}

// DeathHandler 实体死亡回调
type DeathHandler func(id ecs.EntityID, kind types.EntityKind, src DamageSource)

// DamageSystem 点伤害的唯一入口
//
// 负责只有受击实体才知道的修正：
//   - 已死亡实体忽略所有伤害
//   - 玩家无敌窗口：now - LastDamageTime >= window 才接受伤害
//   - 抗火敌人受火焰/爆炸伤害按倍率减免
//
// 扣血本身交给 combat.ApplyPointDamage；致死时按登记顺序通知所有死亡回调，且只通知一次。
type DamageSystem struct {
	em       *ecs.EntityManager
	cfg      *config.ArenaConfig
	clock    func() float64
	audio    game.AudioSink
	handlers []DeathHandler
}

// NewDamageSystem 创建伤害系统
func NewDamageSystem(em *ecs.EntityManager, cfg *config.ArenaConfig, clock func() float64, audio game.AudioSink) *DamageSystem {
	if audio == nil {
		audio = game.NopAudio{}
	}
	return &DamageSystem{em: em, cfg: cfg, clock: clock, audio: audio}
}

// OnDeath 登记死亡回调
func (ds *DamageSystem) OnDeath(h DeathHandler) {
	ds.handlers = append(ds.handlers, h)
}

// Apply 对目标施加点伤害
//
// 返回:
//   - float64: 实际扣除的生命值（被忽略时为 0）
func (ds *DamageSystem) Apply(target ecs.EntityID, src DamageSource) float64 {
	health, kind, ok := ds.damagable(target)
	if !ok {
		return 0
	}

	amount := src.Amount
	now := ds.clock()

	if kind == types.KindPlayer {
		if ds.cfg.Debug.Enabled && ds.cfg.Debug.GodMode {
			return 0
		}
		player, ok := ecs.GetComponent[*components.PlayerComponent](ds.em, target)
		if ok && !src.Hazard {
			if now-player.LastDamageTime < player.InvulnerabilityWindow {
				return 0
			}
			player.LastDamageTime = now
		}
	}

	if zombie, ok := ecs.GetComponent[*components.ZombieComponent](ds.em, target); ok {
		if zombie.FireResistant && src.Type.IsFireLike() {
			amount *= ds.cfg.Combat.FireResistMultiplier
		}
	}

	applied, killed := combat.ApplyPointDamage(health, amount)
	if applied > 0 && kind == types.KindPlayer {
		ds.audio.Play("player hurt", nil)
	}
	if killed {
		ds.notifyDeath(target, kind, src)
	}
	return applied
}

// Kill 直接把目标生命值清零（即死区域），不受无敌窗口限制
//
// 返回:
//   - bool: 目标是否由本次调用致死
func (ds *DamageSystem) Kill(target ecs.EntityID, src DamageSource) bool {
	health, kind, ok := ds.damagable(target)
	if !ok {
		return false
	}
	if kind == types.KindPlayer && ds.cfg.Debug.Enabled && ds.cfg.Debug.GodMode {
		return false
	}
	if !combat.Kill(health) {
		return false
	}
	ds.notifyDeath(target, kind, src)
	return true
}

// damagable 获取可受伤实体的生命值组件；失活、已死亡或缺少组件时返回 false
func (ds *DamageSystem) damagable(id ecs.EntityID) (*components.HealthComponent, types.EntityKind, bool) {
	entity, ok := ecs.GetComponent[*components.EntityComponent](ds.em, id)
	if !ok || !entity.Active {
		return nil, types.KindUnknown, false
	}
	health, ok := ecs.GetComponent[*components.HealthComponent](ds.em, id)
	if !ok || health.IsDead {
		return nil, types.KindUnknown, false
	}
	return health, entity.Kind, true
}

func (ds *DamageSystem) notifyDeath(id ecs.EntityID, kind types.EntityKind, src DamageSource) {
	log.Printf("[DamageSystem] Entity %d (%s) killed by %d (%s, %s)", id, kind, src.SourceID, src.SourceKind, src.Type)
	for _, h := range ds.handlers {
		h(id, kind, src)
	}
}
