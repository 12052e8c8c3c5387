package systems

import (
	"log"

	"github.com/decker502/arena/pkg/combat"
	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

// BossMover Boss 不在特殊攻击中时的普通移动与攻击逻辑
type BossMover interface {
	MoveBoss(id ecs.EntityID, deltaTime float64)
}

// Summoner 召唤小怪
type Summoner interface {
	SpawnSummons(center mgl64.Vec3, count int, zombieType types.ZombieType) []ecs.EntityID
}

// slamRecovery 震地结算后的硬直时间（秒）
const slamRecovery = 0.4

// BossSystem Boss 阶段控制
//
// 阶段完全由当前生命值比例决定，每帧重新评估，只升不降：
// 1 普通 → 2 激怒（<=66%）→ 3 狂暴（<=33%）。进入阶段时倍率只应用一次，
// 一帧内跨越多个阶段时依次应用每个阶段的倍率。
//
// 特殊攻击按顺序选择第一个满足条件的：冲锋（中距离）、震地（近距离，阶段 2 起）、
// 召唤（阶段 2 起，独立冷却）。特殊攻击进行期间普通移动与攻击暂停。
//
// 当前 Boss 通过 ActiveBoss 访问，不存在全局 Boss 管理器。
type BossSystem struct {
	em           *ecs.EntityManager
	cfg          *config.ArenaConfig
	damage       *DamageSystem
	scheduler    *Scheduler
	clock        func() float64
	stats        game.StatsSink
	presentation game.PresentationSink
	audio        game.AudioSink

	mover    BossMover
	summoner Summoner

	bossID ecs.EntityID
}

// NewBossSystem 创建 Boss 系统
func NewBossSystem(em *ecs.EntityManager, cfg *config.ArenaConfig, damage *DamageSystem, scheduler *Scheduler, clock func() float64,
	stats game.StatsSink, presentation game.PresentationSink, audio game.AudioSink) *BossSystem {
	if stats == nil {
		stats = game.NopStats{}
	}
	if presentation == nil {
		presentation = game.NopPresentation{}
	}
	if audio == nil {
		audio = game.NopAudio{}
	}
	return &BossSystem{
		em:           em,
		cfg:          cfg,
		damage:       damage,
		scheduler:    scheduler,
		clock:        clock,
		stats:        stats,
		presentation: presentation,
		audio:        audio,
	}
}

// SetMover 注入普通移动逻辑
func (s *BossSystem) SetMover(m BossMover) {
	s.mover = m
}

// SetSummoner 注入召唤逻辑
func (s *BossSystem) SetSummoner(sm Summoner) {
	s.summoner = sm
}

// SetBoss 把实体放入 Boss 槽位；Boss 进场总是从阶段 1 开始
func (s *BossSystem) SetBoss(id ecs.EntityID) {
	if b, ok := ecs.GetComponent[*components.BossComponent](s.em, id); ok {
		b.Phase = 1
		s.bossID = id
		log.Printf("[BossSystem] Boss %s (%d) entered the arena", b.Name, id)
		s.audio.Play("boss roar", nil)
		return
	}
	log.Printf("[BossSystem] Warning: entity %d has no BossComponent", id)
}

// ActiveBoss 当前 Boss 槽位中的实体
func (s *BossSystem) ActiveBoss() (ecs.EntityID, bool) {
	return s.bossID, s.bossID != 0
}

// Phase 当前 Boss 阶段（没有 Boss 时为 0）
func (s *BossSystem) Phase() int {
	if b, ok := ecs.GetComponent[*components.BossComponent](s.em, s.bossID); ok {
		return b.Phase
	}
	return 0
}

// Clear 清空 Boss 槽位（关卡切换时使用）
func (s *BossSystem) Clear() {
	s.bossID = 0
}

// OnEntityDeath 死亡回调：Boss 死亡时触发击败流程
func (s *BossSystem) OnEntityDeath(id ecs.EntityID, kind types.EntityKind, _ DamageSource) {
	if kind == types.KindBoss && id == s.bossID {
		s.defeat(id)
	}
}

// Update 更新 Boss
func (s *BossSystem) Update(deltaTime float64) {
	id := s.bossID
	if id == 0 {
		return
	}
	boss, ok := ecs.GetComponent[*components.BossComponent](s.em, id)
	if !ok {
		s.bossID = 0
		return
	}
	health, ok := ecs.GetComponent[*components.HealthComponent](s.em, id)
	if !ok {
		return
	}

	if health.IsDead || health.Health <= 0 {
		s.defeat(id)
		return
	}
	if boss.Defeated {
		return
	}

	s.EvaluatePhase(id)

	if boss.Special.InProgress() {
		s.updateSpecial(id, boss, deltaTime)
		return
	}

	if s.trySpecial(id, boss) {
		return
	}

	if s.mover != nil {
		s.mover.MoveBoss(id, deltaTime)
	}
}

// EvaluatePhase 按生命值比例推进阶段（只升不降）
//
// 返回:
//   - int: 评估后的阶段
func (s *BossSystem) EvaluatePhase(id ecs.EntityID) int {
	boss, ok := ecs.GetComponent[*components.BossComponent](s.em, id)
	if !ok {
		return 0
	}
	health, ok := ecs.GetComponent[*components.HealthComponent](s.em, id)
	if !ok {
		return boss.Phase
	}

	target := 1
	ratio := health.Ratio()
	if ratio <= s.cfg.Boss.Phase3Threshold {
		target = 3
	} else if ratio <= s.cfg.Boss.Phase2Threshold {
		target = 2
	}

	for boss.Phase < target {
		boss.Phase++
		s.enterPhase(id, boss, boss.Phase)
	}
	return boss.Phase
}

// enterPhase 应用阶段倍率（每个阶段只调用一次）
func (s *BossSystem) enterPhase(id ecs.EntityID, boss *components.BossComponent, phase int) {
	bc := s.cfg.Boss
	switch phase {
	case 2:
		boss.SpecialCooldown *= bc.Phase2SpecialCooldownMul
		log.Printf("[BossSystem] %s enraged (phase 2), special cooldown %.2fs", boss.Name, boss.SpecialCooldown)
		s.audio.Play("boss enraged", nil)
	case 3:
		boss.SpecialCooldown *= bc.Phase3SpecialCooldownMul
		boss.SpeedMultiplier *= bc.Phase3SpeedMul
		boss.DamageMultiplier *= bc.Phase3DamageMul

		if m, ok := ecs.GetComponent[*components.MovementComponent](s.em, id); ok {
			ratio := 1.0
			if m.BaseSpeed > 0 {
				ratio = m.Speed / m.BaseSpeed
			}
			m.BaseSpeed *= bc.Phase3SpeedMul
			m.Speed = m.BaseSpeed * ratio
		}
		if z, ok := ecs.GetComponent[*components.ZombieComponent](s.em, id); ok {
			z.Damage *= bc.Phase3DamageMul
			z.AttackCooldown *= bc.Phase3AttackCooldownMul
		}
		log.Printf("[BossSystem] %s berserk (phase 3), special cooldown %.2fs", boss.Name, boss.SpecialCooldown)
		s.audio.Play("boss berserk", nil)
	}
}

// SelectSpecial 按距离与阶段选择特殊攻击（第一个满足条件的胜出）
//
// 参数:
//   - boss: Boss 状态
//   - distance: 到目标的水平距离
//   - now: 当前模拟时间
func (s *BossSystem) SelectSpecial(boss *components.BossComponent, distance, now float64) components.SpecialAttackKind {
	bc := s.cfg.Boss
	specialReady := now-boss.LastSpecialTime >= boss.SpecialCooldown

	if specialReady && distance >= bc.ChargeMinRange && distance <= bc.ChargeMaxRange {
		return components.SpecialCharge
	}
	if specialReady && boss.Phase >= 2 && distance < bc.SlamRange {
		return components.SpecialGroundSlam
	}
	if boss.Phase >= 2 && now-boss.LastSummonTime >= boss.SummonCooldown {
		return components.SpecialSummon
	}
	return components.SpecialNone
}

func (s *BossSystem) trySpecial(id ecs.EntityID, boss *components.BossComponent) bool {
	playerID, ok := FindPlayer(s.em)
	if !ok || !IsAlive(s.em, playerID) {
		return false
	}
	bossPos, _ := PositionOf(s.em, id)
	playerPos, _ := PositionOf(s.em, playerID)
	now := s.clock()

	kind := s.SelectSpecial(boss, HorizontalDistance(bossPos, playerPos), now)
	if kind == components.SpecialNone {
		return false
	}

	bc := s.cfg.Boss
	boss.Special = components.SpecialAttackState{Kind: kind}
	switch kind {
	case components.SpecialCharge:
		boss.LastSpecialTime = now
		boss.Special.Duration = bc.ChargeDuration
		boss.Special.Direction = HorizontalDirection(bossPos, playerPos)
		s.audio.Play("boss charge", &bossPos)
	case components.SpecialGroundSlam:
		boss.LastSpecialTime = now
		boss.Special.Duration = bc.SlamWindup + slamRecovery
		s.audio.Play("boss slam windup", &bossPos)
	case components.SpecialSummon:
		boss.LastSummonTime = now
		boss.Special.Duration = bc.SummonDuration
		s.audio.Play("boss summon", &bossPos)
	}

	if m, ok := ecs.GetComponent[*components.MovementComponent](s.em, id); ok {
		m.Velocity = mgl64.Vec3{}
	}
	log.Printf("[BossSystem] %s started special attack %s", boss.Name, kind)
	return true
}

// updateSpecial 推进进行中的特殊攻击
func (s *BossSystem) updateSpecial(id ecs.EntityID, boss *components.BossComponent, deltaTime float64) {
	sp := &boss.Special
	sp.Elapsed += deltaTime

	transform, okT := ecs.GetComponent[*components.TransformComponent](s.em, id)
	movement, okM := ecs.GetComponent[*components.MovementComponent](s.em, id)
	if !okT || !okM {
		boss.Special = components.SpecialAttackState{}
		return
	}

	switch sp.Kind {
	case components.SpecialCharge:
		movement.Velocity = sp.Direction.Mul(movement.Speed * s.cfg.Boss.ChargeSpeedMul)
		s.integrate(movement, transform, deltaTime)
		if !sp.Resolved {
			s.chargeContact(id)
		}

	case components.SpecialGroundSlam:
		movement.Velocity = mgl64.Vec3{}
		s.integrate(movement, transform, deltaTime)
		if !sp.Resolved && sp.Elapsed >= s.cfg.Boss.SlamWindup {
			sp.Resolved = true
			s.groundSlam(id, transform.Position)
		}

	case components.SpecialSummon:
		movement.Velocity = mgl64.Vec3{}
		s.integrate(movement, transform, deltaTime)
		if !sp.Resolved {
			sp.Resolved = true
			if s.summoner != nil {
				spawned := s.summoner.SpawnSummons(transform.Position, s.cfg.Boss.SummonCount, s.cfg.Boss.SummonType)
				log.Printf("[BossSystem] %s summoned %d minions", boss.Name, len(spawned))
			}
		}
	}

	if sp.Elapsed >= sp.Duration {
		movement.Velocity = mgl64.Vec3{}
		boss.Special = components.SpecialAttackState{}
	}
}

func (s *BossSystem) integrate(m *components.MovementComponent, t *components.TransformComponent, deltaTime float64) {
	c := s.cfg.Combat
	m.Integrate(t, deltaTime, c.Gravity, c.GroundY, c.ExternalDamping)
}

// chargeContact 冲锋撞到玩家时造成一次接触伤害
func (s *BossSystem) chargeContact(id ecs.EntityID) {
	playerID, ok := FindPlayer(s.em)
	if !ok || !IsAlive(s.em, playerID) {
		return
	}
	bossBox, ok := worldAABBOf(s.em, id)
	if !ok {
		return
	}
	playerBox, ok := worldAABBOf(s.em, playerID)
	if !ok || !bossBox.Intersects(playerBox) {
		return
	}

	boss, _ := ecs.GetComponent[*components.BossComponent](s.em, id)
	zombie, ok := ecs.GetComponent[*components.ZombieComponent](s.em, id)
	if !ok {
		return
	}
	boss.Special.Resolved = true
	s.damage.Apply(playerID, DamageSource{
		Amount:     zombie.Damage * s.cfg.Combat.ContactDamageMultiplier,
		Type:       types.DamageNormal,
		SourceID:   id,
		SourceKind: types.KindBoss,
	})
	if m, ok := ecs.GetComponent[*components.MovementComponent](s.em, playerID); ok {
		combat.Knockback(m, bossBox.Center(), playerBox.Center(), bossBox.Max.Sub(bossBox.Min).Len(),
			s.cfg.Combat.KnockbackStrength, s.cfg.Combat.KnockbackUpward)
	}
}

// groundSlam 震地：以 Boss 为中心的通用爆炸（二次衰减，下限 30%）
func (s *BossSystem) groundSlam(id ecs.EntityID, center mgl64.Vec3) {
	zombie, ok := ecs.GetComponent[*components.ZombieComponent](s.em, id)
	if !ok {
		return
	}
	radius := s.cfg.Boss.SlamRadius
	base := zombie.Damage * s.cfg.Boss.SlamDamageMul

	s.presentation.Explosion(center, radius)
	s.audio.Play("ground slam", &center)

	targets := make([]combat.Target, 0, 1)
	if playerID, ok := FindPlayer(s.em); ok && IsAlive(s.em, playerID) {
		if box, ok := worldAABBOf(s.em, playerID); ok {
			targets = append(targets, combat.Target{ID: playerID, Position: box.ClosestPoint(center)})
		}
	}

	falloff := combat.ExplosionFalloff.WithMinDamage(s.cfg.Combat.ExplosionFloor())
	combat.ApplyAreaDamage(center, radius, base, targets, id, false, falloff, func(hit combat.AreaHit) {
		s.damage.Apply(hit.ID, DamageSource{
			Amount:     hit.Damage,
			Type:       types.DamageExplosion,
			SourceID:   id,
			SourceKind: types.KindBoss,
		})
		if m, ok := ecs.GetComponent[*components.MovementComponent](s.em, hit.ID); ok {
			pos, _ := PositionOf(s.em, hit.ID)
			combat.Knockback(m, center, pos, radius, s.cfg.Combat.KnockbackStrength, s.cfg.Combat.KnockbackUpward)
		}
	})
}

// defeat Boss 击败流程，只执行一次
// 奖励分数立即发放，Boss 在延迟后才离开槽位并被删除，不阻塞当前 tick
func (s *BossSystem) defeat(id ecs.EntityID) {
	boss, ok := ecs.GetComponent[*components.BossComponent](s.em, id)
	if !ok || boss.Defeated {
		return
	}
	boss.Defeated = true
	boss.Special = components.SpecialAttackState{}
	if m, ok := ecs.GetComponent[*components.MovementComponent](s.em, id); ok {
		m.Velocity = mgl64.Vec3{}
	}

	s.stats.AddScore(boss.BonusScore)
	pos, _ := PositionOf(s.em, id)
	s.presentation.Explosion(pos, 3)
	s.audio.Play("boss defeated", &pos)
	log.Printf("[BossSystem] %s defeated, bonus %d, removal in %.1fs", boss.Name, boss.BonusScore, s.cfg.Boss.RemovalDelay)

	s.scheduler.Schedule(s.cfg.Boss.RemovalDelay, 0, "boss-removal", func() {
		if s.bossID == id {
			s.bossID = 0
		}
		if ec, ok := ecs.GetComponent[*components.EntityComponent](s.em, id); ok {
			ec.Active = false
		}
		s.em.DestroyEntity(id)
	})
}

// worldAABBOf 实体世界包围盒
func worldAABBOf(em *ecs.EntityManager, id ecs.EntityID) (components.AABB, bool) {
	t, ok := ecs.GetComponent[*components.TransformComponent](em, id)
	if !ok {
		return components.AABB{}, false
	}
	box, ok := ecs.GetComponent[*components.BoundingBoxComponent](em, id)
	if !ok {
		return components.AABB{}, false
	}
	return box.WorldAABB(t), true
}
