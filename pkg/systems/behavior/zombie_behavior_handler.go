package behavior

import (
	"log"
	"math"

	"github.com/decker502/arena/pkg/combat"
	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/systems"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// fastSprintDistance 快速僵尸在此距离内冲刺
	fastSprintDistance = 8.0
	fastSprintMul      = 1.3
	// tankKnockbackScale 重装僵尸近战附带的击退强度（相对全局击退强度）
	tankKnockbackScale = 0.5
)

// handleZombieBasicBehavior 普通僵尸：水平追击玩家，进入攻击范围后按冷却近战
func (s *BehaviorSystem) handleZombieBasicBehavior(entityID ecs.EntityID, deltaTime float64) {
	s.chaseAndAttack(entityID, deltaTime, 1.0)
}

// handleZombieFastBehavior 快速僵尸：接近玩家时短暂冲刺
func (s *BehaviorSystem) handleZombieFastBehavior(entityID ecs.EntityID, deltaTime float64) {
	mul := 1.0
	if d, ok := s.distanceToPlayer(entityID); ok && d < fastSprintDistance {
		mul = fastSprintMul
	}
	s.chaseAndAttack(entityID, deltaTime, mul)
}

// handleZombieTankBehavior 重装僵尸：行为同普通僵尸，近战命中时把玩家推开
func (s *BehaviorSystem) handleZombieTankBehavior(entityID ecs.EntityID, deltaTime float64) {
	if s.chaseAndAttack(entityID, deltaTime, 1.0) {
		playerID, ok := systems.FindPlayer(s.entityManager)
		if !ok {
			return
		}
		movement, ok := ecs.GetComponent[*components.MovementComponent](s.entityManager, playerID)
		if !ok {
			return
		}
		zPos, _ := systems.PositionOf(s.entityManager, entityID)
		pPos, _ := systems.PositionOf(s.entityManager, playerID)
		zombie, _ := ecs.GetComponent[*components.ZombieComponent](s.entityManager, entityID)
		combat.Knockback(movement, zPos, pPos, zombie.AttackRange*2,
			s.cfg.Combat.KnockbackStrength*tankKnockbackScale, 0)
	}
}

// handleZombieCamouflagedBehavior 伪装僵尸：只有玩家进入揭示距离才可见
// 可见性变化时通知表现层
func (s *BehaviorSystem) handleZombieCamouflagedBehavior(entityID ecs.EntityID, deltaTime float64) {
	zombie, ok := ecs.GetComponent[*components.ZombieComponent](s.entityManager, entityID)
	if !ok {
		return
	}
	if d, ok := s.distanceToPlayer(entityID); ok {
		visible := zombie.RevealDistance <= 0 || d <= zombie.RevealDistance
		if visible != zombie.Visible {
			zombie.Visible = visible
			s.presentation.VisibilityChanged(entityID, visible)
			log.Printf("[BehaviorSystem] Camouflaged zombie %d visible=%v (distance %.1f)", entityID, visible, d)
		}
	}
	s.chaseAndAttack(entityID, deltaTime, 1.0)
}

// chaseAndAttack 追击与近战的公共逻辑
//
// 参数:
//   - entityID: 敌人实体
//   - deltaTime: 帧间隔
//   - speedMul: 本帧速度倍率
//
// 返回:
//   - bool: 本帧是否发动了一次近战攻击
func (s *BehaviorSystem) chaseAndAttack(entityID ecs.EntityID, deltaTime, speedMul float64) bool {
	transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, entityID)
	if !ok {
		return false
	}
	movement, ok := ecs.GetComponent[*components.MovementComponent](s.entityManager, entityID)
	if !ok {
		return false
	}
	zombie, ok := ecs.GetComponent[*components.ZombieComponent](s.entityManager, entityID)
	if !ok {
		return false
	}

	s.updateGroan(entityID, zombie, transform.Position, deltaTime)

	playerID, found := systems.FindPlayer(s.entityManager)
	if !found || !systems.IsAlive(s.entityManager, playerID) {
		movement.Velocity = mgl64.Vec3{}
		s.integrate(movement, transform, deltaTime)
		return false
	}
	playerPos, _ := systems.PositionOf(s.entityManager, playerID)
	distance := systems.HorizontalDistance(transform.Position, playerPos)
	dir := systems.HorizontalDirection(transform.Position, playerPos)

	if dir.Len() > 0 {
		movement.Facing = dir
		transform.Rotation = math.Atan2(dir[0], dir[2])
	}

	if distance > zombie.AttackRange {
		movement.Velocity = dir.Mul(movement.Speed * speedMul)
	} else {
		movement.Velocity = mgl64.Vec3{}
	}
	s.integrate(movement, transform, deltaTime)
	s.presentation.EntityMoved(entityID, transform.Position, transform.Rotation)

	return s.tryMeleeAttack(entityID, zombie, playerID, distance)
}

// tryMeleeAttack 冷却结束且目标在攻击范围内时发动近战
// 条件：now - LastAttackTime >= AttackCooldown 且 distance <= AttackRange
func (s *BehaviorSystem) tryMeleeAttack(entityID ecs.EntityID, zombie *components.ZombieComponent, playerID ecs.EntityID, distance float64) bool {
	if distance > zombie.AttackRange {
		return false
	}
	now := s.clock()
	if now-zombie.LastAttackTime < zombie.AttackCooldown {
		return false
	}
	zombie.LastAttackTime = now

	ec, _ := ecs.GetComponent[*components.EntityComponent](s.entityManager, entityID)
	s.damage.Apply(playerID, systems.DamageSource{
		Amount:     zombie.Damage,
		Type:       types.DamageNormal,
		SourceID:   entityID,
		SourceKind: ec.Kind,
	})
	pos, _ := systems.PositionOf(s.entityManager, entityID)
	s.audio.Play("zombie attacked", &pos)
	return true
}

// updateGroan 呻吟计时：平均每 GroanChance 秒播放一次
func (s *BehaviorSystem) updateGroan(entityID ecs.EntityID, zombie *components.ZombieComponent, pos mgl64.Vec3, deltaTime float64) {
	interval := s.cfg.Spawner.GroanChance
	if interval <= 0 {
		return
	}
	// 错开同时出生的僵尸
	next := interval * (0.5 + float64(entityID%7)/7.0)
	if zombie.GroanTimer == 0 {
		zombie.GroanTimer = next
		return
	}
	zombie.GroanTimer -= deltaTime
	if zombie.GroanTimer > 0 {
		return
	}
	zombie.GroanTimer = next
	s.audio.Play("zombie groaned", &pos)
}

func (s *BehaviorSystem) integrate(m *components.MovementComponent, t *components.TransformComponent, deltaTime float64) {
	c := s.cfg.Combat
	m.Integrate(t, deltaTime, c.Gravity, c.GroundY, c.ExternalDamping)
}

func (s *BehaviorSystem) distanceToPlayer(entityID ecs.EntityID) (float64, bool) {
	playerID, ok := systems.FindPlayer(s.entityManager)
	if !ok {
		return 0, false
	}
	a, ok := systems.PositionOf(s.entityManager, entityID)
	if !ok {
		return 0, false
	}
	b, _ := systems.PositionOf(s.entityManager, playerID)
	return systems.HorizontalDistance(a, b), true
}
