package systems

import (
	"log"
	"math"

	"github.com/decker502/arena/pkg/combat"
	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/entities"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

// Explosion 一次范围伤害事件
type Explosion struct {
	Center       mgl64.Vec3
	Radius       float64
	Damage       float64 // 正中目标受到的伤害
	SplashDamage float64 // 溅射伤害基数（按火箭弹衰减公式）
	DamageType   types.DamageType
	OwnerID      ecs.EntityID
	OwnerKind    types.EntityKind

	// DirectHit 火箭弹直接撞上的实体，受到完整 Damage；0 表示没有
	DirectHit ecs.EntityID
}

// ProjectileSystem 弹丸模拟
//
// 拥有所有弹丸实体，同时把它们以触发器形式登记进物理系统。
// 每帧分两步执行（中间不插入其他系统）：
//   - Advance: 推进存在时间与位置，处理寿命、射程、越界
//   - ResolveHits: 命中检测，先检测敌方实体，未命中再检测静态障碍物
type ProjectileSystem struct {
	em           *ecs.EntityManager
	physics      *PhysicsSystem
	damage       *DamageSystem
	cfg          *config.ArenaConfig
	presentation game.PresentationSink
	audio        game.AudioSink

	sequence uint64
}

// NewProjectileSystem 创建弹丸系统
func NewProjectileSystem(em *ecs.EntityManager, physics *PhysicsSystem, damage *DamageSystem, cfg *config.ArenaConfig,
	presentation game.PresentationSink, audio game.AudioSink) *ProjectileSystem {
	if presentation == nil {
		presentation = game.NopPresentation{}
	}
	if audio == nil {
		audio = game.NopAudio{}
	}
	return &ProjectileSystem{
		em:           em,
		physics:      physics,
		damage:       damage,
		cfg:          cfg,
		presentation: presentation,
		audio:        audio,
	}
}

// CreateProjectile 创建普通弹丸，速度 = direction(归一化) × speed
// 活跃弹丸达到上限时淘汰最旧的一个
//
// 返回:
//   - ecs.EntityID: 弹丸ID，创建失败时返回 0
func (s *ProjectileSystem) CreateProjectile(position, direction mgl64.Vec3, damage, speed float64, owner ecs.EntityID) ecs.EntityID {
	return s.spawn(position, direction, speed, damage, types.DamageNormal, owner, "", nil)
}

// CreateRocket 创建火箭弹：受轻微重力影响，寿命结束或撞击时爆炸
func (s *ProjectileSystem) CreateRocket(position, direction mgl64.Vec3, damage, splashDamage, radius, speed float64, owner ecs.EntityID) ecs.EntityID {
	area := &components.AreaEffect{
		Radius:       radius,
		SplashDamage: splashDamage,
		Gravity:      s.cfg.Projectile.RocketGravity,
	}
	return s.spawn(position, direction, speed, damage, types.DamageExplosion, owner, "rocket", area)
}

// FireWeapon 按武器参数发射（霰弹枪一次发射多枚弹丸）
//
// 返回:
//   - []ecs.EntityID: 本次发射创建的弹丸
func (s *ProjectileSystem) FireWeapon(w *components.WeaponState, muzzle, direction mgl64.Vec3, owner ecs.EntityID) []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, w.Pellets)
	flat := mgl64.Vec3{direction[0], 0, direction[2]}
	if flat.Len() == 0 {
		return ids
	}
	flat = flat.Normalize()

	pellets := w.Pellets
	if pellets < 1 {
		pellets = 1
	}

	for i := 0; i < pellets; i++ {
		dir := flat
		if pellets > 1 && w.Spread > 0 {
			angle := -w.Spread/2 + w.Spread*float64(i)/float64(pellets-1)
			dir = mgl64.Rotate3DY(angle).Mul3x1(flat)
		}

		var id ecs.EntityID
		if w.Kind == types.WeaponRocket {
			area := &components.AreaEffect{
				Radius:       w.SplashRadius,
				SplashDamage: w.SplashDamage,
				Gravity:      s.cfg.Projectile.RocketGravity,
			}
			id = s.spawn(muzzle, dir, w.ProjectileSpeed, w.Damage, w.DamageType, owner, w.Name, area)
		} else {
			id = s.spawn(muzzle, dir, w.ProjectileSpeed, w.Damage, w.DamageType, owner, w.Name, nil)
		}
		if id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *ProjectileSystem) spawn(position, direction mgl64.Vec3, speed, damage float64, dt types.DamageType,
	owner ecs.EntityID, weapon string, area *components.AreaEffect) ecs.EntityID {
	if direction.Len() == 0 {
		log.Printf("[ProjectileSystem] Ignored projectile with zero direction from %d", owner)
		return 0
	}

	live := s.liveProjectiles()
	for len(live) >= s.cfg.Projectile.MaxActive {
		oldest := live[0]
		s.deactivate(oldest)
		live = live[1:]
	}

	ownerKind := types.KindUnknown
	if ec, ok := ecs.GetComponent[*components.EntityComponent](s.em, owner); ok {
		ownerKind = ec.Kind
	}

	s.sequence++
	id, err := entities.NewProjectileEntity(s.em, entities.ProjectileParams{
		Position:       position,
		Velocity:       direction.Normalize().Mul(speed),
		Damage:         damage,
		DamageType:     dt,
		OwnerID:        owner,
		OwnerKind:      ownerKind,
		Weapon:         weapon,
		Lifetime:       s.cfg.Projectile.LifetimeSeconds,
		MaxRange:       s.cfg.Projectile.MaxRange,
		Radius:         s.cfg.Projectile.Radius,
		CollisionDelay: s.cfg.Projectile.CollisionDelay,
		Sequence:       s.sequence,
		Area:           area,
	})
	if err != nil {
		log.Printf("[ProjectileSystem] Failed to create projectile: %v", err)
		return 0
	}
	s.physics.AddEntity(id, false)
	return id
}

// liveProjectiles 所有活跃弹丸，按创建序号升序（最旧的在前）
func (s *ProjectileSystem) liveProjectiles() []ecs.EntityID {
	ids := ecs.GetEntitiesWith2[*components.ProjectileComponent, *components.EntityComponent](s.em)
	live := ids[:0]
	for _, id := range ids {
		ec, _ := ecs.GetComponent[*components.EntityComponent](s.em, id)
		if ec.Active && !s.em.IsMarkedForDestroy(id) {
			live = append(live, id)
		}
	}
	// 实体ID单调递增，与创建序号顺序一致
	return live
}

// ActiveCount 活跃弹丸数量
func (s *ProjectileSystem) ActiveCount() int {
	return len(s.liveProjectiles())
}

// Update 推进弹丸并处理命中
func (s *ProjectileSystem) Update(deltaTime float64) {
	s.Advance(deltaTime)
	s.ResolveHits()
}

// Advance 推进所有弹丸一帧
func (s *ProjectileSystem) Advance(deltaTime float64) {
	for _, id := range s.liveProjectiles() {
		proj, _ := ecs.GetComponent[*components.ProjectileComponent](s.em, id)
		transform, ok := ecs.GetComponent[*components.TransformComponent](s.em, id)
		if !ok {
			s.deactivate(id)
			continue
		}
		movement, ok := ecs.GetComponent[*components.MovementComponent](s.em, id)
		if !ok {
			s.deactivate(id)
			continue
		}

		// 上一帧已参与命中检测的弹丸才推进扫掠起点；首次检测的线段从枪口开始
		armed := true
		if lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](s.em, id); ok {
			armed = lifetime.CurrentLifetime > proj.CollisionDelay
			if lifetime.Advance(deltaTime) {
				s.expire(id, proj, transform.Position)
				continue
			}
		}

		offset := transform.Position.Sub(proj.Origin)
		if math.Hypot(offset[0], offset[2]) > proj.MaxRange {
			s.expire(id, proj, transform.Position)
			continue
		}

		if armed {
			proj.PrevPosition = transform.Position
		}
		if proj.Area != nil {
			movement.Velocity[1] -= proj.Area.Gravity * deltaTime
		}
		transform.Position = transform.Position.Add(movement.Velocity.Mul(deltaTime))

		if !s.physics.Bounds().ContainsPoint(transform.Position) {
			s.deactivate(id)
			continue
		}

		// 火箭弹落地即爆炸
		if proj.Area != nil && transform.Position[1] <= s.cfg.Combat.GroundY {
			transform.Position[1] = s.cfg.Combat.GroundY
			s.detonate(id, proj, transform.Position, 0)
		}
	}
}

// expire 寿命或射程耗尽：火箭弹在当前位置爆炸，普通弹丸直接失效
func (s *ProjectileSystem) expire(id ecs.EntityID, proj *components.ProjectileComponent, pos mgl64.Vec3) {
	if proj.Area != nil {
		s.detonate(id, proj, pos, 0)
		return
	}
	s.deactivate(id)
}

// ResolveHits 命中检测
//
// 只有存在时间超过 CollisionDelay 的弹丸参与检测。检测使用扫掠线段
// （上一帧位置 → 当前位置）与按弹丸半径扩大后的目标包围盒求交，
// 因此高速弹丸不会穿过薄目标。线段终点落在盒内即等价于点在扩大包围盒内。
// 第一次检测的线段从发射点开始，覆盖延迟期间飞过的全部路径，
// 贴身的敌人同样会被命中。
func (s *ProjectileSystem) ResolveHits() {
	for _, id := range s.liveProjectiles() {
		proj, _ := ecs.GetComponent[*components.ProjectileComponent](s.em, id)
		lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](s.em, id)
		if !ok || lifetime.CurrentLifetime <= proj.CollisionDelay {
			continue
		}
		transform, ok := ecs.GetComponent[*components.TransformComponent](s.em, id)
		if !ok {
			continue
		}

		from, to := proj.PrevPosition, transform.Position
		movement, _ := ecs.GetComponent[*components.MovementComponent](s.em, id)

		if target, t, hit := s.firstTargetHit(proj, from, to); hit {
			hitPos := from.Add(to.Sub(from).Mul(t))
			if proj.Area != nil {
				s.detonate(id, proj, hitPos, target)
				continue
			}
			s.damage.Apply(target, DamageSource{
				Amount:     proj.Damage,
				Type:       proj.DamageType,
				SourceID:   proj.OwnerID,
				SourceKind: proj.OwnerKind,
			})
			dir := mgl64.Vec3{}
			if movement != nil && movement.Velocity.Len() > 0 {
				dir = movement.Velocity.Normalize()
			}
			s.presentation.HitEffect(hitPos, dir)
			s.deactivate(id)
			continue
		}

		if t, hit := s.firstObstacleHit(proj, from, to); hit {
			hitPos := from.Add(to.Sub(from).Mul(t))
			if proj.Area != nil {
				s.detonate(id, proj, hitPos, 0)
				continue
			}
			s.deactivate(id)
		}
	}
}

// firstTargetHit 线段最先碰到的敌方实体（同一参数时取 ID 较小者）
func (s *ProjectileSystem) firstTargetHit(proj *components.ProjectileComponent, from, to mgl64.Vec3) (ecs.EntityID, float64, bool) {
	var best ecs.EntityID
	bestT := math.Inf(1)

	for _, targetID := range s.targetsFor(proj) {
		if targetID == proj.OwnerID {
			continue
		}
		box, ok := s.worldBox(targetID)
		if !ok {
			continue
		}
		if t, hit := box.Expand(proj.Radius).SegmentEntry(from, to); hit && t < bestT {
			best, bestT = targetID, t
		}
	}
	return best, bestT, best != 0
}

// firstObstacleHit 线段最先碰到的静态障碍物
func (s *ProjectileSystem) firstObstacleHit(proj *components.ProjectileComponent, from, to mgl64.Vec3) (float64, bool) {
	bestT := math.Inf(1)
	for _, staticID := range s.physics.StaticEntities() {
		box, ok := s.worldBox(staticID)
		if !ok {
			continue
		}
		if t, hit := box.Expand(proj.Radius).SegmentEntry(from, to); hit && t < bestT {
			bestT = t
		}
	}
	return bestT, !math.IsInf(bestT, 1)
}

// targetsFor 弹丸可以命中的实体：玩家的弹丸打敌人，敌人的弹丸打玩家
func (s *ProjectileSystem) targetsFor(proj *components.ProjectileComponent) []ecs.EntityID {
	candidates := ecs.GetEntitiesWith2[*components.EntityComponent, *components.HealthComponent](s.em)
	out := candidates[:0]
	for _, id := range candidates {
		ec, _ := ecs.GetComponent[*components.EntityComponent](s.em, id)
		health, _ := ecs.GetComponent[*components.HealthComponent](s.em, id)
		if !ec.Active || health.IsDead {
			continue
		}
		if proj.OwnerKind.IsEnemy() {
			if ec.Kind == types.KindPlayer {
				out = append(out, id)
			}
		} else if ec.Kind.IsEnemy() {
			out = append(out, id)
		}
	}
	return out
}

func (s *ProjectileSystem) worldBox(id ecs.EntityID) (components.AABB, bool) {
	t, ok := ecs.GetComponent[*components.TransformComponent](s.em, id)
	if !ok {
		return components.AABB{}, false
	}
	box, ok := ecs.GetComponent[*components.BoundingBoxComponent](s.em, id)
	if !ok {
		return components.AABB{}, false
	}
	aabb := box.WorldAABB(t)
	if aabb.IsDegenerate() {
		return components.AABB{}, false
	}
	return aabb, true
}

// detonate 火箭弹爆炸：只爆炸一次，然后失效
func (s *ProjectileSystem) detonate(id ecs.EntityID, proj *components.ProjectileComponent, pos mgl64.Vec3, directHit ecs.EntityID) {
	if proj.Area == nil || proj.Area.Detonated {
		s.deactivate(id)
		return
	}
	proj.Area.Detonated = true

	s.Explode(Explosion{
		Center:       pos,
		Radius:       proj.Area.Radius,
		Damage:       proj.Damage,
		SplashDamage: proj.Area.SplashDamage,
		DamageType:   proj.DamageType,
		OwnerID:      proj.OwnerID,
		OwnerKind:    proj.OwnerKind,
		DirectHit:    directHit,
	})
	s.deactivate(id)
}

// Explode 结算一次火箭弹爆炸
//
// 直接命中的实体和距离为 0（爆心在包围盒内）的实体受到完整 Damage；
// 其余半径内实体按火箭弹衰减公式（线性，下限 50%）受到 SplashDamage 的溅射伤害。
// 所有受伤实体都会被击退。距离按爆心到目标包围盒的最近点计算。
func (s *ProjectileSystem) Explode(ex Explosion) {
	s.presentation.Explosion(ex.Center, ex.Radius)
	center := ex.Center
	s.audio.Play("explosion", &center)

	proj := &components.ProjectileComponent{OwnerID: ex.OwnerID, OwnerKind: ex.OwnerKind}
	splashTargets := make([]combat.Target, 0)

	for _, targetID := range s.targetsFor(proj) {
		if targetID == ex.OwnerID {
			continue
		}
		box, ok := s.worldBox(targetID)
		if !ok {
			continue
		}
		closest := box.ClosestPoint(ex.Center)
		distance := closest.Sub(ex.Center).Len()

		if targetID == ex.DirectHit || distance == 0 {
			s.damage.Apply(targetID, DamageSource{
				Amount: ex.Damage, Type: ex.DamageType, SourceID: ex.OwnerID, SourceKind: ex.OwnerKind,
			})
			s.knockback(targetID, ex.Center, box.Center(), 0, ex.Radius)
			continue
		}
		splashTargets = append(splashTargets, combat.Target{ID: targetID, Position: closest})
	}

	falloff := combat.RocketFalloff.WithMinDamage(s.cfg.Combat.RocketSplashFloor())
	combat.ApplyAreaDamage(ex.Center, ex.Radius, ex.SplashDamage, splashTargets, ex.OwnerID, false, falloff,
		func(hit combat.AreaHit) {
			s.damage.Apply(hit.ID, DamageSource{
				Amount: hit.Damage, Type: ex.DamageType, SourceID: ex.OwnerID, SourceKind: ex.OwnerKind,
			})
			if box, ok := s.worldBox(hit.ID); ok {
				s.knockback(hit.ID, ex.Center, box.Center(), hit.Distance, ex.Radius)
			}
		})
}

// knockback 按目标到爆心的测距距离施加击退（方向取包围盒中心）
func (s *ProjectileSystem) knockback(id ecs.EntityID, center, targetCenter mgl64.Vec3, distance, radius float64) {
	movement, ok := ecs.GetComponent[*components.MovementComponent](s.em, id)
	if !ok {
		return
	}
	// 把方向点放在距离爆心 distance 的位置，使击退大小按测距距离衰减
	dir := mgl64.Vec3{targetCenter[0] - center[0], 0, targetCenter[2] - center[2]}
	point := center
	if dir.Len() > 0 {
		point = center.Add(dir.Normalize().Mul(distance))
	}
	combat.Knockback(movement, center, point, radius, s.cfg.Combat.KnockbackStrength, s.cfg.Combat.KnockbackUpward)
}

// deactivate 弹丸失效：移出物理注册表并标记删除
func (s *ProjectileSystem) deactivate(id ecs.EntityID) {
	if ec, ok := ecs.GetComponent[*components.EntityComponent](s.em, id); ok {
		ec.Active = false
	}
	s.physics.RemoveEntity(id)
	s.em.DestroyEntity(id)
}

// Clear 清除所有弹丸
func (s *ProjectileSystem) Clear() {
	for _, id := range s.liveProjectiles() {
		s.deactivate(id)
	}
}
