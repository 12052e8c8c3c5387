package systems

import (
	"log"
	"math"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/game"
	"github.com/go-gl/mathgl/mgl64"
)

// PlayerSystem 根据每个 tick 的输入快照驱动玩家
//
// 处理顺序：武器切换 → 移动意图 → 瞄准朝向 → 开火
// 快照在本 tick 内只读，系统本身不直接访问键盘鼠标。
type PlayerSystem struct {
	entityManager *ecs.EntityManager
	cfg           *config.ArenaConfig
	projectiles   *ProjectileSystem
	clock         func() float64
	presentation  game.PresentationSink
	audio         game.AudioSink
}

// NewPlayerSystem 创建玩家系统
func NewPlayerSystem(em *ecs.EntityManager, cfg *config.ArenaConfig, projectiles *ProjectileSystem, clock func() float64,
	presentation game.PresentationSink, audio game.AudioSink) *PlayerSystem {
	if presentation == nil {
		presentation = game.NopPresentation{}
	}
	if audio == nil {
		audio = game.NopAudio{}
	}
	return &PlayerSystem{
		entityManager: em,
		cfg:           cfg,
		projectiles:   projectiles,
		clock:         clock,
		presentation:  presentation,
		audio:         audio,
	}
}

// Update 应用输入快照
func (s *PlayerSystem) Update(input game.InputSnapshot, deltaTime float64) {
	id, ok := FindPlayer(s.entityManager)
	if !ok || !IsAlive(s.entityManager, id) {
		return
	}
	player, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, id)
	if !ok {
		return
	}
	transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
	if !ok {
		return
	}
	movement, ok := ecs.GetComponent[*components.MovementComponent](s.entityManager, id)
	if !ok {
		return
	}

	if input.WeaponSlot > 0 {
		s.SwitchWeapon(player, input.WeaponSlot-1)
	}

	intent := input.MoveIntent()
	if intent.Len() > 0 {
		movement.Velocity = intent.Normalize().Mul(movement.Speed)
	} else {
		movement.Velocity = mgl64.Vec3{}
	}
	c := s.cfg.Combat
	movement.Integrate(transform, deltaTime, c.Gravity, c.GroundY, c.ExternalDamping)

	if input.HasAim {
		player.AimPoint = input.Aim
		if dir := HorizontalDirection(transform.Position, input.Aim); dir.Len() > 0 {
			movement.Facing = dir
			transform.Rotation = math.Atan2(dir[0], dir[2])
		}
	}

	s.presentation.EntityMoved(id, transform.Position, transform.Rotation)

	if input.Fire {
		s.tryFire(id, player, transform, movement)
	}
}

// SwitchWeapon 切换到指定武器槽（0-based），越界请求被忽略
func (s *PlayerSystem) SwitchWeapon(player *components.PlayerComponent, index int) bool {
	if index < 0 || index >= len(player.Weapons) {
		log.Printf("[PlayerSystem] Ignoring switch to weapon slot %d (have %d)", index+1, len(player.Weapons))
		return false
	}
	if player.ActiveWeapon != index {
		player.ActiveWeapon = index
		log.Printf("[PlayerSystem] Switched to %s", player.Weapons[index].Name)
		s.audio.Play("weapon switched", nil)
	}
	return true
}

// tryFire 射击间隔已过时发射当前武器
func (s *PlayerSystem) tryFire(id ecs.EntityID, player *components.PlayerComponent, t *components.TransformComponent, m *components.MovementComponent) {
	weapon := player.CurrentWeapon()
	if weapon == nil {
		return
	}
	now := s.clock()
	if now-weapon.LastFired < weapon.FireInterval {
		return
	}

	facing := m.Facing
	if facing.Len() == 0 {
		facing = mgl64.Vec3{0, 0, 1}
	}
	muzzle := t.Position.
		Add(facing.Mul(s.cfg.Projectile.MuzzleOffset)).
		Add(mgl64.Vec3{0, s.cfg.Projectile.MuzzleHeight, 0})

	fired := s.projectiles.FireWeapon(weapon, muzzle, facing, id)
	if len(fired) == 0 {
		return
	}
	weapon.LastFired = now
	s.audio.Play("weapon fired: "+weapon.Name, &muzzle)
}
