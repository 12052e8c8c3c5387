package entities

import (
	"fmt"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

// ProjectileParams 创建弹丸所需的参数
type ProjectileParams struct {
	Position   mgl64.Vec3
	Velocity   mgl64.Vec3
	Damage     float64
	DamageType types.DamageType
	OwnerID    ecs.EntityID
	OwnerKind  types.EntityKind
	Weapon     string

	Lifetime       float64
	MaxRange       float64
	Radius         float64
	CollisionDelay float64
	Sequence       uint64

	// Area 非 nil 时为范围伤害弹（火箭弹）
	Area *components.AreaEffect
}

// NewProjectileEntity 创建弹丸实体
// 弹丸使用触发器包围盒：只参与检测，不推挤其他实体
//
// 返回:
//   - ecs.EntityID: 创建的弹丸实体ID，如果失败返回 0
//   - error: 如果创建失败返回错误信息
func NewProjectileEntity(em *ecs.EntityManager, p ProjectileParams) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	if p.Radius <= 0 {
		return 0, fmt.Errorf("projectile radius must be positive, got %.3f", p.Radius)
	}

	entityID := em.CreateEntity()
	em.AddComponent(entityID, &components.EntityComponent{Kind: types.KindProjectile, Active: true})
	em.AddComponent(entityID, components.NewTransform(p.Position))

	r := p.Radius
	em.AddComponent(entityID, &components.BoundingBoxComponent{
		Min:     mgl64.Vec3{-r, -r, -r},
		Max:     mgl64.Vec3{r, r, r},
		Trigger: true,
	})

	movement := components.NewMovement(p.Velocity.Len())
	movement.Velocity = p.Velocity
	if p.Velocity.Len() > 0 {
		movement.Facing = p.Velocity.Normalize()
	}
	em.AddComponent(entityID, movement)

	em.AddComponent(entityID, &components.LifetimeComponent{MaxLifetime: p.Lifetime})
	em.AddComponent(entityID, &components.ProjectileComponent{
		Damage:         p.Damage,
		DamageType:     p.DamageType,
		OwnerID:        p.OwnerID,
		OwnerKind:      p.OwnerKind,
		Weapon:         p.Weapon,
		Origin:         p.Position,
		PrevPosition:   p.Position,
		MaxRange:       p.MaxRange,
		Radius:         p.Radius,
		CollisionDelay: p.CollisionDelay,
		Sequence:       p.Sequence,
		Area:           p.Area,
	})

	return entityID, nil
}
