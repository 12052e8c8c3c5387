package entities

import (
	"fmt"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

// NewObstacleEntity 创建静态障碍物
func NewObstacleEntity(em *ecs.EntityManager, oc config.ObstacleConfig) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}

	entityID := em.CreateEntity()
	em.AddComponent(entityID, &components.EntityComponent{Kind: types.KindObstacle, Active: true})
	em.AddComponent(entityID, components.NewTransform(oc.Position))
	em.AddComponent(entityID, components.NewCenteredBox(oc.Size[0], oc.Size[1], oc.Size[2]))
	return entityID, nil
}

// NewHazardZoneEntity 创建危险区域实体
// 区域边界在这里一次性算出，之后不再改变
//
// 参数:
//   - em: 实体管理器
//   - hc: 关卡中的危险区域定义
//   - defaults: 危险区域通用参数（预警距离、间歇泉周期）
func NewHazardZoneEntity(em *ecs.EntityManager, hc config.HazardConfig, defaults config.HazardDefaults) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}

	half := mgl64.Vec3{hc.Size[0] / 2, 0, hc.Size[2] / 2}
	bounds := components.AABB{
		Min: hc.Position.Sub(half),
		Max: hc.Position.Add(half).Add(mgl64.Vec3{0, hc.Size[1], 0}),
	}

	warning := hc.WarningDistance
	if warning <= 0 {
		warning = defaults.WarningDistance
	}

	period := hc.DutyPeriod
	if period <= 0 && hc.Variant == types.VariantGeyser {
		period = defaults.GeyserPeriod
	}

	entityID := em.CreateEntity()
	em.AddComponent(entityID, &components.EntityComponent{Kind: types.KindHazard, Active: true})
	em.AddComponent(entityID, components.NewTransform(hc.Position))
	em.AddComponent(entityID, &components.HazardZoneComponent{
		Name:            hc.Name,
		Kind:            hc.Type,
		Variant:         hc.Variant,
		Bounds:          bounds,
		DamagePerSecond: hc.DamagePerSecond,
		DamageType:      hc.DamageType,
		SlowFactor:      hc.SlowFactor,
		PushForce:       hc.PushForce,
		DutyPeriod:      period,
		DutyOffset:      hc.DutyOffset,
		WarningDistance: warning,
		Active:          true,
	})
	return entityID, nil
}
