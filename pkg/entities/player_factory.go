package entities

import (
	"fmt"
	"log"
	"math"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

// negInf 用作“从未发生”的时间戳，保证第一次冷却判定必定通过
var negInf = math.Inf(-1)

// NewPlayerEntity 创建玩家实体
// 武器槽按 cfg.Player.Weapons 的顺序填充
//
// 参数:
//   - em: 实体管理器
//   - cfg: 竞技场配置
//   - pos: 出生位置
//
// 返回:
//   - ecs.EntityID: 玩家实体ID
//   - error: 如果创建失败返回错误信息
func NewPlayerEntity(em *ecs.EntityManager, cfg *config.ArenaConfig, pos mgl64.Vec3) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	if cfg == nil {
		return 0, fmt.Errorf("arena config cannot be nil")
	}

	weapons := make([]components.WeaponState, 0, len(cfg.Player.Weapons))
	for _, name := range cfg.Player.Weapons {
		wc, ok := cfg.Weapons[name]
		if !ok {
			log.Printf("[PlayerFactory] Warning: weapon %s not defined, skipping", name)
			continue
		}
		weapons = append(weapons, NewWeaponState(name, wc))
	}

	entityID := em.CreateEntity()
	em.AddComponent(entityID, &components.EntityComponent{Kind: types.KindPlayer, Active: true})
	em.AddComponent(entityID, components.NewTransform(pos))
	em.AddComponent(entityID, components.NewCenteredBox(cfg.Player.Width, cfg.Player.Height, cfg.Player.Width))
	em.AddComponent(entityID, components.NewHealth(cfg.Player.Health))
	em.AddComponent(entityID, components.NewMovement(cfg.Player.Speed))
	em.AddComponent(entityID, &components.PlayerComponent{
		Weapons:               weapons,
		ActiveWeapon:          0,
		InvulnerabilityWindow: cfg.InvulnerabilityWindow(),
		LastDamageTime:        negInf,
		AimPoint:              pos.Add(mgl64.Vec3{0, 0, 1}),
	})

	return entityID, nil
}

// NewWeaponState 根据武器配置创建武器槽运行时数据
func NewWeaponState(name string, wc config.WeaponConfig) components.WeaponState {
	return components.WeaponState{
		Name:            name,
		Kind:            wc.Kind,
		Damage:          wc.Damage,
		SplashDamage:    wc.SplashDamage,
		SplashRadius:    wc.SplashRadius,
		ProjectileSpeed: wc.ProjectileSpeed,
		FireInterval:    wc.FireIntervalMs / 1000.0,
		Pellets:         wc.Pellets,
		Spread:          mgl64.DegToRad(wc.SpreadDegrees),
		DamageType:      wc.DamageType,
		LastFired:       negInf,
	}
}
