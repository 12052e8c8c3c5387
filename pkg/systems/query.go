package systems

import (
	"math"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

// FindPlayer 返回唯一的玩家实体（不存在时返回 0, false）
func FindPlayer(em *ecs.EntityManager) (ecs.EntityID, bool) {
	ids := ecs.GetEntitiesWith1[*components.PlayerComponent](em)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// IsAlive 实体存在、激活且（若有生命值）未死亡
func IsAlive(em *ecs.EntityManager, id ecs.EntityID) bool {
	if id == 0 || em.IsMarkedForDestroy(id) {
		return false
	}
	ec, ok := ecs.GetComponent[*components.EntityComponent](em, id)
	if !ok || !ec.Active {
		return false
	}
	if h, ok := ecs.GetComponent[*components.HealthComponent](em, id); ok && h.IsDead {
		return false
	}
	return true
}

// PositionOf 实体位置
func PositionOf(em *ecs.EntityManager, id ecs.EntityID) (mgl64.Vec3, bool) {
	t, ok := ecs.GetComponent[*components.TransformComponent](em, id)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return t.Position, true
}

// HorizontalDistance 两点在水平面（XZ）上的距离
func HorizontalDistance(a, b mgl64.Vec3) float64 {
	return math.Hypot(a[0]-b[0], a[2]-b[2])
}

// HorizontalDirection a 指向 b 的水平单位向量；两点水平重合时返回零向量
func HorizontalDirection(a, b mgl64.Vec3) mgl64.Vec3 {
	d := mgl64.Vec3{b[0] - a[0], 0, b[2] - a[2]}
	if d.Len() < 1e-9 {
		return mgl64.Vec3{}
	}
	return d.Normalize()
}
