package systems

import (
	"log"
	"sort"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/ecs"
)

// PhysicsSystem 空间注册表
//
// 持有交给它的动态与静态实体集合，每帧：
//  1. 把动态实体的位置推回世界边界内（只平移越界的差值，从不销毁实体）
//  2. 与其他动态实体及所有静态实体做 AABB 碰撞检测
//  3. 沿水平面上穿透最小的轴（X 或 Z）把移动方推开穿透深度
//
// Y 轴只由世界边界修正，实体之间的碰撞不修正 Y。
// 碰撞修正是尽力而为的位置校正，先处理的碰撞对先生效。
type PhysicsSystem struct {
	em      *ecs.EntityManager
	bounds  components.AABB
	dynamic map[ecs.EntityID]struct{}
	static  map[ecs.EntityID]struct{}

	logCollisions bool
}

// NewPhysicsSystem 创建物理系统
//
// 参数:
//   - em: 实体管理器，用于查询变换和包围盒组件
//   - bounds: 世界边界
//   - logCollisions: 是否记录每次碰撞修正（调试用）
//
// 返回:
//   - *PhysicsSystem: 物理系统实例
func NewPhysicsSystem(em *ecs.EntityManager, bounds components.AABB, logCollisions bool) *PhysicsSystem {
	return &PhysicsSystem{
		em:            em,
		bounds:        bounds,
		dynamic:       make(map[ecs.EntityID]struct{}),
		static:        make(map[ecs.EntityID]struct{}),
		logCollisions: logCollisions,
	}
}

// AddEntity 登记实体到动态或静态集合
// 同一实体重复登记时以最后一次为准
func (ps *PhysicsSystem) AddEntity(id ecs.EntityID, isStatic bool) {
	if isStatic {
		delete(ps.dynamic, id)
		ps.static[id] = struct{}{}
	} else {
		delete(ps.static, id)
		ps.dynamic[id] = struct{}{}
	}
}

// RemoveEntity 从两个集合中移除实体
func (ps *PhysicsSystem) RemoveEntity(id ecs.EntityID) {
	delete(ps.dynamic, id)
	delete(ps.static, id)
}

// Clear 清空注册表（关卡切换时使用）
func (ps *PhysicsSystem) Clear() {
	ps.dynamic = make(map[ecs.EntityID]struct{})
	ps.static = make(map[ecs.EntityID]struct{})
}

// SetLogCollisions 切换碰撞日志
func (ps *PhysicsSystem) SetLogCollisions(enabled bool) {
	ps.logCollisions = enabled
}

// Bounds 世界边界
func (ps *PhysicsSystem) Bounds() components.AABB {
	return ps.bounds
}

// IsRegistered 实体是否在注册表中，以及是否为静态
func (ps *PhysicsSystem) IsRegistered(id ecs.EntityID) (registered, isStatic bool) {
	if _, ok := ps.static[id]; ok {
		return true, true
	}
	_, ok := ps.dynamic[id]
	return ok, false
}

// StaticEntities 所有静态实体（按 ID 升序）
func (ps *PhysicsSystem) StaticEntities() []ecs.EntityID {
	return sortedIDs(ps.static)
}

// Update 执行一帧的边界修正和碰撞修正
func (ps *PhysicsSystem) Update(deltaTime float64) {
	dynamicIDs := sortedIDs(ps.dynamic)
	staticIDs := sortedIDs(ps.static)

	for _, id := range dynamicIDs {
		transform, box, ok := ps.bodyOf(id)
		if !ok || box.Trigger {
			continue
		}

		ps.clampToWorld(transform)

		for _, otherID := range dynamicIDs {
			if otherID != id {
				ps.resolvePair(id, transform, box, otherID)
			}
		}
		for _, otherID := range staticIDs {
			ps.resolvePair(id, transform, box, otherID)
		}
	}
}

// clampToWorld 把位置平移回世界边界内
func (ps *PhysicsSystem) clampToWorld(t *components.TransformComponent) {
	for axis := 0; axis < 3; axis++ {
		if t.Position[axis] < ps.bounds.Min[axis] {
			t.Position[axis] += ps.bounds.Min[axis] - t.Position[axis]
		} else if t.Position[axis] > ps.bounds.Max[axis] {
			t.Position[axis] -= t.Position[axis] - ps.bounds.Max[axis]
		}
	}
}

// resolvePair 如果 id 与 otherID 相交，沿穿透最小的水平轴推开 id
func (ps *PhysicsSystem) resolvePair(id ecs.EntityID, t *components.TransformComponent, box *components.BoundingBoxComponent, otherID ecs.EntityID) {
	otherT, otherBox, ok := ps.bodyOf(otherID)
	if !ok || otherBox.Trigger {
		return
	}

	a := box.WorldAABB(t)
	b := otherBox.WorldAABB(otherT)
	if a.IsDegenerate() || b.IsDegenerate() || !a.Intersects(b) {
		return
	}

	overlapX := a.Overlap(b, 0)
	overlapZ := a.Overlap(b, 2)

	axis, depth := 0, overlapX
	if overlapZ < overlapX {
		axis, depth = 2, overlapZ
	}

	// 从对方中心指向自身中心的方向推开
	if a.Center()[axis] < b.Center()[axis] {
		depth = -depth
	}
	t.Position[axis] += depth

	if ps.logCollisions {
		log.Printf("[PhysicsSystem] Resolved %d vs %d on axis %d by %.3f", id, otherID, axis, depth)
	}
}

// GetCollisions 返回与实体世界包围盒相交的所有已登记实体（不含自身）
// 触发器实体同样会被返回
func (ps *PhysicsSystem) GetCollisions(id ecs.EntityID) []ecs.EntityID {
	result := make([]ecs.EntityID, 0)

	t, box, ok := ps.bodyOf(id)
	if !ok {
		return result
	}
	a := box.WorldAABB(t)
	if a.IsDegenerate() {
		return result
	}

	for _, set := range []map[ecs.EntityID]struct{}{ps.dynamic, ps.static} {
		for _, otherID := range sortedIDs(set) {
			if otherID == id {
				continue
			}
			ot, obox, ok := ps.bodyOf(otherID)
			if !ok {
				continue
			}
			b := obox.WorldAABB(ot)
			if !b.IsDegenerate() && a.Intersects(b) {
				result = append(result, otherID)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// CheckAABBCollision 检查两个实体的世界包围盒是否相交
// 任一实体缺少变换/包围盒，或包围盒尺寸为零时返回 false
func (ps *PhysicsSystem) CheckAABBCollision(a, b ecs.EntityID) bool {
	ta, boxA, ok := ps.bodyOf(a)
	if !ok {
		return false
	}
	tb, boxB, ok := ps.bodyOf(b)
	if !ok {
		return false
	}
	wa := boxA.WorldAABB(ta)
	wb := boxB.WorldAABB(tb)
	if wa.IsDegenerate() || wb.IsDegenerate() {
		return false
	}
	return wa.Intersects(wb)
}

// bodyOf 获取实体的变换和包围盒；失活或已死亡的实体视为不存在
// 死亡实体在移除前（如 Boss 的延迟移除）不再被修正，也不再推挤其他实体
func (ps *PhysicsSystem) bodyOf(id ecs.EntityID) (*components.TransformComponent, *components.BoundingBoxComponent, bool) {
	if ec, ok := ecs.GetComponent[*components.EntityComponent](ps.em, id); ok && !ec.Active {
		return nil, nil, false
	}
	if h, ok := ecs.GetComponent[*components.HealthComponent](ps.em, id); ok && h.IsDead {
		return nil, nil, false
	}
	t, ok := ecs.GetComponent[*components.TransformComponent](ps.em, id)
	if !ok {
		return nil, nil, false
	}
	box, ok := ecs.GetComponent[*components.BoundingBoxComponent](ps.em, id)
	if !ok {
		return nil, nil, false
	}
	return t, box, true
}

// sortedIDs 集合转为升序切片，保证遍历顺序确定
func sortedIDs(set map[ecs.EntityID]struct{}) []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
