package arena

import (
	"math"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/systems"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

// 自动驾驶的距离阈值（世界单位）
const (
	autopilotKiteDistance    = 6.0  // 敌人比这更近时后退
	autopilotShotgunDistance = 5.0  // 敌人比这更近时用霰弹枪
	autopilotRocketDistance  = 10.0 // 敌人比这更远时用火箭筒
	autopilotLookahead       = 1.5  // 检查前方危险区域的距离
	autopilotDeadZone        = 0.3
)

// Autopilot 为无头运行生成脚本化输入
//
// 策略：瞄准最近的敌人并持续开火，按距离选择武器；敌人太近时后退，
// 关卡目标是到达出口时朝出口移动；避免走进伤害区域。
// 输出只依赖当前世界状态，同样的世界总是得到同样的输入。
type Autopilot struct {
	arena *Arena
}

// NewAutopilot 创建自动驾驶
func NewAutopilot(a *Arena) *Autopilot {
	return &Autopilot{arena: a}
}

// Next 生成下一个 tick 的输入
func (p *Autopilot) Next() game.InputSnapshot {
	em := p.arena.Entities()
	var in game.InputSnapshot

	playerID, ok := p.arena.Player()
	if !ok || !systems.IsAlive(em, playerID) {
		return in
	}
	pos, _ := systems.PositionOf(em, playerID)
	player, _ := ecs.GetComponent[*components.PlayerComponent](em, playerID)

	target, targetPos, distance, found := p.nearestEnemy(pos)
	if found {
		in.Aim = targetPos
		in.HasAim = true
		in.Fire = true
		if player != nil {
			in.WeaponSlot = p.chooseWeapon(player, em, target, distance)
		}
	}

	var dir mgl64.Vec3
	if found && distance < autopilotKiteDistance {
		dir = systems.HorizontalDirection(targetPos, pos)
	} else if lc := p.arena.Level(); lc != nil && lc.WinCondition.Type == types.WinReachExit {
		dir = systems.HorizontalDirection(pos, lc.WinCondition.ExitPosition)
	}
	dir = p.avoidHazards(pos, dir)
	applyDirection(&in, dir)
	return in
}

// nearestEnemy 水平距离最近的存活敌人（距离相同时取ID较小者）
func (p *Autopilot) nearestEnemy(from mgl64.Vec3) (ecs.EntityID, mgl64.Vec3, float64, bool) {
	em := p.arena.Entities()
	var (
		best    ecs.EntityID
		bestPos mgl64.Vec3
		bestD   = math.Inf(1)
	)
	for _, id := range ecs.GetEntitiesWith1[*components.ZombieComponent](em) {
		if !systems.IsAlive(em, id) {
			continue
		}
		if z, _ := ecs.GetComponent[*components.ZombieComponent](em, id); z != nil && !z.Visible {
			continue
		}
		pos, ok := systems.PositionOf(em, id)
		if !ok {
			continue
		}
		if d := systems.HorizontalDistance(from, pos); d < bestD {
			best, bestPos, bestD = id, pos, d
		}
	}
	return best, bestPos, bestD, best != 0
}

// chooseWeapon 返回要切换到的武器槽（1-based），不需要切换时返回 0
func (p *Autopilot) chooseWeapon(player *components.PlayerComponent, em *ecs.EntityManager, target ecs.EntityID, distance float64) int {
	want := -1
	_, isBoss := ecs.GetComponent[*components.BossComponent](em, target)
	for i, w := range player.Weapons {
		switch {
		case w.Kind == types.WeaponRocket && (isBoss || distance > autopilotRocketDistance) && distance > w.SplashRadius:
			want = i
		case w.Kind == types.WeaponBullet && w.Pellets > 1 && distance < autopilotShotgunDistance && !isBoss:
			want = i
		}
		if want >= 0 {
			break
		}
	}
	if want < 0 {
		for i, w := range player.Weapons {
			if w.Kind == types.WeaponBullet && w.Pellets <= 1 {
				want = i
				break
			}
		}
	}
	if want < 0 || want == player.ActiveWeapon {
		return 0
	}
	return want + 1
}

// avoidHazards 前方是伤害区域时改为沿垂直方向移动，两侧都不安全时停下
func (p *Autopilot) avoidHazards(pos, dir mgl64.Vec3) mgl64.Vec3 {
	if dir.Len() == 0 {
		return dir
	}
	candidates := []mgl64.Vec3{dir, {-dir[2], 0, dir[0]}, {dir[2], 0, -dir[0]}}
	for _, c := range candidates {
		if !p.dangerousAt(pos.Add(c.Mul(autopilotLookahead))) {
			return c
		}
	}
	return mgl64.Vec3{}
}

func (p *Autopilot) dangerousAt(point mgl64.Vec3) bool {
	em := p.arena.Entities()
	for _, id := range ecs.GetEntitiesWith1[*components.HazardZoneComponent](em) {
		zone, _ := ecs.GetComponent[*components.HazardZoneComponent](em, id)
		if zone == nil || !zone.Active {
			continue
		}
		if zone.Kind != types.HazardDamage && zone.Kind != types.HazardInstantDeath {
			continue
		}
		b := zone.Bounds
		if point[0] >= b.Min[0] && point[0] <= b.Max[0] && point[2] >= b.Min[2] && point[2] <= b.Max[2] {
			return true
		}
	}
	return false
}

// applyDirection 把水平方向转换为四个方向键
func applyDirection(in *game.InputSnapshot, dir mgl64.Vec3) {
	in.Right = dir[0] > autopilotDeadZone
	in.Left = dir[0] < -autopilotDeadZone
	in.Down = dir[2] > autopilotDeadZone
	in.Up = dir[2] < -autopilotDeadZone
}
