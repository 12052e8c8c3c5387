package scenes

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/systems"
	"github.com/decker502/arena/pkg/types"
	"github.com/decker502/arena/pkg/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 地面网格间距（世界单位）
const floorGridStep = 5.0

var (
	colorBackground = color.RGBA{R: 24, G: 26, B: 30, A: 255}
	colorFloor      = color.RGBA{R: 46, G: 52, B: 46, A: 255}
	colorGrid       = color.RGBA{R: 60, G: 68, B: 60, A: 255}
	colorWall       = color.RGBA{R: 140, G: 140, B: 150, A: 255}
	colorObstacle   = color.RGBA{R: 96, G: 92, B: 88, A: 255}
	colorExit       = color.RGBA{R: 80, G: 200, B: 255, A: 120}
	colorPlayer     = color.RGBA{R: 90, G: 170, B: 255, A: 255}
	colorAim        = color.RGBA{R: 200, G: 230, B: 255, A: 255}
	colorBullet     = color.RGBA{R: 255, G: 240, B: 140, A: 255}
	colorRocket     = color.RGBA{R: 255, G: 140, B: 40, A: 255}
	colorHealthBack = color.RGBA{R: 60, G: 60, B: 60, A: 200}
	colorHealth     = color.RGBA{R: 100, G: 220, B: 100, A: 255}
	colorWarning    = color.RGBA{R: 255, G: 230, B: 0, A: 255}
	colorCollider   = color.RGBA{R: 255, G: 0, B: 255, A: 200}
	colorHit        = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorExplosion  = color.RGBA{R: 255, G: 160, B: 60, A: 255}
	colorText       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

var zombieColors = map[types.ZombieType]color.RGBA{
	types.ZombieBasic:       {R: 110, G: 160, B: 90, A: 255},
	types.ZombieFast:        {R: 200, G: 200, B: 70, A: 255},
	types.ZombieTank:        {R: 120, G: 90, B: 70, A: 255},
	types.ZombieCamouflaged: {R: 90, G: 120, B: 110, A: 255},
}

// bossPhaseColors 按阶段变红
var bossPhaseColors = [...]color.RGBA{
	{R: 150, G: 60, B: 160, A: 255},
	{R: 190, G: 60, B: 110, A: 255},
	{R: 230, G: 40, B: 40, A: 255},
}

var hazardColors = map[types.HazardVariant]color.RGBA{
	types.VariantNone:      {R: 200, G: 80, B: 80, A: 110},
	types.VariantLava:      {R: 230, G: 70, B: 20, A: 150},
	types.VariantFire:      {R: 255, G: 130, B: 20, A: 130},
	types.VariantAcid:      {R: 120, G: 220, B: 40, A: 130},
	types.VariantPit:       {R: 5, G: 5, B: 8, A: 230},
	types.VariantMud:       {R: 110, G: 80, B: 50, A: 150},
	types.VariantQuicksand: {R: 200, G: 170, B: 100, A: 150},
	types.VariantWind:      {R: 170, G: 210, B: 240, A: 80},
	types.VariantGeyser:    {R: 80, G: 200, B: 230, A: 140},
}

// Draw 绘制一帧
func (s *ArenaScene) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	em := s.arena.Entities()

	s.drawFloor(screen)
	s.drawExit(screen)
	s.drawHazards(screen, em)
	s.drawObstacles(screen, em)
	s.drawEnemies(screen, em)
	s.drawPlayer(screen, em)
	s.drawProjectiles(screen, em)
	s.drawEffects(screen)
	if s.showColliders() {
		s.drawColliders(screen, em)
	}
	s.drawHUD(screen)
}

// screenRect 世界 AABB 在地面上的投影（屏幕坐标）
func (s *ArenaScene) screenRect(b components.AABB) (x, y, w, h float32) {
	x0, y0 := s.camera.WorldToScreen(b.Min)
	x1, y1 := s.camera.WorldToScreen(b.Max)
	return x0, y0, x1 - x0, y1 - y0
}

func (s *ArenaScene) drawFloor(screen *ebiten.Image) {
	world := s.arena.Config().World
	x, y, w, h := s.screenRect(components.AABB{Min: world.Min, Max: world.Max})
	vector.DrawFilledRect(screen, x, y, w, h, colorFloor, false)

	for gx := math.Ceil(world.Min[0]/floorGridStep) * floorGridStep; gx <= world.Max[0]; gx += floorGridStep {
		x0, y0 := s.camera.WorldToScreen(mgl64.Vec3{gx, 0, world.Min[2]})
		x1, y1 := s.camera.WorldToScreen(mgl64.Vec3{gx, 0, world.Max[2]})
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, colorGrid, false)
	}
	for gz := math.Ceil(world.Min[2]/floorGridStep) * floorGridStep; gz <= world.Max[2]; gz += floorGridStep {
		x0, y0 := s.camera.WorldToScreen(mgl64.Vec3{world.Min[0], 0, gz})
		x1, y1 := s.camera.WorldToScreen(mgl64.Vec3{world.Max[0], 0, gz})
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, colorGrid, false)
	}
	vector.StrokeRect(screen, x, y, w, h, 3, colorWall, false)
}

func (s *ArenaScene) drawExit(screen *ebiten.Image) {
	lc := s.arena.Level()
	if lc == nil || lc.WinCondition.Type != types.WinReachExit {
		return
	}
	x, y, w, h := s.screenRect(systems.ExitBounds(lc.WinCondition))
	vector.DrawFilledRect(screen, x, y, w, h, colorExit, false)
	vector.StrokeRect(screen, x, y, w, h, 2, colorExit, false)
}

func (s *ArenaScene) drawHazards(screen *ebiten.Image, em *ecs.EntityManager) {
	warned := map[string]bool{}
	if player, ok := s.arena.Player(); ok {
		for _, name := range s.effects.Warned(player) {
			warned[name] = true
		}
	}
	blink := math.Mod(s.arena.State().Now(), 0.5) < 0.25

	for _, id := range ecs.GetEntitiesWith1[*components.HazardZoneComponent](em) {
		zone, _ := ecs.GetComponent[*components.HazardZoneComponent](em, id)
		if !zone.Active {
			continue
		}
		c, ok := hazardColors[zone.Variant]
		if !ok {
			c = hazardColors[types.VariantNone]
		}
		if zone.Variant == types.VariantGeyser && !s.arena.Hazards().IsGeyserActive(zone) {
			c.A /= 3
		}
		x, y, w, h := s.screenRect(zone.Bounds)
		vector.DrawFilledRect(screen, x, y, w, h, c, false)
		if zone.Kind == types.HazardPush && zone.PushForce.Len() > 0 {
			s.drawArrow(screen, zone.Bounds.Center(), zone.PushForce.Normalize(), 2, c)
		}
		if warned[zone.Name] && blink {
			vector.StrokeRect(screen, x, y, w, h, 3, colorWarning, false)
		}
	}
}

func (s *ArenaScene) drawObstacles(screen *ebiten.Image, em *ecs.EntityManager) {
	for _, id := range ecs.GetEntitiesWith1[*components.EntityComponent](em) {
		entity, _ := ecs.GetComponent[*components.EntityComponent](em, id)
		if entity.Kind != types.KindObstacle {
			continue
		}
		if box, ok := worldBox(em, id); ok {
			x, y, w, h := s.screenRect(box)
			vector.DrawFilledRect(screen, x, y, w, h, colorObstacle, false)
			vector.StrokeRect(screen, x, y, w, h, 1, colorWall, false)
		}
	}
}

func (s *ArenaScene) drawEnemies(screen *ebiten.Image, em *ecs.EntityManager) {
	debug := s.arena.DebugEnabled()
	for _, id := range ecs.GetEntitiesWith1[*components.ZombieComponent](em) {
		if !systems.IsAlive(em, id) {
			continue
		}
		zombie, _ := ecs.GetComponent[*components.ZombieComponent](em, id)
		pos, _ := systems.PositionOf(em, id)
		radius := footprintRadius(em, id)
		cx, cy := s.camera.WorldToScreen(pos)

		if !zombie.Visible || s.effects.Hidden(id) {
			if debug {
				vector.StrokeCircle(screen, cx, cy, s.camera.Length(radius), 1, zombieColors[types.ZombieCamouflaged], false)
			}
			continue
		}

		c := zombieColors[zombie.Type]
		if boss, ok := ecs.GetComponent[*components.BossComponent](em, id); ok {
			c = bossPhaseColors[clampPhase(boss.Phase)-1]
			s.drawBossSpecial(screen, boss, pos)
		}
		vector.DrawFilledCircle(screen, cx, cy, s.camera.Length(radius), c, true)
		s.drawHealthBar(screen, em, id, pos, radius)
	}
}

// drawBossSpecial 震地蓄力时画出即将受击的范围
func (s *ArenaScene) drawBossSpecial(screen *ebiten.Image, boss *components.BossComponent, pos mgl64.Vec3) {
	if boss.Special.Kind != components.SpecialGroundSlam || boss.Special.Resolved {
		return
	}
	cx, cy := s.camera.WorldToScreen(pos)
	r := s.arena.Config().Boss.SlamRadius
	progress := 0.0
	if boss.Special.Duration > 0 {
		progress = boss.Special.Elapsed / boss.Special.Duration
	}
	c := colorWarning
	c.A = uint8(80 + 150*utils.Clamp01(progress))
	vector.StrokeCircle(screen, cx, cy, s.camera.Length(r), 2, c, true)
}

func (s *ArenaScene) drawPlayer(screen *ebiten.Image, em *ecs.EntityManager) {
	id, ok := s.arena.Player()
	if !ok || !systems.IsAlive(em, id) {
		return
	}
	pos, _ := systems.PositionOf(em, id)
	radius := footprintRadius(em, id)
	cx, cy := s.camera.WorldToScreen(pos)

	c := colorPlayer
	if player, ok := ecs.GetComponent[*components.PlayerComponent](em, id); ok {
		since := s.arena.State().Now() - player.LastDamageTime
		if since < player.InvulnerabilityWindow && math.Mod(since, 0.2) < 0.1 {
			c.A = 90
		}
		dir := systems.HorizontalDirection(pos, player.AimPoint)
		if dir.Len() > 0 {
			tip := pos.Add(dir.Mul(radius + 0.8))
			tx, ty := s.camera.WorldToScreen(tip)
			vector.StrokeLine(screen, cx, cy, tx, ty, 3, colorAim, true)
		}
	}
	vector.DrawFilledCircle(screen, cx, cy, s.camera.Length(radius), c, true)
	s.drawHealthBar(screen, em, id, pos, radius)
}

func (s *ArenaScene) drawProjectiles(screen *ebiten.Image, em *ecs.EntityManager) {
	for _, id := range ecs.GetEntitiesWith1[*components.ProjectileComponent](em) {
		entity, ok := ecs.GetComponent[*components.EntityComponent](em, id)
		if !ok || !entity.Active {
			continue
		}
		proj, _ := ecs.GetComponent[*components.ProjectileComponent](em, id)
		pos, _ := systems.PositionOf(em, id)
		cx, cy := s.camera.WorldToScreen(pos)
		if proj.Area != nil {
			vector.DrawFilledCircle(screen, cx, cy, 4, colorRocket, true)
			continue
		}
		vector.DrawFilledCircle(screen, cx, cy, 2, colorBullet, false)
	}
}

func (s *ArenaScene) drawEffects(screen *ebiten.Image) {
	for i := range s.effects.effects {
		e := &s.effects.effects[i]
		cx, cy := s.camera.WorldToScreen(e.pos)
		t := e.progress()
		switch e.kind {
		case effectHit:
			c := colorHit
			c.A = uint8(255 * utils.FadeOut(t))
			vector.DrawFilledCircle(screen, cx, cy, 2+4*float32(t), c, true)
		case effectExplosion:
			c := colorExplosion
			c.A = uint8(255 * utils.FadeOut(t))
			r := s.camera.Length(e.radius * utils.EaseOutCubic(t))
			vector.StrokeCircle(screen, cx, cy, r, 3, c, true)
		}
	}
}

func (s *ArenaScene) drawColliders(screen *ebiten.Image, em *ecs.EntityManager) {
	for _, id := range ecs.GetEntitiesWith2[*components.TransformComponent, *components.BoundingBoxComponent](em) {
		if box, ok := worldBox(em, id); ok {
			x, y, w, h := s.screenRect(box)
			vector.StrokeRect(screen, x, y, w, h, 1, colorCollider, false)
		}
	}
}

func (s *ArenaScene) drawHealthBar(screen *ebiten.Image, em *ecs.EntityManager, id ecs.EntityID, pos mgl64.Vec3, radius float64) {
	health, ok := ecs.GetComponent[*components.HealthComponent](em, id)
	if !ok || health.Ratio() >= 1 {
		return
	}
	cx, cy := s.camera.WorldToScreen(pos)
	width := s.camera.Length(radius * 2)
	top := cy - s.camera.Length(radius) - 8
	vector.DrawFilledRect(screen, cx-width/2, top, width, 4, colorHealthBack, false)
	vector.DrawFilledRect(screen, cx-width/2, top, width*float32(health.Ratio()), 4, colorHealth, false)
}

func (s *ArenaScene) drawArrow(screen *ebiten.Image, from, dir mgl64.Vec3, length float64, c color.RGBA) {
	c.A = 255
	to := from.Add(dir.Mul(length))
	x0, y0 := s.camera.WorldToScreen(from)
	x1, y1 := s.camera.WorldToScreen(to)
	vector.StrokeLine(screen, x0, y0, x1, y1, 2, c, true)
	vector.DrawFilledCircle(screen, x1, y1, 3, c, true)
}

func (s *ArenaScene) drawHUD(screen *ebiten.Image) {
	for i, line := range s.hudLines() {
		ebitenutil.DebugPrintAt(screen, line, 12, 10+i*18)
	}
	ebitenutil.DebugPrintAt(screen,
		"WASD move  Mouse aim/fire  1-3 weapon  P pause  F1 colliders  F2 autopilot  F3 debug  R restart  N next",
		12, WindowHeight-24)
}

// hudLines HUD 文本（与绘制分离，便于测试）
func (s *ArenaScene) hudLines() []string {
	gs := s.arena.State()
	em := s.arena.Entities()
	waves := s.arena.Waves()

	lines := []string{
		fmt.Sprintf("Level %s  Score %d  Kills %d  Wave %d/%d  Remaining %d  Time %.1fs",
			gs.LevelID, gs.Score, gs.Kills, gs.Wave, waves.WaveCount(), waves.TotalRemaining(), gs.LevelTime),
	}

	if id, ok := s.arena.Player(); ok {
		line := ""
		if h, ok := ecs.GetComponent[*components.HealthComponent](em, id); ok {
			line = fmt.Sprintf("HP %.0f/%.0f", h.Health, h.MaxHealth)
		}
		if p, ok := ecs.GetComponent[*components.PlayerComponent](em, id); ok {
			if w := p.CurrentWeapon(); w != nil {
				line += fmt.Sprintf("  Weapon [%d] %s", p.ActiveWeapon+1, w.Name)
			}
		}
		lines = append(lines, line)
	}

	if id, phase, ok := s.arena.Boss(); ok {
		if b, ok := ecs.GetComponent[*components.BossComponent](em, id); ok {
			line := fmt.Sprintf("Boss %s  Phase %d", b.Name, phase)
			if h, ok := ecs.GetComponent[*components.HealthComponent](em, id); ok {
				line += fmt.Sprintf("  HP %.0f/%.0f", h.Health, h.MaxHealth)
			}
			lines = append(lines, line)
		}
	}

	var flags []string
	if gs.Paused {
		flags = append(flags, "PAUSED")
	}
	if s.arena.DebugEnabled() {
		flags = append(flags, "DEBUG")
	}
	if s.demo {
		flags = append(flags, "AUTOPILOT")
	}
	if len(flags) > 0 {
		lines = append(lines, strings.Join(flags, " | "))
	}

	switch gs.Outcome {
	case types.OutcomeVictory:
		if s.arena.NextLevel() != "" {
			lines = append(lines, "VICTORY! Press N for the next level or R to restart")
		} else {
			lines = append(lines, "VICTORY! Press R to play again")
		}
	case types.OutcomeDefeat:
		lines = append(lines, "DEFEAT. Press R to restart")
	}
	if s.message != "" {
		lines = append(lines, s.message, "Press R to retry")
	}
	return lines
}

func worldBox(em *ecs.EntityManager, id ecs.EntityID) (components.AABB, bool) {
	t, ok := ecs.GetComponent[*components.TransformComponent](em, id)
	if !ok {
		return components.AABB{}, false
	}
	b, ok := ecs.GetComponent[*components.BoundingBoxComponent](em, id)
	if !ok {
		return components.AABB{}, false
	}
	return b.WorldAABB(t), true
}

// footprintRadius 包围盒水平投影的半宽
func footprintRadius(em *ecs.EntityManager, id ecs.EntityID) float64 {
	box, ok := worldBox(em, id)
	if !ok {
		return 0.5
	}
	return math.Max(box.Max[0]-box.Min[0], box.Max[2]-box.Min[2]) / 2
}

func clampPhase(phase int) int {
	if phase < 1 {
		return 1
	}
	if phase > len(bossPhaseColors) {
		return len(bossPhaseColors)
	}
	return phase
}
