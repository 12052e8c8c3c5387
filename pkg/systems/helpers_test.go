package systems

import (
	"math/rand"
	"testing"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/entities"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

// recordingAudio 记录所有音频事件名
type recordingAudio struct {
	events []string
}

func (a *recordingAudio) Play(name string, _ *mgl64.Vec3) {
	a.events = append(a.events, name)
}

func (a *recordingAudio) count(name string) int {
	n := 0
	for _, e := range a.events {
		if e == name {
			n++
		}
	}
	return n
}

// recordingPresentation 记录表现层通知
type recordingPresentation struct {
	game.NopPresentation
	hits       int
	explosions []float64
	warnings   []bool
	visibility map[ecs.EntityID]bool
}

func (p *recordingPresentation) HitEffect(mgl64.Vec3, mgl64.Vec3) { p.hits++ }
func (p *recordingPresentation) Explosion(_ mgl64.Vec3, radius float64) {
	p.explosions = append(p.explosions, radius)
}
func (p *recordingPresentation) ZoneWarning(_ string, _ ecs.EntityID, warn bool) {
	p.warnings = append(p.warnings, warn)
}
func (p *recordingPresentation) VisibilityChanged(id ecs.EntityID, visible bool) {
	if p.visibility == nil {
		p.visibility = make(map[ecs.EntityID]bool)
	}
	p.visibility[id] = visible
}

// testWorld 测试用的最小模拟环境（不含编排器）
type testWorld struct {
	t            *testing.T
	em           *ecs.EntityManager
	cfg          *config.ArenaConfig
	zombieStats  *config.ZombieStatsConfig
	gs           *game.GameState
	audio        *recordingAudio
	presentation *recordingPresentation

	physics     *PhysicsSystem
	damage      *DamageSystem
	scheduler   *Scheduler
	projectiles *ProjectileSystem
	hazards     *HazardZoneSystem
	waves       *WaveSpawnSystem
	boss        *BossSystem
	player      *PlayerSystem
	level       *LevelSystem
}

// newTestWorld 使用默认配置创建测试环境
func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	cfg := config.DefaultArenaConfig()
	w := &testWorld{
		t:            t,
		em:           ecs.NewEntityManager(),
		cfg:          cfg,
		zombieStats:  config.DefaultZombieStats(),
		gs:           game.NewGameState(),
		audio:        &recordingAudio{},
		presentation: &recordingPresentation{},
	}
	clock := w.gs.Now
	bounds := components.AABB{Min: cfg.World.Min, Max: cfg.World.Max}

	w.physics = NewPhysicsSystem(w.em, bounds, false)
	w.damage = NewDamageSystem(w.em, cfg, clock, w.audio)
	w.scheduler = NewScheduler(w.em, clock)
	w.projectiles = NewProjectileSystem(w.em, w.physics, w.damage, cfg, w.presentation, w.audio)
	w.hazards = NewHazardZoneSystem(w.em, w.damage, cfg, clock, w.presentation, w.audio)
	w.waves = NewWaveSpawnSystem(w.em, w.physics, w.scheduler, w.zombieStats, cfg.Spawner, w.gs, rand.New(rand.NewSource(42)))
	w.boss = NewBossSystem(w.em, cfg, w.damage, w.scheduler, clock, w.gs, w.presentation, w.audio)
	w.boss.SetSummoner(w.waves)
	w.player = NewPlayerSystem(w.em, cfg, w.projectiles, clock, w.presentation, w.audio)
	w.level = NewLevelSystem(w.em, w.gs, w.gs, w.audio, cfg, w.zombieStats, w.physics, w.scheduler, w.waves, w.boss)

	w.damage.OnDeath(w.waves.OnEntityDeath)
	w.damage.OnDeath(w.boss.OnEntityDeath)
	w.damage.OnDeath(w.level.OnEntityDeath)
	return w
}

// advance 推进模拟时钟（不运行任何系统）
func (w *testWorld) advance(dt float64) {
	w.gs.Advance(dt)
}

func (w *testWorld) spawnPlayer(pos mgl64.Vec3) ecs.EntityID {
	w.t.Helper()
	id, err := entities.NewPlayerEntity(w.em, w.cfg, pos)
	require.NoError(w.t, err)
	w.physics.AddEntity(id, false)
	return id
}

func (w *testWorld) spawnZombie(zt types.ZombieType, pos mgl64.Vec3) ecs.EntityID {
	w.t.Helper()
	id, err := entities.NewZombieEntity(w.em, w.zombieStats, zt, pos, -1)
	require.NoError(w.t, err)
	w.physics.AddEntity(id, false)
	return id
}

func (w *testWorld) spawnBoss(pos mgl64.Vec3) ecs.EntityID {
	w.t.Helper()
	id, err := entities.NewBossEntity(w.em, w.zombieStats, w.cfg.Boss, "Gargantuar", pos)
	require.NoError(w.t, err)
	w.physics.AddEntity(id, false)
	w.boss.SetBoss(id)
	return id
}

func (w *testWorld) spawnZone(hc config.HazardConfig) ecs.EntityID {
	w.t.Helper()
	id, err := entities.NewHazardZoneEntity(w.em, hc, w.cfg.Hazard)
	require.NoError(w.t, err)
	return id
}

func (w *testWorld) health(id ecs.EntityID) *components.HealthComponent {
	w.t.Helper()
	h, ok := ecs.GetComponent[*components.HealthComponent](w.em, id)
	require.True(w.t, ok, "entity %d has no health", id)
	return h
}

func (w *testWorld) transform(id ecs.EntityID) *components.TransformComponent {
	w.t.Helper()
	tr, ok := ecs.GetComponent[*components.TransformComponent](w.em, id)
	require.True(w.t, ok, "entity %d has no transform", id)
	return tr
}

func (w *testWorld) movement(id ecs.EntityID) *components.MovementComponent {
	w.t.Helper()
	m, ok := ecs.GetComponent[*components.MovementComponent](w.em, id)
	require.True(w.t, ok, "entity %d has no movement", id)
	return m
}

// sweep 帧末清理（与编排器一致）
func (w *testWorld) sweep() {
	for _, id := range w.em.PendingDestroy() {
		w.physics.RemoveEntity(id)
		w.hazards.Forget(id)
	}
	w.em.RemoveMarkedEntities()
}
