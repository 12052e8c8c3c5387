package behavior

import (
	"testing"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/entities"
	"github.com/decker502/arena/pkg/systems"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBehaviorSystem_BasicChase(t *testing.T) {
	w := newBehaviorWorld(t)
	w.spawnPlayer(mgl64.Vec3{})
	zombie := w.spawnZombie(types.ZombieBasic, mgl64.Vec3{10, 0, 0})

	w.step(60)

	pos := w.position(zombie)
	assert.InDelta(t, 7, pos[0], 1e-6, "速度 3，一秒移动 3")
	assert.InDelta(t, 0, pos[2], 1e-9)

	m, _ := ecs.GetComponent[*components.MovementComponent](w.em, zombie)
	assert.InDelta(t, -1, m.Facing[0], 1e-9)
}

func TestBehaviorSystem_MeleeCooldown(t *testing.T) {
	w := newBehaviorWorld(t)
	player := w.spawnPlayer(mgl64.Vec3{})
	zombie := w.spawnZombie(types.ZombieBasic, mgl64.Vec3{1, 0, 0})

	w.step(1)
	assert.Equal(t, 90.0, w.health(player))
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, w.position(zombie), "攻击范围内停止移动")

	w.step(30)
	assert.Equal(t, 90.0, w.health(player), "冷却中不攻击")

	w.step(40)
	assert.Equal(t, 80.0, w.health(player))
	assert.Equal(t, 2, w.audio.count("zombie attacked"))
}

func TestBehaviorSystem_FastSprint(t *testing.T) {
	tests := []struct {
		name     string
		start    float64
		expected float64
	}{
		{"远距离正常速度", 20, 6 * testDT},
		{"近距离冲刺", 5, 6 * fastSprintMul * testDT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newBehaviorWorld(t)
			w.spawnPlayer(mgl64.Vec3{})
			zombie := w.spawnZombie(types.ZombieFast, mgl64.Vec3{0, 0, tt.start})

			w.step(1)
			assert.InDelta(t, tt.expected, tt.start-w.position(zombie)[2], 1e-9)
		})
	}
}

func TestBehaviorSystem_TankPushesPlayer(t *testing.T) {
	w := newBehaviorWorld(t)
	player := w.spawnPlayer(mgl64.Vec3{})
	w.spawnZombie(types.ZombieTank, mgl64.Vec3{1.5, 0, 0})

	w.step(1)

	assert.Equal(t, 75.0, w.health(player))
	m, _ := ecs.GetComponent[*components.MovementComponent](w.em, player)
	assert.Less(t, m.External[0], 0.0)
}

func TestBehaviorSystem_CamouflagedReveal(t *testing.T) {
	w := newBehaviorWorld(t)
	w.spawnPlayer(mgl64.Vec3{})
	zombie := w.spawnZombie(types.ZombieCamouflaged, mgl64.Vec3{0, 0, 20})
	z, _ := ecs.GetComponent[*components.ZombieComponent](w.em, zombie)
	assert.False(t, z.Visible, "出生时不可见")

	w.step(60)
	assert.False(t, z.Visible)
	assert.Empty(t, w.presentation.changes)

	// 速度 3.5：从 16.5 走到揭示距离 6 以内需要 3 秒多
	w.step(200)
	assert.True(t, z.Visible)
	assert.Equal(t, []bool{true}, w.presentation.changes)
}

func TestBehaviorSystem_Groan(t *testing.T) {
	w := newBehaviorWorld(t)
	w.spawnPlayer(mgl64.Vec3{})
	w.spawnZombie(types.ZombieBasic, mgl64.Vec3{40, 0, 40})

	w.step(1)
	assert.Zero(t, w.audio.count("zombie groaned"), "出生时不呻吟")

	w.step(60 * 10)
	assert.GreaterOrEqual(t, w.audio.count("zombie groaned"), 1)
}

func TestBehaviorSystem_SkipsBossAndDead(t *testing.T) {
	w := newBehaviorWorld(t)
	w.spawnPlayer(mgl64.Vec3{})
	boss, err := entities.NewBossEntity(w.em, w.stats, w.cfg.Boss, "Gargantuar", mgl64.Vec3{0, 0, 20})
	require.NoError(t, err)
	dead := w.spawnZombie(types.ZombieBasic, mgl64.Vec3{10, 0, 0})
	w.damage.Kill(dead, systems.DamageSource{})

	w.step(30)
	assert.Equal(t, mgl64.Vec3{0, 0, 20}, w.position(boss), "Boss 由 BossSystem 驱动")
	assert.Equal(t, mgl64.Vec3{10, 0, 0}, w.position(dead))

	t.Run("MoveBoss 提供 Boss 的普通移动", func(t *testing.T) {
		w.behavior.MoveBoss(boss, 1)
		assert.InDelta(t, 17.5, w.position(boss)[2], 1e-9)
	})
}

func TestBehaviorSystem_UnknownTypeFallsBackToBasic(t *testing.T) {
	w := newBehaviorWorld(t)
	w.spawnPlayer(mgl64.Vec3{})
	zombie := w.spawnZombie(types.ZombieBasic, mgl64.Vec3{10, 0, 0})
	z, _ := ecs.GetComponent[*components.ZombieComponent](w.em, zombie)
	z.Type = types.ZombieType("mystery")

	w.step(60)
	assert.InDelta(t, 7, w.position(zombie)[0], 1e-6)
}

func TestBehaviorSystem_NoPlayer(t *testing.T) {
	w := newBehaviorWorld(t)
	zombie := w.spawnZombie(types.ZombieBasic, mgl64.Vec3{10, 0, 0})

	w.step(30)
	assert.Equal(t, mgl64.Vec3{10, 0, 0}, w.position(zombie))
}
