package systems

import (
	"math"
	"testing"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/game"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (w *testWorld) stepPlayer(in game.InputSnapshot, n int) {
	for i := 0; i < n; i++ {
		w.advance(testDT)
		w.player.Update(in, testDT)
	}
}

func TestPlayerSystem_Movement(t *testing.T) {
	tests := []struct {
		name  string
		input game.InputSnapshot
		want  mgl64.Vec3
	}{
		{"向上是 -Z", game.InputSnapshot{Up: true}, mgl64.Vec3{0, 0, -8}},
		{"向右是 +X", game.InputSnapshot{Right: true}, mgl64.Vec3{8, 0, 0}},
		{"斜向移动速度不叠加", game.InputSnapshot{Up: true, Right: true}, mgl64.Vec3{8 / math.Sqrt2, 0, -8 / math.Sqrt2}},
		{"相反方向抵消", game.InputSnapshot{Left: true, Right: true}, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			player := w.spawnPlayer(mgl64.Vec3{})
			w.stepPlayer(tt.input, 60)

			pos := w.transform(player).Position
			assert.InDelta(t, tt.want[0], pos[0], 1e-6)
			assert.InDelta(t, tt.want[2], pos[2], 1e-6)
		})
	}
}

func TestPlayerSystem_Aim(t *testing.T) {
	w := newTestWorld(t)
	player := w.spawnPlayer(mgl64.Vec3{})

	w.stepPlayer(game.InputSnapshot{Aim: mgl64.Vec3{10, 0, 0}, HasAim: true}, 1)
	assert.InDelta(t, math.Pi/2, w.transform(player).Rotation, 1e-9)
	assert.InDelta(t, 1, w.movement(player).Facing[0], 1e-9)

	t.Run("没有瞄准输入时保持朝向", func(t *testing.T) {
		w.stepPlayer(game.InputSnapshot{}, 1)
		assert.InDelta(t, math.Pi/2, w.transform(player).Rotation, 1e-9)
	})
}

func TestPlayerSystem_FireInterval(t *testing.T) {
	w := newTestWorld(t)
	player := w.spawnPlayer(mgl64.Vec3{})

	w.stepPlayer(game.InputSnapshot{Fire: true, Aim: mgl64.Vec3{0, 0, 10}, HasAim: true}, 60)

	// 300ms 间隔，1 秒内 4 发
	assert.Equal(t, 4, w.audio.count("weapon fired: pistol"))
	assert.Equal(t, 4, w.projectiles.ActiveCount())

	t.Run("枪口位于朝向前方并抬高", func(t *testing.T) {
		ids := ecs.GetEntitiesWith1[*components.ProjectileComponent](w.em)
		require.NotEmpty(t, ids)
		pos := w.transform(ids[0]).Position
		assert.InDelta(t, 0, pos[0], 1e-9)
		assert.InDelta(t, w.cfg.Projectile.MuzzleHeight, pos[1], 1e-9)
		assert.InDelta(t, w.cfg.Projectile.MuzzleOffset, pos[2], 1e-9)

		proj, _ := ecs.GetComponent[*components.ProjectileComponent](w.em, ids[0])
		assert.Equal(t, player, proj.OwnerID)
	})
}

func TestPlayerSystem_SwitchWeapon(t *testing.T) {
	w := newTestWorld(t)
	player := w.spawnPlayer(mgl64.Vec3{})
	pc, _ := ecs.GetComponent[*components.PlayerComponent](w.em, player)

	w.stepPlayer(game.InputSnapshot{WeaponSlot: 2}, 1)
	assert.Equal(t, "shotgun", pc.CurrentWeapon().Name)
	assert.Equal(t, 1, w.audio.count("weapon switched"))

	t.Run("越界的武器槽被忽略", func(t *testing.T) {
		w.stepPlayer(game.InputSnapshot{WeaponSlot: 9}, 1)
		assert.Equal(t, "shotgun", pc.CurrentWeapon().Name)
		assert.False(t, w.player.SwitchWeapon(pc, -1))
	})

	t.Run("霰弹枪一次发射多枚弹丸", func(t *testing.T) {
		w.stepPlayer(game.InputSnapshot{Fire: true}, 1)
		assert.Equal(t, 6, w.projectiles.ActiveCount())
	})

	t.Run("各武器独立计算射击间隔", func(t *testing.T) {
		w.stepPlayer(game.InputSnapshot{WeaponSlot: 1, Fire: true}, 1)
		assert.Equal(t, 7, w.projectiles.ActiveCount())
	})
}

func TestPlayerSystem_DeadPlayerIgnoresInput(t *testing.T) {
	w := newTestWorld(t)
	player := w.spawnPlayer(mgl64.Vec3{})
	w.damage.Kill(player, DamageSource{})

	w.stepPlayer(game.InputSnapshot{Right: true, Fire: true}, 10)
	assert.Equal(t, mgl64.Vec3{}, w.transform(player).Position)
	assert.Zero(t, w.projectiles.ActiveCount())
}
