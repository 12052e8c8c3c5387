package systems

import (
	"math"
	"testing"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (w *testWorld) stepBoss(n int) {
	for i := 0; i < n; i++ {
		w.advance(testDT)
		w.boss.Update(testDT)
		w.scheduler.Update()
		w.sweep()
	}
}

func (w *testWorld) bossComponent(id ecs.EntityID) *components.BossComponent {
	w.t.Helper()
	b, ok := ecs.GetComponent[*components.BossComponent](w.em, id)
	require.True(w.t, ok)
	return b
}

func countZombies(em *ecs.EntityManager) int {
	n := 0
	for _, id := range ecs.GetEntitiesWith1[*components.ZombieComponent](em) {
		ec, _ := ecs.GetComponent[*components.EntityComponent](em, id)
		if ec.Kind == types.KindZombie {
			n++
		}
	}
	return n
}

func TestBossSystem_PhaseMonotonic(t *testing.T) {
	w := newTestWorld(t)
	boss := w.spawnBoss(mgl64.Vec3{30, 0, 30})
	b := w.bossComponent(boss)
	require.Equal(t, 1, w.boss.Phase())

	h := w.health(boss)
	h.Health = 1300
	assert.Equal(t, 2, w.boss.EvaluatePhase(boss))
	assert.InDelta(t, 4.2, b.SpecialCooldown, 1e-9)

	t.Run("回血不会降阶段", func(t *testing.T) {
		h.Health = 2000
		assert.Equal(t, 2, w.boss.EvaluatePhase(boss))
	})

	t.Run("狂暴倍率只应用一次", func(t *testing.T) {
		h.Health = 600
		assert.Equal(t, 3, w.boss.EvaluatePhase(boss))
		assert.Equal(t, 3, w.boss.EvaluatePhase(boss))

		assert.InDelta(t, 2.1, b.SpecialCooldown, 1e-9)
		assert.InDelta(t, 1.5, b.SpeedMultiplier, 1e-9)
		assert.InDelta(t, 1.5, b.DamageMultiplier, 1e-9)

		m := w.movement(boss)
		assert.InDelta(t, 3.75, m.BaseSpeed, 1e-9)
		assert.InDelta(t, 3.75, m.Speed, 1e-9)

		z, _ := ecs.GetComponent[*components.ZombieComponent](w.em, boss)
		assert.InDelta(t, 45, z.Damage, 1e-9)
		assert.InDelta(t, 0.9, z.AttackCooldown, 1e-9)
	})
}

func TestBossSystem_SkippedPhaseAppliedInOrder(t *testing.T) {
	w := newTestWorld(t)
	boss := w.spawnBoss(mgl64.Vec3{30, 0, 30})
	w.health(boss).Health = 500

	assert.Equal(t, 3, w.boss.EvaluatePhase(boss))
	// 6 × 0.7 × 0.5
	assert.InDelta(t, 2.1, w.bossComponent(boss).SpecialCooldown, 1e-9)
	assert.Equal(t, 1, w.audio.count("boss enraged"))
	assert.Equal(t, 1, w.audio.count("boss berserk"))
}

func TestBossSystem_SelectSpecial(t *testing.T) {
	w := newTestWorld(t)
	const now = 100.0
	inf := math.Inf(-1)

	tests := []struct {
		name        string
		phase       int
		distance    float64
		lastSpecial float64
		lastSummon  float64
		want        components.SpecialAttackKind
	}{
		{"中距离冲锋", 1, 10, inf, inf, components.SpecialCharge},
		{"冲锋下限包含", 1, 8, inf, inf, components.SpecialCharge},
		{"冲锋上限包含", 1, 20, inf, inf, components.SpecialCharge},
		{"超出冲锋距离", 1, 20.5, inf, inf, components.SpecialNone},
		{"第一阶段不会震地", 1, 3, inf, inf, components.SpecialNone},
		{"第二阶段近距离震地", 2, 3, inf, inf, components.SpecialGroundSlam},
		{"第二阶段中间距离召唤", 2, 6, inf, inf, components.SpecialSummon},
		{"特殊攻击冷却中仍可召唤", 2, 10, now - 1, inf, components.SpecialSummon},
		{"全部冷却中", 2, 3, now - 1, now - 1, components.SpecialNone},
		{"冲锋优先于召唤", 3, 12, inf, inf, components.SpecialCharge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &components.BossComponent{
				Phase:           tt.phase,
				SpecialCooldown: 6,
				LastSpecialTime: tt.lastSpecial,
				SummonCooldown:  15,
				LastSummonTime:  tt.lastSummon,
			}
			assert.Equal(t, tt.want, w.boss.SelectSpecial(b, tt.distance, now))
		})
	}
}

func TestBossSystem_ChargeContactDamage(t *testing.T) {
	w := newTestWorld(t)
	player := w.spawnPlayer(mgl64.Vec3{0, 0, 0})
	boss := w.spawnBoss(mgl64.Vec3{10, 0, 0})

	w.stepBoss(1)
	require.Equal(t, components.SpecialCharge, w.bossComponent(boss).Special.Kind)

	w.stepBoss(75)
	// 接触伤害 30 × 2，只结算一次
	assert.Equal(t, 40.0, w.health(player).Health)
	assert.Less(t, w.transform(boss).Position[0], 3.0, "冲锋方向在开始时锁定")
	assert.Less(t, w.movement(player).External[0], 0.0, "玩家被撞开")
}

func TestBossSystem_GroundSlam(t *testing.T) {
	w := newTestWorld(t)
	player := w.spawnPlayer(mgl64.Vec3{0, 0, 0})
	boss := w.spawnBoss(mgl64.Vec3{3, 0, 0})
	w.health(boss).Health = 1300

	w.stepBoss(1)
	require.Equal(t, components.SpecialGroundSlam, w.bossComponent(boss).Special.Kind)

	w.stepBoss(40)
	assert.Equal(t, 100.0, w.health(player).Health, "蓄力期间不造成伤害")

	w.stepBoss(19)
	// 最近点距离 2.6，半径 6：60 × (0.3 + 0.7 × (1 - 2.6/6)²) = 31.48 → 31
	assert.Equal(t, 69.0, w.health(player).Health)
	assert.Equal(t, []float64{6}, w.presentation.explosions)
}

func TestBossSystem_GroundSlamConfiguredFloor(t *testing.T) {
	// 最近点距离 2.6，半径 6，基础伤害 60，二次衰减 (1 - 2.6/6)² ≈ 0.321
	tests := []struct {
		name   string
		floor  float64
		health float64
	}{
		{"没有下限", 0, 81},
		{"下限 1 等于满伤害", 1, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			floor := tt.floor
			w.cfg.Combat.ExplosionMinDamage = &floor
			player := w.spawnPlayer(mgl64.Vec3{0, 0, 0})
			boss := w.spawnBoss(mgl64.Vec3{3, 0, 0})
			w.health(boss).Health = 1300

			w.stepBoss(60)
			assert.Equal(t, tt.health, w.health(player).Health)
		})
	}
}

func TestBossSystem_Summon(t *testing.T) {
	w := newTestWorld(t)
	w.spawnPlayer(mgl64.Vec3{6, 0, 0})
	boss := w.spawnBoss(mgl64.Vec3{0, 0, 0})
	w.health(boss).Health = 1300

	w.stepBoss(1)
	require.Equal(t, components.SpecialSummon, w.bossComponent(boss).Special.Kind)

	w.stepBoss(120)
	assert.Equal(t, 3, countZombies(w.em), "召唤冷却内只召唤一次")
	for _, id := range ecs.GetEntitiesWith1[*components.ZombieComponent](w.em) {
		z, _ := ecs.GetComponent[*components.ZombieComponent](w.em, id)
		if z.Type == types.ZombieBasic {
			assert.Equal(t, -1, z.WaveIndex, "召唤物不计入波次")
		}
	}
}

func TestBossSystem_DefeatOnce(t *testing.T) {
	w := newTestWorld(t)
	boss := w.spawnBoss(mgl64.Vec3{30, 0, 30})

	w.damage.Apply(boss, DamageSource{Amount: 5000, Type: types.DamageNormal})
	w.stepBoss(1)

	b := w.bossComponent(boss)
	assert.True(t, b.Defeated)
	// 奖励 1000 + 击杀得分 500
	assert.Equal(t, 1500, w.gs.Score)
	assert.Equal(t, 1, w.audio.count("boss defeated"))
	assert.Equal(t, 1, w.scheduler.PendingWithLabel("boss-removal"))

	t.Run("等待移除期间不参与碰撞修正", func(t *testing.T) {
		bossPos := w.transform(boss).Position
		player := w.spawnPlayer(bossPos)

		w.physics.Update(testDT)
		assert.Equal(t, bossPos, w.transform(player).Position, "死亡的 Boss 不推挤玩家")
		assert.Equal(t, bossPos, w.transform(boss).Position)
		assert.NotContains(t, w.physics.GetCollisions(player), boss)
	})

	t.Run("延迟结束前仍在槽位中", func(t *testing.T) {
		w.stepBoss(170)
		_, active := w.boss.ActiveBoss()
		assert.True(t, active)
		assert.True(t, w.em.Exists(boss))
	})

	t.Run("延迟结束后移出槽位并删除", func(t *testing.T) {
		w.stepBoss(20)
		_, active := w.boss.ActiveBoss()
		assert.False(t, active)
		assert.False(t, w.em.Exists(boss))
		assert.Equal(t, 1500, w.gs.Score, "奖励只发放一次")
	})
}
