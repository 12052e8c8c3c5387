package scenes

import (
	"fmt"
	"testing"
	"time"

	"github.com/decker502/arena/pkg/arena"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/systems"
	"github.com/decker502/arena/pkg/types"
	"github.com/decker502/arena/pkg/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDT = 1.0 / 60

type levelMap map[string]*config.LevelConfig

func (m levelMap) Load(levelID string) (*config.LevelConfig, error) {
	lc, ok := m[levelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", config.ErrLevelNotFound, levelID)
	}
	return lc, nil
}

// sceneLevels "a" 到达出口后进入 "b"；"b" 的下一关不存在
func sceneLevels() levelMap {
	exit := func(id, next string) *config.LevelConfig {
		return &config.LevelConfig{
			ID: id, Name: id,
			WinCondition: config.WinConditionConfig{
				Type: types.WinReachExit, ExitPosition: mgl64.Vec3{3, 0, 0}, ExitSize: mgl64.Vec3{2, 2, 2},
			},
			NextLevel: next,
		}
	}
	return levelMap{"a": exit("a", "b"), "b": exit("b", "missing")}
}

type tickCounter struct{ n int }

func (c *tickCounter) ObserveTick(time.Duration) { c.n++ }

type testScene struct {
	*ArenaScene
	sm       *game.SceneManager
	controls Controls
	ticks    *tickCounter
}

func newTestScene(t *testing.T) *testScene {
	t.Helper()
	effects := NewEffectLayer()
	a, err := arena.New(arena.Options{Levels: sceneLevels(), Presentation: effects})
	require.NoError(t, err)

	ts := &testScene{ticks: &tickCounter{}}
	ts.ArenaScene = NewArenaScene(ArenaSceneOptions{
		Arena:    a,
		Effects:  effects,
		Settings: game.NewSettingsManager(nil),
		Controls: func(*utils.Camera) Controls { return ts.controls },
		Ticks:    ts.ticks,
	})
	ts.sm = game.NewSceneManager(func(levelID string) (game.Scene, error) {
		if res := a.TransitionTo(levelID); !res.Success {
			return nil, res.Err
		}
		ts.Reset()
		return ts.ArenaScene, nil
	})
	ts.SetLevelLoader(ts.sm)
	require.NoError(t, ts.sm.LoadLevel("a"))
	return ts
}

// run 用同一个控制输入推进 n 帧
func (ts *testScene) run(c Controls, n int) {
	ts.controls = c
	for i := 0; i < n; i++ {
		ts.sm.Update(testDT)
	}
	ts.controls = Controls{}
}

func TestArenaScene_LevelFlow(t *testing.T) {
	ts := newTestScene(t)
	gs := ts.arena.State()

	ts.run(Controls{Sim: game.InputSnapshot{Right: true}}, 30)
	assert.Equal(t, types.OutcomeVictory, gs.Outcome)
	assert.Equal(t, 30, ts.ticks.n)
	assert.Contains(t, ts.hudLines(), "VICTORY! Press N for the next level or R to restart")

	t.Run("下一关", func(t *testing.T) {
		ts.run(Controls{NextLevel: true}, 1)
		assert.Equal(t, "b", gs.LevelID)
		assert.Equal(t, "b", ts.sm.CurrentLevel())
		assert.Equal(t, types.OutcomeNone, gs.Outcome)
	})

	t.Run("下一关不存在时显示错误并保持暂停", func(t *testing.T) {
		ts.run(Controls{Sim: game.InputSnapshot{Right: true}}, 30)
		require.Equal(t, types.OutcomeVictory, gs.Outcome)

		ts.run(Controls{NextLevel: true}, 1)
		assert.Contains(t, ts.Message(), "missing")
		assert.True(t, gs.Paused)
		assert.Equal(t, "b", ts.sm.CurrentLevel())

		ts.run(Controls{Restart: true}, 1)
		assert.Empty(t, ts.Message())
		assert.False(t, gs.Paused)
		assert.Equal(t, types.OutcomeNone, gs.Outcome)
	})
}

func TestArenaScene_RestartOnlyWhenFinished(t *testing.T) {
	ts := newTestScene(t)
	ts.run(Controls{}, 10)
	before := ts.arena.State().LevelTime

	ts.run(Controls{Restart: true}, 1)
	assert.Greater(t, ts.arena.State().LevelTime, before, "关卡进行中 R 不会重新开始")
}

func TestArenaScene_Toggles(t *testing.T) {
	ts := newTestScene(t)
	assert.False(t, ts.showColliders())

	ts.run(Controls{ToggleColliders: true}, 1)
	assert.True(t, ts.showColliders())

	ts.run(Controls{ToggleAutopilot: true}, 1)
	assert.True(t, ts.Demo())
	assert.Contains(t, ts.hudLines(), "AUTOPILOT")

	t.Run("暂停时 HUD 显示暂停", func(t *testing.T) {
		ts.run(Controls{Sim: game.InputSnapshot{PauseToggle: true}}, 1)
		assert.True(t, ts.arena.State().Paused)
		assert.Contains(t, ts.hudLines(), "PAUSED | AUTOPILOT")
	})
}

func TestArenaScene_CameraFollowsPlayer(t *testing.T) {
	ts := newTestScene(t)
	player, ok := ts.arena.Player()
	require.True(t, ok)

	ts.run(Controls{Sim: game.InputSnapshot{Left: true}}, 120)
	pos, _ := systems.PositionOf(ts.arena.Entities(), player)
	assert.Less(t, pos[0], -10.0)
	assert.InDelta(t, -5.0, ts.Camera().Center[0], 1e-9, "镜头停在世界边界内")
}

func TestArenaScene_EffectsFollowSimulation(t *testing.T) {
	ts := newTestScene(t)
	ts.effects.Explosion(mgl64.Vec3{}, 3)
	ts.effects.ZoneWarning("lava", ecs.EntityID(1), true)

	ts.run(Controls{}, 60)
	assert.Zero(t, ts.effects.Len())

	ts.run(Controls{NextLevel: true}, 1)
	assert.Equal(t, []string{"lava"}, ts.effects.Warned(1), "关卡未结束时不切换")
}
