package arena

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

const testDT = 1.0 / 60

// levelMap 内存中的关卡表
type levelMap map[string]*config.LevelConfig

func (m levelMap) Load(levelID string) (*config.LevelConfig, error) {
	lc, ok := m[levelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", config.ErrLevelNotFound, levelID)
	}
	return lc, nil
}

// levelSourceFunc 用函数实现 LevelSource
type levelSourceFunc func(levelID string) (*config.LevelConfig, error)

func (f levelSourceFunc) Load(levelID string) (*config.LevelConfig, error) {
	return f(levelID)
}

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

func basicWave(n int) config.WaveConfig {
	return config.WaveConfig{
		ZombieCount:  n,
		Distribution: []config.ZombieWeight{{Type: types.ZombieBasic, Percentage: 100}},
	}
}

// testLevels 测试用关卡
//
//	"1" - 一波 3 只普通僵尸，清场胜利，有障碍物和岩浆
//	"2" - 开场即出现 Boss，击败 Boss 胜利
//	"3" - 到达出口
func testLevels() levelMap {
	return levelMap{
		"1": {
			ID:          "1",
			Name:        "first",
			PlayerStart: mgl64.Vec3{0, 0, 0},
			SpawnPoints: []mgl64.Vec3{{0, 0, -20}, {15, 0, -15}, {-15, 0, -15}},
			Waves:       []config.WaveConfig{basicWave(3)},
			Obstacles:   []config.ObstacleConfig{{Position: mgl64.Vec3{10, 0, 10}, Size: mgl64.Vec3{2, 2, 2}}},
			Hazards: []config.HazardConfig{{
				Name: "lava", Type: types.HazardDamage, Variant: types.VariantLava,
				Position: mgl64.Vec3{-10, 0, 10}, Size: mgl64.Vec3{4, 1, 4},
				DamagePerSecond: 20, DamageType: types.DamageFire,
			}},
			WinCondition: config.WinConditionConfig{Type: types.WinKillAll},
			NextLevel:    "2",
		},
		"2": {
			ID:           "2",
			Name:         "boss",
			PlayerStart:  mgl64.Vec3{0, 0, 0},
			SpawnPoints:  []mgl64.Vec3{{0, 0, -30}},
			Boss:         &config.BossSpawnConfig{Name: "Gargantuar", Position: mgl64.Vec3{0, 0, 20}},
			WinCondition: config.WinConditionConfig{Type: types.WinKillBoss},
		},
		"3": {
			ID:          "3",
			Name:        "exit",
			PlayerStart: mgl64.Vec3{0, 0, 0},
			WinCondition: config.WinConditionConfig{
				Type: types.WinReachExit, ExitPosition: mgl64.Vec3{12, 0, 0}, ExitSize: mgl64.Vec3{2, 2, 2},
			},
		},
	}
}

func newTestArena(t *testing.T, levels LevelSource) (*Arena, *recordingAudio) {
	t.Helper()
	audio := &recordingAudio{}
	a, err := New(Options{
		Levels: levels,
		Audio:  audio,
		Rand:   rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)
	return a, audio
}

func (a *Arena) step(in game.InputSnapshot, n int) {
	for i := 0; i < n; i++ {
		a.Tick(in, testDT)
	}
}

func countKind(em *ecs.EntityManager, kind types.EntityKind) int {
	n := 0
	for _, id := range ecs.GetEntitiesWith1[*components.EntityComponent](em) {
		ec, _ := ecs.GetComponent[*components.EntityComponent](em, id)
		if ec.Kind == kind {
			n++
		}
	}
	return n
}
