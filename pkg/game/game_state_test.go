package game

import (
	"testing"

	"github.com/decker502/arena/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestNewGameState(t *testing.T) {
	a := NewGameState()
	b := NewGameState()

	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID, "每次运行有独立的标识")
	assert.Zero(t, a.Now())
	assert.Equal(t, types.OutcomeNone, a.Outcome)
	assert.False(t, a.IsFinished())
}

func TestGameState_Advance(t *testing.T) {
	gs := NewGameState()
	gs.Advance(0.5)
	gs.Advance(0.25)
	assert.Equal(t, 0.75, gs.Now())
	assert.Equal(t, 0.75, gs.LevelTime)
}

func TestGameState_ResetForLevel(t *testing.T) {
	gs := NewGameState()
	gs.ResetForLevel("1")
	gs.Advance(10)
	gs.AddScore(300)
	gs.IncrementKills()
	gs.SetWave(2)
	gs.Outcome = types.OutcomeVictory

	gs.ResetForLevel("2")

	assert.Equal(t, "2", gs.LevelID)
	assert.Zero(t, gs.LevelTime)
	assert.Zero(t, gs.Wave)
	assert.Equal(t, types.OutcomeNone, gs.Outcome)

	t.Run("分数、击杀和模拟时间跨关卡保留", func(t *testing.T) {
		assert.Equal(t, 300, gs.Score)
		assert.Equal(t, 1, gs.Kills)
		assert.Equal(t, 10.0, gs.Now())
	})
}

func TestGameState_AddScoreIgnoresNonPositive(t *testing.T) {
	gs := NewGameState()
	gs.AddScore(100)
	gs.AddScore(0)
	gs.AddScore(-50)
	assert.Equal(t, 100, gs.Score)
}

func TestStatsFanout(t *testing.T) {
	a, b := NewGameState(), NewGameState()
	fan := StatsFanout{a, b, NopStats{}}

	fan.AddScore(10)
	fan.IncrementKills()
	fan.SetWave(4)

	for _, gs := range []*GameState{a, b} {
		assert.Equal(t, 10, gs.Score)
		assert.Equal(t, 1, gs.Kills)
		assert.Equal(t, 4, gs.Wave)
	}
}

func TestInputSnapshot_MoveIntent(t *testing.T) {
	tests := []struct {
		name string
		in   InputSnapshot
		want [3]float64
	}{
		{"无输入", InputSnapshot{}, [3]float64{}},
		{"上", InputSnapshot{Up: true}, [3]float64{0, 0, -1}},
		{"右下", InputSnapshot{Down: true, Right: true}, [3]float64{1, 0, 1}},
		{"左右抵消", InputSnapshot{Left: true, Right: true, Up: true}, [3]float64{0, 0, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.MoveIntent()
			assert.Equal(t, tt.want, [3]float64(got))
		})
	}
}
