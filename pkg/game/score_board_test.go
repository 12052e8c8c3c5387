package game

import (
	"fmt"
	"testing"

	"github.com/decker502/arena/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunRecord(t *testing.T) {
	gs := NewGameState()
	gs.ResetForLevel("2")
	gs.AddScore(450)
	gs.IncrementKills()
	gs.SetWave(3)
	gs.Advance(12.5)
	gs.Outcome = types.OutcomeVictory

	rec := NewRunRecord(gs)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, gs.RunID, rec.RunID)
	assert.Equal(t, "2", rec.LevelID)
	assert.Equal(t, types.OutcomeVictory, rec.Outcome)
	assert.Equal(t, 450, rec.Score)
	assert.Equal(t, 1, rec.Kills)
	assert.Equal(t, 3, rec.Wave)
	assert.Equal(t, 12.5, rec.Duration)
	assert.False(t, rec.FinishedAt.IsZero())
}

func TestScoreBoard_BestScore(t *testing.T) {
	tests := []struct {
		name    string
		records []RunRecord
		want    int
		newBest []bool
	}{
		{
			name:    "首次胜利成为最高分",
			records: []RunRecord{{LevelID: "1", Outcome: types.OutcomeVictory, Score: 300}},
			want:    300,
			newBest: []bool{true},
		},
		{
			name: "失败不参与最高分",
			records: []RunRecord{
				{LevelID: "1", Outcome: types.OutcomeVictory, Score: 300},
				{LevelID: "1", Outcome: types.OutcomeDefeat, Score: 900},
			},
			want:    300,
			newBest: []bool{true, false},
		},
		{
			name: "同分时用时更短者胜出",
			records: []RunRecord{
				{LevelID: "1", Outcome: types.OutcomeVictory, Score: 300, Duration: 40},
				{LevelID: "1", Outcome: types.OutcomeVictory, Score: 300, Duration: 30},
				{LevelID: "1", Outcome: types.OutcomeVictory, Score: 200, Duration: 10},
			},
			want:    300,
			newBest: []bool{true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb, err := NewScoreBoard(nil)
			require.NoError(t, err)
			for i, rec := range tt.records {
				got, err := sb.Record(rec)
				require.NoError(t, err)
				assert.Equal(t, tt.newBest[i], got, "record %d", i)
			}
			best, ok := sb.Best("1")
			require.True(t, ok)
			assert.Equal(t, tt.want, best.Score)
			assert.Len(t, sb.Recent(), len(tt.records))
		})
	}
}

func TestScoreBoard_RecentIsBounded(t *testing.T) {
	sb, err := NewScoreBoard(nil)
	require.NoError(t, err)

	for i := 0; i < MaxRecentRecords+5; i++ {
		_, err := sb.Record(RunRecord{LevelID: fmt.Sprint(i % 3), Outcome: types.OutcomeDefeat, Score: i})
		require.NoError(t, err)
	}

	recent := sb.Recent()
	require.Len(t, recent, MaxRecentRecords)
	assert.Equal(t, MaxRecentRecords+4, recent[0].Score, "新的记录在前")
	assert.NotEmpty(t, recent[0].ID, "缺少ID时自动生成")
	assert.Empty(t, sb.Levels())
}

func TestScoreBoard_Persistence(t *testing.T) {
	storage := openTestStorage(t, "scores")

	sb, err := NewScoreBoard(storage)
	require.NoError(t, err)
	_, err = sb.Record(RunRecord{LevelID: "2", Outcome: types.OutcomeVictory, Score: 1200, Kills: 9})
	require.NoError(t, err)
	_, err = sb.Record(RunRecord{LevelID: "1", Outcome: types.OutcomeVictory, Score: 500})
	require.NoError(t, err)

	reloaded, err := NewScoreBoard(storage)
	require.NoError(t, err)
	best, ok := reloaded.Best("2")
	require.True(t, ok)
	assert.Equal(t, 1200, best.Score)
	assert.Equal(t, 9, best.Kills)
	assert.Equal(t, types.OutcomeVictory, best.Outcome)
	assert.Equal(t, []string{"1", "2"}, reloaded.Levels())
	assert.Len(t, reloaded.Recent(), 2)

	t.Run("损坏的数据返回错误但分数榜可用", func(t *testing.T) {
		require.NoError(t, storage.SaveObjectProp(scoresObject, scoresProperty, []byte("best: [1, 2")))
		broken, err := NewScoreBoard(storage)
		assert.Error(t, err)
		require.NotNil(t, broken)
		_, ok := broken.Best("2")
		assert.False(t, ok)
	})
}
