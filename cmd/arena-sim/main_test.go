package main

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/decker502/arena/pkg/app"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exitLevel(id, next string) []byte {
	return []byte(`
id: "` + id + `"
playerStart: [0, 0, 0]
winCondition:
  type: reach_exit
  exitPosition: [6, 0, 0]
  exitSize: [2, 2, 2]
nextLevel: "` + next + `"
`)
}

func testContent(t *testing.T) *app.Content {
	t.Helper()
	c, err := app.LoadContent(fstest.MapFS{
		"levels/level-e1.yaml": {Data: exitLevel("e1", "e2")},
		"levels/level-e2.yaml": {Data: exitLevel("e2", "missing")},
	})
	require.NoError(t, err)
	return c
}

func TestRun_SingleLevel(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := game.NewMetricsRecorder(reg)

	r, err := run(simOptions{Level: "e1", MaxTicks: 600, Seed: 1, Content: testContent(t), Metrics: metrics})
	require.NoError(t, err)
	require.Len(t, r.Records, 1)
	assert.Equal(t, types.OutcomeVictory, r.Records[0].Outcome)
	assert.Less(t, r.Ticks, 600, "胜利后立即停止")

	count, err := testutil.GatherAndCount(reg, "arena_tick_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRun_Chain(t *testing.T) {
	scores, err := game.NewScoreBoard(nil)
	require.NoError(t, err)

	r, err := run(simOptions{Level: "e1", MaxTicks: 2000, Chain: true, Content: testContent(t), Scores: scores})
	assert.ErrorIs(t, err, errStalled, "最后一关的下一关不存在")
	require.NotNil(t, r)
	require.Len(t, r.Records, 2)
	assert.Equal(t, "e1", r.Records[0].LevelID)
	assert.Equal(t, "e2", r.Records[1].LevelID)
	assert.Len(t, scores.Recent(), 2)

	var out bytes.Buffer
	printResult(&out, r)
	assert.Contains(t, out.String(), "LEVEL")
	assert.Contains(t, out.String(), "victory")
}

func TestRun_Errors(t *testing.T) {
	c := testContent(t)

	t.Run("tick 数必须为正", func(t *testing.T) {
		_, err := run(simOptions{Level: "e1", Content: c})
		assert.Error(t, err)
	})

	t.Run("起始关卡不存在", func(t *testing.T) {
		_, err := run(simOptions{Level: "nope", MaxTicks: 10, Content: c})
		assert.ErrorIs(t, err, errStalled)
	})

	t.Run("tick 用完时没有记录", func(t *testing.T) {
		r, err := run(simOptions{Level: "e1", MaxTicks: 5, Content: c})
		require.NoError(t, err)
		assert.Empty(t, r.Records)
		assert.Equal(t, 5, r.Ticks)
	})
}
