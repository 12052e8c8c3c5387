package game

import (
	"github.com/decker502/arena/pkg/types"
	"github.com/google/uuid"
)

// GameState 一次竞技场运行的状态
//
// 由编排器创建并显式传给需要它的系统，不是全局单例。
// 同时实现 StatsSink，作为分数/击杀/波次的本地记录。
type GameState struct {
	RunID   string // 本次运行的唯一标识
	LevelID string

	Time      float64 // 模拟时间（秒），跨关卡累计
	LevelTime float64 // 当前关卡已进行时间（秒）

	Score int
	Kills int
	Wave  int // 当前波次（1-based，0 表示尚未开始）

	Paused  bool
	Outcome types.Outcome
}

// NewGameState 创建新的运行状态
func NewGameState() *GameState {
	return &GameState{RunID: uuid.NewString()}
}

// Now 当前模拟时间
func (gs *GameState) Now() float64 {
	return gs.Time
}

// Advance 推进模拟时间
func (gs *GameState) Advance(deltaTime float64) {
	gs.Time += deltaTime
	gs.LevelTime += deltaTime
}

// ResetForLevel 切换关卡时重置关卡内状态（分数与击杀跨关卡保留）
func (gs *GameState) ResetForLevel(levelID string) {
	gs.LevelID = levelID
	gs.LevelTime = 0
	gs.Wave = 0
	gs.Outcome = types.OutcomeNone
}

// AddScore 增加分数
func (gs *GameState) AddScore(n int) {
	if n > 0 {
		gs.Score += n
	}
}

// IncrementKills 击杀数加一
func (gs *GameState) IncrementKills() {
	gs.Kills++
}

// SetWave 设置当前波次
func (gs *GameState) SetWave(n int) {
	gs.Wave = n
}

// IsFinished 关卡结果是否已确定
func (gs *GameState) IsFinished() bool {
	return gs.Outcome != types.OutcomeNone
}
