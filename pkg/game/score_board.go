package game

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/decker502/arena/pkg/types"
	"github.com/google/uuid"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// RunRecord 一次关卡结束时的记录
type RunRecord struct {
	ID         string        `yaml:"id"`
	RunID      string        `yaml:"runId"`
	LevelID    string        `yaml:"levelId"`
	Outcome    types.Outcome `yaml:"outcome"`
	Score      int           `yaml:"score"`
	Kills      int           `yaml:"kills"`
	Wave       int           `yaml:"wave"`
	Duration   float64       `yaml:"duration"` // 关卡用时（模拟秒）
	FinishedAt time.Time     `yaml:"finishedAt"`
}

// NewRunRecord 根据当前运行状态生成记录
func NewRunRecord(gs *GameState) RunRecord {
	return RunRecord{
		ID:         uuid.NewString(),
		RunID:      gs.RunID,
		LevelID:    gs.LevelID,
		Outcome:    gs.Outcome,
		Score:      gs.Score,
		Kills:      gs.Kills,
		Wave:       gs.Wave,
		Duration:   gs.LevelTime,
		FinishedAt: time.Now(),
	}
}

// scoreBoardData 持久化的数据结构
type scoreBoardData struct {
	Best   map[string]RunRecord `yaml:"best"`   // 关卡ID -> 该关卡胜利时的最高分记录
	Recent []RunRecord          `yaml:"recent"` // 最近的记录（新的在前）
}

// MaxRecentRecords 保留的最近记录条数
const MaxRecentRecords = 20

// ScoreBoard 分数榜
//
// 职责：
//   - 记录每次关卡结束的结果
//   - 维护每个关卡胜利时的最高分
//   - 通过 gdata 持久化（YAML 编码）；gdataManager 为 nil 时只保存在内存中
type ScoreBoard struct {
	gdataManager *gdata.Manager
	data         *scoreBoardData
}

const (
	scoresObject   = "scores"
	scoresProperty = "board"
)

// NewScoreBoard 创建分数榜并加载已有数据
//
// 返回：
//   - error: 已有数据存在但无法解析时返回错误（分数榜仍可用，从空记录开始）
func NewScoreBoard(gdataManager *gdata.Manager) (*ScoreBoard, error) {
	sb := &ScoreBoard{gdataManager: gdataManager, data: newScoreBoardData()}
	if err := sb.load(); err != nil {
		return sb, err
	}
	return sb, nil
}

func newScoreBoardData() *scoreBoardData {
	return &scoreBoardData{Best: make(map[string]RunRecord)}
}

func (sb *ScoreBoard) load() error {
	if sb.gdataManager == nil || !sb.gdataManager.ObjectPropExists(scoresObject, scoresProperty) {
		return nil
	}

	raw, err := sb.gdataManager.LoadObjectProp(scoresObject, scoresProperty)
	if err != nil {
		return fmt.Errorf("failed to load score board: %w", err)
	}

	data := newScoreBoardData()
	if err := yaml.Unmarshal(raw, data); err != nil {
		return fmt.Errorf("failed to parse score board: %w", err)
	}
	if data.Best == nil {
		data.Best = make(map[string]RunRecord)
	}
	sb.data = data
	log.Printf("[ScoreBoard] Loaded %d best scores, %d recent runs", len(data.Best), len(data.Recent))
	return nil
}

func (sb *ScoreBoard) save() error {
	if sb.gdataManager == nil {
		return nil
	}
	raw, err := yaml.Marshal(sb.data)
	if err != nil {
		return fmt.Errorf("failed to marshal score board: %w", err)
	}
	if err := sb.gdataManager.SaveObjectProp(scoresObject, scoresProperty, raw); err != nil {
		return fmt.Errorf("failed to save score board: %w", err)
	}
	return nil
}

// Record 记录一次关卡结果并持久化
//
// 返回：
//   - bool: 是否刷新了该关卡的最高分（只有胜利才参与最高分）
//   - error: 持久化失败（内存中的记录已经更新）
func (sb *ScoreBoard) Record(rec RunRecord) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	sb.data.Recent = append([]RunRecord{rec}, sb.data.Recent...)
	if len(sb.data.Recent) > MaxRecentRecords {
		sb.data.Recent = sb.data.Recent[:MaxRecentRecords]
	}

	newBest := false
	if rec.Outcome == types.OutcomeVictory {
		best, ok := sb.data.Best[rec.LevelID]
		if !ok || rec.Score > best.Score || (rec.Score == best.Score && rec.Duration < best.Duration) {
			sb.data.Best[rec.LevelID] = rec
			newBest = true
			log.Printf("[ScoreBoard] New best for level %s: %d", rec.LevelID, rec.Score)
		}
	}

	return newBest, sb.save()
}

// Best 指定关卡的最高分记录
func (sb *ScoreBoard) Best(levelID string) (RunRecord, bool) {
	rec, ok := sb.data.Best[levelID]
	return rec, ok
}

// Recent 最近的记录（新的在前）
func (sb *ScoreBoard) Recent() []RunRecord {
	out := make([]RunRecord, len(sb.data.Recent))
	copy(out, sb.data.Recent)
	return out
}

// Levels 有最高分记录的关卡（排序后）
func (sb *ScoreBoard) Levels() []string {
	ids := make([]string, 0, len(sb.data.Best))
	for id := range sb.data.Best {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
