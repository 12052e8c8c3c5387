package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math/rand"

	"github.com/decker502/arena/pkg/arena"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/types"
)

// 数据目录中的文件布局
const (
	ArenaConfigFile = "arena.yaml"
	ZombieStatsFile = "zombie_stats.yaml"
	LevelsDir       = "levels"

	// DefaultLevel 没有指定关卡也没有存档时的起始关卡
	DefaultLevel = "1"
)

// Content 从数据目录加载的只读内容
type Content struct {
	Arena       *config.ArenaConfig
	ZombieStats *config.ZombieStatsConfig
	Levels      *config.LevelRepository
}

// LoadContent 从数据目录加载配置
// arena.yaml 和 zombie_stats.yaml 不存在时使用内置默认值，存在但无法解析时返回错误
func LoadContent(data fs.FS) (*Content, error) {
	if data == nil {
		return nil, fmt.Errorf("data filesystem cannot be nil")
	}

	arenaCfg, err := config.LoadArenaConfig(data, ArenaConfigFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("[App] %s not found, using defaults", ArenaConfigFile)
		arenaCfg = config.DefaultArenaConfig()
	case err != nil:
		return nil, fmt.Errorf("竞技场配置加载失败: %w", err)
	}

	stats, err := config.LoadZombieStats(data, ZombieStatsFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("[App] %s not found, using defaults", ZombieStatsFile)
		stats = config.DefaultZombieStats()
	case err != nil:
		return nil, fmt.Errorf("僵尸属性加载失败: %w", err)
	}

	return &Content{
		Arena:       arenaCfg,
		ZombieStats: stats,
		Levels:      config.NewLevelRepository(data, LevelsDir),
	}, nil
}

// SessionOptions 组装一次运行所需的依赖，除 Content 外都可以省略
type SessionOptions struct {
	Content      *Content
	Presentation game.PresentationSink
	Audio        game.AudioSink
	Metrics      *game.MetricsRecorder
	Scores       *game.ScoreBoard
	Settings     *game.SettingsManager
	Rand         *rand.Rand
}

// Session 一个竞技场加上它的结果记录
// 桌面端和无头模拟共用这一套组装逻辑
type Session struct {
	Arena    *arena.Arena
	Scores   *game.ScoreBoard
	Settings *game.SettingsManager
	Metrics  *game.MetricsRecorder

	records []game.RunRecord
}

// NewSession 创建竞技场并挂上分数榜、指标和设置
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Content == nil {
		return nil, fmt.Errorf("content cannot be nil")
	}

	presentation := game.PresentationFanout{}
	if opts.Presentation != nil {
		presentation = append(presentation, opts.Presentation)
	}
	audio := game.AudioFanout{}
	if opts.Audio != nil {
		audio = append(audio, opts.Audio)
	}
	var stats game.StatsSink
	if opts.Metrics != nil {
		presentation = append(presentation, opts.Metrics)
		audio = append(audio, opts.Metrics)
		stats = opts.Metrics
	}

	a, err := arena.New(arena.Options{
		Config:       opts.Content.Arena,
		ZombieStats:  opts.Content.ZombieStats,
		Levels:       opts.Content.Levels,
		Presentation: presentation,
		Audio:        audio,
		Stats:        stats,
		Rand:         opts.Rand,
	})
	if err != nil {
		return nil, err
	}

	s := &Session{
		Arena:    a,
		Scores:   opts.Scores,
		Settings: opts.Settings,
		Metrics:  opts.Metrics,
	}
	a.OnLevelFinished(s.levelFinished)
	return s, nil
}

// levelFinished 关卡结果确定时记录分数、指标和下次启动的关卡
func (s *Session) levelFinished(rec game.RunRecord) {
	s.records = append(s.records, rec)
	log.Printf("[Session] Level %s finished: %s (score %d, kills %d, %.1fs)",
		rec.LevelID, rec.Outcome, rec.Score, rec.Kills, rec.Duration)

	if s.Metrics != nil {
		s.Metrics.LevelFinished(rec.LevelID, rec.Outcome)
	}

	if s.Scores != nil {
		best, err := s.Scores.Record(rec)
		if err != nil {
			log.Printf("[Session] Warning: failed to save score board: %v", err)
		}
		if best {
			log.Printf("[Session] New best score for level %s: %d", rec.LevelID, rec.Score)
		}
	}

	if s.Settings != nil {
		last := rec.LevelID
		if next := s.Arena.NextLevel(); rec.Outcome == types.OutcomeVictory && next != "" {
			last = next
		}
		s.Settings.SetLastLevel(last)
		if err := s.Settings.Save(); err != nil {
			log.Printf("[Session] Warning: failed to save settings: %v", err)
		}
	}
}

// Records 本次运行中已结束的关卡（按结束顺序）
func (s *Session) Records() []game.RunRecord {
	return s.records
}

// StartLevel 决定启动关卡：显式指定 > 上次进度 > 默认关卡
func StartLevel(requested string, settings *game.SettingsManager) string {
	if requested != "" {
		return requested
	}
	if settings != nil {
		if last := settings.GetSettings().LastLevel; last != "" {
			log.Printf("[App] Continuing from saved level %s", last)
			return last
		}
	}
	return DefaultLevel
}
