package systems

import (
	"log"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/entities"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

// LevelSystem 关卡管理系统
//
// 职责：
//   - 关卡开始时启动第一波；当前波次清空后，间隔 WaveDelay 秒启动下一波
//   - 清完配置的波次数后让 Boss 出场
//   - 敌人死亡时记分、计击杀并安排删除
//   - 检测胜利/失败条件，结果一经确定不再改变
//
// 架构说明：
//   - 游戏状态由编排器创建后注入，不是单例
//   - 依赖 WaveSpawnSystem 生成僵尸、BossSystem 管理 Boss（通过构造函数注入）
type LevelSystem struct {
	entityManager   *ecs.EntityManager
	gameState       *game.GameState
	stats           game.StatsSink
	audio           game.AudioSink
	cfg             *config.ArenaConfig
	zombieStats     *config.ZombieStatsConfig
	physics         *PhysicsSystem
	scheduler       *Scheduler
	waveSpawnSystem *WaveSpawnSystem
	bossSystem      *BossSystem

	levelConfig   *config.LevelConfig
	nextScheduled bool // 下一波已登记到调度器
	bossSpawned   bool
	bossID        ecs.EntityID
}

// NewLevelSystem 创建关卡管理系统
//
// 参数：
//
//	em - 实体管理器
//	gs - 游戏状态
//	stats - 统计层（分数、击杀）
//	audio - 音频层
//	cfg - 竞技场配置
//	zs - 僵尸属性配置（Boss 属性）
//	physics - 物理系统
//	scheduler - 延迟事件调度器
//	ws - 波次生成系统（依赖注入）
//	bs - Boss 系统（依赖注入）
func NewLevelSystem(em *ecs.EntityManager, gs *game.GameState, stats game.StatsSink, audio game.AudioSink, cfg *config.ArenaConfig,
	zs *config.ZombieStatsConfig, physics *PhysicsSystem, scheduler *Scheduler, ws *WaveSpawnSystem, bs *BossSystem) *LevelSystem {
	if stats == nil {
		stats = gs
	}
	if audio == nil {
		audio = game.NopAudio{}
	}
	return &LevelSystem{
		entityManager:   em,
		gameState:       gs,
		stats:           stats,
		audio:           audio,
		cfg:             cfg,
		zombieStats:     zs,
		physics:         physics,
		scheduler:       scheduler,
		waveSpawnSystem: ws,
		bossSystem:      bs,
	}
}

// LoadLevel 设置当前关卡并重置关卡进度（不启动波次）
func (s *LevelSystem) LoadLevel(lc *config.LevelConfig) {
	s.levelConfig = lc
	s.nextScheduled = false
	s.bossSpawned = false
	s.bossID = 0
	s.waveSpawnSystem.LoadLevel(lc)
}

// Level 当前关卡配置
func (s *LevelSystem) Level() *config.LevelConfig {
	return s.levelConfig
}

// Start 关卡开始：启动第一波，Boss 配置为开场出现时立即生成
func (s *LevelSystem) Start() {
	if s.levelConfig == nil {
		return
	}
	log.Printf("[LevelSystem] Level %s (%s) started: %d waves, win condition %s",
		s.levelConfig.ID, s.levelConfig.Name, len(s.levelConfig.Waves), s.levelConfig.WinCondition.Type)
	s.waveSpawnSystem.StartNextWave()
	s.checkBossSpawn()
}

// Update 更新关卡系统
//
// 执行流程：
//  1. 结果已确定则不处理
//  2. 检查波次推进与 Boss 出场
//  3. 检查失败条件（优先于胜利条件）
//  4. 检查胜利条件
func (s *LevelSystem) Update(deltaTime float64) {
	if s.levelConfig == nil || s.gameState.IsFinished() {
		return
	}

	s.checkAndStartWaves()
	s.checkBossSpawn()

	if s.checkDefeatCondition() {
		s.setOutcome(types.OutcomeDefeat)
		return
	}
	if s.checkVictoryCondition() {
		s.setOutcome(types.OutcomeVictory)
	}
}

// checkAndStartWaves 当前波次清空后登记下一波
func (s *LevelSystem) checkAndStartWaves() {
	ws := s.waveSpawnSystem
	if s.nextScheduled || ws.WavesExhausted() {
		return
	}
	current := ws.CurrentWave()
	if current >= 0 && !ws.IsWaveComplete(current) {
		return
	}

	s.nextScheduled = true
	log.Printf("[LevelSystem] Wave %d complete, next wave in %.1fs", current+1, s.cfg.Spawner.WaveDelay)
	level := s.levelConfig
	s.scheduler.Schedule(s.cfg.Spawner.WaveDelay, 0, "next-wave", func() {
		if s.levelConfig != level {
			return
		}
		s.nextScheduled = false
		s.waveSpawnSystem.StartNextWave()
	})
}

// CompletedWaves 从第一波开始连续清空的波次数
func (s *LevelSystem) CompletedWaves() int {
	n := 0
	for i := 0; i <= s.waveSpawnSystem.CurrentWave(); i++ {
		if !s.waveSpawnSystem.IsWaveComplete(i) {
			break
		}
		n++
	}
	return n
}

// checkBossSpawn 清完 AfterWave 波后生成 Boss
func (s *LevelSystem) checkBossSpawn() {
	boss := s.levelConfig.Boss
	if boss == nil || s.bossSpawned {
		return
	}
	if s.CompletedWaves() < boss.AfterWave {
		return
	}

	s.bossSpawned = true
	id, err := entities.NewBossEntity(s.entityManager, s.zombieStats, s.cfg.Boss, boss.Name, boss.Position)
	if err != nil {
		log.Printf("[LevelSystem] ERROR: failed to spawn boss: %v", err)
		return
	}
	s.bossID = id
	s.physics.AddEntity(id, false)
	s.bossSystem.SetBoss(id)
}

// BossSpawned Boss 是否已经出场
func (s *LevelSystem) BossSpawned() bool {
	return s.bossSpawned
}

// OnEntityDeath 死亡回调：敌人死亡时记分、计击杀；普通敌人在帧末删除
// Boss 的奖励与删除由 BossSystem 负责
func (s *LevelSystem) OnEntityDeath(id ecs.EntityID, kind types.EntityKind, src DamageSource) {
	if !kind.IsEnemy() {
		if kind == types.KindPlayer {
			log.Printf("[LevelSystem] Player died (%s from %d)", src.Type, src.SourceID)
			s.audio.Play("player died", nil)
		}
		return
	}

	s.stats.IncrementKills()
	if zombie, ok := ecs.GetComponent[*components.ZombieComponent](s.entityManager, id); ok {
		s.stats.AddScore(zombie.ScoreValue)
	}
	pos, _ := PositionOf(s.entityManager, id)
	s.audio.Play("zombie died", &pos)

	if kind == types.KindZombie {
		if ec, ok := ecs.GetComponent[*components.EntityComponent](s.entityManager, id); ok {
			ec.Active = false
		}
		s.entityManager.DestroyEntity(id)
	}
}

// checkDefeatCondition 玩家不存在或已死亡
func (s *LevelSystem) checkDefeatCondition() bool {
	id, ok := FindPlayer(s.entityManager)
	if !ok {
		return true
	}
	health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, id)
	return ok && health.IsDead
}

// checkVictoryCondition 按关卡胜利条件判断
func (s *LevelSystem) checkVictoryCondition() bool {
	wc := s.levelConfig.WinCondition
	switch wc.Type {
	case types.WinKillAll:
		return s.allEnemiesCleared()
	case types.WinSurviveTime:
		return s.gameState.LevelTime >= wc.SurviveSeconds
	case types.WinKillBoss:
		return s.bossDefeated()
	case types.WinReachExit:
		return s.playerAtExit(wc)
	}
	return false
}

// allEnemiesCleared 所有波次都已开始且清空，Boss（如有）已击败，场上没有存活敌人
func (s *LevelSystem) allEnemiesCleared() bool {
	ws := s.waveSpawnSystem
	if !ws.WavesExhausted() || ws.TotalRemaining() > 0 {
		return false
	}
	if s.levelConfig.Boss != nil && !s.bossDefeated() {
		return false
	}
	for _, id := range ecs.GetEntitiesWith1[*components.ZombieComponent](s.entityManager) {
		if IsAlive(s.entityManager, id) {
			return false
		}
	}
	return true
}

// bossDefeated Boss 已出场且被击败（或已被删除）
func (s *LevelSystem) bossDefeated() bool {
	if !s.bossSpawned || s.bossID == 0 {
		return false
	}
	boss, ok := ecs.GetComponent[*components.BossComponent](s.entityManager, s.bossID)
	if !ok {
		return true
	}
	return boss.Defeated
}

// playerAtExit 玩家包围盒与出口区域相交
func (s *LevelSystem) playerAtExit(wc config.WinConditionConfig) bool {
	id, ok := FindPlayer(s.entityManager)
	if !ok {
		return false
	}
	box, ok := worldAABBOf(s.entityManager, id)
	if !ok {
		return false
	}
	return box.Intersects(ExitBounds(wc))
}

// ExitBounds 出口区域（ExitPosition 为底面中心）
func ExitBounds(wc config.WinConditionConfig) components.AABB {
	half := mgl64.Vec3{wc.ExitSize[0] / 2, 0, wc.ExitSize[2] / 2}
	return components.AABB{
		Min: wc.ExitPosition.Sub(half),
		Max: wc.ExitPosition.Add(mgl64.Vec3{half[0], wc.ExitSize[1], half[2]}),
	}
}

// setOutcome 锁定关卡结果
func (s *LevelSystem) setOutcome(outcome types.Outcome) {
	if s.gameState.IsFinished() {
		return
	}
	s.gameState.Outcome = outcome
	log.Printf("[LevelSystem] Level %s finished: %s (time %.1fs, score %d, kills %d)",
		s.levelConfig.ID, outcome, s.gameState.LevelTime, s.gameState.Score, s.gameState.Kills)
	s.audio.Play(outcome.String(), nil)
}
