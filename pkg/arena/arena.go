// Package arena 组装竞技场模拟：创建实体管理器和所有系统，
// 按固定顺序推进每个 tick，并负责关卡切换。
//
// 这里是唯一持有全部系统引用的地方，系统之间的依赖都在 New 中显式注入。
package arena

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/entities"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/systems"
	"github.com/decker502/arena/pkg/systems/behavior"
	"github.com/decker502/arena/pkg/types"
)

// ErrTransitionInProgress 已有关卡切换正在进行
var ErrTransitionInProgress = errors.New("level transition already in progress")

// LevelSource 按ID提供关卡内容（config.LevelRepository 实现了它）
type LevelSource interface {
	Load(levelID string) (*config.LevelConfig, error)
}

// LoadResult 关卡切换结果
type LoadResult struct {
	Success bool
	LevelID string
	Err     error
}

// Options 创建竞技场所需的依赖
// 除 Levels 外都可以省略，省略时使用默认配置和空实现
type Options struct {
	Config       *config.ArenaConfig
	ZombieStats  *config.ZombieStatsConfig
	Levels       LevelSource
	Presentation game.PresentationSink
	Audio        game.AudioSink
	Stats        game.StatsSink // 额外的统计接收者，GameState 总是会收到统计
	Rand         *rand.Rand
}

// Arena 一次竞技场运行
type Arena struct {
	em          *ecs.EntityManager
	cfg         *config.ArenaConfig
	zombieStats *config.ZombieStatsConfig
	levels      LevelSource
	gameState   *game.GameState

	physics     *systems.PhysicsSystem
	damage      *systems.DamageSystem
	scheduler   *systems.Scheduler
	projectiles *systems.ProjectileSystem
	hazards     *systems.HazardZoneSystem
	waves       *systems.WaveSpawnSystem
	boss        *systems.BossSystem
	player      *systems.PlayerSystem
	behavior    *behavior.BehaviorSystem
	level       *systems.LevelSystem

	transitioning bool
	awaitingLevel bool // 最近一次切换失败，成功切换之前保持暂停
	reported      bool // 本关结果已通知过监听者
	listeners     []func(game.RunRecord)
	ticks         uint64
}

// New 创建竞技场（尚未加载关卡，调用 TransitionTo 开始）
func New(opts Options) (*Arena, error) {
	if opts.Levels == nil {
		return nil, fmt.Errorf("level source cannot be nil")
	}

	// 复制一份配置：调试开关会在运行时切换，不影响调用方持有的配置
	cfg := config.DefaultArenaConfig()
	if opts.Config != nil {
		c := *opts.Config
		cfg = &c
	}
	zs := opts.ZombieStats
	if zs == nil {
		zs = config.DefaultZombieStats()
	}
	presentation := opts.Presentation
	if presentation == nil {
		presentation = game.NopPresentation{}
	}
	audio := opts.Audio
	if audio == nil {
		audio = game.NopAudio{}
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	a := &Arena{
		em:          ecs.NewEntityManager(),
		cfg:         cfg,
		zombieStats: zs,
		levels:      opts.Levels,
		gameState:   game.NewGameState(),
	}

	var stats game.StatsSink = a.gameState
	if opts.Stats != nil {
		stats = game.StatsFanout{a.gameState, opts.Stats}
	}

	clock := a.gameState.Now
	bounds := components.AABB{Min: cfg.World.Min, Max: cfg.World.Max}

	a.physics = systems.NewPhysicsSystem(a.em, bounds, cfg.Debug.Enabled && cfg.Debug.LogCollisions)
	a.damage = systems.NewDamageSystem(a.em, cfg, clock, audio)
	a.scheduler = systems.NewScheduler(a.em, clock)
	a.projectiles = systems.NewProjectileSystem(a.em, a.physics, a.damage, cfg, presentation, audio)
	a.hazards = systems.NewHazardZoneSystem(a.em, a.damage, cfg, clock, presentation, audio)
	a.waves = systems.NewWaveSpawnSystem(a.em, a.physics, a.scheduler, zs, cfg.Spawner, stats, rng)
	a.boss = systems.NewBossSystem(a.em, cfg, a.damage, a.scheduler, clock, stats, presentation, audio)
	a.player = systems.NewPlayerSystem(a.em, cfg, a.projectiles, clock, presentation, audio)
	a.behavior = behavior.NewBehaviorSystem(a.em, cfg, a.damage, clock, presentation, audio)
	a.level = systems.NewLevelSystem(a.em, a.gameState, stats, audio, cfg, zs, a.physics, a.scheduler, a.waves, a.boss)

	a.boss.SetMover(a.behavior)
	a.boss.SetSummoner(a.waves)

	// 死亡通知顺序：波次计数 → Boss 击败流程 → 记分与删除
	a.damage.OnDeath(a.waves.OnEntityDeath)
	a.damage.OnDeath(a.boss.OnEntityDeath)
	a.damage.OnDeath(a.level.OnEntityDeath)

	log.Printf("[Arena] Created run %s (tick rate %d, debug %v)", a.gameState.RunID, cfg.TickRate, cfg.Debug.Enabled)
	return a, nil
}

// OnLevelFinished 注册关卡结果监听者（每关结果确定时调用一次）
func (a *Arena) OnLevelFinished(fn func(game.RunRecord)) {
	if fn != nil {
		a.listeners = append(a.listeners, fn)
	}
}

// TransitionTo 切换到指定关卡
//
// 切换期间模拟暂停；成功后恢复运行。
// 关卡不存在或无法加载时返回失败结果，当前世界保持不变并维持暂停，由调用方决定重试或放弃。
// 切换进行中再次调用会被直接拒绝（不排队）。
func (a *Arena) TransitionTo(levelID string) LoadResult {
	if a.transitioning {
		log.Printf("[Arena] Rejected transition to %s: another transition is in progress", levelID)
		return LoadResult{LevelID: levelID, Err: ErrTransitionInProgress}
	}
	a.transitioning = true
	defer func() { a.transitioning = false }()

	a.gameState.Paused = true

	lc, err := a.levels.Load(levelID)
	if err != nil {
		a.awaitingLevel = true
		log.Printf("[Arena] ERROR: failed to load level %s: %v", levelID, err)
		return LoadResult{LevelID: levelID, Err: err}
	}

	a.resetWorld()
	if err := a.buildLevel(lc); err != nil {
		a.awaitingLevel = true
		log.Printf("[Arena] ERROR: failed to build level %s: %v", levelID, err)
		return LoadResult{LevelID: levelID, Err: err}
	}

	a.gameState.ResetForLevel(lc.ID)
	a.level.LoadLevel(lc)
	a.level.Start()

	a.reported = false
	a.awaitingLevel = false
	a.gameState.Paused = false
	log.Printf("[Arena] Entered level %s (%s)", lc.ID, lc.Name)
	return LoadResult{Success: true, LevelID: lc.ID}
}

// resetWorld 删除所有实体并清空各系统的内部状态
func (a *Arena) resetWorld() {
	for _, id := range ecs.GetEntitiesWith1[*components.EntityComponent](a.em) {
		a.em.DestroyEntity(id)
	}
	a.em.RemoveMarkedEntities()

	a.physics.Clear()
	a.hazards.Reset()
	a.boss.Clear()
	a.scheduler.Clear()
}

// buildLevel 创建玩家、障碍物和危险区域
// 单个障碍物或危险区域创建失败只跳过它，玩家创建失败则整个关卡失败
func (a *Arena) buildLevel(lc *config.LevelConfig) error {
	player, err := entities.NewPlayerEntity(a.em, a.cfg, lc.PlayerStart)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	a.physics.AddEntity(player, false)

	for i, oc := range lc.Obstacles {
		id, err := entities.NewObstacleEntity(a.em, oc)
		if err != nil {
			log.Printf("[Arena] Warning: skipping obstacle %d: %v", i, err)
			continue
		}
		a.physics.AddEntity(id, true)
	}

	for _, hc := range lc.Hazards {
		if _, err := entities.NewHazardZoneEntity(a.em, hc, a.cfg.Hazard); err != nil {
			log.Printf("[Arena] Warning: skipping hazard %s: %v", hc.Name, err)
		}
	}
	return nil
}

// Tick 推进一个 tick
//
// 暂停/调试切换沿在任何情况下都会处理；暂停、切换中或没有关卡时不推进模拟。
// 推进顺序固定：玩家 → 敌人 → Boss → 弹丸移动 → 弹丸命中 → 危险区域 → 物理 → 胜负判定 → 延迟事件 → 帧末清理。
//
// 返回模拟是否推进了
func (a *Arena) Tick(input game.InputSnapshot, deltaTime float64) bool {
	if input.DebugToggle {
		a.SetDebug(!a.cfg.Debug.Enabled)
	}
	if input.PauseToggle {
		a.TogglePause()
	}
	if a.transitioning || a.gameState.Paused || a.level.Level() == nil || deltaTime <= 0 {
		return false
	}

	a.gameState.Advance(deltaTime)

	a.player.Update(input, deltaTime)
	a.behavior.Update(deltaTime)
	a.boss.Update(deltaTime)
	a.projectiles.Advance(deltaTime)
	a.projectiles.ResolveHits()
	a.hazards.Update(deltaTime)
	a.physics.Update(deltaTime)
	a.level.Update(deltaTime)
	a.scheduler.Update()

	a.sweep()
	a.ticks++
	a.reportOutcome()
	return true
}

// sweep 帧末统一删除本帧标记的实体
func (a *Arena) sweep() {
	for _, id := range a.em.PendingDestroy() {
		a.physics.RemoveEntity(id)
		a.hazards.Forget(id)
	}
	a.em.RemoveMarkedEntities()
}

func (a *Arena) reportOutcome() {
	if a.reported || !a.gameState.IsFinished() {
		return
	}
	a.reported = true
	rec := game.NewRunRecord(a.gameState)
	for _, fn := range a.listeners {
		fn(rec)
	}
}

// TogglePause 切换暂停；切换失败后在成功加载关卡之前不能取消暂停
func (a *Arena) TogglePause() {
	if a.gameState.Paused && a.awaitingLevel {
		log.Printf("[Arena] Cannot resume: no level loaded since the last failed transition")
		return
	}
	a.gameState.Paused = !a.gameState.Paused
	log.Printf("[Arena] Paused: %v", a.gameState.Paused)
}

// SetDebug 开关调试模式（上帝模式和碰撞日志只在调试模式下生效）
func (a *Arena) SetDebug(enabled bool) {
	a.cfg.Debug.Enabled = enabled
	a.physics.SetLogCollisions(enabled && a.cfg.Debug.LogCollisions)
	log.Printf("[Arena] Debug: %v", enabled)
}

// DebugEnabled 调试模式是否开启
func (a *Arena) DebugEnabled() bool {
	return a.cfg.Debug.Enabled
}

// State 运行状态（分数、时间、结果）
func (a *Arena) State() *game.GameState {
	return a.gameState
}

// Entities 实体管理器，只供前端读取
func (a *Arena) Entities() *ecs.EntityManager {
	return a.em
}

// Config 本次运行使用的配置
func (a *Arena) Config() *config.ArenaConfig {
	return a.cfg
}

// Level 当前关卡配置，尚未加载时为 nil
func (a *Arena) Level() *config.LevelConfig {
	return a.level.Level()
}

// NextLevel 当前关卡胜利后应切换到的关卡，没有时为空
func (a *Arena) NextLevel() string {
	if lc := a.level.Level(); lc != nil && a.gameState.Outcome == types.OutcomeVictory {
		return lc.NextLevel
	}
	return ""
}

// Player 玩家实体
func (a *Arena) Player() (ecs.EntityID, bool) {
	return systems.FindPlayer(a.em)
}

// Boss 当前 Boss 及其阶段
func (a *Arena) Boss() (ecs.EntityID, int, bool) {
	id, ok := a.boss.ActiveBoss()
	return id, a.boss.Phase(), ok
}

// Ticks 已推进的 tick 数
func (a *Arena) Ticks() uint64 {
	return a.ticks
}

// Hazards 危险区域系统（前端查询预警状态、间歇泉状态）
func (a *Arena) Hazards() *systems.HazardZoneSystem {
	return a.hazards
}

// Waves 波次系统（前端显示剩余敌人）
func (a *Arena) Waves() *systems.WaveSpawnSystem {
	return a.waves
}

// ActiveProjectiles 当前存活的弹丸数
func (a *Arena) ActiveProjectiles() int {
	return a.projectiles.ActiveCount()
}
