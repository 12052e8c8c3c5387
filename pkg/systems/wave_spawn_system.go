package systems

import (
	"log"
	"math"
	"math/rand"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/entities"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

// WaveSpawnSystem 波次生成系统
//
// 职责：
//   - 按顺序消费关卡的波次定义
//   - 按权重随机选择僵尸类型，循环使用出生点，加随机偏移避免重叠
//   - 通过调度器错开部署（第 i 只在 i × 间隔 后出现），不阻塞当前 tick
//   - 跟踪每一波的剩余数量：只有确认击杀才递减，与经过的时间无关
//
// 架构说明：
//   - 作为 LevelSystem 的依赖，由 LevelSystem 调用 StartNextWave
//   - 使用僵尸工厂函数创建实体（entities 包）
//   - 召唤物（WaveIndex = -1）不计入任何波次
type WaveSpawnSystem struct {
	entityManager *ecs.EntityManager
	physics       *PhysicsSystem
	scheduler     *Scheduler
	zombieStats   *config.ZombieStatsConfig
	spawnerConfig config.SpawnerConfig
	levelConfig   *config.LevelConfig
	stats         game.StatsSink
	rng           *rand.Rand

	nextWave  int   // 下一个要开始的波次索引
	remaining []int // 每一波尚未被击杀的数量（包括尚未部署的）
}

// NewWaveSpawnSystem 创建波次生成系统
//
// 参数：
//
//	em - 实体管理器
//	physics - 物理系统（新僵尸登记为动态实体）
//	scheduler - 延迟事件调度器
//	zs - 僵尸属性配置
//	sc - 生成参数
//	stats - 统计层（更新当前波次）
//	rng - 随机数源（测试中注入固定种子）
func NewWaveSpawnSystem(em *ecs.EntityManager, physics *PhysicsSystem, scheduler *Scheduler, zs *config.ZombieStatsConfig,
	sc config.SpawnerConfig, stats game.StatsSink, rng *rand.Rand) *WaveSpawnSystem {
	if stats == nil {
		stats = game.NopStats{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &WaveSpawnSystem{
		entityManager: em,
		physics:       physics,
		scheduler:     scheduler,
		zombieStats:   zs,
		spawnerConfig: sc,
		stats:         stats,
		rng:           rng,
	}
}

// LoadLevel 切换到新关卡的波次定义，重置所有波次进度
func (s *WaveSpawnSystem) LoadLevel(lc *config.LevelConfig) {
	s.levelConfig = lc
	s.nextWave = 0
	s.remaining = nil
	if lc != nil {
		s.remaining = make([]int, len(lc.Waves))
	}
}

// WaveCount 关卡总波次数
func (s *WaveSpawnSystem) WaveCount() int {
	if s.levelConfig == nil {
		return 0
	}
	return len(s.levelConfig.Waves)
}

// WavesExhausted 所有波次是否都已开始
func (s *WaveSpawnSystem) WavesExhausted() bool {
	return s.nextWave >= s.WaveCount()
}

// CurrentWave 最近开始的波次索引（0-based），尚未开始任何波次时返回 -1
func (s *WaveSpawnSystem) CurrentWave() int {
	return s.nextWave - 1
}

// Remaining 指定波次尚未被击杀的数量
func (s *WaveSpawnSystem) Remaining(waveIndex int) int {
	if waveIndex < 0 || waveIndex >= len(s.remaining) {
		return 0
	}
	return s.remaining[waveIndex]
}

// TotalRemaining 所有已开始波次的剩余数量之和
func (s *WaveSpawnSystem) TotalRemaining() int {
	total := 0
	for i := 0; i < s.nextWave && i < len(s.remaining); i++ {
		total += s.remaining[i]
	}
	return total
}

// IsWaveComplete 指定波次是否已开始且剩余数量为 0
func (s *WaveSpawnSystem) IsWaveComplete(waveIndex int) bool {
	if waveIndex < 0 || waveIndex >= s.nextWave {
		return false
	}
	return s.remaining[waveIndex] == 0
}

// StartNextWave 开始下一波
// 所有波次都已开始时为空操作
//
// 返回：
//
//	bool - 是否开始了新的波次
func (s *WaveSpawnSystem) StartNextWave() bool {
	if s.WavesExhausted() {
		log.Printf("[WaveSpawnSystem] No more waves (%d total), ignoring", s.WaveCount())
		return false
	}

	waveIndex := s.nextWave
	wave := s.levelConfig.Waves[waveIndex]
	s.nextWave++
	s.remaining[waveIndex] = wave.ZombieCount
	s.stats.SetWave(waveIndex + 1)

	stagger := wave.SpawnDelayMs
	if stagger <= 0 {
		stagger = s.spawnerConfig.StaggerMs
	}

	log.Printf("[WaveSpawnSystem] Starting wave %d/%d: %d zombies, stagger %.0fms",
		waveIndex+1, s.WaveCount(), wave.ZombieCount, stagger)

	for i := 0; i < wave.ZombieCount; i++ {
		zombieType := PickZombieType(wave.Distribution, s.rng.Float64()*100)
		pos := s.spawnPosition(i)
		index := i
		s.scheduler.Schedule(float64(i)*stagger/1000.0, 0, "wave-spawn", func() {
			s.deploy(waveIndex, index, zombieType, pos)
		})
	}
	return true
}

// deploy 延迟部署单只僵尸
func (s *WaveSpawnSystem) deploy(waveIndex, index int, zombieType types.ZombieType, pos mgl64.Vec3) {
	// 关卡已切换
	if waveIndex >= len(s.remaining) {
		return
	}
	id, err := entities.NewZombieEntity(s.entityManager, s.zombieStats, zombieType, pos, waveIndex)
	if err != nil {
		log.Printf("[WaveSpawnSystem] Failed to spawn zombie %d of wave %d: %v", index, waveIndex+1, err)
		if s.remaining[waveIndex] > 0 {
			s.remaining[waveIndex]--
		}
		return
	}
	s.physics.AddEntity(id, false)
	log.Printf("[WaveSpawnSystem] Spawned zombie: type=%s, wave=%d, index=%d, entityID=%d, pos=(%.1f, %.1f)",
		zombieType, waveIndex+1, index, id, pos[0], pos[2])
}

// spawnPosition 第 i 只僵尸的出生位置：出生点按 i % len 循环，再加水平随机偏移
func (s *WaveSpawnSystem) spawnPosition(i int) mgl64.Vec3 {
	points := s.levelConfig.SpawnPoints
	if len(points) == 0 {
		return mgl64.Vec3{}
	}
	base := points[i%len(points)]
	return base.Add(s.jitter())
}

func (s *WaveSpawnSystem) jitter() mgl64.Vec3 {
	r := s.spawnerConfig.Jitter
	if r <= 0 {
		return mgl64.Vec3{}
	}
	angle := s.rng.Float64() * 2 * math.Pi
	dist := s.rng.Float64() * r
	return mgl64.Vec3{math.Cos(angle) * dist, 0, math.Sin(angle) * dist}
}

// PickZombieType 按累计权重选择僵尸类型
//
// 参数：
//
//	dist - 类型与百分比列表（总和应为 100）
//	roll - [0, 100) 的随机数
//
// 返回：
//
//	types.ZombieType - 累计百分比第一次超过 roll 的类型；舍入误差导致无匹配时返回第一个类型
func PickZombieType(dist []config.ZombieWeight, roll float64) types.ZombieType {
	if len(dist) == 0 {
		return types.ZombieBasic
	}
	cumulative := 0.0
	for _, w := range dist {
		cumulative += w.Percentage
		if roll < cumulative {
			return w.Type
		}
	}
	return dist[0].Type
}

// OnEntityDeath 死亡回调：属于某一波的敌人被击杀时递减该波剩余数量
func (s *WaveSpawnSystem) OnEntityDeath(id ecs.EntityID, kind types.EntityKind, _ DamageSource) {
	if !kind.IsEnemy() {
		return
	}
	zombie, ok := ecs.GetComponent[*components.ZombieComponent](s.entityManager, id)
	if !ok {
		return
	}
	w := zombie.WaveIndex
	if w < 0 || w >= len(s.remaining) {
		return
	}
	if s.remaining[w] > 0 {
		s.remaining[w]--
	}
	if s.remaining[w] == 0 {
		log.Printf("[WaveSpawnSystem] Wave %d cleared", w+1)
	}
}

// SpawnSummons Boss 召唤：在 center 周围立即生成 count 只不计入波次的小怪
func (s *WaveSpawnSystem) SpawnSummons(center mgl64.Vec3, count int, zombieType types.ZombieType) []ecs.EntityID {
	spawned := make([]ecs.EntityID, 0, count)
	for i := 0; i < count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(count)
		offset := mgl64.Vec3{math.Cos(angle) * 3, 0, math.Sin(angle) * 3}
		pos := center.Add(offset).Add(s.jitter())
		pos[1] = center[1]
		id, err := entities.NewZombieEntity(s.entityManager, s.zombieStats, zombieType, pos, -1)
		if err != nil {
			log.Printf("[WaveSpawnSystem] Summon %d failed: %v", i, err)
			continue
		}
		s.physics.AddEntity(id, false)
		spawned = append(spawned, id)
	}
	return spawned
}
