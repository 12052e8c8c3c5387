package systems

import (
	"log"
	"math"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/types"
)

// HazardPhase 区域与实体关系的状态转换
type HazardPhase int

const (
	HazardEnter HazardPhase = iota
	HazardStay
	HazardExit
)

// String 返回状态名称
func (p HazardPhase) String() string {
	switch p {
	case HazardEnter:
		return "enter"
	case HazardStay:
		return "stay"
	case HazardExit:
		return "exit"
	}
	return "unknown"
}

// HazardEvent 一次 enter/stay/exit 转换
type HazardEvent struct {
	Zone      ecs.EntityID
	Entity    ecs.EntityID
	Phase     HazardPhase
	DeltaTime float64 // 仅 stay 有意义
}

// zoneResident 区域内实体的跟踪记录
type zoneResident struct {
	enteredAt float64 // 进入时的模拟时间
	stayTime  float64 // 累计停留时间（只累加模拟时间增量）

	// 减速区域
	capturedSpeed float64
	factor        float64
}

// HazardZoneSystem 危险区域状态机
//
// 每个区域每帧找出位置落在边界内（上下各有一段容差）的实体，并与上一帧的成员表比较：
//   - 新出现的实体触发 enter
//   - 仍在区域内的实体触发 stay(deltaTime)
//   - 已离开的实体触发 exit 并删除记录
//
// 系统不拥有任何实体，只维护以实体ID为键的成员表。
type HazardZoneSystem struct {
	em           *ecs.EntityManager
	damage       *DamageSystem
	cfg          *config.ArenaConfig
	clock        func() float64
	presentation game.PresentationSink
	audio        game.AudioSink

	elapsed float64
	members map[ecs.EntityID]map[ecs.EntityID]*zoneResident // 区域 -> 实体 -> 记录
	warned  map[ecs.EntityID]map[ecs.EntityID]bool          // 区域 -> 实体 -> 是否已发出预警

	// slowFactors 实体 -> 区域 -> 当前减速系数；实体速度 = BaseSpeed × 所有系数之积
	slowFactors map[ecs.EntityID]map[ecs.EntityID]float64

	// Observer 可选的转换观察者（调试面板、测试）
	Observer func(HazardEvent)
}

// NewHazardZoneSystem 创建危险区域系统
func NewHazardZoneSystem(em *ecs.EntityManager, damage *DamageSystem, cfg *config.ArenaConfig, clock func() float64,
	presentation game.PresentationSink, audio game.AudioSink) *HazardZoneSystem {
	if presentation == nil {
		presentation = game.NopPresentation{}
	}
	if audio == nil {
		audio = game.NopAudio{}
	}
	return &HazardZoneSystem{
		em:           em,
		damage:       damage,
		cfg:          cfg,
		clock:        clock,
		presentation: presentation,
		audio:        audio,
		members:      make(map[ecs.EntityID]map[ecs.EntityID]*zoneResident),
		warned:       make(map[ecs.EntityID]map[ecs.EntityID]bool),
		slowFactors:  make(map[ecs.EntityID]map[ecs.EntityID]float64),
	}
}

// Update 评估所有区域
func (s *HazardZoneSystem) Update(deltaTime float64) {
	s.elapsed += deltaTime

	candidates := s.candidates()
	for _, zoneID := range ecs.GetEntitiesWith1[*components.HazardZoneComponent](s.em) {
		zone, _ := ecs.GetComponent[*components.HazardZoneComponent](s.em, zoneID)
		s.evaluateZone(zoneID, zone, candidates, deltaTime)
	}
}

// candidates 可受危险区域影响的实体：激活、存活、有位置和生命值
func (s *HazardZoneSystem) candidates() []ecs.EntityID {
	ids := ecs.GetEntitiesWith3[*components.EntityComponent, *components.TransformComponent, *components.HealthComponent](s.em)
	out := ids[:0]
	for _, id := range ids {
		if s.affectable(id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *HazardZoneSystem) affectable(id ecs.EntityID) bool {
	if s.em.IsMarkedForDestroy(id) {
		return false
	}
	ec, ok := ecs.GetComponent[*components.EntityComponent](s.em, id)
	if !ok || !ec.Active {
		return false
	}
	h, ok := ecs.GetComponent[*components.HealthComponent](s.em, id)
	return ok && !h.IsDead
}

func (s *HazardZoneSystem) evaluateZone(zoneID ecs.EntityID, zone *components.HazardZoneComponent, candidates []ecs.EntityID, deltaTime float64) {
	residents := s.members[zoneID]
	if residents == nil {
		residents = make(map[ecs.EntityID]*zoneResident)
		s.members[zoneID] = residents
	}

	inside := make(map[ecs.EntityID]bool)
	if zone.Active {
		for _, id := range candidates {
			if s.Contains(zone, id) {
				inside[id] = true
			}
		}
	}

	// 先处理离开，使同一实体在区域间移动时速度先恢复再重新计算
	for _, id := range sortedResidentIDs(residents) {
		if !inside[id] {
			s.onExit(zoneID, zone, id, residents[id])
			delete(residents, id)
		}
	}

	for _, id := range candidates {
		if !inside[id] {
			continue
		}
		rec, tracked := residents[id]
		if !tracked {
			rec = &zoneResident{enteredAt: s.clock()}
			residents[id] = rec
			s.onEnter(zoneID, zone, id, rec)
			continue
		}
		rec.stayTime += deltaTime
		s.onStay(zoneID, zone, id, rec, deltaTime)
	}

	s.updateWarnings(zoneID, zone, candidates, inside)
}

// Contains 实体位置是否在区域内（Y 方向带容差）
func (s *HazardZoneSystem) Contains(zone *components.HazardZoneComponent, id ecs.EntityID) bool {
	t, ok := ecs.GetComponent[*components.TransformComponent](s.em, id)
	if !ok {
		return false
	}
	p := t.Position
	tol := s.cfg.Hazard.VerticalTolerance
	b := zone.Bounds
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2] &&
		p[1] >= b.Min[1]-tol && p[1] <= b.Max[1]+tol
}

// ShouldWarn 实体在扩大了预警距离的边界内、但还未进入区域时返回 true
func (s *HazardZoneSystem) ShouldWarn(zoneID, entityID ecs.EntityID) bool {
	zone, ok := ecs.GetComponent[*components.HazardZoneComponent](s.em, zoneID)
	if !ok || !zone.Active {
		return false
	}
	t, ok := ecs.GetComponent[*components.TransformComponent](s.em, entityID)
	if !ok || s.Contains(zone, entityID) {
		return false
	}
	return zone.Bounds.Expand(zone.WarningDistance).ContainsPoint(t.Position)
}

func (s *HazardZoneSystem) updateWarnings(zoneID ecs.EntityID, zone *components.HazardZoneComponent, candidates []ecs.EntityID, inside map[ecs.EntityID]bool) {
	warned := s.warned[zoneID]
	if warned == nil {
		warned = make(map[ecs.EntityID]bool)
		s.warned[zoneID] = warned
	}

	seen := make(map[ecs.EntityID]bool)
	for _, id := range candidates {
		ec, _ := ecs.GetComponent[*components.EntityComponent](s.em, id)
		if ec.Kind != types.KindPlayer {
			continue
		}
		seen[id] = true
		warn := !inside[id] && s.ShouldWarn(zoneID, id)
		if warn != warned[id] {
			s.presentation.ZoneWarning(zone.Name, id, warn)
			warned[id] = warn
		}
	}
	for id, w := range warned {
		if !seen[id] {
			if w {
				s.presentation.ZoneWarning(zone.Name, id, false)
			}
			delete(warned, id)
		}
	}
}

// IsGeyserActive 间歇泉只在占空周期的前半段生效；其他区域始终生效
func (s *HazardZoneSystem) IsGeyserActive(zone *components.HazardZoneComponent) bool {
	if zone.Variant != types.VariantGeyser || zone.DutyPeriod <= 0 {
		return true
	}
	phase := math.Mod(s.elapsed+zone.DutyOffset, zone.DutyPeriod)
	if phase < 0 {
		phase += zone.DutyPeriod
	}
	return phase < zone.DutyPeriod/2
}

func (s *HazardZoneSystem) onEnter(zoneID ecs.EntityID, zone *components.HazardZoneComponent, id ecs.EntityID, rec *zoneResident) {
	s.notify(HazardEvent{Zone: zoneID, Entity: id, Phase: HazardEnter})

	switch zone.Kind {
	case types.HazardInstantDeath:
		s.kill(zoneID, zone, id)
	case types.HazardSlow:
		movement, ok := ecs.GetComponent[*components.MovementComponent](s.em, id)
		if !ok {
			return
		}
		rec.capturedSpeed = movement.Speed
		rec.factor = s.clampSlow(zone.SlowFactor)
		s.setSlowFactor(id, zoneID, rec.factor)
	case types.HazardDamage:
		if zone.DamageType.IsHeatHazard() {
			s.audio.Play("hazard sizzle", nil)
		}
	}
}

func (s *HazardZoneSystem) onStay(zoneID ecs.EntityID, zone *components.HazardZoneComponent, id ecs.EntityID, rec *zoneResident, deltaTime float64) {
	s.notify(HazardEvent{Zone: zoneID, Entity: id, Phase: HazardStay, DeltaTime: deltaTime})

	switch zone.Kind {
	case types.HazardDamage:
		if s.immune(id, zone.DamageType) {
			return
		}
		s.damage.Apply(id, DamageSource{
			Amount:     zone.DamagePerSecond * deltaTime,
			Type:       zone.DamageType,
			SourceID:   zoneID,
			SourceKind: types.KindHazard,
			Hazard:     true,
		})
	case types.HazardInstantDeath:
		// 进入时未能致死（如调试无敌）的实体每帧重试
		s.kill(zoneID, zone, id)
	case types.HazardSlow:
		if zone.Variant == types.VariantQuicksand {
			rec.factor = math.Max(s.cfg.Hazard.MinSlowFactor, rec.factor-s.cfg.Hazard.QuicksandDecayPerSecond*deltaTime)
			s.setSlowFactor(id, zoneID, rec.factor)
		}
	case types.HazardPush:
		if !s.IsGeyserActive(zone) {
			return
		}
		movement, ok := ecs.GetComponent[*components.MovementComponent](s.em, id)
		if !ok {
			return
		}
		movement.External = movement.External.Add(zone.PushForce.Mul(deltaTime))
		total := movement.TotalVelocity()
		if limit := s.cfg.Hazard.MaxPushSpeed; total.Len() > limit {
			movement.External = total.Normalize().Mul(limit).Sub(movement.Velocity)
		}
	}
}

func (s *HazardZoneSystem) onExit(zoneID ecs.EntityID, zone *components.HazardZoneComponent, id ecs.EntityID, rec *zoneResident) {
	s.notify(HazardEvent{Zone: zoneID, Entity: id, Phase: HazardExit})

	if zone.Kind == types.HazardSlow {
		s.clearSlowFactor(id, zoneID)
	}
	if s.cfg.Debug.LogCollisions {
		log.Printf("[HazardZoneSystem] Entity %d left zone %s after %.2fs", id, zone.Name, rec.stayTime)
	}
}

func (s *HazardZoneSystem) kill(zoneID ecs.EntityID, zone *components.HazardZoneComponent, id ecs.EntityID) {
	if s.damage.Kill(id, DamageSource{Type: zone.DamageType, SourceID: zoneID, SourceKind: types.KindHazard, Hazard: true}) {
		log.Printf("[HazardZoneSystem] Entity %d killed by instant-death zone %s", id, zone.Name)
	}
}

// immune 抗火实体免疫火焰/熔岩区域
func (s *HazardZoneSystem) immune(id ecs.EntityID, dt types.DamageType) bool {
	if !dt.IsHeatHazard() {
		return false
	}
	zombie, ok := ecs.GetComponent[*components.ZombieComponent](s.em, id)
	return ok && zombie.FireResistant
}

func (s *HazardZoneSystem) clampSlow(f float64) float64 {
	return math.Max(s.cfg.Hazard.MinSlowFactor, math.Min(1.0, f))
}

// setSlowFactor 记录实体在某个减速区域中的系数并重新计算速度
func (s *HazardZoneSystem) setSlowFactor(id, zoneID ecs.EntityID, factor float64) {
	factors := s.slowFactors[id]
	if factors == nil {
		factors = make(map[ecs.EntityID]float64)
		s.slowFactors[id] = factors
	}
	factors[zoneID] = factor
	s.applySpeed(id)
}

func (s *HazardZoneSystem) clearSlowFactor(id, zoneID ecs.EntityID) {
	if factors, ok := s.slowFactors[id]; ok {
		delete(factors, zoneID)
		if len(factors) == 0 {
			delete(s.slowFactors, id)
		}
	}
	s.applySpeed(id)
}

// applySpeed 速度 = BaseSpeed × 所有所在减速区域系数之积
// 离开最后一个减速区域后速度恢复为 BaseSpeed，即进入时捕获的速度
func (s *HazardZoneSystem) applySpeed(id ecs.EntityID) {
	movement, ok := ecs.GetComponent[*components.MovementComponent](s.em, id)
	if !ok {
		return
	}
	speed := movement.BaseSpeed
	for _, f := range s.slowFactors[id] {
		speed *= f
	}
	movement.Speed = speed
}

// SlowFactorOf 实体当前的综合减速系数（不在减速区域内时为 1）
func (s *HazardZoneSystem) SlowFactorOf(id ecs.EntityID) float64 {
	f := 1.0
	for _, v := range s.slowFactors[id] {
		f *= v
	}
	return f
}

// CapturedSpeed 实体进入指定减速区域时捕获的速度
func (s *HazardZoneSystem) CapturedSpeed(zoneID, entityID ecs.EntityID) (float64, bool) {
	rec, ok := s.members[zoneID][entityID]
	if !ok {
		return 0, false
	}
	return rec.capturedSpeed, true
}

// Residents 区域当前的成员（按ID升序）
func (s *HazardZoneSystem) Residents(zoneID ecs.EntityID) []ecs.EntityID {
	return sortedResidentIDs(s.members[zoneID])
}

// StayTime 实体在区域中累计停留的模拟时间
func (s *HazardZoneSystem) StayTime(zoneID, entityID ecs.EntityID) (float64, bool) {
	rec, ok := s.members[zoneID][entityID]
	if !ok {
		return 0, false
	}
	return rec.stayTime, true
}

// Forget 实体被删除时从所有成员表中移除（不触发 exit）
func (s *HazardZoneSystem) Forget(entityID ecs.EntityID) {
	for _, residents := range s.members {
		delete(residents, entityID)
	}
	for _, warned := range s.warned {
		delete(warned, entityID)
	}
	delete(s.slowFactors, entityID)
}

// RemoveZone 清理区域：所有成员触发 exit，成员表被清空，区域实体标记删除
func (s *HazardZoneSystem) RemoveZone(zoneID ecs.EntityID) {
	zone, ok := ecs.GetComponent[*components.HazardZoneComponent](s.em, zoneID)
	if ok {
		residents := s.members[zoneID]
		for _, id := range sortedResidentIDs(residents) {
			s.onExit(zoneID, zone, id, residents[id])
		}
		zone.Active = false
	}
	delete(s.members, zoneID)
	delete(s.warned, zoneID)
	s.em.DestroyEntity(zoneID)
}

// Reset 清空所有成员表（关卡切换时使用）
func (s *HazardZoneSystem) Reset() {
	s.members = make(map[ecs.EntityID]map[ecs.EntityID]*zoneResident)
	s.warned = make(map[ecs.EntityID]map[ecs.EntityID]bool)
	s.slowFactors = make(map[ecs.EntityID]map[ecs.EntityID]float64)
	s.elapsed = 0
}

func (s *HazardZoneSystem) notify(ev HazardEvent) {
	if s.Observer != nil {
		s.Observer(ev)
	}
}

func sortedResidentIDs(m map[ecs.EntityID]*zoneResident) []ecs.EntityID {
	set := make(map[ecs.EntityID]struct{}, len(m))
	for id := range m {
		set[id] = struct{}{}
	}
	return sortedIDs(set)
}
