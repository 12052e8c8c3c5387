package scenes

import (
	"sort"

	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// 特效持续时间（秒）
const (
	hitEffectDuration       = 0.15
	explosionEffectDuration = 0.45
	maxEffects              = 256
)

type effectKind int

const (
	effectHit effectKind = iota
	effectExplosion
)

// effect 一个短暂的视觉特效
type effect struct {
	kind     effectKind
	pos      mgl64.Vec3
	dir      mgl64.Vec3
	radius   float64
	age      float64
	duration float64
}

// progress 0~1 的播放进度
func (e *effect) progress() float64 {
	if e.duration <= 0 {
		return 1
	}
	return utils.Clamp01(e.age / e.duration)
}

// EffectLayer 接收模拟核心的表现层通知，维护短暂特效和区域预警
//
// 实现 game.PresentationSink。只保存绘制需要的数据，绘制由 ArenaScene 完成。
type EffectLayer struct {
	effects  []effect
	warnings map[ecs.EntityID]map[string]bool // 实体 -> 正在预警的区域名
	hidden   map[ecs.EntityID]bool
}

// NewEffectLayer 创建特效层
func NewEffectLayer() *EffectLayer {
	return &EffectLayer{
		warnings: make(map[ecs.EntityID]map[string]bool),
		hidden:   make(map[ecs.EntityID]bool),
	}
}

// EntityMoved 位置由场景每帧直接读取，这里不需要记录
func (l *EffectLayer) EntityMoved(ecs.EntityID, mgl64.Vec3, float64) {}

func (l *EffectLayer) HitEffect(pos, dir mgl64.Vec3) {
	l.push(effect{kind: effectHit, pos: pos, dir: dir, duration: hitEffectDuration})
}

func (l *EffectLayer) Explosion(pos mgl64.Vec3, radius float64) {
	l.push(effect{kind: effectExplosion, pos: pos, radius: radius, duration: explosionEffectDuration})
}

func (l *EffectLayer) ZoneWarning(zone string, entity ecs.EntityID, warn bool) {
	zones := l.warnings[entity]
	if warn {
		if zones == nil {
			zones = make(map[string]bool)
			l.warnings[entity] = zones
		}
		zones[zone] = true
		return
	}
	delete(zones, zone)
	if len(zones) == 0 {
		delete(l.warnings, entity)
	}
}

func (l *EffectLayer) VisibilityChanged(id ecs.EntityID, visible bool) {
	if visible {
		delete(l.hidden, id)
		return
	}
	l.hidden[id] = true
}

func (l *EffectLayer) push(e effect) {
	if len(l.effects) >= maxEffects {
		l.effects = l.effects[1:]
	}
	l.effects = append(l.effects, e)
}

// Update 推进特效时间，移除播放完的特效
func (l *EffectLayer) Update(deltaTime float64) {
	kept := l.effects[:0]
	for _, e := range l.effects {
		e.age += deltaTime
		if e.age < e.duration {
			kept = append(kept, e)
		}
	}
	l.effects = kept
}

// Warned 实体当前被哪些区域预警（排序后）
func (l *EffectLayer) Warned(entity ecs.EntityID) []string {
	zones := l.warnings[entity]
	if len(zones) == 0 {
		return nil
	}
	names := make([]string, 0, len(zones))
	for z := range zones {
		names = append(names, z)
	}
	sort.Strings(names)
	return names
}

// Hidden 实体是否处于隐身状态
func (l *EffectLayer) Hidden(id ecs.EntityID) bool {
	return l.hidden[id]
}

// Len 当前特效数
func (l *EffectLayer) Len() int {
	return len(l.effects)
}

// Reset 切换关卡时清空所有特效和预警
func (l *EffectLayer) Reset() {
	l.effects = l.effects[:0]
	l.warnings = make(map[ecs.EntityID]map[string]bool)
	l.hidden = make(map[ecs.EntityID]bool)
}
