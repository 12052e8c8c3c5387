package game

import (
	"github.com/decker502/arena/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

// PresentationSink 表现层（渲染/粒子）通知接口
// 所有调用都是单向通知，模拟核心从不向表现层查询状态
type PresentationSink interface {
	EntityMoved(id ecs.EntityID, pos mgl64.Vec3, rotation float64)
	HitEffect(pos, dir mgl64.Vec3)
	Explosion(pos mgl64.Vec3, radius float64)
	ZoneWarning(zone string, entity ecs.EntityID, warn bool)
	VisibilityChanged(id ecs.EntityID, visible bool)
}

// AudioSink 音频层通知接口
// name 是语义事件名（如 "weapon fired: pistol"、"zombie groaned"、"explosion"）
// pos 为 nil 表示非定位音效
type AudioSink interface {
	Play(name string, pos *mgl64.Vec3)
}

// StatsSink 分数/统计层通知接口
type StatsSink interface {
	AddScore(n int)
	IncrementKills()
	SetWave(n int)
}

// NopPresentation 丢弃所有表现层通知
type NopPresentation struct{}

func (NopPresentation) EntityMoved(ecs.EntityID, mgl64.Vec3, float64) {}
func (NopPresentation) HitEffect(mgl64.Vec3, mgl64.Vec3)              {}
func (NopPresentation) Explosion(mgl64.Vec3, float64)                 {}
func (NopPresentation) ZoneWarning(string, ecs.EntityID, bool)        {}
func (NopPresentation) VisibilityChanged(ecs.EntityID, bool)          {}

// NopAudio 丢弃所有音频通知
type NopAudio struct{}

func (NopAudio) Play(string, *mgl64.Vec3) {}

// NopStats 丢弃所有统计通知
type NopStats struct{}

func (NopStats) AddScore(int)    {}
func (NopStats) IncrementKills() {}
func (NopStats) SetWave(int)     {}

// StatsFanout 把统计通知转发给多个接收者
type StatsFanout []StatsSink

func (f StatsFanout) AddScore(n int) {
	for _, s := range f {
		s.AddScore(n)
	}
}

func (f StatsFanout) IncrementKills() {
	for _, s := range f {
		s.IncrementKills()
	}
}

func (f StatsFanout) SetWave(n int) {
	for _, s := range f {
		s.SetWave(n)
	}
}

// InputSnapshot 单个 tick 的输入快照
// 模拟核心每 tick 读取一次，并在该 tick 内视为不可变
type InputSnapshot struct {
	// 移动意图（俯视角：Up = -Z，Down = +Z，Left = -X，Right = +X）
	Up, Down, Left, Right bool

	// Aim 瞄准点（世界坐标）；HasAim=false 时保持上一次的朝向
	Aim    mgl64.Vec3
	HasAim bool

	Fire bool

	// WeaponSlot 切换武器请求：0 表示不切换，1..N 对应武器槽
	WeaponSlot int

	PauseToggle bool // 暂停切换（边沿）
	DebugToggle bool // 调试切换（边沿）
}

// MoveIntent 把四个方向键合成为水平方向向量（未归一化）
func (in InputSnapshot) MoveIntent() mgl64.Vec3 {
	var dir mgl64.Vec3
	if in.Up {
		dir[2]--
	}
	if in.Down {
		dir[2]++
	}
	if in.Left {
		dir[0]--
	}
	if in.Right {
		dir[0]++
	}
	return dir
}

// AudioFanout 把音频通知转发给多个接收者
type AudioFanout []AudioSink

func (f AudioFanout) Play(name string, pos *mgl64.Vec3) {
	for _, s := range f {
		s.Play(name, pos)
	}
}

// PresentationFanout 把表现层通知转发给多个接收者
type PresentationFanout []PresentationSink

func (f PresentationFanout) EntityMoved(id ecs.EntityID, pos mgl64.Vec3, rotation float64) {
	for _, s := range f {
		s.EntityMoved(id, pos, rotation)
	}
}

func (f PresentationFanout) HitEffect(pos, dir mgl64.Vec3) {
	for _, s := range f {
		s.HitEffect(pos, dir)
	}
}

func (f PresentationFanout) Explosion(pos mgl64.Vec3, radius float64) {
	for _, s := range f {
		s.Explosion(pos, radius)
	}
}

func (f PresentationFanout) ZoneWarning(zone string, entity ecs.EntityID, warn bool) {
	for _, s := range f {
		s.ZoneWarning(zone, entity, warn)
	}
}

func (f PresentationFanout) VisibilityChanged(id ecs.EntityID, visible bool) {
	for _, s := range f {
		s.VisibilityChanged(id, visible)
	}
}
