package scenes

import (
	"fmt"
	"log"
	"time"

	"github.com/decker502/arena/pkg/arena"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/systems"
	"github.com/decker502/arena/pkg/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// 屏幕与镜头参数
const (
	WindowWidth  = 1280
	WindowHeight = 720

	// PixelsPerUnit 每个世界单位的像素数
	PixelsPerUnit = 16.0
)

// Controls 一帧的前端控制输入
// Sim 交给模拟核心，其余字段只由场景处理
type Controls struct {
	Sim             game.InputSnapshot
	Restart         bool
	NextLevel       bool
	ToggleColliders bool
	ToggleAutopilot bool
}

// ControlSource 每帧读取一次控制输入
type ControlSource func(cam *utils.Camera) Controls

// KeyboardControls 键盘 + 鼠标控制
// R 重新开始，N/Enter 进入下一关，F1 显示碰撞盒，F2 切换自动驾驶
func KeyboardControls(b utils.KeyBindings) ControlSource {
	return func(cam *utils.Camera) Controls {
		return Controls{
			Sim:             utils.ReadInputSnapshot(b, cam.ScreenToWorld),
			Restart:         utils.IsAnyKeyJustPressed(ebiten.KeyR),
			NextLevel:       utils.IsAnyKeyJustPressed(ebiten.KeyN, ebiten.KeyEnter),
			ToggleColliders: utils.IsAnyKeyJustPressed(ebiten.KeyF1),
			ToggleAutopilot: utils.IsAnyKeyJustPressed(ebiten.KeyF2),
		}
	}
}

// LevelLoader 关卡切换入口（game.SceneManager 实现了它）
type LevelLoader interface {
	LoadLevel(levelID string) error
	Reload() error
}

// TickObserver 记录每个模拟 tick 的耗时（game.MetricsRecorder 实现了它）
type TickObserver interface {
	ObserveTick(d time.Duration)
}

// ArenaSceneOptions 创建竞技场场景所需的依赖
type ArenaSceneOptions struct {
	Arena    *arena.Arena
	Effects  *EffectLayer
	Levels   LevelLoader
	Settings *game.SettingsManager
	Audio    *game.AudioManager // 可选
	Controls ControlSource      // 可选，默认键盘控制
	Ticks    TickObserver       // 可选
}

// ArenaScene 竞技场画面：读取输入、推进模拟、绘制世界和 HUD
//
// 同一个场景实例在关卡之间复用，切换关卡时调用 Reset。
type ArenaScene struct {
	arena     *arena.Arena
	effects   *EffectLayer
	levels    LevelLoader
	settings  *game.SettingsManager
	audio     *game.AudioManager
	controls  ControlSource
	ticks     TickObserver
	camera    *utils.Camera
	autopilot *arena.Autopilot

	demo    bool   // 自动驾驶中
	message string // 最近一次关卡切换失败的提示
}

// NewArenaScene 创建竞技场场景
func NewArenaScene(opts ArenaSceneOptions) *ArenaScene {
	effects := opts.Effects
	if effects == nil {
		effects = NewEffectLayer()
	}
	controls := opts.Controls
	if controls == nil {
		controls = KeyboardControls(utils.DefaultKeyBindings())
	}
	return &ArenaScene{
		arena:     opts.Arena,
		effects:   effects,
		levels:    opts.Levels,
		settings:  opts.Settings,
		audio:     opts.Audio,
		controls:  controls,
		ticks:     opts.Ticks,
		camera:    utils.NewCamera(WindowWidth, WindowHeight, PixelsPerUnit),
		autopilot: arena.NewAutopilot(opts.Arena),
	}
}

// SetLevelLoader 注入关卡切换入口（场景管理器创建晚于场景时使用）
func (s *ArenaScene) SetLevelLoader(l LevelLoader) {
	s.levels = l
}

// Reset 进入新关卡时清空特效并把镜头对准玩家
func (s *ArenaScene) Reset() {
	s.effects.Reset()
	s.message = ""
	if pos, ok := s.playerPosition(); ok {
		s.camera.Center = pos
	}
}

// ShowLoadError 显示关卡切换失败的提示
func (s *ArenaScene) ShowLoadError(levelID string, err error) {
	s.message = fmt.Sprintf("Level %s failed to load: %v", levelID, err)
}

// Message 当前提示
func (s *ArenaScene) Message() string {
	return s.message
}

// Demo 是否处于自动驾驶
func (s *ArenaScene) Demo() bool {
	return s.demo
}

// Camera 场景镜头
func (s *ArenaScene) Camera() *utils.Camera {
	return s.camera
}

// Update 推进一帧
func (s *ArenaScene) Update(deltaTime float64) {
	c := s.controls(s.camera)

	if c.ToggleColliders && s.settings != nil {
		show := s.settings.ToggleColliders()
		log.Printf("[ArenaScene] Show colliders: %v", show)
		if err := s.settings.Save(); err != nil {
			log.Printf("[ArenaScene] Warning: failed to save settings: %v", err)
		}
	}
	if c.ToggleAutopilot {
		s.demo = !s.demo
		log.Printf("[ArenaScene] Autopilot: %v", s.demo)
	}
	if s.handleLevelControls(c) {
		return
	}

	in := c.Sim
	if s.demo {
		auto := s.autopilot.Next()
		auto.PauseToggle, auto.DebugToggle = in.PauseToggle, in.DebugToggle
		in = auto
	}

	start := time.Now()
	if s.arena.Tick(in, deltaTime) && s.ticks != nil {
		s.ticks.ObserveTick(time.Since(start))
	}
	if !s.arena.State().Paused {
		s.effects.Update(deltaTime)
	}

	if pos, ok := s.playerPosition(); ok {
		s.camera.Follow(pos, deltaTime)
		if s.audio != nil {
			s.audio.SetListener(pos)
		}
	}
	world := s.arena.Config().World
	s.camera.ClampTo(world.Min, world.Max)
}

// handleLevelControls 处理重新开始和下一关；发生切换时返回 true
func (s *ArenaScene) handleLevelControls(c Controls) bool {
	if s.levels == nil {
		return false
	}
	gs := s.arena.State()
	switch {
	case c.NextLevel && s.arena.NextLevel() != "":
		next := s.arena.NextLevel()
		if err := s.levels.LoadLevel(next); err != nil {
			s.ShowLoadError(next, err)
		}
		return true
	case c.Restart && (gs.IsFinished() || s.message != ""):
		if err := s.levels.Reload(); err != nil {
			s.ShowLoadError(gs.LevelID, err)
		}
		return true
	}
	return false
}

func (s *ArenaScene) playerPosition() (mgl64.Vec3, bool) {
	id, ok := s.arena.Player()
	if !ok {
		return mgl64.Vec3{}, false
	}
	return systems.PositionOf(s.arena.Entities(), id)
}

// showColliders 是否绘制碰撞盒：玩家设置打开，或调试模式下配置要求显示
func (s *ArenaScene) showColliders() bool {
	if s.settings != nil && s.settings.GetSettings().ShowColliders {
		return true
	}
	debug := s.arena.Config().Debug
	return debug.Enabled && debug.ShowColliders
}
