// Package app 提供游戏应用的核心包装器
//
// 该包将游戏初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"log"

	"github.com/decker502/arena/pkg/embedded"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// AppName 本地存档目录名
const AppName = "arena"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Level 指定要加载的关卡（如 "2"），为空则从存档继续或默认第 1 关
	Level string
	// Data 数据目录（包含 arena.yaml、zombie_stats.yaml 和 levels/），为空时使用嵌入数据
	Data fs.FS
	// Metrics 可选的指标记录器
	Metrics *game.MetricsRecorder
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager             *game.SceneManager
	session                  *Session
	settings                 *game.SettingsManager
	verbose                  bool
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
//
// Config.Data 为空时，调用此函数前必须先调用 embedded.Init() 初始化嵌入数据。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	data := cfg.Data
	if data == nil {
		sub, err := embedded.Sub("data")
		if err != nil {
			return nil, fmt.Errorf("嵌入数据不可用: %w", err)
		}
		data = sub
	}
	content, err := LoadContent(data)
	if err != nil {
		return nil, err
	}

	// 本地存储不可用时降级为只在内存中保存
	store, err := gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		log.Printf("[App] Warning: local storage unavailable: %v (settings and scores will not persist)", err)
		store = nil
	}
	settings := game.NewSettingsManager(store)
	scores, err := game.NewScoreBoard(store)
	if err != nil {
		log.Printf("[App] Warning: %v (starting with an empty score board)", err)
	}

	// 初始化音频
	audioContext := audio.NewContext(game.SampleRate)
	audioManager := game.NewAudioManager(audioContext, settings)
	audioManager.Preload()
	log.Printf("[App] AudioManager initialized")

	effects := scenes.NewEffectLayer()
	session, err := NewSession(SessionOptions{
		Content:      content,
		Presentation: effects,
		Audio:        audioManager,
		Metrics:      cfg.Metrics,
		Scores:       scores,
		Settings:     settings,
	})
	if err != nil {
		return nil, err
	}

	var ticks scenes.TickObserver
	if cfg.Metrics != nil {
		ticks = cfg.Metrics
	}
	scene := scenes.NewArenaScene(scenes.ArenaSceneOptions{
		Arena:    session.Arena,
		Effects:  effects,
		Settings: settings,
		Audio:    audioManager,
		Ticks:    ticks,
	})

	// 创建场景管理器；同一个场景在关卡之间复用
	sceneManager := game.NewSceneManager(func(levelID string) (game.Scene, error) {
		if res := session.Arena.TransitionTo(levelID); !res.Success {
			return nil, res.Err
		}
		scene.Reset()
		return scene, nil
	})
	scene.SetLevelLoader(sceneManager)

	levelToLoad := StartLevel(cfg.Level, settings)
	log.Printf("[App] Starting level: %s", levelToLoad)
	if err := sceneManager.LoadLevel(levelToLoad); err != nil {
		// 存档里的关卡可能已经不存在了，回到第 1 关
		if cfg.Level == "" && levelToLoad != DefaultLevel {
			log.Printf("[App] Saved level %s unavailable, starting at level %s", levelToLoad, DefaultLevel)
			err = sceneManager.LoadLevel(DefaultLevel)
		}
		if err != nil {
			// 仍然显示场景，提示错误并等待重试
			scene.ShowLoadError(levelToLoad, err)
			sceneManager.SwitchTo(scene)
		}
	}

	if settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return &App{
		sceneManager: sceneManager,
		session:      session,
		settings:     settings,
		verbose:      cfg.Verbose,
	}, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(scenes.WindowWidth, scenes.WindowHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", scenes.WindowWidth, scenes.WindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	a.sceneManager.Update(a.session.Arena.Config().TickDelta())
	return nil
}

func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		// 退出全屏
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
	} else {
		ebiten.SetFullscreen(true)
	}

	a.settings.SetFullscreen(!a.settings.GetSettings().Fullscreen)
	if err := a.settings.Save(); err != nil {
		log.Printf("[App] Warning: failed to save settings: %v", err)
	}
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	// 先填充黑色背景（全屏时左右两边为黑色）
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return scenes.WindowWidth, scenes.WindowHeight
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// Session 当前运行
func (a *App) Session() *Session {
	return a.session
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
