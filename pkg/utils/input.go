package utils

import (
	"github.com/decker502/arena/pkg/game"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// KeyReader 键盘状态查询
// 运行时由 ebitenKeys 实现，测试中用假实现替换
type KeyReader interface {
	IsPressed(key ebiten.Key) bool
	IsJustPressed(key ebiten.Key) bool
}

type ebitenKeys struct{}

func (ebitenKeys) IsPressed(key ebiten.Key) bool     { return ebiten.IsKeyPressed(key) }
func (ebitenKeys) IsJustPressed(key ebiten.Key) bool { return inpututil.IsKeyJustPressed(key) }

// KeyBindings 按键绑定；每个动作可以绑定多个键
type KeyBindings struct {
	Up, Down, Left, Right []ebiten.Key
	Fire                  []ebiten.Key
	Weapons               []ebiten.Key // 第 i 个键切换到第 i+1 个武器槽
	Pause                 []ebiten.Key
	Debug                 []ebiten.Key
}

// DefaultKeyBindings WASD/方向键移动，空格开火，数字键切枪，P/Esc 暂停，F3 调试
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Up:      []ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp},
		Down:    []ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown},
		Left:    []ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft},
		Right:   []ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight},
		Fire:    []ebiten.Key{ebiten.KeySpace},
		Weapons: []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3},
		Pause:   []ebiten.Key{ebiten.KeyP, ebiten.KeyEscape},
		Debug:   []ebiten.Key{ebiten.KeyF3},
	}
}

// PointerState 指针（鼠标或触摸）状态
type PointerState struct {
	X, Y    int
	Pressed bool
	Present bool // 有可用的指针位置
}

// Snapshot 根据按键状态和指针状态生成一个 tick 的输入快照
//
// 参数:
//   - keys: 键盘状态
//   - pointer: 指针状态，按下视为开火
//   - toWorld: 屏幕坐标 → 世界坐标
func (b KeyBindings) Snapshot(keys KeyReader, pointer PointerState, toWorld func(x, y int) mgl64.Vec3) game.InputSnapshot {
	in := game.InputSnapshot{
		Up:          anyPressed(keys, b.Up),
		Down:        anyPressed(keys, b.Down),
		Left:        anyPressed(keys, b.Left),
		Right:       anyPressed(keys, b.Right),
		Fire:        anyPressed(keys, b.Fire) || pointer.Pressed,
		PauseToggle: anyJustPressed(keys, b.Pause),
		DebugToggle: anyJustPressed(keys, b.Debug),
	}
	for i, key := range b.Weapons {
		if keys.IsJustPressed(key) {
			in.WeaponSlot = i + 1
			break
		}
	}
	if pointer.Present && toWorld != nil {
		in.Aim = toWorld(pointer.X, pointer.Y)
		in.HasAim = true
	}
	return in
}

// ReadInputSnapshot 读取当前帧的键盘和指针输入
func ReadInputSnapshot(b KeyBindings, toWorld func(x, y int) mgl64.Vec3) game.InputSnapshot {
	return b.Snapshot(ebitenKeys{}, GetPointerState(), toWorld)
}

// GetPointerState 获取指针的完整状态
// 同时支持鼠标和触摸，优先使用触摸
func GetPointerState() PointerState {
	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return PointerState{X: x, Y: y, Pressed: true, Present: true}
	}

	x, y := ebiten.CursorPosition()
	return PointerState{
		X:       x,
		Y:       y,
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Present: true,
	}
}

// IsAnyKeyJustPressed 任意一个键本帧刚按下
func IsAnyKeyJustPressed(keys ...ebiten.Key) bool {
	return anyJustPressed(ebitenKeys{}, keys)
}

func anyPressed(keys KeyReader, bound []ebiten.Key) bool {
	for _, k := range bound {
		if keys.IsPressed(k) {
			return true
		}
	}
	return false
}

func anyJustPressed(keys KeyReader, bound []ebiten.Key) bool {
	for _, k := range bound {
		if keys.IsJustPressed(k) {
			return true
		}
	}
	return false
}
