package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene 前端的一个画面（目前只有竞技场场景）
type Scene interface {
	// Update 推进一帧，deltaTime 为秒
	Update(deltaTime float64)

	// Draw 绘制到 screen
	Draw(screen *ebiten.Image)
}

// Saveable 可选接口：窗口关闭时保存状态
type Saveable interface {
	// SaveOnExit 返回 false 表示保存失败（程序仍然退出）
	SaveOnExit() bool
}
