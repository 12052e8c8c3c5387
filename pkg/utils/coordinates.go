// Package utils 提供前端共用的工具函数
//
// coordinates.go 负责俯视角下世界坐标与屏幕坐标的换算。
//
// # 坐标系统概述
//
//   - **世界坐标**：X/Z 为水平面，Y 向上；单位为世界单位
//   - **屏幕坐标**：相对于窗口左上角的像素，X 向右，Y 向下
//
// 俯视投影直接丢弃 Y：屏幕 X 对应世界 X，屏幕 Y 对应世界 Z。
//
// # 核心转换公式
//
//	screenX = (world.X - camera.X) * scale + screenW/2
//	screenY = (world.Z - camera.Z) * scale + screenH/2
package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera 俯视角镜头
type Camera struct {
	// Center 镜头中心（世界坐标，只使用 X/Z）
	Center mgl64.Vec3

	// Scale 每个世界单位对应的像素数
	Scale float64

	// ScreenWidth/ScreenHeight 逻辑屏幕尺寸（像素）
	ScreenWidth, ScreenHeight int

	// FollowSpeed 跟随速度（每秒消除的偏移比例的指数系数），0 表示立即跟随
	FollowSpeed float64
}

// NewCamera 创建镜头
func NewCamera(screenW, screenH int, scale float64) *Camera {
	return &Camera{
		Scale:        scale,
		ScreenWidth:  screenW,
		ScreenHeight: screenH,
		FollowSpeed:  6,
	}
}

// WorldToScreen 世界坐标 → 屏幕坐标
func (c *Camera) WorldToScreen(p mgl64.Vec3) (float32, float32) {
	x := (p[0]-c.Center[0])*c.Scale + float64(c.ScreenWidth)/2
	y := (p[2]-c.Center[2])*c.Scale + float64(c.ScreenHeight)/2
	return float32(x), float32(y)
}

// ScreenToWorld 屏幕坐标 → 地面（Y=0）上的世界坐标
func (c *Camera) ScreenToWorld(x, y int) mgl64.Vec3 {
	if c.Scale == 0 {
		return c.Center
	}
	wx := (float64(x)-float64(c.ScreenWidth)/2)/c.Scale + c.Center[0]
	wz := (float64(y)-float64(c.ScreenHeight)/2)/c.Scale + c.Center[2]
	return mgl64.Vec3{wx, 0, wz}
}

// Length 世界长度 → 像素长度
func (c *Camera) Length(l float64) float32 {
	return float32(l * c.Scale)
}

// Follow 平滑移动镜头中心到 target
//
// 使用指数衰减：每秒剩余偏移乘以 e^-FollowSpeed，与帧率无关。
func (c *Camera) Follow(target mgl64.Vec3, deltaTime float64) {
	target[1] = 0
	if c.FollowSpeed <= 0 || deltaTime <= 0 {
		c.Center = target
		return
	}
	t := 1 - math.Exp(-c.FollowSpeed*deltaTime)
	c.Center = Lerp3(c.Center, target, t)
}

// ClampTo 限制镜头中心，使画面不超出 [min, max] 的水平范围
// 世界比画面窄时镜头停在世界中心
func (c *Camera) ClampTo(min, max mgl64.Vec3) {
	if c.Scale == 0 {
		return
	}
	halfW := float64(c.ScreenWidth) / 2 / c.Scale
	halfH := float64(c.ScreenHeight) / 2 / c.Scale
	c.Center[0] = clampAxis(c.Center[0], min[0]+halfW, max[0]-halfW)
	c.Center[2] = clampAxis(c.Center[2], min[2]+halfH, max[2]-halfH)
}

func clampAxis(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}
