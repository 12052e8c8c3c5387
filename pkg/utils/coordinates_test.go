package utils

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestCamera_WorldToScreen(t *testing.T) {
	cam := NewCamera(800, 600, 10)
	cam.Center = mgl64.Vec3{5, 0, -5}

	tests := []struct {
		name   string
		world  mgl64.Vec3
		sx, sy float32
	}{
		{"镜头中心在屏幕中心", mgl64.Vec3{5, 0, -5}, 400, 300},
		{"+X 向右", mgl64.Vec3{6, 0, -5}, 410, 300},
		{"+Z 向下", mgl64.Vec3{5, 0, -4}, 400, 310},
		{"忽略高度", mgl64.Vec3{5, 30, -5}, 400, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := cam.WorldToScreen(tt.world)
			assert.InDelta(t, tt.sx, x, 1e-4)
			assert.InDelta(t, tt.sy, y, 1e-4)
		})
	}

	t.Run("屏幕坐标换回地面坐标", func(t *testing.T) {
		p := cam.ScreenToWorld(450, 200)
		assert.InDelta(t, 10.0, p[0], 1e-9)
		assert.Zero(t, p[1])
		assert.InDelta(t, -15.0, p[2], 1e-9)
	})

	assert.Equal(t, float32(25), cam.Length(2.5))
}

func TestCamera_Follow(t *testing.T) {
	cam := NewCamera(800, 600, 10)
	target := mgl64.Vec3{10, 4, 0}

	cam.Follow(target, 1.0/60)
	assert.Greater(t, cam.Center[0], 0.0)
	assert.Less(t, cam.Center[0], 10.0)

	for i := 0; i < 600; i++ {
		cam.Follow(target, 1.0/60)
	}
	assert.InDelta(t, 10.0, cam.Center[0], 1e-6)
	assert.Zero(t, cam.Center[1], "镜头始终在地面高度")

	t.Run("跟随速度为零时立即到位", func(t *testing.T) {
		cam.FollowSpeed = 0
		cam.Follow(mgl64.Vec3{-3, 0, 7}, 1.0/60)
		assert.Equal(t, mgl64.Vec3{-3, 0, 7}, cam.Center)
	})
}

func TestCamera_ClampTo(t *testing.T) {
	min, max := mgl64.Vec3{-45, -10, -45}, mgl64.Vec3{45, 50, 45}

	cam := NewCamera(800, 600, 10)
	cam.Center = mgl64.Vec3{44, 0, -44}
	cam.ClampTo(min, max)
	assert.Equal(t, mgl64.Vec3{5, 0, -15}, cam.Center)

	t.Run("世界比画面窄时居中", func(t *testing.T) {
		wide := NewCamera(3000, 600, 30)
		wide.Center = mgl64.Vec3{20, 0, 0}
		wide.ClampTo(min, max)
		assert.Zero(t, wide.Center[0])
	})
}
