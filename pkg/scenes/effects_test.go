package scenes

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestEffectLayer_Lifetime(t *testing.T) {
	l := NewEffectLayer()
	l.HitEffect(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 0, 1})
	l.Explosion(mgl64.Vec3{}, 5)
	assert.Equal(t, 2, l.Len())

	l.Update(hitEffectDuration)
	assert.Equal(t, 1, l.Len(), "命中特效先结束")
	assert.Equal(t, effectExplosion, l.effects[0].kind)
	assert.InDelta(t, hitEffectDuration/explosionEffectDuration, l.effects[0].progress(), 1e-9)

	l.Update(explosionEffectDuration)
	assert.Zero(t, l.Len())
}

func TestEffectLayer_Bounded(t *testing.T) {
	l := NewEffectLayer()
	for i := 0; i < maxEffects+10; i++ {
		l.Explosion(mgl64.Vec3{float64(i), 0, 0}, 1)
	}
	assert.Equal(t, maxEffects, l.Len())
	assert.Equal(t, 10.0, l.effects[0].pos[0], "淘汰最旧的特效")
}

func TestEffectLayer_Warnings(t *testing.T) {
	l := NewEffectLayer()
	l.ZoneWarning("pit", 7, true)
	l.ZoneWarning("lava", 7, true)
	assert.Equal(t, []string{"lava", "pit"}, l.Warned(7))

	l.ZoneWarning("lava", 7, false)
	assert.Equal(t, []string{"pit"}, l.Warned(7))
	l.ZoneWarning("pit", 7, false)
	assert.Nil(t, l.Warned(7))
	assert.Empty(t, l.warnings, "不再预警的实体被清理")

	t.Run("隐身状态", func(t *testing.T) {
		l.VisibilityChanged(9, false)
		assert.True(t, l.Hidden(9))
		l.VisibilityChanged(9, true)
		assert.False(t, l.Hidden(9))
	})

	t.Run("重置", func(t *testing.T) {
		l.ZoneWarning("pit", 1, true)
		l.VisibilityChanged(2, false)
		l.HitEffect(mgl64.Vec3{}, mgl64.Vec3{})
		l.Reset()
		assert.Zero(t, l.Len())
		assert.Nil(t, l.Warned(1))
		assert.False(t, l.Hidden(2))
	})
}
