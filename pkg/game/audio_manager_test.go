package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupTone(t *testing.T) {
	tests := []struct {
		name  string
		event string
		found bool
		want  Tone
	}{
		{"完整名称", "explosion", true, soundTable["explosion"]},
		{"带参数的专用音效", "weapon fired: shotgun", true, soundTable["weapon fired: shotgun"]},
		{"带参数回退到前缀", "weapon fired: pistol", true, soundTable["weapon fired"]},
		{"未知事件", "unknown", false, Tone{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LookupTone(tt.event)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttenuation(t *testing.T) {
	assert.Equal(t, 1.0, Attenuation(0))
	assert.Equal(t, 1.0, Attenuation(audioRefDistance))
	assert.InDelta(t, 0.5, Attenuation(2*audioRefDistance), 1e-9)
	assert.Zero(t, Attenuation(audioMaxDistance))
}

func TestSynthesizeTone(t *testing.T) {
	data := SynthesizeTone(Tone{Frequency: 440, Sweep: 1, Duration: 0.1, Gain: 1}, SampleRate)
	require.Len(t, data, 4800*4, "立体声 16 位")

	t.Run("起止处振幅为零", func(t *testing.T) {
		assert.Equal(t, byte(0), data[0])
		assert.Equal(t, byte(0), data[1])
	})

	t.Run("同样的参数生成同样的数据", func(t *testing.T) {
		tone := soundTable["explosion"]
		assert.Equal(t, SynthesizeTone(tone, SampleRate), SynthesizeTone(tone, SampleRate))
	})

	assert.Nil(t, SynthesizeTone(Tone{Duration: 0}, SampleRate))
}

func TestAudioManager_Volume(t *testing.T) {
	sm := NewSettingsManager(nil)
	am := NewAudioManager(nil, sm)
	am.SetListener(mgl64.Vec3{0, 0, 0})

	far := mgl64.Vec3{0, 5, 2 * audioRefDistance}
	near := mgl64.Vec3{1, 0, 1}

	assert.Equal(t, 0.8, am.Volume("explosion", nil), "非定位音效使用设置音量")
	assert.Equal(t, 0.8, am.Volume("explosion", &near))
	assert.InDelta(t, 0.4, am.Volume("explosion", &far), 1e-9, "只按水平距离衰减")
	assert.Zero(t, am.Volume("no such event", nil))

	t.Run("关闭音效后静音", func(t *testing.T) {
		sm.SetSoundEnabled(false)
		assert.Zero(t, am.Volume("explosion", nil))
		am.Play("explosion", nil)
		assert.Zero(t, am.PlayedCount())
	})

	t.Run("没有音频上下文时静默计数", func(t *testing.T) {
		sm.SetSoundEnabled(true)
		am.Play("explosion", nil)
		am.Play("zombie groaned", &near)
		assert.Equal(t, 2, am.PlayedCount())
		assert.Empty(t, am.pcm)
	})
}
