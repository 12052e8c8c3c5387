package game

import (
	"encoding/binary"
	"log"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleRate 音频上下文采样率
const SampleRate = 48000

// Tone 一个合成音效的参数
type Tone struct {
	Frequency float64 // 起始频率（Hz）
	Sweep     float64 // 结束频率相对起始频率的倍数，1 表示不变
	Duration  float64 // 秒
	Noise     float64 // 0~1，混入的噪声比例（爆炸、震地）
	Gain      float64 // 0~1
}

// soundTable 音频事件名 -> 音效
// 带参数的事件（"weapon fired: pistol"）先按完整名称查找，再按冒号前的前缀查找
var soundTable = map[string]Tone{
	"weapon fired":          {Frequency: 880, Sweep: 0.5, Duration: 0.06, Gain: 0.4},
	"weapon fired: shotgun": {Frequency: 220, Sweep: 0.4, Duration: 0.12, Noise: 0.6, Gain: 0.6},
	"weapon fired: rocket":  {Frequency: 160, Sweep: 1.8, Duration: 0.25, Noise: 0.3, Gain: 0.5},
	"weapon switched":       {Frequency: 1200, Sweep: 1, Duration: 0.03, Gain: 0.3},
	"explosion":             {Frequency: 90, Sweep: 0.3, Duration: 0.6, Noise: 0.8, Gain: 0.9},
	"ground slam":           {Frequency: 60, Sweep: 0.5, Duration: 0.5, Noise: 0.6, Gain: 0.9},
	"zombie attacked":       {Frequency: 300, Sweep: 0.7, Duration: 0.1, Noise: 0.2, Gain: 0.5},
	"zombie groaned":        {Frequency: 110, Sweep: 0.8, Duration: 0.7, Noise: 0.1, Gain: 0.35},
	"zombie died":           {Frequency: 180, Sweep: 0.25, Duration: 0.35, Noise: 0.2, Gain: 0.5},
	"player hurt":           {Frequency: 520, Sweep: 0.6, Duration: 0.15, Gain: 0.6},
	"player died":           {Frequency: 440, Sweep: 0.2, Duration: 1.0, Gain: 0.7},
	"hazard sizzle":         {Frequency: 2000, Sweep: 1, Duration: 0.2, Noise: 0.9, Gain: 0.3},
	"boss roar":             {Frequency: 70, Sweep: 1.4, Duration: 1.2, Noise: 0.3, Gain: 0.9},
	"boss enraged":          {Frequency: 90, Sweep: 1.6, Duration: 0.8, Noise: 0.3, Gain: 0.8},
	"boss berserk":          {Frequency: 110, Sweep: 2, Duration: 0.8, Noise: 0.4, Gain: 0.9},
	"boss charge":           {Frequency: 140, Sweep: 1.5, Duration: 0.4, Noise: 0.2, Gain: 0.7},
	"boss slam windup":      {Frequency: 50, Sweep: 2, Duration: 0.6, Gain: 0.6},
	"boss summon":           {Frequency: 330, Sweep: 0.5, Duration: 0.5, Gain: 0.6},
	"boss defeated":         {Frequency: 60, Sweep: 0.2, Duration: 1.5, Noise: 0.5, Gain: 1},
	"victory":               {Frequency: 523, Sweep: 2, Duration: 0.8, Gain: 0.6},
	"defeat":                {Frequency: 392, Sweep: 0.5, Duration: 1.0, Gain: 0.6},
}

// LookupTone 查找事件对应的音效
func LookupTone(name string) (Tone, bool) {
	if t, ok := soundTable[name]; ok {
		return t, true
	}
	if i := strings.Index(name, ":"); i > 0 {
		t, ok := soundTable[name[:i]]
		return t, ok
	}
	return Tone{}, false
}

// 定位音效的衰减参数（世界单位）
const (
	audioRefDistance = 8.0
	audioMaxDistance = 60.0
)

// Attenuation 距离衰减系数：参考距离内为 1，超过最大距离为 0
func Attenuation(distance float64) float64 {
	if distance <= audioRefDistance {
		return 1
	}
	if distance >= audioMaxDistance {
		return 0
	}
	return audioRefDistance / distance
}

// SynthesizeTone 生成 16 位立体声小端 PCM 数据
func SynthesizeTone(t Tone, sampleRate int) []byte {
	n := int(t.Duration * float64(sampleRate))
	if n <= 0 {
		return nil
	}
	sweep := t.Sweep
	if sweep <= 0 {
		sweep = 1
	}

	buf := make([]byte, n*4)
	phase := 0.0
	// 线性同余噪声，保证同一音效每次生成的数据相同
	seed := uint32(2463534242)
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		freq := t.Frequency * math.Pow(sweep, p)
		phase += 2 * math.Pi * freq / float64(sampleRate)

		seed = seed*1664525 + 1013904223
		noise := float64(seed>>8)/float64(1<<24)*2 - 1

		v := (1-t.Noise)*math.Sin(phase) + t.Noise*noise
		env := 1 - p
		if p < 0.02 {
			env = p / 0.02
		}
		s := int16(v * env * t.Gain * 0.8 * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(s))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(s))
	}
	return buf
}

// AudioManager 音频管理器（AudioSink 的 ebiten 实现）
//
// 职责：
//   - 把模拟核心的语义音频事件映射为合成音效并播放
//   - 按 SettingsManager 中的音效开关和音量控制播放
//   - 定位音效按到监听者（玩家）的水平距离衰减
//
// context 为 nil 时静默运行（无头模式、测试）
type AudioManager struct {
	context         *audio.Context
	settingsManager *SettingsManager
	listener        mgl64.Vec3
	pcm             map[string][]byte // 已合成的音效缓存（事件名 -> PCM）
	played          int
}

// NewAudioManager 创建音频管理器
//
// 参数：
//   - ctx: ebiten 音频上下文，可为 nil
//   - sm: 设置管理器，可为 nil（使用默认设置）
func NewAudioManager(ctx *audio.Context, sm *SettingsManager) *AudioManager {
	return &AudioManager{
		context:         ctx,
		settingsManager: sm,
		pcm:             make(map[string][]byte),
	}
}

// SetListener 设置监听者位置（通常是玩家）
func (am *AudioManager) SetListener(pos mgl64.Vec3) {
	am.listener = pos
}

// Volume 事件在当前设置和监听者位置下的音量，0 表示不播放
func (am *AudioManager) Volume(name string, pos *mgl64.Vec3) float64 {
	settings := DefaultSettings()
	if am.settingsManager != nil {
		settings = am.settingsManager.GetSettings()
	}
	if !settings.SoundEnabled {
		return 0
	}
	if _, ok := LookupTone(name); !ok {
		return 0
	}

	volume := settings.SoundVolume
	if pos != nil {
		dx := pos[0] - am.listener[0]
		dz := pos[2] - am.listener[2]
		volume *= Attenuation(math.Hypot(dx, dz))
	}
	return volume
}

// Play 播放音频事件
func (am *AudioManager) Play(name string, pos *mgl64.Vec3) {
	volume := am.Volume(name, pos)
	if volume <= 0 {
		return
	}
	am.played++
	if am.context == nil {
		return
	}

	data, ok := am.pcm[name]
	if !ok {
		tone, _ := LookupTone(name)
		data = SynthesizeTone(tone, am.context.SampleRate())
		am.pcm[name] = data
	}

	player := am.context.NewPlayerFromBytes(data)
	player.SetVolume(volume)
	player.Play()
}

// PlayedCount 实际进入播放的事件数（包括静默模式下的）
func (am *AudioManager) PlayedCount() int {
	return am.played
}

// Preload 预先合成所有已知音效，避免第一次播放时卡顿
func (am *AudioManager) Preload() {
	if am.context == nil {
		return
	}
	for name, tone := range soundTable {
		if _, ok := am.pcm[name]; !ok {
			am.pcm[name] = SynthesizeTone(tone, am.context.SampleRate())
		}
	}
	log.Printf("[AudioManager] Preloaded %d sounds", len(am.pcm))
}
