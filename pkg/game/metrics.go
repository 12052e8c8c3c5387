package game

import (
	"net/http"
	"time"

	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "arena"

// MetricsRecorder 把统计、音频和表现层通知导出为 Prometheus 指标
//
// 同时实现 StatsSink、AudioSink 和 PresentationSink，可以和其他接收者一起
// 通过 StatsFanout 或 AudioFanout 挂到编排器上。
type MetricsRecorder struct {
	score      prometheus.Counter
	kills      prometheus.Counter
	wave       prometheus.Gauge
	sounds     *prometheus.CounterVec
	hits       prometheus.Counter
	explosions prometheus.Counter
	outcomes   *prometheus.CounterVec
	tickTime   prometheus.Histogram
}

// NewMetricsRecorder 创建指标并注册到 reg
// reg 为 nil 时注册到 Prometheus 默认注册表
func NewMetricsRecorder(reg prometheus.Registerer) *MetricsRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &MetricsRecorder{
		score: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "score_total",
			Help:      "Total score awarded.",
		}),
		kills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "kills_total",
			Help:      "Enemies killed.",
		}),
		wave: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "wave",
			Help:      "Current wave (1-based, 0 before the first wave).",
		}),
		sounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "audio_events_total",
			Help:      "Audio events emitted by the simulation.",
		}, []string{"event"}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "projectile_hits_total",
			Help:      "Projectile hits on targets.",
		}),
		explosions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "explosions_total",
			Help:      "Area damage events.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "levels_finished_total",
			Help:      "Finished levels by outcome.",
		}, []string{"level", "outcome"}),
		tickTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock time spent in one simulation tick.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
	}
	reg.MustRegister(m.score, m.kills, m.wave, m.sounds, m.hits, m.explosions, m.outcomes, m.tickTime)
	return m
}

func (m *MetricsRecorder) AddScore(n int) {
	if n > 0 {
		m.score.Add(float64(n))
	}
}

func (m *MetricsRecorder) IncrementKills() { m.kills.Inc() }

func (m *MetricsRecorder) SetWave(n int) { m.wave.Set(float64(n)) }

// Play 按事件名计数
// "weapon fired: pistol" 这类带参数的事件按完整名称计数，武器种类有限
func (m *MetricsRecorder) Play(name string, _ *mgl64.Vec3) {
	m.sounds.WithLabelValues(name).Inc()
}

func (m *MetricsRecorder) EntityMoved(ecs.EntityID, mgl64.Vec3, float64) {}

func (m *MetricsRecorder) HitEffect(mgl64.Vec3, mgl64.Vec3) { m.hits.Inc() }

func (m *MetricsRecorder) Explosion(mgl64.Vec3, float64) { m.explosions.Inc() }

func (m *MetricsRecorder) ZoneWarning(string, ecs.EntityID, bool) {}

func (m *MetricsRecorder) VisibilityChanged(ecs.EntityID, bool) {}

// LevelFinished 记录关卡结果
func (m *MetricsRecorder) LevelFinished(levelID string, outcome types.Outcome) {
	m.outcomes.WithLabelValues(levelID, outcome.String()).Inc()
}

// ObserveTick 记录一次 tick 的耗时
func (m *MetricsRecorder) ObserveTick(d time.Duration) {
	m.tickTime.Observe(d.Seconds())
}

// MetricsHandler 导出指标的 HTTP handler
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
