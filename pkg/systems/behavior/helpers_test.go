package behavior

import (
	"testing"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/config"
	"github.com/decker502/arena/pkg/ecs"
	"github.com/decker502/arena/pkg/entities"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/systems"
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

const testDT = 1.0 / 60

type recordingAudio struct {
	events []string
}

func (a *recordingAudio) Play(name string, _ *mgl64.Vec3) {
	a.events = append(a.events, name)
}

func (a *recordingAudio) count(name string) int {
	n := 0
	for _, e := range a.events {
		if e == name {
			n++
		}
	}
	return n
}

type visibilityRecorder struct {
	game.NopPresentation
	changes []bool
}

func (v *visibilityRecorder) VisibilityChanged(_ ecs.EntityID, visible bool) {
	v.changes = append(v.changes, visible)
}

// behaviorWorld 只包含行为系统需要的部分
type behaviorWorld struct {
	t            *testing.T
	em           *ecs.EntityManager
	cfg          *config.ArenaConfig
	stats        *config.ZombieStatsConfig
	gs           *game.GameState
	audio        *recordingAudio
	presentation *visibilityRecorder
	damage       *systems.DamageSystem
	behavior     *BehaviorSystem
}

func newBehaviorWorld(t *testing.T) *behaviorWorld {
	t.Helper()
	w := &behaviorWorld{
		t:            t,
		em:           ecs.NewEntityManager(),
		cfg:          config.DefaultArenaConfig(),
		stats:        config.DefaultZombieStats(),
		gs:           game.NewGameState(),
		audio:        &recordingAudio{},
		presentation: &visibilityRecorder{},
	}
	w.damage = systems.NewDamageSystem(w.em, w.cfg, w.gs.Now, w.audio)
	w.behavior = NewBehaviorSystem(w.em, w.cfg, w.damage, w.gs.Now, w.presentation, w.audio)
	return w
}

func (w *behaviorWorld) step(n int) {
	for i := 0; i < n; i++ {
		w.gs.Advance(testDT)
		w.behavior.Update(testDT)
	}
}

func (w *behaviorWorld) spawnPlayer(pos mgl64.Vec3) ecs.EntityID {
	w.t.Helper()
	id, err := entities.NewPlayerEntity(w.em, w.cfg, pos)
	require.NoError(w.t, err)
	return id
}

func (w *behaviorWorld) spawnZombie(zt types.ZombieType, pos mgl64.Vec3) ecs.EntityID {
	w.t.Helper()
	id, err := entities.NewZombieEntity(w.em, w.stats, zt, pos, 0)
	require.NoError(w.t, err)
	return id
}

func (w *behaviorWorld) position(id ecs.EntityID) mgl64.Vec3 {
	w.t.Helper()
	tr, ok := ecs.GetComponent[*components.TransformComponent](w.em, id)
	require.True(w.t, ok)
	return tr.Position
}

func (w *behaviorWorld) health(id ecs.EntityID) float64 {
	w.t.Helper()
	h, ok := ecs.GetComponent[*components.HealthComponent](w.em, id)
	require.True(w.t, ok)
	return h.Health
}
