package config

import (
	"testing"
	"testing/fstest"

	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

func TestDefaultArenaConfig(t *testing.T) {
	cfg := DefaultArenaConfig()

	if cfg.TickRate != 60 {
		t.Errorf("tickRate: expected 60, got %d", cfg.TickRate)
	}
	if cfg.InvulnerabilityWindow() != 1.0 {
		t.Errorf("invulnerability window: expected 1.0s, got %.3f", cfg.InvulnerabilityWindow())
	}
	if cfg.Projectile.MaxActive != 100 {
		t.Errorf("projectile maxActive: expected 100, got %d", cfg.Projectile.MaxActive)
	}
	if cfg.Projectile.CollisionDelay != 0.1 {
		t.Errorf("collision delay: expected 0.1, got %.3f", cfg.Projectile.CollisionDelay)
	}
	if cfg.Hazard.MaxPushSpeed != 20 {
		t.Errorf("max push speed: expected 20, got %.1f", cfg.Hazard.MaxPushSpeed)
	}
	if cfg.Boss.Phase2Threshold != 0.66 || cfg.Boss.Phase3Threshold != 0.33 {
		t.Errorf("boss thresholds: expected 0.66/0.33, got %.2f/%.2f", cfg.Boss.Phase2Threshold, cfg.Boss.Phase3Threshold)
	}
	if cfg.World.Min != (mgl64.Vec3{-45, -10, -45}) || cfg.World.Max != (mgl64.Vec3{45, 50, 45}) {
		t.Errorf("unexpected default world bounds: %v .. %v", cfg.World.Min, cfg.World.Max)
	}

	rocket, ok := cfg.Weapons["rocket"]
	if !ok {
		t.Fatal("default rocket weapon missing")
	}
	if rocket.Kind != types.WeaponRocket || rocket.DamageType != types.DamageExplosion {
		t.Errorf("rocket: expected kind rocket / explosion damage, got %s / %s", rocket.Kind, rocket.DamageType)
	}
	if rocket.Damage != 150 || rocket.SplashDamage != 75 || rocket.SplashRadius != 5 {
		t.Errorf("rocket numbers: got damage=%.0f splash=%.0f radius=%.0f", rocket.Damage, rocket.SplashDamage, rocket.SplashRadius)
	}
}

func TestParseArenaConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, cfg *ArenaConfig)
	}{
		{
			name: "覆盖部分字段，其余使用默认值",
			yaml: `
tickRate: 30
player:
  speed: 12
weapons:
  pistol:
    damage: 40
`,
			check: func(t *testing.T, cfg *ArenaConfig) {
				if cfg.TickRate != 30 {
					t.Errorf("tickRate: expected 30, got %d", cfg.TickRate)
				}
				if cfg.Player.Speed != 12 {
					t.Errorf("player speed: expected 12, got %.1f", cfg.Player.Speed)
				}
				if cfg.Player.Health != 100 {
					t.Errorf("player health default: expected 100, got %.1f", cfg.Player.Health)
				}
				if cfg.Weapons["pistol"].Damage != 40 {
					t.Errorf("pistol damage: expected 40, got %.1f", cfg.Weapons["pistol"].Damage)
				}
				// 未声明的默认武器仍然存在
				if _, ok := cfg.Weapons["shotgun"]; !ok {
					t.Error("shotgun should be filled in from defaults")
				}
			},
		},
		{
			name: "钳制越界比例",
			yaml: `
combat:
  fireResistMultiplier: 3
  rocketSplashMinDamage: 1.5
`,
			check: func(t *testing.T, cfg *ArenaConfig) {
				if cfg.Combat.FireResistMultiplier != 1 {
					t.Errorf("fireResistMultiplier: expected clamp to 1, got %.2f", cfg.Combat.FireResistMultiplier)
				}
				if cfg.Combat.RocketSplashFloor() != 1 {
					t.Errorf("rocketSplashMinDamage: expected clamp to 1, got %.2f", cfg.Combat.RocketSplashFloor())
				}
			},
		},
		{
			name: "未定义的玩家武器",
			yaml: `
player:
  weapons: [pistol, railgun]
`,
			wantErr: true,
		},
		{
			name: "世界边界反向",
			yaml: `
world:
  min: [10, 0, 10]
  max: [-10, 5, -10]
`,
			wantErr: true,
		},
		{
			name: "Boss 阈值顺序错误",
			yaml: `
boss:
  phase2Threshold: 0.3
  phase3Threshold: 0.6
`,
			wantErr: true,
		},
		{
			name: "调试关闭时保留无敌模式开关",
			yaml: `
debug:
  godMode: true
`,
			check: func(t *testing.T, cfg *ArenaConfig) {
				if cfg.Debug.Enabled {
					t.Error("debug should stay disabled")
				}
				if !cfg.Debug.GodMode {
					t.Error("godMode should be kept for a later debug toggle")
				}
			},
		},
		{
			name: "显式的 0 伤害下限",
			yaml: `
combat:
  explosionMinDamage: 0
  rocketSplashMinDamage: 0
`,
			check: func(t *testing.T, cfg *ArenaConfig) {
				if cfg.Combat.ExplosionFloor() != 0 {
					t.Errorf("explosionMinDamage: expected 0, got %.2f", cfg.Combat.ExplosionFloor())
				}
				if cfg.Combat.RocketSplashFloor() != 0 {
					t.Errorf("rocketSplashMinDamage: expected 0, got %.2f", cfg.Combat.RocketSplashFloor())
				}
			},
		},
		{
			name: "未设置的伤害下限使用默认值",
			yaml: `
tickRate: 60
`,
			check: func(t *testing.T, cfg *ArenaConfig) {
				if cfg.Combat.ExplosionFloor() != DefaultExplosionMinDamage {
					t.Errorf("explosionMinDamage: expected %.2f, got %.2f", DefaultExplosionMinDamage, cfg.Combat.ExplosionFloor())
				}
				if cfg.Combat.RocketSplashFloor() != DefaultRocketSplashMinDamage {
					t.Errorf("rocketSplashMinDamage: expected %.2f, got %.2f", DefaultRocketSplashMinDamage, cfg.Combat.RocketSplashFloor())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseArenaConfig([]byte(tt.yaml))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseArenaConfig failed: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadArenaConfig(t *testing.T) {
	fsys := fstest.MapFS{"data/arena.yaml": {Data: []byte("tickRate: 120\n")}}

	cfg, err := LoadArenaConfig(fsys, "data/arena.yaml")
	if err != nil {
		t.Fatalf("LoadArenaConfig failed: %v", err)
	}
	if cfg.TickDelta() != 1.0/120 {
		t.Errorf("tick delta: expected 1/120, got %f", cfg.TickDelta())
	}

	if _, err := LoadArenaConfig(fsys, "data/missing.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}
