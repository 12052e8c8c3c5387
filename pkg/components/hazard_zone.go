package components

import (
	"github.com/decker502/arena/pkg/types"
	"github.com/go-gl/mathgl/mgl64"
)

// HazardZoneComponent 静态危险区域
// Bounds 在创建时确定，之后不再改变
type HazardZoneComponent struct {
	Name    string
	Kind    types.HazardKind
	Variant types.HazardVariant
	Bounds  AABB

	// damage
	DamagePerSecond float64
	DamageType      types.DamageType

	// slow：进入时速度乘以 SlowFactor（0.1~1.0）
	SlowFactor float64

	// push：每秒施加的推力
	PushForce mgl64.Vec3

	// geyser：占空周期（秒）与相位偏移，只在周期前半段生效
	DutyPeriod float64
	DutyOffset float64

	WarningDistance float64
	Active          bool
}
