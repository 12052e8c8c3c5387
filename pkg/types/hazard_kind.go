package types

// HazardKind 危险区域类型
type HazardKind string

const (
	HazardDamage       HazardKind = "damage"
	HazardInstantDeath HazardKind = "instant_death"
	HazardSlow         HazardKind = "slow"
	HazardPush         HazardKind = "push"
)

// HazardVariant 同一类型下的变体，影响具体效果
type HazardVariant string

const (
	VariantNone      HazardVariant = ""
	VariantLava      HazardVariant = "lava"
	VariantFire      HazardVariant = "fire"
	VariantAcid      HazardVariant = "acid"
	VariantPit       HazardVariant = "pit"
	VariantMud       HazardVariant = "mud"
	VariantQuicksand HazardVariant = "quicksand" // 减速系数随停留时间递减
	VariantWind      HazardVariant = "wind"
	VariantGeyser    HazardVariant = "geyser" // 间歇性推力，只在占空周期的前半段生效
)
