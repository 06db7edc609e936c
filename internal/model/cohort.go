package model

// Cohort 改善前/改善后分组
type Cohort string

const (
	CohortStandalone Cohort = "standalone" // 不属于任何分组
	CohortBaseline   Cohort = "baseline"   // 改善前
	CohortImproved   Cohort = "improved"   // 改善后
)

// PumpCategory 水泵子分类
type PumpCategory string

const (
	PumpChilled PumpCategory = "chilled" // 冰水
	PumpCooling PumpCategory = "cooling" // 冷却
	PumpZone    PumpCategory = "zone"    // 区域
	PumpOther   PumpCategory = "other"   // 其他
)
