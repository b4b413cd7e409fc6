package models

// DemandMode selects which demand specification a run honors.
type DemandMode string

const (
	DemandModeDriven DemandMode = "demand-driven"
	DemandModeMix    DemandMode = "mix-driven"
)

// Demand specifies how many units of a product the line must produce.
// Exactly one of DailyDemand, WeeklyDemand or MixSharePct may be set;
// the run's DemandMode decides which family is honored.
type Demand struct {
	Product      string   `bson:"product" json:"product"`
	BundleSize   int      `bson:"bundle_size" json:"bundle_size"`
	DailyDemand  *float64 `bson:"daily_demand,omitempty" json:"daily_demand,omitempty"`
	WeeklyDemand *float64 `bson:"weekly_demand,omitempty" json:"weekly_demand,omitempty"`
	MixSharePct  *float64 `bson:"mix_share_pct,omitempty" json:"mix_share_pct,omitempty"`
}

// SpecCount reports how many of the mutually exclusive demand fields are set.
func (d Demand) SpecCount() int {
	n := 0
	if d.DailyDemand != nil {
		n++
	}
	if d.WeeklyDemand != nil {
		n++
	}
	if d.MixSharePct != nil {
		n++
	}
	return n
}

// UnitsPerDay resolves the demand to a per-day rate. Mix-driven demand
// converts its share of totalPerDay; weekly demand divides across the
// calendar's work week.
func (d Demand) UnitsPerDay(mode DemandMode, totalPerDay float64, workDays int) float64 {
	switch mode {
	case DemandModeMix:
		if d.MixSharePct != nil {
			return totalPerDay * *d.MixSharePct / 100
		}
	default:
		if d.DailyDemand != nil {
			return *d.DailyDemand
		}
		if d.WeeklyDemand != nil && workDays > 0 {
			return *d.WeeklyDemand / float64(workDays)
		}
	}
	return 0
}
