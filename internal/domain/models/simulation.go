package models

import "strconv"

// SimulationConfig is the complete, self-contained input of one line
// simulation run. Identical config and seed must always reproduce identical
// results.
type SimulationConfig struct {
	Operations       []Operation   `bson:"operations" json:"operations"`
	Calendar         ShiftCalendar `bson:"calendar" json:"calendar"`
	Demands          []Demand      `bson:"demands" json:"demands"`
	Breakdowns       []Breakdown   `bson:"breakdowns" json:"breakdowns"`
	Mode             DemandMode    `bson:"mode" json:"mode"`
	TotalDailyDemand float64       `bson:"total_daily_demand" json:"total_daily_demand"`
	HorizonDays      int           `bson:"horizon_days" json:"horizon_days"`
	RandomSeed       int64         `bson:"random_seed" json:"random_seed"`
	FloatingPoolSize int           `bson:"floating_pool_size" json:"floating_pool_size"`
}

// StationKey identifies a simulated station: one operation row of one product.
func StationKey(product string, step int) string {
	if product == "" {
		return strconv.Itoa(step)
	}
	return product + "/" + strconv.Itoa(step)
}

// StationStats is the per-station slice of a simulation result.
type StationStats struct {
	Station          string  `bson:"station" json:"station"`
	Product          string  `bson:"product" json:"product"`
	Step             int     `bson:"step" json:"step"`
	Operation        string  `bson:"operation" json:"operation"`
	MachineTool      string  `bson:"machine_tool" json:"machine_tool"`
	BusyMinutes      float64 `bson:"busy_minutes" json:"busy_minutes"`
	AvailableMinutes float64 `bson:"available_minutes" json:"available_minutes"`
	Utilization      float64 `bson:"utilization" json:"utilization"`
	UnitsProcessed   int     `bson:"units_processed" json:"units_processed"`
	Reworks          int     `bson:"reworks" json:"reworks"`
	DefectivePassed  int     `bson:"defective_passed" json:"defective_passed"`
	WIPAtEnd         int     `bson:"wip_at_end" json:"wip_at_end"`
}

// CycleTimeStats summarizes unit time-in-system in minutes.
type CycleTimeStats struct {
	Avg float64 `bson:"avg" json:"avg"`
	Min float64 `bson:"min" json:"min"`
	Max float64 `bson:"max" json:"max"`
	P50 float64 `bson:"p50" json:"p50"`
	P90 float64 `bson:"p90" json:"p90"`
}

// SimulationResult is the full output of one run.
type SimulationResult struct {
	HorizonDays      int            `bson:"horizon_days" json:"horizon_days"`
	UnitsIntroduced  int            `bson:"units_introduced" json:"units_introduced"`
	UnitsCompleted   int            `bson:"units_completed" json:"units_completed"`
	UnitsScrapped    int            `bson:"units_scrapped" json:"units_scrapped"`
	UnitsInSystem    int            `bson:"units_in_system" json:"units_in_system"`
	ThroughputPerDay float64        `bson:"throughput_per_day" json:"throughput_per_day"`
	CycleTime        CycleTimeStats `bson:"cycle_time" json:"cycle_time"`
	Stations         []StationStats `bson:"stations" json:"stations"`
	Bottlenecks      []string       `bson:"bottlenecks" json:"bottlenecks"`
}

// ValidationIssue is one finding of a structural config check.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationReport groups config findings by severity. Errors block a run;
// warnings and info do not.
type ValidationReport struct {
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
	Info     []ValidationIssue `json:"info"`
}

// OK reports whether the config may be run.
func (r ValidationReport) OK() bool { return len(r.Errors) == 0 }
