package models

import "time"

// ScenarioType labels the what-if family a scenario belongs to.
type ScenarioType string

const (
	ScenarioTypeOvertime     ScenarioType = "overtime"
	ScenarioTypeFloatingPool ScenarioType = "floating-pool"
	ScenarioTypeWorkerCount  ScenarioType = "worker-count"
)

// ScenarioOverrides is a sparse set of parameter deltas merged onto the
// baseline config. Nil fields leave the baseline value untouched.
type ScenarioOverrides struct {
	EnabledShifts        *int            `bson:"enabled_shifts,omitempty" json:"enabled_shifts,omitempty"`
	ShiftHours           *float64        `bson:"shift_hours,omitempty" json:"shift_hours,omitempty"`
	WeekdayOvertime      *bool           `bson:"weekday_overtime,omitempty" json:"weekday_overtime,omitempty"`
	WeekdayOvertimeHours *float64        `bson:"weekday_overtime_hours,omitempty" json:"weekday_overtime_hours,omitempty"`
	WeekendOvertime      *bool           `bson:"weekend_overtime,omitempty" json:"weekend_overtime,omitempty"`
	WeekendOvertimeHours *float64        `bson:"weekend_overtime_hours,omitempty" json:"weekend_overtime_hours,omitempty"`
	FloatingPoolSize     *int            `bson:"floating_pool_size,omitempty" json:"floating_pool_size,omitempty"`
	WorkersPerStation    *int            `bson:"workers_per_station,omitempty" json:"workers_per_station,omitempty"`
	OperatorsByStation   map[string]int  `bson:"operators_by_station,omitempty" json:"operators_by_station,omitempty"`
	HorizonDays          *int            `bson:"horizon_days,omitempty" json:"horizon_days,omitempty"`
}

// Scenario is a named what-if case over a baseline simulation config.
type Scenario struct {
	Name      string            `bson:"name" json:"name"`
	Type      ScenarioType      `bson:"type" json:"type"`
	Overrides ScenarioOverrides `bson:"overrides" json:"overrides"`
}

// ScenarioDeltas captures how a scenario's results differ from the baseline.
type ScenarioDeltas struct {
	Throughput           float64            `bson:"throughput" json:"throughput"`
	ThroughputPct        float64            `bson:"throughput_pct" json:"throughput_pct"`
	UtilizationByStation map[string]float64 `bson:"utilization_by_station" json:"utilization_by_station"`
	Bottlenecks          []string           `bson:"bottlenecks" json:"bottlenecks"`
	BottleneckMoved      bool               `bson:"bottleneck_moved" json:"bottleneck_moved"`
}

// ScenarioResult pairs a scenario's own run output with its baseline deltas.
type ScenarioResult struct {
	Name   string           `bson:"name" json:"name"`
	Type   ScenarioType     `bson:"type" json:"type"`
	Result SimulationResult `bson:"result" json:"result"`
	Deltas ScenarioDeltas   `bson:"deltas" json:"deltas"`
	Err    string           `bson:"error,omitempty" json:"error,omitempty"`
}

// ScenarioRun is the persisted record of one comparison.
type ScenarioRun struct {
	ID        string           `bson:"id" json:"id"`
	ClientID  string           `bson:"client_id" json:"client_id"`
	Baseline  SimulationResult `bson:"baseline" json:"baseline"`
	Scenarios []ScenarioResult `bson:"scenarios" json:"scenarios"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
}
