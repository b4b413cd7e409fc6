package models

import "time"

// OrderAssignment places one order on a line over a date range.
type OrderAssignment struct {
	OrderID          string    `bson:"order_id" json:"order_id"`
	LineID           string    `bson:"line_id" json:"line_id"`
	StartDate        time.Time `bson:"start_date" json:"start_date"`
	EndDate          time.Time `bson:"end_date" json:"end_date"`
	RequiredMinutes  float64   `bson:"required_minutes" json:"required_minutes"`
	ProjectedDone    time.Time `bson:"projected_done" json:"projected_done"`
	MissesDueDate    bool      `bson:"misses_due_date" json:"misses_due_date"`
	AtRisk           bool      `bson:"at_risk" json:"at_risk"`
	ShortfallMinutes float64   `bson:"shortfall_minutes" json:"shortfall_minutes"`
}

// KPICommitments are the targets frozen when a schedule is committed.
type KPICommitments struct {
	TargetOTDPct        float64 `bson:"target_otd_pct" json:"target_otd_pct"`
	TargetEfficiencyPct float64 `bson:"target_efficiency_pct" json:"target_efficiency_pct"`
}

// CapacitySchedule is the planner's output: orders mapped onto lines and
// dates. It is the only planning artifact the core writes back.
type CapacitySchedule struct {
	ID          string            `bson:"id" json:"id"`
	ClientID    string            `bson:"client_id" json:"client_id"`
	Name        string            `bson:"name" json:"name"`
	Horizon     DateRange         `bson:"horizon" json:"horizon"`
	Assignments []OrderAssignment `bson:"assignments" json:"assignments"`
	Committed   bool              `bson:"committed" json:"committed"`
	Commitments *KPICommitments   `bson:"commitments,omitempty" json:"commitments,omitempty"`
	CreatedAt   time.Time         `bson:"created_at" json:"created_at"`
	CommittedAt *time.Time        `bson:"committed_at,omitempty" json:"committed_at,omitempty"`
}

// DateRange is an inclusive day span.
type DateRange struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// Days returns the number of calendar days in the range, at least zero.
func (r DateRange) Days() int {
	d := int(r.End.Sub(r.Start).Hours()/24) + 1
	if d < 0 {
		return 0
	}
	return d
}
