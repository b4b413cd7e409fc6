package models

// Variability names the cycle-time distribution family for an operation.
type Variability string

const (
	VariabilityNone       Variability = "none"
	VariabilityTriangular Variability = "triangular"
)

// Operation is one routing step of a product. Steps are unique per product
// and define the order units flow through the line. Immutable once a
// simulation run has started.
type Operation struct {
	Product           string      `bson:"product" json:"product"`
	Step              int         `bson:"step" json:"step"`
	Name              string      `bson:"operation" json:"operation"`
	MachineTool       string      `bson:"machine_tool" json:"machine_tool"`
	SAMMinutes        float64     `bson:"sam_minutes" json:"sam_minutes"`
	Sequence          string      `bson:"sequence" json:"sequence"`
	OperatorsRequired int         `bson:"operators_required" json:"operators_required"`
	Variability       Variability `bson:"variability" json:"variability"`
	ReworkPct         float64     `bson:"rework_pct" json:"rework_pct"`
	GradePct          float64     `bson:"grade_pct" json:"grade_pct"`
	FPDPct            float64     `bson:"fpd_pct" json:"fpd_pct"`
}

// Breakdown derates the effective availability of one machine class.
type Breakdown struct {
	MachineTool  string  `bson:"machine_tool" json:"machine_tool"`
	BreakdownPct float64 `bson:"breakdown_pct" json:"breakdown_pct"`
}
