package simulation

import (
	"fmt"

	"github.com/plantops/capaplan/internal/domain/models"
)

// ValidateConfig runs the structural checks of a simulation config without
// running it. Errors block a run; warnings and info are advisory.
func (s *Service) ValidateConfig(cfg models.SimulationConfig) models.ValidationReport {
	var report models.ValidationReport
	addErr := func(field, msg string) {
		report.Errors = append(report.Errors, models.ValidationIssue{Field: field, Message: msg})
	}
	addWarn := func(field, msg string) {
		report.Warnings = append(report.Warnings, models.ValidationIssue{Field: field, Message: msg})
	}
	addInfo := func(field, msg string) {
		report.Info = append(report.Info, models.ValidationIssue{Field: field, Message: msg})
	}

	if len(cfg.Operations) == 0 {
		addErr("operations", "at least one operation is required")
	}
	if cfg.HorizonDays <= 0 {
		addErr("horizon_days", "horizon must be at least one day")
	}
	if cfg.Calendar.EnabledShifts < 1 || cfg.Calendar.EnabledShifts > 3 {
		addErr("calendar.enabled_shifts", "enabled shifts must be between 1 and 3")
	}
	if cfg.Calendar.ShiftHours <= 0 {
		addErr("calendar.shift_hours", "shift hours must be positive")
	}
	if cfg.Calendar.WorkDaysPerWeek < 1 || cfg.Calendar.WorkDaysPerWeek > 7 {
		addErr("calendar.work_days_per_week", "work days per week must be between 1 and 7")
	}

	breakdownFor := make(map[string]bool, len(cfg.Breakdowns))
	for _, b := range cfg.Breakdowns {
		breakdownFor[b.MachineTool] = true
		if b.BreakdownPct < 0 || b.BreakdownPct > 100 {
			addErr(fmt.Sprintf("breakdowns[%s]", b.MachineTool), "breakdown_pct must be within [0,100]")
		}
	}

	steps := make(map[string]map[int]bool)
	products := make(map[string]bool)
	for i, op := range cfg.Operations {
		field := fmt.Sprintf("operations[%d]", i)
		products[op.Product] = true
		if op.SAMMinutes <= 0 {
			addErr(field+".sam_minutes", "sam_minutes must be positive")
		}
		if op.OperatorsRequired < 1 {
			addErr(field+".operators_required", "operators_required must be at least 1")
		}
		if op.Variability != models.VariabilityNone && op.Variability != models.VariabilityTriangular && op.Variability != "" {
			addErr(field+".variability", fmt.Sprintf("unknown distribution family %q", op.Variability))
		}
		if op.GradePct+op.FPDPct+op.ReworkPct > 100 {
			addErr(field, "grade_pct + fpd_pct + rework_pct exceeds 100")
		}
		if steps[op.Product] == nil {
			steps[op.Product] = make(map[int]bool)
		}
		if steps[op.Product][op.Step] {
			addErr(field+".step", fmt.Sprintf("duplicate step %d for product %q", op.Step, op.Product))
		}
		steps[op.Product][op.Step] = true
		if !breakdownFor[op.MachineTool] {
			addInfo(field+".machine_tool",
				fmt.Sprintf("no breakdown entry for machine class %q, assuming 0%%", op.MachineTool))
		}
	}

	if len(cfg.Demands) == 0 {
		addWarn("demands", "no demand configured; the run will introduce no units")
	}
	for i, dem := range cfg.Demands {
		field := fmt.Sprintf("demands[%d]", i)
		if !products[dem.Product] {
			addErr(field+".product", fmt.Sprintf("demand references undefined product %q", dem.Product))
		}
		switch dem.SpecCount() {
		case 0:
			addErr(field, "exactly one of daily_demand, weekly_demand or mix_share_pct must be set")
		case 1:
			// The single allowed specification.
		default:
			addErr(field, "daily_demand, weekly_demand and mix_share_pct are mutually exclusive")
		}
		if cfg.Mode == models.DemandModeMix && dem.MixSharePct == nil {
			addWarn(field, "mix-driven run ignores demand without mix_share_pct")
		}
		if cfg.Mode != models.DemandModeMix && dem.MixSharePct != nil {
			addWarn(field, "demand-driven run ignores mix_share_pct")
		}
	}
	if cfg.Mode == models.DemandModeMix && cfg.TotalDailyDemand <= 0 {
		addErr("total_daily_demand", "mix-driven runs require a positive total daily demand")
	}

	if cfg.FloatingPoolSize < 0 {
		addErr("floating_pool_size", "floating pool size must not be negative")
	}
	if cfg.RandomSeed == 0 {
		addInfo("random_seed", "seed 0: runs are reproducible but indistinguishable from the default")
	}

	return report
}
