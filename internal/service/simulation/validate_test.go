package simulation

import (
	"testing"

	"github.com/plantops/capaplan/internal/domain/models"
)

func TestValidateConfigCleanPasses(t *testing.T) {
	svc := NewService(0, 0, nil)
	report := svc.ValidateConfig(stochasticConfig(1))
	if !report.OK() {
		t.Fatalf("expected clean config to pass, got errors: %+v", report.Errors)
	}
}

func TestValidateConfigFindings(t *testing.T) {
	base := func() models.SimulationConfig { return singleStationConfig(480, 1) }

	cases := []struct {
		name   string
		mutate func(*models.SimulationConfig)
		field  string
	}{
		{"negative sam", func(c *models.SimulationConfig) { c.Operations[0].SAMMinutes = 0 }, "operations[0].sam_minutes"},
		{"zero operators", func(c *models.SimulationConfig) { c.Operations[0].OperatorsRequired = 0 }, "operations[0].operators_required"},
		{"bad shifts", func(c *models.SimulationConfig) { c.Calendar.EnabledShifts = 4 }, "calendar.enabled_shifts"},
		{"no horizon", func(c *models.SimulationConfig) { c.HorizonDays = 0 }, "horizon_days"},
		{"percentages exceed 100", func(c *models.SimulationConfig) {
			c.Operations[0].GradePct = 80
			c.Operations[0].ReworkPct = 15
			c.Operations[0].FPDPct = 10
		}, "operations[0]"},
		{"unknown demand product", func(c *models.SimulationConfig) { c.Demands[0].Product = "GHOST" }, "demands[0].product"},
		{"conflicting demand spec", func(c *models.SimulationConfig) {
			c.Demands[0].WeeklyDemand = f64(100)
		}, "demands[0]"},
		{"mix mode without total", func(c *models.SimulationConfig) {
			c.Mode = models.DemandModeMix
			c.TotalDailyDemand = 0
		}, "total_daily_demand"},
	}

	svc := NewService(0, 0, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			report := svc.ValidateConfig(cfg)
			for _, issue := range report.Errors {
				if issue.Field == tc.field {
					return
				}
			}
			t.Errorf("expected error on %s, got %+v", tc.field, report.Errors)
		})
	}
}

func TestValidateConfigDuplicateStep(t *testing.T) {
	cfg := singleStationConfig(480, 1)
	cfg.Operations = append(cfg.Operations, cfg.Operations[0])

	svc := NewService(0, 0, nil)
	report := svc.ValidateConfig(cfg)
	if report.OK() {
		t.Fatal("expected duplicate step to be rejected")
	}
}

func TestValidateConfigMissingBreakdownIsInfoOnly(t *testing.T) {
	svc := NewService(0, 0, nil)
	report := svc.ValidateConfig(singleStationConfig(480, 1))
	if !report.OK() {
		t.Fatalf("missing breakdown entry must not be an error: %+v", report.Errors)
	}
	found := false
	for _, issue := range report.Info {
		if issue.Field == "operations[0].machine_tool" {
			found = true
		}
	}
	if !found {
		t.Error("expected info finding for implicit 0% breakdown")
	}
}
