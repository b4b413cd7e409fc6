package planner

import (
	"context"
	"testing"
	"time"

	"github.com/plantops/capaplan/internal/domain/models"
)

var (
	monday = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	friday = time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
)

func plannerDataset(lines int, orders ...models.Order) *models.PlanningDataset {
	ds := &models.PlanningDataset{
		ClientID: "c1",
		Calendar: models.ShiftCalendar{EnabledShifts: 1, ShiftHours: 8, WorkDaysPerWeek: 5},
		Operations: []models.Operation{
			{Product: "SHIRT", Step: 10, Name: "Sew", MachineTool: "sewing", SAMMinutes: 1, OperatorsRequired: 1},
		},
		Orders: orders,
	}
	for i := 0; i < lines; i++ {
		id := string(rune('a' + i))
		ds.Lines = append(ds.Lines, models.ProductionLine{
			ID: "line-" + id, ClientID: "c1", Name: "Line " + id,
			Stations: []models.Station{{ID: "st-" + id, MachineTools: []string{"sewing"}}},
		})
	}
	return ds
}

func shirtOrder(id string, qty float64, due time.Time, priority int) models.Order {
	return models.Order{ID: id, ClientID: "c1", Product: "SHIRT", Quantity: qty,
		DueDate: due, Priority: priority, Status: models.OrderStatusConfirmed}
}

func TestGeneratePlacesOrderWithinHorizon(t *testing.T) {
	// 960 minutes of work = exactly two 480-minute days.
	ds := plannerDataset(1, shirtOrder("o1", 960, friday, 1))
	svc := NewService(nil)

	sched, err := svc.Generate(context.Background(), ds, "week 36", monday, friday, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(sched.Assignments) != 1 {
		t.Fatalf("got %d assignments, want 1", len(sched.Assignments))
	}
	a := sched.Assignments[0]
	if a.AtRisk {
		t.Errorf("order unexpectedly at risk: %+v", a)
	}
	if !a.StartDate.Equal(monday) {
		t.Errorf("start = %s, want %s", a.StartDate, monday)
	}
	wantEnd := monday.AddDate(0, 0, 1)
	if !a.EndDate.Equal(wantEnd) {
		t.Errorf("end = %s, want %s", a.EndDate, wantEnd)
	}
	if a.MissesDueDate {
		t.Error("projected completion should meet the due date")
	}
}

func TestGenerateFlagsAtRiskButStillSchedules(t *testing.T) {
	// The week offers 2400 minutes; the order needs 3000.
	ds := plannerDataset(1, shirtOrder("o1", 3000, friday, 1))
	svc := NewService(nil)

	sched, err := svc.Generate(context.Background(), ds, "overload", monday, friday, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	a := sched.Assignments[0]
	if !a.AtRisk {
		t.Fatal("expected AT_RISK flag")
	}
	if a.ShortfallMinutes != 600 {
		t.Errorf("shortfall = %f, want 600", a.ShortfallMinutes)
	}
	if a.StartDate.IsZero() {
		t.Error("at-risk order must still be scheduled best effort")
	}
}

func TestGeneratePrefersLeastUtilizedLine(t *testing.T) {
	ds := plannerDataset(2,
		shirtOrder("o1", 480, friday, 1),
		shirtOrder("o2", 480, friday, 1),
	)
	svc := NewService(nil)

	sched, err := svc.Generate(context.Background(), ds, "balance", monday, friday, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(sched.Assignments) != 2 {
		t.Fatalf("got %d assignments, want 2", len(sched.Assignments))
	}
	if sched.Assignments[0].LineID == sched.Assignments[1].LineID {
		t.Errorf("both orders landed on %s; expected load balancing", sched.Assignments[0].LineID)
	}
}

func TestGenerateOrderPriority(t *testing.T) {
	// One line, one day of capacity: the earlier-due order must be placed first.
	ds := plannerDataset(1,
		shirtOrder("o-late", 480, friday, 9),
		shirtOrder("o-early", 480, monday, 1),
	)
	svc := NewService(nil)

	sched, err := svc.Generate(context.Background(), ds, "prio", monday, monday, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	byID := map[string]models.OrderAssignment{}
	for _, a := range sched.Assignments {
		byID[a.OrderID] = a
	}
	if byID["o-early"].AtRisk {
		t.Error("earlier-due order should have been satisfied")
	}
	if !byID["o-late"].AtRisk {
		t.Error("later order should carry the shortfall")
	}
}

func TestGenerateExcludesCancelled(t *testing.T) {
	cancelled := shirtOrder("o-cancelled", 100, friday, 1)
	cancelled.Status = models.OrderStatusCancelled
	ds := plannerDataset(1, cancelled, shirtOrder("o1", 100, friday, 1))
	svc := NewService(nil)

	sched, err := svc.Generate(context.Background(), ds, "filter", monday, friday, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(sched.Assignments) != 1 || sched.Assignments[0].OrderID != "o1" {
		t.Errorf("assignments = %+v, want only o1", sched.Assignments)
	}
}

func TestCommitFreezesKPIs(t *testing.T) {
	svc := NewService(nil)
	sched := &models.CapacitySchedule{ID: "s1"}

	got := svc.Commit(sched, models.KPICommitments{TargetOTDPct: 95, TargetEfficiencyPct: 80})
	if !got.Committed || got.Commitments == nil || got.CommittedAt == nil {
		t.Fatalf("commit did not freeze schedule: %+v", got)
	}
	if got.Commitments.TargetOTDPct != 95 {
		t.Errorf("target OTD = %f, want 95", got.Commitments.TargetOTDPct)
	}
}
