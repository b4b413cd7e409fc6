package planner

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plantops/capaplan/internal/domain/models"
	"github.com/plantops/capaplan/internal/service/capacity"
)

// Service assigns orders to lines and calendar days with a greedy heuristic.
type Service struct {
	logger *zap.Logger
}

// NewService wires a new schedule generator.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// lineState tracks the free minutes left on one line across the horizon.
type lineState struct {
	line     models.ProductionLine
	free     []float64 // per horizon day
	consumed float64
}

// Generate walks eligible orders in (due date asc, priority desc) order and
// absorbs each one's required minutes into the least-utilized compatible
// line, day by day from the earliest feasible start. Orders that cannot
// finish by their due date are flagged AT_RISK but still scheduled; nothing
// is silently dropped.
func (s *Service) Generate(ctx context.Context, ds *models.PlanningDataset, name string, start, end time.Time, orderIDs []string) (*models.CapacitySchedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, &models.ValidationError{Issues: []models.ValidationIssue{{
			Field: "end_date", Message: "end date precedes start date",
		}}}
	}
	if len(ds.Lines) == 0 {
		return nil, &models.ValidationError{Issues: []models.ValidationIssue{{
			Field: "lines", Message: "at least one production line is required",
		}}}
	}

	days := horizonDays(start, end)
	states := make([]*lineState, len(ds.Lines))
	for i, line := range ds.Lines {
		free := make([]float64, len(days))
		for d, day := range days {
			free[d] = capacity.AvailableMinutes(ds, line, day)
		}
		states[i] = &lineState{line: line, free: free}
	}

	orders := eligibleOrders(ds.Orders, orderIDs)
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].DueDate.Equal(orders[j].DueDate) {
			return orders[i].DueDate.Before(orders[j].DueDate)
		}
		if orders[i].Priority != orders[j].Priority {
			return orders[i].Priority > orders[j].Priority
		}
		return orders[i].ID < orders[j].ID
	})

	schedule := &models.CapacitySchedule{
		ID:        uuid.New().String(),
		ClientID:  ds.ClientID,
		Name:      name,
		Horizon:   models.DateRange{Start: startOfDay(start), End: startOfDay(end)},
		CreatedAt: time.Now().UTC(),
	}

	for _, ord := range orders {
		ops := ds.OperationsFor(ord.Product)
		if len(ops) == 0 {
			s.logger.Warn("order has no routing, left unscheduled",
				zap.String("order_id", ord.ID), zap.String("product", ord.Product))
			continue
		}
		requiredMin := capacity.RequiredMinutes(ops, ord.Quantity)
		state := pickLeastUtilized(states, routingTools(ops))
		if state == nil {
			schedule.Assignments = append(schedule.Assignments, models.OrderAssignment{
				OrderID:          ord.ID,
				RequiredMinutes:  requiredMin,
				AtRisk:           true,
				MissesDueDate:    true,
				ShortfallMinutes: requiredMin,
			})
			continue
		}

		assignment := absorb(state, days, ord, requiredMin)
		schedule.Assignments = append(schedule.Assignments, assignment)
	}

	s.logger.Info("schedule generated",
		zap.String("schedule_id", schedule.ID),
		zap.String("client_id", ds.ClientID),
		zap.Int("assignments", len(schedule.Assignments)),
		zap.Int("at_risk", countAtRisk(schedule.Assignments)))
	return schedule, nil
}

// absorb consumes the line's free minutes day by day until the order's
// required minutes are placed or the horizon runs out.
func absorb(state *lineState, days []time.Time, ord models.Order, requiredMin float64) models.OrderAssignment {
	assignment := models.OrderAssignment{
		OrderID:         ord.ID,
		LineID:          state.line.ID,
		RequiredMinutes: requiredMin,
	}

	remaining := requiredMin
	firstDay, lastDay := -1, -1
	for d := range days {
		if remaining <= 0 {
			break
		}
		if state.free[d] <= 0 {
			continue
		}
		take := state.free[d]
		if take > remaining {
			take = remaining
		}
		state.free[d] -= take
		state.consumed += take
		remaining -= take
		if firstDay < 0 {
			firstDay = d
		}
		lastDay = d
	}

	if firstDay >= 0 {
		assignment.StartDate = days[firstDay]
		assignment.EndDate = days[lastDay]
		assignment.ProjectedDone = days[lastDay]
		assignment.MissesDueDate = days[lastDay].After(ord.DueDate)
	}
	if remaining > 0 {
		// Horizon exhausted: best-effort placement, flagged with the
		// unplaced minutes.
		assignment.AtRisk = true
		assignment.MissesDueDate = true
		assignment.ShortfallMinutes = remaining
	} else if assignment.MissesDueDate {
		assignment.AtRisk = true
	}
	return assignment
}

// Commit freezes the schedule's KPI commitments. This is a pure data-carry
// operation: nothing is recomputed.
func (s *Service) Commit(schedule *models.CapacitySchedule, kpis models.KPICommitments) *models.CapacitySchedule {
	now := time.Now().UTC()
	schedule.Committed = true
	schedule.Commitments = &kpis
	schedule.CommittedAt = &now
	s.logger.Info("schedule committed",
		zap.String("schedule_id", schedule.ID),
		zap.Float64("target_otd_pct", kpis.TargetOTDPct),
		zap.Float64("target_efficiency_pct", kpis.TargetEfficiencyPct))
	return schedule
}

func eligibleOrders(orders []models.Order, orderIDs []string) []models.Order {
	wanted := make(map[string]bool, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = true
	}
	var out []models.Order
	for _, ord := range orders {
		if !ord.Plannable() {
			continue
		}
		if len(orderIDs) > 0 && !wanted[ord.ID] {
			continue
		}
		out = append(out, ord)
	}
	return out
}

func routingTools(ops []models.Operation) []string {
	seen := map[string]bool{}
	var out []string
	for _, op := range ops {
		if !seen[op.MachineTool] {
			seen[op.MachineTool] = true
			out = append(out, op.MachineTool)
		}
	}
	return out
}

func pickLeastUtilized(states []*lineState, tools []string) *lineState {
	var best *lineState
	for _, st := range states {
		if !st.line.SupportsAll(tools) {
			continue
		}
		if best == nil || st.consumed < best.consumed {
			best = st
		}
	}
	return best
}

func countAtRisk(assignments []models.OrderAssignment) int {
	n := 0
	for _, a := range assignments {
		if a.AtRisk {
			n++
		}
	}
	return n
}

func horizonDays(start, end time.Time) []time.Time {
	var days []time.Time
	for day := startOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
