package capacity

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/plantops/capaplan/internal/domain/models"
)

// DefaultWarnThreshold marks a line/day as a bottleneck before it is
// actually over capacity.
const DefaultWarnThreshold = 0.9

// LineDay is one cell of the utilization table.
type LineDay struct {
	LineID           string    `json:"line_id"`
	Date             time.Time `json:"date"`
	AvailableMinutes float64   `json:"available_minutes"`
	RequiredMinutes  float64   `json:"required_minutes"`
	Utilization      float64   `json:"utilization"`
	Bottleneck       bool      `json:"bottleneck"`
}

// Bottleneck is one over- or near-capacity line/day, ranked by utilization.
type Bottleneck struct {
	LineID      string    `json:"line_id"`
	Date        time.Time `json:"date"`
	Utilization float64   `json:"utilization"`
	OverCap     bool      `json:"over_capacity"`
}

// Analysis is the analyzer's full output.
type Analysis struct {
	ByLineDay   []LineDay    `json:"by_line_day"`
	Bottlenecks []Bottleneck `json:"bottlenecks"`
}

// Service converts order quantities and routing standards into required
// line-minutes and compares them against the calendar.
type Service struct {
	warnThreshold float64
	logger        *zap.Logger
}

// NewService wires a new capacity analyzer.
func NewService(warnThreshold float64, logger *zap.Logger) *Service {
	if warnThreshold <= 0 {
		warnThreshold = DefaultWarnThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{warnThreshold: warnThreshold, logger: logger}
}

// RequiredMinutes is the labor standard for one order: parallel operators
// reduce wall-clock duration, not total work content.
func RequiredMinutes(ops []models.Operation, quantity float64) float64 {
	var total float64
	for _, op := range ops {
		operators := op.OperatorsRequired
		if operators < 1 {
			operators = 1
		}
		total += op.SAMMinutes * quantity / float64(operators)
	}
	return total
}

// AvailableMinutes derates one day's calendar minutes by the breakdown
// percentage of every machine class the line carries.
func AvailableMinutes(ds *models.PlanningDataset, line models.ProductionLine, day time.Time) float64 {
	minutes := ds.Calendar.MinutesForDay(int(day.Weekday()))
	if minutes <= 0 {
		return 0
	}
	seen := map[string]bool{}
	for _, st := range line.Stations {
		for _, mt := range st.MachineTools {
			if seen[mt] {
				continue
			}
			seen[mt] = true
			minutes *= 1 - ds.BreakdownPctFor(mt)/100
		}
	}
	if minutes < 0 {
		return 0
	}
	return minutes
}

// Analyze builds the per-line/day utilization table for the date range and
// returns it with bottlenecks ranked highest-utilization first. Orders are
// assigned to the least-loaded compatible line and their required minutes
// spread evenly over the range's working days.
func (s *Service) Analyze(ctx context.Context, ds *models.PlanningDataset, start, end time.Time, lineIDs []string) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, &models.ValidationError{Issues: []models.ValidationIssue{{
			Field: "end_date", Message: "end date precedes start date",
		}}}
	}

	lines := selectLines(ds.Lines, lineIDs)
	if len(lines) == 0 {
		return nil, &models.ValidationError{Issues: []models.ValidationIssue{{
			Field: "line_ids", Message: "no matching production lines",
		}}}
	}

	days := daysIn(start, end)

	// Per-line availability grid and working-day counts.
	avail := make(map[string][]float64, len(lines))
	workDays := make(map[string]int, len(lines))
	for _, line := range lines {
		grid := make([]float64, len(days))
		for i, day := range days {
			grid[i] = AvailableMinutes(ds, line, day)
			if grid[i] > 0 {
				workDays[line.ID]++
			}
		}
		avail[line.ID] = grid
	}

	// Greedy order-to-line assignment: least total assigned minutes wins
	// among routing-compatible lines. Deterministic order first.
	orders := plannableOrders(ds.Orders)
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].DueDate.Equal(orders[j].DueDate) {
			return orders[i].DueDate.Before(orders[j].DueDate)
		}
		if orders[i].Priority != orders[j].Priority {
			return orders[i].Priority > orders[j].Priority
		}
		return orders[i].ID < orders[j].ID
	})

	assigned := make(map[string]float64, len(lines))
	required := make(map[string][]float64, len(lines))
	for _, line := range lines {
		required[line.ID] = make([]float64, len(days))
	}

	for _, ord := range orders {
		ops := ds.OperationsFor(ord.Product)
		if len(ops) == 0 {
			s.logger.Warn("order has no routing, excluded from analysis",
				zap.String("order_id", ord.ID), zap.String("product", ord.Product))
			continue
		}
		lineID := pickLine(lines, assigned, machineTools(ops))
		if lineID == "" {
			s.logger.Warn("no compatible line for order",
				zap.String("order_id", ord.ID), zap.String("product", ord.Product))
			continue
		}
		minutes := RequiredMinutes(ops, ord.Quantity)
		assigned[lineID] += minutes
		spreadOverWorkDays(required[lineID], avail[lineID], minutes, workDays[lineID])
	}

	analysis := &Analysis{}
	for _, line := range lines {
		for i, day := range days {
			a, r := avail[line.ID][i], required[line.ID][i]
			var util float64
			if a > 0 {
				util = r / a
			}
			cell := LineDay{
				LineID:           line.ID,
				Date:             day,
				AvailableMinutes: a,
				RequiredMinutes:  r,
				Utilization:      util,
				Bottleneck:       util > s.warnThreshold,
			}
			analysis.ByLineDay = append(analysis.ByLineDay, cell)
			if cell.Bottleneck {
				analysis.Bottlenecks = append(analysis.Bottlenecks, Bottleneck{
					LineID:      line.ID,
					Date:        day,
					Utilization: util,
					OverCap:     util > 1.0,
				})
			}
		}
	}
	sort.SliceStable(analysis.Bottlenecks, func(i, j int) bool {
		return analysis.Bottlenecks[i].Utilization > analysis.Bottlenecks[j].Utilization
	})

	s.logger.Info("capacity analyzed",
		zap.String("client_id", ds.ClientID),
		zap.Int("lines", len(lines)),
		zap.Int("days", len(days)),
		zap.Int("bottlenecks", len(analysis.Bottlenecks)))
	return analysis, nil
}

func daysIn(start, end time.Time) []time.Time {
	var days []time.Time
	for day := startOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func selectLines(lines []models.ProductionLine, lineIDs []string) []models.ProductionLine {
	if len(lineIDs) == 0 {
		return lines
	}
	wanted := make(map[string]bool, len(lineIDs))
	for _, id := range lineIDs {
		wanted[id] = true
	}
	var out []models.ProductionLine
	for _, line := range lines {
		if wanted[line.ID] {
			out = append(out, line)
		}
	}
	return out
}

func plannableOrders(orders []models.Order) []models.Order {
	var out []models.Order
	for _, ord := range orders {
		if ord.Plannable() {
			out = append(out, ord)
		}
	}
	return out
}

func machineTools(ops []models.Operation) []string {
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

func pickLine(lines []models.ProductionLine, assigned map[string]float64, tools []string) string {
	best := ""
	for _, line := range lines {
		if !line.SupportsAll(tools) {
			continue
		}
		if best == "" || assigned[line.ID] < assigned[best] {
			best = line.ID
		}
	}
	return best
}

func spreadOverWorkDays(required, avail []float64, minutes float64, workDays int) {
	if workDays == 0 {
		// Nowhere to put the work; pile it on the first day so the overload
		// stays visible.
		if len(required) > 0 {
			required[0] += minutes
		}
		return
	}
	perDay := minutes / float64(workDays)
	for i := range required {
		if avail[i] > 0 {
			required[i] += perDay
		}
	}
}
