package shortage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/plantops/capaplan/internal/domain/models"
	"github.com/plantops/capaplan/internal/service/bom"
)

// OrderCoverage annotates one order of a check batch.
type OrderCoverage struct {
	OrderID      string                   `json:"order_id"`
	FullyCovered bool                     `json:"fully_covered"`
	Shortfalls   []models.ComponentDemand `json:"shortfalls,omitempty"`
	Blocked      string                   `json:"blocked,omitempty"`
}

// Result is the outcome of netting a batch of orders against stock.
type Result struct {
	Shortages     []models.ComponentDemand `json:"shortages"`
	CoveredOrders []string                 `json:"covered_orders"`
	AtRiskOrders  []string                 `json:"at_risk_orders"`
	Coverage      []OrderCoverage          `json:"coverage"`
}

// Service nets exploded component demand against available stock.
type Service struct {
	bomSvc *bom.Service
	logger *zap.Logger
}

// NewService wires a new shortage resolver.
func NewService(bomSvc *bom.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{bomSvc: bomSvc, logger: logger}
}

// CheckComponents explodes every selected order, aggregates demand per
// component across the batch, and allocates available stock in ascending
// (due date, priority, order ID) order. Orders whose BOM cannot be exploded
// are annotated, never abort the batch.
func (s *Service) CheckComponents(ctx context.Context, ds *models.PlanningDataset, orderIDs []string) (*Result, error) {
	orders := selectOrders(ds.Orders, orderIDs)
	if len(orderIDs) > 0 && len(orders) != len(orderIDs) {
		return nil, &models.ValidationError{Issues: []models.ValidationIssue{{
			Field:   "order_ids",
			Message: "one or more order IDs are unknown or not plannable",
		}}}
	}

	// Highest-priority, earliest-due orders are satisfied first; ties break
	// on order ID so allocation is deterministic.
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].DueDate.Equal(orders[j].DueDate) {
			return orders[i].DueDate.Before(orders[j].DueDate)
		}
		if orders[i].Priority != orders[j].Priority {
			return orders[i].Priority > orders[j].Priority
		}
		return orders[i].ID < orders[j].ID
	})

	type explodedOrder struct {
		order      models.Order
		components []models.ComponentDemand
		blocked    string
	}

	exploded := make([]explodedOrder, 0, len(orders))
	total := make(map[string]decimal.Decimal)
	for _, ord := range orders {
		comps, err := s.bomSvc.Explode(ctx, ds, ord.Product, decimal.NewFromFloat(ord.Quantity))
		if err != nil {
			var vErr *models.ValidationError
			var cErr *models.CycleError
			if errors.As(err, &vErr) || errors.As(err, &cErr) || errors.Is(err, models.ErrExplosionTooDeep) {
				s.logger.Warn("order excluded from netting",
					zap.String("order_id", ord.ID), zap.Error(err))
				exploded = append(exploded, explodedOrder{order: ord, blocked: err.Error()})
				continue
			}
			return nil, fmt.Errorf("explode order %s: %w", ord.ID, err)
		}
		exploded = append(exploded, explodedOrder{order: ord, components: comps})
		for _, cd := range comps {
			total[cd.ItemCode] = total[cd.ItemCode].Add(cd.Quantity)
		}
	}

	available := make(map[string]decimal.Decimal)
	for _, snap := range ds.Stock {
		available[snap.ItemCode] = available[snap.ItemCode].Add(snap.Available())
	}

	res := &Result{}

	// Component-level shortage over the whole batch: shared components are
	// not double-shortaged.
	items := make([]string, 0, len(total))
	for item := range total {
		items = append(items, item)
	}
	sort.Strings(items)
	for _, item := range items {
		short := total[item].Sub(available[item])
		if short.IsPositive() {
			res.Shortages = append(res.Shortages, models.ComponentDemand{ItemCode: item, Quantity: short})
		}
	}

	// Per-order allocation against a draining copy of availability.
	remaining := make(map[string]decimal.Decimal, len(available))
	for item, qty := range available {
		remaining[item] = qty
	}
	for _, eo := range exploded {
		cov := OrderCoverage{OrderID: eo.order.ID, FullyCovered: true, Blocked: eo.blocked}
		if eo.blocked != "" {
			cov.FullyCovered = false
		}
		for _, cd := range eo.components {
			have := remaining[cd.ItemCode]
			if have.GreaterThanOrEqual(cd.Quantity) {
				remaining[cd.ItemCode] = have.Sub(cd.Quantity)
				continue
			}
			remaining[cd.ItemCode] = decimal.Zero
			cov.FullyCovered = false
			cov.Shortfalls = append(cov.Shortfalls, models.ComponentDemand{
				ItemCode: cd.ItemCode,
				Quantity: cd.Quantity.Sub(have),
			})
		}
		res.Coverage = append(res.Coverage, cov)
		if cov.FullyCovered {
			res.CoveredOrders = append(res.CoveredOrders, eo.order.ID)
		} else {
			res.AtRiskOrders = append(res.AtRiskOrders, eo.order.ID)
		}
	}

	s.logger.Info("component check completed",
		zap.String("client_id", ds.ClientID),
		zap.Int("orders", len(orders)),
		zap.Int("shortage_items", len(res.Shortages)),
		zap.Int("at_risk_orders", len(res.AtRiskOrders)))
	return res, nil
}

func selectOrders(orders []models.Order, orderIDs []string) []models.Order {
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
