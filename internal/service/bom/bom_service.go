package bom

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/plantops/capaplan/internal/domain/models"
)

// DefaultMaxDepth bounds explosion recursion for pathological inputs.
const DefaultMaxDepth = 20

// Service explodes multi-level bills of material into flat leaf-component
// demand.
type Service struct {
	maxDepth int
	logger   *zap.Logger
}

// NewService wires a new explosion service instance.
func NewService(maxDepth int, logger *zap.Logger) *Service {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{maxDepth: maxDepth, logger: logger}
}

// Explode expands the active BOM of parentItem for the given quantity.
// Quantities accumulate when the same leaf recurs via multiple paths; scrap
// inflates each level's requirement by (1 + scrap_pct/100). A component
// revisited within the current path fails with *models.CycleError; exceeding
// the depth bound fails with models.ErrExplosionTooDeep.
func (s *Service) Explode(ctx context.Context, ds *models.PlanningDataset, parentItem string, quantity decimal.Decimal) ([]models.ComponentDemand, error) {
	header := ds.ActiveHeaderFor(parentItem)
	if header == nil {
		return nil, &models.ValidationError{Issues: []models.ValidationIssue{{
			Field:   "parent_item_code",
			Message: fmt.Sprintf("no active BOM for item %q", parentItem),
		}}}
	}
	if quantity.IsNegative() {
		return nil, &models.ValidationError{Issues: []models.ValidationIssue{{
			Field:   "quantity",
			Message: "quantity must not be negative",
		}}}
	}

	demand := make(map[string]decimal.Decimal)
	path := []string{parentItem}
	onPath := map[string]bool{parentItem: true}

	if err := s.walk(ctx, ds, header, quantity, path, onPath, demand); err != nil {
		return nil, err
	}

	out := make([]models.ComponentDemand, 0, len(demand))
	for item, qty := range demand {
		out = append(out, models.ComponentDemand{ItemCode: item, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemCode < out[j].ItemCode })

	s.logger.Debug("bom exploded",
		zap.String("parent_item", parentItem),
		zap.String("quantity", quantity.String()),
		zap.Int("leaf_components", len(out)))
	return out, nil
}

func (s *Service) walk(ctx context.Context, ds *models.PlanningDataset, header *models.BOMHeader, parentQty decimal.Decimal, path []string, onPath map[string]bool, demand map[string]decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(path) > s.maxDepth {
		return models.ErrExplosionTooDeep
	}

	for _, det := range ds.DetailsFor(header.ID) {
		scrapFactor := decimal.NewFromFloat(1 + det.ScrapPct/100)
		required := parentQty.Mul(det.QuantityPer).Mul(scrapFactor)

		if onPath[det.ComponentItem] {
			cycle := append(append([]string{}, path...), det.ComponentItem)
			return &models.CycleError{Path: cycle}
		}

		childHeader := ds.ActiveHeaderFor(det.ComponentItem)
		if childHeader == nil {
			// Leaf component: accumulate, never overwrite.
			demand[det.ComponentItem] = demand[det.ComponentItem].Add(required)
			continue
		}

		onPath[det.ComponentItem] = true
		err := s.walk(ctx, ds, childHeader, required, append(path, det.ComponentItem), onPath, demand)
		delete(onPath, det.ComponentItem)
		if err != nil {
			return err
		}
	}
	return nil
}
