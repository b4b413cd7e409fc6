package shortage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/plantops/capaplan/internal/domain/models"
	"github.com/plantops/capaplan/internal/service/bom"
)

func testDataset(stockQty float64, orders ...models.Order) *models.PlanningDataset {
	return &models.PlanningDataset{
		ClientID: "c1",
		Orders:   orders,
		BOMHeaders: []models.BOMHeader{
			{ID: "h-widget", ClientID: "c1", ParentItem: "WIDGET", Version: 1, Active: true},
		},
		BOMDetails: []models.BOMDetail{
			{HeaderID: "h-widget", ComponentItem: "PART", QuantityPer: decimal.NewFromInt(2)},
		},
		Stock: []models.StockSnapshot{
			{ClientID: "c1", ItemCode: "PART", OnHand: decimal.NewFromFloat(stockQty), AsOf: time.Now()},
		},
	}
}

func order(id string, qty float64, due time.Time, priority int) models.Order {
	return models.Order{ID: id, ClientID: "c1", Product: "WIDGET", Quantity: qty, DueDate: due, Priority: priority, Status: models.OrderStatusConfirmed}
}

func newService() *Service {
	return NewService(bom.NewService(0, nil), nil)
}

func TestCheckComponentsNoShortage(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	ds := testDataset(100, order("o1", 10, due, 1))

	res, err := newService().CheckComponents(context.Background(), ds, nil)
	if err != nil {
		t.Fatalf("CheckComponents: %v", err)
	}
	if len(res.Shortages) != 0 {
		t.Errorf("unexpected shortages: %+v", res.Shortages)
	}
	if len(res.CoveredOrders) != 1 || res.CoveredOrders[0] != "o1" {
		t.Errorf("covered orders = %v, want [o1]", res.CoveredOrders)
	}
}

func TestCheckComponentsAllocatesByDueAndPriority(t *testing.T) {
	// 30 PARTs available; each order needs 20. The earlier-due order wins.
	early := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	ds := testDataset(30, order("o-late", 10, late, 5), order("o-early", 10, early, 1))

	res, err := newService().CheckComponents(context.Background(), ds, nil)
	if err != nil {
		t.Fatalf("CheckComponents: %v", err)
	}

	if len(res.CoveredOrders) != 1 || res.CoveredOrders[0] != "o-early" {
		t.Errorf("covered = %v, want [o-early]", res.CoveredOrders)
	}
	if len(res.AtRiskOrders) != 1 || res.AtRiskOrders[0] != "o-late" {
		t.Errorf("at risk = %v, want [o-late]", res.AtRiskOrders)
	}
	// Batch shortage is computed once: 40 required - 30 available = 10.
	if len(res.Shortages) != 1 || !res.Shortages[0].Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("shortages = %+v, want PART short 10", res.Shortages)
	}
	// The losing order's shortfall is its own uncovered remainder.
	for _, cov := range res.Coverage {
		if cov.OrderID == "o-late" {
			if len(cov.Shortfalls) != 1 || !cov.Shortfalls[0].Quantity.Equal(decimal.NewFromInt(10)) {
				t.Errorf("o-late shortfalls = %+v", cov.Shortfalls)
			}
		}
	}
}

func TestCheckComponentsMonotonicity(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	shortageAt := func(stock float64) decimal.Decimal {
		ds := testDataset(stock, order("o1", 50, due, 1))
		res, err := newService().CheckComponents(context.Background(), ds, nil)
		if err != nil {
			t.Fatalf("CheckComponents: %v", err)
		}
		if len(res.Shortages) == 0 {
			return decimal.Zero
		}
		return res.Shortages[0].Quantity
	}

	prev := shortageAt(0)
	for _, stock := range []float64{10, 50, 99, 100, 150} {
		cur := shortageAt(stock)
		if cur.GreaterThan(prev) {
			t.Errorf("shortage grew from %s to %s when stock increased to %.0f", prev, cur, stock)
		}
		prev = cur
	}
}

func TestCheckComponentsSkipsCancelledOrders(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	cancelled := order("o-cancelled", 1000, due, 1)
	cancelled.Status = models.OrderStatusCancelled
	ds := testDataset(100, cancelled, order("o1", 10, due, 1))

	res, err := newService().CheckComponents(context.Background(), ds, nil)
	if err != nil {
		t.Fatalf("CheckComponents: %v", err)
	}
	if len(res.Coverage) != 1 || res.Coverage[0].OrderID != "o1" {
		t.Errorf("coverage = %+v, want only o1", res.Coverage)
	}
}

func TestCheckComponentsUnknownOrderID(t *testing.T) {
	ds := testDataset(100)
	if _, err := newService().CheckComponents(context.Background(), ds, []string{"nope"}); err == nil {
		t.Fatal("expected error for unknown order ID")
	}
}
