package bom

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/plantops/capaplan/internal/domain/models"
)

func dataset(headers []models.BOMHeader, details []models.BOMDetail) *models.PlanningDataset {
	return &models.PlanningDataset{ClientID: "c1", BOMHeaders: headers, BOMDetails: details}
}

func header(id, parent string) models.BOMHeader {
	return models.BOMHeader{ID: id, ClientID: "c1", ParentItem: parent, Version: 1, Active: true}
}

func detail(headerID, component string, qty float64, scrapPct float64) models.BOMDetail {
	return models.BOMDetail{HeaderID: headerID, ComponentItem: component, QuantityPer: decimal.NewFromFloat(qty), ScrapPct: scrapPct}
}

func TestExplodeTwoLevels(t *testing.T) {
	// CHAIR = 4x LEG + 1x SEAT; SEAT = 2x PLANK (10% scrap).
	ds := dataset(
		[]models.BOMHeader{header("h-chair", "CHAIR"), header("h-seat", "SEAT")},
		[]models.BOMDetail{
			detail("h-chair", "LEG", 4, 0),
			detail("h-chair", "SEAT", 1, 0),
			detail("h-seat", "PLANK", 2, 10),
		},
	)

	svc := NewService(0, nil)
	got, err := svc.Explode(context.Background(), ds, "CHAIR", decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("Explode: %v", err)
	}

	want := map[string]string{
		"LEG":   "40",
		"PLANK": "22", // 10 * 1 * 2 * 1.1
	}
	if len(got) != len(want) {
		t.Fatalf("got %d components, want %d: %+v", len(got), len(want), got)
	}
	for _, cd := range got {
		if w, ok := want[cd.ItemCode]; !ok || !cd.Quantity.Equal(decimal.RequireFromString(w)) {
			t.Errorf("component %s = %s, want %s", cd.ItemCode, cd.Quantity, w)
		}
	}
}

func TestExplodeAccumulatesSharedComponents(t *testing.T) {
	// BOLT is used directly by the parent and inside the sub-assembly.
	ds := dataset(
		[]models.BOMHeader{header("h-a", "A"), header("h-sub", "SUB")},
		[]models.BOMDetail{
			detail("h-a", "BOLT", 2, 0),
			detail("h-a", "SUB", 1, 0),
			detail("h-sub", "BOLT", 3, 0),
		},
	)

	svc := NewService(0, nil)
	got, err := svc.Explode(context.Background(), ds, "A", decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("Explode: %v", err)
	}
	if len(got) != 1 || got[0].ItemCode != "BOLT" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if !got[0].Quantity.Equal(decimal.NewFromInt(5)) {
		t.Errorf("BOLT = %s, want 5", got[0].Quantity)
	}
}

func TestExplodeAdditivity(t *testing.T) {
	ds := dataset(
		[]models.BOMHeader{header("h-a", "A"), header("h-sub", "SUB")},
		[]models.BOMDetail{
			detail("h-a", "SUB", 2, 5),
			detail("h-sub", "PIN", 3, 2.5),
		},
	)
	svc := NewService(0, nil)

	atQ, err := svc.Explode(context.Background(), ds, "A", decimal.NewFromInt(7))
	if err != nil {
		t.Fatalf("Explode(Q): %v", err)
	}
	at2Q, err := svc.Explode(context.Background(), ds, "A", decimal.NewFromInt(14))
	if err != nil {
		t.Fatalf("Explode(2Q): %v", err)
	}

	for i := range atQ {
		doubled := atQ[i].Quantity.Mul(decimal.NewFromInt(2))
		if !at2Q[i].Quantity.Equal(doubled) {
			t.Errorf("%s: 2Q=%s, want %s", atQ[i].ItemCode, at2Q[i].Quantity, doubled)
		}
	}
}

func TestExplodeRejectsCycle(t *testing.T) {
	ds := dataset(
		[]models.BOMHeader{header("h-a", "A"), header("h-b", "B")},
		[]models.BOMDetail{
			detail("h-a", "B", 1, 0),
			detail("h-b", "A", 1, 0),
		},
	)

	svc := NewService(0, nil)
	_, err := svc.Explode(context.Background(), ds, "A", decimal.NewFromInt(1))

	var cycleErr *models.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if len(cycleErr.Path) != 3 || cycleErr.Path[0] != "A" || cycleErr.Path[2] != "A" {
		t.Errorf("unexpected cycle path: %v", cycleErr.Path)
	}
}

func TestExplodeDepthBound(t *testing.T) {
	// L0 -> L1 -> L2 -> L3, with maxDepth 2 the walk must fail.
	ds := dataset(
		[]models.BOMHeader{header("h0", "L0"), header("h1", "L1"), header("h2", "L2")},
		[]models.BOMDetail{
			detail("h0", "L1", 1, 0),
			detail("h1", "L2", 1, 0),
			detail("h2", "L3", 1, 0),
		},
	)

	svc := NewService(2, nil)
	_, err := svc.Explode(context.Background(), ds, "L0", decimal.NewFromInt(1))
	if !errors.Is(err, models.ErrExplosionTooDeep) {
		t.Fatalf("expected ErrExplosionTooDeep, got %v", err)
	}
}

func TestExplodeUnknownParent(t *testing.T) {
	svc := NewService(0, nil)
	_, err := svc.Explode(context.Background(), dataset(nil, nil), "GHOST", decimal.NewFromInt(1))

	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
