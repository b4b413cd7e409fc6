package models

import "sort"

// PlanningDataset is the request-scoped snapshot of everything the pipeline
// stages read. The surrounding application owns and persists these entities;
// the core consumes them for the duration of one computation.
type PlanningDataset struct {
	ClientID   string           `json:"client_id"`
	Orders     []Order          `json:"orders"`
	BOMHeaders []BOMHeader      `json:"bom_headers"`
	BOMDetails []BOMDetail      `json:"bom_details"`
	Stock      []StockSnapshot  `json:"stock"`
	Lines      []ProductionLine `json:"lines"`
	Operations []Operation      `json:"operations"`
	Calendar   ShiftCalendar    `json:"calendar"`
	Demands    []Demand         `json:"demands"`
	Breakdowns []Breakdown      `json:"breakdowns"`
}

// ActiveHeaderFor returns the active BOM header for a parent item, or nil.
// With several active versions the highest wins.
func (d *PlanningDataset) ActiveHeaderFor(parentItem string) *BOMHeader {
	var best *BOMHeader
	for i := range d.BOMHeaders {
		h := &d.BOMHeaders[i]
		if !h.Active || h.ParentItem != parentItem {
			continue
		}
		if best == nil || h.Version > best.Version {
			best = h
		}
	}
	return best
}

// DetailsFor returns the component lines of one header, in input order.
func (d *PlanningDataset) DetailsFor(headerID string) []BOMDetail {
	var out []BOMDetail
	for _, det := range d.BOMDetails {
		if det.HeaderID == headerID {
			out = append(out, det)
		}
	}
	return out
}

// OperationsFor returns a product's routing sorted by step.
func (d *PlanningDataset) OperationsFor(product string) []Operation {
	var ops []Operation
	for _, op := range d.Operations {
		if op.Product == product {
			ops = append(ops, op)
		}
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Step < ops[j].Step })
	return ops
}

// BreakdownPctFor returns the configured breakdown percentage for a machine
// class, or 0 when none is configured.
func (d *PlanningDataset) BreakdownPctFor(machineTool string) float64 {
	for _, b := range d.Breakdowns {
		if b.MachineTool == machineTool {
			return b.BreakdownPct
		}
	}
	return 0
}
