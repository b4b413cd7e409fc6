package models

import "testing"

func TestOrderTransition(t *testing.T) {
	cases := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{"draft to confirmed", OrderStatusDraft, OrderStatusConfirmed, true},
		{"confirmed to scheduled", OrderStatusConfirmed, OrderStatusScheduled, true},
		{"scheduled to in progress", OrderStatusScheduled, OrderStatusInProgress, true},
		{"in progress to closed", OrderStatusInProgress, OrderStatusClosed, true},
		{"draft to closed skips confirmation", OrderStatusDraft, OrderStatusClosed, false},
		{"closed is terminal", OrderStatusClosed, OrderStatusDraft, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusConfirmed, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := Order{ID: "o-1", Status: tc.from}
			err := o.Transition(tc.to)
			if tc.ok && err != nil {
				t.Fatalf("Transition(%s -> %s): %v", tc.from, tc.to, err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("Transition(%s -> %s) should fail", tc.from, tc.to)
			}
			if tc.ok && o.Status != tc.to {
				t.Errorf("status = %s, want %s", o.Status, tc.to)
			}
		})
	}
}

func TestOrderPlannable(t *testing.T) {
	if (Order{Status: OrderStatusCancelled}).Plannable() {
		t.Error("cancelled orders must not be plannable")
	}
	if (Order{Status: OrderStatusClosed}).Plannable() {
		t.Error("closed orders must not be plannable")
	}
	if !(Order{Status: OrderStatusConfirmed}).Plannable() {
		t.Error("confirmed orders must be plannable")
	}
}
