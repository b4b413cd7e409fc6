package models

import (
	"fmt"
	"time"
)

// OrderStatus is owned by the surrounding application's workflow; the core
// only reads it to exclude orders that are no longer plannable.
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "DRAFT"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusScheduled  OrderStatus = "SCHEDULED"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusClosed     OrderStatus = "CLOSED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// orderTransitions is the data-driven status graph: allowed next states per
// current state. Per-client variations replace this table, never the
// validation logic.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:      {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusScheduled, OrderStatusCancelled},
	OrderStatusScheduled:  {OrderStatusInProgress, OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusClosed, OrderStatusCancelled},
	OrderStatusClosed:     {},
	OrderStatusCancelled:  {},
}

// CanTransition reports whether the graph allows moving from one status to
// another.
func CanTransition(graph map[OrderStatus][]OrderStatus, from, to OrderStatus) bool {
	if graph == nil {
		graph = orderTransitions
	}
	for _, next := range graph[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a demand commitment for a product.
type Order struct {
	ID       string      `bson:"id" json:"id"`
	ClientID string      `bson:"client_id" json:"client_id"`
	Product  string      `bson:"product" json:"product"`
	Quantity float64     `bson:"quantity" json:"quantity"`
	DueDate  time.Time   `bson:"due_date" json:"due_date"`
	Priority int         `bson:"priority" json:"priority"`
	Status   OrderStatus `bson:"status" json:"status"`
}

// Plannable reports whether scheduling may still touch this order.
func (o Order) Plannable() bool {
	return o.Status != OrderStatusCancelled && o.Status != OrderStatusClosed
}

// Transition validates and applies a status change against the default graph.
func (o *Order) Transition(to OrderStatus) error {
	if !CanTransition(nil, o.Status, to) {
		return fmt.Errorf("order %s: transition %s -> %s not allowed", o.ID, o.Status, to)
	}
	o.Status = to
	return nil
}
