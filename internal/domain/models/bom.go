package models

import "github.com/shopspring/decimal"

// BOMHeader identifies one versioned bill of materials for a parent item.
type BOMHeader struct {
	ID         string `bson:"id" json:"id"`
	ClientID   string `bson:"client_id" json:"client_id"`
	ParentItem string `bson:"parent_item" json:"parent_item"`
	Version    int    `bson:"version" json:"version"`
	Active     bool   `bson:"active" json:"active"`
}

// BOMDetail is one component line of a header. Quantity is per one unit of
// the parent; ScrapPct inflates the requirement to cover expected loss.
type BOMDetail struct {
	HeaderID      string          `bson:"header_id" json:"header_id"`
	ComponentItem string          `bson:"component_item" json:"component_item"`
	QuantityPer   decimal.Decimal `bson:"quantity_per" json:"quantity_per"`
	ScrapPct      float64         `bson:"scrap_pct" json:"scrap_pct"`
}

// ComponentDemand is one row of a flattened explosion result.
type ComponentDemand struct {
	ItemCode string          `bson:"item_code" json:"item_code"`
	Quantity decimal.Decimal `bson:"quantity" json:"quantity"`
}
