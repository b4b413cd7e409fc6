package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSnapshot captures on-hand inventory for one item at a point in time.
type StockSnapshot struct {
	ClientID   string          `bson:"client_id" json:"client_id"`
	ItemCode   string          `bson:"item_code" json:"item_code"`
	OnHand     decimal.Decimal `bson:"on_hand" json:"on_hand"`
	Allocated  decimal.Decimal `bson:"allocated" json:"allocated"`
	AsOf       time.Time       `bson:"as_of" json:"as_of"`
}

// Available is on-hand minus quantity already allocated to open orders,
// floored at zero.
func (s StockSnapshot) Available() decimal.Decimal {
	avail := s.OnHand.Sub(s.Allocated)
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}
