package proposals

import (
	"github.com/shopspring/decimal"

	"github.com/luminastudio/lumina-backend/pkg/db/models"
)

// ComputeTotal derives a proposal's persisted total.
//
// With a manual total the result is manual minus discount. Otherwise it is the
// sum of quantity times unit price across every item, minus discount. Items
// with show_price=false still carry economic value and are included in the
// sum; only their per-item price display is suppressed elsewhere.
//
// The result may be negative when the discount exceeds the base amount. A
// negative total is storable on a draft but blocks the send transition.
func ComputeTotal(useManual bool, manualAmount, discount decimal.Decimal, items []models.ProposalItem) decimal.Decimal {
	if useManual {
		return manualAmount.Sub(discount)
	}
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal.Sub(discount)
}
