package razorpay

import "github.com/shopspring/decimal"

var paisePerRupee = decimal.NewFromInt(100)

// MinorUnits converts a rupee amount to paise, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(paisePerRupee).Round(0).IntPart()
}
