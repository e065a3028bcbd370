// Package cashback holds the money math for converting order values into
// cashback and commission amounts. All persisted amounts are int64 paise;
// decimal is used for the intermediate rate arithmetic so rounding is
// half-up at 2 decimal places (whole paise), never float drift.
package cashback

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Compute returns the cashback in paise for an order.
// PERCENT: min(orderAmount * value / 100, cap). FLAT: min(value, cap).
// value is a percent for PERCENT stores and a rupee amount for FLAT stores.
// capPaise <= 0 means uncapped.
func Compute(orderPaise int64, cashbackType string, value float64, capPaise int64) int64 {
	var amount decimal.Decimal
	switch cashbackType {
	case "FLAT":
		amount = decimal.NewFromFloat(value).Mul(hundred)
	default: // PERCENT
		amount = decimal.NewFromInt(orderPaise).Mul(decimal.NewFromFloat(value)).Div(hundred)
	}
	paise := amount.Round(0).IntPart()
	if paise < 0 {
		paise = 0
	}
	if capPaise > 0 && paise > capPaise {
		paise = capPaise
	}
	return paise
}

// Commission returns the platform's own commission in paise for an order
// at the given percent rate.
func Commission(orderPaise int64, ratePercent float64) int64 {
	paise := decimal.NewFromInt(orderPaise).
		Mul(decimal.NewFromFloat(ratePercent)).
		Div(hundred).
		Round(0).
		IntPart()
	if paise < 0 {
		return 0
	}
	return paise
}

// RupeesToPaise converts a rupee amount reported by an affiliate network
// into paise, rounding half-up.
func RupeesToPaise(rupees float64) int64 {
	return decimal.NewFromFloat(rupees).Mul(hundred).Round(0).IntPart()
}
