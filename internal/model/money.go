package model

import "github.com/shopspring/decimal"

// AmountPlaces is the number of decimal places amounts are rounded to.
const AmountPlaces = 2

// RoundAmount rounds half away from zero to two decimal places.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountPlaces)
}

// LineAmount returns price multiplied by quantity, rounded to two places.
func LineAmount(price decimal.Decimal, quantity int) decimal.Decimal {
	return RoundAmount(price.Mul(decimal.NewFromInt(int64(quantity))))
}
