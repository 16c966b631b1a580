// Package types provides monetary value types.
//
// Prices are stored as MinorUnits (integer cents) in the database; commission
// amounts and sums use Money (arbitrary-precision decimal) to keep the math
// exact.
package types

import (
	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount in major currency units.
type Money = decimal.Decimal

// MinorUnits is an amount in the smallest currency unit (e.g. cents).
type MinorUnits int64

// NewMoney creates Money from a float. Prefer NewMoneyFromString for
// user-supplied values.
func NewMoney(value float64) Money {
	return decimal.NewFromFloat(value)
}

// NewMoneyFromString parses Money from its decimal string form.
func NewMoneyFromString(value string) (Money, error) {
	return decimal.NewFromString(value)
}

// ZeroMoney returns the zero amount.
func ZeroMoney() Money {
	return decimal.Zero
}

// ToMoney converts minor units to an exact decimal major-unit amount.
func (m MinorUnits) ToMoney() Money {
	return decimal.New(int64(m), -2)
}

// FromMoney converts a major-unit amount to minor units, rounding half up.
func FromMoney(amount Money) MinorUnits {
	return MinorUnits(amount.Shift(2).Round(0).IntPart())
}
