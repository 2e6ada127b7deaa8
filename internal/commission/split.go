package commission

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	maxRate = hundred
)

// Split divides amount into the platform fee and the seller earning.
// The fee is amount × rate / 100 rounded half away from zero; the earning is
// the remainder, so fee + earning always equals amount.
func Split(amount int64, ratePercent decimal.Decimal) (fee, earning int64) {
	rate := ClampRate(ratePercent)
	fee = decimal.NewFromInt(amount).Mul(rate).Div(hundred).Round(0).IntPart()
	return fee, amount - fee
}

// ClampRate bounds a percentage to [0, 100].
func ClampRate(ratePercent decimal.Decimal) decimal.Decimal {
	if ratePercent.IsNegative() {
		return decimal.Zero
	}
	if ratePercent.GreaterThan(maxRate) {
		return maxRate
	}
	return ratePercent
}
