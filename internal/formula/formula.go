// Package formula holds the pure position-sizing and liquidation math.
// Everything here is a total calculation over decimals; validity of inputs
// (presence, sign) is the caller's concern.
package formula

import (
	"github.com/shopspring/decimal"

	"github.com/DimchoMorkova/crypto-calculator-dimcho/common"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/tier"
)

var hundred = decimal.NewFromInt(100)

// Sizing (倉位大小) is a position size in base and quote units.
type Sizing struct {
	Base     decimal.Decimal // base-asset quantity
	Notional decimal.Decimal // quote-currency value = Base * entry
}

// SizePosition converts a risk budget into a position size.
//
// Sizing Formula:
//
//	riskPerUnit = |entry - stop|
//	base        = riskUSD / (riskPerUnit + entry * feeRate)
//
// The denominator folds the taker fee paid on the stop exit into the budget:
// losing riskPerUnit per unit AND paying entry*feeRate per unit must together
// stay inside riskUSD. Sizing by riskUSD/riskPerUnit alone would overshoot
// the budget by the fee.
//
// Returns false when entry equals stop (no per-unit risk to divide by) or
// entry is zero. A negative feeRate large enough to cancel the per-unit
// cost also fails instead of dividing by zero or flipping the sign. A
// negative riskUSD is passed through and yields a negative size; guarding
// it is the caller's decision.
func SizePosition(riskUSD, entry, stop, feeRate decimal.Decimal) (Sizing, bool) {
	riskPerUnit := entry.Sub(stop).Abs()
	if riskPerUnit.IsZero() || entry.IsZero() {
		return Sizing{}, false
	}

	costPerUnit := riskPerUnit.Add(entry.Mul(feeRate))
	if costPerUnit.Sign() <= 0 {
		return Sizing{}, false
	}
	base := riskUSD.Div(costPerUnit)

	return Sizing{
		Base:     base,
		Notional: base.Mul(entry),
	}, true
}

// LeverageFromMargin derives leverage from allocated margin and notional.
// Returns zero on zero margin, never an infinity.
func LeverageFromMargin(margin, notional decimal.Decimal) decimal.Decimal {
	if margin.IsZero() {
		return decimal.Zero
	}
	return notional.Div(margin)
}

// MarginFromLeverage is the reverse direction, used only by the manual
// leverage override. Returns false on zero leverage.
func MarginFromLeverage(notional, leverage decimal.Decimal) (decimal.Decimal, bool) {
	if leverage.IsZero() {
		return decimal.Zero, false
	}
	return notional.Div(leverage), true
}

// RateFromPercent converts a percent figure (0.06) to a rate (0.0006).
func RateFromPercent(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(hundred)
}

// Classify infers the position side from where the stop sits relative to
// entry: a stop below entry means a long, anything else a short. The side is
// never declared explicitly by the user.
func Classify(entry, stop decimal.Decimal) common.Side {
	if stop.Cmp(entry) < 0 {
		return common.LONG
	}
	return common.SHORT
}

// MaintenanceMargin (維持保證金) resolves the bracket for the notional and
// returns max(0, notional*rate - deduction).
func MaintenanceMargin(notional decimal.Decimal, table *tier.Table) decimal.Decimal {
	t := table.Lookup(notional)
	amount := notional.Mul(t.MaintenanceMarginRate).Sub(t.Deduction)
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// LiquidationPrice (強平價格) estimates the price at which the position is
// force-closed.
//
// Liquidation Price Formula:
//
//	(LONG) :  liq = entry - (initialMargin - maintenanceMargin) / size
//	(SHORT):  liq = entry + (initialMargin - maintenanceMargin) / size
//
// The margin buffer above maintenance, spread over the position size, is the
// price distance the position can move against you before the exchange takes
// over.
//
// Returns false when size is zero.
func LiquidationPrice(entry, initialMargin, maintenanceMargin, size decimal.Decimal, side common.Side) (decimal.Decimal, bool) {
	if size.IsZero() {
		return decimal.Zero, false
	}

	marginBuffer := initialMargin.Sub(maintenanceMargin)
	priceBuffer := marginBuffer.Div(size)

	if side.IsLong() {
		return entry.Sub(priceBuffer), true
	}
	return entry.Add(priceBuffer), true
}

// StopBeforeLiquidation reports whether the stop-loss would trigger before
// forced liquidation: for a long the liquidation price must sit below the
// stop, for a short above it.
func StopBeforeLiquidation(liquidation, stop decimal.Decimal, side common.Side) bool {
	if side.IsLong() {
		return liquidation.Cmp(stop) < 0
	}
	return liquidation.Cmp(stop) > 0
}
