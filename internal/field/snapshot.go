package field

import "github.com/shopspring/decimal"

// Snapshot is a point-in-time render of the store: input fields as the
// user typed them, derived fields formatted to display precision.
type Snapshot struct {
	RiskUSD    string `json:"risk_usd"`
	EntryPrice string `json:"entry_price"`
	StopLoss   string `json:"stop_loss"`
	FeePercent string `json:"fee_percent"`
	Margin     string `json:"margin"`

	Size             string `json:"size"`              // base units, 8 digits
	Notional         string `json:"notional"`          // USD, 2 digits
	Leverage         string `json:"leverage"`          // "9.4x"
	LiquidationPrice string `json:"liquidation_price"` // "" when undefined

	Safe   NullBool      `json:"-"`
	Locked map[Name]bool `json:"-"`
}

// Snapshot renders the current state. Unset sizing fields render as zero,
// an undefined liquidation price renders as the empty string.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	locked := make(map[Name]bool, len(s.locked))
	for name, on := range s.locked {
		if on {
			locked[name] = true
		}
	}

	return Snapshot{
		RiskUSD:    s.raw[RiskUSD],
		EntryPrice: s.raw[EntryPrice],
		StopLoss:   s.raw[StopLoss],
		FeePercent: s.raw[FeePercent],
		Margin:     s.raw[Margin],

		Size:             FormatSize(s.values[Size]),
		Notional:         FormatPrice(s.values[Notional]),
		Leverage:         FormatLeverage(s.values[Leverage]),
		LiquidationPrice: formatOptional(s.values[LiquidationPrice]),

		Safe:   s.safe,
		Locked: locked,
	}
}

// FormatSize renders a base-asset quantity, zero when unset.
func FormatSize(v decimal.NullDecimal) string {
	if !v.Valid {
		return decimal.Zero.StringFixed(SizePrecision)
	}
	return v.Decimal.StringFixed(SizePrecision)
}

// FormatPrice renders a USD amount, zero when unset.
func FormatPrice(v decimal.NullDecimal) string {
	if !v.Valid {
		return decimal.Zero.StringFixed(PricePrecision)
	}
	return v.Decimal.StringFixed(PricePrecision)
}

// FormatLeverage renders a leverage multiple with an "x" suffix.
func FormatLeverage(v decimal.NullDecimal) string {
	if !v.Valid {
		return decimal.Zero.StringFixed(LeveragePrecision) + "x"
	}
	return v.Decimal.StringFixed(LeveragePrecision) + "x"
}

func formatOptional(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(PricePrecision)
}
