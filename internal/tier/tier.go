package tier

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier (階梯) is one maintenance-margin bracket. NotionalLimit is the upper
// bound of position value the bracket covers, quote-currency denominated.
type Tier struct {
	NotionalLimit         decimal.Decimal // 倉位價值上限
	MaintenanceMarginRate decimal.Decimal // 維持保證金率
	Deduction             decimal.Decimal // 速算扣除額
}

// Table is an ordered sequence of brackets, ascending by NotionalLimit.
// The bracket for a notional is the first whose limit is >= the notional;
// a notional beyond every limit uses the last bracket.
type Table struct {
	tiers []Tier
}

// NewTable builds a table from brackets, validating their ordering.
func NewTable(tiers []Tier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("tier table must not be empty")
	}

	one := decimal.NewFromInt(1)
	for i, t := range tiers {
		if t.NotionalLimit.Sign() <= 0 {
			return nil, fmt.Errorf("tier %d: notional limit must be positive", i)
		}
		if t.MaintenanceMarginRate.Sign() < 0 || t.MaintenanceMarginRate.Cmp(one) >= 0 {
			return nil, fmt.Errorf("tier %d: maintenance margin rate must be in [0, 1)", i)
		}
		if t.Deduction.Sign() < 0 {
			return nil, fmt.Errorf("tier %d: deduction must not be negative", i)
		}
		if i > 0 && t.NotionalLimit.Cmp(tiers[i-1].NotionalLimit) <= 0 {
			return nil, fmt.Errorf("tier %d: notional limits must be strictly ascending", i)
		}
	}

	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return &Table{tiers: out}, nil
}

// Lookup returns the bracket applicable to the given notional. The caller
// must not pass a negative notional.
func (t *Table) Lookup(notional decimal.Decimal) Tier {
	for _, tr := range t.tiers {
		if tr.NotionalLimit.Cmp(notional) >= 0 {
			return tr
		}
	}
	// beyond the largest limit: the last bracket applies
	return t.tiers[len(t.tiers)-1]
}

// Tiers returns a copy of the brackets, for display and config dumps.
func (t *Table) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Len returns the number of brackets.
func (t *Table) Len() int {
	return len(t.tiers)
}

// DefaultTiers is the built-in USDT-perpetual bracket ladder. Deductions are
// chosen so the maintenance margin amount is continuous at every boundary:
// deduction[k] = deduction[k-1] + limit[k-1] * (rate[k] - rate[k-1]).
var DefaultTiers = []Tier{
	{decimal.NewFromInt(50_000), decimal.NewFromFloat(0.005), decimal.NewFromInt(0)},           // 0.5% for < 50k USDT
	{decimal.NewFromInt(250_000), decimal.NewFromFloat(0.01), decimal.NewFromInt(250)},         // 1.0% for 50k-250k
	{decimal.NewFromInt(1_000_000), decimal.NewFromFloat(0.025), decimal.NewFromInt(4_000)},    // 2.5% for 250k-1M
	{decimal.NewFromInt(5_000_000), decimal.NewFromFloat(0.05), decimal.NewFromInt(29_000)},    // 5.0% for 1M-5M
	{decimal.NewFromInt(10_000_000), decimal.NewFromFloat(0.1), decimal.NewFromInt(279_000)},   // 10% for 5M-10M
	{decimal.NewFromInt(20_000_000), decimal.NewFromFloat(0.125), decimal.NewFromInt(529_000)}, // 12.5% for 10M-20M
	{decimal.NewFromInt(50_000_000), decimal.NewFromFloat(0.15), decimal.NewFromInt(1_029_000)}, // 15% for 20M-50M
	{decimal.NewFromInt(100_000_000), decimal.NewFromFloat(0.25), decimal.NewFromInt(6_029_000)}, // 25% for > 50M
}

// Default returns the table built from DefaultTiers.
func Default() *Table {
	t, err := NewTable(DefaultTiers)
	if err != nil {
		panic(fmt.Sprintf("default tier table invalid: %v", err))
	}
	return t
}
