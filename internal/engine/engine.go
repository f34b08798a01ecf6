// Package engine propagates edits through the calculator's dependency
// graph. Every accepted edit re-derives position sizing, then the
// margin/leverage pair, then the liquidation price, in that order.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/DimchoMorkova/crypto-calculator-dimcho/common"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/field"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/formula"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/logger"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/tier"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrDerivedField = errors.New("field is derived, edit the inputs instead")
	ErrFieldLocked  = errors.New("field is locked")
)

// driver tags the edit that triggered propagation. Margin and leverage
// derive each other, the tag picks the direction for this pass.
type driver int

const (
	driverField    driver = iota // ordinary edit, margin drives leverage
	driverLeverage               // manual override, leverage drives margin
)

// Engine owns the field store and recomputes every derived field after
// each accepted edit.
type Engine struct {
	store *field.Store
	table *tier.Table
	log   *logger.Logger

	mu sync.Mutex
}

// New creates an engine with an empty store. A nil table falls back to
// the built-in maintenance margin brackets.
func New(table *tier.Table, log *logger.Logger) *Engine {
	if table == nil {
		table = tier.Default()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Engine{
		store: field.NewStore(),
		table: table,
		log:   log,
	}
}

// ==================== Edits ====================

// SetField records user text for an input field and propagates. Locked
// fields reject the edit, nothing changes.
func (e *Engine) SetField(name field.Name, raw string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := checkInput(name); err != nil {
		return err
	}
	if !e.store.SetRaw(name, raw) {
		e.log.Debug("edit rejected", "field", name, "reason", "locked")
		return fmt.Errorf("%s: %w", name, ErrFieldLocked)
	}

	e.propagate(driverField)
	e.log.Debug("field set", "field", name, "raw", raw)
	return nil
}

// SetLeverage applies a manual leverage override: margin is re-derived
// from notional instead of the other way round. Rejected while margin is
// locked.
func (e *Engine) SetLeverage(raw string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	lev, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("parse leverage %q: %w", raw, err)
	}
	if lev.Sign() <= 0 {
		return fmt.Errorf("leverage must be positive, got %s", lev)
	}
	if e.store.Locked(field.Margin) {
		e.log.Debug("leverage override rejected", "reason", "margin locked")
		return fmt.Errorf("%s: %w", field.Margin, ErrFieldLocked)
	}

	e.store.SetValue(field.Leverage, lev)
	e.propagate(driverLeverage)
	e.log.Debug("leverage override", "leverage", lev)
	return nil
}

// ToggleLock flips the lock on an input field and returns the new state.
func (e *Engine) ToggleLock(name field.Name) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := checkInput(name); err != nil {
		return false, err
	}

	on := e.store.ToggleLock(name)
	e.log.Debug("lock toggled", "field", name, "locked", on)
	return on, nil
}

// Reset restores the initial state, every field unset and unlocked.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Reset()
	e.log.Debug("state reset")
}

// Snapshot renders the current state for display.
func (e *Engine) Snapshot() field.Snapshot {
	return e.store.Snapshot()
}

// Value returns the full-precision numeric value of a field.
func (e *Engine) Value(name field.Name) decimal.NullDecimal {
	return e.store.Value(name)
}

// Locked reports whether an input field is locked.
func (e *Engine) Locked(name field.Name) bool {
	return e.store.Locked(name)
}

// Side classifies the position from entry and stop. False when either
// price is missing or the two are equal.
func (e *Engine) Side() (common.Side, bool) {
	entry, eOK := e.store.Number(field.EntryPrice)
	stop, sOK := e.store.Number(field.StopLoss)
	if !eOK || !sOK || entry.Equal(stop) {
		return 0, false
	}
	return formula.Classify(entry, stop), true
}

func checkInput(name field.Name) error {
	if field.IsInput(name) {
		return nil
	}
	switch name {
	case field.Size, field.Notional, field.Leverage, field.LiquidationPrice:
		return fmt.Errorf("%s: %w", name, ErrDerivedField)
	default:
		return fmt.Errorf("%s: %w", name, ErrUnknownField)
	}
}

// ==================== Propagation ====================

// propagate re-derives every downstream field. Level triggered: all three
// groups run on every pass, fields whose inputs are missing reset rather
// than keep stale values. Caller holds e.mu.
func (e *Engine) propagate(d driver) {
	e.deriveSizing()
	e.deriveLeverage(d)
	e.deriveLiquidation()
}

// deriveSizing: risk, entry, stop and fee fix the position size and its
// notional value. All four must be present and numeric, a missing fee
// blocks sizing the same as a missing price.
func (e *Engine) deriveSizing() {
	risk, rOK := e.store.Number(field.RiskUSD)
	entry, eOK := e.store.Number(field.EntryPrice)
	stop, sOK := e.store.Number(field.StopLoss)
	fee, fOK := e.store.Number(field.FeePercent)
	if !rOK || !eOK || !sOK || !fOK {
		e.store.Clear(field.Size)
		e.store.Clear(field.Notional)
		return
	}

	sizing, ok := formula.SizePosition(risk, entry, stop, formula.RateFromPercent(fee))
	if !ok {
		e.store.Clear(field.Size)
		e.store.Clear(field.Notional)
		return
	}

	e.store.SetValue(field.Size, sizing.Base)
	e.store.SetValue(field.Notional, sizing.Notional)
}

// deriveLeverage resolves the margin/leverage pair in the direction the
// edit dictates.
func (e *Engine) deriveLeverage(d driver) {
	notional, nOK := e.store.Number(field.Notional)

	if d == driverLeverage {
		lev, lOK := e.store.Number(field.Leverage)
		if !nOK || !lOK {
			return
		}
		margin, ok := formula.MarginFromLeverage(notional, lev)
		if !ok {
			return
		}
		e.store.SetValue(field.Margin, margin.Round(field.PricePrecision))
		return
	}

	margin, mOK := e.store.Number(field.Margin)
	if !nOK || !mOK {
		e.store.SetValue(field.Leverage, decimal.Zero)
		return
	}
	e.store.SetValue(field.Leverage, formula.LeverageFromMargin(margin, notional))
}

// deriveLiquidation prices the forced close from entry, margins and size.
// Size, notional, margin and leverage must all be positive, anything else
// clears the price and the safety verdict rather than leaving stale values.
func (e *Engine) deriveLiquidation() {
	entry, eOK := e.store.Number(field.EntryPrice)
	stop, sOK := e.store.Number(field.StopLoss)
	size, szOK := e.store.Number(field.Size)
	notional, nOK := e.store.Number(field.Notional)
	margin, mOK := e.store.Number(field.Margin)
	lev, lOK := e.store.Number(field.Leverage)

	defined := eOK && sOK && szOK && nOK && mOK && lOK &&
		size.Sign() > 0 && notional.Sign() > 0 && margin.Sign() > 0 && lev.Sign() > 0
	if !defined {
		e.clearLiquidation()
		return
	}

	side := formula.Classify(entry, stop)
	mm := formula.MaintenanceMargin(notional, e.table)
	liq, ok := formula.LiquidationPrice(entry, margin, mm, size, side)
	if !ok {
		e.clearLiquidation()
		return
	}

	e.store.SetValue(field.LiquidationPrice, liq)
	e.store.SetSafe(formula.StopBeforeLiquidation(liq, stop, side))
}

func (e *Engine) clearLiquidation() {
	e.store.Clear(field.LiquidationPrice)
	e.store.ClearSafe()
}
