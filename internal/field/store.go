// Package field holds the calculator's authoritative state: every named
// input and derived value, each either set to a decimal or unset, plus the
// set of fields locked against edits.
package field

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Name identifies a calculator field.
type Name string

// Input fields: raw user text, parsed on use, lockable.
const (
	RiskUSD    Name = "risk_usd"
	EntryPrice Name = "entry_price"
	StopLoss   Name = "stop_loss"
	FeePercent Name = "fee_percent"
	Margin     Name = "margin"
)

// Derived fields: written by propagation only.
const (
	Size             Name = "size"
	Notional         Name = "notional"
	Leverage         Name = "leverage"
	LiquidationPrice Name = "liquidation_price"
)

// Display precision, quote prices 2 digits and base sizes 8 digits.
const (
	PricePrecision    int32 = 2
	SizePrecision     int32 = 8
	LeveragePrecision int32 = 1
)

// Inputs lists the user-editable fields in display order.
var Inputs = []Name{RiskUSD, EntryPrice, StopLoss, FeePercent, Margin}

// IsInput reports whether the name is a user-editable field.
func IsInput(n Name) bool {
	for _, in := range Inputs {
		if in == n {
			return true
		}
	}
	return false
}

// NullBool is a tri-state boolean, mirroring decimal.NullDecimal.
type NullBool struct {
	Bool  bool
	Valid bool
}

// Store (欄位存儲) maps field names to their current value. All access is
// synchronized; writes to locked names are rejected.
type Store struct {
	raw    map[Name]string              // input text, verbatim
	values map[Name]decimal.NullDecimal // parsed inputs + numeric derived
	locked map[Name]bool
	safe   NullBool // stop-before-liquidation verdict

	mu sync.RWMutex
}

// NewStore creates a store with every field unset and unlocked.
func NewStore() *Store {
	return &Store{
		raw:    make(map[Name]string),
		values: make(map[Name]decimal.NullDecimal),
		locked: make(map[Name]bool),
	}
}

// SetRaw records user text for an input field and parses it. Unparsable
// text is kept verbatim with an unset numeric value. Returns false without
// any change when the field is locked.
func (s *Store) SetRaw(name Name, raw string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked[name] {
		return false
	}

	s.raw[name] = raw
	s.values[name] = parse(raw)
	return true
}

// SetValue writes a numeric value directly, formatting the raw text to the
// field's display precision. Used by propagation write-backs. Returns false
// without any change when the field is locked.
func (s *Store) SetValue(name Name, d decimal.Decimal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked[name] {
		return false
	}

	s.raw[name] = d.StringFixed(precisionOf(name))
	s.values[name] = decimal.NullDecimal{Decimal: d, Valid: true}
	return true
}

// Clear unsets a field. Returns false without any change when locked.
func (s *Store) Clear(name Name) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked[name] {
		return false
	}

	delete(s.raw, name)
	delete(s.values, name)
	return true
}

// Raw returns the verbatim text of a field ("" when unset).
func (s *Store) Raw(name Name) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw[name]
}

// Value returns the numeric value of a field, unset when missing or
// unparsable.
func (s *Store) Value(name Name) decimal.NullDecimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Number returns the numeric value and whether it is set.
func (s *Store) Number(name Name) (decimal.Decimal, bool) {
	v := s.Value(name)
	return v.Decimal, v.Valid
}

// SetSafe records the liquidation safety verdict.
func (s *Store) SetSafe(safe bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.safe = NullBool{Bool: safe, Valid: true}
}

// ClearSafe unsets the liquidation safety verdict.
func (s *Store) ClearSafe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.safe = NullBool{}
}

// Safe returns the liquidation safety verdict.
func (s *Store) Safe() NullBool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.safe
}

// ToggleLock flips the lock on a field and returns the new state. The
// value itself is untouched.
func (s *Store) ToggleLock(name Name) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locked[name] = !s.locked[name]
	return s.locked[name]
}

// Locked reports whether a field is locked.
func (s *Store) Locked(name Name) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locked[name]
}

// Reset restores the initial state: every field unset, every lock cleared.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.raw = make(map[Name]string)
	s.values = make(map[Name]decimal.NullDecimal)
	s.locked = make(map[Name]bool)
	s.safe = NullBool{}
}

func parse(raw string) decimal.NullDecimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func precisionOf(name Name) int32 {
	switch name {
	case Size:
		return SizePrecision
	case Leverage:
		return LeveragePrecision
	default:
		return PricePrecision
	}
}
