package rules

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"canopy/internal/domain"
	pstrings "canopy/pkg/platform/strings"
)

// Rule is one typed validation constraint. Evaluate is pure domain logic: no
// I/O, no side effects. Every variant treats an absent precondition input as
// a pass.
type Rule interface {
	Evaluate(in Input) bool
}

// Input carries the candidate data-point fields a rule may inspect, plus the
// owning period's bounds when they could be resolved.
type Input struct {
	Value       string
	Unit        string
	PeriodStart time.Time
	PeriodEnd   time.Time
	HasPeriod   bool
}

// NonNegative passes unless the value parses as a number below zero.
type NonNegative struct{}

func (NonNegative) Evaluate(in Input) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(in.Value), 64)
	if err != nil {
		return true
	}
	return v >= 0
}

// RequiredUnit demands a unit whenever a value is present.
type RequiredUnit struct{}

func (RequiredUnit) Evaluate(in Input) bool {
	if strings.TrimSpace(in.Value) == "" {
		return true
	}
	return strings.TrimSpace(in.Unit) != ""
}

// AllowedUnits restricts the unit to a configured list, case-insensitively.
// An empty list (including one from malformed parameters) passes.
type AllowedUnits struct {
	Units []string
}

func (r AllowedUnits) Evaluate(in Input) bool {
	unit := strings.TrimSpace(in.Unit)
	if unit == "" || len(r.Units) == 0 {
		return true
	}
	for _, allowed := range r.Units {
		if strings.EqualFold(unit, allowed) {
			return true
		}
	}
	return false
}

// ValueWithinPeriod requires a date-valued data point to fall inside the
// owning period's inclusive range. Unresolvable periods or dates pass.
type ValueWithinPeriod struct{}

func (ValueWithinPeriod) Evaluate(in Input) bool {
	if !in.HasPeriod {
		return true
	}
	t, err := domain.ParseDate(strings.TrimSpace(in.Value))
	if err != nil {
		return true
	}
	return !t.Before(in.PeriodStart) && !t.After(in.PeriodEnd)
}

// Unknown is the explicit variant for rule types this engine does not know.
// It always passes.
type Unknown struct {
	Type domain.RuleType
}

func (Unknown) Evaluate(Input) bool { return true }

// FromRecord turns a stored rule record into its typed variant. Malformed
// allowed-units parameters decode to an empty list, which passes.
func FromRecord(rec domain.ValidationRule) Rule {
	switch rec.Type {
	case domain.RuleNonNegative:
		return NonNegative{}
	case domain.RuleRequiredUnit:
		return RequiredUnit{}
	case domain.RuleAllowedUnits:
		var units []string
		if err := json.Unmarshal([]byte(rec.Params), &units); err != nil {
			return AllowedUnits{}
		}
		return AllowedUnits{Units: pstrings.DedupeAndTrimLower(units)}
	case domain.RuleValueWithinPeriod:
		return ValueWithinPeriod{}
	default:
		return Unknown{Type: rec.Type}
	}
}
