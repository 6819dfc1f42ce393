package domain

import "time"

// RuleType names a validation-rule variant. The engine in workspace/rules
// turns the stored record into a typed rule; unknown types evaluate as an
// explicit pass.
type RuleType string

const (
	RuleNonNegative       RuleType = "non-negative"
	RuleRequiredUnit      RuleType = "required-unit"
	RuleAllowedUnits      RuleType = "allowed-units"
	RuleValueWithinPeriod RuleType = "value-within-period"
)

func (t RuleType) IsValid() bool {
	switch t {
	case RuleNonNegative, RuleRequiredUnit, RuleAllowedUnits, RuleValueWithinPeriod:
		return true
	}
	return false
}

// ValidationRule is a per-section constraint evaluated against every data
// point written to that section, in insertion order. Params is rule-type
// specific JSON.
type ValidationRule struct {
	ID        string
	SectionID string
	Type      RuleType
	Field     string
	Params    string
	Message   string
	Active    bool
	CreatedBy string
	CreatedAt time.Time
}
